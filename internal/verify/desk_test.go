package verify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ppiankov/reliefdesk/internal/model"
	"github.com/ppiankov/reliefdesk/internal/registry"
	"github.com/ppiankov/reliefdesk/internal/store"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(nil, zaptest.NewLogger(t))
	store.Seed(s)
	return s
}

func TestDesk_VerifyAttachesResult(t *testing.T) {
	s := seededStore(t)
	a := &fakeAnalyzer{res: &model.VerificationResult{Verified: true, Score: 77, Remarks: "ok", MatchedFields: []string{"Identity"}}}
	d := NewDesk(s, newTestSequencer(t, a), zaptest.NewLogger(t))

	_, err := d.Verify(context.Background())
	require.ErrorIs(t, err, ErrNoSelection)

	st, err := d.Select("BT-102")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), st.Generation)

	out, err := d.Verify(context.Background())
	require.NoError(t, err)
	require.True(t, out.Completed())

	c, _ := s.Get("BT-102")
	require.NotNil(t, c.Verification)
	assert.Equal(t, 77, c.Verification.Score)
	assert.Equal(t, model.StatusPending, c.Status, "verification must not change status")

	state := d.State()
	assert.False(t, state.Running)
	assert.True(t, state.Checklist.Done())
	assert.Equal(t, 77, state.Result.Score)
}

func TestDesk_SelectUnknown(t *testing.T) {
	d := NewDesk(seededStore(t), newTestSequencer(t, &fakeAnalyzer{}), nil)
	_, err := d.Select("BT-NOPE")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDesk_StaleRunDiscarded(t *testing.T) {
	s := seededStore(t)
	seq := NewSequencer(registry.StubIdentity{}, registry.StubBureau{Latency: 200 * time.Millisecond},
		&fakeAnalyzer{res: &model.VerificationResult{Score: 50, MatchedFields: []string{}}}, 0, zaptest.NewLogger(t))
	d := NewDesk(s, seq, zaptest.NewLogger(t))

	fresh, err := s.Submit(testClaim())
	require.NoError(t, err)
	_, err = d.Select(fresh.ID)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := d.Verify(context.Background())
		done <- err
	}()

	// Reselect while the first run is in its record lookup.
	time.Sleep(50 * time.Millisecond)
	_, err = d.Select("BT-101")
	require.NoError(t, err)

	require.ErrorIs(t, <-done, ErrStale)

	state := d.State()
	assert.Equal(t, "BT-101", state.ClaimID)
	assert.Equal(t, uint64(2), state.Generation)
	for _, step := range state.Checklist {
		assert.Equal(t, model.StepNotStarted, step.Status, "stale run leaked into the new selection")
	}

	c, _ := s.Get(fresh.ID)
	assert.Nil(t, c.Verification, "stale result must not be attached")
}

func TestDesk_Decide(t *testing.T) {
	s := seededStore(t)
	d := NewDesk(s, newTestSequencer(t, &fakeAnalyzer{}), nil)

	require.NoError(t, d.Decide("BT-101", true))
	c, _ := s.Get("BT-101")
	assert.Equal(t, model.StatusSanctioned, c.Status)

	require.NoError(t, d.Decide("BT-102", false))
	c, _ = s.Get("BT-102")
	assert.Equal(t, model.StatusRejected, c.Status)

	assert.ErrorIs(t, d.Decide("BT-103", true), store.ErrIllegalTransition)
	assert.ErrorIs(t, d.Decide("BT-404", true), store.ErrNotFound)
}
