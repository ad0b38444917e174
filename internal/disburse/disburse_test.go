package disburse

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ppiankov/reliefdesk/internal/model"
	"github.com/ppiankov/reliefdesk/internal/registry"
	"github.com/ppiankov/reliefdesk/internal/store"
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recordingNotifier) Emit(msg string) model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return model.Notification{Message: msg}
}

type flakyGateway struct {
	failures int
	calls    int
}

func (g *flakyGateway) Transfer(ctx context.Context, claimID string, amount int64) (*model.TransferReceipt, error) {
	g.calls++
	if g.calls <= g.failures {
		return nil, errors.New("gateway unavailable")
	}
	return &model.TransferReceipt{UTR: "PFMS42", Status: "SUCCESS", Amount: amount}, nil
}

// countingGateway pays immediately and counts payments
type countingGateway struct {
	calls atomic.Int32
	delay time.Duration
}

func (g *countingGateway) Transfer(ctx context.Context, claimID string, amount int64) (*model.TransferReceipt, error) {
	g.calls.Add(1)
	time.Sleep(g.delay)
	return &model.TransferReceipt{UTR: "PFMS77", Status: "SUCCESS", Amount: amount}, nil
}

func sanctionedStore(t *testing.T, n *recordingNotifier) *store.Store {
	t.Helper()
	s := store.New(n, zaptest.NewLogger(t))
	store.Seed(s)
	require.NoError(t, s.SetStatus("BT-101", model.StatusSanctioned))
	return s
}

var fastPolicy = Policy{Attempts: 3, AttemptTimeout: time.Second, BackoffBase: time.Millisecond, BackoffMax: 4 * time.Millisecond}

func TestDisburse_Success(t *testing.T) {
	n := &recordingNotifier{}
	s := sanctionedStore(t, n)
	d := New(s, registry.StubGateway{}, fastPolicy, zaptest.NewLogger(t))

	receipt, err := d.Disburse(context.Background(), "BT-101")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(receipt.UTR, "PFMS"))
	assert.Equal(t, "SUCCESS", receipt.Status)
	assert.Equal(t, int64(82500), receipt.Amount)

	c, _ := s.Get("BT-101")
	assert.Equal(t, model.StatusDisbursed, c.Status)
	require.NotNil(t, c.Transfer)
	assert.Equal(t, receipt.UTR, c.Transfer.UTR)

	last := n.msgs[len(n.msgs)-1]
	assert.Contains(t, last, "BT-101")
	assert.Contains(t, last, string(model.StatusDisbursed))
}

func TestDisburse_RequiresSanctioned(t *testing.T) {
	s := sanctionedStore(t, &recordingNotifier{})
	d := New(s, registry.StubGateway{}, fastPolicy, nil)

	_, err := d.Disburse(context.Background(), "BT-102")
	assert.ErrorIs(t, err, ErrNotSanctioned)

	_, err = d.Disburse(context.Background(), "BT-103")
	assert.ErrorIs(t, err, ErrNotSanctioned, "already disbursed")

	_, err = d.Disburse(context.Background(), "BT-999")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDisburse_RetriesThenSucceeds(t *testing.T) {
	s := sanctionedStore(t, &recordingNotifier{})
	gw := &flakyGateway{failures: 2}
	d := New(s, gw, fastPolicy, zaptest.NewLogger(t))

	_, err := d.Disburse(context.Background(), "BT-101")
	require.NoError(t, err)
	assert.Equal(t, 3, gw.calls)
}

func TestDisburse_GivesUp(t *testing.T) {
	s := sanctionedStore(t, &recordingNotifier{})
	gw := &flakyGateway{failures: 10}
	d := New(s, gw, fastPolicy, zaptest.NewLogger(t))

	_, err := d.Disburse(context.Background(), "BT-101")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway unavailable")
	assert.Equal(t, 3, gw.calls)

	c, _ := s.Get("BT-101")
	assert.Equal(t, model.StatusSanctioned, c.Status, "failed payout must leave the claim sanctioned")
	assert.Nil(t, c.Transfer)
}

func TestDisburse_Canceled(t *testing.T) {
	s := sanctionedStore(t, &recordingNotifier{})
	d := New(s, registry.StubGateway{Latency: time.Minute}, fastPolicy, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := d.Disburse(ctx, "BT-101")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	c, _ := s.Get("BT-101")
	assert.Equal(t, model.StatusSanctioned, c.Status)
}

func TestDisburse_CancelDuringSettleStillSettles(t *testing.T) {
	s := sanctionedStore(t, &recordingNotifier{})
	gw := &countingGateway{}
	policy := fastPolicy
	policy.SettleDelay = 200 * time.Millisecond
	d := New(s, gw, policy, zaptest.NewLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	receipt, err := d.Disburse(ctx, "BT-101")
	require.NoError(t, err)
	assert.Equal(t, "PFMS77", receipt.UTR)

	c, _ := s.Get("BT-101")
	assert.Equal(t, model.StatusDisbursed, c.Status)
	require.NotNil(t, c.Transfer)
	assert.Equal(t, "PFMS77", c.Transfer.UTR)

	_, err = d.Disburse(context.Background(), "BT-101")
	assert.ErrorIs(t, err, ErrNotSanctioned)
	assert.Equal(t, int32(1), gw.calls.Load(), "claim paid more than once")
}

func TestDisburse_ConcurrentCallsPayOnce(t *testing.T) {
	s := sanctionedStore(t, &recordingNotifier{})
	gw := &countingGateway{delay: 5 * time.Millisecond}
	d := New(s, gw, fastPolicy, zaptest.NewLogger(t))

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := d.Disburse(context.Background(), "BT-101")
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ErrInProgress), errors.Is(err, ErrNotSanctioned):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(1), gw.calls.Load())
}

func TestDisburse_GuardHeldRejectsBeforeLookup(t *testing.T) {
	s := sanctionedStore(t, &recordingNotifier{})
	gw := &countingGateway{}
	d := New(s, gw, fastPolicy, nil)

	require.True(t, d.acquire("BT-101"))
	_, err := d.Disburse(context.Background(), "BT-101")
	assert.ErrorIs(t, err, ErrInProgress)
	d.release("BT-101")

	_, err = d.Disburse(context.Background(), "BT-101")
	require.NoError(t, err)
	_, err = d.Disburse(context.Background(), "BT-101")
	assert.ErrorIs(t, err, ErrNotSanctioned)
	assert.Equal(t, int32(1), gw.calls.Load())
}

func TestPolicy_Backoff(t *testing.T) {
	p := Policy{BackoffBase: 500 * time.Millisecond, BackoffMax: 4 * time.Second}
	assert.Equal(t, 500*time.Millisecond, p.backoff(1))
	assert.Equal(t, time.Second, p.backoff(2))
	assert.Equal(t, 2*time.Second, p.backoff(3))
	assert.Equal(t, 4*time.Second, p.backoff(4))
	assert.Equal(t, 4*time.Second, p.backoff(10))
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(model.DefaultConfig().Disbursement)
	assert.Equal(t, 3, p.Attempts)
	assert.Equal(t, time.Second, p.SettleDelay)
}
