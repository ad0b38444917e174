package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ppiankov/reliefdesk/internal/app"
	"github.com/ppiankov/reliefdesk/internal/model"
	"github.com/ppiankov/reliefdesk/internal/verify"
	"github.com/ppiankov/reliefdesk/internal/views"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := app.Instant(model.DefaultConfig())
	a, err := app.New(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	s := New(a)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func do(t *testing.T, ts *httptest.Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t)
	resp, body := do(t, ts, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"provider":"offline"`)
}

func TestClaims_ListAndFilter(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := do(t, ts, http.MethodGet, "/api/claims", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var claims []model.Claim
	require.NoError(t, json.Unmarshal(body, &claims))
	assert.Len(t, claims, 3)

	resp, body = do(t, ts, http.MethodGet, "/api/claims?status=DISBURSED", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &claims))
	require.Len(t, claims, 1)
	assert.Equal(t, "BT-103", claims[0].ID)

	resp, _ = do(t, ts, http.MethodGet, "/api/claims?filter=claim.amount%20%3E%20100000", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, ts, http.MethodGet, "/api/claims?filter=claim.amount%20%3E", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClaims_SubmitAndTrack(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := do(t, ts, http.MethodPost, "/api/claims", map[string]any{
		"claimant_id":     "CLM-2000",
		"name":            "Meera Devi",
		"identity_number": "1234 5678 9012",
		"phone":           "9000000000",
		"case_type":       string(model.CaseInterCasteMarriage),
		"bank_account":    "111222333",
		"ifsc":            "sbin0002",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var c model.Claim
	require.NoError(t, json.Unmarshal(body, &c))
	assert.True(t, strings.HasPrefix(c.ID, "BT-"))
	assert.Equal(t, int64(250000), c.Amount)
	assert.Equal(t, "SBIN0002", c.IFSC)

	resp, body = do(t, ts, http.MethodGet, "/api/claims/"+c.ID+"/track", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tr views.Tracker
	require.NoError(t, json.Unmarshal(body, &tr))
	assert.Equal(t, 0, tr.Progress)

	resp, body = do(t, ts, http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Application Lodged! Ref: "+c.ID)

	resp, _ = do(t, ts, http.MethodPost, "/api/claims", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClaims_StatusTransitions(t *testing.T) {
	_, ts := newTestServer(t)

	resp, _ := do(t, ts, http.MethodPost, "/api/claims/BT-101/status", map[string]string{"status": "SANCTIONED"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, ts, http.MethodPost, "/api/claims/BT-103/status", map[string]string{"status": "PENDING"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = do(t, ts, http.MethodPost, "/api/claims/BT-101/status", map[string]string{"status": "LOST"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, ts, http.MethodPost, "/api/claims/BT-999/status", map[string]string{"status": "REJECTED"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDesk_VerifyDecideDisburse(t *testing.T) {
	_, ts := newTestServer(t)

	resp, _ := do(t, ts, http.MethodPost, "/api/desk/verify?wait=true", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "verify without selection")

	resp, _ = do(t, ts, http.MethodPost, "/api/desk/select", map[string]string{"claim_id": "BT-101"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, ts, http.MethodPost, "/api/desk/verify?wait=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st verify.DeskState
	require.NoError(t, json.Unmarshal(body, &st))
	assert.True(t, st.Checklist.Done())
	require.NotNil(t, st.Result)

	resp, _ = do(t, ts, http.MethodPost, "/api/claims/BT-101/disburse", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "not sanctioned yet")

	resp, _ = do(t, ts, http.MethodPost, "/api/desk/decide", map[string]any{"claim_id": "BT-101", "sanction": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = do(t, ts, http.MethodPost, "/api/claims/BT-101/disburse", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var receipt model.TransferReceipt
	require.NoError(t, json.Unmarshal(body, &receipt))
	assert.Equal(t, "SUCCESS", receipt.Status)

	resp, body = do(t, ts, http.MethodGet, "/api/claims/BT-101", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var c model.Claim
	require.NoError(t, json.Unmarshal(body, &c))
	assert.Equal(t, model.StatusDisbursed, c.Status)
}

func TestDesk_BackgroundVerify(t *testing.T) {
	_, ts := newTestServer(t)

	do(t, ts, http.MethodPost, "/api/desk/select", map[string]string{"claim_id": "BT-102"})
	resp, _ := do(t, ts, http.MethodPost, "/api/desk/verify", nil)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Eventually(t, func() bool {
		_, body := do(t, ts, http.MethodGet, "/api/desk", nil)
		var st verify.DeskState
		if err := json.Unmarshal(body, &st); err != nil {
			return false
		}
		return !st.Running && st.Checklist.Done()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGrievances(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := do(t, ts, http.MethodPost, "/api/grievances", map[string]string{
		"claim_id": "BT-102",
		"subject":  "Delay in verification",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var g model.Grievance
	require.NoError(t, json.Unmarshal(body, &g))
	assert.Equal(t, model.GrievanceOpen, g.Status)

	resp, _ = do(t, ts, http.MethodPost, "/api/grievances/"+g.ID+"/status", map[string]string{"status": "Escalated"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, ts, http.MethodPost, "/api/grievances/GR-1011/status", map[string]string{"status": "Open"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "resolved is terminal")

	resp, body = do(t, ts, http.MethodGet, "/api/grievances?claim=BT-102", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []model.Grievance
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, model.GrievanceEscalated, list[0].Status)

	resp, _ = do(t, ts, http.MethodPost, "/api/grievances", map[string]string{"claim_id": "BT-102"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAssistant(t *testing.T) {
	_, ts := newTestServer(t)

	resp, _ := do(t, ts, http.MethodPost, "/api/assistant", map[string]string{"query": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := do(t, ts, http.MethodPost, "/api/assistant", map[string]string{"query": "What relief does the PoA Act give?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Busy       bool         `json:"busy"`
		Transcript []model.Turn `json:"transcript"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Transcript, 2)
	assert.Equal(t, model.RoleAI, out.Transcript[1].Role)
	assert.Contains(t, out.Transcript[1].Text, "Rule 12(4)")
}

func TestDashboards(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := do(t, ts, http.MethodGet, "/api/official/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ov views.OfficialView
	require.NoError(t, json.Unmarshal(body, &ov))
	assert.Equal(t, 75, ov.AverageConfidence)

	resp, body = do(t, ts, http.MethodGet, "/api/claimants/CLM-1001/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cv views.ClaimantView
	require.NoError(t, json.Unmarshal(body, &cv))
	assert.Len(t, cv.Claims, 1)

	resp, body = do(t, ts, http.MethodGet, "/api/review-queue", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var q []model.Claim
	require.NoError(t, json.Unmarshal(body, &q))
	assert.Len(t, q, 2)

	resp, body = do(t, ts, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "reliefdesk_")
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s, _ := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
