package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/reliefdesk/internal/disburse"
	"github.com/ppiankov/reliefdesk/internal/intake"
	"github.com/ppiankov/reliefdesk/internal/model"
	"github.com/ppiankov/reliefdesk/internal/store"
	"github.com/ppiankov/reliefdesk/internal/verify"
	"github.com/ppiankov/reliefdesk/internal/views"
)

// maxBody bounds request bodies
const maxBody = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateID),
		errors.Is(err, store.ErrIllegalTransition),
		errors.Is(err, disburse.ErrNotSanctioned),
		errors.Is(err, disburse.ErrInProgress),
		errors.Is(err, verify.ErrBusy),
		errors.Is(err, verify.ErrStale):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalidStatus),
		errors.Is(err, store.ErrMissingField),
		errors.Is(err, intake.ErrInvalidApplication),
		errors.Is(err, verify.ErrNoSelection):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeError(w, code, err)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body: "+err.Error()))
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	provider := "disabled"
	if p := s.app.Provider; p != nil {
		provider = p.Name()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"claims":   s.app.Store.Len(),
		"provider": provider,
	})
}

// Claims

func (s *Server) handleListClaims(w http.ResponseWriter, r *http.Request) {
	var preds []store.Predicate

	q := r.URL.Query()
	if st := q.Get("status"); st != "" {
		preds = append(preds, store.ByStatus(model.Status(st)))
	}
	if c := q.Get("claimant"); c != "" {
		preds = append(preds, store.ByClaimant(c))
	}
	if expr := q.Get("filter"); expr != "" {
		pred, err := s.app.Query.Compile(expr)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		preds = append(preds, pred)
	}

	writeJSON(w, http.StatusOK, s.app.Store.List(store.All(preds...)))
}

type submitRequest struct {
	ClaimantID string `json:"claimant_id"`
	intake.Application
}

func (s *Server) handleSubmitClaim(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ClaimantID == "" {
		req.ClaimantID = store.DemoClaimantID
	}

	c, err := intake.Lodge(s.app.Store, req.Application, req.ClaimantID, time.Now())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) claim(w http.ResponseWriter, r *http.Request) (model.Claim, bool) {
	id := r.PathValue("id")
	c, ok := s.app.Store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("claim "+id+": "+store.ErrNotFound.Error()))
	}
	return c, ok
}

func (s *Server) handleGetClaim(w http.ResponseWriter, r *http.Request) {
	if c, ok := s.claim(w, r); ok {
		writeJSON(w, http.StatusOK, c)
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	c, ok := s.claim(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.app.Store.SetStatus(c.ID, model.Status(req.Status)); err != nil {
		s.fail(w, err)
		return
	}
	updated, _ := s.app.Store.Get(c.ID)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	if c, ok := s.claim(w, r); ok {
		writeJSON(w, http.StatusOK, views.Track(c))
	}
}

func (s *Server) handleDisburse(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.app.Disburser.Disburse(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// Dashboards

func (s *Server) handleClaimantDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, views.ClaimantDashboard(s.app.Store, r.PathValue("id")))
}

func (s *Server) handleOfficialDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, views.OfficialDashboard(s.app.Store))
}

func (s *Server) handleReviewQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, views.ReviewQueue(s.app.Store))
}

// Verification desk

func (s *Server) handleDeskState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Desk.State())
}

type selectRequest struct {
	ClaimID string `json:"claim_id"`
}

func (s *Server) handleDeskSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !decode(w, r, &req) {
		return
	}
	st, err := s.app.Desk.Select(req.ClaimID)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleDeskVerify starts a run in the background and returns 202; poll
// GET /api/desk for progress. With ?wait=true it blocks until the run ends.
func (s *Server) handleDeskVerify(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("wait") == "true" {
		_, err := s.app.Desk.Verify(r.Context())
		if err != nil && statusFor(err) != http.StatusInternalServerError {
			s.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.app.Desk.State())
		return
	}

	st := s.app.Desk.State()
	switch {
	case st.ClaimID == "":
		s.fail(w, verify.ErrNoSelection)
		return
	case st.Running:
		s.fail(w, verify.ErrBusy)
		return
	}

	go func() {
		if _, err := s.app.Desk.Verify(s.base); err != nil {
			s.logger.Debug("background verification ended", zap.Error(err))
		}
	}()
	writeJSON(w, http.StatusAccepted, st)
}

type decideRequest struct {
	ClaimID  string `json:"claim_id"`
	Sanction bool   `json:"sanction"`
}

func (s *Server) handleDeskDecide(w http.ResponseWriter, r *http.Request) {
	var req decideRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.app.Desk.Decide(req.ClaimID, req.Sanction); err != nil {
		s.fail(w, err)
		return
	}
	c, _ := s.app.Store.Get(req.ClaimID)
	writeJSON(w, http.StatusOK, c)
}

// Grievances

func (s *Server) handleListGrievances(w http.ResponseWriter, r *http.Request) {
	var pred store.GrievancePredicate
	if id := r.URL.Query().Get("claim"); id != "" {
		pred = store.GrievancesForClaim(id)
	}
	writeJSON(w, http.StatusOK, s.app.Store.Grievances(pred))
}

type grievanceRequest struct {
	ClaimID     string `json:"claim_id"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

func (s *Server) handleLodgeGrievance(w http.ResponseWriter, r *http.Request) {
	var req grievanceRequest
	if !decode(w, r, &req) {
		return
	}
	g, err := s.app.Store.LodgeGrievance(model.Grievance{
		ClaimID:     strings.TrimSpace(req.ClaimID),
		Subject:     strings.TrimSpace(req.Subject),
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleGrievanceStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	id := r.PathValue("id")
	if err := s.app.Store.SetGrievanceStatus(id, model.GrievanceStatus(req.Status)); err != nil {
		s.fail(w, err)
		return
	}
	for _, g := range s.app.Store.Grievances(nil) {
		if g.ID == id {
			writeJSON(w, http.StatusOK, g)
			return
		}
	}
}

// Assistant

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"busy":       s.app.Panel.Busy(),
		"transcript": s.app.Panel.Transcript(),
	})
}

type askRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, errors.New("query is blank"))
		return
	}
	if !s.app.Panel.Send(r.Context(), req.Query) {
		writeError(w, http.StatusConflict, errors.New("assistant is busy"))
		return
	}
	s.handleTranscript(w, r)
}

// Notifications

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Notices.Visible())
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	s.app.Notices.Dismiss(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}
