// Package views builds the role-scoped projections shown to claimants and
// officials. All functions are read-only over the store.
package views

import (
	"math"
	"strings"

	"github.com/ppiankov/reliefdesk/internal/model"
	"github.com/ppiankov/reliefdesk/internal/store"
)

// FlagThreshold is the AI confidence below which a claim is flagged
const FlagThreshold = 60

// MaxCriticalRemarks caps the remarks listed on the official dashboard
const MaxCriticalRemarks = 3

// ClaimantView is what a claimant sees about their own claims
type ClaimantView struct {
	ClaimantID      string               `json:"claimant_id"`
	Name            string               `json:"name,omitempty"`
	Claims          []model.Claim        `json:"claims"`
	Active          *model.Claim         `json:"active,omitempty"` // most recent claim
	ActiveTrack     *Tracker             `json:"active_track,omitempty"`
	ByStatus        map[model.Status]int `json:"by_status"`
	TotalSanctioned int64                `json:"total_sanctioned"` // sanctioned or disbursed amount
	TotalDisbursed  int64                `json:"total_disbursed"`
}

// ClaimantDashboard lists the claims owned by claimantID
func ClaimantDashboard(s *store.Store, claimantID string) ClaimantView {
	claims := s.List(store.ByClaimant(claimantID))
	v := ClaimantView{
		ClaimantID: claimantID,
		Claims:     claims,
		ByStatus:   make(map[model.Status]int),
	}

	for _, c := range claims {
		v.ByStatus[c.Status]++
		switch c.Status {
		case model.StatusSanctioned:
			v.TotalSanctioned += c.Amount
		case model.StatusDisbursed:
			v.TotalSanctioned += c.Amount
			v.TotalDisbursed += c.Amount
		}
	}

	if len(claims) > 0 {
		active := claims[0]
		v.Active = &active
		v.Name = active.Name
		t := Track(active)
		v.ActiveTrack = &t
	}
	return v
}

// Remark is a critical AI finding
type Remark struct {
	ClaimID string `json:"claim_id"`
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Remarks string `json:"remarks"`
}

// CategoryShare is the portion of claims filed under one case type
type CategoryShare struct {
	CaseType model.CaseType `json:"case_type"`
	Count    int            `json:"count"`
	Percent  int            `json:"percent"`
}

// OfficialView is the aggregate dashboard for officials
type OfficialView struct {
	Total             int                  `json:"total"`
	ByStatus          map[model.Status]int `json:"by_status"`
	Analyzed          int                  `json:"analyzed"`           // claims with an AI result
	AverageConfidence int                  `json:"average_confidence"` // rounded mean score
	Flagged           int                  `json:"flagged"`
	CriticalRemarks   []Remark             `json:"critical_remarks"`
	Categories        []CategoryShare      `json:"categories"`
	AmountDisbursed   int64                `json:"amount_disbursed"`
	AmountPending     int64                `json:"amount_pending"` // not yet disbursed nor rejected
}

// OfficialDashboard summarises every claim in the store
func OfficialDashboard(s *store.Store) OfficialView {
	claims := s.List(nil)
	v := OfficialView{
		Total:           len(claims),
		ByStatus:        make(map[model.Status]int, len(model.Statuses)),
		CriticalRemarks: []Remark{},
	}
	for _, st := range model.Statuses {
		v.ByStatus[st] = 0
	}

	counts := make(map[model.CaseType]int)
	sum := 0
	for _, c := range claims {
		v.ByStatus[c.Status]++
		counts[c.CaseType]++

		switch c.Status {
		case model.StatusDisbursed:
			v.AmountDisbursed += c.Amount
		case model.StatusRejected:
		default:
			v.AmountPending += c.Amount
		}

		r := c.Verification
		if r == nil {
			continue
		}
		v.Analyzed++
		sum += r.Score
		if r.Score < FlagThreshold {
			v.Flagged++
		}
		critical := r.Score < FlagThreshold || strings.Contains(strings.ToLower(r.Remarks), "flagged")
		if critical && len(v.CriticalRemarks) < MaxCriticalRemarks {
			v.CriticalRemarks = append(v.CriticalRemarks, Remark{
				ClaimID: c.ID,
				Name:    c.Name,
				Score:   r.Score,
				Remarks: r.Remarks,
			})
		}
	}

	if v.Analyzed > 0 {
		v.AverageConfidence = int(math.Round(float64(sum) / float64(v.Analyzed)))
	}

	for _, t := range model.CaseTypes {
		share := CategoryShare{CaseType: t, Count: counts[t]}
		if v.Total > 0 {
			share.Percent = int(math.Round(100 * float64(counts[t]) / float64(v.Total)))
		}
		v.Categories = append(v.Categories, share)
	}
	return v
}

// ReviewQueue returns the claims awaiting an official: pending verification
// or sanctioned and awaiting payout
func ReviewQueue(s *store.Store) []model.Claim {
	return s.List(store.ByStatus(model.StatusPending, model.StatusSanctioned))
}
