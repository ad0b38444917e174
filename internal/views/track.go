package views

import "github.com/ppiankov/reliefdesk/internal/model"

// Milestone names
const (
	MilestoneApplied    = "Applied"
	MilestoneVerified   = "Verified"
	MilestoneSanctioned = "Sanctioned"
	MilestoneSettled    = "Settled"
)

// Milestone is one stage of the public case tracker
type Milestone struct {
	Name     string `json:"name"`
	Complete bool   `json:"complete"`
}

// Tracker is the claimant-facing progress of a claim
type Tracker struct {
	ClaimID    string                 `json:"claim_id"`
	Status     model.Status           `json:"status"`
	Milestones [4]Milestone           `json:"milestones"`
	Progress   int                    `json:"progress"` // percent
	Rejected   bool                   `json:"rejected"`
	Receipt    *model.TransferReceipt `json:"receipt,omitempty"`
}

// Track computes the milestones for c. Anything past PENDING counts as
// verified, rejection included.
func Track(c model.Claim) Tracker {
	s := c.Status
	sanctioned := s == model.StatusSanctioned || s == model.StatusDisbursed

	t := Tracker{
		ClaimID: c.ID,
		Status:  s,
		Milestones: [4]Milestone{
			{Name: MilestoneApplied, Complete: true},
			{Name: MilestoneVerified, Complete: s != model.StatusPending},
			{Name: MilestoneSanctioned, Complete: sanctioned},
			{Name: MilestoneSettled, Complete: s == model.StatusDisbursed},
		},
		Rejected: s == model.StatusRejected,
		Receipt:  c.Transfer,
	}

	switch s {
	case model.StatusPending:
		t.Progress = 0
	case model.StatusSanctioned:
		t.Progress = 66
	case model.StatusDisbursed:
		t.Progress = 100
	default:
		t.Progress = 33
	}
	return t
}
