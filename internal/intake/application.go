// Package intake turns a claimant's application form into a claim record.
package intake

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/reliefdesk/internal/model"
	"github.com/ppiankov/reliefdesk/internal/store"
)

var ErrInvalidApplication = errors.New("invalid application")

// Application holds the fields of the relief application form
type Application struct {
	Name           string         `json:"name"`
	IdentityNumber string         `json:"identity_number"`
	Phone          string         `json:"phone"`
	CaseType       model.CaseType `json:"case_type"`
	FIRNumber      string         `json:"fir_number,omitempty"`
	BankAccount    string         `json:"bank_account"`
	IFSC           string         `json:"ifsc"`
	Statement      string         `json:"statement,omitempty"`
}

// Validate checks that every required field is present
func (a Application) Validate() error {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"name", a.Name},
		{"identity_number", a.IdentityNumber},
		{"phone", a.Phone},
		{"bank_account", a.BankAccount},
		{"ifsc", a.IFSC},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidApplication, strings.Join(missing, ", "))
	}
	if a.CaseType != "" && !a.CaseType.Valid() {
		return fmt.Errorf("%w: unknown case type %q", ErrInvalidApplication, a.CaseType)
	}
	return nil
}

// Build validates the form and produces a pending claim owned by claimantID.
// The case type defaults to the PoA Act and the amount follows the category.
func (a Application) Build(claimantID string, now time.Time) (model.Claim, error) {
	if strings.TrimSpace(claimantID) == "" {
		return model.Claim{}, fmt.Errorf("%w: claimant identity required", ErrInvalidApplication)
	}
	if err := a.Validate(); err != nil {
		return model.Claim{}, err
	}

	caseType := a.CaseType
	if caseType == "" {
		caseType = model.CasePoAAct
	}

	return model.Claim{
		ID:             store.NewClaimID(),
		ClaimantID:     claimantID,
		Name:           strings.TrimSpace(a.Name),
		IdentityNumber: strings.TrimSpace(a.IdentityNumber),
		Phone:          strings.TrimSpace(a.Phone),
		CaseType:       caseType,
		Status:         model.StatusPending,
		Amount:         model.ExpectedAmount(caseType),
		AppliedDate:    now.Format(time.DateOnly),
		BankAccount:    strings.TrimSpace(a.BankAccount),
		IFSC:           strings.ToUpper(strings.TrimSpace(a.IFSC)),
		FIRNumber:      strings.TrimSpace(a.FIRNumber),
		Statement:      strings.TrimSpace(a.Statement),
	}, nil
}

// Lodge builds the claim and submits it to the store
func Lodge(s *store.Store, a Application, claimantID string, now time.Time) (model.Claim, error) {
	c, err := a.Build(claimantID, now)
	if err != nil {
		return model.Claim{}, err
	}
	return s.Submit(c)
}
