package model

// Claim is a submitted request for monetary relief under a benefit scheme
type Claim struct {
	ID             string              `json:"id"`
	ClaimantID     string              `json:"claimant_id"`     // Owning claimant (foreign key)
	Name           string              `json:"name"`            // Claimant name
	IdentityNumber string              `json:"identity_number"` // Aadhaar-style number
	Phone          string              `json:"phone"`
	CaseType       CaseType            `json:"case_type"`
	Status         Status              `json:"status"`
	Amount         int64               `json:"amount"`       // Rupees
	AppliedDate    string              `json:"applied_date"` // YYYY-MM-DD
	BankAccount    string              `json:"bank_account"`
	IFSC           string              `json:"ifsc"`                 // Bank routing code
	FIRNumber      string              `json:"fir_number,omitempty"` // Incident-report reference
	Statement      string              `json:"statement,omitempty"`  // Claimant narrative
	Verification   *VerificationResult `json:"verification,omitempty"`
	Transfer       *TransferReceipt    `json:"transfer,omitempty"`
}

// CaseType is the statutory category a claim is filed under
type CaseType string

const (
	CasePCRAct             CaseType = "PCR Act, 1955"
	CasePoAAct             CaseType = "PoA Act, 1989"
	CaseInterCasteMarriage CaseType = "Inter-caste Marriage Incentive"
)

// CaseTypes lists every category in display order
var CaseTypes = []CaseType{CasePCRAct, CasePoAAct, CaseInterCasteMarriage}

// Valid reports whether t is one of the fixed categories
func (t CaseType) Valid() bool {
	switch t {
	case CasePCRAct, CasePoAAct, CaseInterCasteMarriage:
		return true
	}
	return false
}

// Relief amounts in rupees
const (
	AmountStandardRelief    int64 = 82500
	AmountMarriageIncentive int64 = 250000
)

// ExpectedAmount returns the relief amount a category sanctions by default
func ExpectedAmount(t CaseType) int64 {
	if t == CaseInterCasteMarriage {
		return AmountMarriageIncentive
	}
	return AmountStandardRelief
}

// Status is the lifecycle state of a claim
type Status string

const (
	StatusPending         Status = "PENDING"
	StatusVerifiedAadhaar Status = "VERIFIED_AADHAAR"
	StatusVerifiedCCTNS   Status = "VERIFIED_CCTNS"
	StatusSanctioned      Status = "SANCTIONED"
	StatusDisbursed       Status = "DISBURSED"
	StatusRejected        Status = "REJECTED"
)

// Statuses lists every lifecycle state
var Statuses = []Status{
	StatusPending,
	StatusVerifiedAadhaar,
	StatusVerifiedCCTNS,
	StatusSanctioned,
	StatusDisbursed,
	StatusRejected,
}

var transitions = map[Status][]Status{
	StatusPending:         {StatusVerifiedAadhaar, StatusVerifiedCCTNS, StatusSanctioned, StatusRejected},
	StatusVerifiedAadhaar: {StatusVerifiedCCTNS, StatusSanctioned, StatusRejected},
	StatusVerifiedCCTNS:   {StatusSanctioned, StatusRejected},
	StatusSanctioned:      {StatusDisbursed},
	StatusDisbursed:       nil,
	StatusRejected:        nil,
}

// Valid reports whether s is one of the fixed lifecycle states
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transition is possible from s
func (s Status) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether a claim may move from one status to another
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the states reachable from s in one step
func NextStatuses(s Status) []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}
