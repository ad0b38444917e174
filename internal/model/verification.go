package model

// VerificationResult is the outcome of the semantic match between an FIR
// record and the claimant's statement
type VerificationResult struct {
	Verified      bool     `json:"isVerified"`
	Score         int      `json:"score"` // Confidence 0-100
	Remarks       string   `json:"remarks"`
	MatchedFields []string `json:"matchedFields"`
}

// StepLabel names one of the four verification checks
type StepLabel string

const (
	StepIdentity StepLabel = "Aadhaar Identity Check"
	StepRecord   StepLabel = "CCTNS FIR Lookup"
	StepSemantic StepLabel = "AI Semantic Match"
	StepBank     StepLabel = "PFMS Bank Linkage"
)

// StepStatus is the progress of a single verification step
type StepStatus string

const (
	StepNotStarted StepStatus = "not-started"
	StepRunning    StepStatus = "running"
	StepSucceeded  StepStatus = "succeeded"
	StepFailed     StepStatus = "failed"
)

// Step is one entry of the verification checklist
type Step struct {
	Label  StepLabel  `json:"label"`
	Status StepStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// Checklist holds the four ordered verification steps
type Checklist [4]Step

// NewChecklist returns a checklist with every step not started
func NewChecklist() Checklist {
	return Checklist{
		{Label: StepIdentity, Status: StepNotStarted},
		{Label: StepRecord, Status: StepNotStarted},
		{Label: StepSemantic, Status: StepNotStarted},
		{Label: StepBank, Status: StepNotStarted},
	}
}

// Done reports whether every step succeeded
func (c Checklist) Done() bool {
	for _, s := range c {
		if s.Status != StepSucceeded {
			return false
		}
	}
	return true
}

// Failed returns the index of the first failed step, or -1
func (c Checklist) Failed() int {
	for i, s := range c {
		if s.Status == StepFailed {
			return i
		}
	}
	return -1
}

// CrimeRecord is an FIR as returned by the crime-record registry
type CrimeRecord struct {
	FIRID        string   `json:"firId"`
	Sections     []string `json:"sections"`
	IncidentDate string   `json:"incidentDate"`
	Status       string   `json:"status"`
	Complainant  string   `json:"complainant"`
	AccusedNames []string `json:"accusedNames"`
	Narrative    string   `json:"narrative"`
}

// TransferReceipt is the payment-gateway acknowledgement of a disbursement
type TransferReceipt struct {
	UTR       string `json:"utr"`
	Timestamp string `json:"timestamp"` // RFC3339
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
}
