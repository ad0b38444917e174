package model

// Grievance is a support ticket referencing a claim
type Grievance struct {
	ID          string          `json:"id"`
	ClaimID     string          `json:"claim_id"`
	Subject     string          `json:"subject"`
	Description string          `json:"description,omitempty"`
	Status      GrievanceStatus `json:"status"`
	CreatedAt   string          `json:"created_at"` // YYYY-MM-DD
}

// GrievanceStatus is the lifecycle state of a grievance ticket
type GrievanceStatus string

const (
	GrievanceOpen       GrievanceStatus = "Open"
	GrievanceInProgress GrievanceStatus = "In-Progress"
	GrievanceResolved   GrievanceStatus = "Resolved"
	GrievanceEscalated  GrievanceStatus = "Escalated"
)

var grievanceTransitions = map[GrievanceStatus][]GrievanceStatus{
	GrievanceOpen:       {GrievanceInProgress, GrievanceResolved, GrievanceEscalated},
	GrievanceInProgress: {GrievanceResolved, GrievanceEscalated},
	GrievanceEscalated:  {GrievanceInProgress, GrievanceResolved},
	GrievanceResolved:   nil,
}

// Valid reports whether s is one of the four ticket states
func (s GrievanceStatus) Valid() bool {
	_, ok := grievanceTransitions[s]
	return ok
}

// CanTransitionGrievance reports whether a ticket may move between two states
func CanTransitionGrievance(from, to GrievanceStatus) bool {
	for _, s := range grievanceTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
