package store

import "github.com/ppiankov/reliefdesk/internal/model"

// Predicate selects claims
type Predicate func(model.Claim) bool

// ByStatus matches claims in any of the given statuses
func ByStatus(statuses ...model.Status) Predicate {
	return func(c model.Claim) bool {
		for _, s := range statuses {
			if c.Status == s {
				return true
			}
		}
		return false
	}
}

// ByClaimant matches claims owned by a claimant
func ByClaimant(claimantID string) Predicate {
	return func(c model.Claim) bool {
		return c.ClaimantID == claimantID
	}
}

// ByCaseType matches claims of a category
func ByCaseType(t model.CaseType) Predicate {
	return func(c model.Claim) bool {
		return c.CaseType == t
	}
}

// Verified matches claims carrying a verification result
func Verified() Predicate {
	return func(c model.Claim) bool {
		return c.Verification != nil
	}
}

// All matches when every predicate matches
func All(preds ...Predicate) Predicate {
	return func(c model.Claim) bool {
		for _, p := range preds {
			if p != nil && !p(c) {
				return false
			}
		}
		return true
	}
}

// GrievancePredicate selects grievance tickets
type GrievancePredicate func(model.Grievance) bool

// GrievancesForClaim matches tickets that reference a claim
func GrievancesForClaim(claimID string) GrievancePredicate {
	return func(g model.Grievance) bool {
		return g.ClaimID == claimID
	}
}
