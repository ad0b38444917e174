package store

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/ppiankov/reliefdesk/internal/model"
)

// Property: N submits with distinct identifiers list back N claims, most recent first
func TestSubmitOrderingProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("list returns submissions most-recent-first", prop.ForAll(
		func(n int) bool {
			s := New(nil, nil)
			for i := 0; i < n; i++ {
				if _, err := s.Submit(testClaim(fmt.Sprintf("BT-%d", i))); err != nil {
					return false
				}
			}

			claims := s.List(nil)
			if len(claims) != n {
				return false
			}
			for i, c := range claims {
				if c.ID != fmt.Sprintf("BT-%d", n-1-i) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 50),
	))

	properties.TestingRun(t)
}

// Property: SetStatus changes only the targeted claim
func TestSetStatusIsolationProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("setStatus leaves other claims unchanged", prop.ForAll(
		func(n int, target int, sanction bool) bool {
			s := New(nil, nil)
			for i := 0; i < n; i++ {
				_, _ = s.Submit(testClaim(fmt.Sprintf("BT-%d", i)))
			}
			id := fmt.Sprintf("BT-%d", target%n)
			status := model.StatusRejected
			if sanction {
				status = model.StatusSanctioned
			}

			if err := s.SetStatus(id, status); err != nil {
				return false
			}
			for _, c := range s.List(nil) {
				if c.ID == id && c.Status != status {
					return false
				}
				if c.ID != id && c.Status != model.StatusPending {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 20),
		gen.IntRange(0, 100),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
