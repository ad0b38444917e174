// Package registry simulates the government systems a claim is checked
// against: the identity registry (UIDAI), the crime-record bureau (CCTNS)
// and the payment gateway (PFMS). Every call sleeps for a configured latency
// and honours context cancellation.
package registry

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/ppiankov/reliefdesk/internal/model"
	"github.com/ppiankov/reliefdesk/internal/worker"
)

// IdentityRegistry checks identity numbers
type IdentityRegistry interface {
	VerifyIdentity(ctx context.Context, identityNumber string) (bool, error)
}

// RecordBureau looks up incident reports
type RecordBureau interface {
	LookupFIR(ctx context.Context, firNumber string) (*model.CrimeRecord, error)
}

// PaymentGateway transfers relief amounts
type PaymentGateway interface {
	Transfer(ctx context.Context, claimID string, amount int64) (*model.TransferReceipt, error)
}

// Default latencies
const (
	DefaultIdentityLatency = 1500 * time.Millisecond
	DefaultRecordLatency   = 2000 * time.Millisecond
	DefaultPaymentLatency  = 3000 * time.Millisecond
)

var identityPattern = regexp.MustCompile(`^\d{12}$`)

// ValidIdentityNumber reports whether n has exactly 12 digits once
// separators are removed
func ValidIdentityNumber(n string) bool {
	n = strings.NewReplacer("-", "", " ", "").Replace(n)
	return identityPattern.MatchString(n)
}

// StubIdentity is a simulated identity registry
type StubIdentity struct {
	Latency time.Duration
}

// VerifyIdentity returns true when the number is syntactically valid
func (s StubIdentity) VerifyIdentity(ctx context.Context, identityNumber string) (bool, error) {
	if err := worker.Sleep(ctx, s.Latency); err != nil {
		return false, err
	}
	return ValidIdentityNumber(identityNumber), nil
}

// StubBureau is a simulated crime-record bureau
type StubBureau struct {
	Latency time.Duration
}

// LookupFIR returns a fixed-shape FIR record, or nil for an empty reference
func (s StubBureau) LookupFIR(ctx context.Context, firNumber string) (*model.CrimeRecord, error) {
	if err := worker.Sleep(ctx, s.Latency); err != nil {
		return nil, err
	}
	if strings.TrimSpace(firNumber) == "" {
		return nil, nil
	}

	return &model.CrimeRecord{
		FIRID:        firNumber,
		Sections:     []string{"3(1)(r)", "3(1)(s)", "SC/ST Act"},
		IncidentDate: "2024-05-01",
		Status:       "Charge-sheeted",
		Complainant:  "Verified Profile Match",
		AccusedNames: []string{"Rahul S.", "Unknown"},
		Narrative:    "The victim was subjected to public humiliation and verbal abuse based on caste identity in a marketplace environment.",
	}, nil
}

// StubGateway is a simulated payment gateway that always succeeds
type StubGateway struct {
	Latency time.Duration
	Now     func() time.Time
}

// Transfer returns a generated transaction reference
func (s StubGateway) Transfer(ctx context.Context, claimID string, amount int64) (*model.TransferReceipt, error) {
	if claimID == "" {
		return nil, fmt.Errorf("transfer: claim id required")
	}
	if err := worker.Sleep(ctx, s.Latency); err != nil {
		return nil, err
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	return &model.TransferReceipt{
		UTR:       fmt.Sprintf("PFMS%d", rand.IntN(1_000_000_000)),
		Timestamp: now().UTC().Format(time.RFC3339),
		Status:    "SUCCESS",
		Amount:    amount,
	}, nil
}

// Stubs bundles the three simulated integrations
type Stubs struct {
	Identity IdentityRegistry
	Bureau   RecordBureau
	Gateway  PaymentGateway
}

// NewStubs builds the simulated integrations from configuration
func NewStubs(cfg model.StubConfig) Stubs {
	return Stubs{
		Identity: StubIdentity{Latency: cfg.IdentityLatency},
		Bureau:   StubBureau{Latency: cfg.RecordLatency},
		Gateway:  StubGateway{Latency: cfg.PaymentLatency},
	}
}
