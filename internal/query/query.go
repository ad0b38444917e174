// Package query compiles CEL filter expressions over claims.
//
// Expressions see a single variable, claim, with the keys id, claimant_id,
// name, case_type, status, amount, applied_date, fir_number, analyzed,
// verified and score. Example:
//
//	claim.status == "PENDING" && claim.score < 60
package query

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/ppiankov/reliefdesk/internal/model"
	"github.com/ppiankov/reliefdesk/internal/store"
)

// ErrNotBoolean is returned for expressions that cannot yield a boolean
var ErrNotBoolean = errors.New("filter expression must evaluate to a boolean")

// Engine compiles and caches filter programs
type Engine struct {
	env      *cel.Env
	prgCache map[string]cel.Program
	mu       sync.RWMutex
}

// NewEngine creates a CEL environment exposing the claim variable
func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("claim", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}
	return &Engine{
		env:      env,
		prgCache: make(map[string]cel.Program),
	}, nil
}

// program returns the cached program for expr, compiling it on first use
func (e *Engine) program(expr string) (cel.Program, error) {
	e.mu.RLock()
	prg, hit := e.prgCache[expr]
	e.mu.RUnlock()
	if hit {
		return prg, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if prg, hit = e.prgCache[expr]; hit {
		return prg, nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compile error: %w", issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w (got %s)", ErrNotBoolean, out)
	}

	p, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("CEL program error: %w", err)
	}
	e.prgCache[expr] = p
	return p, nil
}

// Match evaluates expr against c
func (e *Engine) Match(expr string, c model.Claim) (bool, error) {
	prg, err := e.program(expr)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(map[string]any{"claim": Activation(c)})
	if err != nil {
		return false, fmt.Errorf("CEL eval error: %w", err)
	}

	ok, isBool := out.Value().(bool)
	if !isBool {
		return false, ErrNotBoolean
	}
	return ok, nil
}

// Compile turns expr into a store predicate. Claims for which evaluation
// fails (for example a missing key) do not match.
func (e *Engine) Compile(expr string) (store.Predicate, error) {
	if _, err := e.program(expr); err != nil {
		return nil, err
	}
	return func(c model.Claim) bool {
		ok, err := e.Match(expr, c)
		return err == nil && ok
	}, nil
}

// Activation flattens a claim into the map seen by expressions
func Activation(c model.Claim) map[string]any {
	m := map[string]any{
		"id":           c.ID,
		"claimant_id":  c.ClaimantID,
		"name":         c.Name,
		"case_type":    string(c.CaseType),
		"status":       string(c.Status),
		"amount":       c.Amount,
		"applied_date": c.AppliedDate,
		"fir_number":   c.FIRNumber,
		"verified":     false,
		"score":        int64(0),
		"analyzed":     c.Verification != nil,
	}
	if v := c.Verification; v != nil {
		m["verified"] = v.Verified
		m["score"] = int64(v.Score)
	}
	return m
}
