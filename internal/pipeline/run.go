// Package pipeline carries per-run state threaded explicitly through the
// components: the run id, counters and the API circuit-breaker flag.
// Nothing here is global; two Run values never share state.
package pipeline

import "github.com/google/uuid"

// Run is the mutable state of a single pipeline run. A single run is
// assumed to own its state prefix; concurrent runs against the same
// backend and ledger are unsupported.
type Run struct {
	// ID identifies the run in logs.
	ID string

	// APIEnabled permits upstream API calls. A failed call degrades it
	// for the remainder of the run.
	APIEnabled bool

	// APIBudget is the remaining external-API fallback budget for
	// document fetches. Decremented unconditionally per fallback attempt.
	APIBudget int

	// Processed counts bills processed this run, gating the per-run limit.
	Processed int

	// Failed counts units of work skipped after errors.
	Failed int
}

// NewRun creates a run with a fresh id.
func NewRun(apiEnabled bool, apiBudget int) *Run {
	return &Run{
		ID:         uuid.NewString(),
		APIEnabled: apiEnabled,
		APIBudget:  apiBudget,
	}
}

// DegradeAPI turns off upstream API use for the remainder of the run.
func (r *Run) DegradeAPI() {
	r.APIEnabled = false
}

// ConsumeAPIBudget decrements the fallback budget and reports whether
// budget remained before the decrement.
func (r *Run) ConsumeAPIBudget() bool {
	if r.APIBudget <= 0 {
		return false
	}
	r.APIBudget--
	return true
}
