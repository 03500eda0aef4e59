package runner

import (
	"context"
	"time"
)

// ValidationResult is one probed collaborator's outcome, per SPEC_FULL.md's
// supplement grounded on scenario_validator.py: richer than spec.md §4.3's
// one-line mention of validate(), with a remediation hint attached to every
// failed probe.
type ValidationResult struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Detail  string `json:"detail,omitempty"`
	Remedy  string `json:"remedy,omitempty"`
	Elapsed float64 `json:"elapsed_seconds"`
}

// Probe checks one collaborator and reports why it failed plus a
// remediation hint, never returning an error itself.
type Probe struct {
	Name   string
	Check  func(ctx context.Context) error
	Remedy string
}

// Validate runs every probe and returns a result list. It makes no
// destructive calls.
func (r *Runner) Validate(ctx context.Context, probes []Probe) []ValidationResult {
	out := make([]ValidationResult, 0, len(probes))
	for _, p := range probes {
		start := time.Now()
		err := p.Check(ctx)
		res := ValidationResult{Name: p.Name, OK: err == nil, Elapsed: time.Since(start).Seconds()}
		if err != nil {
			res.Detail = err.Error()
			res.Remedy = p.Remedy
		}
		out = append(out, res)
	}
	return out
}
