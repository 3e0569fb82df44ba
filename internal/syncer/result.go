// Package syncer implements the reconciliation of one desired DNS record
// against the hosting panel's zone: authenticate, locate, then insert or
// update.
package syncer

import (
	"fmt"
	"time"

	"gitlab.bluewillows.net/root/zonesync/pkg/panelapi"
)

// Action represents the write a reconciliation performed (or would perform).
type Action string

const (
	// ActionCreate indicates no record matched and one was inserted.
	ActionCreate Action = "create"
	// ActionUpdate indicates a matching record was mutated in place.
	ActionUpdate Action = "update"
	// ActionNone indicates the run failed before the write decision.
	ActionNone Action = "none"
)

// Stage identifies the reconciliation step a failure occurred in.
type Stage string

const (
	StageParse  Stage = "parse"
	StageAuth   Stage = "auth"
	StageLookup Stage = "lookup"
	StageWrite  Stage = "write"
)

// Result holds the outcome of one reconciliation run.
type Result struct {
	// StartTime is when the reconciliation started.
	StartTime time.Time

	// EndTime is when the reconciliation completed.
	EndTime time.Time

	// Domain is the root domain the record belongs to.
	Domain string

	// Action is the write that was performed (or planned in dry-run).
	Action Action

	// Old is the previously stored record, nil when none matched.
	Old *panelapi.ZoneRecord

	// New is the record state that was written.
	New panelapi.ZoneRecord

	// Err is the classified error for a failed run, nil on success.
	Err error

	// FailedStage is the step the run failed in, empty on success.
	FailedStage Stage

	// DryRun indicates the write was logged but not performed.
	DryRun bool
}

// Succeeded reports whether the reconciliation completed without error.
func (r *Result) Succeeded() bool {
	return r.Err == nil
}

// Duration returns the total reconciliation duration.
func (r *Result) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// complete stamps the end time and returns the result for chaining.
func (r *Result) complete() *Result {
	r.EndTime = time.Now()
	return r
}

// fail records a terminal failure at the given stage.
func (r *Result) fail(stage Stage, err error) *Result {
	r.FailedStage = stage
	r.Err = err
	return r.complete()
}

// String returns a human-readable summary of the run.
func (r *Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("[failed] %s %s.%s (%s): %v",
			r.Action, r.New.Name, r.Domain, r.FailedStage, r.Err)
	}

	status := "ok"
	if r.DryRun {
		status = "dry-run"
	}
	return fmt.Sprintf("[%s] %s %s.%s -> %s (%s ttl=%d)",
		status, r.Action, r.New.Name, r.Domain, r.New.Content, r.New.Type, r.New.TTL)
}
