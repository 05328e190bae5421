package onboarding

import (
	"fmt"
	"time"
)

// Status is the position of a run in the flow state machine.
type Status int

const (
	StatusNotStarted Status = iota
	StatusLocatingWindow
	StatusAwaitingLoad
	StatusExecutingSteps
	StatusCompleted
	StatusAborted
)

// String returns the status name used in logs and reports.
func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusLocatingWindow:
		return "locating_window"
	case StatusAwaitingLoad:
		return "awaiting_load"
	case StatusExecutingSteps:
		return "executing_steps"
	case StatusCompleted:
		return "completed"
	case StatusAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// IsTerminal returns true for Completed and Aborted.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusAborted
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// canTransition reports whether the state machine allows from → to.
func canTransition(from, to Status) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StatusAborted {
		return true
	}
	return to == from+1
}

// State is the progress marker of one run.
type State struct {
	Status Status `json:"status"`

	// StepIndex is the index of the step being (or last) executed, -1 before
	// the first step.
	StepIndex int `json:"step_index"`

	// Step is the name of that step.
	Step string `json:"step,omitempty"`

	// Reason is set when Status is StatusAborted.
	Reason string `json:"reason,omitempty"`
}

func (st *State) transition(to Status) error {
	if !canTransition(st.Status, to) {
		return fmt.Errorf("invalid transition %s -> %s", st.Status, to)
	}
	st.Status = to
	return nil
}

// StepStatus is the outcome of one step.
type StepStatus string

const (
	StepPassed  StepStatus = "passed"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// StepRecord is the outcome of one step. It never carries the filled value.
type StepRecord struct {
	Index    int           `json:"index"`
	Name     string        `json:"name"`
	Element  ElementID     `json:"element"`
	Action   ActionKind    `json:"action"`
	Status   StepStatus    `json:"status"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Result is what Run returns.
type Result struct {
	State       State         `json:"state"`
	Steps       []StepRecord  `json:"steps"`
	WindowTitle string        `json:"window_title,omitempty"`
	PasswordSet bool          `json:"password_set"`
	Released    bool          `json:"released"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Duration    time.Duration `json:"duration"`

	// Err is the error that aborted the run, nil on success.
	Err error `json:"-"`
}

// Succeeded returns true when the run completed.
func (r *Result) Succeeded() bool {
	return r.State.Status == StatusCompleted
}

// Kind classifies the abort error.
func (r *Result) Kind() ErrorKind {
	return KindOf(r.Err)
}

// Attempted returns the elements touched by a passed or failed step, in order.
func (r *Result) Attempted() []ElementID {
	var ids []ElementID
	for _, rec := range r.Steps {
		if rec.Status != StepSkipped {
			ids = append(ids, rec.Element)
		}
	}
	return ids
}
