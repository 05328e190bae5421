// Package report turns an onboarding result into console output and run
// artifacts. Nothing here ever sees the recovery words or the password.
package report

import (
	"time"

	"github.com/entrhq/onboard/pkg/onboarding"
)

// Summary contains a complete summary of one onboarding run
type Summary struct {
	RunID       string                  `json:"run_id,omitempty"`
	Status      string                  `json:"status"`
	Reason      string                  `json:"reason,omitempty"`
	Error       string                  `json:"error,omitempty"`
	TimedOut    bool                    `json:"timed_out,omitempty"`
	Step        string                  `json:"step,omitempty"`
	StepIndex   int                     `json:"step_index"`
	WindowTitle string                  `json:"window_title,omitempty"`
	PasswordSet bool                    `json:"password_set"`
	Released    bool                    `json:"released"`
	StartTime   time.Time               `json:"start_time"`
	EndTime     time.Time               `json:"end_time"`
	Duration    time.Duration           `json:"duration"`
	Steps       []onboarding.StepRecord `json:"steps"`
	Metrics     Metrics                 `json:"metrics"`
}

// Metrics counts step outcomes
type Metrics struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// FromResult builds the summary of res.
func FromResult(res *onboarding.Result, runID string) *Summary {
	s := &Summary{
		RunID:       runID,
		Status:      res.State.Status.String(),
		Reason:      res.State.Reason,
		Step:        res.State.Step,
		StepIndex:   res.State.StepIndex,
		WindowTitle: res.WindowTitle,
		PasswordSet: res.PasswordSet,
		Released:    res.Released,
		StartTime:   res.StartTime,
		EndTime:     res.EndTime,
		Duration:    res.Duration,
		Steps:       append([]onboarding.StepRecord(nil), res.Steps...),
	}
	if res.Err != nil {
		s.Error = res.Err.Error()
		s.TimedOut = onboarding.TimedOut(res.Err)
	}

	s.Metrics.Total = len(res.Steps)
	for _, rec := range res.Steps {
		switch rec.Status {
		case onboarding.StepPassed:
			s.Metrics.Passed++
		case onboarding.StepFailed:
			s.Metrics.Failed++
		case onboarding.StepSkipped:
			s.Metrics.Skipped++
		}
	}
	return s
}

// Succeeded returns true when the run completed.
func (s *Summary) Succeeded() bool {
	return s.Status == onboarding.StatusCompleted.String()
}
