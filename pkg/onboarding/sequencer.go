package onboarding

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Defaults for the sequencer.
const (
	DefaultWindowTitle          = "MetaMask"
	DefaultPresenceProbeTimeout = 5 * time.Second
	DefaultSettleDelay          = 100 * time.Millisecond
)

// Sequencer runs the onboarding plan against one browser session.
type Sequencer struct {
	launcher   Launcher
	locator    *WindowLocator
	interactor *Interactor
	logger     Logger

	windowTitle  string
	titleMatcher TitleMatcher
	loadState    LoadState
	probeTimeout time.Duration
	settleDelay  time.Duration
	closeWindow  bool
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithLogger sets the logger used by the sequencer and by the default locator
// and interactor.
func WithLogger(logger Logger) Option {
	return func(s *Sequencer) {
		s.logger = logger
	}
}

// WithWindowLocator replaces the default window locator.
func WithWindowLocator(locator *WindowLocator) Option {
	return func(s *Sequencer) {
		s.locator = locator
	}
}

// WithInteractor replaces the default interactor.
func WithInteractor(interactor *Interactor) Option {
	return func(s *Sequencer) {
		s.interactor = interactor
	}
}

// WithWindowTitle sets the substring identifying the extension window.
func WithWindowTitle(title string) Option {
	return func(s *Sequencer) {
		s.windowTitle = title
	}
}

// WithTitleMatcher identifies the extension window with match instead of a
// substring test. name is used in errors and logs.
func WithTitleMatcher(name string, match TitleMatcher) Option {
	return func(s *Sequencer) {
		s.windowTitle = name
		s.titleMatcher = match
	}
}

// WithLoadState sets the readiness state awaited before the first step.
func WithLoadState(state LoadState) Option {
	return func(s *Sequencer) {
		s.loadState = state
	}
}

// WithPresenceProbeTimeout bounds each password form probe.
func WithPresenceProbeTimeout(timeout time.Duration) Option {
	return func(s *Sequencer) {
		s.probeTimeout = timeout
	}
}

// WithSettleDelay sets the pause after closing the extension window.
func WithSettleDelay(delay time.Duration) Option {
	return func(s *Sequencer) {
		s.settleDelay = delay
	}
}

// WithCloseWindow controls whether the extension window is closed after a
// completed run.
func WithCloseWindow(close bool) Option {
	return func(s *Sequencer) {
		s.closeWindow = close
	}
}

// NewSequencer creates a sequencer acquiring sessions from launcher.
func NewSequencer(launcher Launcher, opts ...Option) *Sequencer {
	s := &Sequencer{
		launcher:     launcher,
		windowTitle:  DefaultWindowTitle,
		loadState:    LoadStateDOMContentLoaded,
		probeTimeout: DefaultPresenceProbeTimeout,
		settleDelay:  DefaultSettleDelay,
		closeWindow:  true,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = zap.NewNop().Sugar()
	}
	if s.locator == nil {
		s.locator = NewWindowLocator(DefaultPollInterval, DefaultWindowTimeout, s.logger)
	}
	if s.interactor == nil {
		s.interactor = NewInteractor(DefaultElementTimeout, DefaultPageLoadTimeout, s.logger)
	}
	if s.probeTimeout <= 0 {
		s.probeTimeout = DefaultPresenceProbeTimeout
	}
	return s
}

// Run executes one onboarding flow. Input is checked before the browser is
// launched. Once launched, the session is released exactly once whatever
// happens, including panics. Failures are reported in the returned Result,
// never as a panic or a separate error.
func (s *Sequencer) Run(ctx context.Context, in Input) (res *Result) {
	res = &Result{
		State:     State{Status: StatusNotStarted, StepIndex: -1},
		StartTime: time.Now(),
	}

	defer func() {
		if r := recover(); r != nil {
			s.abort(res, &UnexpectedError{Op: "onboarding flow", Panic: r})
		}
		res.EndTime = time.Now()
		res.Duration = res.EndTime.Sub(res.StartTime)
		s.summarize(res)
	}()

	plan, err := NewPlan(in)
	if err != nil {
		s.abort(res, err)
		return res
	}

	s.logger.Infow("launching browser")
	session, err := s.launcher.Launch(ctx)
	if err != nil {
		s.abort(res, &UnexpectedError{Op: "launch browser", Err: err})
		return res
	}
	if session == nil {
		s.abort(res, &UnexpectedError{Op: "launch browser", Err: errNilSession})
		return res
	}
	defer s.release(res, session)

	if err := s.execute(ctx, session, plan, res); err != nil {
		s.abort(res, err)
	}
	return res
}

func (s *Sequencer) execute(ctx context.Context, session Session, plan *Plan, res *Result) error {
	if err := s.enter(res, StatusLocatingWindow); err != nil {
		return err
	}
	w, err := s.locate(ctx, session)
	if err != nil {
		return err
	}
	if title, titleErr := w.Title(); titleErr == nil {
		res.WindowTitle = title
	}

	if err := s.enter(res, StatusAwaitingLoad); err != nil {
		return err
	}
	if err := s.interactor.WaitForLoad(ctx, w, s.loadState); err != nil {
		return err
	}

	if err := s.enter(res, StatusExecutingSteps); err != nil {
		return err
	}
	if err := s.steps(ctx, w, res, plan.Prelude); err != nil {
		return err
	}
	if err := s.steps(ctx, w, res, plan.SeedEntry); err != nil {
		return err
	}
	if err := s.step(ctx, w, res, plan.Confirm); err != nil {
		return err
	}

	present, err := s.passwordFormPresent(ctx, w, plan.Password.Probe)
	if err != nil {
		return err
	}
	if present {
		if err := s.steps(ctx, w, res, plan.Password.Steps); err != nil {
			return err
		}
		res.PasswordSet = true
	} else {
		s.logger.Infow("password form not shown, skipping password block")
		for _, step := range plan.Password.Steps {
			res.Steps = append(res.Steps, record(step, StepSkipped, 0, nil))
		}
	}

	if err := s.steps(ctx, w, res, plan.Tail); err != nil {
		return err
	}

	if err := s.enter(res, StatusCompleted); err != nil {
		return err
	}
	s.logger.Infow("wallet import completed", "window", res.WindowTitle, "password_set", res.PasswordSet)

	if s.closeWindow {
		s.closeActiveWindow(ctx, w)
	}
	return nil
}

func (s *Sequencer) locate(ctx context.Context, session Session) (Window, error) {
	if s.titleMatcher != nil {
		return s.locator.LocateMatch(ctx, session, s.windowTitle, s.titleMatcher)
	}
	return s.locator.Locate(ctx, session, s.windowTitle)
}

func (s *Sequencer) steps(ctx context.Context, w Window, res *Result, steps []Step) error {
	for _, step := range steps {
		if err := s.step(ctx, w, res, step); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sequencer) step(ctx context.Context, w Window, res *Result, step Step) error {
	res.State.StepIndex = step.Index
	res.State.Step = step.Name

	start := time.Now()
	err := s.interactor.Do(ctx, w, step)
	if err != nil {
		res.Steps = append(res.Steps, record(step, StepFailed, time.Since(start), err))
		return err
	}
	res.Steps = append(res.Steps, record(step, StepPassed, time.Since(start), nil))
	return nil
}

// passwordFormPresent probes the elements in order and stops at the first
// absent one.
func (s *Sequencer) passwordFormPresent(ctx context.Context, w Window, probe []ElementID) (bool, error) {
	if len(probe) == 0 {
		return false, nil
	}
	for _, id := range probe {
		ok, err := s.interactor.Present(ctx, w, id, s.probeTimeout)
		if err != nil {
			return false, err
		}
		if !ok {
			s.logger.Debugw("password form element absent", "element", id)
			return false, nil
		}
	}
	return true, nil
}

func (s *Sequencer) closeActiveWindow(ctx context.Context, w Window) {
	if err := w.Close(); err != nil {
		s.logger.Warnw("failed to close extension window", "error", err)
	}
	if err := sleep(ctx, s.settleDelay); err != nil {
		s.logger.Debugw("settle delay interrupted", "error", err)
	}
}

func (s *Sequencer) release(res *Result, session Session) {
	if err := session.Close(); err != nil {
		s.logger.Warnw("failed to close browser session", "error", err)
	}
	res.Released = true
	s.logger.Debugw("browser session released")
}

func (s *Sequencer) enter(res *Result, to Status) error {
	from := res.State.Status
	if err := res.State.transition(to); err != nil {
		return &UnexpectedError{Op: "state machine", Err: err}
	}
	s.logger.Debugw("flow state changed", "from", from, "to", to)
	return nil
}

// abort moves a non-terminal run to Aborted and logs the failing step. The
// first abort wins.
func (s *Sequencer) abort(res *Result, err error) {
	if res.State.Status.IsTerminal() {
		s.logger.Errorw("fault after flow finished", "status", res.State.Status, "error", err)
		return
	}

	stage := res.State.Status
	res.State.Status = StatusAborted
	res.State.Reason = Reason(err)
	res.Err = err

	s.logger.Errorw("onboarding step failed",
		"stage", stage,
		"step", res.State.Step,
		"step_index", res.State.StepIndex,
		"reason", res.State.Reason,
		"timeout", TimedOut(err),
		"error", err,
	)
}

func (s *Sequencer) summarize(res *Result) {
	if res.Succeeded() {
		s.logger.Infow("onboarding finished",
			"status", res.State.Status,
			"steps", len(res.Attempted()),
			"password_set", res.PasswordSet,
			"duration", res.Duration,
		)
		return
	}
	s.logger.Errorw("onboarding finished",
		"status", res.State.Status,
		"reason", res.State.Reason,
		"released", res.Released,
		"duration", res.Duration,
	)
}

func record(step Step, status StepStatus, d time.Duration, err error) StepRecord {
	rec := StepRecord{
		Index:    step.Index,
		Name:     step.Name,
		Element:  step.Element,
		Action:   step.Action,
		Status:   status,
		Duration: d,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	return rec
}
