package onboarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Default timeouts for element and page waits.
const (
	DefaultElementTimeout  = 5 * time.Second
	DefaultPageLoadTimeout = 30 * time.Second
)

// Interactor performs single element interactions on a window.
type Interactor struct {
	elementTimeout  time.Duration
	pageLoadTimeout time.Duration
	logger          Logger
}

// NewInteractor creates an interactor. Non-positive timeouts fall back to the
// defaults.
func NewInteractor(elementTimeout, pageLoadTimeout time.Duration, logger Logger) *Interactor {
	if elementTimeout <= 0 {
		elementTimeout = DefaultElementTimeout
	}
	if pageLoadTimeout <= 0 {
		pageLoadTimeout = DefaultPageLoadTimeout
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Interactor{
		elementTimeout:  elementTimeout,
		pageLoadTimeout: pageLoadTimeout,
		logger:          logger,
	}
}

// Click waits for the element to be attached, then clicks it.
func (i *Interactor) Click(ctx context.Context, w Window, id ElementID) error {
	return i.act(ctx, w, id, ActionClick, func(timeout time.Duration) error {
		return w.Click(id, timeout)
	})
}

// Fill waits for the element to be attached, then sets its value.
func (i *Interactor) Fill(ctx context.Context, w Window, id ElementID, value string) error {
	return i.act(ctx, w, id, ActionFill, func(timeout time.Duration) error {
		return w.Fill(id, value, timeout)
	})
}

// Do runs step on w.
func (i *Interactor) Do(ctx context.Context, w Window, step Step) error {
	switch step.Action {
	case ActionClick:
		return i.Click(ctx, w, step.Element)
	case ActionFill:
		return i.Fill(ctx, w, step.Element, step.Value)
	default:
		return &ElementInteractionError{
			Element: step.Element,
			Action:  step.Action,
			Err:     fmt.Errorf("unsupported action %q", step.Action),
		}
	}
}

func (i *Interactor) act(ctx context.Context, w Window, id ElementID, action ActionKind, do func(time.Duration) error) error {
	fail := func(err error) error {
		return &ElementInteractionError{Element: id, Action: action, Err: err}
	}

	timeout, err := budget(ctx, i.elementTimeout)
	if err != nil {
		return fail(err)
	}
	if err := w.WaitForAttached(id, timeout); err != nil {
		return fail(fmt.Errorf("wait for attached: %w", err))
	}

	timeout, err = budget(ctx, i.elementTimeout)
	if err != nil {
		return fail(err)
	}
	if err := do(timeout); err != nil {
		return fail(err)
	}

	i.logger.Debugw("element interaction", "element", id, "action", action)
	return nil
}

// Present reports whether the element attaches within timeout. Running out of
// the probe timeout means absent, not failure. A done ctx or a closed window is
// returned as an *ElementInteractionError; an expired ctx deadline wraps
// ErrTimeout. Other probe errors are logged and treated as absent.
func (i *Interactor) Present(ctx context.Context, w Window, id ElementID, timeout time.Duration) (bool, error) {
	fail := func(err error) error {
		return &ElementInteractionError{Element: id, Action: ActionProbe, Err: err}
	}

	timeout, err := budget(ctx, timeout)
	if err != nil {
		return false, fail(err)
	}

	err = w.WaitForAttached(id, timeout)
	switch {
	case err == nil:
		return true, nil
	case ctx.Err() != nil:
		return false, fail(ctxErr(ctx))
	case errors.Is(err, ErrWindowClosed):
		return false, fail(err)
	case errors.Is(err, ErrTimeout):
		return false, nil
	default:
		i.logger.Warnw("presence probe failed, treating element as absent", "element", id, "error", err)
		return false, nil
	}
}

// WaitForLoad blocks until w reaches state, bounded by the page-load timeout.
func (i *Interactor) WaitForLoad(ctx context.Context, w Window, state LoadState) error {
	if state == "" {
		state = LoadStateDOMContentLoaded
	}

	timeout, err := budget(ctx, i.pageLoadTimeout)
	if err != nil {
		return &PageLoadError{State: state, Err: err}
	}
	if err := w.WaitForLoadState(state, timeout); err != nil {
		return &PageLoadError{State: state, Err: err}
	}

	i.logger.Debugw("window loaded", "state", state)
	return nil
}

// budget returns the time an operation may block: limit, shortened to what is
// left before ctx's deadline. A done ctx, or a deadline already passed, is an
// error; an expired deadline wraps ErrTimeout.
func budget(ctx context.Context, limit time.Duration) (time.Duration, error) {
	if err := ctxErr(ctx); err != nil {
		return 0, err
	}
	if dl, ok := ctx.Deadline(); ok {
		left := time.Until(dl)
		if left <= 0 {
			return 0, fmt.Errorf("%w: %w", ErrTimeout, context.DeadlineExceeded)
		}
		if left < limit {
			limit = left
		}
	}
	return limit, nil
}

// ctxErr returns ctx.Err(), wrapping ErrTimeout when the deadline has passed.
func ctxErr(ctx context.Context) error {
	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
