package onboarding

import (
	"errors"
	"fmt"
)

// ErrTimeout marks a suspension point that ran out of time. It is wrapped by the
// error of whichever operation timed out; test with errors.Is.
var ErrTimeout = errors.New("timeout")

// ErrWindowClosed marks an operation on a window or browser that has already
// gone away.
var ErrWindowClosed = errors.New("window closed")

var errNilSession = errors.New("launcher returned no session")

// ErrorKind classifies a flow failure.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindConfig
	KindWindowNotFound
	KindPageLoad
	KindElementInteraction
	KindTimeout
	KindUnexpected
)

// String returns the name used in abort reasons.
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindConfig:
		return "ConfigError"
	case KindWindowNotFound:
		return "WindowNotFoundError"
	case KindPageLoad:
		return "PageLoadError"
	case KindElementInteraction:
		return "ElementInteractionError"
	case KindTimeout:
		return "TimeoutError"
	case KindUnexpected:
		return "UnexpectedError"
	default:
		return "unknown"
	}
}

// ConfigError reports invalid input detected before any browser resource exists.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Reason returns the abort reason for this error.
func (e *ConfigError) Reason() string {
	return fmt.Sprintf("%s: %s", KindConfig, e.Field)
}

// WindowNotFoundError reports that no window title matched before the locator
// gave up.
type WindowNotFoundError struct {
	Title    string
	Attempts int
	Seen     []string
	Err      error
}

func (e *WindowNotFoundError) Error() string {
	return fmt.Sprintf("no window title containing %q after %d samples (last seen %q): %v",
		e.Title, e.Attempts, e.Seen, e.Err)
}

func (e *WindowNotFoundError) Unwrap() error { return e.Err }

// Reason returns the abort reason for this error.
func (e *WindowNotFoundError) Reason() string {
	return fmt.Sprintf("%s: %s", KindWindowNotFound, e.Title)
}

// PageLoadError reports that the active window never reached the load state.
type PageLoadError struct {
	State LoadState
	Err   error
}

func (e *PageLoadError) Error() string {
	return fmt.Sprintf("window did not reach %s: %v", e.State, e.Err)
}

func (e *PageLoadError) Unwrap() error { return e.Err }

// Reason returns the abort reason for this error.
func (e *PageLoadError) Reason() string {
	return fmt.Sprintf("%s: %s", KindPageLoad, e.State)
}

// ElementInteractionError reports an element that never attached or an action
// that failed on it.
type ElementInteractionError struct {
	Element ElementID
	Action  ActionKind
	Err     error
}

func (e *ElementInteractionError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Action, e.Element, e.Err)
}

func (e *ElementInteractionError) Unwrap() error { return e.Err }

// Reason returns the abort reason for this error.
func (e *ElementInteractionError) Reason() string {
	return fmt.Sprintf("%s: %s", KindElementInteraction, e.Element)
}

// UnexpectedError wraps any other fault, including recovered panics.
type UnexpectedError struct {
	Op    string
	Err   error
	Panic any
}

func (e *UnexpectedError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("%s: panic: %v", e.Op, e.Panic)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

// Reason returns the abort reason for this error.
func (e *UnexpectedError) Reason() string {
	return fmt.Sprintf("%s: %s", KindUnexpected, e.Op)
}

// KindOf classifies err. A bare ErrTimeout (not wrapped in one of the typed
// errors) is KindTimeout.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var (
		cfgErr    *ConfigError
		winErr    *WindowNotFoundError
		loadErr   *PageLoadError
		elemErr   *ElementInteractionError
		unexpeErr *UnexpectedError
	)
	switch {
	case errors.As(err, &cfgErr):
		return KindConfig
	case errors.As(err, &winErr):
		return KindWindowNotFound
	case errors.As(err, &loadErr):
		return KindPageLoad
	case errors.As(err, &elemErr):
		return KindElementInteraction
	case errors.As(err, &unexpeErr):
		return KindUnexpected
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	default:
		return KindUnexpected
	}
}

// TimedOut reports whether err was caused by a timeout at any suspension point.
func TimedOut(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// Reason renders err as "<Kind>: <subject>".
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var r interface{ Reason() string }
	if errors.As(err, &r) {
		return r.Reason()
	}
	return fmt.Sprintf("%s: %v", KindOf(err), err)
}
