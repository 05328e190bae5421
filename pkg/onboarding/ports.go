package onboarding

import (
	"context"
	"time"
)

// LoadState is a document readiness state a window can be waited on.
type LoadState string

const (
	LoadStateLoad             LoadState = "load"
	LoadStateDOMContentLoaded LoadState = "domcontentloaded"
	LoadStateNetworkIdle      LoadState = "networkidle"
)

// Window is one open page of a Session. Methods block until done or until the
// given timeout elapses; a timeout must be reported with an error that wraps
// ErrTimeout.
type Window interface {
	// Title returns the current document title.
	Title() (string, error)

	// WaitForLoadState blocks until the document reaches state.
	WaitForLoadState(state LoadState, timeout time.Duration) error

	// WaitForAttached blocks until the element with the given test id is
	// attached to the document.
	WaitForAttached(id ElementID, timeout time.Duration) error

	// Click clicks the element with the given test id.
	Click(id ElementID, timeout time.Duration) error

	// Fill sets the text value of the element with the given test id.
	Fill(id ElementID, value string, timeout time.Duration) error

	// Close closes the window.
	Close() error
}

// Session is a running browser with the extension loaded.
type Session interface {
	// Windows returns the currently open windows in opening order.
	Windows() []Window

	// Close releases the browser and everything it owns.
	Close() error
}

// Launcher acquires a Session.
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(ctx context.Context) (Session, error)

// Launch calls f.
func (f LauncherFunc) Launch(ctx context.Context) (Session, error) {
	return f(ctx)
}

// Logger is the structured logger the package writes to. *zap.SugaredLogger
// satisfies it.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}
