package onboarding

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Default values for window discovery.
const (
	DefaultPollInterval  = 100 * time.Millisecond
	DefaultWindowTimeout = 30 * time.Second
)

var (
	errEmptyTitle = errors.New("title substring is empty")
	errNoMatcher  = errors.New("title matcher is nil")
)

// WindowLocator finds the extension window among the open windows of a session.
type WindowLocator struct {
	interval time.Duration
	timeout  time.Duration
	logger   Logger
}

// NewWindowLocator creates a locator sampling every interval and giving up after
// timeout. Non-positive values fall back to the defaults.
func NewWindowLocator(interval, timeout time.Duration, logger Logger) *WindowLocator {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultWindowTimeout
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &WindowLocator{
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// TitleMatcher reports whether a window title identifies the target window.
type TitleMatcher func(title string) bool

// Locate samples the titles of all open windows until one contains title and
// returns that window. It fails with *WindowNotFoundError wrapping ErrTimeout
// when the timeout or ctx's deadline elapses, or wrapping context.Canceled when
// ctx is canceled first.
func (l *WindowLocator) Locate(ctx context.Context, session Session, title string) (Window, error) {
	if title == "" {
		return nil, &ConfigError{Field: "window title", Err: errEmptyTitle}
	}
	return l.LocateMatch(ctx, session, title, func(t string) bool {
		return strings.Contains(t, title)
	})
}

// LocateMatch is Locate with a custom matcher; name describes the matcher in
// errors and logs.
func (l *WindowLocator) LocateMatch(ctx context.Context, session Session, name string, match TitleMatcher) (Window, error) {
	if match == nil {
		return nil, &ConfigError{Field: "window title", Err: errNoMatcher}
	}

	deadline := time.NewTimer(l.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	var seen []string
	for attempt := 1; ; attempt++ {
		var w Window
		w, seen = l.sample(session, match)
		if w != nil {
			l.logger.Debugw("extension window found", "title_match", name, "attempts", attempt)
			return w, nil
		}

		if err := ctxErr(ctx); err != nil {
			return nil, &WindowNotFoundError{Title: name, Attempts: attempt, Seen: seen, Err: err}
		}

		select {
		case <-ctx.Done():
			return nil, &WindowNotFoundError{Title: name, Attempts: attempt, Seen: seen, Err: ctxErr(ctx)}
		case <-deadline.C:
			return nil, &WindowNotFoundError{Title: name, Attempts: attempt, Seen: seen, Err: ErrTimeout}
		case <-ticker.C:
		}
	}
}

// sample reads every title once. Windows whose title cannot be read (usually
// because they are closing) are skipped.
func (l *WindowLocator) sample(session Session, match TitleMatcher) (Window, []string) {
	windows := session.Windows()
	titles := make([]string, 0, len(windows))
	for _, w := range windows {
		t, err := w.Title()
		if err != nil {
			continue
		}
		titles = append(titles, t)
		if match(t) {
			return w, titles
		}
	}
	return nil, titles
}
