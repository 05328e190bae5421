package onboarding

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testWords = []string{
	"tornado", "vessel", "quantum", "glimpse", "saddle", "orchard",
	"pepper", "walnut", "blossom", "canyon", "fossil", "harbor",
}

const testPassword = "correct-horse-battery"

func testInput() Input {
	return Input{Words: append([]string(nil), testWords...), Password: testPassword}
}

// call is one method invocation on a fakeWindow.
type call struct {
	op      string
	element ElementID
	value   string
}

// fakeWindow records every call. Elements listed in missing never attach,
// elements in waitErrs fail their attachment wait with that error, elements in
// failOn attach but their action fails.
type fakeWindow struct {
	title    string
	titleErr error
	loadErr  error
	closeErr error
	missing  map[ElementID]bool
	waitErrs map[ElementID]error
	failOn   map[ElementID]error
	panicOn  ElementID

	calls  []call
	closed int
}

func newFakeWindow(title string) *fakeWindow {
	return &fakeWindow{
		title:   title,
		missing:  map[ElementID]bool{},
		waitErrs: map[ElementID]error{},
		failOn:   map[ElementID]error{},
	}
}

func (w *fakeWindow) Title() (string, error) {
	if w.titleErr != nil {
		return "", w.titleErr
	}
	return w.title, nil
}

func (w *fakeWindow) WaitForLoadState(state LoadState, _ time.Duration) error {
	w.calls = append(w.calls, call{op: "load", value: string(state)})
	return w.loadErr
}

func (w *fakeWindow) WaitForAttached(id ElementID, timeout time.Duration) error {
	w.calls = append(w.calls, call{op: "wait", element: id})
	if w.missing[id] {
		return fmt.Errorf("%w: %s not attached after %s", ErrTimeout, id, timeout)
	}
	return w.waitErrs[id]
}

// blockingWindow holds attachment waits on blocked elements for the whole
// timeout it is given, like a browser waiting on an element that never shows.
type blockingWindow struct {
	*fakeWindow
	blocked map[ElementID]bool
}

func (w *blockingWindow) WaitForAttached(id ElementID, timeout time.Duration) error {
	if !w.blocked[id] {
		return w.fakeWindow.WaitForAttached(id, timeout)
	}
	w.calls = append(w.calls, call{op: "wait", element: id})
	time.Sleep(timeout + 20*time.Millisecond)
	return fmt.Errorf("%w: %s not attached after %s", ErrTimeout, id, timeout)
}

func (w *fakeWindow) Click(id ElementID, _ time.Duration) error {
	return w.act(call{op: "click", element: id})
}

func (w *fakeWindow) Fill(id ElementID, value string, _ time.Duration) error {
	return w.act(call{op: "fill", element: id, value: value})
}

func (w *fakeWindow) act(c call) error {
	w.calls = append(w.calls, c)
	if w.panicOn != "" && w.panicOn == c.element {
		panic("element vanished: " + string(c.element))
	}
	return w.failOn[c.element]
}

func (w *fakeWindow) Close() error {
	w.closed++
	return w.closeErr
}

// actions returns the click and fill calls in order.
func (w *fakeWindow) actions() []call {
	var out []call
	for _, c := range w.calls {
		if c.op == "click" || c.op == "fill" {
			out = append(out, c)
		}
	}
	return out
}

// touched reports whether any call addressed id.
func (w *fakeWindow) touched(id ElementID) bool {
	for _, c := range w.calls {
		if c.element == id {
			return true
		}
	}
	return false
}

type fakeSession struct {
	windows     []Window
	appearAfter int
	listed      int
	closed      int
	closeErr    error
}

func newFakeSession(windows ...Window) *fakeSession {
	return &fakeSession{windows: windows}
}

func (s *fakeSession) Windows() []Window {
	s.listed++
	if s.listed <= s.appearAfter {
		return nil
	}
	return s.windows
}

func (s *fakeSession) Close() error {
	s.closed++
	return s.closeErr
}

type fakeLauncher struct {
	session  *fakeSession
	err      error
	launches int
}

func (l *fakeLauncher) Launch(context.Context) (Session, error) {
	l.launches++
	if l.err != nil {
		return nil, l.err
	}
	return l.session, nil
}

// extensionSetup returns a launcher whose session holds a blank tab and the
// extension window.
func extensionSetup() (*fakeLauncher, *fakeWindow) {
	w := newFakeWindow("MetaMask")
	session := newFakeSession(newFakeWindow("about:blank"), w)
	return &fakeLauncher{session: session}, w
}

func newObservedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core).Sugar(), logs
}

// newTestSequencer builds a sequencer with timeouts short enough for tests.
func newTestSequencer(t *testing.T, launcher Launcher, opts ...Option) (*Sequencer, *observer.ObservedLogs) {
	t.Helper()
	logger, logs := newObservedLogger()
	base := []Option{
		WithLogger(logger),
		WithWindowLocator(NewWindowLocator(time.Millisecond, 50*time.Millisecond, logger)),
		WithInteractor(NewInteractor(time.Second, time.Second, logger)),
		WithPresenceProbeTimeout(10 * time.Millisecond),
		WithSettleDelay(0),
	}
	return NewSequencer(launcher, append(base, opts...)...), logs
}

func seedElement(t *testing.T, i int) ElementID {
	t.Helper()
	id, err := SeedWordElement(i)
	if err != nil {
		t.Fatalf("SeedWordElement(%d): %v", i, err)
	}
	return id
}

func isSeedElement(id ElementID) bool {
	return strings.HasPrefix(string(id), seedWordPrefix)
}
