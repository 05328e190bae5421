package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/onboard/pkg/onboarding"
)

// pwLocator lets fakeLocator embed playwright.Locator without the field name
// colliding with the interface's Locator method.
type pwLocator = playwright.Locator

// fakeLocator records the options of the calls a Window makes. The embedded
// interface panics on anything else.
type fakeLocator struct {
	pwLocator
	page *fakePage
	id   string
}

func (l *fakeLocator) WaitFor(options ...playwright.LocatorWaitForOptions) error {
	l.page.waitOpts = append(l.page.waitOpts, options...)
	l.page.ops = append(l.page.ops, "wait "+l.id)
	return l.page.err
}

func (l *fakeLocator) Click(options ...playwright.LocatorClickOptions) error {
	l.page.clickOpts = append(l.page.clickOpts, options...)
	l.page.ops = append(l.page.ops, "click "+l.id)
	return l.page.err
}

func (l *fakeLocator) Fill(value string, options ...playwright.LocatorFillOptions) error {
	l.page.fillOpts = append(l.page.fillOpts, options...)
	l.page.ops = append(l.page.ops, "fill "+l.id+"="+value)
	return l.page.err
}

type fakePage struct {
	title string
	err   error

	ops       []string
	loadOpts  []playwright.PageWaitForLoadStateOptions
	waitOpts  []playwright.LocatorWaitForOptions
	clickOpts []playwright.LocatorClickOptions
	fillOpts  []playwright.LocatorFillOptions
	closed    bool
}

func (p *fakePage) Title() (string, error) { return p.title, nil }

func (p *fakePage) WaitForLoadState(options ...playwright.PageWaitForLoadStateOptions) error {
	p.loadOpts = append(p.loadOpts, options...)
	return p.err
}

func (p *fakePage) GetByTestId(testId interface{}) playwright.Locator {
	return &fakeLocator{page: p, id: fmt.Sprint(testId)}
}

func (p *fakePage) Close(options ...playwright.PageCloseOptions) error {
	p.closed = true
	return p.err
}

func TestWindow_Interactions(t *testing.T) {
	p := &fakePage{title: "MetaMask"}
	w := &Window{page: p}

	title, err := w.Title()
	require.NoError(t, err)
	assert.Equal(t, "MetaMask", title)

	require.NoError(t, w.WaitForAttached(onboarding.ElementTermsCheckbox, 5*time.Second))
	require.NoError(t, w.Click(onboarding.ElementTermsCheckbox, 5*time.Second))
	require.NoError(t, w.Fill("import-srp__srp-word-0", "tornado", 250*time.Millisecond))
	require.NoError(t, w.Close())

	assert.Equal(t, []string{
		"wait onboarding-terms-checkbox",
		"click onboarding-terms-checkbox",
		"fill import-srp__srp-word-0=tornado",
	}, p.ops)
	assert.True(t, p.closed)

	require.Len(t, p.waitOpts, 1)
	require.NotNil(t, p.waitOpts[0].State)
	assert.Equal(t, playwright.WaitForSelectorState("attached"), *p.waitOpts[0].State)
	assert.Equal(t, 5000.0, *p.waitOpts[0].Timeout)
	assert.Equal(t, 5000.0, *p.clickOpts[0].Timeout)
	assert.Equal(t, 250.0, *p.fillOpts[0].Timeout)
}

func TestWindow_WaitForLoadState(t *testing.T) {
	p := &fakePage{}
	w := &Window{page: p}

	require.NoError(t, w.WaitForLoadState(onboarding.LoadStateDOMContentLoaded, 30*time.Second))
	require.Len(t, p.loadOpts, 1)
	assert.Equal(t, playwright.LoadState("domcontentloaded"), *p.loadOpts[0].State)
	assert.Equal(t, 30000.0, *p.loadOpts[0].Timeout)
}

func TestWindow_TimeoutMapping(t *testing.T) {
	p := &fakePage{err: fmt.Errorf("locator.waitFor: %w", playwright.ErrTimeout)}
	w := &Window{page: p}

	err := w.WaitForAttached(onboarding.ElementPinDone, time.Second)
	assert.ErrorIs(t, err, onboarding.ErrTimeout)
	assert.ErrorIs(t, err, playwright.ErrTimeout)

	p.err = errors.New("element is detached")
	err = w.Click(onboarding.ElementPinDone, time.Second)
	assert.NotErrorIs(t, err, onboarding.ErrTimeout)
	assert.EqualError(t, err, "element is detached")

	p.err = fmt.Errorf("locator.waitFor: %w", playwright.ErrTargetClosed)
	err = w.WaitForAttached(onboarding.ElementPasswordNew, time.Second)
	assert.ErrorIs(t, err, onboarding.ErrWindowClosed)
	assert.NotErrorIs(t, err, onboarding.ErrTimeout)
}

func TestMillis(t *testing.T) {
	assert.Equal(t, 1500.0, millis(1500*time.Millisecond))
	assert.Equal(t, 1.0, millis(0), "zero would disable the timeout")
	assert.Equal(t, 1.0, millis(100*time.Microsecond))
}

func TestArgs(t *testing.T) {
	assert.Equal(t, []string{
		"--disable-extensions-except=/ext/wallet",
		"--load-extension=/ext/wallet",
	}, Args("/ext/wallet"))
}

func TestLaunchOptions(t *testing.T) {
	lo := launchOptions(Options{
		ExtensionDir: "/ext/wallet",
		Headless:     true,
		SlowMo:       250 * time.Millisecond,
		Channel:      "chrome",
	})
	assert.True(t, *lo.Headless)
	assert.Equal(t, 250.0, *lo.SlowMo)
	assert.Equal(t, "chrome", *lo.Channel)
	assert.Equal(t, Args("/ext/wallet"), lo.Args)

	lo = launchOptions(Options{ExtensionDir: "/ext/wallet"})
	assert.False(t, *lo.Headless)
	assert.Nil(t, lo.SlowMo)
	assert.Nil(t, lo.Channel)
}

func TestLaunch_RejectsMissingExtension(t *testing.T) {
	l := NewLauncher(Options{ExtensionDir: filepath.Join(t.TempDir(), "missing")}, nil)
	_, err := l.Launch(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, l.initialized, "driver is not started for a bad extension dir")

	file := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0600))
	_, err = NewLauncher(Options{ExtensionDir: file}, nil).Launch(context.Background())
	assert.ErrorContains(t, err, "not a directory")

	_, err = NewLauncher(Options{}, nil).Launch(context.Background())
	assert.ErrorContains(t, err, "not set")
}

func TestLaunch_CanceledBeforeStart(t *testing.T) {
	l := NewLauncher(Options{ExtensionDir: t.TempDir()}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Launch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, l.initialized)
}

func TestShutdown_NotInitialized(t *testing.T) {
	assert.NoError(t, NewLauncher(Options{}, nil).Shutdown())
}
