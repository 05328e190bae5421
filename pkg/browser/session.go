package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/onboard/pkg/onboarding"
)

// Session is one persistent browser context.
type Session struct {
	context  playwright.BrowserContext
	launcher *Launcher
}

// Windows returns the open pages in creation order.
func (s *Session) Windows() []onboarding.Window {
	pages := s.context.Pages()
	windows := make([]onboarding.Window, 0, len(pages))
	for _, p := range pages {
		windows = append(windows, &Window{page: p})
	}
	return windows
}

// Close closes the browser context and stops the driver.
func (s *Session) Close() error {
	var errs []error
	if err := s.context.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close browser context: %w", err))
	}
	if s.launcher != nil {
		if err := s.launcher.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// page is the part of playwright.Page a Window uses.
type page interface {
	Title() (string, error)
	WaitForLoadState(options ...playwright.PageWaitForLoadStateOptions) error
	GetByTestId(testId interface{}) playwright.Locator
	Close(options ...playwright.PageCloseOptions) error
}

// Window addresses elements by test id on one page.
type Window struct {
	page page
}

func (w *Window) Title() (string, error) {
	return w.page.Title()
}

func (w *Window) WaitForLoadState(state onboarding.LoadState, timeout time.Duration) error {
	ls := playwright.LoadState(state)
	err := w.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   &ls,
		Timeout: playwright.Float(millis(timeout)),
	})
	return mapError(err)
}

func (w *Window) WaitForAttached(id onboarding.ElementID, timeout time.Duration) error {
	attached := playwright.WaitForSelectorState("attached")
	err := w.page.GetByTestId(string(id)).WaitFor(playwright.LocatorWaitForOptions{
		State:   &attached,
		Timeout: playwright.Float(millis(timeout)),
	})
	return mapError(err)
}

func (w *Window) Click(id onboarding.ElementID, timeout time.Duration) error {
	err := w.page.GetByTestId(string(id)).Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(millis(timeout)),
	})
	return mapError(err)
}

func (w *Window) Fill(id onboarding.ElementID, value string, timeout time.Duration) error {
	err := w.page.GetByTestId(string(id)).Fill(value, playwright.LocatorFillOptions{
		Timeout: playwright.Float(millis(timeout)),
	})
	return mapError(err)
}

func (w *Window) Close() error {
	return mapError(w.page.Close())
}

// mapError marks playwright timeouts with onboarding.ErrTimeout and closed
// targets with onboarding.ErrWindowClosed.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, playwright.ErrTimeout):
		return fmt.Errorf("%w: %w", onboarding.ErrTimeout, err)
	case errors.Is(err, playwright.ErrTargetClosed):
		return fmt.Errorf("%w: %w", onboarding.ErrWindowClosed, err)
	default:
		return err
	}
}
