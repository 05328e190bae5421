package browser

import (
	"fmt"
	"time"
)

// Options configures the browser launched for a run.
type Options struct {
	// ExtensionDir is the unpacked extension loaded into the browser
	ExtensionDir string

	// Headless controls whether the browser runs without a visible window
	Headless bool

	// SlowMo delays every browser operation, for watching a run
	SlowMo time.Duration

	// Channel selects an installed browser build, e.g. "chrome"
	Channel string

	// UserDataDir is the persistent profile directory; empty means a
	// throwaway profile
	UserDataDir string

	// SkipInstall skips the driver download on first launch
	SkipInstall bool
}

// Args returns the command line flags restricting the browser to the
// extension in dir.
func Args(dir string) []string {
	return []string{
		fmt.Sprintf("--disable-extensions-except=%s", dir),
		fmt.Sprintf("--load-extension=%s", dir),
	}
}

// millis converts d to a playwright timeout. Playwright treats 0 as "no
// timeout", so the result is at least one millisecond.
func millis(d time.Duration) float64 {
	ms := float64(d) / float64(time.Millisecond)
	if ms < 1 {
		return 1
	}
	return ms
}
