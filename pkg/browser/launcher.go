// Package browser runs the onboarding flow on a real Chromium through
// playwright. It implements the onboarding Launcher, Session and Window ports.
package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/entrhq/onboard/pkg/onboarding"
)

var (
	_ onboarding.Launcher = (*Launcher)(nil)
	_ onboarding.Session  = (*Session)(nil)
	_ onboarding.Window   = (*Window)(nil)
)

// Launcher starts the playwright driver and a persistent browser context with
// the extension loaded.
type Launcher struct {
	mu          sync.Mutex
	opts        Options
	logger      onboarding.Logger
	playwright  *playwright.Playwright
	initialized bool
}

// NewLauncher creates a launcher. Nothing is started until Launch.
func NewLauncher(opts Options, logger onboarding.Logger) *Launcher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Launcher{opts: opts, logger: logger}
}

// Initialize installs (unless skipped) and starts the playwright driver. It is
// a no-op once the driver runs.
func (l *Launcher) Initialize() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.initialized {
		return nil
	}

	// Driver output would interleave with the console log.
	opts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}

	if !l.opts.SkipInstall {
		if err := playwright.Install(opts); err != nil {
			return fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	l.playwright = pw
	l.initialized = true
	return nil
}

// Launch starts the browser. The returned session owns the browser and the
// driver; closing it stops both.
func (l *Launcher) Launch(ctx context.Context) (onboarding.Session, error) {
	if err := checkExtensionDir(l.opts.ExtensionDir); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := l.Initialize(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(err, l.Shutdown())
	}

	l.logger.Debugw("launching persistent context",
		"extension_dir", l.opts.ExtensionDir,
		"channel", l.opts.Channel,
		"headless", l.opts.Headless,
		"slow_mo", l.opts.SlowMo,
	)

	bctx, err := l.playwright.Chromium.LaunchPersistentContext(l.opts.UserDataDir, launchOptions(l.opts))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to launch browser: %w", err), l.Shutdown())
	}

	return &Session{context: bctx, launcher: l}, nil
}

// Shutdown stops the playwright driver.
func (l *Launcher) Shutdown() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.initialized || l.playwright == nil {
		return nil
	}
	l.initialized = false
	if err := l.playwright.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

func launchOptions(opts Options) playwright.BrowserTypeLaunchPersistentContextOptions {
	lo := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     Args(opts.ExtensionDir),
	}
	if opts.SlowMo > 0 {
		lo.SlowMo = playwright.Float(millis(opts.SlowMo))
	}
	if opts.Channel != "" {
		lo.Channel = playwright.String(opts.Channel)
	}
	return lo
}

func checkExtensionDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("extension directory is not set")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("extension directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("extension directory %s is not a directory", dir)
	}
	return nil
}
