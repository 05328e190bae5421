package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/entrhq/onboard/pkg/banner"
	"github.com/entrhq/onboard/pkg/browser"
	"github.com/entrhq/onboard/pkg/config"
	"github.com/entrhq/onboard/pkg/logging"
	"github.com/entrhq/onboard/pkg/onboarding"
	"github.com/entrhq/onboard/pkg/report"
	"github.com/entrhq/onboard/pkg/seed"
)

func contractVersion() string {
	return onboarding.ContractVersion
}

// run executes one onboarding flow with cfg. A nil return means the wallet
// was imported; otherwise the error is an *exitError.
func run(ctx context.Context, cfg *config.Config, noBanner bool, stdout, stderr io.Writer) error {
	if !noBanner {
		fmt.Fprint(stdout, banner.Render(version))
	}

	logger, err := logging.NewLogger("onboard", loggingOptions(cfg, stderr))
	if err != nil {
		fmt.Fprintf(stderr, "Warning: file logging disabled: %v\n", err)
	}
	defer closeLogger(logger, stderr)

	logger.Infow("starting onboarding",
		"version", version,
		"config_file", cfg.ConfigFilePath,
		"extension_dir", cfg.Extension.Dir,
		"headless", cfg.Browser.Headless,
	)

	phrase, err := seed.ReadFile(cfg.SeedFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Errorw("seed file not found", "path", cfg.SeedFile)
			return &exitError{code: exitConfig, err: fmt.Errorf("seed file not found: %s", cfg.SeedFile)}
		}
		logger.Errorw("failed to load recovery phrase", "path", cfg.SeedFile, "error", err)
		return &exitError{code: exitConfig, err: err}
	}
	logger.Debugw("recovery phrase loaded", "words", phrase.Len())

	if cfg.Timeouts.Run > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeouts.Run)
		defer cancel()
	}

	seq, err := newSequencer(cfg, logger)
	if err != nil {
		return &exitError{code: exitConfig, err: err}
	}
	res := seq.Run(ctx, onboarding.Input{Words: phrase.Words(), Password: cfg.Password})

	summary := report.FromResult(res, logger.RunID())
	if cfg.Artifacts.Enabled {
		if err := report.NewArtifactWriter(cfg.Artifacts.OutputDir).WriteAll(summary); err != nil {
			logger.Warnw("failed to write artifacts", "error", err)
		} else {
			logger.Infow("artifacts written", "dir", cfg.Artifacts.OutputDir)
		}
	}
	report.NewPrinter(stdout).Summary(summary)

	if code := exitCode(res); code != exitCompleted {
		return &exitError{code: code}
	}
	return nil
}

func newSequencer(cfg *config.Config, logger *logging.Logger) (*onboarding.Sequencer, error) {
	flowLog := logger.Named("flow")
	launcher := browser.NewLauncher(browser.Options{
		ExtensionDir: cfg.Extension.Dir,
		Headless:     cfg.Browser.Headless,
		SlowMo:       cfg.Browser.SlowMo,
		Channel:      cfg.Browser.Channel,
		UserDataDir:  cfg.Browser.UserDataDir,
		SkipInstall:  cfg.Browser.SkipInstall,
	}, logger.Named("browser"))

	opts := []onboarding.Option{
		onboarding.WithLogger(flowLog),
		onboarding.WithWindowLocator(onboarding.NewWindowLocator(cfg.Timeouts.PollInterval, cfg.Timeouts.Window, flowLog)),
		onboarding.WithInteractor(onboarding.NewInteractor(cfg.Timeouts.Element, cfg.Timeouts.PageLoad, flowLog)),
		onboarding.WithWindowTitle(cfg.Extension.WindowTitle),
		onboarding.WithPresenceProbeTimeout(cfg.Timeouts.PresenceProbe),
		onboarding.WithSettleDelay(cfg.Timeouts.Settle),
	}

	matcher, err := cfg.WindowMatcher()
	if err != nil {
		return nil, fmt.Errorf("invalid extension.window_glob: %w", err)
	}
	if matcher != nil {
		opts = append(opts, onboarding.WithTitleMatcher(cfg.Extension.WindowGlob, matcher.Match))
	}

	return onboarding.NewSequencer(launcher, opts...), nil
}

// closeLogger flushes and closes the log file, warning on stderr when that
// fails since the logger itself can no longer report it.
func closeLogger(logger io.Closer, stderr io.Writer) {
	if err := logger.Close(); err != nil {
		fmt.Fprintf(stderr, "Warning: failed to close log file: %v\n", err)
	}
}

func loggingOptions(cfg *config.Config, console io.Writer) logging.Options {
	return logging.Options{
		Level:         cfg.Logging.Level,
		Dir:           cfg.Logging.Dir,
		File:          cfg.Logging.File,
		Console:       cfg.Logging.Console,
		ConsoleWriter: console,
		MaxSizeMB:     cfg.Logging.MaxSizeMB,
		MaxAgeDays:    cfg.Logging.MaxAgeDays,
		MaxBackups:    cfg.Logging.MaxBackups,
	}
}

// exitCode maps a run result to the process exit code.
func exitCode(res *onboarding.Result) int {
	switch {
	case res.Succeeded():
		return exitCompleted
	case res.Kind() == onboarding.KindConfig:
		return exitConfig
	default:
		return exitAborted
	}
}
