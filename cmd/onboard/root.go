package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/entrhq/onboard/pkg/config"
)

// Exit codes.
const (
	exitCompleted = 0
	exitAborted   = 1
	exitConfig    = 2
)

// exitError carries the process exit code out of a cobra RunE.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// cliFlags holds command-line configuration
type cliFlags struct {
	configFile   string
	seedFile     string
	extensionDir string
	logDir       string
	headless     bool
	slowMo       time.Duration
	timeout      time.Duration
	debug        bool
	noBanner     bool
}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *cliFlags) {
	flags := &cliFlags{}

	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Import a wallet into a freshly installed browser extension",
		Long: "onboard launches Chrome with the wallet extension loaded, walks the extension's\n" +
			"onboarding pages and imports the wallet from a 12-word recovery phrase.\n\n" +
			"The password is read from " + config.EnvPassword + " or the config file.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return &exitError{code: exitConfig, err: err}
			}
			return run(cmd.Context(), cfg, flags.noBanner, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVarP(&flags.configFile, "config", "c", "", "Path to configuration file (YAML)")
	f.StringVar(&flags.seedFile, "seed-file", "", "File holding the 12 recovery words")
	f.StringVar(&flags.extensionDir, "extension-dir", "", "Unpacked extension directory")
	f.StringVar(&flags.logDir, "log-dir", "", "Directory for the rotating log file")
	f.BoolVar(&flags.headless, "headless", false, "Run the browser without a window")
	f.DurationVar(&flags.slowMo, "slow-mo", 0, "Delay every browser operation (e.g. 250ms)")
	f.DurationVar(&flags.timeout, "timeout", 0, "Abort the whole run after this long (0 = no limit)")
	f.BoolVar(&flags.debug, "debug", false, "Log at debug level and mirror the log to the console")
	f.BoolVar(&flags.noBanner, "no-banner", false, "Do not print the startup banner")

	cmd.AddCommand(newVersionCmd(stdout))
	return cmd, flags
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "onboard %s (extension contract %s)\n", version, contractVersion())
		},
	}
}

// loadConfig layers defaults, the config file, the environment and the flags
// that were set, in that order, then validates the result.
func loadConfig(cmd *cobra.Command, flags *cliFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	applyFlags(cmd, flags, cfg)

	if err := cfg.ResolvePaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, flags *cliFlags, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("seed-file") {
		cfg.SeedFile = flags.seedFile
	}
	if changed("extension-dir") {
		cfg.Extension.Dir = flags.extensionDir
	}
	if changed("log-dir") {
		cfg.Logging.Dir = flags.logDir
	}
	if changed("headless") {
		cfg.Browser.Headless = flags.headless
	}
	if changed("slow-mo") {
		cfg.Browser.SlowMo = flags.slowMo
	}
	if changed("timeout") {
		cfg.Timeouts.Run = flags.timeout
	}
	if flags.debug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Console = true
	}
}

// execute runs the root command with args and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd, _ := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitCompleted
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", exitErr.err)
		}
		return exitErr.code
	}

	// Flag parsing and usage errors.
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitConfig
}
