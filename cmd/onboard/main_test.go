package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/onboard/pkg/config"
	"github.com/entrhq/onboard/pkg/onboarding"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		res  *onboarding.Result
		want int
	}{
		{
			name: "completed",
			res:  &onboarding.Result{State: onboarding.State{Status: onboarding.StatusCompleted}},
			want: exitCompleted,
		},
		{
			name: "element failure",
			res: &onboarding.Result{
				State: onboarding.State{Status: onboarding.StatusAborted},
				Err:   &onboarding.ElementInteractionError{Element: onboarding.ElementPinDone},
			},
			want: exitAborted,
		},
		{
			name: "window not found",
			res: &onboarding.Result{
				State: onboarding.State{Status: onboarding.StatusAborted},
				Err:   &onboarding.WindowNotFoundError{Title: "MetaMask", Err: onboarding.ErrTimeout},
			},
			want: exitAborted,
		},
		{
			name: "invalid input",
			res: &onboarding.Result{
				State: onboarding.State{Status: onboarding.StatusAborted},
				Err:   &onboarding.ConfigError{Field: "password", Err: errors.New("required")},
			},
			want: exitConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.res))
		})
	}
}

func TestExecute_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"version"}, &stdout, &stderr)

	assert.Equal(t, exitCompleted, code)
	assert.Contains(t, stdout.String(), "onboard "+version)
	assert.Contains(t, stdout.String(), onboarding.ContractVersion)
}

func TestExecute_UnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"--no-such-flag"}, &stdout, &stderr)

	assert.Equal(t, exitConfig, code)
	assert.Contains(t, stderr.String(), "no-such-flag")
}

func TestExecute_MissingPassword(t *testing.T) {
	t.Setenv(config.EnvPassword, "")
	var stdout, stderr bytes.Buffer

	code := execute(context.Background(), []string{
		"--no-banner",
		"--extension-dir", t.TempDir(),
		"--log-dir", t.TempDir(),
	}, &stdout, &stderr)

	assert.Equal(t, exitConfig, code)
	assert.Contains(t, stderr.String(), "password is required")
	assert.Empty(t, stdout.String(), "nothing runs before the config is valid")
}

func TestExecute_SeedFileNotFound(t *testing.T) {
	t.Setenv(config.EnvPassword, "correct-horse-battery")
	logDir := t.TempDir()
	missing := filepath.Join(t.TempDir(), "seed.txt")
	var stdout, stderr bytes.Buffer

	code := execute(context.Background(), []string{
		"--no-banner",
		"--seed-file", missing,
		"--extension-dir", t.TempDir(),
		"--log-dir", logDir,
	}, &stdout, &stderr)

	assert.Equal(t, exitConfig, code)
	assert.Contains(t, stderr.String(), "seed file not found: "+missing)

	data, err := os.ReadFile(filepath.Join(logDir, config.DefaultConfig().Logging.File))
	require.NoError(t, err)
	assert.Contains(t, string(data), "seed file not found")
}

func TestExecute_InvalidSeedFile(t *testing.T) {
	t.Setenv(config.EnvPassword, "correct-horse-battery")
	seedFile := filepath.Join(t.TempDir(), "seed.txt")
	require.NoError(t, os.WriteFile(seedFile, []byte("only three words"), 0600))
	var stdout, stderr bytes.Buffer

	code := execute(context.Background(), []string{
		"--seed-file", seedFile,
		"--extension-dir", t.TempDir(),
		"--log-dir", t.TempDir(),
	}, &stdout, &stderr)

	assert.Equal(t, exitConfig, code)
	assert.Contains(t, stderr.String(), "12 words")
	assert.Contains(t, stdout.String(), "wallet extension onboarding", "banner is printed by default")
	assert.NotContains(t, stderr.String(), "only three words")
}

func TestExecute_BadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "onboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeouts: [oops"), 0600))
	var stdout, stderr bytes.Buffer

	code := execute(context.Background(), []string{"--config", path}, &stdout, &stderr)

	assert.Equal(t, exitConfig, code)
	assert.Contains(t, stderr.String(), "failed to parse config file")
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "onboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"seed_file: from-file.txt",
		"password: from-file",
		"extension:",
		"  dir: /from/file",
		"browser:",
		"  headless: false",
	}, "\n")), 0600))
	t.Setenv(config.EnvPassword, "from-env")
	t.Setenv(config.EnvSeedFile, "from-env.txt")
	t.Setenv(config.EnvExtensionDir, "")

	cmd, flags := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, cmd.ParseFlags([]string{
		"--config", path,
		"--seed-file", "from-flag.txt",
		"--headless",
		"--timeout", "2m",
		"--debug",
	}))

	cfg, err := loadConfig(cmd, flags)
	require.NoError(t, err)

	assert.Equal(t, "from-flag.txt", cfg.SeedFile, "flags beat env")
	assert.Equal(t, "from-env", cfg.Password, "env beats file")
	assert.Equal(t, "/from/file", cfg.Extension.Dir)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 2*time.Minute, cfg.Timeouts.Run)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Console)
}

type failingCloser struct{ err error }

func (c failingCloser) Close() error { return c.err }

func TestCloseLogger(t *testing.T) {
	var stderr bytes.Buffer
	closeLogger(failingCloser{err: errors.New("write wallet_logs.log: no space left on device")}, &stderr)
	assert.Equal(t, "Warning: failed to close log file: write wallet_logs.log: no space left on device\n", stderr.String())

	stderr.Reset()
	closeLogger(failingCloser{}, &stderr)
	assert.Empty(t, stderr.String())
}
