package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sumocli/internal/checkpoint"
	"sumocli/internal/config"
	"sumocli/internal/operations"
	"sumocli/internal/render"
	"sumocli/internal/render/rendertest"
	"sumocli/pkg/contracts"
)

func TestRootOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    rootOptions
		wantErr bool
	}{
		{"default", rootOptions{}, false},
		{"append and retry", rootOptions{Append: true, Retry: true}, false},
		{"read errors", rootOptions{ReadErrors: true}, false},
		{"read errors with append", rootOptions{ReadErrors: true, Append: true}, true},
		{"read errors with retry", rootOptions{ReadErrors: true, Retry: true}, true},
		{"read errors with cleanup", rootOptions{ReadErrors: true, Cleanup: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, errUsage)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRootOptionsMode(t *testing.T) {
	assert.Equal(t, string(checkpoint.ModeFresh), rootOptions{}.mode())
	assert.Equal(t, string(checkpoint.ModeAppend), rootOptions{Append: true}.mode())
}

// testEnv writes a config file rooted at a temp data dir
func testEnv(t *testing.T) (configFile string, paths *config.Paths) {
	t.Helper()
	dir := t.TempDir()
	configFile = filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf("paths:\n  data_dir: %s\ntelemetry:\n  trace_exporter: none\n", filepath.Join(dir, "data"))
	require.NoError(t, os.WriteFile(configFile, []byte(body), 0644))

	cfg, err := config.Load(configFile)
	require.NoError(t, err)
	paths, err = config.NewPaths(cfg.Paths)
	require.NoError(t, err)
	return configFile, paths
}

func testDeps(session *rendertest.Session) cliDeps {
	return cliDeps{
		NewRenderer: func(config.ScrapeConfig, *slog.Logger) render.Renderer {
			return &rendertest.Renderer{Session: session}
		},
		Now: func() time.Time { return time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC) },
	}
}

func runCLI(t *testing.T, deps cliDeps, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut, deps)
	return code, out.String(), errOut.String()
}

func TestReadErrorsRejectsAppend(t *testing.T) {
	code, stdout, stderr := runCLI(t, testDeps(nil), "--read-errors", "-a")

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "cannot be combined")
	assert.Contains(t, stdout, "Usage:")
}

func TestReadErrorsPrintsLedger(t *testing.T) {
	configFile, paths := testEnv(t)
	require.NoError(t, os.MkdirAll(paths.DataDir, 0755))
	require.NoError(t, checkpoint.WriteLedger(paths.ErrorLedger, []string{"2", "17"}))

	code, stdout, stderr := runCLI(t, testDeps(nil), "--read-errors", "--config", configFile)

	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "2\n17\n", stdout)
}

func TestReadErrorsWithoutLedger(t *testing.T) {
	configFile, _ := testEnv(t)

	code, stdout, stderr := runCLI(t, testDeps(nil), "--read-errors", "--config", configFile)

	assert.Equal(t, 0, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "no error ledger")
}

func TestTorikumiRejectsDayOutOfRange(t *testing.T) {
	configFile, _ := testEnv(t)

	code, _, stderr := runCLI(t, testDeps(nil), "torikumi", "--day", "16", "--config", configFile)

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "day must be between")
}

func TestRedriveWithoutRosterFails(t *testing.T) {
	configFile, paths := testEnv(t)
	session := rendertest.NewSession(map[string]string{})

	code, _, stderr := runCLI(t, testDeps(session), "redrive", "--config", configFile)

	assert.Equal(t, 1, code)
	assert.NotEmpty(t, stderr)
	assert.DirExists(t, paths.DataDir)
}

func TestAwardsWritesWinners(t *testing.T) {
	configFile, paths := testEnv(t)
	session := rendertest.NewSession(map[string]string{
		config.DefaultAwardsURL: `<html><body><div><div class="mdSection1">` +
			`<div class="mdSection1"><h3 class="mdTtl6 type2">Makuuchi</h3>` +
			`<table class="mdTable3 type2"><tr><th><a href="/EnSumoDataRikishi/profile/3842/">w</a></th></tr></table></div>` +
			`</div><div id="sansho"></div></div></body></html>`,
	})

	code, _, stderr := runCLI(t, testDeps(session), "awards", "--config", configFile)

	require.Equal(t, 0, code, stderr)
	assert.FileExists(t, paths.WinnersCSV)
	assert.FileExists(t, paths.AwardsCSV)
}

func TestUnknownFlag(t *testing.T) {
	code, _, stderr := runCLI(t, testDeps(nil), "--nope")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown flag")
}

func TestVersionFlag(t *testing.T) {
	code, stdout, _ := runCLI(t, testDeps(nil), "--version")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, contracts.Version)
}

func TestOperationsConfig(t *testing.T) {
	got := operationsConfig(config.PipelineConfig{
		StageTimeouts:   map[string]time.Duration{operations.StageIDProfiles: 90 * time.Minute},
		StageAttempts:   3,
		RetryDelay:      time.Second,
		ContinueOnError: true,
	})

	assert.Equal(t, 90*time.Minute, got.GetStageTimeout(operations.StageIDProfiles))
	assert.Equal(t, operations.DefaultRosterTimeout, got.GetStageTimeout(operations.StageIDRoster))
	assert.Equal(t, 3, got.RetryConfig.MaxAttempts)
	assert.Equal(t, time.Second, got.RetryConfig.InitialDelay)
	assert.True(t, got.ContinueOnError)

	defaults := operationsConfig(config.Default().Pipeline)
	assert.Equal(t, 1, defaults.RetryConfig.MaxAttempts)
	assert.False(t, defaults.ContinueOnError)
}
