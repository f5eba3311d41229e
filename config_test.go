/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"cert_without_key", func(c *Config) { c.tlsCert = "cert.pem" }, "tls-key"},
		{"port_too_low", func(c *Config) { c.port = 0 }, "invalid port"},
		{"port_too_high", func(c *Config) { c.port = 70000 }, "invalid port"},
		{"zero_tick", func(c *Config) { c.spinTick = 0 }, "spin tick"},
		{"negative_jitter", func(c *Config) { c.spinJitter = -time.Second }, "must not be negative"},
		{"negative_enhance_timeout", func(c *Config) { c.enhanceTimeout = -time.Second }, "enhance timeout"},
		{"zero_upload", func(c *Config) { c.maxUpload = 0 }, "upload"},
		{"bad_log_level", func(c *Config) { c.logLevel = "loud" }, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := parseLevel(in)
		require.NoError(t, err)
		require.Equal(t, want, got, in)
	}
}

func TestNewCmd_EnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("EVENTBOX_PORT", "9191")
	t.Setenv("EVENTBOX_SPIN_TICK", "40ms")

	cfg := &Config{}
	newCmd(cfg)

	require.Equal(t, 9191, cfg.port)
	require.Equal(t, 40*time.Millisecond, cfg.spinTick)
	require.Equal(t, "0.0.0.0", cfg.bind)
}

func runCmd(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := newCmd(&Config{})
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

func TestTeamsCmd_CSV(t *testing.T) {
	req := require.New(t)

	out, _, err := runCmd(t, "Ann\nBob\nCara\nDan\nEve\nFay\nGus\n", "teams", "--size", "3", "--csv")
	req.NoError(err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	req.Equal("Team Name,Member Name,Icebreaker", lines[0])
	req.Len(lines, 8)
	req.Equal(3, strings.Count(out, `"Group 1"`))
	req.Equal(3, strings.Count(out, `"Group 2"`))
	req.Equal(1, strings.Count(out, `"Group 3"`))
}

func TestTeamsCmd_EnhanceFallsBackWithoutKey(t *testing.T) {
	out, _, err := runCmd(t, "Ann,Bob,Cara,Dan", "teams", "--size", "2", "--enhance")
	require.NoError(t, err)
	require.Contains(t, out, "Team 1")
	require.Contains(t, out, "What's your favorite hobby?")
}

func TestTeamsCmd_FileAndDedup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.txt")
	require.NoError(t, os.WriteFile(path, []byte("Ann\nann\nBob\n"), 0o600))

	out, stderr, err := runCmd(t, "", "teams", path, "--dedup", "--csv")
	require.NoError(t, err)
	require.Empty(t, stderr)
	require.Equal(t, 3, strings.Count(out, "\n"))

	_, stderr, err = runCmd(t, "", "teams", path, "--csv")
	require.NoError(t, err)
	require.Contains(t, stderr, "duplicate names: [ann]")
}

func TestDrawCmd(t *testing.T) {
	req := require.New(t)

	out, stderr, err := runCmd(t, "Ann,Bob,Cara", "draw", "--count", "5")
	req.NoError(err)
	req.Contains(stderr, "only 3 of 5")
	for _, name := range []string{"Ann", "Bob", "Cara"} {
		req.Equal(1, strings.Count(out, name))
	}

	out, stderr, err = runCmd(t, "Ann", "draw", "-n", "3", "--allow-duplicates")
	req.NoError(err)
	req.Empty(stderr)
	req.Equal(3, strings.Count(out, "Ann"))
}

func TestDrawCmd_RejectsBinaryInput(t *testing.T) {
	_, _, err := runCmd(t, "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR", "draw")
	require.ErrorIs(t, err, errNotText)
}
