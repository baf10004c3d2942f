package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"flixlist/internal/config"
	"flixlist/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

// setupCLITestEnv writes a config file rooted in a temp dir and isolates the
// test from credentials exported in the developer's shell.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) cliTestEnv {
	t.Helper()
	for _, key := range []string{"UNOGS_API_KEY", "TMDB_API_KEY", "TRAKT_CLIENT_ID", "NTFY_TOPIC"} {
		t.Setenv(key, "")
	}
	t.Setenv("FLIXLIST_CHECK_AVAILABILITY", "")

	cfg := testsupport.NewConfig(t, opts...)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, cfg)
	return cliTestEnv{cfg: cfg, configPath: path}
}

func writeConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
