package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAPIBase, "")
	t.Setenv(EnvToken, "")
	t.Setenv(EnvLogLevel, "")
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBase != defaultAPIBase {
		t.Fatalf("APIBase = %q, want %q", cfg.APIBase, defaultAPIBase)
	}
	if cfg.RequestTimeout != defaultRequestTimeout || cfg.PollInterval != defaultPollInterval {
		t.Fatalf("durations = %v/%v, want defaults", cfg.RequestTimeout, cfg.PollInterval)
	}
	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
	if cfg.HasToken() {
		t.Fatalf("HasToken = true, want false")
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	path := writeConfig(t, `
api_base = "  10.0.0.5:9999/  "
token = " abc "
request_timeout = "3s"
poll_interval = "1m"
page_size_override = 8
log_file = "  ~/.retriever/client.log  "
log_level = "DEBUG"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBase != "http://10.0.0.5:9999" {
		t.Fatalf("APIBase = %q, want http://10.0.0.5:9999", cfg.APIBase)
	}
	if cfg.Token != "abc" {
		t.Fatalf("Token = %q, want abc", cfg.Token)
	}
	if cfg.RequestTimeout != 3*time.Second || cfg.PollInterval != time.Minute {
		t.Fatalf("durations = %v/%v", cfg.RequestTimeout, cfg.PollInterval)
	}
	if cfg.PageSize != 8 {
		t.Fatalf("PageSize = %d, want 8", cfg.PageSize)
	}
	if !strings.HasPrefix(cfg.LogFile, home) {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvAPIBase, "https://lost.example.com")
	t.Setenv(EnvToken, "from-env")
	t.Setenv(EnvLogLevel, "warn")

	path := writeConfig(t, `
api_base = "http://127.0.0.1:1"
token = "from-file"
log_level = "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBase != "https://lost.example.com" || cfg.Token != "from-env" || cfg.LogLevel != "warn" {
		t.Fatalf("cfg = %+v, want env values", cfg)
	}
}

func TestLoad_ReadsTokenFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)

	tokenPath := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(tokenPath, []byte("secret\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(writeConfig(t, `token_file = "`+filepath.ToSlash(tokenPath)+`"`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Token != "secret" {
		t.Fatalf("Token = %q, want secret", cfg.Token)
	}

	_, err = Load(writeConfig(t, `token_file = "/nope/missing-token"`))
	if err == nil || !strings.Contains(err.Error(), "read token file") {
		t.Fatalf("Load error = %v, want read token file error", err)
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)

	cases := map[string]string{
		"bad level":    `log_level = "loud"`,
		"zero timeout": `request_timeout = "0s"`,
		"fast poll":    `poll_interval = "10ms"`,
		"huge page":    `page_size_override = 500`,
		"bad scheme":   `api_base = "ftp://files.example.com"`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			if err == nil {
				t.Fatalf("Load returned nil error, want validation error")
			}
			if !strings.Contains(err.Error(), "invalid config") {
				t.Fatalf("Load error = %q, want invalid config", err.Error())
			}
		})
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, `api_base = [`))
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}

	_, err = Load(writeConfig(t, `request_timeout = "soon"`))
	if err == nil || !strings.Contains(err.Error(), "parse request_timeout") {
		t.Fatalf("Load error = %v, want duration parse error", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("RETRIEVER_TOKEN=dotenv\nRETRIEVER_LOG_LEVEL=error\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv(EnvToken, "")
	t.Setenv(EnvLogLevel, "debug")
	os.Unsetenv(EnvToken)

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv returned error: %v", err)
	}
	if got := os.Getenv(EnvToken); got != "dotenv" {
		t.Fatalf("%s = %q, want dotenv", EnvToken, got)
	}
	if got := os.Getenv(EnvLogLevel); got != "debug" {
		t.Fatalf("%s = %q, want existing value kept", EnvLogLevel, got)
	}

	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv(missing) returned error: %v", err)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

func TestLogPath_DefaultsWhenUnset(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var cfg Config
	got := cfg.LogPath()
	if !strings.HasPrefix(got, home) {
		t.Fatalf("LogPath = %q, want it under HOME %q", got, home)
	}
	if !strings.HasSuffix(got, filepath.FromSlash("/retriever.log")) {
		t.Fatalf("LogPath = %q, want it to end with /retriever.log", got)
	}
}
