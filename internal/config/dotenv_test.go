package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if os.Getenv("PORT") == "" && cfg.Port != Default().Port {
		t.Fatalf("expected default port %d, got %d", Default().Port, cfg.Port)
	}
	if os.Getenv("DEFAULT_LIVES") == "" && cfg.DefaultLives != 3 {
		t.Fatalf("expected default lives 3, got %d", cfg.DefaultLives)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("CLIENT_URL", "https://trivia.example")
	t.Setenv("DEFAULT_TOTAL_QUESTIONS", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr() != ":4000" {
		t.Fatalf("expected :4000, got %s", cfg.Addr())
	}
	if cfg.ClientURL != "https://trivia.example" {
		t.Fatalf("unexpected client url %s", cfg.ClientURL)
	}
	if cfg.DefaultTotalQuestions != 0 {
		t.Fatalf("expected unbounded questions, got %d", cfg.DefaultTotalQuestions)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{name: "not a number", key: "PORT", value: "abc", want: "parse env:"},
		{name: "zero port", key: "PORT", value: "0", want: "invalid PORT"},
		{name: "negative lives", key: "DEFAULT_LIVES", value: "-1", want: "invalid DEFAULT_LIVES"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TRIVIA_TEST_KEEP=file\nTRIVIA_TEST_NEW=file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("TRIVIA_TEST_KEEP", "process")
	t.Setenv("TRIVIA_TEST_NEW", "")
	os.Unsetenv("TRIVIA_TEST_NEW")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("TRIVIA_TEST_NEW") })
	if got := os.Getenv("TRIVIA_TEST_KEEP"); got != "process" {
		t.Fatalf("expected existing value kept, got %q", got)
	}
	if got := os.Getenv("TRIVIA_TEST_NEW"); got != "file" {
		t.Fatalf("expected value from file, got %q", got)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for raw, want := range tests {
		cfg := Default()
		cfg.LogLevel = raw
		if got := cfg.SlogLevel(); got != want {
			t.Fatalf("SlogLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}
