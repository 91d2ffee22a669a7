package main

import (
	"os"
	"testing"
)

func TestLoadDotEnvPrefersEarlierFiles(t *testing.T) {
	t.Chdir(t.TempDir())
	const key = "COMICDESK_DOTENV_PROBE"
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	if err := os.WriteFile(".env.local", []byte(key+"=local\n"), 0o644); err != nil {
		t.Fatalf("write .env.local: %v", err)
	}
	if err := os.WriteFile(".env", []byte(key+"=shared\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	loadDotEnv(".env.local", ".env", ".env.missing")

	if got := os.Getenv(key); got != "local" {
		t.Fatalf("expected .env.local to win, got %q", got)
	}
}
