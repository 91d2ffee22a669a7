package intake

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSource(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func assertNoPartFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), PartSuffix) {
			t.Fatalf("residual part file: %s", entry.Name())
		}
	}
}

func TestDepositCopiesAtomically(t *testing.T) {
	content := bytes.Repeat([]byte("comic-page-"), 4096)
	src := writeSource(t, "issue-01.cbz", content)
	intakeDir := filepath.Join(t.TempDir(), "data", "in")

	final, err := Deposit(src, intakeDir)
	if err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if final != filepath.Join(intakeDir, "issue-01.cbz") {
		t.Fatalf("unexpected final path %q", final)
	}

	got, err := os.ReadFile(final)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Fatal("deposited bytes differ from source")
	}
	assertNoPartFiles(t, intakeDir)

	if _, err := os.Stat(src); err != nil {
		t.Fatalf("source must be left in place: %v", err)
	}
}

func TestDepositOverwritesExistingAndStalePart(t *testing.T) {
	intakeDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(intakeDir, "book.cbr"), []byte("old final"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(intakeDir, "book.cbr.part"), []byte("stale partial data that is long"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := writeSource(t, "book.cbr", []byte("new"))
	final, err := Deposit(src, intakeDir)
	if err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	got, _ := os.ReadFile(final)
	if string(got) != "new" {
		t.Fatalf("expected overwrite, got %q", got)
	}
	assertNoPartFiles(t, intakeDir)
}

func TestDepositMissingSource(t *testing.T) {
	intakeDir := t.TempDir()
	if _, err := Deposit(filepath.Join(t.TempDir(), "absent.cbz"), intakeDir); err == nil {
		t.Fatal("expected error for missing source")
	}
	assertNoPartFiles(t, intakeDir)
}

func TestDepositRejectsDirectory(t *testing.T) {
	if _, err := Deposit(t.TempDir(), t.TempDir()); err == nil {
		t.Fatal("expected error for directory source")
	}
}

func TestDepositIntakeDirFailure(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "in")
	if err := os.WriteFile(blocker, []byte("not a dir"), 0o644); err != nil {
		t.Fatal(err)
	}
	src := writeSource(t, "a.cbz", []byte("x"))
	if _, err := Deposit(src, blocker); err == nil {
		t.Fatal("expected error when intake path is a file")
	}
}

func TestDepositorExtensionFilter(t *testing.T) {
	d := NewDepositor(WithAllowedExtensions(ComicExtensions...))
	intakeDir := t.TempDir()

	if _, err := d.Deposit(writeSource(t, "notes.txt", []byte("x")), intakeDir); err == nil {
		t.Fatal("expected .txt to be rejected")
	}
	if _, err := d.Deposit(writeSource(t, "SHOUT.CBZ", []byte("x")), intakeDir); err != nil {
		t.Fatalf("expected upper-case .CBZ to be accepted: %v", err)
	}

	open := NewDepositor(WithAllowedExtensions("pdf", " .epub "))
	if _, err := open.Deposit(writeSource(t, "doc.epub", []byte("x")), intakeDir); err != nil {
		t.Fatalf("expected normalized extension to match: %v", err)
	}
}
