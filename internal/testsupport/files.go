package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path with size bytes of a position-dependent pattern, so
// truncated or reordered copies fail checksum comparison. Parent directories
// are created. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	mustWrite(t, path, data)
}

// WriteReport drops a duplicate report named name under the data root and
// returns its path.
func WriteReport(t testing.TB, dataDir, name, body string) string {
	t.Helper()

	path := filepath.Join(dataDir, "reports", "duplicates", name)
	mustWrite(t, path, []byte(body))
	return path
}

func mustWrite(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
