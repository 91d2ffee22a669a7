//go:build !unix

package preflight

import "os"

// checkReadWrite probes write access by creating and removing a temp file.
func checkReadWrite(path string) error {
	f, err := os.CreateTemp(path, ".comicdesk-access-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
