package datadir

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	reportsSubdir = "reports/duplicates"
	holdSubdir    = "hold/duplicates"
	intakeSubdir  = "in"
	outputSubdir  = "out"

	// DecisionFile is the file the orchestrator reads an operator decision from.
	DecisionFile = "decision.json"
)

// Layout resolves the conventional directories under an orchestrator data root.
type Layout struct {
	Root string
}

// New returns the layout rooted at root.
func New(root string) Layout {
	return Layout{Root: root}
}

// ReportsDir holds one JSON conflict report per duplicate job.
func (l Layout) ReportsDir() string {
	return filepath.Join(l.Root, filepath.FromSlash(reportsSubdir))
}

// HoldDir is the per-job directory the orchestrator polls for a decision.
func (l Layout) HoldDir(jobKey string) string {
	return filepath.Join(l.Root, filepath.FromSlash(holdSubdir), jobKey)
}

// DecisionPath is HoldDir(jobKey)/decision.json.
func (l Layout) DecisionPath(jobKey string) string {
	return filepath.Join(l.HoldDir(jobKey), DecisionFile)
}

// IntakeDir is watched by the orchestrator for new input files.
func (l Layout) IntakeDir() string {
	return filepath.Join(l.Root, intakeSubdir)
}

// OutputDir holds finished PDFs. The client only reads it.
func (l Layout) OutputDir() string {
	return filepath.Join(l.Root, outputSubdir)
}

// OutputFile describes one finished file.
type OutputFile struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Outputs lists regular files in OutputDir, newest first. A missing output
// directory yields an empty list.
func (l Layout) Outputs() ([]OutputFile, error) {
	dir := l.OutputDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []OutputFile{}, nil
		}
		return nil, fmt.Errorf("list outputs: %w", err)
	}

	files := make([]OutputFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		files = append(files, OutputFile{
			Name:    entry.Name(),
			Path:    filepath.Join(dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}
