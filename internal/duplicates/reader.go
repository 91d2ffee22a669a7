package duplicates

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"comicdesk/internal/datadir"
	"comicdesk/internal/logging"
)

//go:embed report_schema.json
var reportSchemaSource string

var compileReportSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("report_schema.json", reportSchemaSource)
})

// Candidate is one pending duplicate awaiting an operator decision.
type Candidate struct {
	JobKey           string `json:"jobKey"`
	IncomingFileName string `json:"incomingFileName"`
	ExistingState    string `json:"existingState"`
	ReportPath       string `json:"reportPath"`
}

// Reader scans the duplicate report directory.
type Reader struct {
	logger *slog.Logger
}

func NewReader(logger *slog.Logger) *Reader {
	return &Reader{logger: logging.NewComponentLogger(logger, "duplicates")}
}

// ListDuplicates scans root with a default Reader.
func ListDuplicates(root string) ([]Candidate, error) {
	return NewReader(nil).List(root)
}

// List creates <root>/reports/duplicates if needed and returns one candidate
// per report, ordered by file name. Fields of an unexpected shape read as "".
// Unreadable files, non-object documents and reports without a job key are
// skipped; only directory failures are returned.
func (r *Reader) List(root string) ([]Candidate, error) {
	dir := datadir.New(root).ReportsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports directory: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list reports directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	candidates := make([]Candidate, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		candidate, err := r.readReport(path)
		if err != nil {
			r.logger.Debug("skipping duplicate report",
				logging.String(logging.FieldPath, path),
				logging.Error(err))
			continue
		}
		if candidate.JobKey == "" {
			r.logger.Debug("skipping duplicate report without job key", logging.String(logging.FieldPath, path))
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func (r *Reader) readReport(path string) (Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Candidate{}, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Candidate{}, fmt.Errorf("parse report: %w", err)
	}
	schema, err := compileReportSchema()
	if err != nil {
		return Candidate{}, fmt.Errorf("compile report schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return Candidate{}, fmt.Errorf("report does not match schema: %w", err)
	}

	return Candidate{
		JobKey:           textAt(doc, "jobKey"),
		IncomingFileName: textAt(doc, "incoming", "fileName"),
		ExistingState:    textAt(doc, "existing", "state"),
		ReportPath:       path,
	}, nil
}

// textAt follows keys through nested objects and renders the scalar it finds
// as text. A missing key, a non-object along the way, null, or an array or
// object at the end all yield "".
func textAt(node any, keys ...string) string {
	for _, key := range keys {
		obj, ok := node.(map[string]any)
		if !ok {
			return ""
		}
		node = obj[key]
	}
	switch v := node.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
