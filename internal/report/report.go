package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/cruffinoni/etch/internal/diagnostics"
)

// FileStatus is the per-template processing status used in reports.
type FileStatus string

const (
	StatusRendered       FileStatus = "rendered"
	StatusRenderedNoData FileStatus = "rendered_no_data"
	StatusChecked        FileStatus = "checked"
	StatusCompileError   FileStatus = "failed_compile"
	StatusRenderError    FileStatus = "failed_render"
)

// FailureItem is the report-friendly representation of one failure, carrying
// the mapped template line when the error context mapper recovered one.
type FailureItem struct {
	Message  string `json:"message"`
	Template string `json:"template,omitempty"`
	Line     int    `json:"line,omitempty"`
}

// FileItem describes processing of one template file.
type FileItem struct {
	File     string       `json:"file"`
	Status   FileStatus   `json:"status"`
	Failure  *FailureItem `json:"failure,omitempty"`
	DataPath string       `json:"data_path,omitempty"`
	Output   string       `json:"output,omitempty"`
}

// Summary contains aggregate counters for a render run.
type Summary struct {
	Discovered    int `json:"discovered"`
	Rendered      int `json:"rendered"`
	Checked       int `json:"checked"`
	NoData        int `json:"no_data"`
	CompileFailed int `json:"compile_failed"`
	RenderFailed  int `json:"render_failed"`
}

// JSONReport is the structured report persisted by --report-json.
type JSONReport struct {
	GeneratedAt string     `json:"generated_at"`
	Summary     Summary    `json:"summary"`
	Files       []FileItem `json:"files"`
}

// NewJSONReport builds a report payload with RFC3339 generation timestamp.
func NewJSONReport(summary Summary, files []FileItem) JSONReport {
	return JSONReport{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Summary:     summary,
		Files:       files,
	}
}

// ToFailureItem converts an error to a typed report failure.
func ToFailureItem(err error) *FailureItem {
	var mapped *diagnostics.Error
	if errors.As(err, &mapped) {
		return &FailureItem{
			Message:  mapped.Message,
			Template: mapped.Name,
			Line:     mapped.Line,
		}
	}
	return &FailureItem{Message: err.Error()}
}

// WriteJSON writes the full JSON report if path is non-empty.
func WriteJSON(path string, report JSONReport) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	raw = append(raw, '\n')
	return os.WriteFile(path, raw, 0o644)
}

// WriteCSV writes the flattened CSV report if path is non-empty.
func WriteCSV(path string, files []FileItem) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	w := csv.NewWriter(fh)
	defer w.Flush()

	header := []string{"file", "status", "failure_line", "data_path", "output"}
	if err := w.Write(header); err != nil {
		return err
	}

	copied := append([]FileItem(nil), files...)
	sort.Slice(copied, func(i, j int) bool { return copied[i].File < copied[j].File })

	for _, item := range copied {
		line := ""
		if item.Failure != nil && item.Failure.Line > 0 {
			line = strconv.Itoa(item.Failure.Line)
		}
		row := []string{
			item.File,
			string(item.Status),
			line,
			item.DataPath,
			item.Output,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}
