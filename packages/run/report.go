package run

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// EntryResult is the outcome of one request/response pair.
type EntryResult struct {
	Index      int               `json:"index"`
	Method     string            `json:"method"`
	URL        string            `json:"url"`
	Status     int               `json:"status,omitempty"`
	Duration   time.Duration     `json:"duration"`
	Asserts    []AssertResult    `json:"asserts,omitempty"`
	Captures   []CaptureResult   `json:"captures,omitempty"`
	Error      string            `json:"error,omitempty"`
	Body       []byte            `json:"-"`
	Headers    map[string]string `json:"-"`
	StatusLine string            `json:"-"`
}

// Passed reports whether the entry ran without transport errors or
// failed assertions.
func (e EntryResult) Passed() bool {
	if e.Error != "" {
		return false
	}
	for _, a := range e.Asserts {
		if !a.Passed {
			return false
		}
	}
	return true
}

// FileResult aggregates the entries of one source file.
type FileResult struct {
	File     string        `json:"file"`
	Entries  []EntryResult `json:"entries"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

func (f FileResult) Passed() bool {
	if f.Error != "" {
		return false
	}
	for i := range f.Entries {
		if !f.Entries[i].Passed() {
			return false
		}
	}
	return true
}

// Report is the aggregate outcome of a whole invocation.
type Report struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Files     []FileResult  `json:"files"`
}

func newReport() *Report {
	return &Report{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
}

func (r *Report) Passed() bool {
	for i := range r.Files {
		if !r.Files[i].Passed() {
			return false
		}
	}
	return true
}

// Counts returns total and failed entry counts across all files.
func (r *Report) Counts() (total, failed int) {
	for i := range r.Files {
		for j := range r.Files[i].Entries {
			total++
			if !r.Files[i].Entries[j].Passed() {
				failed++
			}
		}
	}
	return total, failed
}

// JSON renders the report as indented JSON ending with a newline.
func (r *Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("cannot serialize report: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteJSON writes the report to the given path.
func (r *Report) WriteJSON(path string) error {
	data, err := r.JSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write report %s: %w", path, err)
	}
	return nil
}
