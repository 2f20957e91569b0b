// Package report persists run artifacts on disk.
//
// Layout:
//   - <base>/<task>/<run-id>/task.json: the task definition
//   - <base>/<task>/<run-id>/config.json: the platform config used
//   - <base>/<task>/<run-id>/step_N.json: one outcome record per step
//   - <base>/<task>/<run-id>/run.json: summary written at run end
//
// Capture artifacts (source dumps, screenshots) land in the same run
// folder, written by the capture package.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// RunWriter owns one run folder. Each task run gets a fresh writer; no
// locking is needed because runs are strictly sequential.
type RunWriter struct {
	dir   string
	runID string
}

// NewRunWriter creates the run folder for a task and returns its writer.
// Run IDs combine a timestamp with a short unique suffix so folders sort
// chronologically and never collide.
func NewRunWriter(baseDir, taskName string) (*RunWriter, error) {
	runID := fmt.Sprintf("%s-%s", time.Now().Format("2006-01-02-15-04-05"), uuid.NewString()[:8])
	dir := filepath.Join(baseDir, taskName, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create run folder: %w", err)
	}
	return &RunWriter{dir: dir, runID: runID}, nil
}

// Dir returns the run folder path.
func (w *RunWriter) Dir() string {
	return w.dir
}

// RunID returns the run identifier.
func (w *RunWriter) RunID() string {
	return w.runID
}

// WriteTask records the task definition.
func (w *RunWriter) WriteTask(task interface{}) error {
	return atomicWriteJSON(filepath.Join(w.dir, "task.json"), task)
}

// WriteConfig records the platform configuration the run used.
func (w *RunWriter) WriteConfig(cfg interface{}) error {
	return atomicWriteJSON(filepath.Join(w.dir, "config.json"), cfg)
}

// WriteStep records one outcome document. The outcome is already
// serialized JSON; it is stored verbatim.
func (w *RunWriter) WriteStep(index int, outcome []byte) error {
	path := filepath.Join(w.dir, fmt.Sprintf("step_%d.json", index))
	return atomicWrite(path, outcome)
}

// Summary is the run-level result document.
type Summary struct {
	Task        string    `json:"task"`
	RunID       string    `json:"run_id"`
	Platform    string    `json:"platform"`
	Termination string    `json:"termination"`
	Steps       int       `json:"steps"`
	DurationMs  int64     `json:"duration_ms"`
	EndTime     time.Time `json:"end_time"`
}

// WriteSummary records the run-level result.
func (w *RunWriter) WriteSummary(s Summary) error {
	s.RunID = w.runID
	s.EndTime = time.Now()
	return atomicWriteJSON(filepath.Join(w.dir, "run.json"), s)
}

// atomicWriteJSON marshals v and writes it atomically.
func atomicWriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	return atomicWrite(path, data)
}

// atomicWrite writes via a temp file and rename so a crashed run never
// leaves a half-written document for report consumers.
func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
