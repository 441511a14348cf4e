package forge

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
)

// Kind names the run that produced a report.
type Kind string

const (
	KindTask     Kind = "task"
	KindSolution Kind = "solution"
	KindTemplate Kind = "template"
	KindImprove  Kind = "improve"
	KindTests    Kind = "tests"
	KindSplit    Kind = "split"
)

type Written struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Artifact string `json:"artifact"`
}

type Skipped struct {
	Name    string `json:"name,omitempty"`
	Preview string `json:"preview"`
	Reason  string `json:"reason"`
}

type Failure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// Report accounts for every block a run saw: written, skipped or failed.
type Report struct {
	RunID   string    `json:"run_id"`
	Kind    Kind      `json:"kind"`
	Written []Written `json:"written"`
	Skipped []Skipped `json:"skipped"`
	Failed  []Failure `json:"failed"`
}

func newReport(runID string, kind Kind) *Report {
	return &Report{
		RunID:   runID,
		Kind:    kind,
		Written: []Written{},
		Skipped: []Skipped{},
		Failed:  []Failure{},
	}
}

// Paths returns the written file paths in write order.
func (r *Report) Paths() []string {
	out := make([]string, 0, len(r.Written))
	for _, w := range r.Written {
		out = append(out, w.Path)
	}
	return out
}

// Log emits the run summary line.
func (r *Report) Log() {
	ev := log.Info()
	if len(r.Failed) > 0 {
		ev = log.Warn()
	}
	ev.Str("kind", string(r.Kind)).
		Int("written", len(r.Written)).
		Int("skipped", len(r.Skipped)).
		Int("failed", len(r.Failed)).
		Msg("run finished")
}

// WriteJSON writes the report as indented JSON to path.
func (r *Report) WriteJSON(path string) error {
	b, err := sonic.ConfigStd.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
