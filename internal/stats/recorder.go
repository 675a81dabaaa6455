package stats

import (
	"encoding/json"
	"io"
	"os"
	"sync"
)

// Recorder keeps the snapshots of a run for later export. Without a writer
// every snapshot is retained; when streaming to a writer only the latest
// one is kept in memory.
// Thread-safe for concurrent use.
type Recorder struct {
	mu        sync.Mutex
	snapshots []Snapshot
	summary   *Summary
	writer    io.Writer // optional: stream snapshots as they arrive
}

// Report is the exported form of a recorded run.
type Report struct {
	Summary   *Summary   `json:"summary,omitempty"`
	Snapshots []Snapshot `json:"snapshots"`
}

// NewRecorder creates a Recorder. If w is non-nil, snapshots and the final
// summary are also written to w as newline-delimited JSON.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{writer: w}
}

func (r *Recorder) Window(s Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.writer != nil {
		r.snapshots = append(r.snapshots[:0], s)
		return json.NewEncoder(r.writer).Encode(s)
	}
	r.snapshots = append(r.snapshots, s)
	return nil
}

func (r *Recorder) Final(s Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.summary = &s
	if r.writer != nil {
		return json.NewEncoder(r.writer).Encode(s)
	}
	return nil
}

// Snapshots returns a copy of the recorded snapshots.
func (r *Recorder) Snapshots() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Snapshot, len(r.snapshots))
	copy(out, r.snapshots)
	return out
}

// Len returns the number of recorded snapshots.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

// ExportJSON writes the run as a single indented JSON report.
func (r *Recorder) ExportJSON(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Report{Summary: r.summary, Snapshots: r.snapshots})
}

// ExportFile writes the report to path.
func (r *Recorder) ExportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return r.ExportJSON(f)
}

// LoadReport reads a report written by ExportJSON.
func LoadReport(r io.Reader) (Report, error) {
	var rep Report
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return Report{}, err
	}
	return rep, nil
}
