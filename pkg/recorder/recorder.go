package recorder

import (
	"io"

	"github.com/SmitUplenchwar2687/netsender/internal/stats"
)

// Snapshot is the throughput of one one-second window.
type Snapshot = stats.Snapshot

// Summary is the final report of a run.
type Summary = stats.Summary

// Report is a saved run: its summary and every window snapshot.
type Report = stats.Report

// Recorder captures window snapshots and the final summary of a run.
type Recorder = stats.Recorder

// New creates a new Recorder. If w is non-nil every snapshot is streamed
// to it as newline-delimited JSON.
func New(w io.Writer) *Recorder {
	return stats.NewRecorder(w)
}

// LoadReport reads a report written by Recorder.ExportJSON.
func LoadReport(r io.Reader) (Report, error) {
	return stats.LoadReport(r)
}
