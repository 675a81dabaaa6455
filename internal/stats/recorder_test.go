package stats

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestRecorder_Window(t *testing.T) {
	rec := NewRecorder(nil)

	if err := rec.Window(Snapshot{Time: epoch, EPS: 10}); err != nil {
		t.Fatal(err)
	}
	if rec.Len() != 1 {
		t.Errorf("Len() = %d, want 1", rec.Len())
	}
}

func TestRecorder_Snapshots_ReturnsCopy(t *testing.T) {
	rec := NewRecorder(nil)
	rec.Window(Snapshot{Time: epoch, EPS: 10})

	snaps := rec.Snapshots()
	snaps[0].EPS = 99

	if rec.Snapshots()[0].EPS != 10 {
		t.Error("Snapshots() should return a copy, original was mutated")
	}
}

func TestRecorder_StreamToWriter(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)

	rec.Window(Snapshot{Time: epoch, EPS: 10, TotalEvents: 10})
	rec.Window(Snapshot{Time: epoch, EPS: 20, TotalEvents: 30})
	rec.Final(Summary{Events: 30})

	// Two snapshots and the summary as newline-delimited JSON.
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	var s Snapshot
	json.Unmarshal(lines[1], &s)
	if s.EPS != 20 {
		t.Errorf("second snapshot EPS = %v, want 20", s.EPS)
	}

	var sum Summary
	json.Unmarshal(lines[2], &sum)
	if sum.Events != 30 {
		t.Errorf("summary events = %d, want 30", sum.Events)
	}
}

func TestRecorder_StreamingKeepsLatestOnly(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)

	for i := 1; i <= 5; i++ {
		rec.Window(Snapshot{Time: epoch, EPS: float64(i * 10)})
	}

	if rec.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", rec.Len())
	}
	if got := rec.Snapshots()[0].EPS; got != 50 {
		t.Errorf("latest snapshot EPS = %v, want 50", got)
	}
	if lines := bytes.Count(buf.Bytes(), []byte("\n")); lines != 5 {
		t.Errorf("streamed %d lines, want 5", lines)
	}
}

func TestRecorder_ExportFile(t *testing.T) {
	rec := NewRecorder(nil)
	rec.Window(Snapshot{Time: epoch, EPS: 5})
	rec.Final(Summary{Events: 5, EPS: 5})

	path := filepath.Join(t.TempDir(), "run.json")
	if err := rec.ExportFile(path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rep, err := LoadReport(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Snapshots) != 1 {
		t.Fatalf("loaded %d snapshots, want 1", len(rep.Snapshots))
	}
	if rep.Summary == nil || rep.Summary.Events != 5 {
		t.Errorf("summary = %+v, want 5 events", rep.Summary)
	}
	if !rep.Snapshots[0].Time.Equal(epoch) {
		t.Errorf("snapshot time = %v, want %v", rep.Snapshots[0].Time, epoch)
	}
}

func TestLoadReport_Invalid(t *testing.T) {
	if _, err := LoadReport(bytes.NewBufferString("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestRecorder_ConcurrentAccess(t *testing.T) {
	rec := NewRecorder(nil)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.Window(Snapshot{Time: epoch})
			rec.Snapshots()
		}()
	}
	wg.Wait()

	if rec.Len() != 100 {
		t.Errorf("Len() = %d, want 100", rec.Len())
	}
}
