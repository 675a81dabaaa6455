package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_InfoLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(false, &buf)

	log.Debug("hidden")
	log.Info("shown", zap.Int("port", 514))
	log.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written at info level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, `"port": 514`) {
		t.Errorf("info line missing or malformed: %q", out)
	}
	if !strings.Contains(out, "INFO") {
		t.Errorf("level not rendered: %q", out)
	}
}

func TestNew_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(true, &buf)

	log.Debug("visible")
	log.Sync()

	out := buf.String()
	if !strings.Contains(out, "visible") {
		t.Errorf("debug line missing: %q", out)
	}
	if !strings.Contains(out, "logging_test.go") {
		t.Errorf("caller missing in debug mode: %q", out)
	}
}
