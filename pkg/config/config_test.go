package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfigNeedsTarget(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Fatal("Default() config without a target should not validate")
	}

	cfg.Target.Address = "127.0.0.1"
	cfg.Target.Port = 514
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() config with a target should be valid: %v", err)
	}
}

func TestWriteExampleLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netsender.json")
	if err := WriteExample(path); err != nil {
		t.Fatalf("WriteExample() error = %v", err)
	}
	if _, err := LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
}
