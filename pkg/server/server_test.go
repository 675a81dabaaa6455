package server

import "testing"

func TestNewWiresHub(t *testing.T) {
	hub := NewHub(nil)
	srv := New(":0", Options{Hub: hub})
	if srv.Hub() != hub {
		t.Fatal("Hub() should return the hub passed in Options")
	}
	if hub.ClientCount() != 0 {
		t.Fatalf("ClientCount() = %d, want 0", hub.ClientCount())
	}
}
