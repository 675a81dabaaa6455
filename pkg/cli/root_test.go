package cli

import "testing"

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()
	if cmd == nil {
		t.Fatal("NewRootCmd() returned nil")
	}
	if cmd.Name() != "netsender" {
		t.Fatalf("Name() = %q, want %q", cmd.Name(), "netsender")
	}
	for _, sub := range []string{"listen", "generate"} {
		if c, _, err := cmd.Find([]string{sub}); err != nil || c.Name() != sub {
			t.Errorf("subcommand %q not registered", sub)
		}
	}
}
