package cli

import (
	"bytes"
	"context"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SmitUplenchwar2687/netsender/internal/stats"
	"github.com/SmitUplenchwar2687/netsender/internal/transport"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func freeUDPPort(t *testing.T) string {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket() error = %v", err)
	}
	port := conn.LocalAddr().(*net.UDPAddr).Port
	conn.Close()
	return strconv.Itoa(port)
}

func waitForOutput(t *testing.T, out *syncBuffer, substr string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(out.String(), substr) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q in %q", substr, out.String())
}

func TestListen_CountsWhatSendDelivers(t *testing.T) {
	port := freeUDPPort(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var listenOut syncBuffer
	listen := NewRootCmd()
	listen.SetOut(&listenOut)
	listen.SetErr(io.Discard)
	listen.SetArgs([]string{"listen", "-q", "--addr", "127.0.0.1:" + port})

	done := make(chan error, 1)
	go func() {
		done <- listen.ExecuteContext(ctx)
	}()
	waitForOutput(t, &listenOut, "Listening on")

	input := writeInput(t, "in.log", "a\nb\nc\nd\n")
	if _, err := execute(t, "-q", "-f", input, "127.0.0.1", port); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	// Let the datagrams land before stopping.
	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("listen returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("listen did not stop after cancel")
	}

	out := listenOut.String()
	if !strings.Contains(out, "Events") {
		t.Fatalf("summary missing from output: %q", out)
	}
	if !strings.Contains(out, "4") {
		t.Errorf("expected 4 events in %q", out)
	}
}

func TestListen_RejectsArgs(t *testing.T) {
	if _, err := execute(t, "listen", "extra"); err == nil {
		t.Fatal("expected error for positional argument")
	}
}

func TestListen_BadAddr(t *testing.T) {
	if _, err := execute(t, "listen", "--addr", "256.0.0.1:bad"); err == nil {
		t.Fatal("expected error for bad listen address")
	}
}

func TestRenderSummary(t *testing.T) {
	out := renderSummary(transport.TCP, "127.0.0.1:9000", stats.Summary{
		Events:        1500,
		Dropped:       2,
		Seconds:       1.5,
		EPS:           1000,
		MBPS:          0.05,
		MBytes:        0.075,
		BytesPerEvent: 50,
	})

	for _, want := range []string{"tcp/127.0.0.1:9000", "Events", "1500", "Dropped", "1000.0", "50.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
