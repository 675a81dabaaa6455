package receiver

import (
	"bytes"
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SmitUplenchwar2687/netsender/internal/framing"
	"github.com/SmitUplenchwar2687/netsender/internal/stats"
	"github.com/SmitUplenchwar2687/netsender/internal/transport"
)

type collector struct {
	mu   sync.Mutex
	recs []string
}

func (c *collector) add(rec []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recs = append(c.recs, string(rec))
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.recs)
}

func (c *collector) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.recs...)
}

func serve(t *testing.T, opts Options) (*Receiver, *collector, func() stats.Summary) {
	t.Helper()
	col := &collector{}
	opts.OnRecord = col.add
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:0"
	}

	ctx, cancel := context.WithCancel(context.Background())
	r, err := Listen(ctx, opts)
	require.NoError(t, err)

	done := make(chan stats.Summary, 1)
	go func() {
		sum, err := r.Serve(ctx)
		assert.NoError(t, err)
		done <- sum
	}()

	stop := func() stats.Summary {
		cancel()
		select {
		case s := <-done:
			return s
		case <-time.After(5 * time.Second):
			t.Fatal("receiver did not stop")
			return stats.Summary{}
		}
	}
	return r, col, stop
}

func waitFor(t *testing.T, col *collector, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return col.len() >= n }, 5*time.Second, 10*time.Millisecond)
}

func TestReceiver_UDPCountsDatagrams(t *testing.T) {
	r, col, stop := serve(t, Options{Kind: transport.UDP})

	conn, err := net.Dial("udp", r.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	for _, m := range []string{"a\n", "b\n", "c\n"} {
		_, err := conn.Write([]byte(m))
		require.NoError(t, err)
	}

	waitFor(t, col, 3)
	sum := stop()
	assert.Equal(t, []string{"a\n", "b\n", "c\n"}, col.all())
	assert.Equal(t, int64(3), sum.Events)
	assert.Equal(t, int64(6), sum.Bytes)
}

func TestReceiver_TCPFramesLines(t *testing.T) {
	r, col, stop := serve(t, Options{Kind: transport.TCP, Framing: framing.Options{Mode: framing.Lines}})

	for i := 0; i < 2; i++ {
		conn, err := net.Dial("tcp", r.Addr().String())
		require.NoError(t, err)
		_, err = conn.Write([]byte("one\ntwo\n"))
		require.NoError(t, err)
		conn.Close()
	}

	waitFor(t, col, 4)
	sum := stop()
	assert.Equal(t, int64(4), sum.Events)
}

func TestReceiver_TCPFramesJSON(t *testing.T) {
	r, col, stop := serve(t, Options{Kind: transport.TCP, Framing: framing.Options{Mode: framing.JSON}})

	conn, err := net.Dial("tcp", r.Addr().String())
	require.NoError(t, err)
	_, err = conn.Write([]byte(`{"a":1}{"b":{"c":2}}`))
	require.NoError(t, err)
	conn.Close()

	waitFor(t, col, 2)
	stop()
	assert.Equal(t, []string{`{"a":1}`, `{"b":{"c":2}}`}, col.all())
}

func TestReceiver_StopsWithOpenConnection(t *testing.T) {
	r, col, stop := serve(t, Options{Kind: transport.TCP})

	conn, err := net.Dial("tcp", r.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("held open\n"))
	require.NoError(t, err)

	waitFor(t, col, 1)
	sum := stop()
	assert.Equal(t, int64(1), sum.Events)
}

func TestReceiver_SinkGetsFinal(t *testing.T) {
	rec := stats.NewRecorder(nil)
	_, _, stop := serve(t, Options{Kind: transport.UDP, Sink: rec})
	stop()

	// No traffic means no windows, but the summary is still delivered.
	var buf bytes.Buffer
	require.NoError(t, rec.ExportJSON(&buf))
	rep, err := stats.LoadReport(&buf)
	require.NoError(t, err)
	assert.Empty(t, rep.Snapshots)
	require.NotNil(t, rep.Summary)
	assert.Equal(t, int64(0), rep.Summary.Events)
}

func TestListen_RejectsPcap(t *testing.T) {
	_, err := Listen(context.Background(), Options{
		Kind:    transport.TCP,
		Addr:    "127.0.0.1:0",
		Framing: framing.Options{Mode: framing.Pcap},
	})
	assert.Error(t, err)
}
