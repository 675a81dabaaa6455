package transport

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func udpListener(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func portOf(t *testing.T, addr net.Addr) int {
	t.Helper()
	_, p, err := net.SplitHostPort(addr.String())
	require.NoError(t, err)
	port, err := strconv.Atoi(p)
	require.NoError(t, err)
	return port
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("TCP")
	require.NoError(t, err)
	assert.Equal(t, TCP, k)

	k, err = ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, UDP, k)

	_, err = ParseKind("sctp")
	assert.Error(t, err)
}

func TestUDP_SendsOneDatagramPerRecord(t *testing.T) {
	ln := udpListener(t)
	ch, err := Open(context.Background(), Config{Kind: UDP, Address: "127.0.0.1", Port: portOf(t, ln.LocalAddr())}, nil)
	require.NoError(t, err)
	defer ch.Close()

	for _, rec := range []string{"a\n", "bb\n"} {
		n, err := ch.Send([]byte(rec))
		require.NoError(t, err)
		assert.Equal(t, len(rec), n)
	}

	buf := make([]byte, 1024)
	require.NoError(t, ln.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := ln.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, "a\n", string(buf[:n]))
	n, _, err = ln.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, "bb\n", string(buf[:n]))
}

func TestUDP_Bind(t *testing.T) {
	ln := udpListener(t)
	ch, err := Open(context.Background(), Config{
		Kind:     UDP,
		Address:  "127.0.0.1",
		Port:     portOf(t, ln.LocalAddr()),
		Bind:     true,
		BindAddr: "127.0.0.1:0",
	}, nil)
	require.NoError(t, err)
	defer ch.Close()

	local, ok := ch.LocalAddr().(*net.UDPAddr)
	require.True(t, ok)
	assert.True(t, local.IP.IsLoopback())
	assert.NotZero(t, local.Port)
}

func TestUDP_BadBindAddr(t *testing.T) {
	_, err := Open(context.Background(), Config{
		Kind:     UDP,
		Address:  "127.0.0.1",
		Port:     9,
		Bind:     true,
		BindAddr: "not-an-address",
	}, nil)
	assert.Error(t, err)
}

func TestTCP_StreamsRecordBytes(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	got := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			got <- ""
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		var all []byte
		for i := 0; i < 2; i++ {
			line, _ := r.ReadBytes('\n')
			all = append(all, line...)
		}
		got <- string(all)
	}()

	ch, err := Open(context.Background(), Config{Kind: TCP, Address: "127.0.0.1", Port: portOf(t, ln.Addr())}, nil)
	require.NoError(t, err)

	_, err = ch.Send([]byte("one\n"))
	require.NoError(t, err)
	_, err = ch.Send([]byte("two\n"))
	require.NoError(t, err)
	require.NoError(t, ch.Close())

	select {
	case s := <-got:
		assert.Equal(t, "one\ntwo\n", s)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for tcp data")
	}
}

func TestTCP_ConnectRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := portOf(t, ln.Addr())
	ln.Close()

	_, err = Open(context.Background(), Config{Kind: TCP, Address: "127.0.0.1", Port: port, DialTimeout: time.Second}, nil)
	assert.Error(t, err)
}

func TestClose_Idempotent(t *testing.T) {
	ln := udpListener(t)
	ch, err := Open(context.Background(), Config{Kind: UDP, Address: "127.0.0.1", Port: portOf(t, ln.LocalAddr())}, nil)
	require.NoError(t, err)
	require.NoError(t, ch.Close())
	assert.NoError(t, ch.Close())
}

func TestSendBuffer_Advisory(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ln := udpListener(t)

	ch, err := Open(context.Background(), Config{
		Kind:       UDP,
		Address:    "127.0.0.1",
		Port:       portOf(t, ln.LocalAddr()),
		SendBuffer: 4096,
	}, zap.New(core))
	require.NoError(t, err)
	defer ch.Close()

	if ch.SendBufferSize() == 0 {
		t.Skip("send buffer size not readable on this platform")
	}
	assert.Less(t, ch.SendBufferSize(), AdvisorySendBuffer)

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).FilterMessageSnippet("sysctl").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "transport", warnings[0].ContextMap()["component"])
}

func TestConfigDefaults(t *testing.T) {
	c := Config{Address: "10.0.0.1", Port: 514}.withDefaults()
	assert.Equal(t, DefaultSendBuffer, c.SendBuffer)
	assert.Equal(t, DefaultLinger, c.Linger)
	assert.Equal(t, DefaultDialTimeout, c.DialTimeout)
	assert.Equal(t, DefaultBindAddr, c.BindAddr)
	assert.Equal(t, "10.0.0.1:514", c.Endpoint())
}
