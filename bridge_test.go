package reverser

import (
	"bufio"
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net"
	"testing"
	"time"
)

func startBridge(t *testing.T, ctx context.Context, bufferSize int) (net.Conn, chan error) {
	t.Helper()
	d := newTestDevice(t, bufferSize)
	ep, err := d.Open()
	require.NoError(t, err)

	client, server := net.Pipe()
	done := make(chan error, 1)
	go func() {
		done <- Bridge(ctx, server, ep)
	}()
	t.Cleanup(func() { _ = client.Close() })
	return client, done
}

func TestBridgeRequestResponse(t *testing.T) {
	client, done := startBridge(t, context.Background(), 64)
	reader := bufio.NewReader(client)

	for _, c := range []struct{ in, out string }{
		{"the quick fox", "fox quick the"},
		{"hello", "hello"},
		{"a  b\r", "b  a"},
	} {
		_, err := client.Write([]byte(c.in + "\n"))
		require.NoError(t, err)
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, c.out+"\n", line)
	}

	require.NoError(t, client.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("bridge did not exit")
	}
}

func TestBridgeRejectsOversizedLine(t *testing.T) {
	client, _ := startBridge(t, context.Background(), 8)
	reader := bufio.NewReader(client)

	_, err := client.Write([]byte("this line is far too long\n"))
	require.NoError(t, err)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, "error (")
	assert.Contains(t, line, "capacity")

	_, err = client.Write([]byte("ok fine\n"))
	require.NoError(t, err)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "fine ok\n", line)
}

func TestBridgeContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	_, done := startBridge(t, ctx, 16)

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("bridge ignored cancellation")
	}
}
