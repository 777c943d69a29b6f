package reverser

import (
	"bufio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net"
	"testing"
	"time"
)

func TestProtocolForUnsupported(t *testing.T) {
	_, err := ProtocolFor("westworld")
	assert.Error(t, err)
}

func TestProtocolRoundTrip(t *testing.T) {
	for _, name := range []string{"tcp", "tls", "quic"} {
		t.Run(name, func(t *testing.T) {
			protocol, err := ProtocolFor(name)
			require.NoError(t, err)

			listener, err := protocol.Listen("127.0.0.1:0")
			require.NoError(t, err)
			defer func() { _ = listener.Close() }()

			accepted := make(chan net.Conn, 1)
			go func() {
				conn, err := listener.Accept()
				if err == nil {
					accepted <- conn
				}
			}()

			client, err := protocol.Dial(listener.Addr().String())
			require.NoError(t, err)
			defer func() { _ = client.Close() }()

			_, err = client.Write([]byte("over the wire\n"))
			require.NoError(t, err)

			var server net.Conn
			select {
			case server = <-accepted:
			case <-time.After(5 * time.Second):
				t.Fatal("no connection accepted")
			}
			defer func() { _ = server.Close() }()

			line, err := bufio.NewReader(server).ReadString('\n')
			require.NoError(t, err)
			assert.Equal(t, "over the wire\n", line)
		})
	}
}
