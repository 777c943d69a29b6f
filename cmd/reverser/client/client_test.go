package client

import (
	"bytes"
	"context"
	core "github.com/openziti/reverser"
	"github.com/openziti/reverser/cmd/reverser/reverser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func TestClientRoundTrip(t *testing.T) {
	cfg := core.NewDefaultConfig()
	cfg.BufferSize = 64
	device, err := core.NewDevice(cfg)
	require.NoError(t, err)
	defer func() { _ = device.Close() }()

	protocol, err := reverser.ProtocolFor("tcp")
	require.NoError(t, err)
	listener, err := protocol.Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = listener.Close() }()

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		ep, err := device.Open()
		if err != nil {
			_ = conn.Close()
			return
		}
		defer func() { _ = ep.Close() }()
		_ = core.Bridge(context.Background(), conn, ep)
	}()

	out := new(bytes.Buffer)
	reverser.RootCmd.SetIn(strings.NewReader("the quick fox\n"))
	reverser.RootCmd.SetOut(out)
	reverser.RootCmd.SetArgs([]string{"client", "-p", "tcp", listener.Addr().String()})
	defer func() {
		reverser.RootCmd.SetIn(nil)
		reverser.RootCmd.SetOut(nil)
		reverser.RootCmd.SetArgs(nil)
	}()

	require.NoError(t, reverser.RootCmd.Execute())
	assert.Equal(t, "fox quick the\n", out.String())
}
