package ctrl

import (
	"bytes"
	"github.com/openziti/reverser/cmd/reverser/reverser"
	"github.com/openziti/reverser/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net"
	"os"
	"testing"
)

func TestSend(t *testing.T) {
	root, err := os.MkdirTemp("", "ctrl")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(root) }()

	cl, err := util.GetCtrlListener(root, "send")
	require.NoError(t, err)
	defer func() { _ = cl.Close() }()
	cl.AddCallback("stats", func(_ string, conn net.Conn) (int64, error) {
		n, err := conn.Write([]byte("endpoint_1 capacity=8 unread=0\n"))
		return int64(n), err
	})
	cl.Start()

	response, err := send(cl.Addr(), "stats")
	require.NoError(t, err)
	assert.Equal(t, "endpoint_1 capacity=8 unread=0\nok\n", response)

	response, err = send(cl.Addr(), "nonsense")
	require.NoError(t, err)
	assert.Equal(t, "syntax error?\n", response)
}

func TestIsStatus(t *testing.T) {
	assert.True(t, isStatus("ok\n"))
	assert.True(t, isStatus("error (metrics instrument not active)\n"))
	assert.True(t, isStatus("syntax error?\n"))
	assert.False(t, isStatus("endpoint_1 capacity=8 unread=0\n"))
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	out := new(bytes.Buffer)
	reverser.RootCmd.SetOut(out)
	reverser.RootCmd.SetArgs(args)
	t.Cleanup(func() {
		reverser.RootCmd.SetOut(nil)
		reverser.RootCmd.SetArgs(nil)
	})
	require.NoError(t, reverser.RootCmd.Execute())
	return out.String()
}

func TestClientHelp(t *testing.T) {
	var out string
	assert.NotPanics(t, func() { out = execute(t, "ctrl", "client", "--help") })
	assert.Contains(t, out, "--command")
	assert.Contains(t, out, "--config")
}

func TestClientCommand(t *testing.T) {
	root, err := os.MkdirTemp("", "ctrl")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(root) }()

	cl, err := util.GetCtrlListener(root, "cmd")
	require.NoError(t, err)
	defer func() { _ = cl.Close() }()
	cl.AddCallback("stats", func(_ string, conn net.Conn) (int64, error) {
		n, err := conn.Write([]byte("endpoint_3 capacity=16 unread=4\n"))
		return int64(n), err
	})
	cl.Start()

	assert.Equal(t, "endpoint_3 capacity=16 unread=4\nok\n", execute(t, "ctrl", "client", "-c", "stats", cl.Addr()))
	assert.Equal(t, "syntax error?\n", execute(t, "ctrl", "client", "--command", "bogus", cl.Addr()))
}
