package ctrl

import (
	"bufio"
	"fmt"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"io"
	"net"
	"strings"
)

func init() {
	clientCmd.Flags().StringVarP(&clientCommand, "command", "c", "stats", "Command to send")
	ctrlCmd.AddCommand(clientCmd)
}

var clientCmd = &cobra.Command{
	Use:   "client <path>",
	Short: "Send a command to a server's control socket",
	Args:  cobra.ExactArgs(1),
	Run:   client,
}
var clientCommand string

func client(cmd *cobra.Command, args []string) {
	response, err := send(args[0], clientCommand)
	if err != nil {
		logrus.Fatalf("error sending [%s] to [%s] (%v)", clientCommand, args[0], err)
	}
	logrus.Debugf("[%d] bytes from [%s]", len(response), args[0])
	_, _ = fmt.Fprint(cmd.OutOrStdout(), response)
}

// send writes one command line and collects the response up to and including the listener's status line.
//
func send(path, command string) (string, error) {
	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return "", errors.Wrap(err, "resolve address")
	}
	conn, err := net.DialUnix("unix", nil, addr)
	if err != nil {
		return "", errors.Wrap(err, "dial")
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.Write([]byte(fmt.Sprintf("%s\n", command))); err != nil {
		return "", errors.Wrap(err, "write")
	}

	var response strings.Builder
	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		response.WriteString(line)
		if err == io.EOF {
			return response.String(), nil
		}
		if err != nil {
			return "", errors.Wrap(err, "read")
		}
		if isStatus(line) {
			return response.String(), nil
		}
	}
}

func isStatus(line string) bool {
	line = strings.TrimSpace(line)
	return line == "ok" || line == "syntax error?" || strings.HasPrefix(line, "error (")
}
