package client

import (
	"bufio"
	"fmt"
	"github.com/openziti/reverser/cmd/reverser/reverser"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"io"
	"net"
)

func init() {
	reverser.RootCmd.AddCommand(clientCmd)
}

var clientCmd = &cobra.Command{
	Use:   "client <serverAddress>",
	Short: "Send console lines to a reverser server",
	Args:  cobra.ExactArgs(1),
	Run:   client,
}

func client(cmd *cobra.Command, args []string) {
	protocol, err := reverser.ProtocolFor(reverser.SelectedProtocol)
	if err != nil {
		logrus.Fatalf("error selecting protocol (%v)", err)
	}
	conn, err := protocol.Dial(args[0])
	if err != nil {
		logrus.Fatalf("error dialing [%s] (%v)", args[0], err)
	}
	defer func() { _ = conn.Close() }()
	done := make(chan struct{})
	go clientReader(conn, cmd.OutOrStdout(), done)
	logrus.Infof("connected to [%s]", args[0])

	input := bufio.NewReader(cmd.InOrStdin())
	for {
		line, err := input.ReadString('\n')
		if err == io.EOF {
			logrus.Debugf("console closed")
			break
		}
		if err != nil {
			logrus.Errorf("error reading console (%v)", err)
			break
		}
		n, err := conn.Write([]byte(line))
		if err != nil {
			logrus.Errorf("error writing network (%v)", err)
			break
		}
		if n != len(line) {
			logrus.Errorf("short network write")
			break
		}
	}

	// half-close where the transport allows it, so outstanding responses still arrive
	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		if err := cw.CloseWrite(); err == nil {
			<-done
		}
	}
}

func clientReader(conn net.Conn, out io.Writer, done chan struct{}) {
	defer close(done)
	input := bufio.NewReader(conn)
	for {
		line, err := input.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				logrus.Errorf("error reading network (%v)", err)
			}
			break
		}
		if _, err := fmt.Fprint(out, line); err != nil {
			logrus.Errorf("error writing console (%v)", err)
			break
		}
	}
}
