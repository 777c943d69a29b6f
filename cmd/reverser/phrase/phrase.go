package phrase

import (
	"context"
	"fmt"
	"github.com/openziti/reverser/cmd/reverser/reverser"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"strings"
)

func init() {
	phraseCmd.Flags().IntVar(&chunkSize, "chunk", 0, "Drain the reversed phrase in reads of this size")
	reverser.RootCmd.AddCommand(phraseCmd)
}

var phraseCmd = &cobra.Command{
	Use:   "phrase <words...>",
	Short: "Reverse a phrase through an in-process endpoint",
	Args:  cobra.MinimumNArgs(1),
	Run:   phrase,
}
var chunkSize int

func phrase(cmd *cobra.Command, args []string) {
	device, err := reverser.LoadDevice()
	if err != nil {
		logrus.Fatalf("error creating device (%v)", err)
	}
	defer func() { _ = device.Close() }()

	ep, err := device.Open()
	if err != nil {
		logrus.Fatalf("error opening endpoint (%v)", err)
	}
	defer func() { _ = ep.Close() }()

	in := strings.Join(args, " ")
	if _, err := ep.Write([]byte(in)); err != nil {
		logrus.Fatalf("error writing [%d] bytes (%v)", len(in), err)
	}

	sz := chunkSize
	if sz < 1 || sz > len(in) {
		sz = len(in)
	}
	buf := make([]byte, sz)
	var out strings.Builder
	for out.Len() < len(in) {
		n, err := ep.ReadContext(context.Background(), buf, true)
		if err != nil {
			logrus.Fatalf("error reading (%v)", err)
		}
		logrus.Debugf("read [%d] bytes", n)
		out.Write(buf[:n])
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.String())
}
