package serve

import (
	"context"
	"fmt"
	core "github.com/openziti/reverser"
	"github.com/openziti/reverser/cmd/reverser/reverser"
	"github.com/openziti/reverser/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

func init() {
	serveCmd.Flags().StringVar(&ctrlRoot, "ctrl", "", "Expose a control socket in this directory")
	reverser.RootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve <address>",
	Short: "Bridge connections onto reverser endpoints",
	Args:  cobra.ExactArgs(1),
	Run:   serve,
}
var ctrlRoot string

func serve(_ *cobra.Command, args []string) {
	device, err := reverser.LoadDevice()
	if err != nil {
		logrus.Fatalf("error creating device (%v)", err)
	}
	defer func() { _ = device.Close() }()

	protocol, err := reverser.ProtocolFor(reverser.SelectedProtocol)
	if err != nil {
		logrus.Fatalf("error selecting protocol (%v)", err)
	}
	listener, err := protocol.Listen(args[0])
	if err != nil {
		logrus.Fatalf("error listening [%s] (%v)", args[0], err)
	}
	logrus.Infof("listening at [%s] (%s)", listener.Addr(), reverser.SelectedProtocol)

	if ctrlRoot != "" {
		cl, err := startCtrl(ctrlRoot, device)
		if err != nil {
			logrus.Fatalf("error starting ctrl listener (%v)", err)
		}
		defer func() { _ = cl.Close() }()
		logrus.Infof("ctrl listening at [%s]", cl.Addr())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				logrus.Infof("shutting down")
				return
			}
			logrus.Errorf("error accepting (%v)", err)
			continue
		}
		go handle(ctx, device, conn)
	}
}

func handle(ctx context.Context, device *core.Device, conn net.Conn) {
	ep, err := device.Open()
	if err != nil {
		logrus.Errorf("error opening endpoint for [%s] (%v)", conn.RemoteAddr(), err)
		_, _ = conn.Write([]byte(fmt.Sprintf("error (%v)\n", err)))
		_ = conn.Close()
		return
	}
	defer func() { _ = ep.Close() }()

	logrus.Infof("[%s] bridging [%s]", ep, conn.RemoteAddr())
	if err := core.Bridge(ctx, conn, ep); err != nil {
		logrus.Errorf("[%s] bridge failed (%v)", ep, err)
		return
	}
	logrus.Infof("[%s] finished", ep)
}

func startCtrl(root string, device *core.Device) (*util.CtrlListener, error) {
	cl, err := util.GetCtrlListener(root, "reverser")
	if err != nil {
		return nil, err
	}
	cl.AddCallback("stats", func(_ string, conn net.Conn) (int64, error) {
		var out strings.Builder
		for _, stats := range device.Stats() {
			out.WriteString(fmt.Sprintf("endpoint_%d capacity=%d unread=%d\n", stats.Id, stats.Capacity, stats.Unread))
		}
		n, err := conn.Write([]byte(out.String()))
		return int64(n), err
	})
	cl.AddCallback("metrics", func(line string, conn net.Conn) (int64, error) {
		return metricsCommand(device, line, conn)
	})
	cl.Start()
	return cl, nil
}

func metricsCommand(device *core.Device, line string, conn net.Conn) (int64, error) {
	mi, ok := device.Instrument().(*core.MetricsInstrument)
	if !ok {
		return 0, errors.New("metrics instrument not active")
	}
	tokens := strings.Fields(line)
	if len(tokens) != 2 {
		return 0, errors.Errorf("expected 'metrics start|stop|write|clean'")
	}
	switch tokens[1] {
	case "start":
		mi.SetEnabled(true)
		return 0, nil

	case "stop":
		mi.SetEnabled(false)
		return 0, nil

	case "write":
		outPaths, err := mi.WriteAllSamples()
		if err != nil {
			return 0, err
		}
		var total int64
		for _, outPath := range outPaths {
			n, err := conn.Write([]byte(outPath + "\n"))
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
		return total, nil

	case "clean":
		mi.Clean()
		return 0, nil

	default:
		return 0, errors.Errorf("unknown metrics command [%s]", tokens[1])
	}
}
