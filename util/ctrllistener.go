package util

import (
	"bufio"
	"fmt"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var ctrlListeners = make(map[string]*CtrlListener)
var ctrlMutex sync.Mutex

// CtrlCallback handles one control line. The callback may write its own response to conn before the listener
// acknowledges the line with "ok" (or "error (...)" when the callback fails).
//
type CtrlCallback func(line string, conn net.Conn) (int64, error)

type CtrlListener struct {
	key       string
	listener  net.Listener
	lock      sync.Mutex
	callbacks map[string][]CtrlCallback
	running   bool
}

// GetCtrlListener returns the control listener for id beneath root, creating a unix socket named
// <id>.<pid>.sock on first use.
//
func GetCtrlListener(root, id string) (*CtrlListener, error) {
	ctrlMutex.Lock()
	defer ctrlMutex.Unlock()

	key := filepath.Join(root, id)
	if cl, found := ctrlListeners[key]; found {
		return cl, nil
	}

	address := filepath.Join(root, fmt.Sprintf("%s.%d.sock", id, os.Getpid()))
	unixAddress, err := net.ResolveUnixAddr("unix", address)
	if err != nil {
		return nil, errors.Wrap(err, "error resolving unix address")
	}
	listener, err := net.ListenUnix("unix", unixAddress)
	if err != nil {
		return nil, errors.Wrap(err, "error listening")
	}
	cl := &CtrlListener{
		key:       key,
		listener:  listener,
		callbacks: make(map[string][]CtrlCallback),
	}
	ctrlListeners[key] = cl
	return cl, nil
}

func (self *CtrlListener) Addr() string {
	return self.listener.Addr().String()
}

func (self *CtrlListener) AddCallback(keyword string, f CtrlCallback) {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.callbacks[keyword] = append(self.callbacks[keyword], f)
}

func (self *CtrlListener) Start() {
	ctrlMutex.Lock()
	defer ctrlMutex.Unlock()

	if !self.running {
		self.running = true
		go self.run()
	}
}

func (self *CtrlListener) Close() error {
	ctrlMutex.Lock()
	defer ctrlMutex.Unlock()

	delete(ctrlListeners, self.key)
	return self.listener.Close()
}

func (self *CtrlListener) run() {
	logrus.Infof("[%s] started", self.listener.Addr())
	defer logrus.Infof("[%s] exited", self.listener.Addr())

	for {
		conn, err := self.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || err == io.EOF {
				return
			}
			logrus.Errorf("error accepting ctrl connection (%v)", err)
			continue
		}
		go self.handle(conn)
	}
}

func (self *CtrlListener) handle(conn net.Conn) {
	logrus.Debugf("new connection for [%s]", conn.LocalAddr())
	defer logrus.Debugf("ended connection for [%s]", conn.LocalAddr())
	defer func() { _ = conn.Close() }()

	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err == io.EOF {
			return
		} else if err != nil {
			logrus.Errorf("error reading (%v)", err)
			return
		}

		line = strings.TrimSpace(line)
		tokens := strings.Fields(line)
		if len(tokens) < 1 {
			self.respond(conn, "syntax error?\n")
			continue
		}

		self.lock.Lock()
		fs, found := self.callbacks[tokens[0]]
		self.lock.Unlock()
		if !found {
			logrus.Errorf("no callback for [%s]", line)
			self.respond(conn, "syntax error?\n")
			continue
		}

		var fErr error
		for _, f := range fs {
			if _, fErr = f(line, conn); fErr != nil {
				break
			}
		}
		if fErr == nil {
			self.respond(conn, "ok\n")
		} else {
			logrus.Errorf("error executing callback (%v)", fErr)
			self.respond(conn, fmt.Sprintf("error (%s)\n", fErr))
		}
	}
}

func (self *CtrlListener) respond(conn net.Conn, response string) {
	if _, err := conn.Write([]byte(response)); err != nil {
		logrus.Errorf("error responding (%v)", err)
	}
}
