package reverser

import (
	"fmt"
	"github.com/openziti/reverser/cf"
	"github.com/openziti/reverser/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type MetricsInstrument struct {
	lock      sync.Mutex
	Config    *MetricsInstrumentConfig
	instances []*metricsInstrumentInstance
	on        int32
}

type MetricsInstrumentConfig struct {
	Path       string `cf:"path"`
	SnapshotMs int    `cf:"snapshot_ms"`
	Enabled    bool   `cf:"enabled"`
}

func NewMetricsInstrument(config map[string]interface{}) (Instrument, error) {
	i := &MetricsInstrument{
		Config: &MetricsInstrumentConfig{
			Path:       os.TempDir(),
			SnapshotMs: 1000,
			Enabled:    true,
		},
	}
	if config != nil {
		if err := cf.Load(config, i.Config); err != nil {
			return nil, errors.Wrap(err, "unable to load config")
		}
	}
	if i.Config.SnapshotMs < 1 {
		return nil, errors.Errorf("invalid 'snapshot_ms' [%d]", i.Config.SnapshotMs)
	}
	i.SetEnabled(i.Config.Enabled)
	logrus.Info(cf.Dump("MetricsInstrumentConfig", i.Config))
	return i, nil
}

func (self *MetricsInstrument) NewInstance(id string) InstrumentInstance {
	self.lock.Lock()
	defer self.lock.Unlock()
	ii := &metricsInstrumentInstance{
		id:     id,
		i:      self,
		close:  make(chan struct{}),
		exited: make(chan struct{}),
	}
	go ii.snapshotter(self.Config.SnapshotMs)
	self.instances = append(self.instances, ii)
	return ii
}

func (self *MetricsInstrument) SetEnabled(enabled bool) {
	var v int32
	if enabled {
		v = 1
	}
	atomic.StoreInt32(&self.on, v)
}

// enabled is consulted on every endpoint operation and must stay off the instrument lock.
func (self *MetricsInstrument) enabled() bool {
	return atomic.LoadInt32(&self.on) == 1
}

// WriteAllSamples writes one directory of sample files per instance beneath Config.Path, and returns the directories
// written. Instances whose endpoint has closed and whose final snapshot is included in this write are forgotten.
//
func (self *MetricsInstrument) WriteAllSamples() ([]string, error) {
	self.lock.Lock()
	defer self.lock.Unlock()

	if err := os.MkdirAll(self.Config.Path, os.ModePerm); err != nil {
		return nil, err
	}
	var outPaths []string
	var retained []*metricsInstrumentInstance
	for _, ii := range self.instances {
		if !ii.finished() {
			retained = append(retained, ii)
		}
		outPath, err := os.MkdirTemp(self.Config.Path, strings.ReplaceAll(fmt.Sprintf("%s_", ii.id), ":", "-"))
		if err != nil {
			return outPaths, err
		}
		logrus.Infof("writing metrics to [%s]", outPath)

		if err := util.WriteMetricsId(MetricsId, outPath, map[string]string{"endpoint": ii.id}); err != nil {
			return outPaths, err
		}
		for name, samples := range ii.datasets() {
			if err := util.WriteSamples(name, outPath, samples); err != nil {
				return outPaths, err
			}
		}
		outPaths = append(outPaths, outPath)
	}
	self.instances = retained
	return outPaths, nil
}

// Clean forgets every instance whose endpoint has been closed.
func (self *MetricsInstrument) Clean() {
	self.lock.Lock()
	defer self.lock.Unlock()

	var open []*metricsInstrumentInstance
	for _, ii := range self.instances {
		if ii.isClosed() {
			logrus.Infof("removed metricsInstrumentInstance [%s]", ii.id)
		} else {
			open = append(open, ii)
		}
	}
	self.instances = open
}

const MetricsId = "reverser"

var Datasets = []string{
	"write_bytes",
	"write_msgs",
	"read_bytes",
	"read_msgs",
	"blocked_reads",
	"unread_bytes",
	"errors",
}

type metricsInstrumentInstance struct {
	id        string
	i         *MetricsInstrument
	lock      sync.Mutex
	close     chan struct{}
	exited    chan struct{}
	closeOnce sync.Once
	closed    int32

	writeBytes        []*util.Sample
	writeBytesAccum   int64
	writeMsgs         []*util.Sample
	writeMsgsAccum    int64
	readBytes         []*util.Sample
	readBytesAccum    int64
	readMsgs          []*util.Sample
	readMsgsAccum     int64
	blockedReads      []*util.Sample
	blockedReadsAccum int64
	unreadBytes       []*util.Sample
	unreadBytesVal    int64
	errors            []*util.Sample
	errorsAccum       int64
}

/*
 * lifecycle
 */
func (self *metricsInstrumentInstance) Opened(int) {}

func (self *metricsInstrumentInstance) Closed() {
	self.Shutdown()
}

/*
 * write
 */
func (self *metricsInstrumentInstance) Wrote(sz int) {
	if self.i.enabled() {
		atomic.AddInt64(&self.writeBytesAccum, int64(sz))
		atomic.AddInt64(&self.writeMsgsAccum, 1)
		atomic.StoreInt64(&self.unreadBytesVal, int64(sz))
	}
}

func (self *metricsInstrumentInstance) WriteError(error) {
	if self.i.enabled() {
		atomic.AddInt64(&self.errorsAccum, 1)
	}
}

/*
 * read
 */
func (self *metricsInstrumentInstance) ReadBlocked() {
	if self.i.enabled() {
		atomic.AddInt64(&self.blockedReadsAccum, 1)
	}
}

func (self *metricsInstrumentInstance) Delivered(sz int) {
	if self.i.enabled() {
		atomic.AddInt64(&self.readBytesAccum, int64(sz))
		atomic.AddInt64(&self.readMsgsAccum, 1)
		atomic.AddInt64(&self.unreadBytesVal, -int64(sz))
	}
}

func (self *metricsInstrumentInstance) ReadError(err error) {
	if self.i.enabled() && !errors.Is(err, ErrWouldBlock) {
		atomic.AddInt64(&self.errorsAccum, 1)
	}
}

/*
 * instrument lifecycle
 */
func (self *metricsInstrumentInstance) Shutdown() {
	self.closeOnce.Do(func() {
		atomic.StoreInt32(&self.closed, 1)
		close(self.close)
	})
}

func (self *metricsInstrumentInstance) isClosed() bool {
	return atomic.LoadInt32(&self.closed) == 1
}

// finished reports whether the snapshotter has taken its final snapshot and exited.
func (self *metricsInstrumentInstance) finished() bool {
	select {
	case <-self.exited:
		return true
	default:
		return false
	}
}

func (self *metricsInstrumentInstance) snapshotter(ms int) {
	logrus.Debugf("[%s] started", self.id)
	defer logrus.Debugf("[%s] exited", self.id)
	defer close(self.exited)

	ticker := time.NewTicker(time.Duration(ms) * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if self.i.enabled() {
				self.snapshot()
			}
		case <-self.close:
			self.snapshot()
			return
		}
	}
}

func (self *metricsInstrumentInstance) snapshot() {
	self.lock.Lock()
	defer self.lock.Unlock()

	now := time.Now()
	self.writeBytes = append(self.writeBytes, &util.Sample{Ts: now, V: atomic.SwapInt64(&self.writeBytesAccum, 0)})
	self.writeMsgs = append(self.writeMsgs, &util.Sample{Ts: now, V: atomic.SwapInt64(&self.writeMsgsAccum, 0)})
	self.readBytes = append(self.readBytes, &util.Sample{Ts: now, V: atomic.SwapInt64(&self.readBytesAccum, 0)})
	self.readMsgs = append(self.readMsgs, &util.Sample{Ts: now, V: atomic.SwapInt64(&self.readMsgsAccum, 0)})
	self.blockedReads = append(self.blockedReads, &util.Sample{Ts: now, V: atomic.SwapInt64(&self.blockedReadsAccum, 0)})
	self.unreadBytes = append(self.unreadBytes, &util.Sample{Ts: now, V: atomic.LoadInt64(&self.unreadBytesVal)})
	self.errors = append(self.errors, &util.Sample{Ts: now, V: atomic.SwapInt64(&self.errorsAccum, 0)})
}

func (self *metricsInstrumentInstance) datasets() map[string][]*util.Sample {
	self.lock.Lock()
	defer self.lock.Unlock()

	return map[string][]*util.Sample{
		"write_bytes":   self.writeBytes,
		"write_msgs":    self.writeMsgs,
		"read_bytes":    self.readBytes,
		"read_msgs":     self.readMsgs,
		"blocked_reads": self.blockedReads,
		"unread_bytes":  self.unreadBytes,
		"errors":        self.errors,
	}
}
