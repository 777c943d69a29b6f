package reverser

import (
	"fmt"
	"github.com/emirpasic/gods/trees/btree"
	"github.com/emirpasic/gods/utils"
	"github.com/openziti/reverser/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"sync"
)

const endpointsTreeOrder = 32

// Device is the process-wide point of registration for endpoints. It owns the configured buffer size and tracks every
// endpoint it has opened until that endpoint is closed.
//
type Device struct {
	lock       *sync.Mutex
	config     *Config
	instrument Instrument
	seq        *util.Sequence
	endpoints  *btree.Tree
	closed     bool
}

type EndpointStats struct {
	Id       int32
	Capacity int
	Unread   int
}

func NewDevice(config *Config) (*Device, error) {
	if config == nil {
		config = NewDefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	i, err := NewInstrument(config.Instrument, config.InstrumentConfig)
	if err != nil {
		return nil, errors.Wrap(err, "error creating instrument")
	}
	logrus.Infof("device registered, buffer size [%d]", config.BufferSize)
	return &Device{
		lock:       new(sync.Mutex),
		config:     config,
		instrument: i,
		seq:        util.NewSequence(1),
		endpoints:  btree.NewWith(endpointsTreeOrder, utils.Int32Comparator),
	}, nil
}

func (self *Device) Config() *Config {
	return self.config
}

func (self *Device) Instrument() Instrument {
	return self.instrument
}

func (self *Device) Open() (*Endpoint, error) {
	self.lock.Lock()
	defer self.lock.Unlock()

	if self.closed {
		return nil, errors.Wrap(ErrClosed, "device")
	}
	if self.config.MaxEndpoints > 0 && self.endpoints.Size() >= self.config.MaxEndpoints {
		return nil, errors.Wrapf(ErrAllocation, "endpoint limit [%d] reached", self.config.MaxEndpoints)
	}
	buf, err := Allocate(self.config.BufferSize)
	if err != nil {
		return nil, err
	}
	id := self.seq.Next()
	for {
		if _, found := self.endpoints.Get(id); !found {
			break
		}
		id = self.seq.Next()
	}
	ep := &Endpoint{
		id:     id,
		buffer: buf,
		device: self,
		ii:     self.instrument.NewInstance(fmt.Sprintf("endpoint_%d", id)),
	}
	self.endpoints.Put(id, ep)
	ep.ii.Opened(buf.Cap())
	return ep, nil
}

func (self *Device) Stats() []EndpointStats {
	self.lock.Lock()
	defer self.lock.Unlock()

	var stats []EndpointStats
	for _, v := range self.endpoints.Values() {
		ep := v.(*Endpoint)
		stats = append(stats, EndpointStats{Id: ep.id, Capacity: ep.buffer.Cap(), Unread: ep.buffer.Len()})
	}
	return stats
}

// Close closes every open endpoint and refuses further opens.
func (self *Device) Close() error {
	self.lock.Lock()
	if self.closed {
		self.lock.Unlock()
		return errors.Wrap(ErrClosed, "device")
	}
	self.closed = true
	var open []*Endpoint
	for _, v := range self.endpoints.Values() {
		open = append(open, v.(*Endpoint))
	}
	self.lock.Unlock()

	for _, ep := range open {
		if err := ep.Close(); err != nil && !errors.Is(err, ErrClosed) {
			logrus.Errorf("error closing [%s] (%v)", ep, err)
		}
	}
	logrus.Info("device unregistered")
	return nil
}

func (self *Device) remove(id int32) {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.endpoints.Remove(id)
}
