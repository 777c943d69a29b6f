package reverser

import (
	"github.com/michaelquigley/pfxlog"
	"github.com/openziti/reverser/cf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type loggerInstrument struct {
	config *loggerInstrumentConfig
}

type loggerInstrumentConfig struct {
	Writes bool `cf:"writes"`
	Reads  bool `cf:"reads"`
}

func NewLoggerInstrument(config map[string]interface{}) (Instrument, error) {
	i := &loggerInstrument{config: new(loggerInstrumentConfig)}
	if config != nil {
		if err := cf.Load(config, i.config); err != nil {
			return nil, errors.Wrap(err, "unable to load config")
		}
	}
	logrus.Info(cf.Dump("loggerInstrumentConfig", i.config))
	return i, nil
}

func (self *loggerInstrument) NewInstance(id string) InstrumentInstance {
	return &loggerInstrumentInstance{
		log:    pfxlog.ContextLogger(id),
		config: self.config,
	}
}

type loggerInstrumentInstance struct {
	log    *logrus.Entry
	config *loggerInstrumentConfig
}

/*
 * lifecycle
 */
func (self *loggerInstrumentInstance) Opened(capacity int) {
	self.log.Infof("opened, capacity [%d]", capacity)
}

func (self *loggerInstrumentInstance) Closed() {
	self.log.Info("closed")
}

/*
 * write
 */
func (self *loggerInstrumentInstance) Wrote(sz int) {
	if self.config.Writes {
		self.log.Infof("-> [%d]", sz)
	}
}

func (self *loggerInstrumentInstance) WriteError(err error) {
	self.log.Errorf("write failed (%v)", err)
}

/*
 * read
 */
func (self *loggerInstrumentInstance) ReadBlocked() {
	if self.config.Reads {
		self.log.Debug("read waiting")
	}
}

func (self *loggerInstrumentInstance) Delivered(sz int) {
	if self.config.Reads {
		self.log.Infof("<- [%d]", sz)
	}
}

func (self *loggerInstrumentInstance) ReadError(err error) {
	if errors.Is(err, ErrWouldBlock) {
		return
	}
	self.log.Warnf("read failed (%v)", err)
}

/*
 * instrument lifecycle
 */
func (self *loggerInstrumentInstance) Shutdown() {}
