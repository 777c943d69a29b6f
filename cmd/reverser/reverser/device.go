package reverser

import (
	core "github.com/openziti/reverser"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// LoadDevice builds the process-wide device from the --config file and the --buffer-size override.
//
func LoadDevice() (*core.Device, error) {
	cfg, err := core.LoadConfig(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load config [%s]", configPath)
	}
	if bufferSize > 0 {
		cfg.BufferSize = bufferSize
	}
	if configDump {
		logrus.Info(cfg.Dump())
	}
	return core.NewDevice(cfg)
}
