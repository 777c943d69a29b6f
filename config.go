package reverser

import (
	"github.com/openziti/reverser/cf"
	"github.com/pkg/errors"
)

const DefaultBufferSize = 8192

type Config struct {
	BufferSize       int                    `cf:"buffer_size"`
	MaxEndpoints     int                    `cf:"max_endpoints"`
	Instrument       string                 `cf:"instrument"`
	InstrumentConfig map[string]interface{} `cf:"instrument_config"`
}

func NewDefaultConfig() *Config {
	return &Config{
		BufferSize: DefaultBufferSize,
		Instrument: "nil",
	}
}

// LoadConfig overlays the YAML document at path onto the defaults. The result is not validated; NewDevice does that
// once any command-line overrides have been applied.
//
func LoadConfig(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if path != "" {
		if err := cf.LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (self *Config) Validate() error {
	if self.BufferSize < 1 {
		return errors.Errorf("invalid 'buffer_size' [%d]", self.BufferSize)
	}
	if self.MaxEndpoints < 0 {
		return errors.Errorf("invalid 'max_endpoints' [%d]", self.MaxEndpoints)
	}
	return nil
}

func (self *Config) Dump() string {
	return cf.Dump("reverser.Config", self)
}
