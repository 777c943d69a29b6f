package reverser

import "github.com/pkg/errors"

type Instrument interface {
	NewInstance(id string) InstrumentInstance
}

type InstrumentInstance interface {
	// lifecycle
	Opened(capacity int)
	Closed()

	// write
	Wrote(sz int)
	WriteError(err error)

	// read
	ReadBlocked()
	Delivered(sz int)
	ReadError(err error)

	// instrument lifecycle
	Shutdown()
}

func NewInstrument(name string, config map[string]interface{}) (i Instrument, err error) {
	switch name {
	case "", "nil":
		return NewNilInstrument(), nil
	case "logger":
		return NewLoggerInstrument(config)
	case "metrics":
		return NewMetricsInstrument(config)
	default:
		return nil, errors.Errorf("unknown instrument '%s'", name)
	}
}
