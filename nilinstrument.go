package reverser

type nilInstrument struct{}

func NewNilInstrument() Instrument {
	return &nilInstrument{}
}

func (self *nilInstrument) NewInstance(_ string) InstrumentInstance {
	return &nilInstrumentInstance{}
}

type nilInstrumentInstance struct{}

/*
 * lifecycle
 */
func (self *nilInstrumentInstance) Opened(int) {}
func (self *nilInstrumentInstance) Closed()    {}

/*
 * write
 */
func (self *nilInstrumentInstance) Wrote(int)        {}
func (self *nilInstrumentInstance) WriteError(error) {}

/*
 * read
 */
func (self *nilInstrumentInstance) ReadBlocked()    {}
func (self *nilInstrumentInstance) Delivered(int)   {}
func (self *nilInstrumentInstance) ReadError(error) {}

/*
 * instrument lifecycle
 */
func (self *nilInstrumentInstance) Shutdown() {}
