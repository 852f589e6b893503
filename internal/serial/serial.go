// Package serial models the 8-bit serial port (SB/SC at FF01/FF02).
//
// The hardware link cable has no peer here (spec Non-goals): the port
// self-loops and completes every transfer immediately. The transmitted
// byte is handed to an optional Sink so a host (or cmd/cpurunner, for
// the Blargg test ROMs that print results over serial) can capture it;
// nothing is hard-wired to a console.
package serial

// Sink receives every byte clocked out over SC's transfer-start bit.
type Sink interface {
	Byte(b byte)
}

type Port struct {
	sb    byte // FF01
	sc    byte // FF02, bits 7 and 0 meaningful
	raise func()
	sink  Sink
}

func New(raise func()) *Port { return &Port{raise: raise} }

// SetSink installs (or clears, with nil) the byte-capture sink.
func (p *Port) SetSink(s Sink) { p.sink = s }

func (p *Port) ReadSB() byte { return p.sb }
func (p *Port) WriteSB(v byte) { p.sb = v }

func (p *Port) ReadSC() byte { return 0x7E | (p.sc & 0x81) }

func (p *Port) WriteSC(v byte) {
	p.sc = v & 0x81
	if p.sc&0x80 == 0 {
		return
	}
	if p.sink != nil {
		p.sink.Byte(p.sb)
	}
	if p.raise != nil {
		p.raise()
	}
	p.sc &^= 0x80
}
