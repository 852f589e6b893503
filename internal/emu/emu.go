// Package emu assembles the CPU, bus, and peripherals into a runnable
// machine: ROM/save loading, frame stepping, and the thin host-facing
// surface (framebuffer, audio pull, button state) that cmd/gbemu
// drives.
package emu

import (
	"fmt"
	"io"
	"os"

	"github.com/aldenreed/gbcore/internal/bus"
	"github.com/aldenreed/gbcore/internal/cart"
	"github.com/aldenreed/gbcore/internal/cpu"
	"github.com/aldenreed/gbcore/internal/joypad"
	"github.com/aldenreed/gbcore/internal/trace"
)

const sampleRate = 48000

// Buttons is the host's per-frame snapshot of which Game Boy buttons
// are held; SetButtons diffs it against the previous frame to drive
// the joypad's edge-triggered interrupt.
type Buttons struct {
	A, B, Start, Select   bool
	Up, Down, Left, Right bool
}

func (b Buttons) mask() byte {
	var m byte
	if b.Right {
		m |= joypad.Right
	}
	if b.Left {
		m |= joypad.Left
	}
	if b.Up {
		m |= joypad.Up
	}
	if b.Down {
		m |= joypad.Down
	}
	if b.A {
		m |= joypad.A
	}
	if b.B {
		m |= joypad.B
	}
	if b.Select {
		m |= joypad.Select
	}
	if b.Start {
		m |= joypad.Start
	}
	return m
}

// dotsPerFrame is the DMG dot clock's frame period: 456 dots/line * 154 lines.
const dotsPerFrame = 456 * 154

// Machine owns one emulated console: cartridge, CPU, bus, and the
// rendering/compat state that sits above the core (CGB-on-DMG palette
// choice, boot ROM, framebuffer).
type Machine struct {
	cfg Config

	bootROM []byte

	romPath string
	header  *cart.Header
	crt     cart.Cartridge

	bus *bus.Bus
	cpu *cpu.CPU

	nativeCGB   bool // ROM declares CGB support and we booted in CGB mode
	wantCGBBG   bool // user asked for CGB-style color rendering
	useFetcher  bool // stored by SetUseFetcherBG; renderFrame does not read it
	compatPalID int

	fb []byte // 160x144 RGBA

	trace trace.Sink
}

func New(cfg Config) *Machine {
	m := &Machine{cfg: cfg, fb: make([]byte, 160*144*4), trace: trace.Discard{}}
	if cfg.Trace {
		m.trace = trace.Writer{Print: trace.DefaultPrint}
	}
	return m
}

// SetBootROM stages a boot ROM image to be installed on the next load/reset.
func (m *Machine) SetBootROM(data []byte) {
	m.bootROM = append([]byte(nil), data...)
}

// SetTraceSink installs the CPU instruction trace sink (cmd/gbemu's -tracefile option).
func (m *Machine) SetTraceSink(s trace.Sink) {
	if s == nil {
		s = trace.Discard{}
	}
	m.trace = s
}

// LoadCartridge builds a fresh bus+CPU around rom, replacing any previously loaded game.
func (m *Machine) LoadCartridge(rom []byte, boot []byte) error {
	h, err := cart.ParseHeader(rom)
	if err != nil {
		return err
	}
	c, err := cart.New(rom)
	if err != nil {
		return err
	}
	m.header = h
	m.crt = c
	m.nativeCGB = h.CGBFlag == 0x80 || h.CGBFlag == 0xC0
	if len(boot) > 0 {
		m.bootROM = boot
	}

	cgbMode := m.nativeCGB || m.wantCGBBG
	m.bus = bus.New(c, sampleRate, cgbMode)
	if len(m.bootROM) > 0 {
		m.bus.SetBootROM(m.bootROM)
	}
	m.cpu = cpu.New(m.bus)
	if len(m.bootROM) > 0 {
		m.cpu.SetPC(0x0000)
	} else if cgbMode {
		m.resetCGBPostBoot()
	} else {
		m.cpu.ResetNoBoot()
		m.cpu.SetPC(0x0100)
	}
	return nil
}

// LoadROMFromFile reads a ROM from disk, loads it, and records the path
// so the save-RAM file name can be derived from it.
func (m *Machine) LoadROMFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := m.LoadCartridge(data, m.bootROM); err != nil {
		return err
	}
	m.romPath = path
	return nil
}

func (m *Machine) ROMPath() string { return m.romPath }

// ROMTitle returns the cartridge header's title, or "" if no ROM is loaded.
func (m *Machine) ROMTitle() string {
	if m.header == nil {
		return ""
	}
	return m.header.Title
}

// LoadBattery restores external RAM (and, for MBC3, the RTC footer) from a .sav image.
func (m *Machine) LoadBattery(data []byte) bool {
	bb, ok := m.crt.(cart.BatteryBacked)
	if !ok || !bb.HasBattery() {
		return false
	}
	return bb.Load(data) == nil
}

// SaveBattery returns the cartridge's external RAM image, if it has a battery.
func (m *Machine) SaveBattery() ([]byte, bool) {
	bb, ok := m.crt.(cart.BatteryBacked)
	if !ok || !bb.HasBattery() {
		return nil, false
	}
	return bb.Save(), true
}

// SetButtons updates the joypad's held-button state for this frame.
func (m *Machine) SetButtons(b Buttons) {
	if m.bus == nil {
		return
	}
	jp := m.bus.Joypad()
	mask := b.mask()
	jp.Release(^mask)
	jp.Press(mask)
}

// ResetPostBoot restarts the current cartridge in simplified DMG post-boot state.
func (m *Machine) ResetPostBoot() {
	if m.crt == nil {
		return
	}
	m.bus = bus.New(m.crt, sampleRate, false)
	m.nativeCGB = false
	m.cpu = cpu.New(m.bus)
	m.cpu.ResetNoBoot()
	m.cpu.SetPC(0x0100)
}

// ResetWithBoot restarts through the staged boot ROM, if one is set; otherwise behaves like ResetPostBoot.
func (m *Machine) ResetWithBoot() {
	if m.crt == nil {
		return
	}
	if len(m.bootROM) == 0 {
		m.ResetPostBoot()
		return
	}
	m.bus = bus.New(m.crt, sampleRate, m.nativeCGB || m.wantCGBBG)
	m.bus.SetBootROM(m.bootROM)
	m.cpu = cpu.New(m.bus)
	m.cpu.SetPC(0x0000)
}

// ResetCGBPostBoot restarts in CGB mode. A DMG-only cartridge then renders
// with a DMG-compatibility palette; compat selects whether that palette is
// picked from the cartridge header or left at its current choice.
func (m *Machine) ResetCGBPostBoot(compat bool) {
	if m.crt == nil {
		return
	}
	m.wantCGBBG = true
	m.bus = bus.New(m.crt, sampleRate, true)
	m.cpu = cpu.New(m.bus)
	m.resetCGBPostBoot()
	if compat && !m.nativeCGB {
		if id, ok := autoCompatPaletteFromHeader(m.header); ok {
			m.compatPalID = id
		}
	}
}

func (m *Machine) resetCGBPostBoot() {
	m.cpu.A, m.cpu.F = 0x11, 0x80
	m.cpu.B, m.cpu.C = 0x00, 0x00
	m.cpu.D, m.cpu.E = 0xFF, 0x56
	m.cpu.H, m.cpu.L = 0x00, 0x0D
	m.cpu.SP = 0xFFFE
	m.cpu.SetPC(0x0100)
}

func (m *Machine) WantCGBColors() bool { return m.wantCGBBG }
func (m *Machine) UseCGBBG() bool      { return m.nativeCGB || m.wantCGBBG }
func (m *Machine) IsCGBCompat() bool   { return m.wantCGBBG && !m.nativeCGB }

func (m *Machine) SetUseCGBBG(v bool) { m.wantCGBBG = v }

func (m *Machine) SetUseFetcherBG(v bool) { m.useFetcher = v }

func (m *Machine) SetCompatPalette(id int) {
	if id < 0 {
		id = 0
	}
	if id >= len(cgbCompatSets) {
		id = len(cgbCompatSets) - 1
	}
	m.compatPalID = id
}

func (m *Machine) CycleCompatPalette(delta int) {
	n := len(cgbCompatSets)
	m.compatPalID = ((m.compatPalID+delta)%n + n) % n
}

func (m *Machine) CurrentCompatPalette() int { return m.compatPalID }

func (m *Machine) CompatPaletteName(id int) string {
	if id < 0 || id >= len(cgbCompatSetNames) {
		return "?"
	}
	return cgbCompatSetNames[id]
}

// Framebuffer returns the last rendered frame as 160x144 RGBA8888.
func (m *Machine) Framebuffer() []byte { return m.fb }

// StepFrame runs one video frame's worth of dots and renders it into the framebuffer.
func (m *Machine) StepFrame() {
	m.runFrame(true)
}

// StepFrameNoRender runs one frame without touching the framebuffer, for headless test-ROM loops.
func (m *Machine) StepFrameNoRender() {
	m.runFrame(false)
}

func (m *Machine) runFrame(render bool) {
	if m.cpu == nil || m.bus == nil {
		return
	}
	var dots uint64
	for dots < dotsPerFrame {
		if _, ok := m.trace.(trace.Discard); !ok {
			pc := m.cpu.PC
			m.trace.Instr(pc, m.bus.Peek(pc), "")
		}
		before := m.bus.TotalDots()
		m.cpu.Step()
		dots += m.bus.TotalDots() - before
	}
	if render {
		m.renderFrame()
	}
}

// SetSerialWriter attaches an io.Writer as the serial port's byte sink
// (the Blargg test harness reads test-ROM results this way).
func (m *Machine) SetSerialWriter(w io.Writer) {
	if m.bus == nil || w == nil {
		return
	}
	m.bus.Serial().SetSink(writerSink{w})
}

type writerSink struct{ w io.Writer }

func (s writerSink) Byte(b byte) { fmt.Fprintf(s.w, "%c", b) }

// APU pass-throughs for the UI's audio player.
func (m *Machine) APUBufferedStereo() int {
	if m.bus == nil {
		return 0
	}
	return m.bus.APU().StereoAvailable()
}

func (m *Machine) APUPullStereo(max int) []int16 {
	if m.bus == nil {
		return nil
	}
	return m.bus.APU().PullStereo(max)
}

func (m *Machine) APUClearAudioLatency() {
	if m.bus == nil {
		return
	}
	m.bus.APU().PullStereo(m.bus.APU().StereoAvailable())
}

func (m *Machine) APUCapBufferedStereo(maxFrames int) {
	if m.bus == nil {
		return
	}
	a := m.bus.APU()
	if extra := a.StereoAvailable() - maxFrames; extra > 0 {
		a.PullStereo(extra)
	}
}

// SaveStateToFile and LoadStateFromFile are deliberately unimplemented:
// full CPU/PPU/APU snapshotting was dropped as a non-goal, and a
// half-correct gob dump would be worse than a clear error.
func (m *Machine) SaveStateToFile(path string) error {
	return fmt.Errorf("save states are not supported")
}

func (m *Machine) LoadStateFromFile(path string) error {
	return fmt.Errorf("save states are not supported")
}
