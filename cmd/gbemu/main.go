package main

import (
	"flag"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aldenreed/gbcore/internal/cart"
	"github.com/aldenreed/gbcore/internal/emu"
	"github.com/aldenreed/gbcore/internal/trace"
	"github.com/aldenreed/gbcore/internal/ui"
)

// cliFlags mirrors the flag set a player (or a CI job running the
// headless path) actually touches: ROM/boot paths, window options, and
// the handful of headless knobs used for checksum-gated smoke tests.
type cliFlags struct {
	ROMPath string
	BootROM string
	Scale   int
	Title   string
	Trace   bool
	TraceTo string // path to tee CPU trace output instead of stdout
	SaveRAM bool   // persist battery RAM next to the ROM as a .sav file

	Headless bool
	Frames   int
	PNGOut   string
	Expect   string // expected framebuffer CRC32 (hex), headless smoke-test gate
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.ROMPath, "rom", "", "path to ROM (.gb)")
	flag.StringVar(&f.BootROM, "bootrom", "", "optional DMG/CGB boot ROM")
	flag.IntVar(&f.Scale, "scale", 3, "window scale")
	flag.StringVar(&f.Title, "title", "gbemu", "window title")
	flag.BoolVar(&f.Trace, "trace", false, "log every dispatched CPU instruction")
	flag.StringVar(&f.TraceTo, "tracefile", "", "write the CPU trace to this file instead of stdout")
	flag.BoolVar(&f.SaveRAM, "save", true, "persist battery RAM to ROM.sav on exit and load it on start")

	flag.BoolVar(&f.Headless, "headless", false, "run without opening a window")
	flag.IntVar(&f.Frames, "frames", 300, "frames to run before exiting, in headless mode")
	flag.StringVar(&f.PNGOut, "outpng", "", "write the final framebuffer to a PNG at this path")
	flag.StringVar(&f.Expect, "expect", "", "fail unless the final framebuffer's CRC32 (hex) matches")
	flag.Parse()
	return f
}

func runHeadless(m *emu.Machine, frames int, pngPath, expectCRC string) error {
	if frames <= 0 {
		frames = 1
	}

	start := time.Now()
	for i := 0; i < frames; i++ {
		m.StepFrame()
	}
	elapsed := time.Since(start)

	fb := m.Framebuffer() // 160x144 RGBA8888
	crc := crc32.ChecksumIEEE(fb)
	fps := float64(frames) / elapsed.Seconds()

	log.Printf("headless: frames=%d elapsed=%s fps=%.2f fb_crc32=%08x",
		frames, elapsed.Truncate(time.Millisecond), fps, crc)

	if pngPath != "" {
		if err := saveFramePNG(fb, 160, 144, pngPath); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		log.Printf("wrote %s", pngPath)
	}

	if expectCRC != "" {
		want := strings.TrimPrefix(strings.ToLower(expectCRC), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func saveFramePNG(pix []byte, w, h int, path string) error {
	img := &image.RGBA{
		Pix:    make([]byte, len(pix)),
		Stride: 4 * w,
		Rect:   image.Rect(0, 0, w, h),
	}
	copy(img.Pix, pix)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func mustRead(path string) []byte {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	return b
}

// attachTraceFile redirects the trace sink -trace would otherwise build
// into cfg to a dedicated log.Logger over the named file, so long traces
// don't flood the terminal the emulator window is also drawing to.
func attachTraceFile(m *emu.Machine, path string) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		log.Fatalf("open trace file %s: %v", path, err)
	}
	logger := log.New(f, "", 0)
	m.SetTraceSink(trace.Writer{Print: logger.Printf})
}

func main() {
	f := parseFlags()
	var rom []byte
	if f.ROMPath != "" {
		rom = mustRead(f.ROMPath)
	}
	boot := mustRead(f.BootROM)

	if len(rom) >= 0x150 {
		if h, err := cart.ParseHeader(rom); err == nil {
			log.Printf("ROM: %q type=%s banks=%d ram=%dB", h.Title, h.CartTypeStr, h.ROMBanks, h.RAMSizeBytes)
		}
	}

	emuCfg := emu.Config{
		Trace:    f.Trace && f.TraceTo == "",
		LimitFPS: false, // headless mode wants to run flat-out
	}
	m := emu.New(emuCfg)
	if f.Trace && f.TraceTo != "" {
		attachTraceFile(m, f.TraceTo)
	}
	if len(boot) >= 0x100 {
		m.SetBootROM(boot)
	}
	if len(rom) > 0 {
		if err := m.LoadCartridge(rom, boot); err != nil {
			log.Fatalf("load cart: %v", err)
		}
		if f.ROMPath != "" {
			// Prefer an absolute path so save files land next to
			// the ROM regardless of the working directory the host ran from.
			if abs, err := filepath.Abs(f.ROMPath); err == nil {
				_ = m.LoadROMFromFile(abs)
			} else {
				_ = m.LoadROMFromFile(f.ROMPath)
			}
		}
	}

	var savPath string
	if f.SaveRAM && f.ROMPath != "" {
		savPath = strings.TrimSuffix(f.ROMPath, ".gb") + ".sav"
		if data, err := os.ReadFile(savPath); err == nil {
			if m.LoadBattery(data) {
				log.Printf("loaded save RAM: %s (%d bytes)", savPath, len(data))
			}
		}
	}

	if f.Headless {
		if err := runHeadless(m, f.Frames, f.PNGOut, f.Expect); err != nil {
			log.Fatal(err)
		}
		if f.SaveRAM && savPath != "" {
			if data, ok := m.SaveBattery(); ok {
				if err := os.WriteFile(savPath, data, 0644); err == nil {
					log.Printf("wrote %s", savPath)
				}
			}
		}
		return
	}

	uiCfg := ui.Config{Title: f.Title, Scale: f.Scale}
	app := ui.NewApp(uiCfg, m)
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
	if s, ok := any(app).(interface{ SaveSettings() }); ok {
		s.SaveSettings() // best-effort; UI settings are not load-bearing
	}
	if f.SaveRAM {
		outSav := savPath
		if outSav == "" && m.ROMPath() != "" && strings.HasSuffix(strings.ToLower(m.ROMPath()), ".gb") {
			outSav = strings.TrimSuffix(m.ROMPath(), ".gb") + ".sav"
		}
		if outSav != "" {
			if data, ok := m.SaveBattery(); ok {
				if err := os.WriteFile(outSav, data, 0644); err == nil {
					log.Printf("wrote %s", outSav)
				}
			}
		}
	}
}
