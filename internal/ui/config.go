package ui

// Config holds the window/input/audio settings NewApp needs to open a
// window around a *emu.Machine. Values left at zero are filled by Defaults.
type Config struct {
	Title       string // window title
	Scale       int    // integer upscaling factor
	AudioStereo bool   // true: output true stereo; false: fold to mono
	// Audio buffering
	AudioAdaptive   bool   // grow/shrink the target buffer on underrun
	AudioBufferMs   int    // initial desired buffer size, in ms
	AudioLowLatency bool   // cap buffering hard for minimal latency
	ROMsDir         string // directory the ROM picker browses
	UseFetcherBG    bool   // render the BG layer via the fetcher/FIFO path
	// Visual overlay skin
	ShellOverlay bool   // draw an alpha-blended overlay image over the game view
	ShellImage   string // path to the overlay image (PNG)
	// Per-ROM preferences, keyed by absolute ROM path
	PerROMCompatPalette map[string]int // DMG-on-CGB compat palette ID per ROM
}

// Defaults fills any zero-valued field with a usable default.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "gbcore"
	}
	if c.Scale <= 0 {
		c.Scale = 3
	}
	if c.AudioBufferMs <= 0 {
		c.AudioBufferMs = 60 // lower baseline to reduce perceived latency
	}
	if c.ROMsDir == "" {
		c.ROMsDir = "roms"
	}
	if c.PerROMCompatPalette == nil {
		c.PerROMCompatPalette = make(map[string]int)
	}
	if c.ShellImage == "" {
		c.ShellImage = "assets/skins/gbc_overlay.png"
	}
}
