// Command gbemu is the headless driver: it loads a ROM, steps the core for
// a fixed budget, and on exit reports a CRC32 of the final framebuffer,
// optionally dumps it as a PNG, and optionally persists cartridge battery
// RAM beside the ROM.
package main

import (
	"flag"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"log"
	"os"
	"strings"
	"time"

	"github.com/colinhartley/dmgcore/internal/cart"
	"github.com/colinhartley/dmgcore/internal/emu"
	"github.com/colinhartley/dmgcore/internal/ppu"
)

type cliFlags struct {
	ROMPath string
	Trace   bool
	SavPath string

	Frames int
	PNGOut string
	Expect string
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.ROMPath, "rom", "", "path to ROM (.gb)")
	flag.BoolVar(&f.Trace, "trace", false, "log a Game-Boy-Doctor-style line per instruction")
	flag.StringVar(&f.SavPath, "sav", "", "battery RAM path (default: ROM path with .sav extension)")
	flag.IntVar(&f.Frames, "frames", 300, "frames to run")
	flag.StringVar(&f.PNGOut, "outpng", "", "write the final framebuffer to PNG at path")
	flag.StringVar(&f.Expect, "expect", "", "expected framebuffer CRC32 (hex); nonzero exit on mismatch")
	flag.Parse()
	return f
}

// grayscalePalette maps the four in-game shades plus LCD-off to a
// DMG-style green-gray ramp.
var grayscalePalette = ppu.RGBAPalette{
	{0xE0, 0xF8, 0xD0, 0xFF},
	{0x88, 0xC0, 0x70, 0xFF},
	{0x34, 0x68, 0x56, 0xFF},
	{0x08, 0x18, 0x20, 0xFF},
	{0x00, 0x00, 0x00, 0xFF},
}

func savPathFor(f cliFlags) string {
	if f.SavPath != "" {
		return f.SavPath
	}
	if f.ROMPath == "" {
		return ""
	}
	return strings.TrimSuffix(f.ROMPath, ".gb") + ".sav"
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

func main() {
	f := parseFlags()
	if f.ROMPath == "" {
		log.Fatal("gbemu: -rom is required")
	}

	rom, err := os.ReadFile(f.ROMPath)
	if err != nil {
		log.Fatalf("read ROM: %v", err)
	}
	if h, err := cart.ParseHeader(rom); err == nil {
		log.Printf("ROM: %q type=%s banks=%d ram=%dB", h.Title, h.CartTypeStr, h.ROMBanks, h.RAMSizeBytes)
	}

	m := emu.New(emu.Config{Trace: f.Trace})
	if err := m.LoadCartridge(rom, nil); err != nil {
		log.Fatalf("load cartridge: %v", err)
	}

	sav := savPathFor(f)
	if sav != "" {
		if data, err := os.ReadFile(sav); err == nil {
			m.LoadBattery(data)
			log.Printf("loaded save RAM: %s (%d bytes)", sav, len(data))
		}
	}

	frames := f.Frames
	if frames <= 0 {
		frames = 1
	}
	start := time.Now()
	for i := 0; i < frames; i++ {
		m.StepFrame()
	}
	dur := time.Since(start)

	fb := make([]byte, 160*144*4)
	m.Framebuffer(fb, 160, 144, grayscalePalette)
	crc := crc32.ChecksumIEEE(fb)
	fps := float64(frames) / dur.Seconds()
	log.Printf("headless: frames=%d elapsed=%s fps=%.2f fb_crc32=%08x",
		frames, dur.Truncate(time.Millisecond), fps, crc)

	if f.PNGOut != "" {
		if err := saveFramePNG(fb, 160, 144, f.PNGOut); err != nil {
			log.Fatalf("write PNG: %v", err)
		}
		log.Printf("wrote %s", f.PNGOut)
	}

	if f.Expect != "" {
		want := strings.TrimPrefix(strings.ToLower(f.Expect), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			log.Fatalf("checksum mismatch: got %s, want %s", got, want)
		}
	}

	if sav != "" {
		if data := m.SaveBattery(); data != nil {
			if err := os.WriteFile(sav, data, 0644); err != nil {
				log.Printf("write %s: %v", sav, err)
			} else {
				log.Printf("wrote %s", sav)
			}
		}
	}
}
