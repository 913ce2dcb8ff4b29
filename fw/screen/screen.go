// Package screen models the radio's 128x64 1-bpp LCD: a bit-packed
// framebuffer with per-block dirty tracking for the mirror stream, and a
// drivers.Displayer face so text renders through tinyfont.
package screen

import (
	"image/color"

	"k5remote/wire"
)

const dirtyWords = wire.ScreenBlockCount / 64

// Screen is a 1-bpp framebuffer. Bit n of the frame is pixel
// (x, y) = (n % width, n / width), LSB-first within each byte.
type Screen struct {
	buf   [wire.ScreenFrameBytes]byte
	dirty [dirtyWords]uint64
}

// New returns a cleared screen with every block marked dirty, so the first
// mirror emission is a full frame.
func New() *Screen {
	s := &Screen{}
	s.markAll()
	return s
}

// Size implements drivers.Displayer.
func (s *Screen) Size() (x, y int16) {
	return wire.ScreenWidth, wire.ScreenHeight
}

// SetPixel implements drivers.Displayer. Any bright-ish color sets the pixel,
// anything else clears it; the LCD has no shades.
func (s *Screen) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || x >= wire.ScreenWidth || y < 0 || y >= wire.ScreenHeight {
		return
	}
	bit := int(y)*wire.ScreenWidth + int(x)
	idx := bit / 8
	mask := byte(1 << (bit % 8))

	on := c.R >= 0x80 || c.G >= 0x80 || c.B >= 0x80
	old := s.buf[idx]
	if on {
		s.buf[idx] = old | mask
	} else {
		s.buf[idx] = old &^ mask
	}
	if s.buf[idx] != old {
		s.markBlock(idx / wire.ScreenBlockBytes)
	}
}

// Display implements drivers.Displayer. Presentation happens through the
// mirror encoder and the HAL display, so this is a no-op.
func (s *Screen) Display() error { return nil }

// Clear blanks the framebuffer.
func (s *Screen) Clear() {
	for i := range s.buf {
		if s.buf[i] != 0 {
			s.buf[i] = 0
			s.markBlock(i / wire.ScreenBlockBytes)
		}
	}
}

// CopyFrom overwrites the frame with src's contents, marking only the blocks
// that actually changed. The main loop draws into a scratch screen and copies
// it over, so a redraw that produces identical pixels emits no mirror
// traffic.
func (s *Screen) CopyFrom(src *Screen) {
	for b := 0; b < wire.ScreenBlockCount; b++ {
		off := b * wire.ScreenBlockBytes
		if s.block(off) == src.block(off) {
			continue
		}
		copy(s.buf[off:off+wire.ScreenBlockBytes], src.buf[off:off+wire.ScreenBlockBytes])
		s.markBlock(b)
	}
}

func (s *Screen) block(off int) [wire.ScreenBlockBytes]byte {
	var b [wire.ScreenBlockBytes]byte
	copy(b[:], s.buf[off:])
	return b
}

// Frame returns a copy of the full frame without touching dirty state.
func (s *Screen) Frame() []byte {
	out := make([]byte, len(s.buf))
	copy(out, s.buf[:])
	return out
}

func (s *Screen) markBlock(b int) {
	s.dirty[b/64] |= 1 << (b % 64)
}

func (s *Screen) markAll() {
	for i := range s.dirty {
		s.dirty[i] = ^uint64(0)
	}
}

func (s *Screen) clearDirty() {
	for i := range s.dirty {
		s.dirty[i] = 0
	}
}

func (s *Screen) dirtyCount() int {
	n := 0
	for b := 0; b < wire.ScreenBlockCount; b++ {
		if s.dirty[b/64]&(1<<(b%64)) != 0 {
			n++
		}
	}
	return n
}
