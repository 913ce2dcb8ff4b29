//go:build !tinygo

package hal

import (
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"

	"k5remote/keys"
)

// hostKeypad maps the desktop keyboard onto the radio keypad. It mimics the
// hardware scanner: one currently-held key, first match wins. Inactive (and
// reporting no key) until the window runner starts, since ebiten input state
// is only meaningful inside a running game loop.
type hostKeypad struct {
	active atomic.Bool
}

func newHostKeypad() *hostKeypad { return &hostKeypad{} }

var keypadMap = []struct {
	k    ebiten.Key
	code keys.Code
}{
	{ebiten.KeyDigit0, keys.Key0},
	{ebiten.KeyDigit1, keys.Key1},
	{ebiten.KeyDigit2, keys.Key2},
	{ebiten.KeyDigit3, keys.Key3},
	{ebiten.KeyDigit4, keys.Key4},
	{ebiten.KeyDigit5, keys.Key5},
	{ebiten.KeyDigit6, keys.Key6},
	{ebiten.KeyDigit7, keys.Key7},
	{ebiten.KeyDigit8, keys.Key8},
	{ebiten.KeyDigit9, keys.Key9},
	{ebiten.KeyM, keys.KeyMenu},
	{ebiten.KeyArrowUp, keys.KeyUp},
	{ebiten.KeyArrowDown, keys.KeyDown},
	{ebiten.KeyEscape, keys.KeyExit},
	{ebiten.KeyKPMultiply, keys.KeyStar},
	{ebiten.KeyF, keys.KeyF},
	{ebiten.KeySpace, keys.KeyPTT},
	{ebiten.KeyBracketRight, keys.KeySide2},
	{ebiten.KeyBracketLeft, keys.KeySide1},
}

func (k *hostKeypad) Scan() uint8 {
	if !k.active.Load() {
		return uint8(keys.KeyInvalid)
	}
	for _, m := range keypadMap {
		if ebiten.IsKeyPressed(m.k) {
			return uint8(m.code)
		}
	}
	return uint8(keys.KeyInvalid)
}
