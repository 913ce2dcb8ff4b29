// Package keys defines the radio keypad codes shared by the firmware and the
// host tools. The numeric values are fixed by the keyboard driver's scan table
// and appear verbatim on the wire.
package keys

import "strings"

// Code identifies one physical key on the radio keypad.
type Code uint8

const (
	Key0 Code = iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyMenu
	KeyUp
	KeyDown
	KeyExit
	KeyStar
	KeyF
	KeyPTT
	KeySide2
	KeySide1

	// KeyInvalid is the "no key pressed" sentinel. Codes at or above it are
	// not part of the keypad.
	KeyInvalid
)

func (c Code) String() string {
	switch c {
	case Key0, Key1, Key2, Key3, Key4, Key5, Key6, Key7, Key8, Key9:
		return string(rune('0' + c))
	case KeyMenu:
		return "MENU"
	case KeyUp:
		return "UP"
	case KeyDown:
		return "DOWN"
	case KeyExit:
		return "EXIT"
	case KeyStar:
		return "STAR"
	case KeyF:
		return "F"
	case KeyPTT:
		return "PTT"
	case KeySide2:
		return "SIDE2"
	case KeySide1:
		return "SIDE1"
	case KeyInvalid:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether c names a real keypad key (the sentinel is not one).
func (c Code) Valid() bool {
	return c < KeyInvalid
}

// Parse resolves a key name as accepted by the host tools. Names are
// case-insensitive; digits parse as themselves.
func Parse(name string) (Code, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if len(name) == 1 && name[0] >= '0' && name[0] <= '9' {
		return Code(name[0] - '0'), true
	}
	switch name {
	case "MENU":
		return KeyMenu, true
	case "UP":
		return KeyUp, true
	case "DOWN":
		return KeyDown, true
	case "EXIT":
		return KeyExit, true
	case "STAR":
		return KeyStar, true
	case "F":
		return KeyF, true
	case "PTT":
		return KeyPTT, true
	case "SIDE2":
		return KeySide2, true
	case "SIDE1":
		return KeySide1, true
	}
	return KeyInvalid, false
}
