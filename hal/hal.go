// Package hal is the only contact point between the radio firmware code and
// the outside world. The host backend (build tag !tinygo) runs the firmware
// against a desktop window or headless, with the UART mapped to a pty or
// stdio.
package hal

import "errors"

var ErrNotImplemented = errors.New("not implemented")

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// Serial is the half-duplex UART shared by the command protocol and the
// screen mirror. Implementations serialize writes so one transmitted unit
// never interleaves with another.
type Serial interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// Keypad reports the physical key currently held down as a keys.Code value,
// or the sentinel when the scanner sees nothing. Polled once per input tick.
type Keypad interface {
	Scan() uint8
}

// Display presents a full 1-bpp LCD frame (wire.ScreenFrameBytes bytes,
// row-major, LSB-first within each byte).
type Display interface {
	Present(frame []byte)
}

// Time provides a base tick stream. Ticks are 1ms on the host backend.
type Time interface {
	Ticks() <-chan uint64
}

// HAL bundles the device-facing interfaces.
type HAL interface {
	Logger() Logger
	Serial() Serial
	Keypad() Keypad
	Display() Display
	Time() Time
}
