//go:build !tinygo

package hal

import (
	"fmt"
	"os"
	"sync"
)

// Options configures the host HAL.
type Options struct {
	// SerialPath is a pty or character device to use as the UART. Empty
	// means stdin/stdout.
	SerialPath string
}

type hostHAL struct {
	logger *hostLogger
	serial *hostSerial
	kbd    *hostKeypad
	t      *hostTime
	disp   *hostDisplay
}

// New returns a host HAL implementation.
func New(opts Options) (HAL, error) {
	serial := &hostSerial{r: os.Stdin, w: os.Stdout}
	if opts.SerialPath != "" {
		f, err := os.OpenFile(opts.SerialPath, os.O_RDWR, 0)
		if err != nil {
			return nil, fmt.Errorf("open serial %q: %w", opts.SerialPath, err)
		}
		serial.r = f
		serial.w = f
	}
	return &hostHAL{
		logger: &hostLogger{w: os.Stderr},
		serial: serial,
		kbd:    newHostKeypad(),
		t:      newHostTime(),
		disp:   &hostDisplay{},
	}, nil
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) Serial() Serial   { return h.serial }
func (h *hostHAL) Keypad() Keypad   { return h.kbd }
func (h *hostHAL) Display() Display { return h.disp }
func (h *hostHAL) Time() Time       { return h.t }

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

// hostDisplay keeps the last presented LCD frame for the window renderer.
type hostDisplay struct {
	mu    sync.Mutex
	frame []byte
}

func (d *hostDisplay) Present(frame []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.frame) != len(frame) {
		d.frame = make([]byte, len(frame))
	}
	copy(d.frame, frame)
}

func (d *hostDisplay) snapshot(dst []byte) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cap(dst) < len(d.frame) {
		dst = make([]byte, len(d.frame))
	}
	dst = dst[:len(d.frame)]
	copy(dst, d.frame)
	return dst
}
