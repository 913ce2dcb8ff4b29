package app

import (
	"sync"
	"testing"
	"time"

	"k5remote/hal"
	"k5remote/keys"
	"k5remote/wire"
)

type fakeSerial struct {
	rx chan []byte

	mu     sync.Mutex
	writes [][]byte
}

func (s *fakeSerial) Read(p []byte) (int, error) {
	return copy(p, <-s.rx), nil
}

func (s *fakeSerial) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (s *fakeSerial) mirrorFrames() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	var types []byte
	for _, w := range s.writes {
		if wire.StartsMirror(w) {
			types = append(types, w[2])
		}
	}
	return types
}

type fakeKeypad struct{ code keys.Code }

func (k *fakeKeypad) Scan() uint8 { return uint8(k.code) }

type fakeDisplay struct {
	mu       sync.Mutex
	presents int
}

func (d *fakeDisplay) Present(frame []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.presents++
}

func (d *fakeDisplay) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.presents
}

// fakeTime hands the app an exact number of elapsed base ticks.
type fakeTime struct {
	ch  chan uint64
	seq uint64
}

func newFakeTime() *fakeTime { return &fakeTime{ch: make(chan uint64, 4096)} }

func (t *fakeTime) Ticks() <-chan uint64 { return t.ch }

func (t *fakeTime) push(n int) {
	for i := 0; i < n; i++ {
		t.seq++
		t.ch <- t.seq
	}
}

type nopLogger struct{}

func (nopLogger) WriteLineString(string) {}
func (nopLogger) WriteLineBytes([]byte)  {}

type fakeHAL struct {
	serial *fakeSerial
	keypad *fakeKeypad
	disp   *fakeDisplay
	time   *fakeTime
}

func (h *fakeHAL) Logger() hal.Logger   { return nopLogger{} }
func (h *fakeHAL) Serial() hal.Serial   { return h.serial }
func (h *fakeHAL) Keypad() hal.Keypad   { return h.keypad }
func (h *fakeHAL) Display() hal.Display { return h.disp }
func (h *fakeHAL) Time() hal.Time       { return h.time }

func newTestApp() (*App, *fakeHAL) {
	h := &fakeHAL{
		serial: &fakeSerial{rx: make(chan []byte, 8)},
		keypad: &fakeKeypad{code: keys.KeyInvalid},
		disp:   &fakeDisplay{},
		time:   newFakeTime(),
	}
	return New(h, Config{}), h
}

// tickN delivers n base ticks and steps the app once to drain them.
func tickN(t *testing.T, a *App, h *fakeHAL, n int) {
	t.Helper()
	h.time.push(n)
	if err := a.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
}

// pump advances one tick at a time until cond holds or the tick allowance
// runs out, sleeping briefly so the RX goroutine can deliver.
func pump(t *testing.T, a *App, h *fakeHAL, ticks int, cond func() bool) {
	t.Helper()
	for i := 0; i < ticks; i++ {
		if cond() {
			return
		}
		tickN(t, a, h, 1)
		time.Sleep(100 * time.Microsecond)
	}
	if !cond() {
		t.Fatalf("condition not reached within %d ticks", ticks)
	}
}

func TestStepWithoutElapsedTicksIsIdle(t *testing.T) {
	// Runner wakeups do not advance firmware time; only delivered base
	// ticks do.
	a, h := newTestApp()
	for i := 0; i < 100; i++ {
		if err := a.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if h.disp.count() != 0 {
		t.Fatalf("presents = %d, want 0 with no elapsed ticks", h.disp.count())
	}

	// One wakeup draining many buffered ticks catches the firmware up.
	tickN(t, a, h, inputDividerTicks)
	if h.disp.count() != 1 {
		t.Fatalf("presents = %d, want 1 after %d ticks", h.disp.count(), inputDividerTicks)
	}
}

func TestKeypadChangeRendersOnce(t *testing.T) {
	a, h := newTestApp()

	pump(t, a, h, 100, func() bool { return h.disp.count() >= 1 })
	base := h.disp.count()

	// Unchanged state must not redraw.
	tickN(t, a, h, 50)
	if h.disp.count() != base {
		t.Fatalf("presents = %d, want %d for unchanged status", h.disp.count(), base)
	}

	h.keypad.code = keys.Key7
	pump(t, a, h, 100, func() bool { return h.disp.count() == base+1 })
}

func TestMirrorAttachEmitsFullThenDiffs(t *testing.T) {
	a, h := newTestApp()

	h.serial.rx <- wire.Keepalive
	pump(t, a, h, 2000, func() bool { return len(h.serial.mirrorFrames()) >= 1 })

	frames := h.serial.mirrorFrames()
	if frames[0] != wire.MirrorFull {
		t.Fatalf("first mirror frame type = %#x, want full", frames[0])
	}

	// A keypad change while mirroring travels as a diff.
	h.keypad.code = keys.KeyMenu
	pump(t, a, h, 500, func() bool { return len(h.serial.mirrorFrames()) >= 2 })
	frames = h.serial.mirrorFrames()
	if frames[1] != wire.MirrorDiff {
		t.Fatalf("second mirror frame type = %#x, want diff", frames[1])
	}
}

func TestMirrorStopsAfterKeepaliveTimeout(t *testing.T) {
	a, h := newTestApp()

	h.serial.rx <- wire.Keepalive
	pump(t, a, h, 2000, func() bool { return len(h.serial.mirrorFrames()) >= 1 })

	// Let the keepalive window lapse.
	tickN(t, a, h, mirrorTimeoutTicks+10)
	quiet := len(h.serial.mirrorFrames())

	// Screen changes while detached must not reach the wire.
	h.keypad.code = keys.Key1
	tickN(t, a, h, 100)
	if got := len(h.serial.mirrorFrames()); got != quiet {
		t.Fatalf("mirror frames after timeout: %d, want %d", got, quiet)
	}

	// A fresh keepalive reattaches with a full frame.
	h.serial.rx <- wire.Keepalive
	pump(t, a, h, 2000, func() bool { return len(h.serial.mirrorFrames()) > quiet })
	frames := h.serial.mirrorFrames()
	if frames[quiet] != wire.MirrorFull {
		t.Fatalf("reattach frame type = %#x, want full", frames[quiet])
	}
}
