// Package link owns the host end of the shared half-duplex serial wire. One
// Arbiter is the only reader and the only writer: it demultiplexes inbound
// command frames and mirror frames, paces the stream keepalive, and
// rate-limits outbound command frames while the mirror stream is active so
// button traffic never starves the video path.
package link

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"k5remote/internal/clock"
	"k5remote/wire"
)

// Config tunes link sharing. Zero values select the defaults.
type Config struct {
	// CommandSpacing is the minimum gap between command frames while the
	// mirror stream is active (default 50ms, i.e. at most 20 sends/s).
	CommandSpacing time.Duration

	// KeepaliveInterval paces the mirror keepalive (default 120ms).
	KeepaliveInterval time.Duration
}

const (
	defaultCommandSpacing    = 50 * time.Millisecond
	defaultKeepaliveInterval = 120 * time.Millisecond
)

// MirrorFrame is one decoded screen-mirror frame.
type MirrorFrame struct {
	Type    byte
	Payload []byte
}

// Arbiter serializes access to the wire. Opening two arbiters on one port is
// a configuration error this type does not try to detect or resolve.
type Arbiter struct {
	rw  io.ReadWriter
	clk clock.Clock
	cfg Config
	log zerolog.Logger

	wmu     sync.Mutex // one transmitted unit at a time
	lastCmd time.Time

	smu       sync.Mutex
	streaming bool
	stopKA    chan struct{}

	payloads chan []byte
	mirror   chan MirrorFrame
}

// New starts the read pump and returns the arbiter.
func New(rw io.ReadWriter, clk clock.Clock, log zerolog.Logger, cfg Config) *Arbiter {
	if cfg.CommandSpacing <= 0 {
		cfg.CommandSpacing = defaultCommandSpacing
	}
	if cfg.KeepaliveInterval <= 0 {
		cfg.KeepaliveInterval = defaultKeepaliveInterval
	}
	a := &Arbiter{
		rw:       rw,
		clk:      clk,
		cfg:      cfg,
		log:      log,
		payloads: make(chan []byte, 16),
		mirror:   make(chan MirrorFrame, 8),
	}
	go a.readLoop()
	return a
}

// Payloads delivers decoded command payloads (acks, session replies).
func (a *Arbiter) Payloads() <-chan []byte { return a.payloads }

// Mirror delivers decoded mirror frames. Slow consumers lose frames rather
// than stalling the read pump.
func (a *Arbiter) Mirror() <-chan MirrorFrame { return a.mirror }

// SendCommand frames payload and writes it as one unit. While the mirror
// stream is active the call may sleep to honor the command rate cap.
func (a *Arbiter) SendCommand(payload []byte) error {
	a.wmu.Lock()
	defer a.wmu.Unlock()

	if a.Streaming() {
		if wait := a.cfg.CommandSpacing - a.clk.Now().Sub(a.lastCmd); wait > 0 {
			a.clk.Sleep(wait)
		}
	}
	a.lastCmd = a.clk.Now()

	frame := wire.EncodeFrame(payload, true)
	a.log.Debug().Hex("tx", frame).Msg("command frame")
	if _, err := a.rw.Write(frame); err != nil {
		return fmt.Errorf("link: write command: %w", err)
	}
	return nil
}

// StartStream begins the keepalive cadence that keeps the radio mirroring.
// The returned stop function is idempotent.
func (a *Arbiter) StartStream() (stop func()) {
	a.smu.Lock()
	defer a.smu.Unlock()
	if a.streaming {
		return func() {}
	}
	a.streaming = true
	a.stopKA = make(chan struct{})
	done := a.stopKA
	go a.keepaliveLoop(done)

	var once sync.Once
	return func() {
		once.Do(func() {
			a.smu.Lock()
			defer a.smu.Unlock()
			a.streaming = false
			close(done)
		})
	}
}

// Streaming reports whether the mirror keepalive is running.
func (a *Arbiter) Streaming() bool {
	a.smu.Lock()
	defer a.smu.Unlock()
	return a.streaming
}

func (a *Arbiter) keepaliveLoop(done <-chan struct{}) {
	for {
		a.writeKeepalive()
		select {
		case <-done:
			return
		case <-a.clk.After(a.cfg.KeepaliveInterval):
		}
	}
}

func (a *Arbiter) writeKeepalive() {
	a.wmu.Lock()
	defer a.wmu.Unlock()
	if _, err := a.rw.Write(wire.Keepalive); err != nil {
		a.log.Debug().Err(err).Msg("keepalive write")
	}
}

// readLoop is the single reader: it splits the inbound byte stream into
// command frames and mirror frames.
func (a *Arbiter) readLoop() {
	var acc []byte
	buf := make([]byte, 512)
	for {
		n, err := a.rw.Read(buf)
		if n > 0 {
			a.log.Trace().Hex("rx", buf[:n]).Msg("bytes")
			acc = a.demux(append(acc, buf[:n]...))
		}
		if err != nil {
			if err != io.EOF {
				a.log.Debug().Err(err).Msg("read loop ended")
			}
			close(a.payloads)
			close(a.mirror)
			return
		}
	}
}

func (a *Arbiter) demux(acc []byte) []byte {
	for len(acc) > 0 {
		switch {
		case wire.StartsFrame(acc):
			payload, consumed, res := wire.DecodeFrame(acc)
			if res == wire.DecodeNeedMore {
				return acc
			}
			acc = acc[consumed:]
			if res == wire.DecodeOK {
				select {
				case a.payloads <- payload:
				default:
					a.log.Debug().Msg("payload channel full, frame dropped")
				}
			}

		case wire.StartsMirror(acc):
			typ, payload, consumed, res := wire.DecodeMirror(acc)
			if res == wire.DecodeNeedMore {
				return acc
			}
			acc = acc[consumed:]
			if res == wire.DecodeOK {
				select {
				case a.mirror <- MirrorFrame{Type: typ, Payload: payload}:
				default:
				}
			}

		default:
			acc = acc[1:]
		}
	}
	return acc
}
