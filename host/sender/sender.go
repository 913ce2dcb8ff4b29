// Package sender implements the host controller for remote button events: a
// synchronous send/await-ack round trip with per-attempt sequence numbers,
// bounded retry on timeout, and verbatim surfacing of every non-accepted
// firmware status. At most one request is outstanding per controller, which
// is what keeps sequence matching trivial.
package sender

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"k5remote/internal/clock"
	"k5remote/keys"
	"k5remote/wire"
)

// Link is the transport surface the controller needs; *link.Arbiter
// implements it.
type Link interface {
	SendCommand(payload []byte) error
	Payloads() <-chan []byte
	Streaming() bool
}

// Result is the outcome of one SendButtonEvent call.
type Result uint8

const (
	Accepted Result = iota
	Busy
	Invalid
	Stale
	Timeout
)

func (r Result) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case Busy:
		return "busy"
	case Invalid:
		return "invalid"
	case Stale:
		return "stale"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Outcome bundles the result with ack telemetry.
type Outcome struct {
	Result Result

	// QueueDepth is the firmware queue depth echoed in the ack; zero when
	// the call timed out.
	QueueDepth uint8

	// Attempts is how many request transmissions were made.
	Attempts int
}

// Config tunes the controller. Zero values select the defaults.
type Config struct {
	// AckTimeout bounds each attempt's wait for a matching ack.
	AckTimeout time.Duration

	// StreamAckTimeout replaces AckTimeout while the mirror stream is
	// active, since link contention delays reads.
	StreamAckTimeout time.Duration

	// MaxAttempts bounds transmissions per call (initial send + retries).
	MaxAttempts int
}

const (
	defaultAckTimeout       = 400 * time.Millisecond
	defaultStreamAckTimeout = 900 * time.Millisecond
	defaultMaxAttempts      = 3
)

// Controller is the host-side button event sender. Not safe for concurrent
// calls; one request is outstanding at a time by design.
type Controller struct {
	link Link
	clk  clock.Clock
	cfg  Config
	log  zerolog.Logger

	seq         uint16
	sessionTS   uint32
	sessionLive bool
}

// New returns a controller over an established link.
func New(l Link, clk clock.Clock, log zerolog.Logger, cfg Config) *Controller {
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = defaultAckTimeout
	}
	if cfg.StreamAckTimeout <= 0 {
		cfg.StreamAckTimeout = defaultStreamAckTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	return &Controller{link: l, clk: clk, cfg: cfg, log: log}
}

// nextSeq allocates a fresh sequence number, monotonic modulo 65536. Every
// attempt gets its own, so a late ack for a timed-out attempt can never be
// mistaken for the current one.
func (c *Controller) nextSeq() uint16 {
	c.seq++
	return c.seq
}

func (c *Controller) ackTimeout() time.Duration {
	if c.link.Streaming() {
		return c.cfg.StreamAckTimeout
	}
	return c.cfg.AckTimeout
}

// StartSession establishes the session timestamp the firmware will demand on
// every button event. It must be called before SendButtonEvent.
func (c *Controller) StartSession() error {
	ts := uint32(c.clk.Now().UnixMilli())

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := c.link.SendCommand(wire.SessionInit{Timestamp: ts}.Marshal()); err != nil {
			return err
		}
		if c.awaitSessionInfo(ts) {
			c.sessionTS = ts
			c.sessionLive = true
			return nil
		}
		c.log.Debug().Int("attempt", attempt).Msg("session init timed out")
	}
	return fmt.Errorf("sender: no session reply after %d attempts", c.cfg.MaxAttempts)
}

func (c *Controller) awaitSessionInfo(ts uint32) bool {
	deadline := c.clk.After(c.ackTimeout())
	for {
		select {
		case payload, ok := <-c.link.Payloads():
			if !ok {
				return false
			}
			id, _ := wire.PayloadID(payload)
			if id != wire.MsgSessionInfo {
				continue
			}
			body, _ := wire.PayloadBody(payload)
			info, ok := wire.ParseSessionInfo(body)
			if ok && info.Timestamp == ts {
				return true
			}
		case <-deadline:
			return false
		}
	}
}

// SendButtonEvent delivers one key event and reports its outcome. Timeouts
// are retried up to the configured bound with a fresh sequence number per
// attempt; every other status is returned verbatim on the first ack, since
// blind retries of busy/invalid/stale would amplify queue pressure or mask a
// session problem.
func (c *Controller) SendButtonEvent(key keys.Code, action wire.Action) (Outcome, error) {
	if !c.sessionLive {
		return Outcome{Result: Stale}, fmt.Errorf("sender: no session established")
	}

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		seq := c.nextSeq()
		req := wire.ButtonEvent{
			Timestamp: c.sessionTS,
			Seq:       seq,
			Key:       uint8(key),
			Action:    action,
		}
		if err := c.link.SendCommand(req.Marshal()); err != nil {
			return Outcome{Result: Timeout, Attempts: attempt}, err
		}

		ack, ok := c.awaitAck(seq)
		if !ok {
			c.log.Debug().Int("attempt", attempt).Uint16("seq", seq).
				Stringer("key", key).Msg("ack timed out")
			continue
		}

		out := Outcome{QueueDepth: ack.Depth, Attempts: attempt}
		switch ack.Status {
		case wire.AckAccepted:
			out.Result = Accepted
		case wire.AckBusy:
			out.Result = Busy
		case wire.AckInvalid:
			out.Result = Invalid
		case wire.AckStale:
			out.Result = Stale
		default:
			out.Result = Invalid
		}
		return out, nil
	}
	return Outcome{Result: Timeout, Attempts: c.cfg.MaxAttempts}, nil
}

// awaitAck waits for the ack matching seq; acks for other sequences (late
// arrivals from abandoned attempts) are discarded.
func (c *Controller) awaitAck(seq uint16) (wire.ButtonAck, bool) {
	deadline := c.clk.After(c.ackTimeout())
	for {
		select {
		case payload, ok := <-c.link.Payloads():
			if !ok {
				return wire.ButtonAck{}, false
			}
			id, _ := wire.PayloadID(payload)
			if id != wire.MsgButtonAck {
				continue
			}
			body, _ := wire.PayloadBody(payload)
			ack, ok := wire.ParseButtonAck(body)
			if !ok || ack.Seq != seq {
				continue
			}
			return ack, true
		case <-deadline:
			return wire.ButtonAck{}, false
		}
	}
}
