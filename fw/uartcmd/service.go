// Package uartcmd is the radio-side command endpoint on the shared UART. It
// consumes the raw RX byte stream, extracts keepalives and integrity-checked
// command frames, maintains the session timestamp, and bridges button event
// requests into the remote key queue.
//
// Feed runs in RX dispatch context: every call does a bounded amount of work
// and the only side effects are queue enqueues and reply writes. Key handling
// itself happens later, on the main loop, via the queue drain.
package uartcmd

import (
	"sync"

	"k5remote/fw/remotekey"
	"k5remote/hal"
	"k5remote/keys"
	"k5remote/wire"
)

// rxBufMax bounds buffered lookahead; a stream this far out of sync is
// garbage and restarts clean.
const rxBufMax = 4096

// Service is the UART command endpoint.
type Service struct {
	serial hal.Serial
	log    hal.Logger
	queue  *remotekey.Queue

	mu            sync.Mutex
	buf           []byte
	sessionLive   bool
	sessionTS     uint32
	seenKeepalive bool
}

// New creates the command endpoint. Replies are written to serial.
func New(serial hal.Serial, log hal.Logger, q *remotekey.Queue) *Service {
	return &Service{serial: serial, log: log, queue: q}
}

// Feed consumes RX bytes. Called from the serial read context; safe against
// the main loop's accessors.
func (s *Service) Feed(p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf = append(s.buf, p...)
	if len(s.buf) > rxBufMax {
		s.buf = s.buf[len(s.buf)-rxBufMax:]
	}

	for len(s.buf) > 0 {
		switch {
		case wire.StartsKeepalive(s.buf):
			if len(s.buf) < len(wire.Keepalive) {
				return
			}
			s.buf = s.buf[len(wire.Keepalive):]
			s.seenKeepalive = true

		case wire.StartsFrame(s.buf):
			payload, consumed, res := wire.DecodeFrame(s.buf)
			switch res {
			case wire.DecodeNeedMore:
				return
			case wire.DecodeBad:
				s.buf = s.buf[consumed:]
			case wire.DecodeOK:
				s.buf = s.buf[consumed:]
				s.dispatch(payload)
			}

		default:
			s.buf = s.buf[1:]
		}
	}
}

func (s *Service) dispatch(payload []byte) {
	id, ok := wire.PayloadID(payload)
	if !ok {
		return
	}
	body, ok := wire.PayloadBody(payload)
	if !ok {
		return
	}

	switch id {
	case wire.MsgSessionInit:
		req, ok := wire.ParseSessionInit(body)
		if !ok {
			return
		}
		s.sessionLive = true
		s.sessionTS = req.Timestamp
		s.reply(wire.SessionInfo{Timestamp: req.Timestamp}.Marshal())

	case wire.MsgButtonEvent:
		req, ok := wire.ParseButtonEvent(body)
		if !ok {
			return
		}
		ack := s.handleButtonEvent(req)
		s.reply(ack.Marshal())
	}
}

// handleButtonEvent is the protocol bridge: session freshness first, then the
// queue decides. All effects are confined to the queue.
func (s *Service) handleButtonEvent(req wire.ButtonEvent) wire.ButtonAck {
	ack := wire.ButtonAck{Seq: req.Seq}

	switch {
	case !remoteKeyEnabled:
		ack.Status = wire.AckInvalid
	case !s.sessionLive || req.Timestamp != s.sessionTS:
		ack.Status = wire.AckStale
	default:
		st := s.queue.Enqueue(keys.Code(req.Key), req.Action)
		ack.Status = ackStatus(st)
	}
	ack.Depth = s.queue.Depth()
	return ack
}

func ackStatus(st remotekey.Status) wire.AckStatus {
	switch st {
	case remotekey.Accepted:
		return wire.AckAccepted
	case remotekey.Busy:
		return wire.AckBusy
	default:
		return wire.AckInvalid
	}
}

func (s *Service) reply(payload []byte) {
	if _, err := s.serial.Write(wire.EncodeFrame(payload, false)); err != nil && s.log != nil {
		s.log.WriteLineString("uartcmd: reply write: " + err.Error())
	}
}

// TakeKeepalive reports whether a keepalive arrived since the last call and
// clears the flag. Polled by the main loop to time the mirror stream.
func (s *Service) TakeKeepalive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := s.seenKeepalive
	s.seenKeepalive = false
	return seen
}

// SessionLive reports whether a session has been established since boot.
func (s *Service) SessionLive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionLive
}
