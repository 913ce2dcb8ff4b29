package wire

import (
	"encoding/binary"
	"fmt"
)

// MsgID identifies the command carried in a frame payload.
type MsgID uint16

const (
	MsgSessionInit MsgID = 0x0514
	MsgSessionInfo MsgID = 0x0515
	MsgButtonEvent MsgID = 0x0610
	MsgButtonAck   MsgID = 0x0611
)

func (id MsgID) String() string {
	switch id {
	case MsgSessionInit:
		return "session_init"
	case MsgSessionInfo:
		return "session_info"
	case MsgButtonEvent:
		return "button_event"
	case MsgButtonAck:
		return "button_ack"
	default:
		return fmt.Sprintf("0x%04X", uint16(id))
	}
}

// Action is a button event direction.
type Action uint8

const (
	ActionPress   Action = 0
	ActionRelease Action = 1
)

func (a Action) String() string {
	switch a {
	case ActionPress:
		return "press"
	case ActionRelease:
		return "release"
	default:
		return "unknown"
	}
}

// AckStatus is the outcome the firmware reports for a button event.
type AckStatus uint8

const (
	AckAccepted AckStatus = 0
	AckBusy     AckStatus = 1
	AckInvalid  AckStatus = 2
	AckStale    AckStatus = 3
)

func (s AckStatus) String() string {
	switch s {
	case AckAccepted:
		return "accepted"
	case AckBusy:
		return "busy"
	case AckInvalid:
		return "invalid"
	case AckStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Payload layout: message id (LE16), body length (LE16), body.
const msgHeaderLen = 4

// PayloadID returns the message id of a decoded frame payload.
func PayloadID(payload []byte) (MsgID, bool) {
	if len(payload) < msgHeaderLen {
		return 0, false
	}
	return MsgID(binary.LittleEndian.Uint16(payload)), true
}

// PayloadBody returns the body of a decoded frame payload, verifying the
// declared body length against the bytes actually present.
func PayloadBody(payload []byte) ([]byte, bool) {
	if len(payload) < msgHeaderLen {
		return nil, false
	}
	n := int(binary.LittleEndian.Uint16(payload[2:4]))
	if len(payload) < msgHeaderLen+n {
		return nil, false
	}
	return payload[msgHeaderLen : msgHeaderLen+n], true
}

func newPayload(id MsgID, bodyLen int) []byte {
	p := make([]byte, 0, msgHeaderLen+bodyLen)
	p = binary.LittleEndian.AppendUint16(p, uint16(id))
	p = binary.LittleEndian.AppendUint16(p, uint16(bodyLen))
	return p
}

// SessionInit establishes the session timestamp on the radio.
type SessionInit struct {
	Timestamp uint32
}

func (m SessionInit) Marshal() []byte {
	p := newPayload(MsgSessionInit, 4)
	return binary.LittleEndian.AppendUint32(p, m.Timestamp)
}

func ParseSessionInit(body []byte) (SessionInit, bool) {
	if len(body) < 4 {
		return SessionInit{}, false
	}
	return SessionInit{Timestamp: binary.LittleEndian.Uint32(body)}, true
}

// SessionInfo is the radio's reply to SessionInit, echoing the timestamp.
type SessionInfo struct {
	Timestamp uint32
}

func (m SessionInfo) Marshal() []byte {
	p := newPayload(MsgSessionInfo, 4)
	return binary.LittleEndian.AppendUint32(p, m.Timestamp)
}

func ParseSessionInfo(body []byte) (SessionInfo, bool) {
	if len(body) < 4 {
		return SessionInfo{}, false
	}
	return SessionInfo{Timestamp: binary.LittleEndian.Uint32(body)}, true
}

// ButtonEvent requests injection of one key press or release.
//
// HoldHint is an advisory hold duration in milliseconds; the firmware applies
// its own minimum hold and does not enforce the hint.
type ButtonEvent struct {
	Timestamp uint32
	Seq       uint16
	Key       uint8
	Action    Action
	HoldHint  uint16
}

func (m ButtonEvent) Marshal() []byte {
	p := newPayload(MsgButtonEvent, 10)
	p = binary.LittleEndian.AppendUint32(p, m.Timestamp)
	p = binary.LittleEndian.AppendUint16(p, m.Seq)
	p = append(p, m.Key, byte(m.Action))
	return binary.LittleEndian.AppendUint16(p, m.HoldHint)
}

func ParseButtonEvent(body []byte) (ButtonEvent, bool) {
	if len(body) < 10 {
		return ButtonEvent{}, false
	}
	return ButtonEvent{
		Timestamp: binary.LittleEndian.Uint32(body[0:4]),
		Seq:       binary.LittleEndian.Uint16(body[4:6]),
		Key:       body[6],
		Action:    Action(body[7]),
		HoldHint:  binary.LittleEndian.Uint16(body[8:10]),
	}, true
}

// ButtonAck reports the outcome of a ButtonEvent, echoing its sequence
// number. Depth is the remote key queue depth after the attempt.
type ButtonAck struct {
	Seq    uint16
	Status AckStatus
	Depth  uint8
}

func (m ButtonAck) Marshal() []byte {
	p := newPayload(MsgButtonAck, 4)
	p = binary.LittleEndian.AppendUint16(p, m.Seq)
	return append(p, byte(m.Status), m.Depth)
}

func ParseButtonAck(body []byte) (ButtonAck, bool) {
	if len(body) < 4 {
		return ButtonAck{}, false
	}
	return ButtonAck{
		Seq:    binary.LittleEndian.Uint16(body[0:2]),
		Status: AckStatus(body[2]),
		Depth:  body[3],
	}, true
}
