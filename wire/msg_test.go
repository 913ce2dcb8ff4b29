package wire

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestButtonEventLayout(t *testing.T) {
	// Field offsets are part of the wire contract with the firmware.
	p := ButtonEvent{
		Timestamp: 0x11223344,
		Seq:       0x5566,
		Key:       0x0A,
		Action:    ActionRelease,
		HoldHint:  0x7788,
	}.Marshal()

	want := []byte{
		0x10, 0x06, // message id
		0x0A, 0x00, // body length
		0x44, 0x33, 0x22, 0x11, // timestamp, little endian
		0x66, 0x55, // seq
		0x0A,       // key
		0x01,       // release
		0x88, 0x77, // hold hint
	}
	if !bytes.Equal(p, want) {
		t.Fatalf("payload = % X\nwant      % X", p, want)
	}
}

func TestParseButtonEventRoundTrip(t *testing.T) {
	in := ButtonEvent{Timestamp: 42, Seq: 9, Key: 17, Action: ActionPress, HoldHint: 30}
	body, ok := PayloadBody(in.Marshal())
	if !ok {
		t.Fatal("PayloadBody failed on marshaled event")
	}
	out, ok := ParseButtonEvent(body)
	if !ok {
		t.Fatal("ParseButtonEvent failed")
	}
	if out != in {
		t.Fatalf("round trip: %+v != %+v", out, in)
	}
}

func TestPayloadBodyChecksDeclaredLength(t *testing.T) {
	p := ButtonAck{Seq: 1}.Marshal()
	// Claim a longer body than is present.
	binary.LittleEndian.PutUint16(p[2:4], 200)
	if _, ok := PayloadBody(p); ok {
		t.Fatal("PayloadBody accepted a truncated body")
	}
}

func TestParseRejectsShortBodies(t *testing.T) {
	if _, ok := ParseButtonEvent(make([]byte, 9)); ok {
		t.Fatal("ParseButtonEvent accepted 9 bytes")
	}
	if _, ok := ParseButtonAck(make([]byte, 3)); ok {
		t.Fatal("ParseButtonAck accepted 3 bytes")
	}
	if _, ok := ParseSessionInfo(nil); ok {
		t.Fatal("ParseSessionInfo accepted nil")
	}
}

func TestPayloadIDOnShortInput(t *testing.T) {
	if _, ok := PayloadID([]byte{0x10}); ok {
		t.Fatal("PayloadID accepted one byte")
	}
}
