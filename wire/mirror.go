package wire

import "encoding/binary"

// Screen-mirror stream framing. The viewer sends the raw Keepalive sequence;
// the radio answers with mirror frames: AA 55, type byte, big-endian size,
// payload. It shares the wire with command frames but owns a disjoint header.

// Keepalive is the raw host-to-device sequence that keeps mirroring alive.
var Keepalive = []byte{0x55, 0xAA, 0x00, 0x00}

const (
	mirrorHeader0 = 0xAA
	mirrorHeader1 = 0x55

	mirrorHeaderLen = 5

	// MirrorFull carries a complete 1-bpp screen snapshot.
	MirrorFull = 0x01
	// MirrorDiff carries changed 8-byte blocks only.
	MirrorDiff = 0x02

	// ScreenWidth and ScreenHeight are the LCD dimensions.
	ScreenWidth  = 128
	ScreenHeight = 64

	// ScreenFrameBytes is the size of a full 1-bpp frame.
	ScreenFrameBytes = ScreenWidth * ScreenHeight / 8

	// ScreenBlockBytes is the diff granularity; a full frame holds
	// ScreenBlockCount blocks.
	ScreenBlockBytes = 8
	ScreenBlockCount = ScreenFrameBytes / ScreenBlockBytes

	// MirrorDiffChunkLen is one diff chunk: block index byte plus block
	// payload. A diff payload is a whole number of chunks; a chunk whose
	// block byte is >= MirrorDiffEnd terminates it (its padding bytes are
	// ignored).
	MirrorDiffChunkLen = 1 + ScreenBlockBytes
	MirrorDiffEnd      = 0x80

	// A diff touching every block plus the terminator chunk is the largest
	// legal mirror payload.
	mirrorMaxPayload = (ScreenBlockCount + 1) * MirrorDiffChunkLen
)

// StartsKeepalive reports whether buf begins with (a prefix of) Keepalive.
func StartsKeepalive(buf []byte) bool {
	n := len(buf)
	if n > len(Keepalive) {
		n = len(Keepalive)
	}
	for i := 0; i < n; i++ {
		if buf[i] != Keepalive[i] {
			return false
		}
	}
	return true
}

// StartsMirror reports whether buf begins with (a prefix of) a mirror frame
// header.
func StartsMirror(buf []byte) bool {
	if len(buf) == 0 {
		return true
	}
	if buf[0] != mirrorHeader0 {
		return false
	}
	return len(buf) < 2 || buf[1] == mirrorHeader1
}

// EncodeMirror wraps payload in a mirror frame of the given type.
func EncodeMirror(typ byte, payload []byte) []byte {
	frame := make([]byte, 0, mirrorHeaderLen+len(payload))
	frame = append(frame, mirrorHeader0, mirrorHeader1, typ)
	frame = binary.BigEndian.AppendUint16(frame, uint16(len(payload)))
	return append(frame, payload...)
}

// DecodeMirror attempts to parse a mirror frame at the start of buf.
func DecodeMirror(buf []byte) (typ byte, payload []byte, consumed int, res DecodeResult) {
	if len(buf) < 2 {
		if StartsMirror(buf) {
			return 0, nil, 0, DecodeNeedMore
		}
		return 0, nil, 1, DecodeBad
	}
	if buf[0] != mirrorHeader0 || buf[1] != mirrorHeader1 {
		return 0, nil, 1, DecodeBad
	}
	if len(buf) < mirrorHeaderLen {
		return 0, nil, 0, DecodeNeedMore
	}

	typ = buf[2]
	size := int(binary.BigEndian.Uint16(buf[3:5]))
	if size > mirrorMaxPayload {
		return 0, nil, 2, DecodeBad
	}
	total := mirrorHeaderLen + size
	if len(buf) < total {
		return 0, nil, 0, DecodeNeedMore
	}
	payload = append([]byte(nil), buf[mirrorHeaderLen:total]...)
	return typ, payload, total, DecodeOK
}
