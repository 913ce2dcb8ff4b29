// Package wire implements the serial framing shared by the radio firmware and
// the host tools: obfuscated CRC-checked command frames, the message payloads
// they carry, and the screen-mirror stream framing.
//
// The two framings (command frames and mirror frames) plus the raw stream
// keepalive share one half-duplex wire, so decoding is head-anchored: each
// Decode* helper inspects the start of the buffer and the caller owns the
// scan-ahead policy. That keeps per-byte work O(1) on the firmware side.
package wire

import "encoding/binary"

const (
	frameHeader0 = 0xAB
	frameHeader1 = 0xCD
	frameFooter0 = 0xDC
	frameFooter1 = 0xBA

	frameOverhead = 4 + 2 + 2 // header+len, crc, footer

	// MaxPayload bounds a single command payload. Larger inbound length
	// fields are treated as garbage and skipped past.
	MaxPayload = 2048
)

// DecodeResult reports how a head-anchored decode attempt ended.
type DecodeResult uint8

const (
	// DecodeNeedMore means the buffer may hold a valid frame once more
	// bytes arrive; nothing was consumed.
	DecodeNeedMore DecodeResult = iota
	// DecodeOK means a frame was extracted; skip the consumed bytes.
	DecodeOK
	// DecodeBad means the buffer head cannot start a valid frame; skip the
	// consumed bytes and rescan.
	DecodeBad
)

// EncodeFrame wraps payload in a command frame. withCRC selects the
// host-to-device form (real CRC); device replies pass false and carry NoCRC.
// The payload argument is not modified.
func EncodeFrame(payload []byte, withCRC bool) []byte {
	crc := NoCRC
	if withCRC {
		crc = CRC16(payload)
	}

	frame := make([]byte, 0, len(payload)+frameOverhead)
	frame = append(frame, frameHeader0, frameHeader1)
	frame = binary.LittleEndian.AppendUint16(frame, uint16(len(payload)))
	body := append(append([]byte(nil), payload...), byte(crc), byte(crc>>8))
	Obfuscate(body)
	frame = append(frame, body...)
	frame = append(frame, frameFooter0, frameFooter1)
	return frame
}

// StartsFrame reports whether buf begins with a command frame header. With
// fewer than two buffered bytes it reports true if the prefix still matches,
// so callers wait for more input instead of discarding a split header.
func StartsFrame(buf []byte) bool {
	if len(buf) == 0 {
		return true
	}
	if buf[0] != frameHeader0 {
		return false
	}
	return len(buf) < 2 || buf[1] == frameHeader1
}

// DecodeFrame attempts to parse a command frame at the start of buf and
// returns the de-obfuscated payload. Frames whose CRC field is NoCRC skip the
// integrity check (device-originated frames); anything else must match.
func DecodeFrame(buf []byte) (payload []byte, consumed int, res DecodeResult) {
	if len(buf) < 2 {
		if StartsFrame(buf) {
			return nil, 0, DecodeNeedMore
		}
		return nil, 1, DecodeBad
	}
	if buf[0] != frameHeader0 || buf[1] != frameHeader1 {
		return nil, 1, DecodeBad
	}
	if len(buf) < 4 {
		return nil, 0, DecodeNeedMore
	}

	plen := int(binary.LittleEndian.Uint16(buf[2:4]))
	if plen > MaxPayload {
		return nil, 2, DecodeBad
	}
	total := plen + frameOverhead
	if len(buf) < total {
		return nil, 0, DecodeNeedMore
	}

	if buf[total-2] != frameFooter0 || buf[total-1] != frameFooter1 {
		return nil, 2, DecodeBad
	}

	body := append([]byte(nil), buf[4:total-2]...)
	Obfuscate(body)
	payload = body[:plen]
	crc := binary.LittleEndian.Uint16(body[plen:])
	if crc != NoCRC && crc != CRC16(payload) {
		return nil, total, DecodeBad
	}
	return payload, total, DecodeOK
}
