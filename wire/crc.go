package wire

// CRC16 computes CRC-16/CCITT (poly 0x1021, init 0) over p. The radio
// validates it on inbound command frames; its own replies carry 0xFFFF
// instead, which receivers treat as "no CRC".
func CRC16(p []byte) uint16 {
	var crc uint16
	for _, b := range p {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// NoCRC is the placeholder value in device-originated frames.
const NoCRC uint16 = 0xFFFF
