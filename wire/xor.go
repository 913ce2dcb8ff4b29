package wire

// xorKey is the cycling obfuscation key applied to frame payloads. It is a
// fixed firmware constant, not a secret.
var xorKey = [8]byte{0x16, 0x6C, 0x14, 0xE6, 0x2E, 0x91, 0x0D, 0x40}

// Obfuscate XORs p in place with the cycling key. The transform is its own
// inverse.
func Obfuscate(p []byte) {
	for i := range p {
		p[i] ^= xorKey[i%len(xorKey)]
	}
}
