package packet

// Cipher is an already-keyed stream cipher. Each packet consumes one key for
// its opcode byte, in send order.
type Cipher interface {
	NextKey() uint32
}

// SealOpcode obfuscates the opcode byte of a complete packet in place.
// A nil cipher leaves the packet untouched.
func SealOpcode(pkt []byte, c Cipher) {
	if c == nil || len(pkt) == 0 {
		return
	}
	pkt[0] = byte(uint32(pkt[0]) + c.NextKey())
}

// OpenOpcode reverses SealOpcode for an inbound opcode byte.
func OpenOpcode(b byte, c Cipher) int {
	if c == nil {
		return int(b)
	}
	return int(byte(uint32(b) - c.NextKey()))
}
