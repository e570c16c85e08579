package dw1000

// Timestamp is a raw 40-bit device timestamp as read from the TX, RX or
// system time registers: five bytes, least significant first. One tick is
// 1/(128*499.2e6) s, about 15.65 ps.
type Timestamp [5]byte

// Uint64 reconstructs the timestamp as a 64-bit value. The top 24 bits are
// always zero and carry no meaning.
func (t Timestamp) Uint64() uint64 {
	var ts uint64
	for i := len(t) - 1; i >= 0; i-- {
		ts <<= 8
		ts |= uint64(t[i])
	}
	return ts
}
