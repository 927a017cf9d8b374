package watermark

// TextToBits expands s into a bit sequence, most significant bit of each byte
// first.
func TextToBits(s string) []int {
	bits := make([]int, 0, len(s)*8)
	for _, b := range []byte(s) {
		for i := 7; i >= 0; i-- {
			bits = append(bits, int(b>>uint(i))&1)
		}
	}
	return bits
}

// BitsToText packs bits (MSB first) back into bytes. A trailing group shorter
// than 8 bits is dropped.
func BitsToText(bits []int) string {
	n := len(bits) / 8
	out := make([]byte, n)
	for i := 0; i < n*8; i++ {
		if bits[i] != 0 {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return string(out)
}
