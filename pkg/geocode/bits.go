package geocode

// Masks for the shift-and-mask rounds of the interleave, from
// https://graphics.stanford.edu/~seander/bithacks.html#InterleaveBMN
const (
	mask16 uint64 = 0x0000FFFF0000FFFF
	mask8  uint64 = 0x00FF00FF00FF00FF
	mask4  uint64 = 0x0F0F0F0F0F0F0F0F
	mask2  uint64 = 0x3333333333333333
	mask1  uint64 = 0x5555555555555555
	mask32 uint64 = 0x00000000FFFFFFFF
)

// spread moves bit i of x to bit 2i of the result.
func spread(x uint32) uint64 {
	v := uint64(x)
	v = (v | v<<16) & mask16
	v = (v | v<<8) & mask8
	v = (v | v<<4) & mask4
	v = (v | v<<2) & mask2
	v = (v | v<<1) & mask1
	return v
}

// squash is the inverse of spread: it gathers the even-position bits of x.
func squash(x uint64) uint32 {
	x &= mask1
	x = (x | x>>1) & mask2
	x = (x | x>>2) & mask4
	x = (x | x>>4) & mask8
	x = (x | x>>8) & mask16
	x = (x | x>>16) & mask32
	return uint32(x)
}

// Interleave64 merges the two axis indices into a Morton code. Longitude
// bits land on odd positions, latitude bits on even positions.
func Interleave64(lat, lng uint32) uint64 {
	return spread(lng)<<1 | spread(lat)
}

// Deinterleave64 splits a Morton code back into (lng, lat).
func Deinterleave64(code uint64) (lng, lat uint32) {
	return squash(code >> 1), squash(code)
}
