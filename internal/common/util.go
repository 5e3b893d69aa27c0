package common

// WipeByteArray zeroes b in place so a plaintext password does not outlive
// its use. A nil slice is left alone.
func WipeByteArray(b []byte) {
	clear(b)
}
