package common

import "crypto/rand"

// GenerateRandByteArray returns size bytes read from crypto/rand. Used for
// password salts.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	_, _ = rand.Read(b)
	return b
}

// WipeByteArray zeroes b. Front-ends call it on password buffers once the
// credentials have been checked. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
