package voucher

import (
	"crypto/rand"
	"math/big"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomString draws n characters uniformly from the 62-character
// alphanumeric alphabet. Collisions with existing vouchers are not checked
// here; the router rejects duplicate names at creation.
func RandomString(n int) string {
	alphabetLen := big.NewInt(int64(len(alphanumeric)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			panic("failed to read random bytes: " + err.Error())
		}
		b[i] = alphanumeric[idx.Int64()]
	}
	return string(b)
}
