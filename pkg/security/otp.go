package security

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

// GenerateOTP returns n random decimal digits
func GenerateOTP(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("passcode length must be positive")
	}

	var b strings.Builder
	b.Grow(n)

	ten := big.NewInt(10)
	for range n {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}

		b.WriteByte(byte('0' + d.Int64()))
	}

	return b.String(), nil
}
