package games

import (
	"crypto/rand"
	"math/big"
)

// Rand is the randomness source used by every generator in this package.
// *math/rand/v2.Rand satisfies it, which lets tests pass a seeded generator.
type Rand interface {
	IntN(n int) int
}

type cryptoRand struct{}

// CryptoRand returns a Rand backed by crypto/rand.
func CryptoRand() Rand { return cryptoRand{} }

func (cryptoRand) IntN(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// between returns a value in [lo, hi].
func between(r Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}

// shuffle permutes s in place (Fisher–Yates).
func shuffle[T any](r Rand, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
