package games

import "math/rand/v2"

// scriptedRand replays vals (modulo n) and then returns zeros.
type scriptedRand struct{ vals []int }

func (s *scriptedRand) IntN(n int) int {
	if len(s.vals) == 0 {
		return 0
	}
	v := s.vals[0]
	s.vals = s.vals[1:]
	return v % n
}

func seeded(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
