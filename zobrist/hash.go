package zobrist

import (
	"lukechampine.com/frand"
)

const bignum = 1<<63 - 2

// Zobrist hashes a fixed-layout byte pattern: one random key per
// (position, value) pair, XORed together.
// https://en.wikipedia.org/wiki/Zobrist_hashing
type Zobrist struct {
	posTable [][]uint64
}

// Initialize creates keys for len(numValues) positions, where position i
// can hold values 0..numValues[i]-1.
func (z *Zobrist) Initialize(numValues []int) {
	z.posTable = make([][]uint64, len(numValues))
	for i, n := range numValues {
		z.posTable[i] = make([]uint64, n)
		for j := 0; j < n; j++ {
			z.posTable[i][j] = frand.Uint64n(bignum) + 1
		}
	}
}

func (z *Zobrist) NumPositions() int {
	return len(z.posTable)
}

func (z *Zobrist) Hash(data []byte) uint64 {
	key := uint64(0)
	for i, v := range data {
		key ^= z.posTable[i][v]
	}
	return key
}

// Update returns key with position pos changed from old to new.
func (z *Zobrist) Update(key uint64, pos int, old, new byte) uint64 {
	return key ^ z.posTable[pos][old] ^ z.posTable[pos][new]
}
