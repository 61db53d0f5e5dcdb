package gacha

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource abstract
type RandomSource interface {
	Float64() float64 // [0, 1)
}

// crypto random : default generation method
type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	// Read 53bit random => [0, 1)
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		// back to math/rand/v2
		return rand.Float64()
	}
	u := binary.BigEndian.Uint64(buf[:]) >> 11 // 53 bits
	return float64(u) / (1 << 53)
}

func DefaultRNG() RandomSource { return cryptoRNG{} }

// MaxSeed keeps generated seeds exact as JSON numbers.
const MaxSeed = 1<<53 - 1

// NewSeed returns a fresh non-zero seed from crypto/rand, for production runs
// that were not given an explicit seed.
func NewSeed() uint64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.Uint64()&MaxSeed | 1
	}
	return binary.LittleEndian.Uint64(buf[:])&MaxSeed | 1
}

// Replicable RNG (e.g. tests)
type seededRNG struct{ r *rand.Rand }

func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }

// StreamRNG is a reusable PCG source that can be repositioned onto the stream
// of any trial index. Trial i always sees the same numbers for a given seed,
// no matter which worker runs it.
type StreamRNG struct {
	seed uint64
	pcg  *rand.PCG
	r    *rand.Rand
}

// NewStreamRNG creates a stream source positioned on stream 0.
func NewStreamRNG(seed uint64) *StreamRNG {
	pcg := rand.NewPCG(seed, mix64(0))
	return &StreamRNG{seed: seed, pcg: pcg, r: rand.New(pcg)}
}

// Stream repositions the source at the start of stream i.
func (s *StreamRNG) Stream(i uint64) {
	s.pcg.Seed(s.seed, mix64(i))
}

func (s *StreamRNG) Float64() float64 { return s.r.Float64() }

// mix64 is the splitmix64 finalizer; it spreads adjacent stream indexes
// across the PCG state space.
func mix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
