package template

import (
	"encoding/hex"
	"math"
	mathrand "math/rand/v2"
	"strconv"

	"github.com/google/uuid"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// maxRandomString bounds {{random.string(n)}}.
const maxRandomString = 4096

func inputRand(in *Input) *mathrand.Rand {
	if in == nil {
		return nil
	}
	return in.Rand
}

// rngIntN returns a value in [0, n) from rng, or the global source when rng is nil.
func rngIntN(rng *mathrand.Rand, n int) int {
	if n <= 0 {
		return 0
	}
	if rng != nil {
		return rng.IntN(n)
	}
	return mathrand.IntN(n)
}

func rngFloat64(rng *mathrand.Rand) float64 {
	if rng != nil {
		return rng.Float64()
	}
	return mathrand.Float64()
}

// rngUUID returns a v4 UUID. A seeded rng gives reproducible values.
func rngUUID(rng *mathrand.Rand) string {
	if rng == nil {
		return uuid.NewString()
	}
	var b [16]byte
	for i := range b {
		b[i] = byte(rng.IntN(256))
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	id, _ := uuid.FromBytes(b[:])
	return id.String()
}

func randomInt(rng *mathrand.Rand, lo, hi int) string {
	span := hi - lo
	if lo > hi || span < 0 || span == math.MaxInt {
		return ""
	}
	return strconv.Itoa(lo + rngIntN(rng, span+1))
}

func randomHex(rng *mathrand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(rngIntN(rng, 256))
	}
	return hex.EncodeToString(b)
}

func randomString(rng *mathrand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumeric[rngIntN(rng, len(alphanumeric))]
	}
	return string(b)
}
