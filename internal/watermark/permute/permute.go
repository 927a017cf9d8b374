// Package permute derives deterministic coefficient-slot permutations from a
// shared secret. The permutation is the actual shared secret of the
// watermarking protocol: embed and extract must shuffle identically or the
// payload is unrecoverable.
package permute

import (
	"errors"
	"math/rand"
)

// ErrEmptyDomain is returned when the permutation domain has no slots, which
// happens for degenerate inputs such as a 1x1 channel.
var ErrEmptyDomain = errors.New("permute: empty domain")

// Seeder folds a secret string into a PRNG seed. It is an interface so the
// fold can be swapped for a keyed hash without touching the codec.
type Seeder interface {
	Seed(secret string) int64
}

// AdditiveSeeder sums the Unicode code points of the secret.
//
// Known weakness: the fold is additive, so distinct secrets collide on the
// same seed whenever their code points sum equally (any two anagrams, for
// example). This matches the verification protocol in the field and must not
// be silently strengthened.
type AdditiveSeeder struct{}

func (AdditiveSeeder) Seed(secret string) int64 {
	var sum int64
	for _, r := range secret {
		sum += int64(r)
	}
	return sum
}

// Indices returns a permutation of [0, n) produced by a Fisher-Yates shuffle
// seeded from secret. A nil seeder uses AdditiveSeeder. Identical (n, secret)
// pairs always yield identical output.
func Indices(n int, secret string, seeder Seeder) ([]int, error) {
	if n <= 0 {
		return nil, ErrEmptyDomain
	}
	if seeder == nil {
		seeder = AdditiveSeeder{}
	}
	rng := rand.New(rand.NewSource(seeder.Seed(secret)))
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	rng.Shuffle(n, func(i, j int) {
		p[i], p[j] = p[j], p[i]
	})
	return p, nil
}
