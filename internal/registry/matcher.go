// Package registry implements fuzzy matching of perceptual fingerprints.
// Membership is by Hamming distance threshold, never exact string equality:
// re-encoding an image shifts a few bits, and the matcher must still
// recognize it as a previously claimed picture.
package registry

import (
	"math/bits"

	"github.com/ypk/neurostamp/internal/model"
)

const (
	// DuplicateThreshold is the Hamming distance below which two
	// fingerprints count as the same underlying image.
	DuplicateThreshold = 10

	// MismatchSentinel is returned when two fingerprints cannot be compared
	// bit-for-bit. Unpadded hex encoding strips leading zero bits, so hashes
	// with different numbers of leading zeros expand to different bit
	// lengths; those are never the same image cluster.
	MismatchSentinel = 100
)

// Distance counts differing bit positions between two hex fingerprints, each
// expanded to len(hex)*4 bits. Unequal lengths (or malformed hex) return
// MismatchSentinel.
func Distance(a, b string) int {
	if len(a) != len(b) {
		return MismatchSentinel
	}
	d := 0
	for i := 0; i < len(a); i++ {
		x, okA := nibble(a[i])
		y, okB := nibble(b[i])
		if !okA || !okB {
			return MismatchSentinel
		}
		d += bits.OnesCount8(x ^ y)
	}
	return d
}

// IsDuplicate reports whether two fingerprints belong to the same image
// cluster.
func IsDuplicate(a, b string) bool {
	return Distance(a, b) < DuplicateThreshold
}

// FindOwner scans entries linearly for the first fuzzy match of fp, with
// early exit. Linear scan is fine at small catalog sizes; a Hamming-space
// nearest-neighbor index replaces this if the registry grows large.
func FindOwner(fp string, entries []model.RegistryEntry) (model.RegistryEntry, bool) {
	for _, e := range entries {
		if IsDuplicate(fp, e.Fingerprint) {
			return e, true
		}
	}
	return model.RegistryEntry{}, false
}

func nibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
