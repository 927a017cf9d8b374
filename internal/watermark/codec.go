// Package watermark implements a blind, key-dependent image watermark codec
// built on a two-level Haar wavelet decomposition.
//
// Embedding targets the level-2 vertical-detail subband of the luminance
// channel. Payload bits are written through a secret-keyed permutation of the
// flattened subband as bipolar offsets (+alpha for 1, -alpha for 0) and
// repeated to fill the available capacity. Extraction recomputes the same
// decomposition and permutation, then soft-votes each bit by summing the
// differential signal against the reference coefficient vector captured at
// embed time; the zero-threshold sign test is what tolerates attenuation from
// blur, recompression and noise.
package watermark

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ypk/neurostamp/internal/watermark/dwt"
	"github.com/ypk/neurostamp/internal/watermark/permute"
)

// guardOffset is how many leading permuted slots are skipped before any bit
// is written. The first stretch of the shuffled order stands in for the least
// robust edge coefficients.
const guardOffset = 100

// CapacityError reports a payload that cannot fit even one repeat into the
// guarded coefficient region.
type CapacityError struct {
	Slots int // usable coefficient slots after the guard offset
	Bits  int // payload bits requested
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("watermark: payload of %d bits exceeds capacity of %d slots", e.Bits, e.Slots)
}

// DimensionError reports a channel too small or odd-sized for a two-level
// decomposition. Trimming to even dimensions is the image loader's job; a
// matrix arriving here with odd dimensions is a caller bug.
type DimensionError struct {
	Height, Width int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("watermark: channel %dx%d unsuitable for two-level decomposition", e.Height, e.Width)
}

// Embed writes payload bits into channel and returns the modified channel
// along with the reference coefficient vector: a full copy of the untouched
// level-2 vertical-detail subband, which the key store must persist verbatim
// for extraction.
func Embed(channel *mat.Dense, payload []int, alpha float64, secret string) (*mat.Dense, []float64, error) {
	h, w := channel.Dims()
	if h < 4 || w < 4 || h%2 != 0 || w%2 != 0 {
		return nil, nil, &DimensionError{Height: h, Width: w}
	}

	ll1, lh1, hl1, hh1 := dwt.Forward2D(channel)
	ll2, lh2, hl2, hh2 := dwt.Forward2D(ll1)

	rows, cols := lh2.Dims()
	vec := flatten(lh2)
	ref := make([]float64, len(vec))
	copy(ref, vec)

	perm, err := permute.Indices(len(vec), secret, nil)
	if err != nil {
		return nil, nil, &CapacityError{Slots: 0, Bits: len(payload)}
	}

	slots := len(vec) - guardOffset
	if len(payload) == 0 || slots < len(payload) {
		return nil, nil, &CapacityError{Slots: slots, Bits: len(payload)}
	}

	repeats := slots / len(payload)
	for i := 0; i < repeats*len(payload); i++ {
		target := perm[guardOffset+i]
		if payload[i%len(payload)] == 1 {
			vec[target] += alpha
		} else {
			vec[target] -= alpha
		}
	}

	marked := mat.NewDense(rows, cols, vec)
	// Level-2 reconstruction can come back a row/column larger than LL1 when
	// the level-1 subbands had odd dimensions; crop before reconstructing
	// level 1.
	lh, lw := ll1.Dims()
	rec1 := dwt.Crop(dwt.Inverse2D(ll2, marked, hl2, hh2), lh, lw)
	rec0 := dwt.Inverse2D(rec1, lh1, hl1, hh1)
	return dwt.Crop(rec0, h, w), ref, nil
}

// Extract recovers payloadLen bits from channel. It is best-effort by design:
// apart from degenerate geometry it always returns a bit sequence, and the
// caller decides whether the decoded text matches the expected tag. alpha is
// accepted for symmetry with Embed; the sign test does not need it.
func Extract(channel *mat.Dense, ref []float64, payloadLen int, alpha float64, secret string) ([]int, error) {
	h, w := channel.Dims()
	if h < 4 || w < 4 || h%2 != 0 || w%2 != 0 {
		return nil, &DimensionError{Height: h, Width: w}
	}
	if payloadLen <= 0 {
		return nil, nil
	}

	ll1, _, _, _ := dwt.Forward2D(channel)
	_, lh2, _, _ := dwt.Forward2D(ll1)
	vec := flatten(lh2)

	perm, err := permute.Indices(len(vec), secret, nil)
	if err != nil {
		return nil, err
	}

	repeats := (len(vec) - guardOffset) / payloadLen
	if repeats < 1 {
		repeats = 1
	}

	scores := make([]float64, payloadLen)
	for r := 0; r < repeats; r++ {
		for i := 0; i < payloadLen; i++ {
			slot := guardOffset + r*payloadLen + i
			if slot >= len(perm) {
				break
			}
			target := perm[slot]
			if target >= len(ref) {
				// Reference captured from a different geometry; skip.
				continue
			}
			scores[i] += vec[target] - ref[target]
		}
	}

	bits := make([]int, payloadLen)
	for i, s := range scores {
		if s > 0 {
			bits[i] = 1
		}
	}
	return bits, nil
}

// flatten copies a matrix into a row-major vector.
func flatten(m *mat.Dense) []float64 {
	rows, cols := m.Dims()
	out := make([]float64, rows*cols)
	for y := 0; y < rows; y++ {
		copy(out[y*cols:(y+1)*cols], m.RawRowView(y))
	}
	return out
}
