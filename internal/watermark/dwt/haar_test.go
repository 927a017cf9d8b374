package dwt_test

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/ypk/neurostamp/internal/watermark/dwt"
)

const epsilon = 1e-10

func makeRandom(h, w int, rng *rand.Rand) *mat.Dense {
	m := mat.NewDense(h, w, nil)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(y, x, rng.Float64()*512.0-256.0)
		}
	}
	return m
}

func maxAbsDiff(a, b *mat.Dense) float64 {
	h, w := a.Dims()
	max := 0.0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := math.Abs(a.At(y, x) - b.At(y, x))
			if d > max {
				max = d
			}
		}
	}
	return max
}

func TestRoundTrip8x8(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	src := makeRandom(8, 8, rng)
	ll, lh, hl, hh := dwt.Forward2D(src)
	rec := dwt.Inverse2D(ll, lh, hl, hh)
	if d := maxAbsDiff(src, rec); d > epsilon {
		t.Errorf("8x8 round-trip max diff = %e, want < %e", d, epsilon)
	}
}

func TestRoundTrip256x256(t *testing.T) {
	rng := rand.New(rand.NewSource(999))
	src := makeRandom(256, 256, rng)
	ll, lh, hl, hh := dwt.Forward2D(src)
	rec := dwt.Inverse2D(ll, lh, hl, hh)
	if d := maxAbsDiff(src, rec); d > epsilon {
		t.Errorf("256x256 round-trip max diff = %e, want < %e", d, epsilon)
	}
}

func TestRoundTripNonSquare(t *testing.T) {
	rng := rand.New(rand.NewSource(7777))
	src := makeRandom(128, 64, rng)
	ll, _, _, _ := dwt.Forward2D(src)
	if h, w := ll.Dims(); h != 64 || w != 32 {
		t.Fatalf("unexpected LL size: %dx%d, want 64x32", h, w)
	}
	lla, lh, hl, hh := dwt.Forward2D(src)
	rec := dwt.Inverse2D(lla, lh, hl, hh)
	if d := maxAbsDiff(src, rec); d > epsilon {
		t.Errorf("128x64 round-trip max diff = %e, want < %e", d, epsilon)
	}
}

func TestSubbandSizes(t *testing.T) {
	src := makeRandom(16, 32, rand.New(rand.NewSource(0)))
	ll, lh, hl, hh := dwt.Forward2D(src)
	for name, s := range map[string]*mat.Dense{"LL": ll, "LH": lh, "HL": hl, "HH": hh} {
		if h, w := s.Dims(); h != 8 || w != 16 {
			t.Errorf("subband %s: got %dx%d, want 8x16", name, h, w)
		}
	}
}

// Odd dimensions replicate the trailing sample, so subbands round up and the
// reconstruction comes back one row/column larger than the input.
func TestOddDimensions(t *testing.T) {
	rng := rand.New(rand.NewSource(5150))
	src := makeRandom(9, 13, rng)
	ll, lh, hl, hh := dwt.Forward2D(src)
	if h, w := ll.Dims(); h != 5 || w != 7 {
		t.Fatalf("LL size for 9x13 input: got %dx%d, want 5x7", h, w)
	}
	rec := dwt.Inverse2D(ll, lh, hl, hh)
	if h, w := rec.Dims(); h != 10 || w != 14 {
		t.Fatalf("reconstruction size: got %dx%d, want 10x14", h, w)
	}
	cropped := dwt.Crop(rec, 9, 13)
	if d := maxAbsDiff(src, cropped); d > epsilon {
		t.Errorf("9x13 round-trip (cropped) max diff = %e, want < %e", d, epsilon)
	}
}

// A constant matrix decomposes to LL equal to the original values with all
// detail subbands zero.
func TestKnownValues(t *testing.T) {
	src := mat.NewDense(4, 4, []float64{
		4, 4, 4, 4,
		4, 4, 4, 4,
		4, 4, 4, 4,
		4, 4, 4, 4,
	})
	ll, lh, hl, hh := dwt.Forward2D(src)

	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if math.Abs(ll.At(y, x)-4.0) > epsilon {
				t.Errorf("LL[%d][%d] = %v, want 4.0", y, x, ll.At(y, x))
			}
			for name, s := range map[string]*mat.Dense{"LH": lh, "HL": hl, "HH": hh} {
				if math.Abs(s.At(y, x)) > epsilon {
					t.Errorf("%s[%d][%d] = %v, want 0", name, y, x, s.At(y, x))
				}
			}
		}
	}
}

// Two-level decomposition of the LL subband mirrors what the codec does; a
// perturbed level-2 reconstruction must still invert the untouched level-1
// detail exactly.
func TestTwoLevelRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(31337))
	src := makeRandom(64, 64, rng)
	ll1, lh1, hl1, hh1 := dwt.Forward2D(src)
	ll2, lh2, hl2, hh2 := dwt.Forward2D(ll1)

	h1, w1 := ll1.Dims()
	rec1 := dwt.Crop(dwt.Inverse2D(ll2, lh2, hl2, hh2), h1, w1)
	rec0 := dwt.Inverse2D(rec1, lh1, hl1, hh1)
	if d := maxAbsDiff(src, rec0); d > epsilon {
		t.Errorf("two-level round-trip max diff = %e, want < %e", d, epsilon)
	}
}
