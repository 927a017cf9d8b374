package fingerprint_test

import (
	"image"
	"math"
	"testing"

	"github.com/ypk/neurostamp/internal/fingerprint"
	"github.com/ypk/neurostamp/internal/registry"
	"github.com/ypk/neurostamp/internal/watermark"
)

// grayImage renders f(x, y) into a grayscale NRGBA image.
func grayImage(w, h int, f func(x, y int) float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := f(x, y)
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}
			p := uint8(math.Round(v))
			off := img.PixOffset(x, y)
			img.Pix[off] = p
			img.Pix[off+1] = p
			img.Pix[off+2] = p
			img.Pix[off+3] = 0xff
		}
	}
	return img
}

// Bright at the left and right edges, dark in the middle: every row hashes to
// 0xf0, giving a full-width 16-char signature with a nonzero leading nibble.
func ridgeImage(w, h int) *image.NRGBA {
	return grayImage(w, h, func(x, y int) float64 {
		return 128.0 + 80.0*math.Cos(2.0*math.Pi*float64(x)/float64(w))
	})
}

func TestDeterministic(t *testing.T) {
	img := ridgeImage(256, 256)
	if a, b := fingerprint.DHash(img), fingerprint.DHash(img); a != b {
		t.Fatalf("same image hashed differently: %s vs %s", a, b)
	}
}

func TestKnownPattern(t *testing.T) {
	got := fingerprint.DHash(ridgeImage(256, 256))
	if got != "f0f0f0f0f0f0f0f0" {
		t.Fatalf("ridge image hash = %s, want f0f0f0f0f0f0f0f0", got)
	}
}

// A flat image has no brighter-than pairs at all, so the hash is zero and,
// with unpadded hex encoding, a single character.
func TestLeadingZerosShortenHash(t *testing.T) {
	flat := grayImage(64, 64, func(x, y int) float64 { return 128 })
	if got := fingerprint.DHash(flat); got != "0" {
		t.Fatalf("flat image hash = %q, want %q", got, "0")
	}
}

// Stamping an image must not push its fingerprint out of the duplicate
// cluster, or every re-upload of a stamped picture would look unclaimed.
func TestStableUnderWatermark(t *testing.T) {
	img := ridgeImage(256, 256)
	marked, _, err := watermark.EmbedImage(img, "ID:abc123456789", 40, "alice")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	a := fingerprint.DHash(img)
	b := fingerprint.DHash(marked)
	if d := registry.Distance(a, b); d >= registry.DuplicateThreshold {
		t.Fatalf("watermark moved fingerprint %d bits (%s -> %s), want < %d", d, a, b, registry.DuplicateThreshold)
	}
}

func TestDiscrimination(t *testing.T) {
	a := fingerprint.DHash(ridgeImage(256, 256))
	inverted := grayImage(256, 256, func(x, y int) float64 {
		return 128.0 - 80.0*math.Cos(2.0*math.Pi*float64(x)/float64(256))
	})
	b := fingerprint.DHash(inverted)
	if d := registry.Distance(a, b); d < registry.DuplicateThreshold {
		t.Fatalf("unrelated images within duplicate threshold: distance %d (%s vs %s)", d, a, b)
	}
}
