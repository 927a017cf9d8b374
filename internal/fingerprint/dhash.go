// Package fingerprint derives 64-bit perceptual signatures from images.
// Perceptually similar images (the same picture recompressed, lightly
// blurred, or carrying our own watermark) hash to bit-close values, while
// unrelated images differ in roughly half their bits.
package fingerprint

import (
	"image"
	"strconv"

	"golang.org/x/image/draw"
)

// DHash reduces img to a 9x8 luminance grid with CatmullRom resampling and
// emits one bit per adjacent horizontal pair, row-major, most significant bit
// first: 1 when the left pixel is brighter than the right.
//
// The signature is hex-encoded without fixed-width padding, so a hash with
// leading zero bits yields a shorter string. Distance treats unequal string
// lengths as a hard mismatch, which keeps the stored corpus and the matcher
// consistent; changing either side alone would misclassify every old entry.
func DHash(img image.Image) string {
	dst := image.NewRGBA(image.Rect(0, 0, 9, 8))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	var h uint64
	for y := 0; y < 8; y++ {
		var row [9]uint32
		for x := 0; x < 9; x++ {
			r, g, b, _ := dst.At(x, y).RGBA()
			row[x] = (299*(r>>8) + 587*(g>>8) + 114*(b>>8) + 500) / 1000
		}
		for x := 0; x < 8; x++ {
			h <<= 1
			if row[x] > row[x+1] {
				h |= 1
			}
		}
	}
	return strconv.FormatUint(h, 16)
}
