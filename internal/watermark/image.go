package watermark

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
	"gonum.org/v1/gonum/mat"
)

// Decode reads an image (JPEG, PNG, WebP or GIF) and normalizes it to an
// *image.NRGBA with even dimensions, trimming at most one trailing row and
// column. The two-level decomposition requires even geometry.
func Decode(r io.Reader) (*image.NRGBA, error) {
	decoded, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	bounds := decoded.Bounds()
	w := bounds.Dx() &^ 1
	h := bounds.Dy() &^ 1
	if w < 4 || h < 4 {
		return nil, &DimensionError{Height: bounds.Dy(), Width: bounds.Dx()}
	}
	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), decoded, bounds.Min, draw.Src)
	return nrgba, nil
}

// LoadImage opens and decodes an image file.
func LoadImage(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// SaveImage writes img to outputPath. Format follows the extension; anything
// unrecognized falls back to PNG so the watermark survives losslessly.
func SaveImage(img *image.NRGBA, outputPath string, jpegQuality int) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality})
	default:
		return png.Encode(f, img)
	}
}

// EmbedImage watermarks the luminance channel of img with text, leaving
// chroma untouched, and returns the marked image plus the reference
// coefficient vector. Luminance carries better through chroma-subsampling
// compressors than a raw color channel does.
func EmbedImage(img *image.NRGBA, text string, alpha float64, secret string) (*image.NRGBA, []float64, error) {
	yP, uP, vP := splitYUV(img)
	marked, ref, err := Embed(yP, TextToBits(text), alpha, secret)
	if err != nil {
		return nil, nil, err
	}
	return mergeYUV(marked, uP, vP), ref, nil
}

// ExtractImage decodes textLen characters from the luminance channel of img
// using the persisted reference vector. The returned string is best-effort;
// comparing it against the expected tag is the caller's verification step.
func ExtractImage(img *image.NRGBA, ref []float64, textLen int, alpha float64, secret string) (string, error) {
	yP, _, _ := splitYUV(img)
	bits, err := Extract(yP, ref, textLen*8, alpha, secret)
	if err != nil {
		return "", err
	}
	return BitsToText(bits), nil
}

// splitYUV converts img into Y, U, V planes. The conversion matches OpenCV's
// BT.601 COLOR_BGR2YUV formula applied to RGB:
//
//	Y =  0.299*R + 0.587*G + 0.114*B
//	U = -0.14713*R - 0.28886*G + 0.436*B + 128
//	V =  0.615*R - 0.51499*G - 0.10001*B + 128
func splitYUV(img *image.NRGBA) (yPlane, uPlane, vPlane *mat.Dense) {
	b := img.Bounds()
	h, w := b.Dy(), b.Dx()
	yPlane = mat.NewDense(h, w, nil)
	uPlane = mat.NewDense(h, w, nil)
	vPlane = mat.NewDense(h, w, nil)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			r := float64(img.Pix[off])
			g := float64(img.Pix[off+1])
			bl := float64(img.Pix[off+2])

			yPlane.Set(y, x, 0.299*r+0.587*g+0.114*bl)
			uPlane.Set(y, x, -0.14713*r-0.28886*g+0.436*bl+128.0)
			vPlane.Set(y, x, 0.615*r-0.51499*g-0.10001*bl+128.0)
		}
	}
	return
}

// mergeYUV rebuilds an NRGBA image from Y, U, V planes with clamping.
func mergeYUV(yPlane, uPlane, vPlane *mat.Dense) *image.NRGBA {
	h, w := yPlane.Dims()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			yv := yPlane.At(y, x)
			uv := uPlane.At(y, x)
			vv := vPlane.At(y, x)

			r := yv + 1.13983*(vv-128.0)
			g := yv - 0.39465*(uv-128.0) - 0.58060*(vv-128.0)
			bl := yv + 2.03211*(uv-128.0)

			off := out.PixOffset(x, y)
			out.Pix[off] = clampU8(r)
			out.Pix[off+1] = clampU8(g)
			out.Pix[off+2] = clampU8(bl)
			out.Pix[off+3] = 0xff
		}
	}
	return out
}

func clampU8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}
