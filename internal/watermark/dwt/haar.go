// Package dwt implements a single-level 2D Haar Discrete Wavelet Transform
// over gonum dense matrices.
package dwt

import "gonum.org/v1/gonum/mat"

// forward1D applies the Haar forward transform to a signal of length n.
// avg[i] = (src[2i] + src[2i+1]) / 2, diff[i] = (src[2i] - src[2i+1]) / 2.
// Odd-length signals replicate the last sample to complete the final pair,
// so both halves have ceil(n/2) elements.
func forward1D(src []float64) (avg, diff []float64) {
	half := (len(src) + 1) / 2
	avg = make([]float64, half)
	diff = make([]float64, half)
	for i := 0; i < half; i++ {
		a := src[2*i]
		b := a
		if 2*i+1 < len(src) {
			b = src[2*i+1]
		}
		avg[i] = (a + b) / 2.0
		diff[i] = (a - b) / 2.0
	}
	return avg, diff
}

// inverse1D reconstructs a signal of length 2*len(avg) from Haar coefficients.
func inverse1D(avg, diff []float64) []float64 {
	out := make([]float64, 2*len(avg))
	for i := range avg {
		out[2*i] = avg[i] + diff[i]
		out[2*i+1] = avg[i] - diff[i]
	}
	return out
}

// Forward2D applies a single-level 2D Haar DWT to src (h rows, w cols).
// Returns four subbands LL, LH, HL, HH, each ceil(h/2) x ceil(w/2):
//
//	LL approximation, LH vertical detail (horizontal high-pass),
//	HL horizontal detail (vertical high-pass), HH diagonal detail.
//
// The transform runs forward1D over each row, then over each column of the
// intermediate result. Odd dimensions are handled by sample replication,
// which makes the reconstruction one row/column larger than the input;
// callers crop (see Inverse2D).
func Forward2D(src *mat.Dense) (ll, lh, hl, hh *mat.Dense) {
	h, w := src.Dims()
	halfH := (h + 1) / 2
	halfW := (w + 1) / 2

	// Row pass: split every row into its low and high halves.
	rowLo := mat.NewDense(h, halfW, nil)
	rowHi := mat.NewDense(h, halfW, nil)
	for y := 0; y < h; y++ {
		avg, diff := forward1D(src.RawRowView(y))
		rowLo.SetRow(y, avg)
		rowHi.SetRow(y, diff)
	}

	// Column pass on each half.
	ll = mat.NewDense(halfH, halfW, nil)
	lh = mat.NewDense(halfH, halfW, nil)
	hl = mat.NewDense(halfH, halfW, nil)
	hh = mat.NewDense(halfH, halfW, nil)
	col := make([]float64, h)
	for x := 0; x < halfW; x++ {
		for y := 0; y < h; y++ {
			col[y] = rowLo.At(y, x)
		}
		avg, diff := forward1D(col)
		for y := 0; y < halfH; y++ {
			ll.Set(y, x, avg[y])
			hl.Set(y, x, diff[y])
		}
		for y := 0; y < h; y++ {
			col[y] = rowHi.At(y, x)
		}
		avg, diff = forward1D(col)
		for y := 0; y < halfH; y++ {
			lh.Set(y, x, avg[y])
			hh.Set(y, x, diff[y])
		}
	}
	return ll, lh, hl, hh
}

// Inverse2D reconstructs a matrix from the four subbands produced by
// Forward2D. All subbands must be halfH x halfW; the result is
// 2*halfH x 2*halfW. When the forward input had an odd dimension the result
// is one row/column larger than that input; Crop trims it back.
func Inverse2D(ll, lh, hl, hh *mat.Dense) *mat.Dense {
	halfH, halfW := ll.Dims()
	h := 2 * halfH
	w := 2 * halfW

	// Column pass: rebuild the row-transform halves.
	rowLo := mat.NewDense(h, halfW, nil)
	rowHi := mat.NewDense(h, halfW, nil)
	avg := make([]float64, halfH)
	diff := make([]float64, halfH)
	for x := 0; x < halfW; x++ {
		for y := 0; y < halfH; y++ {
			avg[y] = ll.At(y, x)
			diff[y] = hl.At(y, x)
		}
		for y, v := range inverse1D(avg, diff) {
			rowLo.Set(y, x, v)
		}
		for y := 0; y < halfH; y++ {
			avg[y] = lh.At(y, x)
			diff[y] = hh.At(y, x)
		}
		for y, v := range inverse1D(avg, diff) {
			rowHi.Set(y, x, v)
		}
	}

	// Row pass.
	out := mat.NewDense(h, w, nil)
	for y := 0; y < h; y++ {
		out.SetRow(y, inverse1D(rowLo.RawRowView(y), rowHi.RawRowView(y)))
	}
	return out
}

// Crop returns the top-left h x w view of m as a fresh matrix.
func Crop(m *mat.Dense, h, w int) *mat.Dense {
	mh, mw := m.Dims()
	if mh == h && mw == w {
		return m
	}
	out := mat.NewDense(h, w, nil)
	out.Copy(m.Slice(0, h, 0, w))
	return out
}
