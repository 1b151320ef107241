// {{{ Copyright (c) Paul R. Tagliamonte <paul@k3xec.com>, 2020
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE. }}}

package chirp

import (
	"math"

	"github.com/hf-radar/chirpsounder/fft"
)

// whitenEpsilon keeps the division in whiten from blowing up on
// near-zero frequency bins.
const whitenEpsilon = 1e-9

// whiten performs the per-block magnitude normalization described for
// the matched-filter bank's whitening stage: Z = FFT(w*z),
// z' = IFFT(Z / (|Z| + eps)). It is not exposed as a standalone public
// operation; Bank.Seek is the only caller.
//
// forward and backward must be Plans built over buf/freq of the same
// length as z; buf and freq are scratch space owned by the caller.
func whiten(z []complex64, window []float64, buf, freq []complex64, forward, backward fft.Plan) error {
	for i := range z {
		buf[i] = complex64(complex(
			real(complex128(z[i]))*window[i],
			imag(complex128(z[i]))*window[i],
		))
	}

	if err := forward.Transform(); err != nil {
		return err
	}

	for i, zf := range freq {
		mag := abs64(zf)
		freq[i] = zf / complex64(complex(mag+whitenEpsilon, 0))
	}

	return backward.Transform()
}

func abs64(z complex64) float64 {
	r := float64(real(z))
	im := float64(imag(z))
	return math.Sqrt(r*r + im*im)
}

// vim: foldmethod=marker
