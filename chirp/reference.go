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

// Package chirp implements the core CMFB/CDIB signal-processing
// pipeline: the reference chirp generator, the matched-filter bank with
// CLEAN peak picking, the streaming downconverter, and the ionogram
// builder.
package chirp

import "math"

// Tau is 2*pi, used throughout the phase math below.
const Tau = 2 * math.Pi

// Reference generates the length-L complex reference chirp for rate r
// (Hz/s) at sample rate sr (Hz): χ[k] = exp(i*(pi*r*(k/sr)^2 mod 2*pi)).
//
// Phase is accumulated in float64 and reduced modulo 2*pi before the
// complex exponential to keep the rounding error bounded for long L; the
// result is delivered as complex64.
func Reference(rate float64, length int, sampleRate uint) []complex64 {
	out := make([]complex64, length)
	sr := float64(sampleRate)
	for k := 0; k < length; k++ {
		t := float64(k) / sr
		phase := math.Mod(math.Pi*rate*t*t, Tau)
		out[k] = complex64(complex(math.Cos(phase), math.Sin(phase)))
	}
	return out
}

// vim: foldmethod=marker
