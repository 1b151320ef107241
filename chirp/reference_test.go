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

package chirp_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hf-radar/chirpsounder/chirp"
)

func TestReferenceLengthAndUnitMagnitude(t *testing.T) {
	ref := chirp.Reference(100e3, 1024, 100000)
	assert.Len(t, ref, 1024)

	for _, v := range ref {
		mag := math.Hypot(float64(real(v)), float64(imag(v)))
		assert.InDelta(t, 1.0, mag, 1e-5)
	}
}

func TestReferenceIsDeterministic(t *testing.T) {
	a := chirp.Reference(50e3, 256, 44100)
	b := chirp.Reference(50e3, 256, 44100)
	assert.Equal(t, a, b)
}

func TestReferenceStartsAtZeroPhase(t *testing.T) {
	ref := chirp.Reference(100e3, 16, 100000)
	assert.InDelta(t, 1.0, real(ref[0]), 1e-6)
	assert.InDelta(t, 0.0, imag(ref[0]), 1e-6)
}

// vim: foldmethod=marker
