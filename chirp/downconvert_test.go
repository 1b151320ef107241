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
	"github.com/stretchr/testify/require"

	"github.com/hf-radar/chirpsounder/chirp"
)

func TestDownconvertDCBinDominates(t *testing.T) {
	const (
		sr        = uint(100000)
		rate      = 100000.0
		decim     = 25
		step      = 64
		filterLen = 4
	)

	dc, err := chirp.NewDownconverter(sr, 0, rate, decim, step, filterLen, 2)
	require.NoError(t, err)

	zIn := make([]complex64, dc.InputLength())
	for k := range zIn {
		t := float64(k) / float64(sr)
		phase := math.Mod(math.Pi*rate*t*t, 2*math.Pi)
		zIn[k] = complex64(complex(math.Cos(phase), math.Sin(phase)))
	}

	zOut := make([]complex64, dc.OutputLength())
	n, err := dc.Consume(zIn, zOut)
	require.NoError(t, err)
	assert.Equal(t, step, n)

	var mean complex128
	for _, v := range zOut {
		mean += complex128(v)
	}
	mean /= complex128(complex(float64(step), 0))
	assert.Greater(t, math.Hypot(real(mean), imag(mean)), 0.1)
}

func TestAdvanceTimeDoesNotPanic(t *testing.T) {
	dc, err := chirp.NewDownconverter(100000, 0, 50000, 10, 32, 4, 1)
	require.NoError(t, err)
	dc.AdvanceTime(320)
}

func TestConsumeRejectsWrongLength(t *testing.T) {
	dc, err := chirp.NewDownconverter(100000, 0, 50000, 10, 32, 4, 1)
	require.NoError(t, err)

	_, err = dc.Consume(make([]complex64, 5), make([]complex64, 32))
	assert.Error(t, err)
}

// vim: foldmethod=marker
