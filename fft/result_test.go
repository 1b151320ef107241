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

package fft_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hf-radar/chirpsounder/fft"
)

func TestShiftRoundTrips(t *testing.T) {
	freq := []complex64{0, 1, 2, 3, -4, -3, -2, -1}
	slice := fft.NewFrequencySlice(freq, 8, fft.ZeroFirst)

	shifted, err := slice.Shift()
	require.NoError(t, err)
	assert.Equal(t, fft.NegativeFirst, shifted.Order)

	back, err := shifted.Shift()
	require.NoError(t, err)
	assert.Equal(t, fft.ZeroFirst, back.Order)
	assert.Equal(t, []complex64{0, 1, 2, 3, -4, -3, -2, -1}, back.Frequency)
}

func TestFreqByBinZeroFirst(t *testing.T) {
	f, err := fft.FreqByBin(8, 8, fft.ZeroFirst, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, f)

	f, err = fft.FreqByBin(8, 8, fft.ZeroFirst, 5)
	require.NoError(t, err)
	assert.EqualValues(t, -3, f)
}

// vim: foldmethod=marker
