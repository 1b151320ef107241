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

package fft

import (
	"fmt"

	"hz.tools/rf"
)

// Order describes how the bins of a frequency-domain buffer are laid out
// in memory.
type Order bool

var (
	// ZeroFirst is the raw FFT output order: 0 Hz, increasing positive
	// frequencies, then the negative frequencies, wrapping back to 0.
	ZeroFirst Order = false

	// NegativeFirst is the "fftshift"ed order: most negative frequency
	// first, increasing through 0 Hz, up to the most positive frequency.
	// This is the order the ionogram range axis is computed in.
	NegativeFirst Order = true
)

// FrequencySlice pairs a frequency-domain buffer with the sample rate
// and bin order needed to make sense of it. SampleRate is a float64,
// not the uint hz.tools/sdr normally indexes by, because the ionogram
// builder derives it from a decimated rate that need not divide the
// input rate evenly (the bank passes its undecimated input rate).
type FrequencySlice struct {
	Frequency  []complex64
	SampleRate float64
	Order      Order
}

// NewFrequencySlice wraps a frequency-domain buffer with its sample rate
// and bin order.
func NewFrequencySlice(frequency []complex64, sampleRate float64, order Order) FrequencySlice {
	return FrequencySlice{Frequency: frequency, SampleRate: sampleRate, Order: order}
}

// BinBandwidth is the frequency span represented by one bin.
func (r FrequencySlice) BinBandwidth() rf.Hz {
	return BinBandwidth(len(r.Frequency), r.SampleRate)
}

// Nyquist is half the sample rate.
func (r FrequencySlice) Nyquist() rf.Hz {
	return Nyquist(r.SampleRate)
}

// Shift toggles the buffer between ZeroFirst and NegativeFirst order in
// place (an fftshift/ifftshift), and returns the updated slice.
func (r FrequencySlice) Shift() (FrequencySlice, error) {
	switch r.Order {
	case ZeroFirst, NegativeFirst:
	default:
		return r, fmt.Errorf("fft: unknown frequency slice order")
	}

	half := len(r.Frequency) / 2
	for i := 0; i < half; i++ {
		r.Frequency[i], r.Frequency[i+half] = r.Frequency[i+half], r.Frequency[i]
	}
	r.Order = !r.Order
	return r, nil
}

// BinBandwidth returns the frequency span represented by one bin of a
// length-n frequency buffer sampled at sampleRate.
func BinBandwidth(n int, sampleRate float64) rf.Hz {
	return rf.Hz(float32(sampleRate / float64(n)))
}

// Nyquist is half the sample rate.
func Nyquist(sampleRate float64) rf.Hz {
	return rf.Hz(float32(sampleRate / 2))
}

// FreqByBin returns the center frequency of the given bin index of a
// length-n frequency buffer in the given order.
func FreqByBin(n int, sampleRate float64, order Order, bin int) (rf.Hz, error) {
	if bin < 0 || bin > n {
		return 0, fmt.Errorf("fft: bin %d out of range [0, %d]", bin, n)
	}

	mid := n / 2
	bw := BinBandwidth(n, sampleRate)

	switch order {
	case ZeroFirst:
		if bin > mid {
			bin -= n
		}
		return bw * rf.Hz(bin), nil
	case NegativeFirst:
		return bw * rf.Hz(bin-mid), nil
	default:
		return 0, fmt.Errorf("fft: unknown frequency slice order")
	}
}

// vim: foldmethod=marker
