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

// Package window generates and caches the Hann window used before every
// FFT in the chirp matched-filter bank's whitening stage and the
// ionogram builder's spectrogram stage.
package window

import (
	"sync"

	"gonum.org/v1/gonum/dsp/window"
)

// Cache memoizes Hann windows by length, so a fixed-size processing loop
// (one FFT length per chirp rate, one per spectrogram column) never
// regenerates the same window twice.
type Cache struct {
	mu    sync.Mutex
	byLen map[int][]float64
}

// NewCache returns an empty window Cache.
func NewCache() *Cache {
	return &Cache{byLen: map[int][]float64{}}
}

// Hann returns the size-length Hann window, generating and caching it on
// first use via gonum.org/v1/gonum/dsp/window.
func (c *Cache) Hann(size int) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if buf, ok := c.byLen[size]; ok {
		return buf
	}

	buf := make([]float64, size)
	for i := range buf {
		buf[i] = 1
	}
	buf = window.Hann(buf)
	c.byLen[size] = buf
	return buf
}

// ApplyC64 multiplies s in place by the cached Hann window of len(s).
func (c *Cache) ApplyC64(s []complex64) {
	w := c.Hann(len(s))
	for i := range s {
		s[i] = complex64(complex(
			real(complex128(s[i]))*w[i],
			imag(complex128(s[i]))*w[i],
		))
	}
}

// vim: foldmethod=marker
