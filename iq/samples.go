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

// Package iq holds the complex-baseband sample vector primitives shared by
// the rest of chirpsounder. Every component in this module speaks in
// complex64 IQ, never in a wire-specific ADC format: the sounder reads an
// already-channelized recording (see package ring), so the multi-format
// (u8/i8/i16) conversion machinery a general-purpose SDR library needs does
// not apply here.
package iq

import (
	"fmt"
	"unsafe"
)

// ErrLengthMismatch is returned when two Samples buffers that are expected
// to be the same length are not.
var ErrLengthMismatch = fmt.Errorf("iq: buffer length mismatch")

// ErrDstTooSmall is returned when a destination buffer cannot hold the
// requested number of samples.
var ErrDstTooSmall = fmt.Errorf("iq: destination buffer is too small")

// Samples is a vector of complex-baseband IQ data, stored as interleaved
// float32 real/imaginary pairs.
//
// This is the one sample representation the sounder operates on. Unlike a
// general SDR library, which has to cope with whatever wire format the
// radio hands back (uint8, int16, ...), the ring-buffered recording this
// system reads from (§6.1) has already been normalized to complex64.
type Samples []complex64

// Length returns the number of IQ samples (real/imaginary pairs) in s.
func (s Samples) Length() int {
	return len(s)
}

// Size returns the size of s in bytes.
func (s Samples) Size() int {
	return int(unsafe.Sizeof(complex64(0))) * len(s)
}

// Slice returns s[start:end]. Mutating the result mutates s.
func (s Samples) Slice(start, end int) Samples {
	return s[start:end]
}

// Make allocates a zeroed Samples buffer of the given length.
func Make(length int) Samples {
	return make(Samples, length)
}

// Zero clears every sample in s to 0+0i in place.
func (s Samples) Zero() {
	for i := range s {
		s[i] = 0
	}
}

// Copy copies as many samples as will fit from src into dst, returning the
// count copied, mirroring the builtin copy().
func Copy(dst, src Samples) (int, error) {
	return copy(dst, src), nil
}

// vim: foldmethod=marker
