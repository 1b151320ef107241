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

// Package fft contains the FFT abstraction used by the whitening stage,
// the matched-filter bank, and the ionogram spectrogram: a Planner/Plan
// interface so the transform backend can be swapped without touching the
// callers, plus a concrete gonum-backed implementation.
package fft

import (
	"github.com/hf-radar/chirpsounder/iq"
)

// Direction indicates whether a Plan performs a forward (time to
// frequency) or backward (frequency to time) transform.
type Direction bool

var (
	// Forward reads the time-series samples buffer and writes frequency bins.
	Forward Direction = true

	// Backward reads frequency bins and writes the time-series samples buffer.
	Backward Direction = false
)

// Planner computes a reusable Plan for a given pair of time/frequency
// buffers and a Direction.
type Planner func(samples iq.Samples, frequency []complex64, direction Direction) (Plan, error)

// Plan performs an FFT or inverse FFT between the buffers it was built
// with. Plans are not safe for concurrent use.
type Plan interface {
	// Transform executes the plan once.
	Transform() error

	// Close releases any resources held by the plan.
	Close() error
}

// TransformOnce builds and immediately executes a one-shot plan. Callers
// that transform repeatedly with the same buffer sizes should build a
// Plan once with Planner instead.
func TransformOnce(planner Planner, samples iq.Samples, frequency []complex64, direction Direction) error {
	plan, err := planner(samples, frequency, direction)
	if err != nil {
		return err
	}
	defer plan.Close()
	return plan.Transform()
}

// vim: foldmethod=marker
