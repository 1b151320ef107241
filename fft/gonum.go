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

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/hf-radar/chirpsounder/iq"
)

// gonumPlan adapts a gonum fourier.CmplxFFT into the Plan interface.
// The CmplxFFT object itself keeps its own reusable workspace, matching
// the once-built reusable Plan shape the callers expect.
type gonumPlan struct {
	cfft      *fourier.CmplxFFT
	samples   iq.Samples
	frequency []complex64
	direction Direction
}

// NewPlanner returns a Planner backed by gonum.org/v1/gonum/dsp/fourier.
func NewPlanner() Planner {
	return func(samples iq.Samples, frequency []complex64, direction Direction) (Plan, error) {
		if len(samples) != len(frequency) {
			return nil, fmt.Errorf("fft: samples and frequency buffers must be the same length")
		}
		return &gonumPlan{
			cfft:      fourier.NewCmplxFFT(len(samples)),
			samples:   samples,
			frequency: frequency,
			direction: direction,
		}, nil
	}
}

func (p *gonumPlan) Transform() error {
	switch p.direction {
	case Forward:
		out := p.cfft.Coefficients(nil, complex128Of(p.samples))
		copyComplex128To64(p.frequency, out)
	case Backward:
		// gonum's CmplxFFT.Sequence is unnormalized, so the output is
		// scaled by 1/n here; Sequence(Coefficients(x))/n reconstructs x.
		out := p.cfft.Sequence(nil, complex128Of64(p.frequency))
		scale := complex(1/float64(len(out)), 0)
		for i := range p.samples {
			p.samples[i] = complex64(out[i] * scale)
		}
	default:
		return fmt.Errorf("fft: unknown direction")
	}
	return nil
}

func (p *gonumPlan) Close() error {
	return nil
}

func complex128Of(in iq.Samples) []complex128 {
	out := make([]complex128, len(in))
	for i, v := range in {
		out[i] = complex128(v)
	}
	return out
}

func complex128Of64(in []complex64) []complex128 {
	out := make([]complex128, len(in))
	for i, v := range in {
		out[i] = complex128(v)
	}
	return out
}

func copyComplex128To64(dst []complex64, src []complex128) {
	for i, v := range src {
		dst[i] = complex64(v)
	}
}

// vim: foldmethod=marker
