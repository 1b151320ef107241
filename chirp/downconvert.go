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
	"fmt"
	"math"
	"sync"
)

// ErrShortBuffer is returned when a caller-supplied buffer is smaller
// than Consume requires.
var ErrShortBuffer = fmt.Errorf("chirp: buffer too short")

// Downconverter is the streaming downconverter (C5): it mixes input
// samples down to baseband by a local oscillator tracking an
// accelerating (chirp-rate) instantaneous frequency, low-pass filters,
// and decimates by a fixed integer factor. Phase is accumulated in
// float64 to avoid drift over multi-second sweeps; output is complex64.
//
// A single Downconverter is owned exclusively by one worker's ionogram
// run for that run's lifetime (spec §5: "owned exclusively by the
// worker's C6 loop") and is not safe for concurrent Consume/AdvanceTime
// calls, though Consume itself parallelizes its FIR+decimate stage
// across Threads goroutines.
type Downconverter struct {
	sampleRate float64
	f0         float64 // mixer center-frequency offset, Hz
	rate       float64 // chirp rate, Hz/s
	decimation int
	step       int
	filterLen  int // FIR taps per decimated output, kernel length = filterLen*decimation
	taps       []float64
	threads    int

	tau   float64 // accumulated internal time, seconds
	phase float64 // accumulated LO phase, radians, reduced by math.Mod to (-2*pi, 2*pi)

	mixed []complex64 // scratch, reused across Consume calls
}

// NewDownconverter builds a Downconverter. filterLen is the low-pass
// FIR's tap count at the decimated rate; the actual convolution kernel
// operates at the input rate and is filterLen*decimation taps long.
func NewDownconverter(sampleRate uint, f0, rate float64, decimation, step, filterLen, threads int) (*Downconverter, error) {
	if decimation <= 0 || step <= 0 || filterLen <= 0 {
		return nil, fmt.Errorf("chirp: decimation, step, and filterLen must be positive")
	}
	if threads <= 0 {
		threads = 1
	}

	kernelLen := filterLen * decimation
	taps := lowPassTaps(kernelLen, 1.0/float64(decimation))

	return &Downconverter{
		sampleRate: float64(sampleRate),
		f0:         f0,
		rate:       rate,
		decimation: decimation,
		step:       step,
		filterLen:  filterLen,
		taps:       taps,
		threads:    threads,
		mixed:      make([]complex64, step*decimation+kernelLen),
	}, nil
}

// InputLength is the number of input samples one Consume call requires:
// step*decimation data samples plus filterLen*decimation of FIR lookback.
func (d *Downconverter) InputLength() int {
	return d.step*d.decimation + d.filterLen*d.decimation
}

// OutputLength is the number of output samples one Consume call
// produces.
func (d *Downconverter) OutputLength() int {
	return d.step
}

// AdvanceTime advances the internal phase/time state by deltaSamples
// input-rate samples without consuming any data, used when upstream
// reports a gap (the caller is expected to separately zero-fill the
// corresponding output slice).
func (d *Downconverter) AdvanceTime(deltaSamples int) {
	dt := 1.0 / d.sampleRate
	for i := 0; i < deltaSamples; i++ {
		d.step2Phase(dt)
	}
}

func (d *Downconverter) step2Phase(dt float64) {
	instFreq := d.f0 + d.rate*d.tau
	d.phase += Tau * instFreq * dt
	d.phase = math.Mod(d.phase, Tau)
	d.tau += dt
}

// Consume mixes, filters, and decimates zIn (which must be exactly
// InputLength() samples) into zOut[:OutputLength()]. It returns the
// number of samples written (always OutputLength() on success).
func (d *Downconverter) Consume(zIn []complex64, zOut []complex64) (int, error) {
	want := d.InputLength()
	if len(zIn) != want {
		return 0, fmt.Errorf("%w: Consume expects %d input samples, got %d", ErrShortBuffer, want, len(zIn))
	}
	if len(zOut) < d.step {
		return 0, fmt.Errorf("%w: Consume needs %d output samples, got %d", ErrShortBuffer, d.step, len(zOut))
	}

	// The caller's read windows overlap: window w's trailing FIR lookahead
	// samples are re-read as the leading samples of window w+1 (spec
	// §4.4/§4.5). So only the first step*decimation samples of zIn
	// represent genuinely new data whose time advance should persist;
	// the remaining filterLen*decimation lookahead samples are mixed
	// with a local phase copy that is discarded at the end of the call,
	// letting the next call recompute them from the correct persisted
	// state instead of double-advancing time over the overlap.
	dt := 1.0 / d.sampleRate
	newData := d.step * d.decimation

	localTau, localPhase := d.tau, d.phase
	for i, s := range zIn {
		lo := complex(math.Cos(-localPhase), math.Sin(-localPhase))
		d.mixed[i] = s * complex64(lo)

		instFreq := d.f0 + d.rate*localTau
		localPhase = math.Mod(localPhase+Tau*instFreq*dt, Tau)
		localTau += dt

		if i+1 == newData {
			d.tau, d.phase = localTau, localPhase
		}
	}

	d.decimateFIR(zOut)
	return d.step, nil
}

// decimateFIR applies the low-pass FIR and decimates, partitioning the
// step output samples across d.threads goroutines. This stage is
// order-preserving: each output index depends only on a fixed window of
// d.mixed, so splitting the range never reorders results.
func (d *Downconverter) decimateFIR(zOut []complex64) {
	threads := d.threads
	if threads > d.step {
		threads = d.step
	}
	if threads <= 1 {
		d.decimateRange(zOut, 0, d.step)
		return
	}

	var wg sync.WaitGroup
	chunk := (d.step + threads - 1) / threads
	for lo := 0; lo < d.step; lo += chunk {
		hi := lo + chunk
		if hi > d.step {
			hi = d.step
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			d.decimateRange(zOut, lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

func (d *Downconverter) decimateRange(zOut []complex64, lo, hi int) {
	for outIdx := lo; outIdx < hi; outIdx++ {
		base := outIdx * d.decimation
		var acc complex128
		for j, tap := range d.taps {
			acc += complex128(d.mixed[base+j]) * complex(tap, 0)
		}
		zOut[outIdx] = complex64(acc)
	}
}

// lowPassTaps generates a windowed-sinc low-pass FIR with normalized
// cutoff frequency cutoff (fraction of the input Nyquist rate), length
// n, Hamming-windowed.
func lowPassTaps(n int, cutoff float64) []float64 {
	taps := make([]float64, n)
	mid := float64(n-1) / 2
	var sum float64
	for i := 0; i < n; i++ {
		x := float64(i) - mid
		var sinc float64
		if x == 0 {
			sinc = cutoff
		} else {
			sinc = math.Sin(math.Pi*cutoff*x) / (math.Pi * x)
		}
		hamming := 0.54 - 0.46*math.Cos(Tau*float64(i)/float64(n-1))
		taps[i] = sinc * hamming
		sum += taps[i]
	}
	if sum != 0 {
		for i := range taps {
			taps[i] /= sum
		}
	}
	return taps
}

// vim: foldmethod=marker
