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

	"github.com/hf-radar/chirpsounder/fft"
	"github.com/hf-radar/chirpsounder/window"
)

// ErrWrongBlockSize is returned by Bank.Seek when the input block is not
// exactly N samples long. This is an invariant violation, not a
// transient error: the caller should terminate rather than retry.
var ErrWrongBlockSize = fmt.Errorf("chirp: block length does not match configured n_samples_per_block")

// Detection is one parameter record emitted by the matched-filter bank.
type Detection struct {
	// T0 is the virtual start time, in seconds.
	T0 float64

	// ChirpRate is the detected chirp rate, in Hz/s.
	ChirpRate float64

	// SNR is the matched-filter envelope value at the detected peak.
	SNR float32

	// DetectedAt is the sample index of the block that produced this
	// detection (i0).
	DetectedAt int64
}

// BankConfig holds the fixed parameters a Bank is built from.
type BankConfig struct {
	SampleRate                uint
	N                         int
	ChirpRates                []float64
	ThresholdSNR              float64
	MaxSimultaneousDetections int
	MFSI                      int
}

// Bank is the chirp matched-filter bank (C4): it precomputes one
// reverse-chirped whitening filter per candidate rate, and on each call
// to Seek runs the whitening stage, the per-rate matched filter, and the
// CLEAN peak-picking loop.
type Bank struct {
	cfg     BankConfig
	windows *window.Cache

	filters [][]complex64 // per rate, length N

	forward  fft.Plan
	backward fft.Plan
	scratch  []complex64 // time-domain working buffer bound to forward/backward
	freq     []complex64 // frequency-domain working buffer bound to forward/backward

	mfFreq []complex64 // per-rate FFT output scratch, length N
}

// NewBank builds a Bank from cfg using planner to construct its FFT
// plans. The returned Bank owns buffers sized for cfg.N and is not safe
// for concurrent use by multiple goroutines (C4 is single-threaded on
// the hot path; only its FFT primitive may be internally parallel).
func NewBank(cfg BankConfig, planner fft.Planner) (*Bank, error) {
	if cfg.N <= 0 {
		return nil, fmt.Errorf("chirp: bank N must be positive")
	}
	if len(cfg.ChirpRates) == 0 {
		return nil, fmt.Errorf("chirp: bank requires at least one chirp rate")
	}

	b := &Bank{
		cfg:     cfg,
		windows: window.NewCache(),
		scratch: make([]complex64, cfg.N),
		freq:    make([]complex64, cfg.N),
		mfFreq:  make([]complex64, cfg.N),
	}

	forward, err := planner(b.scratch, b.freq, fft.Forward)
	if err != nil {
		return nil, err
	}
	backward, err := planner(b.scratch, b.freq, fft.Backward)
	if err != nil {
		return nil, err
	}
	b.forward = forward
	b.backward = backward

	hann := b.windows.Hann(cfg.N)
	b.filters = make([][]complex64, len(cfg.ChirpRates))
	for ri, rate := range cfg.ChirpRates {
		ref := Reference(rate, cfg.N, cfg.SampleRate)
		filt := make([]complex64, cfg.N)
		for k := range filt {
			filt[k] = complex64(complex(hann[k], 0)) * complex64(complex(real(complex128(ref[k])), -imag(complex128(ref[k]))))
		}
		b.filters[ri] = filt
	}

	return b, nil
}

// Seek runs one block of length N at leading-edge sample index i0
// through the matched-filter bank and returns zero or more Detections.
//
// A wrong-length block is an invariant violation (spec §8 invariant 1):
// Seek fails fast and returns no detections, never a partial result.
func (b *Bank) Seek(z []complex64, i0 int64) ([]Detection, error) {
	if len(z) != b.cfg.N {
		return nil, ErrWrongBlockSize
	}

	hann := b.windows.Hann(b.cfg.N)
	if err := whiten(z, hann, b.scratch, b.freq, b.forward, b.backward); err != nil {
		return nil, err
	}
	whitened := make([]complex64, b.cfg.N)
	copy(whitened, b.scratch)

	n := b.cfg.N
	sr := float64(b.cfg.SampleRate)
	mfP := make([]float64, n)
	crIdx := make([]int, n)

	for ri, filt := range b.filters {
		for k := 0; k < n; k++ {
			b.scratch[k] = filt[k] * whitened[k]
		}
		if err := b.forward.Transform(); err != nil {
			return nil, err
		}
		copy(b.mfFreq, b.freq)

		slice, err := fft.NewFrequencySlice(b.mfFreq, sr, fft.ZeroFirst).Shift()
		if err != nil {
			return nil, err
		}
		shifted := slice.Frequency
		for k := 0; k < n; k++ {
			mag := abs64(shifted[k])
			power := mag * mag
			if ri == 0 || power > mfP[k] {
				mfP[k] = power
				crIdx[k] = ri
			}
		}
	}

	var detections []Detection

	for iter := 0; iter < b.cfg.MaxSimultaneousDetections; iter++ {
		m, snr := argmaxFloat64(mfP)
		if snr < b.cfg.ThresholdSNR {
			break
		}

		f0Hz, err := fft.FreqByBin(n, sr, fft.NegativeFirst, m)
		if err != nil {
			return nil, err
		}
		f0 := float64(f0Hz)
		rHat := b.cfg.ChirpRates[crIdx[m]]
		t0 := float64(i0)/sr - f0/rHat

		detections = append(detections, Detection{
			T0:         t0,
			ChirpRate:  rHat,
			SNR:        float32(snr),
			DetectedAt: i0,
		})

		lo := m - b.cfg.MFSI
		if lo < 0 {
			lo = 0
		}
		hi := m + b.cfg.MFSI
		if hi > n-1 {
			hi = n - 1
		}
		for k := lo; k < hi; k++ {
			mfP[k] = 0
		}
	}

	return detections, nil
}

// argmaxFloat64 returns the index and value of the first maximal
// element, giving stable tie-break behavior matching spec §4.3's
// "tie-break by first rate index" requirement applied at the per-bin
// level too.
func argmaxFloat64(xs []float64) (int, float64) {
	best := 0
	for i := 1; i < len(xs); i++ {
		if xs[i] > xs[best] {
			best = i
		}
	}
	return best, xs[best]
}

// vim: foldmethod=marker
