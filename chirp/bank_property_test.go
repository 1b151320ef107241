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
	"testing"

	"pgregory.net/rapid"

	"github.com/hf-radar/chirpsounder/chirp"
	"github.com/hf-radar/chirpsounder/fft"
)

// TestCLEANExclusionNeverEmitsTooClose checks spec invariant 3/E6: the
// CLEAN loop never emits two detections whose frequency bins are closer
// together than mfsi, for blocks built by summing one to three
// noise-free copies of the same synthetic chirp at random amplitudes.
func TestCLEANExclusionNeverEmitsTooClose(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		const (
			n  = 2048
			sr = uint(100000)
		)
		mfsi := rapid.IntRange(4, 64).Draw(rt, "mfsi")
		rate := rapid.SampledFrom([]float64{10000, 20000, 30000}).Draw(rt, "rate")

		bank, err := chirp.NewBank(chirp.BankConfig{
			SampleRate:                sr,
			N:                         n,
			ChirpRates:                []float64{rate},
			ThresholdSNR:              0.5,
			MaxSimultaneousDetections: 6,
			MFSI:                      mfsi,
		}, fft.NewPlanner())
		if err != nil {
			rt.Fatal(err)
		}

		nComponents := rapid.IntRange(1, 3).Draw(rt, "nComponents")
		z := make([]complex64, n)
		for c := 0; c < nComponents; c++ {
			amp := rapid.Float64Range(0.2, 1.0).Draw(rt, "amp")
			comp := syntheticChirp(rate, n, sr, 0, int64(c+1))
			for i := range z {
				z[i] += complex64(complex(amp, 0)) * comp[i]
			}
		}

		detections, err := bank.Seek(z, 0)
		if err != nil {
			rt.Fatal(err)
		}

		if len(detections) > 6 {
			rt.Fatalf("got %d detections, want at most 6", len(detections))
		}

		bins := make([]int, len(detections))
		for i, d := range detections {
			f0 := (float64(d.DetectedAt)/float64(sr) - d.T0) * d.ChirpRate
			bins[i] = int(f0*float64(n)/float64(sr)) + n/2
			if d.SNR < 0.5 {
				rt.Fatalf("detection with snr %v below threshold", d.SNR)
			}
		}
		for i := 0; i < len(bins); i++ {
			for j := i + 1; j < len(bins); j++ {
				dist := bins[i] - bins[j]
				if dist < 0 {
					dist = -dist
				}
				if dist < mfsi {
					rt.Fatalf("detections at bins %d and %d are only %d apart, want >= mfsi=%d", bins[i], bins[j], dist, mfsi)
				}
			}
		}
	})
}

// vim: foldmethod=marker
