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
	"github.com/hf-radar/chirpsounder/fft"
	"github.com/hf-radar/chirpsounder/ring"
	"github.com/hf-radar/chirpsounder/window"
)

func syntheticSource(t *testing.T, rate float64, sr uint, n int64) *ring.RingStore {
	t.Helper()
	rs := ring.NewRingStore(int(n), ring.Metadata{SampleRate: sr})
	samples := make([]complex64, n)
	for k := range samples {
		tt := float64(k) / float64(sr)
		phase := math.Mod(math.Pi*rate*tt*tt, 2*math.Pi)
		samples[k] = complex64(complex(math.Cos(phase), math.Sin(phase)))
	}
	rs.Append(samples)
	return rs
}

func testIonogramConfig() chirp.IonogramConfig {
	return chirp.IonogramConfig{
		SampleRate:               100000,
		CenterFreq:               0,
		Decimation:               2500,
		Step:                     4,
		FilterLen:                2,
		NDownconversionThreads:   1,
		RangeResolution:          1500,
		FrequencyResolution:      30000,
		MaxRangeExtent:           1.5e6,
		MaximumAnalysisFrequency: 30e6,
		Channel:                  0,
	}
}

func TestIonogramAxesMatchMatrixDimensions(t *testing.T) {
	cfg := testIonogramConfig()
	rate := 1e6

	src := syntheticSource(t, rate, cfg.SampleRate, 200000)

	ion, err := chirp.BuildIonogram(src, cfg, fft.NewPlanner(), window.NewCache(), 0, rate)
	require.NoError(t, err)

	assert.Equal(t, len(ion.Freqs), len(ion.S))
	for _, row := range ion.S {
		assert.Equal(t, len(ion.Ranges), len(row))
	}
	for _, r := range ion.Ranges {
		assert.Less(t, math.Abs(r), cfg.MaxRangeExtent)
	}
}

func TestIonogramAllWindowsMissingProducesZeroMatrix(t *testing.T) {
	cfg := testIonogramConfig()
	rate := 1e6

	// Source has far fewer samples than any window needs, so every
	// window read misses and the whole ionogram is built from gaps
	// (spec §7: a data-read miss zero-fills and continues, it never
	// fails the run).
	src := syntheticSource(t, rate, cfg.SampleRate, 500)

	ion, err := chirp.BuildIonogram(src, cfg, fft.NewPlanner(), window.NewCache(), 0, rate)
	require.NoError(t, err)

	for _, row := range ion.S {
		for _, v := range row {
			assert.Zero(t, v)
		}
	}
}

func TestRealtimeModeReturnsGoneErrorWhenSourceOutpacesWindow(t *testing.T) {
	cfg := testIonogramConfig()
	cfg.Realtime = true
	rate := 1e6

	src := ring.NewRingStore(100, ring.Metadata{SampleRate: cfg.SampleRate})
	src.Append(make([]complex64, 100))
	// Force the lower bound far past the requested window by
	// overwriting the ring many times over.
	for i := 0; i < 1000; i++ {
		src.Append(make([]complex64, 100))
	}

	_, err := chirp.BuildIonogram(src, cfg, fft.NewPlanner(), window.NewCache(), 0, rate)
	assert.ErrorIs(t, err, chirp.SourceGoneError)
}

// vim: foldmethod=marker
