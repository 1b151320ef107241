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
	"time"

	"github.com/hf-radar/chirpsounder/fft"
	"github.com/hf-radar/chirpsounder/ring"
	"github.com/hf-radar/chirpsounder/window"
)

// SpeedOfLight is c, in meters/second, used to convert dechirped
// frequency offset into virtual one-way range.
const SpeedOfLight = 299792458.0

// State names one phase of the ionogram builder's state machine,
// surfaced only for logging: INIT -> FILLING -> (REALTIME_WAIT <->
// READING) -> SPECTROGRAM -> WRITE -> DONE.
type State string

const (
	StateInit          State = "INIT"
	StateFilling       State = "FILLING"
	StateRealtimeWait  State = "REALTIME_WAIT"
	StateReading       State = "READING"
	StateSpectrogram   State = "SPECTROGRAM"
	StateWrite         State = "WRITE"
	StateDone          State = "DONE"
)

// Ionogram is the dense power matrix and axes produced by BuildIonogram.
type Ionogram struct {
	// S is [len(Freqs)][len(Ranges)], each cell a squared FFT magnitude.
	S [][]float64

	Freqs  []float64
	Ranges []float64

	T0                  float64
	ChirpRate           float64
	SampleRateDecimated uint
	Channel             int
}

// IonogramConfig holds the fixed parameters BuildIonogram needs beyond
// the parameter record (t0, rate) it is building for.
type IonogramConfig struct {
	SampleRate               uint
	CenterFreq               float64
	Decimation               int
	Step                     int
	FilterLen                int
	NDownconversionThreads   int
	RangeResolution          float64
	FrequencyResolution      float64
	MaxRangeExtent           float64
	MaximumAnalysisFrequency float64
	Channel                  int
	Realtime                 bool
}

// SourceGoneError is returned by BuildIonogram when realtime mode is
// waiting on data that the source has declared permanently gone (its
// lower bound has passed the requested window).
var SourceGoneError = fmt.Errorf("chirp: requested window fell behind the ring buffer's retention window")

// BuildIonogram runs one full ionogram builder pass for parameter
// record (t0, rate) against src, following the state machine in the
// component design: FILLING each window by consuming from a fresh
// Downconverter, then computing a Hann-windowed spectrogram over
// conj(zd) (the sign convention is preserved for bit-compatibility, not
// "fixed"), then axis computation and range windowing.
func BuildIonogram(src ring.Source, cfg IonogramConfig, planner fft.Planner, windows *window.Cache, t0, rate float64) (Ionogram, error) {
	_ = StateInit

	ds := SpeedOfLight / (2 * rate)
	dur := cfg.MaximumAnalysisFrequency / rate
	nWindows := int(math.Floor(dur*float64(cfg.SampleRate)/(float64(cfg.Step)*float64(cfg.Decimation)))) + 1

	zd := make([]complex64, nWindows*cfg.Step)

	dc, err := NewDownconverter(cfg.SampleRate, -cfg.CenterFreq, rate, cfg.Decimation, cfg.Step, cfg.FilterLen, cfg.NDownconversionThreads)
	if err != nil {
		return Ionogram{}, err
	}

	i0 := int64(math.Floor(t0 * float64(cfg.SampleRate)))
	outBuf := make([]complex64, cfg.Step)

	for w := 0; w < nWindows; w++ {
		// State: FILLING.
		reqLo := i0 + int64(w)*int64(cfg.Step)*int64(cfg.Decimation)
		reqN := dc.InputLength()
		reqHi := reqLo + int64(reqN)

		if cfg.Realtime {
			// State: REALTIME_WAIT <-> READING.
			for {
				lo, hi, berr := src.Bounds()
				if berr != nil {
					return Ionogram{}, berr
				}
				if reqLo < lo {
					return Ionogram{}, SourceGoneError
				}
				if reqHi <= hi {
					break
				}
				time.Sleep(time.Second)
			}
		}

		samples, rerr := src.Read(reqLo, reqN)
		if rerr != nil {
			dc.AdvanceTime(cfg.Step * cfg.Decimation)
			zeroComplex(zd[w*cfg.Step : (w+1)*cfg.Step])
			continue
		}

		if _, cerr := dc.Consume(samples, outBuf); cerr != nil {
			return Ionogram{}, cerr
		}
		copy(zd[w*cfg.Step:(w+1)*cfg.Step], outBuf)
	}

	// State: SPECTROGRAM.
	srDec := float64(cfg.SampleRate) / float64(cfg.Decimation)
	fftlen := 2 * int(math.Floor(srDec*ds/cfg.RangeResolution/2))
	if fftlen <= 0 {
		return Ionogram{}, fmt.Errorf("chirp: computed fftlen <= 0, check range_resolution and chirp rate")
	}
	fftStep := int(math.Floor((cfg.FrequencyResolution / rate) * srDec))
	if fftStep <= 0 {
		fftStep = 1
	}

	for i := range zd {
		zd[i] = complex64(complex(real(complex128(zd[i])), -imag(complex128(zd[i]))))
	}

	planBuf := make([]complex64, fftlen)
	freqBuf := make([]complex64, fftlen)
	forward, err := planner(planBuf, freqBuf, fft.Forward)
	if err != nil {
		return Ionogram{}, err
	}
	defer forward.Close()

	hann := windows.Hann(fftlen)

	var rows [][]float64
	var freqs []float64

	nSpec := (len(zd) - fftlen) / fftStep

	for i := 0; i < nSpec; i++ {
		seg := zd[i*fftStep : i*fftStep+fftlen]
		for k := range seg {
			planBuf[k] = complex64(complex(
				real(complex128(seg[k]))*hann[k],
				imag(complex128(seg[k]))*hann[k],
			))
		}
		if err := forward.Transform(); err != nil {
			return Ionogram{}, err
		}
		slice, err := fft.NewFrequencySlice(freqBuf, srDec, fft.ZeroFirst).Shift()
		if err != nil {
			return Ionogram{}, err
		}
		shifted := slice.Frequency

		row := make([]float64, fftlen)
		for k, v := range shifted {
			mag := abs64(v)
			row[k] = mag * mag
		}
		rows = append(rows, row)
		freqs = append(freqs, rate*float64(i)*float64(fftStep)/srDec)
	}

	ranges := make([]float64, fftlen)
	for j := 0; j < fftlen; j++ {
		binFreq, err := fft.FreqByBin(fftlen, srDec, fft.NegativeFirst, j)
		if err != nil {
			return Ionogram{}, err
		}
		ranges[j] = ds * float64(binFreq)
	}

	keep := make([]int, 0, fftlen)
	for j, r := range ranges {
		if math.Abs(r) < cfg.MaxRangeExtent {
			keep = append(keep, j)
		}
	}

	filteredRanges := make([]float64, len(keep))
	for idx, j := range keep {
		filteredRanges[idx] = ranges[j]
	}

	filteredRows := make([][]float64, len(rows))
	for ri, row := range rows {
		fr := make([]float64, len(keep))
		for idx, j := range keep {
			fr[idx] = row[j]
		}
		filteredRows[ri] = fr
	}

	return Ionogram{
		S:                   filteredRows,
		Freqs:               freqs,
		Ranges:              filteredRanges,
		T0:                  t0,
		ChirpRate:           rate,
		SampleRateDecimated: uint(math.Round(srDec)),
		Channel:             cfg.Channel,
	}, nil
}

func zeroComplex(s []complex64) {
	for i := range s {
		s[i] = 0
	}
}

// vim: foldmethod=marker
