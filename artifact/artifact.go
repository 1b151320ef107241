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

// Package artifact defines the persistence boundary (C8): the
// DetectionRecord and IonogramRecord shapes, the writer/reader
// interfaces, and one concrete filesystem-backed implementation,
// DirStore. HDF5 itself is out of scope (the ".h5" suffix is only a
// naming convention downstream globbing depends on); DirStore
// serializes with encoding/binary, giving every record a fixed-width
// layout with no type-descriptor preamble, the shape closest to what
// an HDF5-backed version would actually write.
package artifact

import (
	"fmt"
	"time"
)

// DetectionRecord is written by C4 for each chirp detection.
type DetectionRecord struct {
	F0         float64
	I0         int64
	SampleRate uint
	NSamples   int
	ChirpTime  float64
	ChirpRate  float64
}

// IonogramRecord is written by C6 for each completed ionogram.
type IonogramRecord struct {
	S                   [][]float64
	Freqs               []float64
	Ranges              []float64
	Rate                float64
	T0                  float64
	ID                  int
	SampleRateDecimated uint
	Channel             int
}

// ParameterRecord is the external parameter file C7 reads to schedule
// downconversion/ionogram work.
type ParameterRecord struct {
	T0        float64
	ChirpRate float64
}

// DetectionWriter persists detection records.
type DetectionWriter interface {
	WriteDetection(rec DetectionRecord) error
}

// IonogramWriter persists ionogram records.
type IonogramWriter interface {
	WriteIonogram(rec IonogramRecord) error
}

// ParameterFileReader enumerates and reads parameter files under an
// output tree, for C7's batch and serendipitous modes.
type ParameterFileReader interface {
	// ListParameterFiles returns every par-*.h5 path under the store,
	// in a stable (lexical) order.
	ListParameterFiles() ([]string, error)

	// ReadParameterFile parses one parameter file.
	ReadParameterFile(path string) (ParameterRecord, error)

	// IsClaimed reports whether path already has a ".done" sentinel.
	IsClaimed(path string) bool

	// Claim atomically creates path's ".done" sentinel, returning
	// ErrAlreadyClaimed if another worker won the race.
	Claim(path string) error
}

// ErrAlreadyClaimed is returned by Claim when the sentinel file already
// exists (spec §9 Open Questions: resolved with an atomic
// open-exclusive-create instead of a racy create-then-check).
var ErrAlreadyClaimed = fmt.Errorf("artifact: parameter file already claimed")

// detectionFilename matches spec §6.3: chirp-<rate_khz:.2f>-<i0>.h5.
func detectionFilename(rateHz float64, i0 int64) string {
	return fmt.Sprintf("chirp-%.2f-%d.h5", rateHz/1000, i0)
}

// ionogramFilename matches spec §6.4: lfm_ionogram-<id:03d>-<t0:.2f>.h5.
func ionogramFilename(id int, t0 float64) string {
	return fmt.Sprintf("lfm_ionogram-%03d-%.2f.h5", id, t0)
}

// dayDir matches spec §6.6: <output_dir>/<YYYY-MM-DD>/.
func dayDir(t time.Time) string {
	return t.Format("2006-01-02")
}

// vim: foldmethod=marker
