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

package artifact

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DirStore is the concrete, dependency-free artifact backend: it uses
// <output_dir>/<YYYY-MM-DD>/{chirp-*.h5, par-*.h5, par-*.h5.done,
// lfm_ionogram-*.h5} (it does not create raw_iq/), and serializes
// records with encoding/binary under the ".h5"-suffixed names the rest
// of the system globs for.
type DirStore struct {
	root string
}

// NewDirStore returns a DirStore rooted at dir. dir is created if it
// does not already exist.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifact: creating output dir: %w", err)
	}
	return &DirStore{root: dir}, nil
}

func (ds *DirStore) dayPath(day string) string {
	return filepath.Join(ds.root, day)
}

// detectionWireHeader is the fixed-size, encoding/binary-friendly
// on-disk representation of a DetectionRecord.
type detectionWireHeader struct {
	F0         float64
	I0         int64
	SampleRate uint64
	NSamples   int64
	ChirpTime  float64
	ChirpRate  float64
}

// WriteDetection persists rec under
// <root>/<day>/chirp-<rate_khz>-<i0>.h5, where day is derived from
// rec.ChirpTime.
func (ds *DirStore) WriteDetection(rec DetectionRecord) error {
	day := dayDirFromUnix(rec.ChirpTime)
	dir := ds.dayPath(day)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(dir, detectionFilename(rec.ChirpRate, rec.I0))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	hdr := detectionWireHeader{
		F0:         rec.F0,
		I0:         rec.I0,
		SampleRate: uint64(rec.SampleRate),
		NSamples:   int64(rec.NSamples),
		ChirpTime:  rec.ChirpTime,
		ChirpRate:  rec.ChirpRate,
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return err
	}
	return w.Flush()
}

// ionogramWireHeader precedes the Freqs/Ranges/S arrays in an ionogram
// file.
type ionogramWireHeader struct {
	Rows    int64
	Cols    int64
	Rate    float64
	T0      float64
	ID      int32
	SRDec   uint32
	Channel int32
}

// WriteIonogram persists rec under
// <root>/<day>/lfm_ionogram-<id>-<t0>.h5, where day is derived from
// rec.T0.
func (ds *DirStore) WriteIonogram(rec IonogramRecord) error {
	day := dayDirFromUnix(rec.T0)
	dir := ds.dayPath(day)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(dir, ionogramFilename(rec.ID, rec.T0))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	hdr := ionogramWireHeader{
		Rows:    int64(len(rec.Freqs)),
		Cols:    int64(len(rec.Ranges)),
		Rate:    rec.Rate,
		T0:      rec.T0,
		ID:      int32(rec.ID),
		SRDec:   uint32(rec.SampleRateDecimated),
		Channel: int32(rec.Channel),
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, rec.Freqs); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, rec.Ranges); err != nil {
		return err
	}
	for _, row := range rec.S {
		if err := binary.Write(w, binary.LittleEndian, row); err != nil {
			return err
		}
	}
	return w.Flush()
}

// ListParameterFiles globs every par-*.h5 under the store, across all
// day directories, in lexical order.
func (ds *DirStore) ListParameterFiles() ([]string, error) {
	var out []string
	entries, err := os.ReadDir(ds.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(ds.root, e.Name(), "par-*.h5"))
		if err != nil {
			return nil, err
		}
		out = append(out, matches...)
	}
	sort.Strings(out)
	return out, nil
}

// parameterWireHeader is the on-disk layout of a parameter file written
// upstream of this module (the scheduler only reads these).
type parameterWireHeader struct {
	T0        float64
	ChirpRate float64
}

// ReadParameterFile parses one parameter file written in the
// parameterWireHeader layout.
func (ds *DirStore) ReadParameterFile(path string) (ParameterRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return ParameterRecord{}, err
	}
	defer f.Close()

	var hdr parameterWireHeader
	if err := binary.Read(f, binary.LittleEndian, &hdr); err != nil {
		return ParameterRecord{}, err
	}
	return ParameterRecord{T0: hdr.T0, ChirpRate: hdr.ChirpRate}, nil
}

// IsClaimed reports whether path's ".done" sentinel already exists.
func (ds *DirStore) IsClaimed(path string) bool {
	_, err := os.Stat(path + ".done")
	return err == nil
}

// Claim atomically creates path's ".done" sentinel using
// open-exclusive-create, so two concurrent workers can never both
// believe they won the claim race (spec §9 Open Questions).
func (ds *DirStore) Claim(path string) error {
	f, err := os.OpenFile(path+".done", os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return ErrAlreadyClaimed
		}
		return err
	}
	return f.Close()
}

// dayDirFromUnix renders an epoch-seconds float64 timestamp as the
// YYYY-MM-DD directory spec §6.6 requires.
func dayDirFromUnix(epochSeconds float64) string {
	sec := int64(epochSeconds)
	nsec := int64((epochSeconds - float64(sec)) * 1e9)
	return dayDir(time.Unix(sec, nsec).UTC())
}

// DetectionFileInfo names one detection file discovered by
// ListDetectionFiles, with the rate/i0 it encodes in its filename
// already parsed out.
type DetectionFileInfo struct {
	Path      string
	ChirpRate float64 // Hz
	I0        int64
}

// ListDetectionFiles globs every chirp-*.h5 under the store, across all
// day directories, parsing each filename's encoded rate/i0 so tooling
// can index detections without opening every file.
func (ds *DirStore) ListDetectionFiles() ([]DetectionFileInfo, error) {
	entries, err := os.ReadDir(ds.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []DetectionFileInfo
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(ds.root, e.Name(), "chirp-*.h5"))
		if err != nil {
			return nil, err
		}
		for _, path := range matches {
			rateKHz, i0, err := parseDetectionFilename(path)
			if err != nil {
				return nil, err
			}
			out = append(out, DetectionFileInfo{Path: path, ChirpRate: rateKHz * 1000, I0: i0})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// parseDetectionFilename extracts the rate (kHz) and i0 encoded in a
// detection record's filename, used by ListDetectionFiles to walk the
// store without parsing every file's contents.
func parseDetectionFilename(name string) (rateKHz float64, i0 int64, err error) {
	name = strings.TrimSuffix(filepath.Base(name), ".h5")
	name = strings.TrimPrefix(name, "chirp-")
	parts := strings.SplitN(name, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("artifact: malformed detection filename %q", name)
	}
	rateKHz, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, err
	}
	i0, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return rateKHz, i0, nil
}

// vim: foldmethod=marker
