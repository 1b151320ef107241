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

package artifact_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hf-radar/chirpsounder/artifact"
)

func TestWriteDetectionCreatesFile(t *testing.T) {
	dir := t.TempDir()
	ds, err := artifact.NewDirStore(dir)
	require.NoError(t, err)

	rec := artifact.DetectionRecord{
		F0:         12345.6,
		I0:         9000,
		SampleRate: 100000,
		NSamples:   4096,
		ChirpTime:  1700000000,
		ChirpRate:  100000,
	}
	require.NoError(t, ds.WriteDetection(rec))

	matches, err := filepath.Glob(filepath.Join(dir, "*", "chirp-*.h5"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestWriteIonogramCreatesFile(t *testing.T) {
	dir := t.TempDir()
	ds, err := artifact.NewDirStore(dir)
	require.NoError(t, err)

	rec := artifact.IonogramRecord{
		S:                   [][]float64{{1, 2}, {3, 4}},
		Freqs:               []float64{0, 1},
		Ranges:              []float64{0, 1500},
		Rate:                100000,
		T0:                  1700000000,
		ID:                  3,
		SampleRateDecimated: 40,
		Channel:             0,
	}
	require.NoError(t, ds.WriteIonogram(rec))

	matches, err := filepath.Glob(filepath.Join(dir, "*", "lfm_ionogram-*.h5"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestClaimIsAtomicAcrossConcurrentCallers(t *testing.T) {
	dir := t.TempDir()
	ds, err := artifact.NewDirStore(dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "par-0.h5")

	const n = 8
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			results <- ds.Claim(path)
		}()
	}

	successes := 0
	alreadyClaimed := 0
	for i := 0; i < n; i++ {
		err := <-results
		switch err {
		case nil:
			successes++
		case artifact.ErrAlreadyClaimed:
			alreadyClaimed++
		default:
			require.NoError(t, err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, alreadyClaimed)
	assert.True(t, ds.IsClaimed(path))
}

func TestIsClaimedFalseBeforeClaim(t *testing.T) {
	dir := t.TempDir()
	ds, err := artifact.NewDirStore(dir)
	require.NoError(t, err)

	assert.False(t, ds.IsClaimed(filepath.Join(dir, "par-1.h5")))
}

func TestListDetectionFilesParsesRateAndI0(t *testing.T) {
	dir := t.TempDir()
	ds, err := artifact.NewDirStore(dir)
	require.NoError(t, err)

	rec := artifact.DetectionRecord{
		F0:         12345.6,
		I0:         9000,
		SampleRate: 100000,
		NSamples:   4096,
		ChirpTime:  1700000000,
		ChirpRate:  100000,
	}
	require.NoError(t, ds.WriteDetection(rec))

	files, err := ds.ListDetectionFiles()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.InDelta(t, rec.ChirpRate, files[0].ChirpRate, 1e-6)
	assert.Equal(t, rec.I0, files[0].I0)
}

func TestListParameterFilesAcrossDayDirs(t *testing.T) {
	dir := t.TempDir()
	ds, err := artifact.NewDirStore(dir)
	require.NoError(t, err)

	for _, day := range []string{"2026-01-01", "2026-01-02"} {
		sub := filepath.Join(dir, day)
		require.NoError(t, mkdirAndTouch(sub, "par-1.h5"))
	}

	files, err := ds.ListParameterFiles()
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func mkdirAndTouch(dir, name string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	return f.Close()
}

// vim: foldmethod=marker
