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

// Package schedule implements the three C7 work-scheduling modes —
// batch, analytic realtime, and serendipitous — over the parameter
// files an artifact.ParameterFileReader exposes.
package schedule

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/hf-radar/chirpsounder/artifact"
	"github.com/hf-radar/chirpsounder/config"
)

// Work is one unit of ionogram-building work a scheduler hands to the
// worker loop.
type Work struct {
	T0        float64
	ChirpRate float64
	SounderID string

	// Path is the parameter file this work came from, empty for
	// analytic-realtime work (which is driven purely by wall clock, not
	// a file).
	Path string
}

// Mode names one of the three scheduling strategies spec.md §4.6
// describes.
type Mode string

const (
	ModeBatch         Mode = "batch"
	ModeRealtime      Mode = "realtime"
	ModeSerendipitous Mode = "serendipitous"
)

// Batch enumerates every parameter file under reader, partitioned by
// idx mod workerCount == workerID, and returns the Work items in stable
// (lexical-path) order. Each worker processes its partition
// sequentially.
func Batch(reader artifact.ParameterFileReader, workerID, workerCount int) ([]Work, error) {
	if workerCount <= 0 {
		return nil, fmt.Errorf("schedule: worker_count must be positive")
	}

	paths, err := reader.ListParameterFiles()
	if err != nil {
		return nil, fmt.Errorf("schedule: listing parameter files: %w", err)
	}
	sort.Strings(paths)

	var out []Work
	for idx, path := range paths {
		if idx%workerCount != workerID {
			continue
		}
		rec, err := reader.ReadParameterFile(path)
		if err != nil {
			return nil, fmt.Errorf("schedule: reading %s: %w", path, err)
		}
		out = append(out, Work{T0: rec.T0, ChirpRate: rec.ChirpRate, Path: path})
	}
	return out, nil
}

// NextAnalytic computes, for each configured sounder timing, the next
// firing time at or after now (try_t0 = rep*floor(now/rep) + chirpt,
// advanced forward until >= now), and returns the Work for whichever
// sounder fires soonest, along with that firing time.
func NextAnalytic(timings []config.SounderTiming, now float64) (Work, float64, error) {
	if len(timings) == 0 {
		return Work{}, 0, fmt.Errorf("schedule: no sounder timings configured for this worker")
	}

	bestIdx := -1
	var bestT0 float64
	for i, timing := range timings {
		if timing.Rep <= 0 {
			return Work{}, 0, fmt.Errorf("schedule: sounder %q has non-positive rep", timing.ID)
		}
		tryT0 := timing.Rep*math.Floor(now/timing.Rep) + timing.Chirpt
		for tryT0 < now {
			tryT0 += timing.Rep
		}
		if bestIdx == -1 || tryT0 < bestT0 {
			bestIdx = i
			bestT0 = tryT0
		}
	}

	t := timings[bestIdx]
	return Work{T0: bestT0, ChirpRate: t.ChirpRate, SounderID: t.ID}, bestT0, nil
}

// RunAnalytic blocks until ctx is cancelled, repeatedly computing the
// next analytic firing and sleeping until it is due, then invoking
// process with the resulting Work.
func RunAnalytic(ctx context.Context, timings []config.SounderTiming, now func() float64, process func(Work) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		work, t0, err := NextAnalytic(timings, now())
		if err != nil {
			return err
		}

		wait := t0 - now()
		if wait > 0 {
			timer := time.NewTimer(time.Duration(wait * float64(time.Second)))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		if err := process(work); err != nil {
			return err
		}
	}
}

// RingLowerBound is the subset of ring.Source this package needs to
// decide whether serendipitous work has already scrolled out of the
// ring buffer's retention window.
type RingLowerBound interface {
	Bounds() (iLo, iHi int64, err error)
}

// RunSerendipitous polls reader for unclaimed parameter files, claiming
// each with reader.Claim before processing so no two workers can
// process the same file (spec.md §9: the claim race is resolved with
// an atomic open-exclusive-create, here delegated to the reader).
// Files whose t0+dur has already scrolled behind src's lower bound are
// claimed and skipped rather than processed, since the samples they'd
// need are gone.
func RunSerendipitous(ctx context.Context, reader artifact.ParameterFileReader, src RingLowerBound, sampleRate float64, dur float64, process func(Work) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		paths, err := reader.ListParameterFiles()
		if err != nil {
			return err
		}
		sort.Strings(paths)

		progressed := false
		for _, path := range paths {
			if reader.IsClaimed(path) {
				continue
			}
			if err := reader.Claim(path); err != nil {
				if err == artifact.ErrAlreadyClaimed {
					continue
				}
				return err
			}
			progressed = true

			rec, err := reader.ReadParameterFile(path)
			if err != nil {
				return fmt.Errorf("schedule: reading %s: %w", path, err)
			}

			lo, _, err := src.Bounds()
			if err != nil {
				return err
			}
			needEndIdx := int64(math.Floor((rec.T0 + dur) * sampleRate))
			if needEndIdx < lo {
				continue
			}

			if err := process(Work{T0: rec.T0, ChirpRate: rec.ChirpRate, Path: path}); err != nil {
				return err
			}
		}

		if !progressed {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
		}
	}
}

// vim: foldmethod=marker
