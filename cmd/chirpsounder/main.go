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

// Command chirpsounder runs one worker of the chirp-sounder pipeline:
// it detects LFM sweeps against a live sample source (C4), and
// independently builds ionograms for whatever work its scheduling mode
// hands it (C7 -> C6), writing both kinds of artifact through C8.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/hf-radar/chirpsounder/artifact"
	"github.com/hf-radar/chirpsounder/chirp"
	"github.com/hf-radar/chirpsounder/config"
	"github.com/hf-radar/chirpsounder/fft"
	"github.com/hf-radar/chirpsounder/ring"
	"github.com/hf-radar/chirpsounder/schedule"
	"github.com/hf-radar/chirpsounder/window"
)

func main() {
	var (
		configPath  = pflag.String("config", "", "Path to the YAML config file.")
		workerID    = pflag.Int("worker-id", 0, "This worker's index, 0-based.")
		workerCount = pflag.Int("worker-count", 1, "Total number of cooperating workers.")
		mode        = pflag.StringP("mode", "m", "batch", "Scheduling mode: batch, realtime, or serendipitous.")
	)
	pflag.Parse()

	logger := log.New(os.Stderr)

	if *configPath == "" {
		logger.Fatal("--config is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("loading config", "err", err)
	}

	store, err := artifact.NewDirStore(cfg.OutputDir)
	if err != nil {
		logger.Fatal("opening artifact store", "err", err)
	}

	// A production deployment swaps this for an adapter over the real
	// ring-buffered recorder; hardware acquisition is out of scope
	// here, so an in-memory RingStore stands in for it. Nothing in this
	// binary appends samples to it.
	src := ring.NewRingStore(cfg.NSamplesPerBlock*64, ring.Metadata{
		SampleRate: cfg.SampleRate,
		CenterFreq: cfg.CenterFreq,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	for {
		err := runWorker(ctx, logger, cfg, schedule.Mode(*mode), *workerID, *workerCount, store, src)
		if err == nil || ctx.Err() != nil {
			logger.Info("worker exiting", "mode", *mode, "worker_id", *workerID)
			return
		}
		logger.Error("worker crashed, restarting", "err", err)
		time.Sleep(time.Second)
	}
}

// runWorker runs C4's detection block loop and C7's scheduled ionogram
// loop concurrently until ctx is cancelled or either fails.
func runWorker(ctx context.Context, logger *log.Logger, cfg config.Config, mode schedule.Mode, workerID, workerCount int, store *artifact.DirStore, src *ring.RingStore) error {
	errCh := make(chan error, 2)

	go func() {
		errCh <- runDetectionLoop(ctx, logger, cfg, store, src)
	}()
	go func() {
		errCh <- runIonogramLoop(ctx, logger, cfg, mode, workerID, workerCount, store, src)
	}()

	err := <-errCh
	return err
}

// runDetectionLoop is C4's block loop: it slides a matched-filter bank
// across the live sample source in steps of cfg.Step blocks of
// cfg.NSamplesPerBlock samples, logging and persisting every detection
// that clears cfg.ThresholdSNR.
func runDetectionLoop(ctx context.Context, logger *log.Logger, cfg config.Config, store *artifact.DirStore, src *ring.RingStore) error {
	bank, err := chirp.NewBank(chirp.BankConfig{
		SampleRate:                cfg.SampleRate,
		N:                         cfg.NSamplesPerBlock,
		ChirpRates:                cfg.ChirpRates,
		ThresholdSNR:              cfg.ThresholdSNR,
		MaxSimultaneousDetections: cfg.MaxSimultaneousDetections,
		MFSI:                      cfg.MFSI,
	}, fft.NewPlanner())
	if err != nil {
		return fmt.Errorf("building matched-filter bank: %w", err)
	}

	var i0 int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		samples, err := src.Read(i0, cfg.NSamplesPerBlock)
		if err != nil {
			time.Sleep(time.Second)
			continue
		}

		detections, err := bank.Seek(samples, i0)
		if err != nil {
			return fmt.Errorf("matched-filter seek at i0=%d: %w", i0, err)
		}

		for _, d := range detections {
			logger.Info("chirp detected", "rate", d.ChirpRate, "snr", d.SNR, "t0", d.T0)
			rec := artifact.DetectionRecord{
				F0:         0,
				I0:         d.DetectedAt,
				SampleRate: cfg.SampleRate,
				NSamples:   cfg.NSamplesPerBlock,
				ChirpTime:  d.T0,
				ChirpRate:  d.ChirpRate,
			}
			if err := store.WriteDetection(rec); err != nil {
				logger.Warn("writing detection record failed", "err", err)
			}
		}

		i0 += int64(cfg.Step) * int64(cfg.NSamplesPerBlock)
	}
}

// runIonogramLoop dispatches C7's chosen scheduling mode, building and
// persisting an ionogram (C6) for each unit of work it hands out.
func runIonogramLoop(ctx context.Context, logger *log.Logger, cfg config.Config, mode schedule.Mode, workerID, workerCount int, store *artifact.DirStore, src *ring.RingStore) error {
	build := func(w schedule.Work) error {
		ion, err := chirp.BuildIonogram(src, chirp.IonogramConfig{
			SampleRate:               cfg.SampleRate,
			CenterFreq:               cfg.CenterFreq,
			Decimation:               cfg.Decimation,
			Step:                     cfg.Step,
			FilterLen:                4,
			NDownconversionThreads:   cfg.NDownconversionThreads,
			RangeResolution:          cfg.RangeResolution,
			FrequencyResolution:      cfg.FrequencyResolution,
			MaxRangeExtent:           cfg.MaxRangeExtent,
			MaximumAnalysisFrequency: cfg.MaximumAnalysisFrequency,
			Channel:                  cfg.Channel,
			Realtime:                 cfg.Realtime,
		}, fft.NewPlanner(), window.NewCache(), w.T0, w.ChirpRate)
		if err != nil {
			logger.Warn("building ionogram failed", "t0", w.T0, "rate", w.ChirpRate, "err", err)
			return nil
		}

		rec := artifact.IonogramRecord{
			S:                   ion.S,
			Freqs:               ion.Freqs,
			Ranges:              ion.Ranges,
			Rate:                ion.ChirpRate,
			T0:                  ion.T0,
			SampleRateDecimated: ion.SampleRateDecimated,
			Channel:             ion.Channel,
		}
		if err := store.WriteIonogram(rec); err != nil {
			logger.Warn("writing ionogram record failed", "err", err)
			return nil
		}
		logger.Info("ionogram written", "t0", w.T0, "rate", w.ChirpRate)
		return nil
	}

	switch mode {
	case schedule.ModeBatch:
		work, err := schedule.Batch(store, workerID, workerCount)
		if err != nil {
			return err
		}
		for _, w := range work {
			if err := build(w); err != nil {
				return err
			}
		}
		return nil

	case schedule.ModeRealtime:
		timings := cfg.SounderTimingsFor(workerID)
		return schedule.RunAnalytic(ctx, timings, wallClockSeconds, build)

	case schedule.ModeSerendipitous:
		dur := cfg.MaximumAnalysisFrequency / cfg.ChirpRates[0]
		return schedule.RunSerendipitous(ctx, store, src, float64(cfg.SampleRate), dur, build)

	default:
		return fmt.Errorf("chirpsounder: unknown mode %q", mode)
	}
}

func wallClockSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// vim: foldmethod=marker
