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

// Package config loads the immutable Config struct every worker is
// built from. There is exactly one source of truth: a YAML file parsed
// once at startup. No dynamic field access, no attribute-bag object.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SounderTiming is one entry of sounder_timings[worker_id]: a
// periodically-firing chirp sounder this worker should expect, used in
// analytic realtime scheduling.
type SounderTiming struct {
	// ID identifies the sounder for logging; sounder identification by
	// content is explicitly out of scope, this is supplied externally.
	ID string `yaml:"id"`

	// Rep is the repetition period, in seconds.
	Rep float64 `yaml:"rep"`

	// Chirpt is the phase offset within the repetition period, in
	// seconds, at which this sounder fires.
	Chirpt float64 `yaml:"chirpt"`

	// ChirpRate is the sounder's chirp rate in Hz/s.
	ChirpRate float64 `yaml:"chirp_rate"`
}

// Config is the full set of parameters enumerated for external
// interfaces. FVec, SaveFreqIdx, Serendipitous, SaveRawVoltage and
// SaveChirpIQ are parsed but not read by any component; the scheduling
// mode comes from the --mode flag, not from Serendipitous.
type Config struct {
	SampleRate       uint    `yaml:"sample_rate"`
	CenterFreq       float64 `yaml:"center_freq"`
	NSamplesPerBlock int     `yaml:"n_samples_per_block"`
	Step             int     `yaml:"step"`
	ChirpRates       []float64 `yaml:"chirp_rates"`

	ThresholdSNR             float64 `yaml:"threshold_snr"`
	MaxSimultaneousDetections int    `yaml:"max_simultaneous_detections"`
	MFSI                     int     `yaml:"mfsi"`
	FVec                     []float64 `yaml:"fvec"`
	SaveFreqIdx              []int   `yaml:"save_freq_idx"`

	Decimation            int `yaml:"decimation"`
	NDownconversionThreads int `yaml:"n_downconversion_threads"`

	RangeResolution         float64 `yaml:"range_resolution"`
	FrequencyResolution     float64 `yaml:"frequency_resolution"`
	MaxRangeExtent          float64 `yaml:"max_range_extent"`
	MaximumAnalysisFrequency float64 `yaml:"maximum_analysis_frequency"`

	OutputDir string `yaml:"output_dir"`
	Channel   int    `yaml:"channel"`

	Realtime      bool `yaml:"realtime"`
	Serendipitous bool `yaml:"serendipitous"`

	SaveRawVoltage bool `yaml:"save_raw_voltage"`
	SaveChirpIQ    bool `yaml:"save_chirp_iq"`

	SounderTimings [][]SounderTiming `yaml:"sounder_timings"`
}

// Load reads and parses a Config from the YAML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants the rest of the pipeline assumes hold
// for any Config, regardless of how it was constructed.
func (c Config) Validate() error {
	if c.SampleRate == 0 {
		return fmt.Errorf("config: sample_rate must be positive")
	}
	if c.NSamplesPerBlock <= 0 {
		return fmt.Errorf("config: n_samples_per_block must be positive")
	}
	if c.Step <= 0 {
		return fmt.Errorf("config: step must be positive")
	}
	if len(c.ChirpRates) == 0 {
		return fmt.Errorf("config: chirp_rates must not be empty")
	}
	if c.MFSI <= 0 {
		return fmt.Errorf("config: mfsi must be positive")
	}
	if c.Decimation <= 0 {
		return fmt.Errorf("config: decimation must be positive")
	}
	if c.NDownconversionThreads <= 0 {
		return fmt.Errorf("config: n_downconversion_threads must be positive")
	}
	return nil
}

// SounderTimingsFor returns the sounder timings configured for the
// given worker ID, or nil if none are configured (batch/serendipitous
// modes never consult this).
func (c Config) SounderTimingsFor(workerID int) []SounderTiming {
	if workerID < 0 || workerID >= len(c.SounderTimings) {
		return nil
	}
	return c.SounderTimings[workerID]
}

// vim: foldmethod=marker
