package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"hearing-test/dsp"
)

// configEnv names the environment variable holding an optional YAML config path.
// The command line only carries the output path.
const configEnv = "HEARING_TEST_CONFIG"

// Config is the optional YAML configuration.
type Config struct {
	Audio   AudioConfig   `yaml:"audio"`
	Random  RandomConfig  `yaml:"random"`
	Display DisplayConfig `yaml:"display"`
	Logging LoggingConfig `yaml:"logging"`
}

type AudioConfig struct {
	SampleRate int `yaml:"sample_rate"`
	Channels   int `yaml:"channels"`
	BufferMS   int `yaml:"buffer_ms"` // Device buffer length; 0 lets oto choose
}

type RandomConfig struct {
	Seed uint64 `yaml:"seed"` // 0 seeds from the clock
}

type DisplayConfig struct {
	// ShowLevels puts the current tone on screen. Meant for calibration; a listener
	// who can see the levels is no longer taking a blind test.
	ShowLevels bool `yaml:"show_levels"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a fully-populated Config with defaults.
func DefaultConfig() Config {
	return Config{
		Audio: AudioConfig{
			SampleRate: defaultSampleRate,
			Channels:   defaultChannels,
			BufferMS:   defaultBufferMS,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads path over the defaults. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the values the rest of the program assumes are sane.
func (c Config) Validate() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}

	if dsp.MaxFrequencyLevelFor(float64(c.Audio.SampleRate)) <= 0 {
		return fmt.Errorf("audio.sample_rate %d: %w", c.Audio.SampleRate, dsp.ErrSampleRateTooLow)
	}

	if c.Audio.Channels < 1 || c.Audio.Channels > maxChannels {
		return fmt.Errorf("audio.channels must be 1..%d, got %d", maxChannels, c.Audio.Channels)
	}

	if c.Audio.BufferMS < 0 {
		return fmt.Errorf("audio.buffer_ms must not be negative, got %d", c.Audio.BufferMS)
	}

	if _, err := parseLogLevel(c.Logging.Level); err != nil {
		return err
	}

	return nil
}
