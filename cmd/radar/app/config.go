package app

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/span-lab/uwb-radar/internal/dw1000"
)

// Config is the capture tool configuration.
type Config struct {
	Settings Settings      `yaml:"settings"`
	Device   DeviceConfig  `yaml:"device"`
	Capture  CaptureConfig `yaml:"capture"`
	Storage  StorageConfig `yaml:"storage"`
}

// Settings holds global application settings.
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// Level applies the configured log level to v.
func (s Settings) Level(v *slog.LevelVar) error {
	if s.LogLevel == "" {
		return nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", s.LogLevel, err)
	}
	v.Set(level)
	return nil
}

// DeviceConfig names the driver and carries the radio configuration handed
// to it.
type DeviceConfig struct {
	Driver string        `yaml:"driver"`
	Radio  dw1000.Config `yaml:"radio"`
}

// CaptureConfig controls the capture session. Experiment and MaxFrames are
// normally supplied on the command line and override whatever the file
// says.
type CaptureConfig struct {
	Experiment  string  `yaml:"experiment"`
	MaxFrames   int     `yaml:"maxFrames"`
	OutputDir   string  `yaml:"outputDir"`
	PollTimeout float64 `yaml:"pollTimeout"` // seconds, 0 disables the timeout
}

// PollTimeoutDuration converts the configured poll timeout to a Duration.
func (c CaptureConfig) PollTimeoutDuration() time.Duration {
	return time.Duration(c.PollTimeout * float64(time.Second))
}

// StorageConfig controls the sqlite capture index.
type StorageConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
	Index         bool   `yaml:"index"`
}

// DefaultConfig is the configuration used when no file is given: the sim
// driver with EVK1000 mode 3 radio settings, records in ./data, index on.
func DefaultConfig() *Config {
	return &Config{
		Settings: Settings{LogLevel: "info"},
		Device: DeviceConfig{
			Driver: "sim",
			Radio:  dw1000.DefaultConfig(),
		},
		Capture: CaptureConfig{
			OutputDir: "data",
		},
		Storage: StorageConfig{
			DataDirectory: "data",
			Index:         true,
		},
	}
}

// LoadConfig reads a yaml configuration file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	return config, nil
}
