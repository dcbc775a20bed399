// Package config handles the YAML file holding conversion settings. Every value
// can be overridden from the command line.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
	"github.com/Crazy-Fox-2/TI-Calc-Video-Generator/frame"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Name is the application name shown on the calculator. Only the first eight
	// letters and digits are kept.
	Name string `yaml:"name"`
	// BaseApp is the player code that starts the first page.
	BaseApp string `yaml:"base_app"`

	FramesDir    string `yaml:"frames_dir"`
	FramePattern string `yaml:"frame_pattern"`
	AudioPath    string `yaml:"audio"`
	OutputPath   string `yaml:"output"`

	// FPS is the frame rate of the source frames. The output always plays at 20
	// frames per second.
	FPS float64 `yaml:"fps"`
	// Start is the first output frame to convert, and Duration the number of
	// output frames. A duration of 0 converts everything.
	Start    int `yaml:"start"`
	Duration int `yaml:"duration"`
	// TotalFrames is the number of source frames, if known in advance. When it's
	// zero the source is polled until frames stop appearing.
	TotalFrames int `yaml:"total_frames"`

	CycleBudget     int      `yaml:"cycle_budget"`
	Workers         int      `yaml:"workers"`
	SamplesPerFrame int      `yaml:"samples_per_frame"`
	PollInterval    Duration `yaml:"poll_interval"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	StatsPath   string `yaml:"stats_csv"`
	DumpDir     string `yaml:"debug_dump_dir"`
	Sign        bool   `yaml:"sign"`
	SignCommand string `yaml:"sign_command"`
	DevicesPath string `yaml:"devices_csv"`
}

// Duration wraps time.Duration for YAML strings such as "400ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.Duration.String(), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Name:            "VIDEO",
		BaseApp:         "appbase.bin",
		FramesDir:       ".",
		FramePattern:    "frame%d.bin",
		AudioPath:       "audio.wav",
		OutputPath:      "out.bin",
		FPS:             20,
		CycleBudget:     frame.DefaultBudget,
		Workers:         runtime.GOMAXPROCS(0),
		SamplesPerFrame: 512,
		PollInterval:    Duration{400 * time.Millisecond},
		LogLevel:        "info",
		LogFormat:       "console",
		SignCommand:     "rabbitsign",
	}
}

// Load reads a YAML config file, expands environment variables, and applies it
// on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, vidgen.ErrInvalidArgument.WithMessage(
				fmt.Sprintf("config file not found: %s", path))
		}
		return nil, vidgen.ErrIOFailed.Wrap(err)
	}
	return Parse(data)
}

// Parse is Load for a config already in memory.
func Parse(data []byte) (*Config, error) {
	expanded := ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, vidgen.ErrInvalidArgument.WithMessage("invalid YAML").Wrap(err)
	}
	return cfg, nil
}

// Validate checks that the settings can be used for a conversion.
func (c *Config) Validate() error {
	problems := vidgen.Warnings{}
	invalid := func(format string, args ...any) {
		problems.Add(vidgen.ErrInvalidArgument.WithMessage(fmt.Sprintf(format, args...)))
	}

	if strings.TrimSpace(c.Name) == "" {
		invalid("name must not be empty")
	}
	if c.FPS <= 0 {
		invalid("fps must be positive, got %g", c.FPS)
	}
	if c.Start < 0 {
		invalid("start must not be negative, got %d", c.Start)
	}
	if c.Duration < 0 {
		invalid("duration must not be negative, got %d", c.Duration)
	}
	if c.TotalFrames < 0 {
		invalid("total_frames must not be negative, got %d", c.TotalFrames)
	}
	if c.CycleBudget <= 0 {
		invalid("cycle_budget must be positive, got %d", c.CycleBudget)
	}
	if c.Workers < 0 {
		invalid("workers must not be negative, got %d", c.Workers)
	}
	if c.SamplesPerFrame <= 0 {
		invalid("samples_per_frame must be positive, got %d", c.SamplesPerFrame)
	}
	if c.PollInterval.Duration <= 0 {
		invalid("poll_interval must be positive, got %s", c.PollInterval.Duration)
	}
	if !strings.Contains(c.FramePattern, "%d") {
		invalid("frame_pattern must contain %%d, got %q", c.FramePattern)
	}
	if c.OutputPath == "" {
		invalid("output must not be empty")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		invalid("log_format must be json or console, got %q", c.LogFormat)
	}

	return problems.ErrorOrNil()
}
