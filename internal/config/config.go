// Package config holds runtime configuration: defaults, YAML/environment
// loading, CLI flag overrides, and validation.
//
// Precedence, lowest to highest: [DefaultConfig], the YAML file passed with
// --config, VIDMETA_* environment variables, explicitly set CLI flags.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/mitchellh/go-homedir"
)

// --- Enum types for validated string fields ---

// OutputFormat selects how probe reports are rendered.
type OutputFormat string

const (
	FormatText OutputFormat = "text" // Aligned human-readable block (default).
	FormatJSON OutputFormat = "json" // Indented JSON.
	FormatYAML OutputFormat = "yaml" // YAML document.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. Field tags drive three things: the
// YAML key, the environment variable, and the validation rule.
type Config struct {
	// External tools.
	FfprobePath string `yaml:"ffprobe_path" env:"VIDMETA_FFPROBE" validate:"required"`
	FfmpegPath  string `yaml:"ffmpeg_path" env:"VIDMETA_FFMPEG" validate:"required"`

	// Subprocess deadlines.
	ProbeTimeout  time.Duration `yaml:"probe_timeout" env:"VIDMETA_PROBE_TIMEOUT" validate:"gt=0"`   // Default: 30s.
	VolumeTimeout time.Duration `yaml:"volume_timeout" env:"VIDMETA_VOLUME_TIMEOUT" validate:"gt=0"` // Default: 5m.

	// Facade behavior.
	RequireAudio bool `yaml:"require_audio" env:"VIDMETA_REQUIRE_AUDIO"` // Fail construction when no audio stream exists.

	// Output.
	OutputFormat OutputFormat `yaml:"output_format" env:"VIDMETA_OUTPUT_FORMAT" validate:"oneof=text json yaml"`
	TempDir      string       `yaml:"temp_dir" env:"VIDMETA_TEMP_DIR"` // Where stdin input is materialized. Empty: os.TempDir().

	// Display and logging.
	ColorMode ColorMode `yaml:"color" env:"VIDMETA_COLOR" validate:"oneof=auto always never"`
	Verbose   bool      `yaml:"verbose" env:"VIDMETA_VERBOSE"`
	LogFile   string    `yaml:"log_file" env:"VIDMETA_LOG_FILE"`
}

// DefaultConfig returns a Config with every default applied. Used as the
// base before [Load] and flag overrides.
func DefaultConfig() Config {
	return Config{
		FfprobePath:   "ffprobe",
		FfmpegPath:    "ffmpeg",
		ProbeTimeout:  30 * time.Second,
		VolumeTimeout: 5 * time.Minute,
		RequireAudio:  false,
		OutputFormat:  FormatText,
		ColorMode:     ColorAuto,
	}
}

// Load overlays the YAML file at path (if any) and then the environment
// onto cfg. A leading "~" in path is expanded to the user's home directory.
func Load(path string, cfg *Config) error {
	if path == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return fmt.Errorf("read environment: %w", err)
		}
		return nil
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("expand config path %q: %w", path, err)
	}
	if err := cleanenv.ReadConfig(expanded, cfg); err != nil {
		return fmt.Errorf("load config %s: %w", expanded, err)
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report YAML key names so messages match what the user wrote.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks enum and range constraints, then expands "~" in the
// path-valued fields.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return describe(verrs[0])
		}
		return err
	}

	var err error
	if c.LogFile, err = homedir.Expand(c.LogFile); err != nil {
		return fmt.Errorf("log_file: %w", err)
	}
	if c.TempDir, err = homedir.Expand(c.TempDir); err != nil {
		return fmt.Errorf("temp_dir: %w", err)
	}
	return nil
}

// describe turns the first validator failure into a one-line message.
func describe(fe validator.FieldError) error {
	switch fe.Tag() {
	case "oneof":
		return fmt.Errorf("invalid %s %q (use %s)", fe.Field(), fmt.Sprint(fe.Value()),
			strings.Join(strings.Fields(fe.Param()), " | "))
	case "gt":
		return fmt.Errorf("%s must be positive (got %v)", fe.Field(), fe.Value())
	case "required":
		return fmt.Errorf("%s must not be empty", fe.Field())
	}
	return fmt.Errorf("invalid %s (failed %q)", fe.Field(), fe.Tag())
}
