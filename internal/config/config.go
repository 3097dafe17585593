// Package config loads go-facecam settings from defaults, an optional YAML
// file, a .env file and FACECAM_* environment variables, in that order.
// Load does not validate; callers layer any further overrides on top and then
// call Finalize once.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-facecam/pkg/camera"
	"github.com/teslashibe/go-facecam/pkg/detection/yunet"
	"github.com/teslashibe/go-facecam/pkg/web"
)

// Display modes.
const (
	DisplayBrowser = "browser"
	DisplayWindow  = "window"
	DisplayBoth    = "both"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FACECAM_"

// Config is the complete application configuration.
type Config struct {
	// Preset, when set, overrides the camera resolution and framerate.
	Preset  string        `yaml:"preset" validate:"omitempty,oneof=default vga 720p 1080p"`
	Camera  camera.Config `yaml:"camera"`
	Model   yunet.Config  `yaml:"model"`
	Display Display       `yaml:"display"`
	Log     Log           `yaml:"log"`
}

// Display selects where the overlay is shown.
type Display struct {
	Mode   string `yaml:"mode" validate:"oneof=browser window both"`
	Listen string `yaml:"listen" validate:"omitempty,hostname_port"`
	Title  string `yaml:"title"`
}

// Log configures internal/log.
type Log struct {
	Level      string `yaml:"level" validate:"oneof=debug info warn error"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"gte=0"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Camera: camera.DefaultConfig(),
		Model:  yunet.DefaultConfig(),
		Display: Display{
			Mode:   DisplayBrowser,
			Listen: web.DefaultListen,
			Title:  "facecam",
		},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// Load builds the configuration. path may be empty. A missing .env file in
// the working directory is not an error. Only syntax errors and unknown keys
// are reported here; call Finalize before using the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := cfg.decodeYAML(data); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: .env: %w", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// decodeYAML overlays data onto c, rejecting unknown keys.
func (c *Config) decodeYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overlays FACECAM_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err))
			return
		}
		*dst = n
	}

	str("PRESET", &c.Preset)
	num("DEVICE", &c.Camera.DeviceID)
	num("WIDTH", &c.Camera.Width)
	num("HEIGHT", &c.Camera.Height)
	num("FPS", &c.Camera.Framerate)
	num("QUALITY", &c.Camera.Quality)
	str("MODEL_PATH", &c.Model.ModelPath)
	str("MODEL_URL", &c.Model.ModelURL)
	str("DISPLAY", &c.Display.Mode)
	str("LISTEN", &c.Display.Listen)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FILE", &c.Log.File)

	return errors.Join(errs...)
}

// Finalize applies the preset and validates the result. Call it after the
// last override has been applied.
func (c *Config) Finalize() error {
	if c.Preset != "" && !c.Camera.ApplyPreset(c.Preset) {
		return fmt.Errorf("config: unknown preset %q (available: %s)",
			c.Preset, strings.Join(camera.PresetNames(), ", "))
	}
	return c.Validate()
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("config: %w", err)
		}
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}
	if c.Display.WantsBrowser() && c.Display.Listen == "" {
		problems = append(problems, "display.listen is required for the browser display")
	}
	for _, p := range c.Camera.Validate() {
		problems = append(problems, "camera."+p)
	}
	if err := c.Model.Validate(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: invalid: %s", strings.Join(problems, "; "))
	}
	return nil
}

// WantsBrowser reports whether the browser display is enabled.
func (d Display) WantsBrowser() bool {
	return d.Mode == DisplayBrowser || d.Mode == DisplayBoth
}

// WantsWindow reports whether the native window is enabled.
func (d Display) WantsWindow() bool {
	return d.Mode == DisplayWindow || d.Mode == DisplayBoth
}

var validate = newValidator()

// newValidator reports fields by their YAML names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func describe(fe validator.FieldError) string {
	// Namespace is "Config.display.listen"; drop the root type name
	_, field, _ := strings.Cut(fe.Namespace(), ".")
	if fe.Param() != "" {
		return fmt.Sprintf("%s must satisfy %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s must satisfy %s (got %v)", field, fe.Tag(), fe.Value())
}
