// Package camera provides the capture source: camera configuration, presets,
// the live frame type and the Source/Stream contracts implemented by backends
// such as pkg/camera/webcam.
package camera

import (
	"fmt"
	"time"
)

// Config holds all camera configuration parameters.
type Config struct {
	// === Device ===
	DeviceID   int    `json:"device_id" yaml:"device_id"`     // OpenCV device index (/dev/videoN)
	FacingMode string `json:"facing_mode" yaml:"facing_mode"` // "user" or "environment"

	// === Resolution ===
	// Requested values are hints; the stream reports its native size.
	Width     int `json:"width" yaml:"width"`         // Frame width in pixels
	Height    int `json:"height" yaml:"height"`       // Frame height in pixels
	Framerate int `json:"framerate" yaml:"framerate"` // Target FPS, also the display refresh rate
	Quality   int `json:"quality" yaml:"quality"`     // JPEG quality 1-100 for the browser display

	// FirstFrameTimeout bounds how long Acquire waits for the first frame.
	FirstFrameTimeout time.Duration `json:"first_frame_timeout" yaml:"first_frame_timeout"`
}

// Limits for requested capture settings.
const (
	MaxWidth     = 4096
	MaxHeight    = 2160
	MaxFramerate = 120
)

// Facing modes understood by Request.
const (
	FacingUser        = "user"
	FacingEnvironment = "environment"
)

// DefaultConfig returns a 640x480 user-facing camera at 30 FPS,
// the common native mode of laptop webcams.
func DefaultConfig() Config {
	return Config{
		DeviceID:          0,
		FacingMode:        FacingUser,
		Width:             640,
		Height:            480,
		Framerate:         30,
		Quality:           80,
		FirstFrameTimeout: 10 * time.Second,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.DeviceID < 0 {
		errors = append(errors, "device_id must be >= 0")
	}
	if c.FacingMode != "" && c.FacingMode != FacingUser && c.FacingMode != FacingEnvironment {
		errors = append(errors, "facing_mode must be user or environment")
	}

	// Resolution
	if c.Width < 160 || c.Width > MaxWidth {
		errors = append(errors, fmt.Sprintf("width must be between 160 and %d", MaxWidth))
	}
	if c.Height < 120 || c.Height > MaxHeight {
		errors = append(errors, fmt.Sprintf("height must be between 120 and %d", MaxHeight))
	}
	if c.Framerate < 1 || c.Framerate > MaxFramerate {
		errors = append(errors, fmt.Sprintf("framerate must be between 1 and %d", MaxFramerate))
	}
	if c.Quality < 1 || c.Quality > 100 {
		errors = append(errors, "quality must be between 1 and 100")
	}
	if c.FirstFrameTimeout <= 0 {
		errors = append(errors, "first_frame_timeout must be positive")
	}

	return errors
}

// RefreshInterval is the time between display refresh opportunities.
func (c *Config) RefreshInterval() time.Duration {
	if c.Framerate <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(c.Framerate)
}

// Request builds the capability request for this configuration.
// Audio is never requested.
func (c *Config) Request() Request {
	return Request{
		Video: VideoConstraints{
			FacingMode: c.FacingMode,
			DeviceID:   c.DeviceID,
			Width:      c.Width,
			Height:     c.Height,
			Framerate:  c.Framerate,
		},
		Audio: false,
	}
}
