package camera

import (
	"errors"
	"image"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if errs := cfg.Validate(); len(errs) > 0 {
		t.Fatalf("DefaultConfig should be valid, got %v", errs)
	}
	if cfg.FacingMode != FacingUser {
		t.Errorf("FacingMode: got %q, want %q", cfg.FacingMode, FacingUser)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"negative device", func(c *Config) { c.DeviceID = -1 }, "device_id"},
		{"bad facing mode", func(c *Config) { c.FacingMode = "rear" }, "facing_mode"},
		{"width too small", func(c *Config) { c.Width = 10 }, "width"},
		{"height too large", func(c *Config) { c.Height = 100000 }, "height"},
		{"zero framerate", func(c *Config) { c.Framerate = 0 }, "framerate"},
		{"quality out of range", func(c *Config) { c.Quality = 101 }, "quality"},
		{"no first frame timeout", func(c *Config) { c.FirstFrameTimeout = 0 }, "first_frame_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			errs := cfg.Validate()
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %v", errs)
			}
			if !strings.Contains(errs[0], tt.wantErr) {
				t.Errorf("error %q should mention %q", errs[0], tt.wantErr)
			}
		})
	}
}

func TestConfig_RefreshInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Framerate = 20
	if got := cfg.RefreshInterval(); got != 50*time.Millisecond {
		t.Errorf("RefreshInterval: got %v, want 50ms", got)
	}

	cfg.Framerate = 0
	if got := cfg.RefreshInterval(); got <= 0 {
		t.Errorf("RefreshInterval should fall back to a positive value, got %v", got)
	}
}

func TestConfig_RequestIsVideoOnly(t *testing.T) {
	cfg := DefaultConfig()
	req := cfg.Request()

	if req.Audio {
		t.Error("request must not ask for audio")
	}
	if req.Video.FacingMode != FacingUser {
		t.Errorf("FacingMode: got %q, want user", req.Video.FacingMode)
	}
	if err := req.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		ok   bool
	}{
		{"user camera", Request{Video: VideoConstraints{FacingMode: FacingUser}}, true},
		{"unspecified facing", Request{}, true},
		{"audio", Request{Audio: true}, false},
		{"unknown facing", Request{Video: VideoConstraints{FacingMode: "left"}}, false},
		{"negative device", Request{Video: VideoConstraints{DeviceID: -2}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestPresets(t *testing.T) {
	names := PresetNames()
	if len(names) != len(Presets()) {
		t.Fatalf("PresetNames length %d != Presets length %d", len(names), len(Presets()))
	}

	for _, name := range names {
		p := GetPreset(name)
		if p == nil {
			t.Fatalf("GetPreset(%q) returned nil", name)
		}
		if errs := p.Validate(); len(errs) > 0 {
			t.Errorf("preset %q invalid: %v", name, errs)
		}
	}

	if GetPreset("8k") != nil {
		t.Error("unknown preset should return nil")
	}
}

func TestConfig_ApplyPreset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DeviceID = 2

	if !cfg.ApplyPreset(Preset720p) {
		t.Fatal("ApplyPreset(720p) returned false")
	}
	if cfg.Width != 1280 || cfg.Height != 720 {
		t.Errorf("resolution: got %dx%d, want 1280x720", cfg.Width, cfg.Height)
	}
	if cfg.DeviceID != 2 {
		t.Errorf("device selection should be kept, got %d", cfg.DeviceID)
	}
	if cfg.ApplyPreset("nope") {
		t.Error("ApplyPreset should reject unknown names")
	}
}

func TestLatest(t *testing.T) {
	l := NewLatest()

	if _, err := l.Read(); !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("Read before publish: got %v, want ErrDeviceUnavailable", err)
	}

	select {
	case <-l.Ready():
		t.Fatal("Ready closed before first frame")
	default:
	}

	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	l.Publish(NewFrame(img, 0))
	l.Publish(NewFrame(img, 0))

	select {
	case <-l.Ready():
	default:
		t.Fatal("Ready should be closed after first frame")
	}

	f, err := l.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if f.Sequence != 2 {
		t.Errorf("Sequence: got %d, want 2", f.Sequence)
	}
	if f.Width != 4 || f.Height != 3 {
		t.Errorf("size: got %dx%d, want 4x3", f.Width, f.Height)
	}

	l.Close()
	if _, err := l.Read(); !errors.Is(err, ErrStreamClosed) {
		t.Errorf("Read after close: got %v, want ErrStreamClosed", err)
	}
}

func TestFrame_Empty(t *testing.T) {
	if !(Frame{}).Empty() {
		t.Error("zero frame should be empty")
	}
	f := NewFrame(image.NewRGBA(image.Rect(0, 0, 2, 2)), 1)
	if f.Empty() {
		t.Error("2x2 frame should not be empty")
	}
}
