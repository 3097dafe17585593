package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"
)

// Sentinel errors for camera acquisition.
var (
	// ErrPermissionDenied is returned when the platform refuses camera access.
	ErrPermissionDenied = errors.New("camera: permission denied")

	// ErrDeviceUnavailable is returned when no usable camera exists or it stops producing frames.
	ErrDeviceUnavailable = errors.New("camera: device unavailable")

	// ErrStreamClosed is returned by Read after Close.
	ErrStreamClosed = errors.New("camera: stream closed")

	// ErrInvalidRequest is returned for capability requests that cannot be served.
	ErrInvalidRequest = errors.New("camera: invalid request")
)

// Frame is the most recent image produced by a stream.
type Frame struct {
	Image      *image.RGBA
	Width      int
	Height     int
	Sequence   uint64
	CapturedAt time.Time
}

// NewFrame wraps img as a frame captured now.
func NewFrame(img *image.RGBA, seq uint64) Frame {
	b := img.Bounds()
	return Frame{
		Image:      img,
		Width:      b.Dx(),
		Height:     b.Dy(),
		Sequence:   seq,
		CapturedAt: time.Now(),
	}
}

// Empty reports whether the frame carries no pixels.
func (f Frame) Empty() bool {
	return f.Image == nil || f.Width <= 0 || f.Height <= 0
}

// VideoConstraints describes the requested video track.
type VideoConstraints struct {
	FacingMode string
	DeviceID   int
	Width      int
	Height     int
	Framerate  int
}

// Request is the capability request made to a Source.
type Request struct {
	Video VideoConstraints
	Audio bool
}

// Validate rejects requests this package cannot serve.
func (r Request) Validate() error {
	if r.Audio {
		return fmt.Errorf("%w: audio capture is not supported", ErrInvalidRequest)
	}
	switch r.Video.FacingMode {
	case "", FacingUser, FacingEnvironment:
	default:
		return fmt.Errorf("%w: unknown facing mode %q", ErrInvalidRequest, r.Video.FacingMode)
	}
	if r.Video.DeviceID < 0 {
		return fmt.Errorf("%w: negative device id %d", ErrInvalidRequest, r.Video.DeviceID)
	}
	return nil
}

// Source acquires live streams from a camera.
type Source interface {
	// Acquire opens the camera and returns once the first frame is readable.
	Acquire(ctx context.Context) (Stream, error)
}

// Stream is a live, continuously updating image source.
type Stream interface {
	// Read returns whatever the camera currently shows.
	Read() (Frame, error)

	// Size returns the native resolution of the stream.
	Size() (width, height int)

	// Close stops the stream and releases the device.
	Close() error
}
