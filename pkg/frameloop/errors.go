package frameloop

import (
	"errors"
	"fmt"

	"github.com/teslashibe/go-facecam/pkg/camera"
	"github.com/teslashibe/go-facecam/pkg/detection"
)

var (
	// ErrAlreadyStarted is returned by Start on a driver that has left the
	// Uninitialized state.
	ErrAlreadyStarted = errors.New("frameloop: already started")

	// ErrQuit is returned by a Presenter to end the loop cleanly, for example
	// when the user closes a window.
	ErrQuit = errors.New("frameloop: quit requested")
)

// Kind classifies a terminal failure for display to the user.
type Kind int

const (
	KindUnknown Kind = iota
	KindPermissionDenied
	KindDeviceUnavailable
	KindModelLoad
	KindInference
	KindPrecondition
)

func (k Kind) String() string {
	switch k {
	case KindPermissionDenied:
		return "permission_denied"
	case KindDeviceUnavailable:
		return "device_unavailable"
	case KindModelLoad:
		return "model_load"
	case KindInference:
		return "inference"
	case KindPrecondition:
		return "precondition"
	default:
		return "unknown"
	}
}

// Message is a short user-facing explanation of the failure kind.
func (k Kind) Message() string {
	switch k {
	case KindPermissionDenied:
		return "Camera access was denied. Grant access to the video device and restart."
	case KindDeviceUnavailable:
		return "No usable camera was found, or it stopped producing frames."
	case KindModelLoad:
		return "The face detection model could not be loaded."
	case KindInference:
		return "Face detection failed."
	case KindPrecondition:
		return "Detection was attempted before the model finished loading."
	default:
		return "The face overlay stopped unexpectedly."
	}
}

// Classify maps an error chain to a Kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, detection.ErrNotLoaded), errors.Is(err, ErrAlreadyStarted):
		return KindPrecondition
	case errors.Is(err, camera.ErrPermissionDenied):
		return KindPermissionDenied
	case errors.Is(err, camera.ErrDeviceUnavailable), errors.Is(err, camera.ErrStreamClosed):
		return KindDeviceUnavailable
	case errors.Is(err, detection.ErrModelLoad):
		return KindModelLoad
	case errors.Is(err, detection.ErrInference):
		return KindInference
	default:
		return KindUnknown
	}
}

// Failure is the terminal error of a driver that ended in StateFailed.
type Failure struct {
	Kind Kind
	Err  error
}

// NewFailure classifies err and wraps it.
func NewFailure(err error) *Failure {
	return &Failure{Kind: Classify(err), Err: err}
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("frameloop: %s: %v", f.Kind, f.Err)
}

// Unwrap returns the underlying error.
func (f *Failure) Unwrap() error {
	return f.Err
}
