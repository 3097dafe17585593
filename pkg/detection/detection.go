// Package detection wraps a pretrained face-detection model behind a small
// adapter that fixes the inference options and classifies failures.
package detection

import (
	"context"

	"github.com/teslashibe/go-facecam/pkg/camera"
)

// Point is a position in frame pixel coordinates.
type Point struct {
	X, Y float64
}

// Detection represents one face found in a frame.
type Detection struct {
	TopLeft     Point   // Box corner, pixels
	BottomRight Point   // Box corner, pixels; may lie left of TopLeft after flipping
	Landmarks   []Point // Facial landmarks; nil unless AnnotateBoxes was requested
	Probability float64 // Detection confidence (0-1)
}

// Size returns the box extent. Either component may be negative.
func (d Detection) Size() (w, h float64) {
	return d.BottomRight.X - d.TopLeft.X, d.BottomRight.Y - d.TopLeft.Y
}

// Batch is every detection found in a single frame. Order carries no meaning
// and there is no identity across batches.
type Batch []Detection

// Options controls a single inference call.
type Options struct {
	ReturnTensors  bool // Return device tensors instead of plain coordinates
	FlipHorizontal bool // Mirror results to match a front-facing camera
	AnnotateBoxes  bool // Include landmarks in each detection
}

// FixedOptions returns the only options the adapter ever uses.
func FixedOptions() Options {
	return Options{
		ReturnTensors:  false,
		FlipHorizontal: true,
		AnnotateBoxes:  true,
	}
}

// Model is a loaded pretrained face detector.
type Model interface {
	// EstimateFaces runs inference on one frame.
	EstimateFaces(ctx context.Context, frame camera.Frame, opts Options) (Batch, error)

	// Close releases resources
	Close() error
}

// Loader fetches and initializes a model.
type Loader interface {
	Load(ctx context.Context) (Model, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (Model, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context) (Model, error) {
	return f(ctx)
}
