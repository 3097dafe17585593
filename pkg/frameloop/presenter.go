package frameloop

import (
	"context"

	"github.com/teslashibe/go-facecam/pkg/camera"
	"github.com/teslashibe/go-facecam/pkg/detection"
	"github.com/teslashibe/go-facecam/pkg/overlay"
)

// Presenter shows the current frame and its overlay on a display.
// Present is called synchronously once per tick; the canvas is only valid
// for the duration of the call. Presenters that implement io.Closer are
// closed when the loop ends.
type Presenter interface {
	Present(ctx context.Context, frame camera.Frame, canvas *overlay.Canvas, batch detection.Batch) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(ctx context.Context, frame camera.Frame, canvas *overlay.Canvas, batch detection.Batch) error

// Present calls f.
func (f PresenterFunc) Present(ctx context.Context, frame camera.Frame, canvas *overlay.Canvas, batch detection.Batch) error {
	return f(ctx, frame, canvas, batch)
}
