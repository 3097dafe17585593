// Package window shows the overlay in a native OpenCV window.
package window

import (
	"context"
	"errors"
	"image"
	"runtime"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-facecam/pkg/camera"
	"github.com/teslashibe/go-facecam/pkg/detection"
	"github.com/teslashibe/go-facecam/pkg/frameloop"
	"github.com/teslashibe/go-facecam/pkg/overlay"
)

const keyEscape = 27

// Window is a frameloop.Presenter backed by a highgui window. The window is
// created on the first Present so it lives on the loop's OS thread.
type Window struct {
	title     string
	window    *gocv.Window
	composite *image.RGBA
}

// New creates a window presenter with the given title.
func New(title string) *Window {
	return &Window{title: title}
}

// Present shows the composited frame. Pressing Esc or q, or closing the
// window, ends the loop with frameloop.ErrQuit.
func (w *Window) Present(ctx context.Context, frame camera.Frame, canvas *overlay.Canvas, batch detection.Batch) error {
	if frame.Empty() {
		return errors.New("window: empty frame")
	}
	if w.window == nil {
		runtime.LockOSThread()
		w.window = gocv.NewWindow(w.title)
	}

	w.composite = overlay.Composite(w.composite, frame.Image, canvas.Image())
	mat, err := gocv.ImageToMatRGB(w.composite)
	if err != nil {
		return err
	}
	defer mat.Close()

	w.window.IMShow(mat)
	if quitKey(w.window.WaitKey(1)) {
		return frameloop.ErrQuit
	}
	if w.window.GetWindowProperty(gocv.WindowPropertyVisible) < 1 {
		return frameloop.ErrQuit
	}
	return nil
}

// Close destroys the window.
func (w *Window) Close() error {
	if w.window == nil {
		return nil
	}
	err := w.window.Close()
	w.window = nil
	return err
}

func quitKey(key int) bool {
	return key == keyEscape || key == 'q' || key == 'Q'
}
