package overlay

import (
	"image/color"

	"github.com/teslashibe/go-facecam/pkg/detection"
)

// Drawing style for detections.
var (
	BoxColor      = color.NRGBA{R: 255, G: 0, B: 0, A: 128} // rgba(255, 0, 0, 0.5)
	LandmarkColor = color.NRGBA{R: 0, G: 0, B: 255, A: 255}
)

// LandmarkSize is the side of the square drawn at each landmark, anchored
// at its top-left corner.
const LandmarkSize = 5

// Render clears the whole surface and draws every detection in batch.
// Box sizes are not clamped: an inverted box draws toward the opposite
// side and a zero-area box draws nothing.
func Render(s Surface, batch detection.Batch) {
	w, h := s.Size()
	s.ClearRect(0, 0, float64(w), float64(h))

	for _, d := range batch {
		bw, bh := d.Size()
		s.SetFillStyle(BoxColor)
		s.FillRect(d.TopLeft.X, d.TopLeft.Y, bw, bh)

		if len(d.Landmarks) == 0 {
			continue
		}
		s.SetFillStyle(LandmarkColor)
		for _, p := range d.Landmarks {
			s.FillRect(p.X, p.Y, LandmarkSize, LandmarkSize)
		}
	}
}
