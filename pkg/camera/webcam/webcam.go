// Package webcam implements camera.Source on top of OpenCV's VideoCapture.
package webcam

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/go-facecam/internal/log"
	"github.com/teslashibe/go-facecam/pkg/camera"
	"gocv.io/x/gocv"
)

// maxReadFailures is how many consecutive empty grabs end the stream.
const maxReadFailures = 30

// Source opens a local webcam.
type Source struct {
	config camera.Config
	logger *slog.Logger
}

// New creates a webcam source for cfg.
func New(cfg camera.Config) *Source {
	return &Source{
		config: cfg,
		logger: log.With("component", "webcam", "device", cfg.DeviceID),
	}
}

// Acquire opens the device, applies the requested mode and waits for the
// first frame.
func (s *Source) Acquire(ctx context.Context) (camera.Stream, error) {
	req := s.config.Request()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := probeDevice(req.Video.DeviceID); err != nil {
		return nil, err
	}

	vc, err := gocv.VideoCaptureDevice(req.Video.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: open device %d: %v", camera.ErrDeviceUnavailable, req.Video.DeviceID, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: device %d did not open", camera.ErrDeviceUnavailable, req.Video.DeviceID)
	}

	// Hints only: drivers pick the closest supported mode.
	vc.Set(gocv.VideoCaptureFrameWidth, float64(req.Video.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(req.Video.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(req.Video.Framerate))

	st := &stream{
		vc:     vc,
		latest: camera.NewLatest(),
		done:   make(chan struct{}),
		logger: s.logger,
	}
	go st.grab()

	timer := time.NewTimer(s.config.FirstFrameTimeout)
	defer timer.Stop()

	select {
	case <-st.latest.Ready():
	case <-st.done:
		st.Close()
		return nil, fmt.Errorf("%w: stream ended before first frame", camera.ErrDeviceUnavailable)
	case <-timer.C:
		st.Close()
		return nil, fmt.Errorf("%w: no frame within %v", camera.ErrDeviceUnavailable, s.config.FirstFrameTimeout)
	case <-ctx.Done():
		st.Close()
		return nil, ctx.Err()
	}

	w, h := st.Size()
	s.logger.Info("camera stream ready", "width", w, "height", h)
	return st, nil
}

// stream continuously grabs frames into a single latest-frame slot.
type stream struct {
	vc     *gocv.VideoCapture
	latest *camera.Latest
	logger *slog.Logger

	mu     sync.Mutex
	width  int
	height int

	closeOnce sync.Once
	done      chan struct{}
}

func (s *stream) grab() {
	defer close(s.done)

	mat := gocv.NewMat()
	defer mat.Close()

	failures := 0
	for !s.latest.Closed() {
		if ok := s.vc.Read(&mat); !ok || mat.Empty() {
			failures++
			if failures >= maxReadFailures {
				s.logger.Error("camera stopped producing frames", "failures", failures)
				return
			}
			time.Sleep(10 * time.Millisecond)
			continue
		}
		failures = 0

		img, err := toRGBA(mat)
		if err != nil {
			s.logger.Warn("frame conversion failed", "error", err)
			continue
		}

		s.mu.Lock()
		if s.width == 0 {
			// The first frame fixes the native resolution.
			s.width, s.height = img.Bounds().Dx(), img.Bounds().Dy()
		}
		s.mu.Unlock()

		s.latest.Publish(camera.NewFrame(img, 0))
	}
}

// Read returns the current frame. After the grabber dies the stream reports
// the device as unavailable.
func (s *stream) Read() (camera.Frame, error) {
	select {
	case <-s.done:
		if s.latest.Closed() {
			return camera.Frame{}, camera.ErrStreamClosed
		}
		return camera.Frame{}, fmt.Errorf("%w: capture ended", camera.ErrDeviceUnavailable)
	default:
	}
	return s.latest.Read()
}

func (s *stream) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.latest.Close()
		<-s.done
		err = s.vc.Close()
	})
	return err
}

// toRGBA converts an OpenCV BGR mat into an RGBA image owned by Go.
func toRGBA(mat gocv.Mat) (*image.RGBA, error) {
	img, err := mat.ToImage()
	if err != nil {
		return nil, err
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}
	return rgba, nil
}

var _ camera.Source = (*Source)(nil)
