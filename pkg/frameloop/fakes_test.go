package frameloop

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/teslashibe/go-facecam/pkg/camera"
	"github.com/teslashibe/go-facecam/pkg/detection"
	"github.com/teslashibe/go-facecam/pkg/overlay"
)

// fakeSource hands out a fakeStream, optionally blocking until released.
type fakeSource struct {
	stream  *fakeStream
	err     error
	release chan struct{}

	acquired atomic.Bool
}

func (s *fakeSource) Acquire(ctx context.Context) (camera.Stream, error) {
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	s.acquired.Store(true)
	return s.stream, nil
}

// fakeStream produces solid frames of a fixed size.
type fakeStream struct {
	w, h int

	// ReadFunc overrides Read when set.
	ReadFunc func(n uint64) (camera.Frame, error)

	reads  atomic.Uint64
	closed atomic.Int32
}

func newFakeStream(w, h int) *fakeStream {
	return &fakeStream{w: w, h: h}
}

func (s *fakeStream) Read() (camera.Frame, error) {
	n := s.reads.Add(1)
	if s.ReadFunc != nil {
		return s.ReadFunc(n)
	}
	return camera.NewFrame(image.NewRGBA(image.Rect(0, 0, s.w, s.h)), n), nil
}

func (s *fakeStream) Size() (int, int) { return s.w, s.h }

func (s *fakeStream) Close() error {
	s.closed.Add(1)
	return nil
}

// blockingLoader returns m once release is closed.
func blockingLoader(m *detection.Mock, release chan struct{}) detection.Loader {
	return detection.LoaderFunc(func(ctx context.Context) (detection.Model, error) {
		select {
		case <-release:
			return m, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
}

// presented records a single Present call.
type presented struct {
	Sequence uint64
	Faces    int
	Width    int
	Height   int
	Clear    bool
}

// recordingPresenter records what it was shown.
type recordingPresenter struct {
	mu    sync.Mutex
	calls []presented
}

func (p *recordingPresenter) Present(ctx context.Context, frame camera.Frame, canvas *overlay.Canvas, batch detection.Batch) error {
	w, h := canvas.Size()
	empty := true
	for i := 3; i < len(canvas.Image().Pix); i += 4 {
		if canvas.Image().Pix[i] != 0 {
			empty = false
			break
		}
	}

	p.mu.Lock()
	p.calls = append(p.calls, presented{
		Sequence: frame.Sequence,
		Faces:    len(batch),
		Width:    w,
		Height:   h,
		Clear:    empty,
	})
	p.mu.Unlock()
	return nil
}

func (p *recordingPresenter) Calls() []presented {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]presented, len(p.calls))
	copy(out, p.calls)
	return out
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func oneFace() detection.Batch {
	return detection.Batch{{
		TopLeft:     detection.Point{X: 2, Y: 2},
		BottomRight: detection.Point{X: 10, Y: 10},
		Landmarks:   []detection.Point{{X: 4, Y: 4}},
		Probability: 0.9,
	}}
}
