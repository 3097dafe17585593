package detection

import (
	"context"
	"sync"
	"time"

	"github.com/teslashibe/go-facecam/pkg/camera"
)

// Mock implements Model for testing.
type Mock struct {
	// EstimateFunc is called when EstimateFaces is invoked.
	EstimateFunc func(ctx context.Context, frame camera.Frame, opts Options) (Batch, error)

	// CloseFunc is called when Close is invoked.
	CloseFunc func() error

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a method invocation.
type MockCall struct {
	Method   string
	Sequence uint64
	Options  Options
	Time     time.Time
}

// NewMock creates a mock model that finds no faces.
func NewMock() *Mock {
	return &Mock{
		EstimateFunc: func(ctx context.Context, frame camera.Frame, opts Options) (Batch, error) {
			return Batch{}, nil
		},
	}
}

// EstimateFaces calls EstimateFunc and records the call.
func (m *Mock) EstimateFaces(ctx context.Context, frame camera.Frame, opts Options) (Batch, error) {
	m.record(MockCall{Method: "EstimateFaces", Sequence: frame.Sequence, Options: opts})
	if m.EstimateFunc != nil {
		return m.EstimateFunc(ctx, frame, opts)
	}
	return Batch{}, nil
}

// Close calls CloseFunc and records the call.
func (m *Mock) Close() error {
	m.record(MockCall{Method: "Close"})
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Calls returns a copy of all recorded calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times method was invoked.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (m *Mock) record(c MockCall) {
	c.Time = time.Now()
	m.mu.Lock()
	m.calls = append(m.calls, c)
	m.mu.Unlock()
}

// MockLoader returns a Loader that hands out m.
func MockLoader(m *Mock) Loader {
	return LoaderFunc(func(ctx context.Context) (Model, error) {
		return m, nil
	})
}
