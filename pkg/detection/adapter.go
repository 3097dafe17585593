package detection

import (
	"context"
	"fmt"
	"sync"

	"github.com/teslashibe/go-facecam/pkg/camera"
)

// Adapter owns the single loaded model instance and runs every inference
// with FixedOptions.
type Adapter struct {
	loader Loader

	mu    sync.RWMutex
	model Model
}

// NewAdapter creates an adapter that loads its model through loader.
func NewAdapter(loader Loader) *Adapter {
	return &Adapter{loader: loader}
}

// Load fetches and initializes the model. Calling Load again after success
// is a no-op.
func (a *Adapter) Load(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.model != nil {
		return nil
	}
	if a.loader == nil {
		return fmt.Errorf("%w: no loader configured", ErrModelLoad)
	}

	m, err := a.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	if m == nil {
		return fmt.Errorf("%w: loader returned no model", ErrModelLoad)
	}
	a.model = m
	return nil
}

// Loaded reports whether Load has completed.
func (a *Adapter) Loaded() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.model != nil
}

// Detect finds faces in frame.
func (a *Adapter) Detect(ctx context.Context, frame camera.Frame) (Batch, error) {
	a.mu.RLock()
	m := a.model
	a.mu.RUnlock()

	if m == nil {
		return nil, ErrNotLoaded
	}

	batch, err := m.EstimateFaces(ctx, frame, FixedOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInference, err)
	}
	return batch, nil
}

// Close releases the model.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.model == nil {
		return nil
	}
	err := a.model.Close()
	a.model = nil
	return err
}
