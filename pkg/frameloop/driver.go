// Package frameloop drives the per-tick cycle of the face overlay: read the
// current camera frame, run face detection, render the overlay and hand the
// result to the display presenters, then wait for the next refresh.
package frameloop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/go-facecam/internal/log"
	"github.com/teslashibe/go-facecam/pkg/camera"
	"github.com/teslashibe/go-facecam/pkg/detection"
	"github.com/teslashibe/go-facecam/pkg/overlay"
)

const (
	defaultStatusInterval = time.Second
	fpsSmoothing          = 0.1
)

// Detector is the inference side of the loop. *detection.Adapter implements it.
type Detector interface {
	Load(ctx context.Context) error
	Detect(ctx context.Context, frame camera.Frame) (detection.Batch, error)
	Close() error
}

// Options configures a Driver.
type Options struct {
	Source     camera.Source
	Detector   Detector
	Presenters []Presenter

	// Scheduler paces ticks. Defaults to a RefreshScheduler at 30 Hz.
	Scheduler Scheduler

	Logger *slog.Logger

	// OnStatus is called on every state transition and at most once per
	// StatusInterval while running. It may be called from different
	// goroutines and must not block.
	OnStatus       func(Status)
	StatusInterval time.Duration
}

// Driver owns the stream, the detector and the overlay canvas for one run
// of the loop. A Driver is single-use: once started it cannot be restarted.
type Driver struct {
	source         camera.Source
	detector       Detector
	presenters     []Presenter
	scheduler      Scheduler
	logger         *slog.Logger
	onStatus       func(Status)
	statusInterval time.Duration

	mu        sync.Mutex
	state     State
	session   string
	startedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}
	err       error
	failure   *Failure

	stream camera.Stream
	canvas *overlay.Canvas
	width  int
	height int

	ticks             uint64
	faces             int
	inferenceFailures uint64
	fps               float64
	lastTick          time.Time
	lastNotify        time.Time
}

// New creates a driver in StateUninitialized. The driver takes ownership of
// the detector and closes it when the loop ends.
func New(opts Options) *Driver {
	if opts.Scheduler == nil {
		opts.Scheduler = NewRefreshScheduler(DefaultRefreshInterval)
	}
	if opts.Logger == nil {
		opts.Logger = log.With("component", "frameloop")
	}
	if opts.StatusInterval <= 0 {
		opts.StatusInterval = defaultStatusInterval
	}
	return &Driver{
		source:         opts.Source,
		detector:       opts.Detector,
		presenters:     opts.Presenters,
		scheduler:      opts.Scheduler,
		logger:         opts.Logger,
		onStatus:       opts.OnStatus,
		statusInterval: opts.StatusInterval,
	}
}

// Start acquires the camera and loads the model concurrently, sizes the
// overlay to the stream and launches the loop. It returns once the loop is
// running, or with a *Failure if startup failed. The loop runs until ctx is
// cancelled, Stop is called or a fatal error occurs.
func (d *Driver) Start(ctx context.Context) error {
	if d.source == nil || d.detector == nil {
		return errors.New("frameloop: source and detector are required")
	}

	d.mu.Lock()
	if d.state != StateUninitialized {
		d.mu.Unlock()
		return ErrAlreadyStarted
	}
	runCtx, cancel := context.WithCancel(ctx)
	d.state = StateStarting
	d.session = uuid.NewString()
	d.cancel = cancel
	d.done = make(chan struct{})
	session := d.session
	d.mu.Unlock()

	d.logger.Info("starting frame loop", "session", session)
	d.notify()

	stream, err := d.startup(runCtx)
	if err != nil {
		if runCtx.Err() != nil {
			d.finish(StateStopped, nil)
			return runCtx.Err()
		}
		f := NewFailure(err)
		d.finish(StateFailed, f)
		return f
	}

	w, h := stream.Size()
	d.mu.Lock()
	d.stream = stream
	d.canvas = overlay.NewCanvas(w, h)
	d.width, d.height = w, h
	d.state = StateRunning
	d.startedAt = time.Now()
	d.mu.Unlock()

	d.logger.Info("frame loop running", "session", session, "width", w, "height", h)
	d.notify()

	go d.loop(runCtx)
	return nil
}

// startup runs the two suspension points in parallel and waits for both.
func (d *Driver) startup(ctx context.Context) (camera.Stream, error) {
	var stream camera.Stream

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := d.source.Acquire(gctx)
		if err != nil {
			return err
		}
		stream = s
		return nil
	})
	g.Go(func() error {
		return d.detector.Load(gctx)
	})

	if err := g.Wait(); err != nil {
		if stream != nil {
			stream.Close()
		}
		return nil, err
	}

	if w, h := stream.Size(); w <= 0 || h <= 0 {
		stream.Close()
		return nil, fmt.Errorf("%w: stream reported size %dx%d", camera.ErrDeviceUnavailable, w, h)
	}
	return stream, nil
}

func (d *Driver) loop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			d.finish(StateStopped, nil)
			return
		}

		if err := d.tick(ctx); err != nil {
			if errors.Is(err, ErrQuit) || ctx.Err() != nil {
				d.finish(StateStopped, nil)
				return
			}
			d.finish(StateFailed, NewFailure(err))
			return
		}

		if err := d.scheduler.Next(ctx); err != nil {
			d.finish(StateStopped, nil)
			return
		}
	}
}

// tick runs one capture, detect, render, present cycle. Inference failures
// are absorbed as an empty batch; any other error is fatal.
func (d *Driver) tick(ctx context.Context) error {
	frame, err := d.stream.Read()
	if err != nil {
		return err
	}

	batch, err := d.detector.Detect(ctx, frame)
	if err != nil {
		if !errors.Is(err, detection.ErrInference) {
			return err
		}
		d.logger.Warn("inference failed, clearing overlay", "frame", frame.Sequence, "error", err)
		batch = nil
		d.mu.Lock()
		d.inferenceFailures++
		d.mu.Unlock()
	}

	overlay.Render(d.canvas, batch)

	for _, p := range d.presenters {
		if err := p.Present(ctx, frame, d.canvas, batch); err != nil {
			if errors.Is(err, ErrQuit) {
				return err
			}
			d.logger.Warn("present failed", "error", err)
		}
	}

	d.recordTick(len(batch))
	return nil
}

func (d *Driver) recordTick(faces int) {
	now := time.Now()

	d.mu.Lock()
	d.ticks++
	d.faces = faces
	if !d.lastTick.IsZero() {
		if dt := now.Sub(d.lastTick).Seconds(); dt > 0 {
			inst := 1 / dt
			if d.fps == 0 {
				d.fps = inst
			} else {
				d.fps += (inst - d.fps) * fpsSmoothing
			}
		}
	}
	d.lastTick = now
	notify := now.Sub(d.lastNotify) >= d.statusInterval
	if notify {
		d.lastNotify = now
	}
	d.mu.Unlock()

	if notify {
		d.notify()
	}
}

// finish moves the driver into a terminal state and releases everything it
// owns. It runs exactly once per started driver.
func (d *Driver) finish(state State, f *Failure) {
	d.mu.Lock()
	d.state = state
	if f != nil {
		d.failure = f
		d.err = f
	}
	stream := d.stream
	cancel := d.cancel
	session := d.session
	d.mu.Unlock()

	cancel()
	if stream != nil {
		if err := stream.Close(); err != nil {
			d.logger.Warn("closing stream", "error", err)
		}
	}
	if err := d.detector.Close(); err != nil {
		d.logger.Warn("closing detector", "error", err)
	}
	for _, p := range d.presenters {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				d.logger.Warn("closing presenter", "error", err)
			}
		}
	}

	if f != nil {
		d.logger.Error("frame loop failed", "session", session, "kind", f.Kind.String(), "error", f.Err)
	} else {
		d.logger.Info("frame loop stopped", "session", session)
	}

	d.notify()
	close(d.done)
}

// Stop requests the loop to end. The request is observed at the top of the
// next tick, or immediately if the loop is waiting for a refresh.
func (d *Driver) Stop() {
	d.mu.Lock()
	cancel := d.cancel
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the loop has ended and returns its terminal error: nil
// after a clean stop, a *Failure otherwise. It returns nil immediately on a
// driver that was never started.
func (d *Driver) Wait() error {
	d.mu.Lock()
	done := d.done
	d.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// Run starts the driver and waits for it to finish. Cancelling ctx during
// startup is a clean stop.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		if !errors.Is(err, ErrAlreadyStarted) && d.State() == StateStopped {
			return nil
		}
		return err
	}
	return d.Wait()
}

// State returns the current lifecycle state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Status returns a snapshot for display hosts.
func (d *Driver) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := Status{
		State:             d.state.String(),
		Session:           d.session,
		StartedAt:         d.startedAt,
		Width:             d.width,
		Height:            d.height,
		Ticks:             d.ticks,
		Faces:             d.faces,
		InferenceFailures: d.inferenceFailures,
		FPS:               d.fps,
	}
	if d.failure != nil {
		s.FailureKind = d.failure.Kind.String()
		s.FailureMessage = d.failure.Kind.Message()
		s.Error = d.failure.Err.Error()
	}
	return s
}

func (d *Driver) notify() {
	if d.onStatus != nil {
		d.onStatus(d.Status())
	}
}
