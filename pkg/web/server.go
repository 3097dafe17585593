// Package web serves the browser display: a single page that shows the
// camera feed with the face overlay composited on top, plus the driver
// status and any failure message.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"image"
	"image/jpeg"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-facecam/internal/log"
	"github.com/teslashibe/go-facecam/pkg/camera"
	"github.com/teslashibe/go-facecam/pkg/detection"
	"github.com/teslashibe/go-facecam/pkg/frameloop"
	"github.com/teslashibe/go-facecam/pkg/hub"
	"github.com/teslashibe/go-facecam/pkg/overlay"
)

//go:embed static
var staticFiles embed.FS

// DefaultListen keeps the display on the local machine.
const DefaultListen = "127.0.0.1:8080"

// Config configures the display server.
type Config struct {
	Listen string
	Camera camera.Config
	Logger *slog.Logger
}

// Server is the browser display host. It implements frameloop.Presenter.
type Server struct {
	app    *fiber.App
	listen string
	camera camera.Config
	logger *slog.Logger

	frameHub  *hub.Hub
	statusHub *hub.Hub

	status   frameloop.Status
	statusMu sync.RWMutex

	// Reused between ticks; only touched from Present
	composite *image.RGBA
	jpegBuf   bytes.Buffer
}

// NewServer creates the display server.
func NewServer(cfg Config) *Server {
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.Logger == nil {
		cfg.Logger = log.With("component", "web")
	}

	s := &Server{
		listen:    cfg.Listen,
		camera:    cfg.Camera,
		logger:    cfg.Logger,
		frameHub:  hub.New("frames", hub.Options{SendBuffer: 2, Logger: cfg.Logger}),
		statusHub: hub.New("status", hub.Options{Replay: true, SendBuffer: 8, Logger: cfg.Logger}),
		status:    frameloop.Status{State: frameloop.StateUninitialized.String()},
	}

	app := fiber.New(fiber.Config{
		AppName:               "facecam",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET",
	}))

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/camera", s.handleCamera)
	app.Get("/healthz", s.handleHealth)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/frames", websocket.New(s.handleFramesWS))
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	static, _ := fs.Sub(staticFiles, "static")
	app.Use("/", filesystem.New(filesystem.Config{
		Root:   http.FS(static),
		Index:  "index.html",
		Browse: false,
	}))

	s.app = app
	return s
}

// Serve runs the hubs and serves HTTP on ln until ctx is cancelled. On
// cancellation it returns once the server and both hubs have shut down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.frameHub.Run(ctx)
	go s.statusHub.Run(ctx)

	errc := make(chan error, 1)
	go func() { errc <- s.app.Listener(ln) }()

	select {
	case <-ctx.Done():
		if err := s.app.Shutdown(); err != nil {
			s.logger.Warn("web shutdown", "error", err)
		}
		<-errc
		<-s.frameHub.Done()
		<-s.statusHub.Done()
		return nil
	case err := <-errc:
		return err
	}
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.listen)
	if err != nil {
		return err
	}
	s.logger.Info("display ready", "url", "http://"+ln.Addr().String())
	return s.Serve(ctx, ln)
}

// Present composites the overlay onto the frame and pushes it to every
// connected page as a JPEG. Nothing is encoded while no page is open.
func (s *Server) Present(ctx context.Context, frame camera.Frame, canvas *overlay.Canvas, batch detection.Batch) error {
	if s.frameHub.ClientCount() == 0 {
		return nil
	}
	if frame.Empty() {
		return errors.New("web: empty frame")
	}

	s.composite = overlay.Composite(s.composite, frame.Image, canvas.Image())

	s.jpegBuf.Reset()
	if err := jpeg.Encode(&s.jpegBuf, s.composite, &jpeg.Options{Quality: s.quality()}); err != nil {
		return err
	}

	// The hub holds on to the slice, so hand it a copy
	s.frameHub.BroadcastBinary(bytes.Clone(s.jpegBuf.Bytes()))
	return nil
}

// UpdateStatus records the driver status and pushes it to status pages.
// It matches frameloop.Options.OnStatus.
func (s *Server) UpdateStatus(st frameloop.Status) {
	s.statusMu.Lock()
	s.status = st
	s.statusMu.Unlock()

	if err := s.statusHub.BroadcastJSON(st); err != nil {
		s.logger.Warn("broadcast status", "error", err)
	}
}

// Status returns the last recorded driver status.
func (s *Server) Status() frameloop.Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) quality() int {
	if q := s.camera.Quality; q >= 1 && q <= 100 {
		return q
	}
	return jpeg.DefaultQuality
}
