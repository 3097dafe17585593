package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-facecam/pkg/camera"
	"github.com/teslashibe/go-facecam/pkg/hub"
)

// CameraInfo describes the capture configuration shown on the page.
type CameraInfo struct {
	Config  camera.Config `json:"config"`
	Presets []string      `json:"presets"`
}

// handleStatus returns the current driver status
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.Status())
}

// handleCamera returns the requested capture settings
func (s *Server) handleCamera(c *fiber.Ctx) error {
	return c.JSON(CameraInfo{
		Config:  s.camera,
		Presets: camera.PresetNames(),
	})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"ok":      true,
		"clients": s.frameHub.ClientCount(),
	})
}

// handleFramesWS streams composited JPEG frames
func (s *Server) handleFramesWS(c *websocket.Conn) {
	serveClient(s.frameHub, c)
}

// handleStatusWS streams driver status as JSON
func (s *Server) handleStatusWS(c *websocket.Conn) {
	serveClient(s.statusHub, c)
}

func serveClient(h *hub.Hub, c *websocket.Conn) {
	client := hub.NewClient(h, c)
	if client == nil {
		c.Close()
		return
	}
	client.Run()
}
