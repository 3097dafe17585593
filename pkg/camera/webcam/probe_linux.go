//go:build linux

package webcam

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/teslashibe/go-facecam/pkg/camera"
)

// probeDevice opens the V4L2 node to tell a missing camera from one the
// user may not access. OpenCV reports both as a failed open.
func probeDevice(id int) error {
	path := fmt.Sprintf("/dev/video%d", id)
	f, err := os.Open(path)
	switch {
	case err == nil:
		f.Close()
		return nil
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", camera.ErrPermissionDenied, path)
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s does not exist", camera.ErrDeviceUnavailable, path)
	default:
		return fmt.Errorf("%w: %v", camera.ErrDeviceUnavailable, err)
	}
}
