//go:build !linux

package webcam

// probeDevice is a no-op where the OS mediates camera permission itself;
// OpenCV's open failure is reported as device unavailable.
func probeDevice(id int) error {
	return nil
}
