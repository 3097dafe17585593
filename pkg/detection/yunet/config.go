// Package yunet implements detection.Model with OpenCV's FaceDetectorYN and
// the pretrained YuNet ONNX weights.
package yunet

import "fmt"

// Fixed inference parameters. Thresholds are deliberately not configurable.
const (
	ScoreThreshold = 0.75
	NMSThreshold   = 0.3
	TopK           = 5000

	// Output row layout: x, y, w, h, five landmark (x, y) pairs, score.
	rowLength     = 15
	landmarkCount = 5
)

// DefaultModelURL is the upstream location of the YuNet weights.
const DefaultModelURL = "https://github.com/opencv/opencv_zoo/raw/main/models/face_detection_yunet/face_detection_yunet_2023mar.onnx"

// Config holds detector configuration
type Config struct {
	ModelPath   string `yaml:"model_path"`   // Path to ONNX model
	ModelURL    string `yaml:"model_url"`    // Fetched once into ModelPath when missing; empty disables fetching
	InputWidth  int    `yaml:"input_width"`  // Initial model input width
	InputHeight int    `yaml:"input_height"` // Initial model input height
}

// DefaultConfig returns production defaults for YuNet
func DefaultConfig() Config {
	return Config{
		ModelPath:   "models/face_detection_yunet.onnx",
		ModelURL:    DefaultModelURL,
		InputWidth:  320,
		InputHeight: 320,
	}
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("yunet: model path required")
	}
	if c.InputWidth <= 0 || c.InputHeight <= 0 {
		return fmt.Errorf("yunet: input size must be positive, got %dx%d", c.InputWidth, c.InputHeight)
	}
	return nil
}
