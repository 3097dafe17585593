package yunet

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"sync"

	"github.com/teslashibe/go-facecam/internal/log"
	"github.com/teslashibe/go-facecam/pkg/camera"
	"github.com/teslashibe/go-facecam/pkg/detection"
	"gocv.io/x/gocv"
)

// Detector uses OpenCV's FaceDetectorYN for face detection
type Detector struct {
	detector gocv.FaceDetectorYN
	config   Config
	logger   *slog.Logger
	mu       sync.Mutex // Protects inference
}

// New creates a YuNet detector from a model file already on disk.
func New(cfg Config) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Create FaceDetectorYN with initial size (updated per frame)
	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"",                                        // No config file needed for ONNX
		image.Pt(cfg.InputWidth, cfg.InputHeight), // Initial input size
		ScoreThreshold,
		NMSThreshold,
		TopK,
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &Detector{
		detector: detector,
		config:   cfg,
		logger:   log.With("component", "yunet"),
	}, nil
}

// Loader fetches the weights if needed and builds a Detector.
type Loader struct {
	Config Config

	// Client is used for the one-time weight download; nil uses httpc.Client.
	Client *http.Client
}

// NewLoader returns a loader for cfg.
func NewLoader(cfg Config) *Loader {
	return &Loader{Config: cfg}
}

// Load implements detection.Loader.
func (l *Loader) Load(ctx context.Context) (detection.Model, error) {
	if err := l.Config.Validate(); err != nil {
		return nil, err
	}
	if err := ensureModel(ctx, l.Client, l.Config); err != nil {
		return nil, err
	}
	return New(l.Config)
}

// EstimateFaces finds faces in the frame and returns pixel coordinates.
func (d *Detector) EstimateFaces(ctx context.Context, frame camera.Frame, opts detection.Options) (detection.Batch, error) {
	if opts.ReturnTensors {
		return nil, detection.ErrTensorsUnsupported
	}
	if frame.Empty() {
		return nil, fmt.Errorf("empty frame")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := gocv.ImageToMatRGB(frame.Image)
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	// Update detector input size to match image
	d.detector.SetInputSize(image.Pt(img.Cols(), img.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()

	d.detector.Detect(img, &faces)

	rows := make([][]float32, faces.Rows())
	for r := range rows {
		row := make([]float32, rowLength)
		for c := 0; c < rowLength && c < faces.Cols(); c++ {
			row[c] = faces.GetFloatAt(r, c)
		}
		rows[r] = row
	}

	batch := parseRows(rows, opts.AnnotateBoxes)
	if opts.FlipHorizontal {
		batch = detection.FlipHorizontal(batch, frame.Width)
	}

	if len(batch) > 0 {
		d.logger.Debug("faces found", "count", len(batch), "frame", frame.Sequence)
	}
	return batch, nil
}

// parseRows converts FaceDetectorYN output rows into detections.
// Row layout: 0-3 box (x, y, w, h), 4-13 landmarks, 14 score.
func parseRows(rows [][]float32, annotate bool) detection.Batch {
	batch := make(detection.Batch, 0, len(rows))
	for _, row := range rows {
		if len(row) < rowLength {
			continue
		}
		x, y := float64(row[0]), float64(row[1])
		w, h := float64(row[2]), float64(row[3])

		d := detection.Detection{
			TopLeft:     detection.Point{X: x, Y: y},
			BottomRight: detection.Point{X: x + w, Y: y + h},
			Probability: float64(row[14]),
		}
		if annotate {
			d.Landmarks = make([]detection.Point, landmarkCount)
			for i := 0; i < landmarkCount; i++ {
				d.Landmarks[i] = detection.Point{
					X: float64(row[4+2*i]),
					Y: float64(row[5+2*i]),
				}
			}
		}
		batch = append(batch, d)
	}
	return batch
}

// Close releases the detector resources
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detector.Close()
	return nil
}

var (
	_ detection.Model  = (*Detector)(nil)
	_ detection.Loader = (*Loader)(nil)
)
