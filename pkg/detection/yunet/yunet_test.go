package yunet

import (
	"context"
	"errors"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/teslashibe/go-facecam/pkg/camera"
	"github.com/teslashibe/go-facecam/pkg/detection"
)

func TestParseRows(t *testing.T) {
	row := []float32{
		10, 20, 40, 60, // box
		15, 30, 45, 30, 30, 45, 20, 60, 40, 60, // landmarks
		0.93, // score
	}

	batch := parseRows([][]float32{row, {1, 2, 3}}, true)
	if len(batch) != 1 {
		t.Fatalf("expected 1 detection (short row skipped), got %d", len(batch))
	}

	d := batch[0]
	if d.TopLeft != (detection.Point{X: 10, Y: 20}) {
		t.Errorf("TopLeft: got %+v", d.TopLeft)
	}
	if d.BottomRight != (detection.Point{X: 50, Y: 80}) {
		t.Errorf("BottomRight: got %+v", d.BottomRight)
	}
	if len(d.Landmarks) != 5 {
		t.Fatalf("Landmarks: got %d, want 5", len(d.Landmarks))
	}
	if d.Landmarks[2] != (detection.Point{X: 30, Y: 45}) {
		t.Errorf("nose landmark: got %+v", d.Landmarks[2])
	}
	if d.Probability < 0.92 || d.Probability > 0.94 {
		t.Errorf("Probability: got %v", d.Probability)
	}

	plain := parseRows([][]float32{row}, false)
	if plain[0].Landmarks != nil {
		t.Error("landmarks should be omitted without annotation")
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig invalid: %v", err)
	}

	cfg := DefaultConfig()
	cfg.ModelPath = ""
	if cfg.Validate() == nil {
		t.Error("expected error for empty model path")
	}

	cfg = DefaultConfig()
	cfg.InputWidth = 0
	if cfg.Validate() == nil {
		t.Error("expected error for zero input size")
	}
}

func TestEnsureModel_Existing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.onnx")
	if err := os.WriteFile(path, []byte("weights"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Config{ModelPath: path, ModelURL: "http://127.0.0.1:1/unreachable"}
	if err := ensureModel(context.Background(), nil, cfg); err != nil {
		t.Errorf("existing model should not be fetched: %v", err)
	}
}

func TestEnsureModel_MissingWithoutURL(t *testing.T) {
	cfg := Config{ModelPath: filepath.Join(t.TempDir(), "missing.onnx")}
	if err := ensureModel(context.Background(), nil, cfg); err == nil {
		t.Error("expected error for missing model without URL")
	}
}

func TestEnsureModel_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("onnx-bytes"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "nested", "model.onnx")
	cfg := Config{ModelPath: path, ModelURL: srv.URL}

	if err := ensureModel(context.Background(), srv.Client(), cfg); err != nil {
		t.Fatalf("ensureModel: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fetched model: %v", err)
	}
	if string(data) != "onnx-bytes" {
		t.Errorf("content: got %q", data)
	}
}

func TestEnsureModel_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "model.onnx")
	cfg := Config{ModelPath: path, ModelURL: srv.URL}

	if err := ensureModel(context.Background(), srv.Client(), cfg); err == nil {
		t.Fatal("expected error for HTTP 404")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("no model file should be left behind")
	}
}

// TestYuNet_SolidImage runs the real model on a blank frame when the
// weights are present locally.
func TestYuNet_SolidImage(t *testing.T) {
	modelPath := findModelPath()
	if modelPath == "" {
		t.Skip("YuNet model not found, skipping test")
	}

	cfg := DefaultConfig()
	cfg.ModelPath = modelPath
	cfg.ModelURL = ""

	m, err := NewLoader(cfg).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer m.Close()

	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	for y := 0; y < 240; y++ {
		for x := 0; x < 320; x++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}

	batch, err := m.EstimateFaces(context.Background(), camera.NewFrame(img, 1), detection.FixedOptions())
	if err != nil {
		t.Fatalf("EstimateFaces: %v", err)
	}
	if len(batch) > 0 {
		t.Errorf("Expected no detections in solid color image, got %d", len(batch))
	}
}

func TestYuNet_RejectsTensorsAndEmptyFrames(t *testing.T) {
	modelPath := findModelPath()
	if modelPath == "" {
		t.Skip("YuNet model not found, skipping test")
	}

	cfg := DefaultConfig()
	cfg.ModelPath = modelPath

	d, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()

	opts := detection.FixedOptions()
	opts.ReturnTensors = true
	frame := camera.NewFrame(image.NewRGBA(image.Rect(0, 0, 32, 32)), 1)
	if _, err := d.EstimateFaces(context.Background(), frame, opts); !errors.Is(err, detection.ErrTensorsUnsupported) {
		t.Errorf("expected ErrTensorsUnsupported, got %v", err)
	}

	if _, err := d.EstimateFaces(context.Background(), camera.Frame{}, detection.FixedOptions()); err == nil {
		t.Error("expected error for empty frame")
	}
}

func findModelPath() string {
	if cwd, err := os.Getwd(); err == nil {
		// Walk up to find models directory
		for dir := cwd; dir != "/"; dir = filepath.Dir(dir) {
			modelPath := filepath.Join(dir, "models", "face_detection_yunet.onnx")
			if _, err := os.Stat(modelPath); err == nil {
				return modelPath
			}
		}
	}
	return ""
}
