package yunet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/teslashibe/go-facecam/internal/httpc"
)

// maxModelBytes caps the download; the real weights are well under 1 MB.
const maxModelBytes = 64 << 20

// ensureModel makes sure cfg.ModelPath exists, fetching it from cfg.ModelURL
// when it does not. The file appears atomically or not at all.
func ensureModel(ctx context.Context, client *http.Client, cfg Config) error {
	_, err := os.Stat(cfg.ModelPath)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat model: %w", err)
	}
	if cfg.ModelURL == "" {
		return fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}
	if client == nil {
		client = httpc.Client
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.ModelURL, nil)
	if err != nil {
		return fmt.Errorf("build model request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch model: HTTP %d from %s", resp.StatusCode, cfg.ModelURL)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.ModelPath), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(cfg.ModelPath), ".yunet-*.onnx")
	if err != nil {
		return fmt.Errorf("create temp model: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(resp.Body, maxModelBytes+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("fetch model: empty body from %s", cfg.ModelURL)
	}
	if n > maxModelBytes {
		return fmt.Errorf("fetch model: body exceeds %d bytes", maxModelBytes)
	}

	if err := os.Rename(tmp.Name(), cfg.ModelPath); err != nil {
		return fmt.Errorf("install model: %w", err)
	}
	return nil
}
