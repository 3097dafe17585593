package window

import (
	"context"
	"testing"

	"github.com/teslashibe/go-facecam/pkg/camera"
	"github.com/teslashibe/go-facecam/pkg/overlay"
)

func TestQuitKey(t *testing.T) {
	tests := []struct {
		key  int
		want bool
	}{
		{-1, false},
		{27, true},
		{'q', true},
		{'Q', true},
		{' ', false},
	}

	for _, tt := range tests {
		if got := quitKey(tt.key); got != tt.want {
			t.Errorf("quitKey(%d) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestPresent_EmptyFrame(t *testing.T) {
	w := New("test")
	if err := w.Present(context.Background(), camera.Frame{}, overlay.NewCanvas(1, 1), nil); err == nil {
		t.Error("expected an error for an empty frame")
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close without a window: %v", err)
	}
}
