// facecam shows a live webcam feed with face boxes and landmarks drawn on
// top, in the browser or a native window.
//
// Usage:
//
//	facecam                       # browser display on http://127.0.0.1:8080
//	facecam --display window      # OpenCV window
//	facecam --preset 720p --device 1
//	facecam presets
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is the application version.
const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "facecam",
	Short:         "Live webcam face detection overlay",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runOverlay,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
