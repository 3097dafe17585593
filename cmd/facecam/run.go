package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/go-facecam/internal/config"
	"github.com/teslashibe/go-facecam/internal/log"
	"github.com/teslashibe/go-facecam/pkg/camera/webcam"
	"github.com/teslashibe/go-facecam/pkg/detection"
	"github.com/teslashibe/go-facecam/pkg/detection/yunet"
	"github.com/teslashibe/go-facecam/pkg/display/window"
	"github.com/teslashibe/go-facecam/pkg/frameloop"
	"github.com/teslashibe/go-facecam/pkg/web"
)

var flags struct {
	config   string
	listen   string
	device   int
	preset   string
	display  string
	model    string
	logLevel string
	logFile  string
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVarP(&flags.config, "config", "c", "", "YAML config file")
	f.StringVar(&flags.preset, "preset", "", "camera preset (default, vga, 720p, 1080p)")
	f.IntVarP(&flags.device, "device", "d", 0, "camera device index")
	f.StringVar(&flags.model, "model", "", "path to the YuNet ONNX model")
	f.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")
	f.StringVar(&flags.logFile, "log-file", "", "also write logs to this rotating file")

	rootCmd.Flags().StringVar(&flags.display, "display", "", "browser, window or both")
	rootCmd.Flags().StringVar(&flags.listen, "listen", "", "browser display address")
}

// loadConfig reads the config, overlays any flags set on cmd and validates
// the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flags.config)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("preset") {
		cfg.Preset = flags.preset
	}
	if changed("device") {
		cfg.Camera.DeviceID = flags.device
	}
	if changed("model") {
		cfg.Model.ModelPath = flags.model
	}
	if changed("display") {
		cfg.Display.Mode = flags.display
	}
	if changed("listen") {
		cfg.Display.Listen = flags.listen
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if changed("log-file") {
		cfg.Log.File = flags.logFile
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}

	log.InitWithOptions(log.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	return cfg, nil
}

func runOverlay(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Println("📷 facecam")
	fmt.Println("==========")
	fmt.Printf("Camera:  device %d, %dx%d @ %d fps\n",
		cfg.Camera.DeviceID, cfg.Camera.Width, cfg.Camera.Height, cfg.Camera.Framerate)
	fmt.Printf("Model:   %s\n", cfg.Model.ModelPath)
	fmt.Printf("Display: %s\n", cfg.Display.Mode)

	var (
		presenters []frameloop.Presenter
		server     *web.Server
	)
	if cfg.Display.WantsBrowser() {
		server = web.NewServer(web.Config{Listen: cfg.Display.Listen, Camera: cfg.Camera})
		presenters = append(presenters, server)
		fmt.Printf("🌐 Open http://%s\n", cfg.Display.Listen)
	}
	if cfg.Display.WantsWindow() {
		presenters = append(presenters, window.New(cfg.Display.Title))
		fmt.Println("🪟 Press Esc or q in the window to quit")
	}

	driver := frameloop.New(frameloop.Options{
		Source:     webcam.New(cfg.Camera),
		Detector:   detection.NewAdapter(yunet.NewLoader(cfg.Model)),
		Presenters: presenters,
		Scheduler:  frameloop.NewRefreshScheduler(cfg.Camera.RefreshInterval()),
		OnStatus: func(st frameloop.Status) {
			if server != nil {
				server.UpdateStatus(st)
			}
		},
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if server != nil {
		g.Go(func() error {
			return server.ListenAndServe(gctx)
		})
	}

	g.Go(func() error {
		fmt.Println("🔄 Starting (Ctrl+C to stop)")
		err := driver.Run(gctx)
		report(err)

		// Keep the page up so the failure stays visible
		if err != nil && server != nil && gctx.Err() == nil {
			fmt.Println("   Details are shown in the browser; press Ctrl+C to exit")
			<-gctx.Done()
			return err
		}
		cancel()
		return err
	})

	err = g.Wait()
	fmt.Println("\n👋 Goodbye!")
	return err
}

func report(err error) {
	var f *frameloop.Failure
	switch {
	case err == nil:
		fmt.Println("⏹️  Stopped")
	case errors.As(err, &f):
		fmt.Printf("❌ %s\n", f.Kind.Message())
		fmt.Printf("   %v\n", f.Err)
	default:
		fmt.Printf("❌ %v\n", err)
	}
}
