// captured is the capture daemon: it owns the camera session and exposes it
// over HTTP and websockets.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-capture/internal/config"
	"github.com/teslashibe/go-capture/internal/log"
	"github.com/teslashibe/go-capture/pkg/capture"
	"github.com/teslashibe/go-capture/pkg/device"
	"github.com/teslashibe/go-capture/pkg/photo"
	"github.com/teslashibe/go-capture/pkg/session"
	"github.com/teslashibe/go-capture/pkg/web"
)

func main() {
	configPath := flag.String("config", "captured.yaml", "Path to the YAML config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	backend := flag.String("backend", "", "Device backend: uvc or mock (overrides config)")
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Init("info")
		log.Error("configuration error", "err", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	log.Init(cfg.LogLevel)

	inv, err := newInventory(cfg.Backend)
	if err != nil {
		log.Error("device backend error", "err", err)
		os.Exit(1)
	}
	caps := device.Capabilities(device.Backend(cfg.Backend))
	log.Info("device backend ready",
		"backend", caps.Backend,
		"focus_point_of_interest", caps.FocusPointOfInterest,
		"subject_area_monitoring", caps.SubjectAreaMonitoring)

	orch := capture.New(capture.Deps{
		Session:       session.NewCore(),
		Inventory:     inv,
		Encoder:       &photo.GoCVEncoder{Quality: cfg.Photo.JPEGQuality},
		EncodeWorkers: cfg.Photo.EncodeWorkers,
	})
	defer orch.Close()

	// Apply the startup camera selection and configuration, then run.
	orch.Configure(capture.Options{IncludeAudio: cfg.Camera.IncludeAudio})
	orch.ChooseCamera(cfg.Camera.Selection())
	orch.Start()

	srv := web.NewServer(cfg.ListenAddr, orch, caps)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info("shutting down", "signal", s.String())
	case err := <-errCh:
		log.Error("server error", "err", err)
	}

	if err := srv.Shutdown(); err != nil {
		log.Error("shutdown error", "err", err)
	}
}

// newInventory builds the device backend. The mock backend carries two fake
// cameras and a microphone so the full pipeline runs without hardware.
func newInventory(backend string) (device.Inventory, error) {
	switch backend {
	case "uvc":
		return device.NewUVCInventory(), nil
	case "mock":
		return device.NewStaticInventory(
			device.Info{ID: "mock-back", Name: "Mock Back Wide", Kind: device.KindVideo,
				Type: device.TypeWideAngle, Position: device.PositionBack},
			device.Info{ID: "mock-front", Name: "Mock Front Wide", Kind: device.KindVideo,
				Type: device.TypeWideAngle, Position: device.PositionFront},
			device.Info{ID: "mock-mic", Name: "Mock Microphone", Kind: device.KindAudio},
		), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}
