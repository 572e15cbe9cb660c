// Command edgeinfer serves LSTM inference over a serial link.
//
// It loads the model file once at startup, publishes health and Prometheus
// metrics over HTTP, and then runs the protocol loop until terminated. If
// the model cannot be loaded there is nothing valid to serve: the process
// logs the failure and idles forever rather than crash-looping, so a
// supervisor restart stays a deliberate operator action.
package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/edgeflow/edgeinfer/internal/config"
	"github.com/edgeflow/edgeinfer/internal/engine"
	"github.com/edgeflow/edgeinfer/internal/logger"
	"github.com/edgeflow/edgeinfer/internal/metrics"
	"github.com/edgeflow/edgeinfer/internal/model"
	"github.com/edgeflow/edgeinfer/internal/monitoring"
	"github.com/edgeflow/edgeinfer/internal/protocol"
	"github.com/edgeflow/edgeinfer/internal/serialio"
)

var (
	configPath = flag.String("config", "", "Path to TOML config file")
	modelPath  = flag.String("model", "", "Path to model file (overrides config)")
	device     = flag.String("device", "", "Serial device, or tcp:host:port (overrides config)")
	baud       = flag.Int("baud", 0, "Serial baud rate (overrides config)")
	listenAddr = flag.String("listen", "", "Health/metrics listen address (overrides config)")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			logger.Log.Error("config load failed", "error", err)
			os.Exit(1)
		}
	}
	if *modelPath != "" {
		cfg.ModelPath = *modelPath
	}
	if *device != "" {
		cfg.Device = *device
	}
	if *baud != 0 {
		cfg.BaudRate = *baud
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if err := cfg.Validate(); err != nil {
		logger.Log.Error("invalid configuration", "error", err)
		flag.Usage()
		os.Exit(1)
	}

	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	logger.Log.Info("edgeinfer starting",
		"model", cfg.ModelPath, "device", cfg.Device, "baud", cfg.BaudRate)

	m, err := model.Load(cfg.ModelPath, cfg.MemoryBudget)
	if err != nil {
		haltForever("model load failed", err)
	}
	logger.Log.Info("model loaded",
		"T", m.Header.T, "F", m.Header.F, "H", m.Header.H,
		"hidden", m.Header.Hidden, "floats", m.Header.TotalFloats())
	metrics.SetModelDimensions(m.Header)

	if cfg.ListenAddr != "" {
		health := monitoring.New(m, cfg.ModelPath)
		go func() {
			if err := health.Start(cfg.ListenAddr); err != nil {
				logger.Log.Warn("health server stopped", "error", err)
			}
		}()
	}

	conn, err := openLink(cfg)
	if err != nil {
		haltForever("link open failed", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := protocol.NewHandler(conn, m, engine.New(m), protocol.Timeouts{
		Marker:  cfg.MarkerTimeout(),
		Count:   cfg.CountTimeout(),
		Payload: cfg.PayloadTimeout(),
	})
	if err := h.Serve(ctx); err != nil && ctx.Err() == nil {
		// Hard link failure; same fail-safe stance as a failed load.
		haltForever("link failed", err)
	}
	logger.Log.Info("edgeinfer shutting down")
}

// openLink opens the configured serial device, or dials TCP when the device
// is given as tcp:host:port (useful against a socat bridge during
// development).
func openLink(cfg config.Config) (protocol.Conn, error) {
	if addr, ok := strings.CutPrefix(cfg.Device, "tcp:"); ok {
		return net.Dial("tcp", addr)
	}
	return serialio.Open(cfg.Device, cfg.BaudRate)
}

// haltForever is the fail-safe halt: log once, then idle. No retry, no
// restart, no further link traffic.
func haltForever(msg string, err error) {
	logger.Log.Error(msg+", halting", "error", err)
	for {
		time.Sleep(time.Hour)
	}
}
