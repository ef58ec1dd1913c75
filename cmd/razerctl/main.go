package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rhelper/razerctl/internal/config"
	"github.com/rhelper/razerctl/internal/device"
	"github.com/rhelper/razerctl/internal/errors"
	"github.com/rhelper/razerctl/internal/logger"
	"github.com/rhelper/razerctl/internal/scheduler"
	"github.com/rhelper/razerctl/internal/telemetry"
)

var (
	cfg      *config.Config
	recorder telemetry.Recorder
)

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel == "debug", cfg.LogLevel == "info", logger.IsService())
	if cfg.LogLevel == "error" {
		logger.SetLogLevel(logger.ErrorLevel)
	}
	logger.Debug().Msg("Config loaded")

	if cfg.Telemetry {
		recorder, err = telemetry.NewRepository(telemetry.Config{DBPath: cfg.Database})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open telemetry database")
		}
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	sched := scheduler.New(scheduler.Options{
		OpenDevice: func() (device.Controller, error) {
			return device.Detect()
		},
		ACProfile:      profileFromConfig(cfg.ACProfile),
		BatteryProfile: profileFromConfig(cfg.BatteryProfile),
		StatusMessages: cfg.StatusMessages,
		Recorder:       recorder,
	})

	if err := loop(ctx, sched); err != nil {
		logger.Error().Err(err).Msg("error in main loop")
	}
	cleanup(sched)
}

// loop drives the scheduler at the configured cadence. There is no user
// interface in this build; the ticker stands in for the host frame loop.
func loop(ctx context.Context, sched *scheduler.Scheduler) error {
	sched.Start()

	ticker := time.NewTicker(time.Duration(cfg.IntervalMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			sched.Tick(false)
			logState(sched)
		}
	}
}

var lastLoggedMessage string

func logState(sched *scheduler.Scheduler) {
	if msg := sched.CurrentMessage(); msg != nil && msg.Content != lastLoggedMessage {
		lastLoggedMessage = msg.Content
		logger.Info().Str("kind", msg.Kind.String()).Msg(msg.Content)
	}
}

func profileFromConfig(p config.ProfileConfig) scheduler.Profile {
	return scheduler.Profile{
		PerfMode:       p.PerfMode(),
		LogoMode:       p.Logo(),
		Brightness:     p.KeyboardBrightness,
		LightsAlwaysOn: p.LightsAlwaysOn,
		BatteryCare:    p.BatteryCare,
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func cleanup(sched *scheduler.Scheduler) {
	sched.Close()

	if recorder != nil {
		if err := recorder.Close(); err != nil {
			logger.Warn().
				Str("code", string(errors.CodeOf(err))).
				Err(err).
				Msg("failed to close telemetry database")
		}
	}

	logger.Info().Msg("Shutdown complete")
}
