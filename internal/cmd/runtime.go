package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"parking-facility/internal/config"
	"parking-facility/internal/logging"
	"parking-facility/internal/parking"
)

// app bundles what every subcommand needs: configuration, telemetry and
// the process logger.
type app struct {
	cfg       *config.Config
	telemetry *parking.TelemetryProvider
	logger    *slog.Logger
}

// flagBindings maps viper keys to command flags that override them.
type flagBindings map[string]string

func setup(cmd *cobra.Command, bindings flagBindings) (*app, error) {
	file, _ := cmd.Flags().GetString("config")

	v, err := config.NewViper(file)
	if err != nil {
		return nil, err
	}

	for key, name := range bindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	noTelemetry, _ := cmd.Flags().GetBool("no-telemetry")

	var telemetry *parking.TelemetryProvider
	if noTelemetry {
		telemetry = parking.NewInMemoryTelemetryProvider(sdkmetric.NewManualReader())
	} else {
		telemetry, err = parking.NewTelemetryProvider(parking.TelemetryConfig{
			ServiceName:  cfg.Service.Name,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			Environment:  cfg.Service.Environment,
		})
		if err != nil {
			return nil, err
		}
	}

	// Logs go to stderr so that shell replies on stdout stay readable.
	logger := logging.InitWithWriter(cfg.Service.Name, cfg.Service.Environment, cmd.ErrOrStderr())

	return &app{
		cfg:       cfg,
		telemetry: telemetry,
		logger:    logger,
	}, nil
}

// facility builds the configured facility and instruments it.
func (a *app) facility(opts ...parking.Option) (*parking.InstrumentedFacility, error) {
	facility, err := a.cfg.Facility.Build(a.logger, opts...)
	if err != nil {
		return nil, err
	}
	return parking.NewInstrumentedFacility(facility, a.telemetry)
}

// facilityOptions are used for facilities created at runtime by the shell or
// over HTTP.
func (a *app) facilityOptions() ([]parking.Option, error) {
	settler, err := a.cfg.Facility.Settler(a.logger)
	if err != nil {
		return nil, err
	}
	return []parking.Option{
		parking.WithLogger(a.logger),
		parking.WithSettler(settler),
	}, nil
}

func (a *app) shutdown() {
	a.logger.Info("shutting down telemetry")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.telemetry.Shutdown(ctx); err != nil {
		a.logger.Error("error shutting down telemetry", "error", err)
	}
}
