package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"parking-facility/internal/parking"
)

const EnvPrefix = "PARKING"

// Config is the full runtime configuration of the service.
type Config struct {
	Service   ServiceConfig   `mapstructure:"service"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Server    ServerConfig    `mapstructure:"server"`
	Facility  FacilityConfig  `mapstructure:"facility"`
}

type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// FacilityConfig describes the layout a facility is built with.
type FacilityConfig struct {
	HourlyRate       float64       `mapstructure:"hourly_rate"`
	DeclinedPayments []string      `mapstructure:"declined_payments"`
	Levels           []LevelConfig `mapstructure:"levels"`
}

// LevelConfig is the number of spots of each size class on one level.
type LevelConfig struct {
	Motorcycle int `mapstructure:"motorcycle" json:"motorcycle"`
	Compact    int `mapstructure:"compact" json:"compact"`
	Large      int `mapstructure:"large" json:"large"`
}

func (l LevelConfig) count(size parking.SizeClass) int {
	switch size {
	case parking.Motorcycle:
		return l.Motorcycle
	case parking.Compact:
		return l.Compact
	case parking.Large:
		return l.Large
	default:
		return 0
	}
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        parking.DefaultServiceName,
			Environment: "development",
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: parking.DefaultOTLPEndpoint,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Facility: FacilityConfig{
			HourlyRate:       2.5,
			DeclinedPayments: []string{},
			Levels: []LevelConfig{
				{Motorcycle: 5, Compact: 10},
				{Compact: 15, Large: 5},
				{Motorcycle: 3, Compact: 20},
			},
		},
	}
}

// SetDefaults registers every default on v so that env vars can override
// them.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("service.name", defaults.Service.Name)
	v.SetDefault("service.environment", defaults.Service.Environment)

	v.SetDefault("telemetry.otlp_endpoint", defaults.Telemetry.OTLPEndpoint)

	v.SetDefault("server.port", defaults.Server.Port)

	v.SetDefault("facility.hourly_rate", defaults.Facility.HourlyRate)
	v.SetDefault("facility.declined_payments", defaults.Facility.DeclinedPayments)

	levels := make([]map[string]any, 0, len(defaults.Facility.Levels))
	for _, level := range defaults.Facility.Levels {
		levels = append(levels, map[string]any{
			"motorcycle": level.Motorcycle,
			"compact":    level.Compact,
			"large":      level.Large,
		})
	}
	v.SetDefault("facility.levels", levels)
}

// NewViper returns a viper instance with defaults, the PARKING_ env prefix
// and, when file is not empty, that config file loaded.
func NewViper(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	// PARKING_FACILITY_HOURLY_RATE for facility.hourly_rate
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file == "" {
		v.SetConfigName("parking")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/parking")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
		return v, nil
	}

	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", file, err)
	}
	return v, nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Settler returns a simulated settler that declines the configured payment
// methods.
func (c FacilityConfig) Settler(logger *slog.Logger) (*parking.SimulatedSettler, error) {
	declined := make([]parking.PaymentMethod, 0, len(c.DeclinedPayments))
	for _, name := range c.DeclinedPayments {
		method, err := parking.ParsePaymentMethod(name)
		if err != nil {
			return nil, err
		}
		declined = append(declined, method)
	}
	return parking.NewSimulatedSettler(logger, declined...), nil
}

// Build creates a facility with the configured levels and spots, settling
// through Settler. opts are applied afterwards and may replace the settler.
func (c FacilityConfig) Build(logger *slog.Logger, opts ...parking.Option) (*parking.Facility, error) {
	if logger == nil {
		logger = slog.Default()
	}

	settler, err := c.Settler(logger)
	if err != nil {
		return nil, err
	}

	base := []parking.Option{
		parking.WithLogger(logger),
		parking.WithSettler(settler),
	}

	facility, err := parking.NewFacility(len(c.Levels), c.HourlyRate, append(base, opts...)...)
	if err != nil {
		return nil, err
	}

	for number, level := range c.Levels {
		for _, size := range parking.SizeClasses {
			count := level.count(size)
			if count == 0 {
				continue
			}
			if err := facility.AddSpots(number, size, count); err != nil {
				return nil, fmt.Errorf("level %d: %w", number, err)
			}
		}
	}

	return facility, nil
}
