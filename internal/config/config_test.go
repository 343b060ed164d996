package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-facility/internal/parking"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, parking.DefaultServiceName, cfg.Service.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.InDelta(t, 2.5, cfg.Facility.HourlyRate, 1e-9)
	require.Len(t, cfg.Facility.Levels, 3)
	assert.Empty(t, cfg.Validate())
}

func TestLoadDefaults(t *testing.T) {
	v, err := NewViper("")
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, Default().Facility.Levels, cfg.Facility.Levels)
	assert.Equal(t, "development", cfg.Service.Environment)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parking.yaml")
	content := `
service:
  name: garage
  environment: production
server:
  port: 9090
facility:
  hourly_rate: 4
  declined_payments: [mobile_app]
  levels:
    - motorcycle: 1
      compact: 2
    - large: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v, err := NewViper(path)
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "garage", cfg.Service.Name)
	assert.Equal(t, "production", cfg.Service.Environment)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.InDelta(t, 4.0, cfg.Facility.HourlyRate, 1e-9)
	assert.Equal(t, []string{"mobile_app"}, cfg.Facility.DeclinedPayments)
	assert.Equal(t, []LevelConfig{{Motorcycle: 1, Compact: 2}, {Large: 3}}, cfg.Facility.Levels)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PARKING_SERVER_PORT", "7070")
	t.Setenv("PARKING_FACILITY_HOURLY_RATE", "3.75")
	t.Setenv("PARKING_SERVICE_ENVIRONMENT", "staging")

	v, err := NewViper("")
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.InDelta(t, 3.75, cfg.Facility.HourlyRate, 1e-9)
	assert.Equal(t, "staging", cfg.Service.Environment)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty service name", func(c *Config) { c.Service.Name = " " }, "service.name"},
		{"port out of range", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"negative rate", func(c *Config) { c.Facility.HourlyRate = -1 }, "facility.hourly_rate"},
		{"no levels", func(c *Config) { c.Facility.Levels = nil }, "facility.levels"},
		{"negative count", func(c *Config) { c.Facility.Levels[1].Large = -2 }, "facility.levels[1].large"},
		{"unknown payment", func(c *Config) { c.Facility.DeclinedPayments = []string{"barter"} }, "facility.declined_payments[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			errs := cfg.Validate()
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	single := ValidationErrors{{Field: "server.port", Value: 0, Message: "must be between 1 and 65535"}}
	assert.Equal(t, "server.port: must be between 1 and 65535 (got: 0)", single.Error())

	multiple := ValidationErrors{
		{Field: "a", Value: 1, Message: "bad"},
		{Field: "b", Value: 2, Message: "worse"},
	}
	assert.Contains(t, multiple.Error(), "2 validation errors")
	assert.Empty(t, ValidationErrors{}.Error())
}

func TestBuildDefaultLayout(t *testing.T) {
	facility, err := Default().Facility.Build(discardLogger())
	require.NoError(t, err)

	assert.Equal(t, 3, facility.Levels())
	assert.Equal(t, map[parking.SizeClass]int{
		parking.Motorcycle: 8,
		parking.Compact:    45,
		parking.Large:      5,
	}, facility.Availability())
}

func TestBuildDeclinesConfiguredPayments(t *testing.T) {
	cfg := FacilityConfig{
		HourlyRate:       1,
		DeclinedPayments: []string{"cash"},
		Levels:           []LevelConfig{{Compact: 1}},
	}

	facility, err := cfg.Build(discardLogger())
	require.NoError(t, err)

	_, err = facility.Park(parking.NewVehicle("ABC-1", "red", parking.Car))
	require.NoError(t, err)

	_, err = facility.UnparkAndPay("ABC-1", parking.Cash)
	assert.ErrorIs(t, err, parking.ErrPaymentFailed)

	_, err = facility.UnparkAndPay("ABC-1", parking.DebitCard)
	assert.NoError(t, err)
}

func TestBuildRejectsBadLayout(t *testing.T) {
	_, err := FacilityConfig{HourlyRate: 1}.Build(discardLogger())
	assert.ErrorIs(t, err, parking.ErrInvalidLevel)

	_, err = FacilityConfig{HourlyRate: 1, Levels: []LevelConfig{{Compact: -1}}}.Build(discardLogger())
	assert.ErrorIs(t, err, parking.ErrInvalidSpotCount)
}
