package config

import (
	"fmt"
	"strings"

	"parking-facility/internal/parking"
)

// ValidationError is a single invalid configuration value.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Validate reports every invalid value in c.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(c.Service.Name) == "" {
		errs = append(errs, ValidationError{Field: "service.name", Value: c.Service.Name, Message: "must not be empty"})
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, ValidationError{Field: "server.port", Value: c.Server.Port, Message: "must be between 1 and 65535"})
	}

	errs = append(errs, c.Facility.Validate()...)
	return errs
}

func (c FacilityConfig) Validate() []ValidationError {
	var errs []ValidationError

	if c.HourlyRate < 0 {
		errs = append(errs, ValidationError{Field: "facility.hourly_rate", Value: c.HourlyRate, Message: "must not be negative"})
	}
	if len(c.Levels) == 0 {
		errs = append(errs, ValidationError{Field: "facility.levels", Value: len(c.Levels), Message: "at least one level is required"})
	}

	for i, level := range c.Levels {
		for _, size := range parking.SizeClasses {
			if n := level.count(size); n < 0 {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("facility.levels[%d].%s", i, size),
					Value:   n,
					Message: "must not be negative",
				})
			}
		}
	}

	for i, name := range c.DeclinedPayments {
		if _, err := parking.ParsePaymentMethod(name); err != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("facility.declined_payments[%d]", i),
				Value:   name,
				Message: "unknown payment method",
			})
		}
	}

	return errs
}
