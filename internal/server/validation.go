package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"parking-facility/internal/parking"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// RequestValidator checks decoded request bodies.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() (*RequestValidator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("vehicle_type", validateVehicleType); err != nil {
		return nil, fmt.Errorf("register vehicle_type validator: %w", err)
	}
	if err := v.RegisterValidation("payment_method", validatePaymentMethod); err != nil {
		return nil, fmt.Errorf("register payment_method validator: %w", err)
	}

	return &RequestValidator{validate: v}, nil
}

func validateVehicleType(fl validator.FieldLevel) bool {
	_, err := parking.ParseVehicleType(fl.Field().String())
	return err == nil
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	_, err := parking.ParsePaymentMethod(fl.Field().String())
	return err == nil
}

// Validate returns ValidationErrors for tag violations.
func (v *RequestValidator) Validate(request any) error {
	if err := v.validate.Struct(request); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must have at least %s entries", err.Field(), err.Param())
		case "max":
			unit := "characters"
			if err.Kind() == reflect.Slice {
				unit = "entries"
			}
			message = fmt.Sprintf("%s must have at most %s %s", err.Field(), err.Param(), unit)
		case "gte":
			message = fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
		case "lte":
			message = fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
		case "vehicle_type":
			message = fmt.Sprintf("%s must be one of: motorcycle car truck", err.Field())
		case "payment_method":
			message = fmt.Sprintf("%s must be one of: credit_card debit_card cash mobile_app", err.Field())
		}

		// levels[1].large rather than FacilityCreateRequest.levels[1].large
		field := err.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   field,
			Message: message,
		})
	}

	return validationErrors
}
