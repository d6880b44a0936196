package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their configuration key rather than the Go name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("notblank", validateNotBlank)
	_ = v.RegisterValidation("httpurl", validateHTTPURL)
	return v
}

// Validate checks cfg and returns a *ConfigError describing the first
// problem found.
func Validate(cfg *Config) error {
	if cfg == nil {
		return NewValidationError("config", "is nil")
	}

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return toConfigError(fieldErrs[0])
		}
		return err
	}

	if err := cfg.Observability.Validate(); err != nil {
		return fmt.Errorf("observability config: %w", err)
	}

	return nil
}

// toConfigError converts a validator failure into actionable guidance.
func toConfigError(fe validator.FieldError) *ConfigError {
	// Namespace is "Config.client.token"; drop the root type name
	_, field, _ := strings.Cut(fe.Namespace(), ".")

	switch fe.Tag() {
	case "required", "notblank":
		return NewMissingFieldError(field, envVar(field), field)
	case "httpurl":
		return NewValidationError(field, "must be an absolute http or https url")
	case "oneof":
		return NewInvalidFieldError(field, fmt.Sprintf("unsupported value %q", fe.Value()), strings.Fields(fe.Param()))
	case "gt":
		return NewValidationError(field, fmt.Sprintf("must be greater than %s", fe.Param()))
	case "gte", "lte":
		return NewValidationError(field, fmt.Sprintf("value %v is out of range", fe.Value()))
	default:
		return NewValidationError(field, fmt.Sprintf("failed %s validation", fe.Tag()))
	}
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateHTTPURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
