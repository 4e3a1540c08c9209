package contract

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/huangsam/leadtime/schema"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// getValidator returns the shared validator, reporting fields by their config key.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// toConfigurationError converts the first validator failure into a ConfigurationError.
func toConfigurationError(err error, prefix string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &schema.ConfigurationError{Field: prefix, Reason: err.Error()}
	}
	fe := verrs[0]
	field := fe.Field()
	if prefix != "" {
		field = prefix + "." + field
	}
	var reason string
	switch fe.Tag() {
	case "gt":
		reason = fmt.Sprintf("must be greater than %s (received %v)", fe.Param(), fe.Value())
	case "lt":
		reason = fmt.Sprintf("must be less than %s (received %v)", fe.Param(), fe.Value())
	case "min":
		reason = fmt.Sprintf("must be at least %s (received %v)", fe.Param(), fe.Value())
	case "len":
		reason = fmt.Sprintf("must have length %s (received %q)", fe.Param(), fmt.Sprint(fe.Value()))
	case "numeric":
		reason = fmt.Sprintf("must be numeric (received %q)", fmt.Sprint(fe.Value()))
	case "required":
		reason = "is required"
	default:
		reason = fmt.Sprintf("failed %s check", fe.Tag())
	}
	return &schema.ConfigurationError{Field: field, Reason: reason}
}

// ValidateEstimatorSettings checks the bootstrap parameters.
func ValidateEstimatorSettings(s EstimatorSettings) error {
	if err := getValidator().Struct(s); err != nil {
		return toConfigurationError(err, "")
	}
	return nil
}

// ValidateEstimatorConfig checks an estimator config built outside of the CLI.
func ValidateEstimatorConfig(cfg schema.EstimatorConfig) error {
	return ValidateEstimatorSettings(EstimatorSettings{
		BootstrapCount:  cfg.BootstrapCount,
		BootstrapSample: cfg.BootstrapSample,
		Quantile:        cfg.Quantile,
	})
}

// ValidateBucketSpecs checks bucket inputs and converts them, keeping their order.
// Duplicate forecast hours are kept and an empty forecast hour list is allowed.
func ValidateBucketSpecs(specs []BucketSpecInput) ([]schema.BucketSpec, error) {
	if len(specs) == 0 {
		return nil, &schema.ConfigurationError{Field: "start_hours", Reason: "at least one start hour is required"}
	}
	out := make([]schema.BucketSpec, 0, len(specs))
	seen := make(map[string]struct{}, len(specs))
	for i, spec := range specs {
		prefix := fmt.Sprintf("start_hours[%d]", i)
		if err := getValidator().Struct(spec); err != nil {
			return nil, toConfigurationError(err, prefix)
		}
		hour, err := strconv.Atoi(spec.StartHour)
		if err != nil || hour < 0 || hour > 23 || spec.StartHour[0] < '0' || spec.StartHour[0] > '9' {
			return nil, &schema.ConfigurationError{Field: prefix + ".start_hour", Reason: fmt.Sprintf("must be between 00 and 23 (received %q)", spec.StartHour)}
		}
		if _, dup := seen[spec.StartHour]; dup {
			return nil, &schema.ConfigurationError{Field: prefix + ".start_hour", Reason: fmt.Sprintf("start hour %s is listed twice", spec.StartHour)}
		}
		seen[spec.StartHour] = struct{}{}
		hours := make([]int, len(spec.ForecastHours))
		copy(hours, spec.ForecastHours)
		out = append(out, schema.BucketSpec{StartHour: spec.StartHour, ForecastHours: hours})
	}
	return out, nil
}
