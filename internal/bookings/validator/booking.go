package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gamehall/pkg/clock"
	"gamehall/pkg/logger"
	"gamehall/pkg/model"

	"github.com/go-playground/validator/v10"
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
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validate: validator.New(),
		logger:   log,
	}
}

// ValidateReserve runs the malformed-input tier only: field presence, positive
// ids, parseable timestamps, positive explicit hours. The interval ordering
// rule is a separate tier checked by the service after this one passes, so a
// request that is both malformed and inverted reports the malformed fields.
func (v *BookingValidator) ValidateReserve(req *model.ReserveRequest) (time.Time, time.Time, error) {
	var zero time.Time

	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return zero, zero, v.translateValidationErrors(validationErrs)
		}
		return zero, zero, err
	}

	var parseErrs ValidationErrors

	start, err := clock.Parse(req.StartTime)
	if err != nil {
		parseErrs = append(parseErrs, ValidationError{
			Field:   "StartTime",
			Message: fmt.Sprintf("start_time must match %q", clock.Layout),
		})
	}

	end, err := clock.Parse(req.EndTime)
	if err != nil {
		parseErrs = append(parseErrs, ValidationError{
			Field:   "EndTime",
			Message: fmt.Sprintf("end_time must match %q", clock.Layout),
		})
	}

	if len(parseErrs) > 0 {
		return zero, zero, parseErrs
	}

	return start, end, nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
