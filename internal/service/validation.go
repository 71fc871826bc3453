package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/dept-calendar-api/internal/models"
	"github.com/noah-isme/dept-calendar-api/pkg/dateutil"
	appErrors "github.com/noah-isme/dept-calendar-api/pkg/errors"
)

func registerEventValidations(v *validator.Validate) {
	v.RegisterValidation("caldate", func(fl validator.FieldLevel) bool {
		_, err := dateutil.ParseDate(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := dateutil.ParseClock(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("eventtype", func(fl validator.FieldLevel) bool {
		return models.EventType(fl.Field().String()).Valid()
	})
}

// validationError converts validator output into a VALIDATION_ERROR naming
// the offending fields.
func validationError(err error, message string) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
		fmt.Sprintf("%s: %s", message, strings.Join(parts, ", ")))
}
