package controllers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/oapi-codegen/runtime/types"
)

var shiftTimeLayouts = []string{"15:04", "15:04:05"}

func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("shift_time", func(fl validator.FieldLevel) bool {
		_, ok := parseShiftTime(fl.Field().String())
		return ok
	})

	return v
}

func parseShiftTime(s string) (time.Time, bool) {
	for _, layout := range shiftTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (d *Dependens) validateStruct(s any) error {
	err := d.Validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return validationError("%s", err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag()))
	}

	return validationError("%s", strings.Join(msgs, "; "))
}

func requireDate(name string, d types.Date) error {
	if d.Time.IsZero() {
		return validationError("%s is required", name)
	}
	return nil
}

func requireDateRange(start, end types.Date) error {
	if err := requireDate("start_date", start); err != nil {
		return err
	}
	if err := requireDate("end_date", end); err != nil {
		return err
	}
	if end.Time.Before(start.Time) {
		return validationError("end_date %s is before start_date %s", end, start)
	}
	return nil
}

func requirePositiveID(name string, id int64) error {
	if id <= 0 {
		return validationError("%s must be a positive id", name)
	}
	return nil
}
