package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"campus-rms-console/internal/model"
	"campus-rms-console/internal/parse"
)

var registerOnce sync.Once

// registerValidators installs the console's struct tags on gin's validator.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		if err := registerRules(v); err != nil {
			panic(fmt.Sprintf("api: failed to register validation rules: %v", err))
		}
	})
}

// registerRules registers the tags used in request structs.
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("timeslot", isTimeSlot); err != nil {
		return err
	}
	if err := v.RegisterValidation("booking_date", isBookingDate); err != nil {
		return err
	}
	if err := v.RegisterValidation("role", isRole); err != nil {
		return err
	}
	if err := v.RegisterValidation("resource_type", isResourceType); err != nil {
		return err
	}
	return nil
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// isTimeSlot accepts only the nine literal slots.
func isTimeSlot(fl validator.FieldLevel) bool {
	return model.IsTimeSlot(fl.Field().String())
}

// isBookingDate accepts a YYYY-MM-DD calendar date.
func isBookingDate(fl validator.FieldLevel) bool {
	_, err := parse.ParseDate(fl.Field().String(), time.UTC)
	return err == nil
}

func isRole(fl validator.FieldLevel) bool {
	return model.Role(fl.Field().String()).Valid()
}

func isResourceType(fl validator.FieldLevel) bool {
	return model.ResourceType(fl.Field().String()).Valid()
}

// bindingMessage turns a binding failure into a user-facing sentence and
// reports whether it was a validation failure (as opposed to malformed JSON).
func bindingMessage(err error) (string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body", false
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field), true
	case "email":
		return "Enter a valid email address", true
	case "timeslot":
		return "Select one of the available time slots", true
	case "booking_date":
		return "Enter the booking date as YYYY-MM-DD", true
	case "role":
		return "Select a valid role", true
	case "resource_type":
		return "Select a valid resource type", true
	case "gt", "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, minOf(fe)), true
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param()), true
	}
	return fmt.Sprintf("%s is invalid", field), true
}

func minOf(fe validator.FieldError) string {
	if fe.Tag() == "gt" {
		if fe.Param() == "0" {
			return "1"
		}
		return "more than " + fe.Param()
	}
	return fe.Param()
}
