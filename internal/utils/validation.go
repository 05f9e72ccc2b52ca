package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Local mobile (07XXXXXXXX, 01XXXXXXXX) or international +<8-15 digits>.
var msisdnPattern = regexp.MustCompile(`^(\+[1-9][0-9]{7,14}|0[1-9][0-9]{8})$`)

var (
	validate     *validator.Validate
	registerOnce sync.Once
)

func validMSISDN(fl validator.FieldLevel) bool {
	return msisdnPattern.MatchString(phoneSeparators.Replace(strings.TrimSpace(fl.Field().String())))
}

// RegisterValidators installs the custom tags on both the package validator
// and gin's binding engine. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		validate = validator.New()
		validate.SetTagName("binding")
		mustRegister(validate, "msisdn", validMSISDN)

		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			mustRegister(v, "msisdn", validMSISDN)
		}
	})
}

// mustRegister panics on a bad registration; a missing tag would otherwise
// make every field using it fail or pass silently.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validator: %v", tag, err))
	}
}

// Validate performs validation on a struct.
func Validate(s interface{}) error {
	RegisterValidators()
	return validate.Struct(s)
}

// FormatValidationError formats validation errors into a readable string.
func FormatValidationError(err error) string {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		messages := make([]string, 0, len(errs))
		for _, e := range errs {
			messages = append(messages, fieldMessage(e))
		}
		return strings.Join(messages, ", ")
	}
	return err.Error()
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "msisdn":
		return fmt.Sprintf("%s must be a phone number like 0712345678 or +254712345678", e.Field())
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", e.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", e.Field(), e.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	}
	return fmt.Sprintf("%s failed %s validation", e.Field(), e.Tag())
}

// BindAndValidate binds the request body to a struct and validates it.
// If validation fails, it sends a BadRequest response and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	RegisterValidators()
	if err := c.ShouldBindJSON(obj); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			BadRequest(c, "Validation failed: "+FormatValidationError(err))
			return false
		}
		BadRequest(c, "Invalid request payload: "+err.Error())
		return false
	}
	if err := Validate(obj); err != nil {
		BadRequest(c, "Validation failed: "+FormatValidationError(err))
		return false
	}
	return true
}
