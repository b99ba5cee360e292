package validator

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func oneOf(values ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, allowed := range values {
			if v == allowed {
				return true
			}
		}
		return false
	}
}

func registerCustomValidations() {
	_ = validate.RegisterValidation("role", oneOf("viewer", "vendor"))
	_ = validate.RegisterValidation("pricing_type", oneOf("fixed", "per_person"))
	_ = validate.RegisterValidation("weekday", oneOf(
		"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
	))
	_ = validate.RegisterValidation("booking_action", oneOf(
		"accept", "decline", "counter", "confirm_payment", "settle_offline", "confirm_settlement", "cancel",
	))
	_ = validate.RegisterValidation("iso_date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("iso_month", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01", fl.Field().String())
		return err == nil
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			out[field] = "This field is required"
		case "email":
			out[field] = "Invalid email format"
		case "min":
			out[field] = "Value is too short (min: " + fe.Param() + ")"
		case "max":
			out[field] = "Value is too long (max: " + fe.Param() + ")"
		case "gte":
			out[field] = "Value must be at least " + fe.Param()
		case "lte":
			out[field] = "Value must be at most " + fe.Param()
		case "url":
			out[field] = "Invalid URL format"
		case "role":
			out[field] = "Invalid role. Must be: viewer or vendor"
		case "pricing_type":
			out[field] = "Invalid pricing type. Must be: fixed or per_person"
		case "weekday":
			out[field] = "Invalid weekday name"
		case "booking_action":
			out[field] = "Unknown booking action"
		case "iso_date":
			out[field] = "Date must be formatted as YYYY-MM-DD"
		case "iso_month":
			out[field] = "Month must be formatted as YYYY-MM"
		default:
			out[field] = "Invalid value"
		}
	}
	return out
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
