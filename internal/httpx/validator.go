package httpx

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate = validator.New()
	aliasRe  = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("alias", func(fl validator.FieldLevel) bool {
		return aliasRe.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// ValidateStruct runs `validate` tags on s and converts failures into
// response details. The field name is taken from the json tag when present.
func ValidateStruct(s any) []ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ErrorDetail{{Field: "", Message: err.Error()}}
	}

	details := make([]ErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		param := fe.Param()

		var message string
		switch fe.Tag() {
		case "required", "notblank":
			message = fmt.Sprintf("%s is required", field)
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s", field, param)
		case "max":
			message = fmt.Sprintf("%s must be at most %s", field, param)
		case "gte", "lte":
			message = fmt.Sprintf("%s is out of range (%s %s)", field, fe.Tag(), param)
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", field, param)
		case "alias":
			message = fmt.Sprintf("%s may only contain letters, digits and underscores", field)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		if field != "" {
			field = strings.ToLower(field[:1]) + field[1:]
		}
		details = append(details, ErrorDetail{
			Field:   field,
			Message: message,
		})
	}
	return details
}
