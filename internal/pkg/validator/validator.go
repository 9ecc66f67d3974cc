package validator

import (
	stderrors "errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/listing-microservice/internal/pkg/errors"
)

var (
	validate   *validator.Validate
	currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)
)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = validate.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return currencyRe.MatchString(fl.Field().String())
	})
}

// Validate runs struct validation and converts failures into a VALIDATION_ERROR
// with one detail entry per offending field.
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	return Translate(err)
}

func Translate(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.ErrInvalidRequest.Wrap(err)
	}

	details := make(map[string]interface{}, len(verrs))
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		details[field] = describe(fe)
		msgs = append(msgs, field+" "+describe(fe))
	}

	return errors.Validation(strings.Join(msgs, "; ")).WithDetails(details)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "min", "gte":
		return "must be >= " + fe.Param()
	case "max", "lte":
		return "must be <= " + fe.Param()
	case "currency":
		return "must be a 3-letter upper-case currency code"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed on " + fe.Tag()
	}
}
