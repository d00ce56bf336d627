package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// echoValidator plugs go-playground/validator into c.Validate.
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns the validator assigned to echo.Echo.Validator.
// Field names in messages are the JSON names of the payload.
func NewValidator() *echoValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	return &echoValidator{v: v}
}

func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// tagMessages renders one failed rule. %f is the field, %p the rule param.
var tagMessages = map[string]string{
	"required": "%f is required",
	"oneof":    "%f must be one of: %p",
	"datetime": "%f must be a date (YYYY-MM-DD)",
	"e164":     "%f must be an international phone number such as +256700000000",
	"email":    "%f must be a valid email",
}

func fieldMessage(fe validator.FieldError) string {
	tmpl, ok := tagMessages[fe.Tag()]
	if !ok {
		tmpl = "%f failed validation (" + fe.Tag() + ")"
	}
	return strings.NewReplacer("%f", fe.Field(), "%p", fe.Param()).Replace(tmpl)
}
