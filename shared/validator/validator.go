// Package validator wraps go-playground/validator with english
// translations so handlers can return readable field-level errors.
package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// Validator validates request payloads and translates failures into a
// field→message map keyed by the json field name.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// New creates a Validator with default english translations registered.
func New() (*Validator, error) {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	if err := entranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Validator{validate: validate, trans: trans}, nil
}

// Struct validates the given payload. It returns nil when the payload is
// valid, otherwise a map of field name to translated message.
func (v *Validator) Struct(payload any) map[string]string {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}

	fieldErrors := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			fieldErrors[fieldError.Field()] = fieldError.Translate(v.trans)
		}
	} else {
		fieldErrors["payload"] = err.Error()
	}

	return fieldErrors
}
