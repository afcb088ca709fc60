package models

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var skuPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// RegisterValidators agrega las reglas propias del catálogo al validador de gin
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("sku", func(fl validator.FieldLevel) bool {
		return skuPattern.MatchString(fl.Field().String())
	})
}
