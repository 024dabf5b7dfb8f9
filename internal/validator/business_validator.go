package validator

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// registerBusinessRules registers custom business rule validators
func (v *Validator) registerBusinessRules() {
	// Title must have visible characters and fit the column (1-200)
	v.validate.RegisterValidation("material_title", func(fl validator.FieldLevel) bool {
		title := fl.Field().String()
		return strings.TrimSpace(title) != "" && utf8.RuneCountInString(title) <= 200
	})

	// Free-form duration label such as "45 menit"
	v.validate.RegisterValidation("duration_label", func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(fl.Field().String()) <= 50
	})

	v.validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		if len(name) < 3 || len(name) > 50 {
			return false
		}
		for _, r := range name {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			case r == '.', r == '-', r == '_':
			default:
				return false
			}
		}
		return true
	})
}
