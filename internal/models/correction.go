package models

import (
	"github.com/go-playground/validator/v10"
)

// shared validator, rules are registered once at package init
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("error_type", func(fl validator.FieldLevel) bool {
		return ErrorType(fl.Field().String()).IsValid()
	}); err != nil {
		panic("failed to register error_type validation: " + err.Error())
	}
	return v
}

// Correction is one atomic edit proposed by the tutor.
// Explanation holds exactly [category, detail].
type Correction struct {
	Original    string    `json:"original" validate:"required"`
	Corrected   string    `json:"corrected" validate:"required"`
	Explanation []string  `json:"explanation" validate:"len=2"`
	ErrorType   ErrorType `json:"error_type" validate:"required,error_type"`
}

func (c *Correction) Validate() error {
	return validate.Struct(c)
}
