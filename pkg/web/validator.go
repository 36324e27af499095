package web

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ValidPositive validates whether the field holds a decimal amount greater than zero.
var ValidPositive validator.Func = func(fl validator.FieldLevel) bool {
	d, ok := decimalField(fl)
	return ok && d.IsPositive()
}

// ValidNonNegative validates whether the field holds a decimal amount not below zero.
var ValidNonNegative validator.Func = func(fl validator.FieldLevel) bool {
	d, ok := decimalField(fl)
	return ok && !d.IsNegative()
}

func decimalField(fl validator.FieldLevel) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return decimal.Decimal{}, false
	}

	return d, true
}

// RegisterValidations registers the amount validators on v.
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("positive", ValidPositive); err != nil {
		return err
	}

	return v.RegisterValidation("nonnegative", ValidNonNegative)
}
