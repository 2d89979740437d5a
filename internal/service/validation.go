package service

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/gym-manager-api/internal/models"
	appErrors "github.com/noah-isme/gym-manager-api/pkg/errors"
)

// NewValidator returns a validator that understands decimal amounts and the
// gym's weekday and clock formats.
func NewValidator() *validator.Validate {
	return registerValidations(validator.New())
}

func registerValidations(v *validator.Validate) *validator.Validate {
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return models.Weekday(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return ValidClock(fl.Field().String())
	})
	return v
}

func (s *GymStateService) validate(req interface{}) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	return nil
}
