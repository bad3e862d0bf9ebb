package types

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared by all entities; validator caches struct metadata so a
// single instance is the intended usage.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return IsValidPaymentMethod(fl.Field().String())
	})
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsInf(f, 0) && !math.IsNaN(f)
	})
	return v
}

// fieldErrors maps struct field names to the sentinel reported for them.
var fieldErrors = map[string]error{
	"Name":          ErrInvalidName,
	"Price":         ErrInvalidPrice,
	"Quantity":      ErrInvalidQuantity,
	"Total":         ErrInvalidTotal,
	"PaymentMethod": ErrInvalidPaymentMethod,
	"ProductID":     ErrInvalidID,
}

// validateStruct runs the tag rules on v and converts every failed field into
// its sentinel error, joined so errors.Is matches any of them.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := make([]error, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		sentinel, ok := fieldErrors[fieldErr.Field()]
		if !ok {
			sentinel = ErrInvalidData
		}
		if sentinel == ErrInvalidPaymentMethod {
			errs = append(errs, fmt.Errorf("%w %q: want one of %s", sentinel, fieldErr.Value(), strings.Join(PaymentMethods(), ", ")))
			continue
		}
		errs = append(errs, fmt.Errorf("%w: %s failed on rule %q", sentinel, fieldErr.Field(), fieldErr.Tag()))
	}
	return errors.Join(errs...)
}
