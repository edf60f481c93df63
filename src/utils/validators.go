package utils

import (
	"math"
	"reflect"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var orderNumberPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{3,31}$`)

// money accepts non-negative amounts with at most two decimal places.
var money validator.Func = func(fl validator.FieldLevel) bool {
	var v float64
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		v = fl.Field().Float()
	default:
		return false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return false
	}
	cents := v * 100
	return math.Abs(cents-math.Round(cents)) < 1e-6
}

var orderNumber validator.Func = func(fl validator.FieldLevel) bool {
	return orderNumberPattern.MatchString(fl.Field().String())
}

// RegisterValidators adds the custom tags to gin's validator.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("money", money)
		v.RegisterValidation("ordernumber", orderNumber)
	}
}
