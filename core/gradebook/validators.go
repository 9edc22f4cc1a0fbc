package gradebook

import (
	"reflect"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/sodiem/core"
)

var (
	gradeStatusTag  = "gradestatus"
	gradeStatusText = "{0} phải là một trong: " + StatusNotStarted + ", " + StatusInProgress + ", " + StatusSubmitted

	progressTag  = "progress"
	progressText = "{0} phải nằm trong khoảng 0 đến 100"
)

// InitValidators registers the gradebook custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(gradeStatusTag, gradeStatusValidation)
	core.RegisterCustomTranslation(validate, translator, gradeStatusTag, gradeStatusText)

	_ = validate.RegisterValidation(progressTag, progressValidation)
	core.RegisterCustomTranslation(validate, translator, progressTag, progressText)

	validate.RegisterCustomTypeFunc(optionalNumberValue, OptionalNumber{})
}

// optionalNumberValue lets tags such as `progress` see the number held by an OptionalNumber.
func optionalNumberValue(field reflect.Value) interface{} {
	if n, ok := field.Interface().(OptionalNumber); ok && n.Value != nil {
		return *n.Value
	}
	return nil
}

// gradeStatusValidation only allows one of Statuses; the empty string means "unchanged".
func gradeStatusValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || IsStatus(s)
}

// progressValidation checks that a number (or numeric string) lies within [0, 100].
func progressValidation(fl validator.FieldLevel) bool {
	field := fl.Field()
	var f float64
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		f = field.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f = float64(field.Int())
	case reflect.String:
		var err error
		if f, err = strconv.ParseFloat(field.String(), 64); err != nil {
			return false
		}
	default:
		return false
	}
	return f >= 0 && f <= 100
}
