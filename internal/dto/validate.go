package dto

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// Validate checks the validate tags on a request payload.
func Validate(s interface{}) error {
	return validate.Struct(s)
}
