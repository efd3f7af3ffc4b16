package dto

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/gocomet/carpool/internal/domain/ride"
)

// RegisterValidators installs the custom binding tags on gin's validator.
// It must run before the router serves requests.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("place", validatePlace)
}

func validatePlace(fl validator.FieldLevel) bool {
	_, err := ride.NormalizePlace(fl.Field().String())
	return err == nil
}
