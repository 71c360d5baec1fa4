package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest checks a bound request DTO against its validate tags and
// returns a single readable error listing every failed field.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var messages []string
	for _, fieldErr := range validationErrors {
		messages = append(messages, fmt.Sprintf(
			"field '%s' failed on the '%s' rule",
			fieldErr.Field(), fieldErr.Tag(),
		))
	}
	return fmt.Errorf("%s", strings.Join(messages, "; "))
}
