// Package validation checks client input and reports every failing field at once.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"inventory/internal/models"
)

// FieldError is a single failed constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the aggregated result of validating one entity.
type Errors []FieldError

// Error joins all messages with ", ".
func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, ", ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// The rule name is fixed and the function is non-nil, so this cannot fail.
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.IsValidCategory(fl.Field().String())
	})
	return v
}

var productMessages = map[string]string{
	"Name.required":     "Product name is required",
	"Name.min":          "Product name must be at least 2 characters",
	"Quantity.required": "Quantity is required",
	"Quantity.gte":      "Quantity cannot be negative",
	"Price.required":    "Price is required",
	"Price.gte":         "Price cannot be negative",
	"Category.required": "Category is required",
	"Category.category": "Category must be one of: " + strings.Join(models.Categories, ", "),
	"Description.max":   "Description cannot exceed 500 characters",
	"SKU.max":           "SKU cannot exceed 64 characters",
}

var registerMessages = map[string]string{
	"Name.required":     "Name is required",
	"Email.required":    "Email is required",
	"Email.email":       "Please provide a valid email",
	"Password.required": "Password is required",
	"Password.min":      "Password must be at least 6 characters",
}

var federatedMessages = map[string]string{
	"FederatedID.required": "Federated id is required",
	"Email.required":       "Email is required",
	"Email.email":          "Please provide a valid email",
	"Avatar.max":           "Avatar URL cannot exceed 512 characters",
}

// Product validates a product payload. Callers re-validating an update pass
// the merged record's Input so every field is present.
func Product(in models.ProductInput) error {
	return check(in, productMessages)
}

// Register validates a password registration payload.
func Register(in models.RegisterInput) error {
	return check(in, registerMessages)
}

// Federated validates a federated identity profile.
func Federated(in models.FederatedInput) error {
	return check(in, federatedMessages)
}

func check(s any, messages map[string]string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := messages[fe.StructField()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
		out = append(out, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}
