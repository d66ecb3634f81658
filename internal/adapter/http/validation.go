package http

import (
	"errors"
	"math"
	"regexp"

	"github.com/go-playground/validator/v10"

	"loan-pipeline/internal/domain/loan"
	"loan-pipeline/pkg/id"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

var reUSState = regexp.MustCompile(`^[A-Za-z]{2}$`)

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// borrower and loan ids = 32-char lowercase hex
	_ = v.RegisterValidation("hex32", func(fl validator.FieldLevel) bool {
		return id.Valid(fl.Field().String())
	})
	// money and ratios carry at most cents
	_ = v.RegisterValidation("dec2", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return math.Abs(f-(math.Round(f*100)/100)) < 1e-9
	})
	_ = v.RegisterValidation("usstate", func(fl validator.FieldLevel) bool {
		return reUSState.MatchString(fl.Field().String())
	})
	// accepts "fix_flip", "Fix Flip", "fix-flip"
	_ = v.RegisterValidation("product", func(fl validator.FieldLevel) bool {
		p, ok := loan.ParseProduct(fl.Field().String())
		return ok && p != ""
	})
	_ = v.RegisterValidation("loanstatus", func(fl validator.FieldLevel) bool {
		_, err := loan.ParseStatus(fl.Field().String())
		return err == nil
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "hex32":
			out = append(out, FieldError{Field: field, Message: "must be 32-char lowercase hex"})
		case "dec2":
			out = append(out, FieldError{Field: field, Message: "must have at most 2 decimal places"})
		case "usstate":
			out = append(out, FieldError{Field: field, Message: "must be a 2-letter state code"})
		case "product":
			out = append(out, FieldError{Field: field, Message: "must be a known loan product"})
		case "loanstatus":
			out = append(out, FieldError{Field: field, Message: "must be a known loan status"})
		case "oneof":
			out = append(out, FieldError{Field: field, Message: "must be one of: " + e.Param()})
		case "gt":
			out = append(out, FieldError{Field: field, Message: "must be greater than " + e.Param()})
		case "gte":
			out = append(out, FieldError{Field: field, Message: "must be greater than or equal to " + e.Param()})
		case "lte":
			out = append(out, FieldError{Field: field, Message: "must be less than or equal to " + e.Param()})
		case "max":
			out = append(out, FieldError{Field: field, Message: "must be at most " + e.Param() + " long"})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
