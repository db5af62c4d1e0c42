package http

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/GopalDev98/creditcard-backend/internal/domain/apperr"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	rePAN     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	rePincode = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	rePhone   = regexp.MustCompile(`^(\+91)?[6-9]\d{9}$`)
)

// dateLayouts are the accepted date-of-birth formats.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			name, _, _ = strings.Cut(f.Tag.Get("query"), ",")
		}
		return name
	})

	// decimals validate as float64; JSON null or absent is "no value"
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		d, ok := f.Interface().(decimal.NullDecimal)
		if !ok || !d.Valid {
			return nil
		}
		return d.Decimal.InexactFloat64()
	}, decimal.NullDecimal{})

	// PAN: 5 letters, 4 digits, 1 letter (callers upper-case first)
	_ = v.RegisterValidation("pan", func(fl validator.FieldLevel) bool {
		return rePAN.MatchString(fl.Field().String())
	})
	// Indian PIN code, no leading zero
	_ = v.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
		return rePincode.MatchString(fl.Field().String())
	})
	// Indian mobile number, optional +91
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return rePhone.MatchString(fl.Field().String())
	})
	// YYYY-MM-DD or RFC3339
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := parseDate(fl.Field().String())
		return err == nil
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("invalid date")
}

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := fieldPath(e.Namespace())
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "pan":
			out = append(out, FieldError{Field: field, Message: "must be a valid PAN card number (e.g. ABCDE1234F)"})
		case "pincode":
			out = append(out, FieldError{Field: field, Message: "must be a valid 6-digit pincode"})
		case "phone":
			out = append(out, FieldError{Field: field, Message: "must be a valid Indian mobile number"})
		case "isodate":
			out = append(out, FieldError{Field: field, Message: "must be a date (YYYY-MM-DD or RFC3339)"})
		case "email":
			out = append(out, FieldError{Field: field, Message: "must be a valid email address"})
		case "oneof":
			out = append(out, FieldError{Field: field, Message: "must be one of: " + strings.ReplaceAll(e.Param(), " ", ", ")})
		case "min":
			out = append(out, FieldError{Field: field, Message: "must be at least " + e.Param() + unit(e)})
		case "max":
			out = append(out, FieldError{Field: field, Message: "must be at most " + e.Param() + unit(e)})
		case "gte":
			out = append(out, FieldError{Field: field, Message: "must be greater than or equal to " + e.Param()})
		case "lte":
			out = append(out, FieldError{Field: field, Message: "must be less than or equal to " + e.Param()})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}

func unit(e validator.FieldError) string {
	if e.Kind() == reflect.String {
		return " characters"
	}
	return ""
}

// fieldPath drops the root struct name: "submitApplicationReq.personalInfo.panCard"
// becomes "personalInfo.panCard".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// validationError wraps validator output into the error taxonomy.
func validationError(err error) error {
	return apperr.Validation("Validation failed", ToFieldErrors(err))
}
