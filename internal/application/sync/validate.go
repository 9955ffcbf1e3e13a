package syncapp

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/erp/factory/internal/domain/shared"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if n := f.Interface().(Number); n.Valid {
			return n.Value.InexactFloat64()
		}
		return nil
	}, Number{})
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if n := f.Interface().(Int); n.Valid {
			return n.Value
		}
		return nil
	}, Int{})
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if d := f.Interface().(Date); d.Valid {
			return d.Time
		}
		return nil
	}, Date{})
	return v
}

// Decode parses and validates one payload. Any failure is a *shared.ValidationError.
func Decode[T any](raw []byte) (T, error) {
	var payload T
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, decodeError(err)
	}
	if err := Validate(payload); err != nil {
		return payload, err
	}
	return payload, nil
}

// Validate checks a payload against its validate tags
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &shared.ValidationError{}
	for _, e := range verrs {
		out.Fields = append(out.Fields, shared.FieldError{
			Field:   fieldPath(e.Namespace()),
			Message: validationMessage(e),
		})
	}
	return out
}

// fieldPath drops the struct name from a validator namespace
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return shared.NewValidationError(field, "Must be "+typeErr.Type.String())
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return shared.NewValidationError("body", "Malformed JSON")
	}
	// errors from the coercing types carry the offending value
	return shared.NewValidationError("body", err.Error())
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "required_without":
		return "Required when " + lowerFirst(e.Param()) + " is empty"
	case "email":
		return "Invalid email format"
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "len":
		return "Must be exactly " + e.Param() + " characters"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "lte":
		return "Must be less than or equal to " + e.Param()
	default:
		return "Invalid value"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
