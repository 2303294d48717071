package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"kaizen-backend-go/internal/services"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return services.IsSlug(fl.Field().String())
	})
	return v
}

// validateStruct returns a ValidationFailure keyed by JSON field name.
func validateStruct(payload interface{}) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return services.ErrBadRequest("invalid payload")
	}
	fields := map[string]string{}
	for _, fe := range verrs {
		fields[fieldPath(fe)] = fieldMessage(fe)
	}
	return services.ErrValidation(fields)
}

// fieldPath drops the root struct name from the namespace: "features[0].title".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_with":
		return "field required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("ensure this value has at most %s characters", fe.Param())
		}
		return fmt.Sprintf("ensure this value is less than or equal to %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("ensure this value has at least %s characters", fe.Param())
		}
		return fmt.Sprintf("ensure this value is greater than or equal to %s", fe.Param())
	case "len":
		return fmt.Sprintf("ensure this value has exactly %s characters", fe.Param())
	case "email":
		return "value is not a valid email address"
	case "url":
		return "invalid or missing URL scheme"
	case "uuid":
		return "value is not a valid uuid"
	case "hexcolor":
		return "value is not a valid hex color"
	case "slug":
		return "value is not a valid slug"
	case "latitude", "longitude":
		return "value is out of range"
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields,
// then validates it.
func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return decodeError(err)
	}
	if decoder.More() {
		return services.ErrBadRequest("request body must contain a single JSON object")
	}
	return validateStruct(dst)
}

func decodeError(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return services.ErrBadRequest("request body is empty")
	case errors.As(err, &syntaxErr):
		return services.ErrBadRequest("malformed JSON body")
	case errors.As(err, &typeErr):
		return services.ErrValidation(map[string]string{typeErr.Field: "invalid type, expected " + typeErr.Type.String()})
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		name := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return services.ErrValidation(map[string]string{name: "extra fields not permitted"})
	default:
		return services.ErrBadRequest("invalid payload")
	}
}
