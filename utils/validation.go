package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	registerTagNames sync.Once

	// structValidator checks service inputs tagged with `validate`.
	structValidator = newStructValidator()
)

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonTagName)
	return v
}

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

// Validate checks s against its `validate` tags and reports failures as a
// ValidationFailure carrying per-field messages.
func Validate(s any) error {
	if err := structValidator.Struct(s); err != nil {
		return bindingError(err)
	}
	return nil
}

// useJSONFieldNames makes validator report json names instead of Go field names.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonTagName)
	})
}

// BindJSON decodes and validates the request body into dst. Failures are
// returned as ValidationFailure errors carrying per-field messages.
func BindJSON(c *gin.Context, dst any) error {
	useJSONFieldNames()
	if err := c.ShouldBindJSON(dst); err != nil {
		return bindingError(err)
	}
	return nil
}

// BindStrictJSON is BindJSON but rejects unknown fields.
func BindStrictJSON(c *gin.Context, dst any) error {
	useJSONFieldNames()
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ValidationError("request body is required")
		}
		if strings.HasPrefix(err.Error(), "json: unknown field") {
			return ValidationError("Invalid updates", FieldError{
				Field:   strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`),
				Message: "is not an updatable field",
			})
		}
		return ValidationError("malformed JSON body")
	}
	if err := binding.Validator.ValidateStruct(dst); err != nil {
		return bindingError(err)
	}
	return nil
}

func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return ValidationError("validation failed", ValidationFields(verrs)...)
	}
	if errors.Is(err, io.EOF) {
		return ValidationError("request body is required")
	}
	return ValidationError("malformed JSON body")
}

// ValidationFields converts validator errors into per-field messages.
func ValidationFields(verrs validator.ValidationErrors) []FieldError {
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gtfield":
		return fmt.Sprintf("must be after %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return "is invalid"
	}
}
