// Package validate runs gin's binding validator over domain structs and
// reports every failed field as apperr.FieldErrors.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/podcastify/core/internal/pkg/apperr"
)

// init names fields after their json tags on gin's shared validator, before
// any ShouldBind call can run it.
func init() {
	engine().RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

func engine() *validator.Validate {
	return binding.Validator.Engine().(*validator.Validate)
}

// Struct validates the binding tags of v.
func Struct(v any) apperr.FieldErrors {
	return Fields(binding.Validator.ValidateStruct(v))
}

// Var validates a single value against a tag such as "http_url".
func Var(value any, tag string) bool {
	return engine().Var(value, tag) == nil
}

// URL accepts absolute http and https URLs with a host.
func URL(raw string) bool {
	return Var(raw, "required,http_url")
}

// Fields maps validator failures to field errors, one per failed field.
// Errors of any other type yield nil.
func Fields(err error) apperr.FieldErrors {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	fe := make(apperr.FieldErrors, 0, len(ve))
	for _, e := range ve {
		fe.Add(fieldPath(e.Namespace()), "%s", message(e))
	}
	return fe
}

// Bind converts the error of a gin ShouldBind call: validator failures keep
// their fields, decode failures are reported against the body.
func Bind(err error) error {
	if err == nil {
		return nil
	}
	if fe := Fields(err); len(fe) > 0 {
		return fe.Err()
	}
	return apperr.Invalid("body", "%s", err.Error())
}

// fieldPath drops the root type and embedded structs (untagged, so still
// capitalised) from a namespace like "Podcast.Base.title".
func fieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts[1:] {
		if p == "" || unicode.IsUpper(rune(p[0])) {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ".")
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", e.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "url", "http_url":
		return "must be a valid http(s) URL"
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(e.Param(), " ", ", "))
	case "datetime":
		return fmt.Sprintf("must match %s", e.Param())
	default:
		return fmt.Sprintf("failed %s validation", e.Tag())
	}
}
