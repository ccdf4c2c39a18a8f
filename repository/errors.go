package repository

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DecodeError reports a document that could not be mapped to its entity.
// Snapshot decoding skips such documents instead of failing the batch.
type DecodeError struct {
	Collection string
	ID         string
	Field      string
	Err        error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode %s/%s: %v", e.Collection, e.ID, e.Err)
	}
	return fmt.Sprintf("decode %s/%s field %q: %v", e.Collection, e.ID, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ValidationError is returned before any write is attempted.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

var ErrItemNotFound = errors.New("checklist item not found")

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

var validate = validator.New()

// validateStruct runs the struct's validate tags and collects the failures.
func validateStruct(v interface{}, fields fieldErrors) {
	err := validate.Struct(v)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields.add("_", err.Error())
		return
	}
	for _, fe := range verrs {
		fields.add(fieldName(fe), describeTag(fe))
	}
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of " + fe.Param()
	case "min":
		return "needs at least " + fe.Param()
	case "unique":
		return "must not contain duplicates"
	}
	return "failed " + fe.Tag()
}

// Validate checks v's validate tags and reports failures as a ValidationError.
func Validate(v interface{}) error {
	fields := fieldErrors{}
	validateStruct(v, fields)
	return fields.err()
}
