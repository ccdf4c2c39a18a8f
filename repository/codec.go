package repository

import (
	"errors"
	"fmt"
	"time"

	"checklistapp/store"
)

var (
	errMissing   = errors.New("missing")
	errWrongType = errors.New("wrong type")
)

// reader pulls typed fields out of a document and keeps the first error.
type reader struct {
	collection string
	id         string
	data       map[string]interface{}
	err        error
}

func newReader(collection string, doc store.Document) *reader {
	return &reader{collection: collection, id: doc.ID, data: doc.Data}
}

func (r *reader) fail(field string, err error) {
	if r.err == nil {
		r.err = &DecodeError{Collection: r.collection, ID: r.id, Field: field, Err: err}
	}
}

func (r *reader) value(field string, required bool) (interface{}, bool) {
	v, ok := r.data[field]
	if !ok || v == nil {
		if required {
			r.fail(field, errMissing)
		}
		return nil, false
	}
	return v, true
}

func (r *reader) str(field string, required bool) string {
	v, ok := r.value(field, required)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(field, fmt.Errorf("%w: %T", errWrongType, v))
		return ""
	}
	if required && s == "" {
		r.fail(field, errMissing)
	}
	return s
}

func (r *reader) optStr(field string) *string {
	v, ok := r.value(field, false)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		r.fail(field, fmt.Errorf("%w: %T", errWrongType, v))
		return nil
	}
	return &s
}

func (r *reader) boolean(field string) bool {
	v, ok := r.value(field, false)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		r.fail(field, fmt.Errorf("%w: %T", errWrongType, v))
	}
	return b
}

func (r *reader) number(field string) *float64 {
	v, ok := r.value(field, false)
	if !ok {
		return nil
	}
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int64:
		f = float64(n)
	case int:
		f = float64(n)
	default:
		r.fail(field, fmt.Errorf("%w: %T", errWrongType, v))
		return nil
	}
	return &f
}

// timestamp accepts time values and RFC 3339 strings.
func (r *reader) timestamp(field string, required bool) time.Time {
	v, ok := r.value(field, required)
	if !ok {
		return time.Time{}
	}
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			r.fail(field, err)
		}
		return parsed
	}
	r.fail(field, fmt.Errorf("%w: %T", errWrongType, v))
	return time.Time{}
}

func (r *reader) list(field string) []interface{} {
	v, ok := r.value(field, false)
	if !ok {
		return nil
	}
	switch l := v.(type) {
	case []interface{}:
		return l
	case []string:
		out := make([]interface{}, len(l))
		for i := range l {
			out[i] = l[i]
		}
		return out
	}
	r.fail(field, fmt.Errorf("%w: %T", errWrongType, v))
	return nil
}

func (r *reader) strings(field string) []string {
	l := r.list(field)
	out := make([]string, 0, len(l))
	for _, e := range l {
		s, ok := e.(string)
		if !ok {
			r.fail(field, fmt.Errorf("%w: element %T", errWrongType, e))
			continue
		}
		out = append(out, s)
	}
	return out
}

func (r *reader) has(field string) bool {
	v, ok := r.data[field]
	return ok && v != nil
}
