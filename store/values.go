package store

import (
	"math"
	"reflect"
	"time"
)

// StripUnset returns a copy of data without nil values, nil pointers and NaN
// numbers. When keepDelete is false DeleteField markers are dropped too.
func StripUnset(data map[string]interface{}, keepDelete bool) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		if v == DeleteField {
			if keepDelete {
				out[k] = v
			}
			continue
		}
		if n, ok := Normalize(v); ok {
			out[k] = n
		}
	}
	return out
}

// Normalize converts v to the canonical document value shapes. ok is false
// when v holds no value.
func Normalize(v interface{}) (interface{}, bool) {
	if v == nil {
		return nil, false
	}
	if v == DeleteField {
		return v, true
	}
	if t, isTime := v.(time.Time); isTime {
		return t.UTC().Round(time.Microsecond), true
	}
	if tp, isTime := v.(*time.Time); isTime {
		if tp == nil {
			return nil, false
		}
		return tp.UTC().Round(time.Microsecond), true
	}
	return normalizeValue(reflect.ValueOf(v))
}

func normalizeValue(rv reflect.Value) (interface{}, bool) {
	switch rv.Kind() {
	case reflect.Invalid:
		return nil, false
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, false
		}
		return Normalize(rv.Elem().Interface())
	case reflect.Bool:
		return rv.Bool(), true
	case reflect.String:
		return rv.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) {
			return nil, false
		}
		return f, true
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []interface{}{}, true
		}
		out := make([]interface{}, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if n, ok := Normalize(rv.Index(i).Interface()); ok {
				out = append(out, n)
			}
		}
		return out, true
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			if n, ok := Normalize(iter.Value().Interface()); ok && n != DeleteField {
				out[iter.Key().String()] = n
			}
		}
		return out, true
	case reflect.Struct:
		if t, isTime := rv.Interface().(time.Time); isTime {
			return t.UTC().Round(time.Microsecond), true
		}
	}
	return nil, false
}

// Equal compares two document values after normalization.
func Equal(a, b interface{}) bool {
	na, okA := Normalize(a)
	nb, okB := Normalize(b)
	if okA != okB {
		return false
	}
	return equalNormalized(na, nb)
}

func equalNormalized(a, b interface{}) bool {
	ta, isTimeA := a.(time.Time)
	tb, isTimeB := b.(time.Time)
	if isTimeA || isTimeB {
		return isTimeA && isTimeB && ta.Equal(tb)
	}
	switch va := a.(type) {
	case []interface{}:
		vb, ok := b.([]interface{})
		if !ok || len(va) != len(vb) {
			return false
		}
		for i := range va {
			if !equalNormalized(va[i], vb[i]) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		vb, ok := b.(map[string]interface{})
		if !ok || len(va) != len(vb) {
			return false
		}
		for k, x := range va {
			y, present := vb[k]
			if !present || !equalNormalized(x, y) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func cloneData(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch x := v.(type) {
	case []interface{}:
		out := make([]interface{}, len(x))
		for i := range x {
			out[i] = cloneValue(x[i])
		}
		return out
	case map[string]interface{}:
		return cloneData(x)
	}
	return v
}
