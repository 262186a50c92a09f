package params

import (
	"reflect"
	"sort"
)

// Params is a flat mapping from parameter name to value.
type Params map[string]any

// New returns an empty parameter map.
func New() Params {
	return make(Params)
}

// Clone returns a shallow copy. A nil map clones to an empty one.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge applies a partial update in place: non-nil values are set, nil values
// delete the key.
func (p Params) Merge(partial Params) {
	for k, v := range partial {
		if v == nil {
			delete(p, k)
			continue
		}
		p[k] = v
	}
}

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value stored under key and whether it was present.
func (p Params) Get(key string) (any, bool) {
	v, ok := p[key]
	return v, ok
}

// Equal reports whether a and b hold the same keys with the same values.
//
// The comparison is two one-directional scans: every key of a must match in b,
// and every key of b must match in a. A single scan misses keys present only in
// the second map.
func Equal(a, b Params) bool {
	return covers(a, b) && covers(b, a)
}

// covers reports whether every key of x has an identical value in y.
func covers(x, y Params) bool {
	for k, xv := range x {
		yv, ok := y[k]
		if !ok || !ValueEqual(xv, yv) {
			return false
		}
	}
	return true
}

// ValueEqual compares two parameter values. Numbers compare by value regardless
// of their Go numeric type, so int 1 equals float64 1 after a URL round trip.
func ValueEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	if _, ok := toFloat(b); ok {
		return false
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
