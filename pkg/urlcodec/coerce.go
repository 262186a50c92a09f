package urlcodec

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/fcoo/permalink/pkg/params"
)

// ParseOptions selects which coercions Coerce applies to string values.
type ParseOptions struct {
	ConvertBoolean bool `json:"convertBoolean" yaml:"convertBoolean"`
	ConvertNumber  bool `json:"convertNumber" yaml:"convertNumber"`
	ConvertJSON    bool `json:"convertJSON" yaml:"convertJSON"`
}

// DefaultParseOptions enables every coercion.
var DefaultParseOptions = ParseOptions{
	ConvertBoolean: true,
	ConvertNumber:  true,
	ConvertJSON:    true,
}

var numberPattern = regexp.MustCompile(`^[-+]?(\d+(\.\d*)?|\.\d+)([eE][-+]?\d+)?$`)

// Coerce replaces string values in p with their native form, in place.
func Coerce(p params.Params, opts ParseOptions) {
	for k, v := range p {
		p[k] = CoerceValue(v, opts)
	}
}

// CoerceValue converts a single value. Non-string values are returned as is.
func CoerceValue(v any, opts ParseOptions) any {
	s, ok := v.(string)
	if !ok {
		return v
	}

	if opts.ConvertBoolean {
		switch s {
		case "true":
			return true
		case "false":
			return false
		}
	}

	if opts.ConvertNumber {
		if f, ok := parseNumber(s); ok {
			return f
		}
	}

	if opts.ConvertJSON && looksLikeJSON(s) {
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err == nil {
			return decoded
		}
	}

	return s
}

// IsNumeric reports whether v is a finite number or a string holding one.
func IsNumeric(v any) bool {
	_, ok := ToNumber(v)
	return ok
}

// ToNumber returns the numeric value of v when IsNumeric(v) holds.
func ToNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case string:
		return parseNumber(n)
	case float64:
		return n, isFinite(n)
	case float32:
		return float64(n), isFinite(float64(n))
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	default:
		return 0, false
	}
}

func parseNumber(s string) (float64, bool) {
	if !numberPattern.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !isFinite(f) {
		return 0, false
	}
	return f, true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func looksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}
