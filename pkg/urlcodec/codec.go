package urlcodec

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/fcoo/permalink/pkg/params"
)

// Stringify encodes p as a flat query string with sorted keys. Nil values are
// skipped.
func Stringify(p params.Params) string {
	var b strings.Builder
	for _, k := range p.Keys() {
		v := p[k]
		if v == nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(FormatValue(v)))
	}
	return b.String()
}

// ParseQuery decodes a query string or fragment into a flat map of strings.
// A leading "#" or "?" is ignored. Pairs without "=" map to the empty string.
// Malformed escapes are kept verbatim rather than failing the whole parse, and
// the last occurrence of a repeated key wins.
func ParseQuery(s string) params.Params {
	s = strings.TrimLeft(s, "#?")
	result := params.New()
	if s == "" {
		return result
	}

	for _, pair := range strings.Split(s, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key = unescape(key)
		if key == "" {
			continue
		}
		result[key] = unescape(value)
	}
	return result
}

func unescape(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

// FormatValue renders a parameter value the way it appears in a URL.
func FormatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case fmt.Stringer:
		return val.String()
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}
