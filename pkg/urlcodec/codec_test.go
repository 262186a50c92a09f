package urlcodec

import (
	"testing"

	"github.com/fcoo/permalink/pkg/params"
)

func TestStringify(t *testing.T) {
	tests := []struct {
		name string
		in   params.Params
		want string
	}{
		{"empty", params.Params{}, ""},
		{"sorted", params.Params{"zoom": "6", "lat": "55.676", "lon": "12.568"}, "lat=55.676&lon=12.568&zoom=6"},
		{"native values", params.Params{"b": true, "n": 1.5, "i": 3}, "b=true&i=3&n=1.5"},
		{"escaped", params.Params{"q": "a b&c"}, "q=a+b%26c"},
		{"json", params.Params{"j": []any{1.0, "x"}}, "j=%5B1%2C%22x%22%5D"},
		{"nil skipped", params.Params{"a": "1", "gone": nil}, "a=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Stringify(tt.in); got != tt.want {
				t.Errorf("Stringify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want params.Params
	}{
		{"empty", "", params.Params{}},
		{"hash only", "#", params.Params{}},
		{"leading hash", "#zoom=6&lat=55.676", params.Params{"zoom": "6", "lat": "55.676"}},
		{"leading question mark", "?a=1", params.Params{"a": "1"}},
		{"no value", "flag&a=1", params.Params{"flag": "", "a": "1"}},
		{"escaped", "q=a+b%26c", params.Params{"q": "a b&c"}},
		{"malformed escape kept", "q=100%", params.Params{"q": "100%"}},
		{"empty pairs skipped", "a=1&&b=2&", params.Params{"a": "1", "b": "2"}},
		{"last wins", "a=1&a=2", params.Params{"a": "2"}},
		{"value with equals", "a=x=y", params.Params{"a": "x=y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQuery(tt.in)
			if !params.Equal(got, tt.want) {
				t.Errorf("ParseQuery(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoundTripAfterCoercion(t *testing.T) {
	original := params.Params{
		"zoom":  "6",
		"lat":   "55.676",
		"lon":   "-12.569",
		"flag":  "true",
		"off":   "false",
		"name":  "wind speed",
		"layer": `{"id":"wind","opacity":0.5}`,
		"list":  `[1,2,3]`,
	}
	coerced := original.Clone()
	Coerce(coerced, DefaultParseOptions)

	back := ParseQuery(Stringify(coerced))
	Coerce(back, DefaultParseOptions)

	if !params.Equal(back, coerced) {
		t.Errorf("round trip: got %v, want %v", back, coerced)
	}
}
