package params

import (
	"testing"
)

func TestMerge(t *testing.T) {
	t.Run("SetAndDelete", func(t *testing.T) {
		p := New()
		p.Merge(Params{"k": "v"})
		if got, ok := p.Get("k"); !ok || got != "v" {
			t.Fatalf("after set: got %v (present=%v), want v", got, ok)
		}

		p.Merge(Params{"k": nil})
		if _, ok := p.Get("k"); ok {
			t.Errorf("key k should be deleted after merging nil")
		}
	})

	t.Run("LeavesOtherKeys", func(t *testing.T) {
		p := Params{"a": "1", "b": "2"}
		p.Merge(Params{"b": "3", "c": true})

		want := Params{"a": "1", "b": "3", "c": true}
		if !Equal(p, want) {
			t.Errorf("Merge: got %v, want %v", p, want)
		}
	})

	t.Run("DeleteMissingKey", func(t *testing.T) {
		p := Params{"a": "1"}
		p.Merge(Params{"missing": nil})
		if len(p) != 1 {
			t.Errorf("len = %d, want 1", len(p))
		}
	})
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Params
		want bool
	}{
		{"both empty", Params{}, Params{}, true},
		{"nil and empty", nil, Params{}, true},
		{"same", Params{"a": "1", "b": true}, Params{"b": true, "a": "1"}, true},
		{"value differs", Params{"a": "1"}, Params{"a": "2"}, false},
		{"extra key in second", Params{"a": "1"}, Params{"a": "1", "b": "2"}, false},
		{"extra key in first", Params{"a": "1", "b": "2"}, Params{"a": "1"}, false},
		{"numeric kinds", Params{"n": 1}, Params{"n": float64(1)}, true},
		{"number vs string", Params{"n": 1.0}, Params{"n": "1"}, false},
		{"string vs number", Params{"n": "1"}, Params{"n": 1.0}, false},
		{"nested", Params{"j": map[string]any{"x": 1.0}}, Params{"j": map[string]any{"x": 1.0}}, true},
		{"nested differs", Params{"j": []any{1.0}}, Params{"j": []any{2.0}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(a, b) = %v, want %v", got, tt.want)
			}
			if got := Equal(tt.b, tt.a); got != tt.want {
				t.Errorf("Equal(b, a) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEqualReflexive(t *testing.T) {
	maps := []Params{
		{},
		{"a": "x"},
		{"zoom": "6", "lat": "55.676", "lon": "12.568", "flag": true, "j": []any{"a", 2.0}},
	}
	for _, p := range maps {
		if !Equal(p, p) {
			t.Errorf("Equal(p, p) = false for %v", p)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p := Params{"a": "1"}
	c := p.Clone()
	c["a"] = "2"
	c["b"] = "3"

	if p["a"] != "1" {
		t.Errorf("original mutated: a = %v", p["a"])
	}
	if _, ok := p["b"]; ok {
		t.Error("original gained key b")
	}

	var nilParams Params
	if got := nilParams.Clone(); got == nil {
		t.Error("Clone of nil should return an empty map")
	}
}

func TestKeysSorted(t *testing.T) {
	p := Params{"zoom": 1, "lat": 2, "lon": 3}
	got := p.Keys()
	want := []string{"lat", "lon", "zoom"}
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
