package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "E101",
			wantMsg: "Configuration file not found",
			wantCat: CategoryConfig,
		},
		{
			name:    "storage error",
			code:    "E120",
			wantMsg: "Storage backend unavailable",
			wantCat: CategoryStorage,
		},
		{
			name:    "protocol error",
			code:    "E160",
			wantMsg: "WebSocket upgrade failed",
			wantCat: CategoryProtocol,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "flag %q is required", "--lat")
	if err.Message != `flag "--lat" is required` {
		t.Errorf("Message = %q, want %q", err.Message, `flag "--lat" is required`)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestError_Error(t *testing.T) {
	err := New("E101")
	want := "E101: Configuration file not found"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := New("E120").Wrap(stderrors.New("dial tcp: connection refused"))
	want = "E120: Storage backend unavailable: dial tcp: connection refused"
	if got := wrapped.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	// Without code
	plain := &Error{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("loading: %w", New("E102"))
	if !stderrors.Is(err, New("E102")) {
		t.Error("errors.Is should match on code")
	}
	if stderrors.Is(err, New("E103")) {
		t.Error("errors.Is matched a different code")
	}
	if got := Code(err); got != "E102" {
		t.Errorf("Code() = %q, want E102", got)
	}
	if got := Code(stderrors.New("plain")); got != "" {
		t.Errorf("Code(plain) = %q, want empty", got)
	}
}

func TestError_WithLocation(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "permalink.yaml")
	content := `control:
  postfix: "2"
storage:
  backend:
    - redis
server:
  addr: ":8080"
`
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("E102").WithLocation(tmpFile, 5, 5)

	if err.Location == nil {
		t.Fatal("Location is nil")
	}
	if err.Location.File != tmpFile {
		t.Errorf("Location.File = %q, want %q", err.Location.File, tmpFile)
	}
	if err.Location.Line != 5 || err.Location.Column != 5 {
		t.Errorf("Location = %d:%d, want 5:5", err.Location.Line, err.Location.Column)
	}
	if len(err.Context) != 5 {
		t.Errorf("Context has %d lines, want 5", len(err.Context))
	}
}

func TestError_WithLocationFromError(t *testing.T) {
	tmpDir := t.TempDir()
	jsonFile := filepath.Join(tmpDir, "permalink.json")
	content := "{\n  \"control\": {\n    \"postfix\": ,\n  }\n}\n"
	if err := os.WriteFile(jsonFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	var v map[string]any
	decodeErr := json.Unmarshal([]byte(content), &v)
	if decodeErr == nil {
		t.Fatal("expected a syntax error")
	}

	err := New("E102").WithLocationFromError(jsonFile, decodeErr)
	if err.Location == nil {
		t.Fatal("Location is nil for a JSON syntax error")
	}
	if err.Location.Line != 3 {
		t.Errorf("Location.Line = %d, want 3", err.Location.Line)
	}

	yamlErr := stderrors.New("yaml: line 4: did not find expected key")
	err = New("E102").WithLocationFromError("permalink.yaml", yamlErr)
	if err.Location == nil || err.Location.Line != 4 {
		t.Errorf("Location = %v, want line 4", err.Location)
	}

	err = New("E102").WithLocationFromError("permalink.yaml", stderrors.New("no position"))
	if err.Location != nil {
		t.Errorf("Location = %v, want nil", err.Location)
	}
}

func TestError_Builders(t *testing.T) {
	err := New("E103").
		WithDetail("control.position must be one of topleft, topright, bottomleft, bottomright").
		WithSuggestion("Use bottomright").
		WithExample(`control:
  position: bottomright`)

	if !strings.HasPrefix(err.Detail, "control.position") {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Suggestion != "Use bottomright" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
	if !strings.Contains(err.Example, "position: bottomright") {
		t.Errorf("Example = %q", err.Example)
	}
}

func TestError_Wrap(t *testing.T) {
	inner := New("E121")
	outer := New("E120").Wrap(inner)

	if outer.Wrapped != inner {
		t.Error("Wrapped error mismatch")
	}
	if outer.Unwrap() != inner {
		t.Error("Unwrap() should return wrapped error")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E120") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	// Already an Error, even when wrapped
	e := New("E122")
	if FromError(fmt.Errorf("flush: %w", e), "E120") != e {
		t.Error("FromError should return the *Error in the chain")
	}

	stdErr := &testError{msg: "test error"}
	result := FromError(stdErr, "E120")
	if result.Wrapped != stdErr {
		t.Error("Standard error should be wrapped")
	}
	if result.Code != "E120" {
		t.Errorf("Code = %q, want E120", result.Code)
	}
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  *Location
		want string
	}{
		{
			name: "nil location",
			loc:  nil,
			want: "",
		},
		{
			name: "with column",
			loc:  &Location{File: "permalink.yaml", Line: 10, Column: 5},
			want: "permalink.yaml:10:5",
		},
		{
			name: "without column",
			loc:  &Location{File: "permalink.yaml", Line: 10, Column: 0},
			want: "permalink.yaml:10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.loc.String()
			if got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "permalink.yaml")
	content := `storage:
  backend: mongo
  localStorageId: view
`
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("E104").
		WithLocation(tmpFile, 2, 12).
		Wrap(stderrors.New(`backend "mongo"`)).
		WithSuggestion("Use memory, redis, badger or s3").
		WithExample("storage:\n  backend: redis")

	formatted := err.Format()

	for _, want := range []string{
		"E104",
		"Unknown storage backend",
		tmpFile,
		"→    2 │   backend: mongo",
		"Cause: backend \"mongo\"",
		"Hint:",
		"Example:",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() missing %q:\n%s", want, formatted)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E101").WithLocation("permalink.json", 10, 5)
	compact := err.FormatCompact()

	want := "permalink.json:10:5: E101: Configuration file not found"
	if compact != want {
		t.Errorf("FormatCompact() = %q, want %q", compact, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("E141").Wrap(stderrors.New("lat is not a number"))
	raw := err.FormatJSON()

	var decoded map[string]any
	if jsonErr := json.Unmarshal([]byte(raw), &decoded); jsonErr != nil {
		t.Fatalf("FormatJSON() is not valid JSON: %v\n%s", jsonErr, raw)
	}
	if decoded["code"] != "E141" {
		t.Errorf("code = %v", decoded["code"])
	}
	if decoded["category"] != "request" {
		t.Errorf("category = %v", decoded["category"])
	}
	if decoded["cause"] != "lat is not a number" {
		t.Errorf("cause = %v", decoded["cause"])
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var b strings.Builder
	Fprint(&b, fmt.Errorf("serve: %w", New("E171")))
	if !strings.Contains(b.String(), "ERROR E171: Server failed") {
		t.Errorf("Fprint() = %q", b.String())
	}

	b.Reset()
	Fprint(&b, stderrors.New("boom"))
	if !strings.Contains(b.String(), "ERROR: boom") {
		t.Errorf("Fprint(plain) = %q", b.String())
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Fatal("GetAllCodes() should return codes")
	}
	if codes[0] != "E101" {
		t.Errorf("codes[0] = %q, want sorted E101 first", codes[0])
	}
}

func TestGetTemplate(t *testing.T) {
	template, ok := GetTemplate("E122")
	if !ok {
		t.Fatal("E122 should exist")
	}
	if template.Message != "Storage write failed" {
		t.Error("Template message mismatch")
	}

	if _, ok := GetTemplate("E999"); ok {
		t.Error("E999 should not exist")
	}
}

func TestRegister(t *testing.T) {
	Register("E999", ErrorTemplate{
		Category: CategoryStorage,
		Message:  "Custom test error",
		Detail:   "This is a test error",
	})
	defer delete(registry, "E999")

	err := New("E999")
	if err.Message != "Custom test error" {
		t.Errorf("Message = %q, want %q", err.Message, "Custom test error")
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("short text", 100)
	if len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}

	got = wrapText("this is a longer text that should be wrapped", 20)
	if len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}

	got = wrapText("", 10)
	if len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestColorFunctions(t *testing.T) {
	EnableColors()
	if !strings.Contains(red("test"), "\033[31m") {
		t.Error("red should contain ANSI code when colors enabled")
	}

	DisableColors()
	if strings.Contains(red("test"), "\033[") {
		t.Error("red should not contain ANSI code when colors disabled")
	}
	EnableColors()
}
