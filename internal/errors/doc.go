// Package errors provides structured, actionable error messages for the
// permalink tools.
//
// The synchronization core never returns errors; invalid input is clamped or
// ignored. Everything around it (loading configuration, opening a storage
// backend, parsing CLI arguments, serving HTTP requests) reports failures as
// an *Error that:
//   - Carries a stable code (e.g., "E102") and a category
//   - Explains what went wrong in plain language
//   - Points at the offending line of a configuration file when known
//   - Suggests how to fix the problem
//
// # Error Categories
//
//   - config: configuration files and values
//   - storage: storage backends and change broadcast
//   - request: HTTP request bodies and parameters
//   - protocol: websocket stream errors
//   - cli: command-line usage
//
// # Usage
//
//	err := errors.New("E102").
//	    WithLocation("permalink.yaml", 4, 3).
//	    WithSuggestion("storage.backend must be a string")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E102: Configuration parse failed
//	//
//	//   permalink.yaml:4:3
//	//
//	//      2 │ storage:
//	//      3 │   backend:
//	//   →  4 │   - redis
//	//        │   ^
//	//
//	//   Hint: storage.backend must be a string
package errors
