package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (E101-E119)
	// ============================================

	"E101": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No permalink.json, permalink.yaml or permalink.yml was found in the given directory.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Configuration parse failed",
		Detail:   "The configuration file is not valid JSON or YAML, or a value has the wrong type.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is outside its allowed range or set.",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Unknown storage backend",
		Detail:   "storage.backend must be one of memory, redis, badger or s3.",
	},

	// ============================================
	// Storage Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryStorage,
		Message:  "Storage backend unavailable",
		Detail:   "The storage backend could not be opened or reached.",
	},
	"E121": {
		Category: CategoryStorage,
		Message:  "Storage read failed",
		Detail:   "Reading the stored parameters failed.",
	},
	"E122": {
		Category: CategoryStorage,
		Message:  "Storage write failed",
		Detail:   "Writing the parameters to storage failed.",
	},
	"E123": {
		Category: CategoryStorage,
		Message:  "Change broadcast unavailable",
		Detail:   "Connecting to the NATS server used to broadcast storage changes failed.",
	},

	// ============================================
	// Request Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryRequest,
		Message:  "Invalid request body",
		Detail:   "The request body could not be decoded as JSON.",
	},
	"E141": {
		Category: CategoryRequest,
		Message:  "Invalid view",
		Detail:   "A view needs numeric lat, lng and zoom values.",
	},

	// ============================================
	// Protocol Errors (E160-E169)
	// ============================================

	"E160": {
		Category: CategoryProtocol,
		Message:  "WebSocket upgrade failed",
		Detail:   "The connection could not be upgraded to a websocket.",
	},

	// ============================================
	// CLI Errors (E170-E189)
	// ============================================

	"E170": {
		Category: CategoryCLI,
		Message:  "Invalid argument",
		Detail:   "Arguments must have the form key=value.",
	},
	"E171": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
