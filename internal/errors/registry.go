package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

var registry = map[string]ErrorTemplate{
	// Runtime (E001-E099)
	"E001": {
		Category: CategoryRuntime,
		Message:  "Internal error",
		Detail:   "An unexpected error occurred while processing the request.",
	},
	"E002": {
		Category: CategoryRuntime,
		Message:  "Operation canceled",
		Detail:   "The operation was canceled or its deadline expired before it completed.",
	},
	"E010": {
		Category: CategoryRuntime,
		Message:  "Session not found",
		Detail:   "The diff session does not exist or was evicted after being idle.",
	},
	"E011": {
		Category: CategoryRuntime,
		Message:  "Too many sessions",
		Detail:   "The server reached its session limit. Delete unused sessions or wait for idle ones to expire.",
	},

	// Input (E100-E119)
	"E101": {
		Category: CategoryInput,
		Message:  "Collection is not list-like",
		Detail:   "Only slices, arrays and iterables can be diffed. Maps, strings and scalars are rejected.",
	},
	"E102": {
		Category: CategoryInput,
		Message:  "Snapshot could not be decoded",
		Detail:   "A snapshot must be a JSON array of items.",
	},
	"E103": {
		Category: CategoryInput,
		Message:  "Snapshot source not found",
		Detail:   "The snapshot file does not exist.",
	},
	"E104": {
		Category: CategoryInput,
		Message:  "Track-by script failed to compile",
		Detail:   "The Lua track-by script is the body of function(index, item) and must return a key.",
	},
	"E105": {
		Category: CategoryInput,
		Message:  "Conflicting track-by strategies",
		Detail:   "Set at most one of field, lua and index.",
	},

	// Config (E120-E149)
	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "iterdiff.json contains a value outside its allowed range.",
	},
	"E141": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No iterdiff.json was found in the working directory.",
	},
	"E142": {
		Category: CategoryConfig,
		Message:  "Configuration file is not valid JSON",
		Detail:   "iterdiff.json could not be parsed.",
	},
	"E143": {
		Category: CategoryConfig,
		Message:  "Configuration file already exists",
		Detail:   "Refusing to overwrite an existing iterdiff.json.",
	},

	// CLI (E150-E169)
	"E150": {
		Category: CategoryCLI,
		Message:  "Unknown output format",
		Detail:   "Supported formats are text, json, msgpack and binary.",
	},
	"E151": {
		Category: CategoryCLI,
		Message:  "Not enough snapshots",
		Detail:   "Diffing needs at least two snapshots.",
	},

	// Storage (E200-E219)
	"E201": {
		Category: CategoryStorage,
		Message:  "S3 object could not be read",
		Detail:   "Check the bucket, key, region and AWS credentials.",
	},

	// Protocol (E300-E319)
	"E301": {
		Category: CategoryProtocol,
		Message:  "Malformed operations frame",
		Detail:   "The binary frame is truncated, has a bad header or an oversized field.",
	},
	"E302": {
		Category: CategoryProtocol,
		Message:  "Unsupported message",
		Detail:   "The message type or content type is not supported.",
	},
}

// Codes returns all registered error codes in order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Template returns the template for an error code.
func Template(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
