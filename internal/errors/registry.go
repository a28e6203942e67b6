package errors

import (
	"sort"

	"github.com/agnivade/levenshtein"
)

// Registered error codes.
const (
	ErrUnknownLabel      = "E001"
	ErrMountTarget       = "E002"
	ErrMiddlewareCycle   = "E003"
	ErrMissingDependency = "E004"
	ErrMergeMismatch     = "E005"
	ErrAmbiguousSiblings = "E006"
	ErrAlreadyMounted    = "E007"
	ErrDuplicateLabel    = "E008"
	ErrConfigRead        = "E020"
	ErrConfigParse       = "E021"
	ErrConfigInvalid     = "E022"
	ErrConfigNotFound    = "E023"
	ErrDevServer         = "E040"
	ErrDevSession        = "E041"
	ErrSnapshotStore     = "E042"
	ErrCLIUsage          = "E060"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Render Errors (E001-E019)
	// ============================================

	ErrUnknownLabel: {
		Category: CategoryRender,
		Message:  "Unknown registry label",
		Detail:   "A component referenced a registry label that has not been defined. Nothing is rendered for it until the label is defined.",
	},
	ErrMountTarget: {
		Category: CategoryMount,
		Message:  "Mount target missing",
		Detail:   "No container was given and the document has no body.",
	},
	ErrMiddlewareCycle: {
		Category: CategoryCompose,
		Message:  "Middleware dependency cycle",
		Detail:   "A middleware depends on itself, directly or through other middleware.",
	},
	ErrMissingDependency: {
		Category: CategoryCompose,
		Message:  "Missing middleware dependency",
		Detail:   "A dependency was declared with a nil middleware.",
	},
	ErrMergeMismatch: {
		Category: CategoryRender,
		Message:  "Merge mismatch",
		Detail:   "Existing markup did not contain a node matching the rendered tree. A fresh node was created and the unmatched markup will be removed.",
	},
	ErrAmbiguousSiblings: {
		Category: CategoryRender,
		Message:  "Ambiguous sibling identity",
		Detail:   "Siblings of the same type have no key, so they are matched by position. Add keys when the list can be reordered.",
	},
	ErrAlreadyMounted: {
		Category: CategoryMount,
		Message:  "Renderer already mounted",
	},
	ErrDuplicateLabel: {
		Category: CategoryRender,
		Message:  "Registry label already defined",
	},

	// ============================================
	// Config Errors (E020-E039)
	// ============================================

	ErrConfigRead: {
		Category: CategoryConfig,
		Message:  "Config file unreadable",
	},
	ErrConfigParse: {
		Category: CategoryConfig,
		Message:  "Invalid config syntax",
		Detail:   "canopy.json could not be parsed. Check for trailing commas and unquoted keys.",
	},
	ErrConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid config value",
	},
	ErrConfigNotFound: {
		Category: CategoryConfig,
		Message:  "Config file not found",
	},

	// ============================================
	// Dev Server and Snapshot Errors (E040-E059)
	// ============================================

	ErrDevServer: {
		Category: CategoryDev,
		Message:  "Dev server failed",
	},
	ErrDevSession: {
		Category: CategoryDev,
		Message:  "Unknown preview session",
	},
	ErrSnapshotStore: {
		Category: CategorySnapshot,
		Message:  "Snapshot store failed",
	},

	// ============================================
	// CLI Errors (E060-E079)
	// ============================================

	ErrCLIUsage: {
		Category: CategoryCLI,
		Message:  "Invalid command input",
		Detail:   "A flag or argument was not accepted. Run the command with --help for its usage.",
	},
}

// GetAllCodes returns all registered error codes in sorted order.
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

// Explain returns the long explanation registered for code.
func Explain(code string) string {
	return registry[code].Detail
}

// Suggest returns the candidate closest to name by edit distance, or "" when
// none is within a third of the name's length.
func Suggest(name string, candidates []string) string {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, c)
		if bestDist < 0 || d < bestDist || (d == bestDist && c < best) {
			best, bestDist = c, d
		}
	}
	limit := len(name)/3 + 1
	if bestDist < 0 || bestDist > limit {
		return ""
	}
	return best
}
