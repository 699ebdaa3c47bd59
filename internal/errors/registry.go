package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Render Errors (R001-R099)
	// ============================================

	"R001": {
		Category:   CategoryRender,
		Message:    "Component render panicked",
		Detail:     "The render function panicked. The component was replaced by an empty placeholder and the rest of the tree was left untouched.",
		Suggestion: "Check the render function for nil dereferences and failed type assertions on props.",
	},
	"R002": {
		Category:   CategoryRender,
		Message:    "Component has no render function",
		Detail:     "Neither Setup returned a render function nor was Render set on the component type.",
		Suggestion: "Return a vdom.RenderFunc from Setup or set ComponentType.Render.",
	},
	"R003": {
		Category: CategoryRender,
		Message:  "Component setup panicked",
		Detail:   "Setup panicked while the instance was being created. The component renders as an empty placeholder.",
	},
	"R004": {
		Category: CategoryRender,
		Message:  "Lifecycle hook panicked",
		Detail:   "A lifecycle hook panicked. Remaining hooks for the same event still ran.",
	},

	// ============================================
	// Scheduler Errors (S001-S099)
	// ============================================

	"S001": {
		Category:   CategoryScheduler,
		Message:    "Flush pass limit exceeded",
		Detail:     "Jobs kept queueing more jobs within a single flush. The remaining jobs were dropped.",
		Suggestion: "Look for an effect or watcher that writes state it also reads.",
	},

	// ============================================
	// Protocol Errors (P001-P099)
	// ============================================

	"P001": {
		Category: CategoryProtocol,
		Message:  "Malformed frame",
		Detail:   "The frame header or payload could not be decoded.",
	},
	"P002": {
		Category: CategoryProtocol,
		Message:  "Unknown command",
		Detail:   "The command type byte is not one this version understands.",
	},
	"P003": {
		Category: CategoryProtocol,
		Message:  "Frame too large",
		Detail:   "The payload exceeds the configured maximum frame size.",
	},

	// ============================================
	// Remote Errors (N001-N099)
	// ============================================

	"N001": {
		Category: CategoryRemote,
		Message:  "WebSocket upgrade failed",
		Detail:   "The HTTP request could not be upgraded to a WebSocket connection.",
	},
	"N002": {
		Category: CategoryRemote,
		Message:  "Viewer send buffer full",
		Detail:   "A viewer did not keep up with the command stream and was disconnected.",
	},

	// ============================================
	// Config Errors (C001-C099)
	// ============================================

	"C001": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration",
		Detail:     "A configuration value is out of range.",
		Suggestion: "Run `reactor serve --help` to see the accepted flags and defaults.",
	},
	"C002": {
		Category: CategoryConfig,
		Message:  "Configuration file unreadable",
		Detail:   "The configuration file exists but could not be read or parsed as JSON or YAML.",
	},

	// ============================================
	// Fixture Errors (F001-F099)
	// ============================================

	"F001": {
		Category:   CategoryFixture,
		Message:    "Invalid tree fixture",
		Detail:     "The fixture could not be parsed into a node tree.",
		Suggestion: "Each node needs exactly one of tag, text, comment or fragment.",
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

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
