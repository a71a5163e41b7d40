package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Hint     string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Project configuration (E100-E109)
	"E100": {
		Category: CategoryConfig,
		Message:  "components.json not found",
		Hint:     "Run 'zoo init' in your project root first",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid components.json",
		Hint:     "Check that components.json is valid JSON and matches the schema",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "components.json already exists",
		Hint:     "Edit the existing file or delete it before running 'zoo init' again",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid import alias",
		Hint:     "Aliases must be non-empty, absolute (e.g. @/components/ui) and must not point into @zoo/ui",
	},

	// Repository discovery (E110-E119)
	"E110": {
		Category: CategoryRepo,
		Message:  "Zoo repository not found",
		Hint:     "Set ZOO_REPO_PATH to a local checkout or pass --repo",
	},
	"E111": {
		Category: CategoryRepo,
		Message:  "Repository download failed",
	},

	// Components (E120-E129)
	"E120": {
		Category: CategoryComponent,
		Message:  "Component not found",
		Hint:     "Run 'zoo list' to see available components",
	},
	"E121": {
		Category: CategoryComponent,
		Message:  "Component file missing",
		Hint:     "Your repository checkout may be outdated; pull the latest changes",
	},
	"E122": {
		Category: CategoryComponent,
		Message:  "Failed to copy component files",
	},

	// Catalog and registry (E130-E139)
	"E130": {
		Category: CategoryCatalog,
		Message:  "Invalid component catalog",
	},
	"E131": {
		Category: CategoryRegistry,
		Message:  "Registry build failed",
	},
	"E132": {
		Category: CategoryRegistry,
		Message:  "Registry file unreadable",
		Hint:     "Run 'zoo registry build' to generate it",
	},

	// Publishing (E140-E149)
	"E140": {
		Category: CategoryPublish,
		Message:  "Registry publish failed",
		Hint:     "Check your AWS credentials and bucket name",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
