package transplant

import (
	"regexp"
	"strings"

	"github.com/flowtomic/zoo/internal/config"
)

// importSpecifier matches the quoted module specifier of an import or
// re-export: `from "x"`, `import "x"` and `import("x")`.
var importSpecifier = regexp.MustCompile(`\b(from|import)(\s*\(?\s*)(["'])([^"'\n]+)(["'])`)

// Rewriter maps the import paths used inside the Zoo sources to the aliases
// of a consumer project.
type Rewriter struct {
	aliases config.Aliases

	utils     *regexp.Regexp
	component *regexp.Regexp
	hooks     *regexp.Regexp
}

// NewRewriter builds a Rewriter for the given aliases.
func NewRewriter(aliases config.Aliases) *Rewriter {
	pkg := regexp.QuoteMeta(config.SourcePackage)
	return &Rewriter{
		aliases: aliases,
		utils: regexp.MustCompile(
			`^(?:` + pkg + `/|(?:\.\./)+)lib/utils$`),
		component: regexp.MustCompile(
			`^(?:` + pkg + `/components/|(?:\.\./)+)(?:atoms|molecules|organisms)/([a-z0-9-]+)(?:/index)?$`),
		hooks: regexp.MustCompile(
			`^(?:` + pkg + `/|(?:\.\./)+)hooks((?:/[A-Za-z0-9_.-]+)*)$`),
	}
}

// Rewrite returns content with every matching import specifier replaced.
// Rewriting its own output changes nothing.
func (r *Rewriter) Rewrite(content string) string {
	return importSpecifier.ReplaceAllStringFunc(content, func(match string) string {
		m := importSpecifier.FindStringSubmatch(match)
		if m[3] != m[5] {
			return match
		}
		spec, ok := r.RewriteSpecifier(m[4])
		if !ok {
			return match
		}
		return m[1] + m[2] + m[3] + spec + m[5]
	})
}

// RewriteSpecifier maps a single module specifier. The boolean reports
// whether any rule applied.
func (r *Rewriter) RewriteSpecifier(spec string) (string, bool) {
	switch {
	case r.utils.MatchString(spec):
		return r.aliases.Utils, true
	case r.component.MatchString(spec):
		name := r.component.FindStringSubmatch(spec)[1]
		return strings.TrimSuffix(r.aliases.UI, "/") + "/" + name, true
	case r.hooks.MatchString(spec):
		rest := r.hooks.FindStringSubmatch(spec)[1]
		return strings.TrimSuffix(r.aliases.Hooks, "/") + rest, true
	}
	return spec, false
}
