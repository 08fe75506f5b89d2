package analyzer

import (
	"regexp"
	"strings"
)

// maxVarResolutionPasses bounds var() rewriting so that cyclic or
// self-referential variable chains always terminate. Whatever is still
// unresolved after the last pass is returned as-is; callers treat a
// remaining "var(" substring as unresolved and skip the declaration.
const maxVarResolutionPasses = 10

// varUsagePattern matches var(--name) and var(--name, fallback). The
// fallback group tolerates one level of nested parentheses; deeper
// nesting resolves over successive passes.
var varUsagePattern = regexp.MustCompile(`var\(\s*(--[A-Za-z0-9_-]+)\s*(?:,\s*([^()]*(?:\([^()]*\)[^()]*)*))?\)`)

// ResolveVar rewrites var() references in value against the given
// declaration map. Lookup order per reference: declared value, inline
// fallback, then the var() token is left untouched.
func ResolveVar(value string, declarations map[string]string) string {
	current := value
	for i := 0; i < maxVarResolutionPasses; i++ {
		if !strings.Contains(current, "var(") {
			return current
		}
		next := varUsagePattern.ReplaceAllStringFunc(current, func(match string) string {
			sub := varUsagePattern.FindStringSubmatch(match)
			if sub == nil {
				return match
			}
			name, fallback := sub[1], strings.TrimSpace(sub[2])
			if declared, ok := declarations[name]; ok {
				return strings.TrimSpace(declared)
			}
			if fallback != "" {
				return fallback
			}
			return match
		})
		if next == current {
			return current
		}
		current = next
	}
	return current
}

// IsResolved reports whether a value no longer carries var() tokens.
func IsResolved(value string) bool {
	return !strings.Contains(value, "var(")
}
