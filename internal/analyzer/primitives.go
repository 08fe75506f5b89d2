package analyzer

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Declaration is a single property: value pair inside a rule.
type Declaration struct {
	Property string
	Value    string
}

var blockCommentPattern = regexp.MustCompile(`(?s)/\*.*?\*/`)

// StripComments removes block comments so they can never be misparsed
// as @import statements or selectors.
func StripComments(cssText string) string {
	return blockCommentPattern.ReplaceAllString(cssText, "")
}

// WalkRules tokenizes CSS and invokes fn once per style rule with the
// raw selector text and its declarations. Conditional group rules
// (@media, @supports, @layer, @container) are descended into;
// @keyframes, @font-face and other at-rule bodies are skipped, as are
// at-statements such as @import and @charset.
func WalkRules(cssText string, fn func(selector string, decls []Declaration)) {
	lexer := css.NewLexer(parse.NewInputString(cssText))
	var prelude strings.Builder

	for {
		tt, text := lexer.Next()
		if tt == css.ErrorToken {
			return
		}

		switch tt {
		case css.CommentToken:
			// ignore
		case css.AtKeywordToken:
			name := strings.ToLower(string(text))
			switch name {
			case "@media", "@supports", "@layer", "@container":
				consumePrelude(lexer)
			default:
				skipAtRule(lexer)
			}
			prelude.Reset()
		case css.LeftBraceToken:
			decls := readDeclarations(lexer)
			selector := strings.TrimSpace(prelude.String())
			prelude.Reset()
			if selector != "" {
				fn(selector, decls)
			}
		case css.RightBraceToken, css.SemicolonToken:
			// end of a conditional group or stray statement
			prelude.Reset()
		default:
			prelude.Write(text)
		}
	}
}

// consumePrelude reads up to the opening brace (or terminating
// semicolon) of a conditional group rule, leaving the lexer positioned
// inside the block so nested rules surface at the caller's level.
func consumePrelude(lexer *css.Lexer) {
	for {
		tt, _ := lexer.Next()
		if tt == css.ErrorToken || tt == css.LeftBraceToken || tt == css.SemicolonToken {
			return
		}
	}
}

// skipAtRule consumes an entire at-rule, either up to its terminating
// semicolon or across its full block, tracking nested braces so that
// @keyframes step bodies are swallowed too.
func skipAtRule(lexer *css.Lexer) {
	depth := 0
	for {
		tt, _ := lexer.Next()
		switch tt {
		case css.ErrorToken:
			return
		case css.SemicolonToken:
			if depth == 0 {
				return
			}
		case css.LeftBraceToken:
			depth++
		case css.RightBraceToken:
			depth--
			if depth <= 0 {
				return
			}
		}
	}
}

// readDeclarations reads property: value pairs until the closing brace.
func readDeclarations(lexer *css.Lexer) []Declaration {
	var decls []Declaration
	var currentProp string
	var currentVal []string

	flush := func() {
		if currentProp != "" && len(currentVal) > 0 {
			decls = append(decls, Declaration{
				Property: strings.ToLower(currentProp),
				Value:    strings.TrimSpace(strings.Join(currentVal, "")),
			})
		}
		currentProp = ""
		currentVal = nil
	}

	for {
		tt, text := lexer.Next()
		if tt == css.ErrorToken || tt == css.RightBraceToken {
			flush()
			return decls
		}

		switch {
		case (tt == css.IdentToken || tt == css.CustomPropertyNameToken) && currentProp == "":
			currentProp = string(text)
		case tt == css.ColonToken && currentProp != "" && currentVal == nil:
			currentVal = []string{}
		case tt == css.SemicolonToken:
			flush()
		case currentProp != "" && currentVal != nil:
			currentVal = append(currentVal, string(text))
		}
	}
}

// importStatementPattern matches @import url(...) and @import "..."
// forms, capturing the path and any trailing media query.
var importStatementPattern = regexp.MustCompile(`@import\s+(?:url\(\s*['"]?([^'")]+)['"]?\s*\)|['"]([^'"]+)['"])\s*([^;]*);`)

// ImportStatement is a raw @import occurrence in source CSS.
type ImportStatement struct {
	Path       string
	MediaQuery string
}

// ExtractImports scans comment-stripped CSS for @import statements.
func ExtractImports(rawCSS string) []ImportStatement {
	var imports []ImportStatement
	for _, m := range importStatementPattern.FindAllStringSubmatch(StripComments(rawCSS), -1) {
		path := m[1]
		if path == "" {
			path = m[2]
		}
		imports = append(imports, ImportStatement{
			Path:       strings.TrimSpace(path),
			MediaQuery: strings.TrimSpace(m[3]),
		})
	}
	return imports
}

// Import categories, keyed off path segments and file names.
const (
	CategoryBase       = "base"
	CategoryComponents = "components"
	CategoryLayout     = "layout"
	CategoryUtils      = "utils"
	CategoryTheme      = "theme"
	CategoryVendor     = "vendor"
	CategoryPages      = "pages"
	CategoryFonts      = "fonts"
	CategoryNormalize  = "normalize"
	CategoryFramework  = "framework"
	CategoryMain       = "main"
	CategoryCustom     = "custom"
)

// ImportCategory classifies an import path into a stylesheet category.
// More specific keywords win over generic ones.
func ImportCategory(path string) string {
	p := strings.ToLower(path)
	switch {
	case strings.Contains(p, "normalize") || strings.Contains(p, "sanitize"):
		return CategoryNormalize
	case strings.Contains(p, "fonts.googleapis") || strings.Contains(p, "font"):
		return CategoryFonts
	case strings.Contains(p, "bootstrap") || strings.Contains(p, "tailwind") ||
		strings.Contains(p, "bulma") || strings.Contains(p, "foundation") ||
		strings.Contains(p, "materialize"):
		return CategoryFramework
	case strings.Contains(p, "vendor") || strings.Contains(p, "node_modules") ||
		strings.Contains(p, "/lib/"):
		return CategoryVendor
	case strings.Contains(p, "component") || strings.Contains(p, "button") ||
		strings.Contains(p, "card") || strings.Contains(p, "modal") ||
		strings.Contains(p, "nav") || strings.Contains(p, "form"):
		return CategoryComponents
	case strings.Contains(p, "layout") || strings.Contains(p, "grid") ||
		strings.Contains(p, "header") || strings.Contains(p, "footer"):
		return CategoryLayout
	case strings.Contains(p, "util") || strings.Contains(p, "helper") ||
		strings.Contains(p, "mixin"):
		return CategoryUtils
	case strings.Contains(p, "theme") || strings.Contains(p, "variable") ||
		strings.Contains(p, "token") || strings.Contains(p, "color"):
		return CategoryTheme
	case strings.Contains(p, "page") || strings.Contains(p, "view") ||
		strings.Contains(p, "home") || strings.Contains(p, "about") ||
		strings.Contains(p, "contact"):
		return CategoryPages
	case strings.Contains(p, "base") || strings.Contains(p, "reset") ||
		strings.Contains(p, "typography"):
		return CategoryBase
	case strings.Contains(p, "main") || strings.Contains(p, "style") ||
		strings.Contains(p, "index") || strings.Contains(p, "global") ||
		strings.Contains(p, "app"):
		return CategoryMain
	default:
		return CategoryCustom
	}
}

// HasNamingIssues reports whether a relative stylesheet path carries
// spaces, accents, uppercase letters or special characters. Only
// meaningful for relative/root-relative non-font paths.
func HasNamingIssues(path string) bool {
	for _, r := range path {
		switch {
		case r == ' ':
			return true
		case unicode.IsUpper(r):
			return true
		case r > unicode.MaxASCII:
			return true
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			// ok
		case r == '-' || r == '_' || r == '.' || r == '/':
			// ok
		default:
			return true
		}
	}
	return false
}

// Custom property categories.
const (
	VarCategoryColor      = "color"
	VarCategoryTypography = "typography"
	VarCategorySpacing    = "spacing"
	VarCategoryLayout     = "layout"
	VarCategoryZIndex     = "zIndex"
	VarCategoryRadius     = "radius"
	VarCategoryOther      = "other"
)

// VariableCategory classifies a custom property by its name.
func VariableCategory(name string) string {
	n := strings.ToLower(strings.TrimPrefix(name, "--"))
	switch {
	case strings.Contains(n, "color") || strings.Contains(n, "bg") ||
		strings.Contains(n, "background") || strings.Contains(n, "border-c") ||
		strings.Contains(n, "accent") || strings.Contains(n, "primary") ||
		strings.Contains(n, "secondary"):
		return VarCategoryColor
	case strings.Contains(n, "font") || strings.Contains(n, "text") ||
		strings.Contains(n, "line-height") || strings.Contains(n, "letter"):
		return VarCategoryTypography
	case strings.Contains(n, "radius") || strings.Contains(n, "rounded"):
		return VarCategoryRadius
	case strings.Contains(n, "z-index") || strings.Contains(n, "z-") ||
		strings.Contains(n, "layer") || strings.HasPrefix(n, "index"):
		return VarCategoryZIndex
	case strings.Contains(n, "space") || strings.Contains(n, "spacing") ||
		strings.Contains(n, "gap") || strings.Contains(n, "margin") ||
		strings.Contains(n, "padding"):
		return VarCategorySpacing
	case strings.Contains(n, "width") || strings.Contains(n, "height") ||
		strings.Contains(n, "container") || strings.Contains(n, "breakpoint") ||
		strings.Contains(n, "grid"):
		return VarCategoryLayout
	default:
		return VarCategoryOther
	}
}

// globalSelectors establish page-wide typography inheritance.
var globalSelectors = map[string]bool{
	"html":  true,
	"body":  true,
	":root": true,
	"*":     true,
}

// IsGlobalSelector reports whether any comma-separated part of the
// selector targets the page root.
func IsGlobalSelector(selector string) bool {
	for _, part := range strings.Split(selector, ",") {
		if globalSelectors[strings.TrimSpace(part)] {
			return true
		}
	}
	return false
}

// genericFontFamilies is the set of CSS generic fallback families.
var genericFontFamilies = map[string]bool{
	"serif":      true,
	"sans-serif": true,
	"monospace":  true,
	"cursive":    true,
	"fantasy":    true,
	"system-ui":  true,
}

// IsGenericFamily reports whether name is a CSS generic font family.
func IsGenericFamily(name string) bool {
	return genericFontFamilies[strings.ToLower(strings.TrimSpace(name))]
}

// TitleCaseFamily normalizes a font family name, title-casing each
// word so "open sans" and "Open Sans" land in the same bucket.
func TitleCaseFamily(name string) string {
	name = strings.Trim(strings.TrimSpace(name), `'"`)
	words := strings.Fields(name)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		if len(runes) > 0 {
			runes[0] = unicode.ToUpper(runes[0])
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// classTokenPattern extracts class tokens from a selector.
var classTokenPattern = regexp.MustCompile(`\.(-?[_a-zA-Z][\w-]*)`)

// SelectorClasses returns the class tokens of a single selector.
func SelectorClasses(selector string) []string {
	var classes []string
	for _, m := range classTokenPattern.FindAllStringSubmatch(selector, -1) {
		classes = append(classes, m[1])
	}
	return classes
}
