package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkRules(t *testing.T) {
	cssText := `
:root {
	--primary: #336699;
}

.btn {
	color: var(--primary);
	padding: 0.5rem 1rem;
}

@media (min-width: 768px) {
	.btn { padding: 1rem 2rem; }
}

@keyframes spin {
	from { transform: rotate(0deg); }
	to { transform: rotate(360deg); }
}

@import url("ignored.css");

.card__title { font-size: 1.25rem; }
`

	type rule struct {
		selector string
		decls    []Declaration
	}
	var rules []rule
	WalkRules(cssText, func(selector string, decls []Declaration) {
		rules = append(rules, rule{selector, decls})
	})

	require.Len(t, rules, 4, "keyframes steps and import must not surface as rules")

	assert.Equal(t, ":root", rules[0].selector)
	require.Len(t, rules[0].decls, 1)
	assert.Equal(t, "--primary", rules[0].decls[0].Property)
	assert.Equal(t, "#336699", rules[0].decls[0].Value)

	assert.Equal(t, ".btn", rules[1].selector)
	require.Len(t, rules[1].decls, 2)
	assert.Equal(t, "color", rules[1].decls[0].Property)
	assert.Equal(t, "var(--primary)", rules[1].decls[0].Value)

	// Rule nested inside @media surfaces with its own selector.
	assert.Equal(t, ".btn", rules[2].selector)
	assert.Equal(t, ".card__title", rules[3].selector)
}

func TestWalkRulesEmptyAndMalformed(t *testing.T) {
	var count int
	WalkRules("", func(string, []Declaration) { count++ })
	assert.Zero(t, count)

	// Unclosed block must not loop forever.
	WalkRules(".open { color: red;", func(selector string, decls []Declaration) {
		count++
		assert.Equal(t, ".open", selector)
		assert.Len(t, decls, 1)
	})
	assert.Equal(t, 1, count)
}

func TestExtractImports(t *testing.T) {
	rawCSS := `
/* @import url("commented-out.css"); */
@import url("base/reset.css");
@import 'components/button.css';
@import url(https://fonts.googleapis.com/css2?family=Inter) screen;
`

	imports := ExtractImports(rawCSS)
	require.Len(t, imports, 3)
	assert.Equal(t, "base/reset.css", imports[0].Path)
	assert.Equal(t, "components/button.css", imports[1].Path)
	assert.Equal(t, "https://fonts.googleapis.com/css2?family=Inter", imports[2].Path)
	assert.Equal(t, "screen", imports[2].MediaQuery)
}

func TestImportCategory(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"base/normalize.css", CategoryNormalize},
		{"https://fonts.googleapis.com/css2?family=Inter", CategoryFonts},
		{"vendor/bootstrap.min.css", CategoryFramework},
		{"node_modules/some-lib/dist.css", CategoryVendor},
		{"components/button.css", CategoryComponents},
		{"layout/grid.css", CategoryLayout},
		{"utils/helpers.css", CategoryUtils},
		{"theme/variables.css", CategoryTheme},
		{"pages/home.css", CategoryPages},
		{"base/typography.css", CategoryBase},
		{"main.css", CategoryMain},
		{"misc.css", CategoryCustom},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ImportCategory(tt.path))
		})
	}
}

func TestHasNamingIssues(t *testing.T) {
	assert.False(t, HasNamingIssues("components/button.css"))
	assert.False(t, HasNamingIssues("base/_reset.css"))
	assert.True(t, HasNamingIssues("My Styles.css"))
	assert.True(t, HasNamingIssues("thème.css"))
	assert.True(t, HasNamingIssues("Button.css"))
}

func TestVariableCategory(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"--color-primary", VarCategoryColor},
		{"--bg-surface", VarCategoryColor},
		{"--font-size-base", VarCategoryTypography},
		{"--line-height-tight", VarCategoryTypography},
		{"--radius-md", VarCategoryRadius},
		{"--z-index-modal", VarCategoryZIndex},
		{"--space-4", VarCategorySpacing},
		{"--gap-sm", VarCategorySpacing},
		{"--container-width", VarCategoryLayout},
		{"--whatever", VarCategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VariableCategory(tt.name))
		})
	}
}

func TestIsGlobalSelector(t *testing.T) {
	assert.True(t, IsGlobalSelector("body"))
	assert.True(t, IsGlobalSelector(":root"))
	assert.True(t, IsGlobalSelector("html, body"))
	assert.False(t, IsGlobalSelector(".body"))
	assert.False(t, IsGlobalSelector("body .content"))
}

func TestTitleCaseFamily(t *testing.T) {
	assert.Equal(t, "Open Sans", TitleCaseFamily(`"open sans"`))
	assert.Equal(t, "Open Sans", TitleCaseFamily("'Open Sans'"))
	assert.Equal(t, "Inter", TitleCaseFamily(" inter "))
}

func TestSelectorClasses(t *testing.T) {
	assert.Equal(t, []string{"btn", "btn--primary"}, SelectorClasses(".btn.btn--primary"))
	assert.Equal(t, []string{"card__title"}, SelectorClasses("article .card__title:hover"))
	assert.Nil(t, SelectorClasses("h1, h2"))
}
