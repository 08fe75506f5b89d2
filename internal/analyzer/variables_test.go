package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeCustomPropertiesEmpty(t *testing.T) {
	a := AnalyzeCustomProperties(".btn { color: red; }")
	assert.Equal(t, 0, a.Total)
	assert.Equal(t, "F", a.Grade)
	assert.Empty(t, a.Declared)
}

func TestAnalyzeCustomProperties(t *testing.T) {
	css := `
:root {
	--color-primary: #336699;
	--color-unused: #ff00ff;
	--font-size-base: 1rem;
	--space-2: 0.5rem;
	--radius-sm: 4px;
}
.btn {
	color: var(--color-primary);
	font-size: var(--font-size-base);
	padding: var(--space-2);
	border-radius: var(--radius-sm);
	border: 1px solid var(--color-border, #ccc);
}
`
	a := AnalyzeCustomProperties(css)

	require.Len(t, a.Declared, 5)
	assert.Equal(t, "--color-primary", a.Declared[0].Name)
	assert.Equal(t, VarCategoryColor, a.Declared[0].Category)
	assert.Equal(t, 1, a.Declared[0].UsageCount)

	assert.Equal(t, []string{"--color-unused"}, a.Unused)
	require.Len(t, a.Undeclared, 1)
	assert.Equal(t, "--color-border", a.Undeclared[0].Name)
	assert.Equal(t, "#ccc", a.Undeclared[0].Fallback)

	// All four tracked families are covered.
	assert.Equal(t, 10, a.Breakdown["categories"].Score)
	assert.Equal(t, GradeFor(a.Total), a.Grade)
}

func TestAnalyzeCustomPropertiesFirstDeclarationWins(t *testing.T) {
	css := `
:root { --color-primary: #111111; }
.theme-alt { --color-primary: #222222; }
.btn { color: var(--color-primary); }
`
	a := AnalyzeCustomProperties(css)

	require.Len(t, a.Declared, 1)
	assert.Equal(t, "#111111", a.Declared[0].DeclaredValue)
}

func TestAdoptionRatio(t *testing.T) {
	// Two declarations out of four use var().
	css := `
:root { --c: red; }
.a { color: var(--c); background: var(--c); margin: 0; padding: 0; }
`
	a := AnalyzeCustomProperties(css)
	assert.InDelta(t, 0.5, a.AdoptionRatio, 1e-9)
	assert.Equal(t, 40, a.Breakdown["adoption"].Score, "0.5 exceeds the adoption target")
}

func TestScoreVarHygiene(t *testing.T) {
	clean := scoreVarHygiene(0, 0, 10)
	assert.Equal(t, 20, clean.Score)

	ghosts := scoreVarHygiene(5, 0, 10)
	assert.Equal(t, 8, ghosts.Score, "undeclared penalty caps at 12")

	dead := scoreVarHygiene(0, 10, 10)
	assert.Equal(t, 12, dead.Score, "all-unused costs the full 8 points")
}
