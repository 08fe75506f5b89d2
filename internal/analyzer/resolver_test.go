package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveVar(t *testing.T) {
	decls := map[string]string{
		"--primary": "#336699",
		"--accent":  "var(--primary)",
		"--space":   "1rem",
	}

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"plain value untouched", "#fff", "#fff"},
		{"direct reference", "var(--primary)", "#336699"},
		{"chained reference", "var(--accent)", "#336699"},
		{"reference inside shorthand", "0 var(--space) 0 var(--space)", "0 1rem 0 1rem"},
		{"fallback used when undeclared", "var(--missing, 2rem)", "2rem"},
		{"declared value wins over fallback", "var(--primary, red)", "#336699"},
		{"function fallback", "var(--missing, rgb(0, 0, 0))", "rgb(0, 0, 0)"},
		{"undeclared without fallback kept", "var(--missing)", "var(--missing)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveVar(tt.value, decls))
		})
	}
}

func TestResolveVarCyclicTerminates(t *testing.T) {
	decls := map[string]string{
		"--a": "var(--b)",
		"--b": "var(--a)",
	}

	got := ResolveVar("var(--a)", decls)
	// The cycle can never settle; the resolver must still return, and
	// the result must read as unresolved.
	assert.False(t, IsResolved(got))
}

func TestResolveVarSelfReferenceTerminates(t *testing.T) {
	decls := map[string]string{"--loop": "var(--loop)"}
	got := ResolveVar("var(--loop)", decls)
	assert.False(t, IsResolved(got))
}

func TestIsResolved(t *testing.T) {
	assert.True(t, IsResolved("#fff"))
	assert.True(t, IsResolved("1rem solid red"))
	assert.False(t, IsResolved("var(--primary)"))
	assert.False(t, IsResolved("0 var(--space)"))
}
