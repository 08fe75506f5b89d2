package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectWebfonts(t *testing.T) {
	htmlText := `<!DOCTYPE html><html><head>
<link rel="preconnect" href="https://fonts.gstatic.com">
<link rel="stylesheet" href="https://fonts.googleapis.com/css2?family=Inter:wght@400;700">
<link rel="stylesheet" href="styles/main.css">
</head><body></body></html>`

	rawCSS := `
@import url("https://fonts.bunny.net/css?family=lato");
@font-face {
	font-family: "Custom";
	src: url("fonts/custom.woff2") format("woff2");
}
`

	fonts := detectWebfonts(htmlText, rawCSS)
	require.Len(t, fonts, 3)
	assert.Equal(t, "Google Fonts", fonts[0].Provider)
	assert.Equal(t, WebfontSourceHTMLLink, fonts[0].Source)
	assert.Equal(t, "Bunny Fonts", fonts[1].Provider)
	assert.Equal(t, WebfontSourceCSSImport, fonts[1].Source)
	assert.Equal(t, "self-hosted", fonts[2].Provider)
	assert.Equal(t, WebfontSourceFontFace, fonts[2].Source)
}

func TestSplitFamilyStack(t *testing.T) {
	primary, fallbacks, hasGeneric := splitFamilyStack(`"Open Sans", Helvetica, sans-serif`)
	assert.Equal(t, "Open Sans", primary)
	assert.Equal(t, []string{"Helvetica", "Sans-serif"}, fallbacks)
	assert.True(t, hasGeneric)

	primary, fallbacks, hasGeneric = splitFamilyStack("Georgia")
	assert.Equal(t, "Georgia", primary)
	assert.Empty(t, fallbacks)
	assert.False(t, hasGeneric)
}

func TestParseFontShorthand(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		size       string
		lineHeight string
		family     string
	}{
		{"full shorthand", "italic bold 16px/1.5 Georgia, serif", "16px", "1.5", "Georgia, serif"},
		{"size and family only", "1rem Arial, sans-serif", "1rem", "", "Arial, sans-serif"},
		{"normal line-height dropped", "14px/normal Verdana", "14px", "", "Verdana"},
		{"system keyword rejected", "menu", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, lh, family := parseFontShorthand(tt.value)
			assert.Equal(t, tt.size, size)
			assert.Equal(t, tt.lineHeight, lh)
			assert.Equal(t, tt.family, family)
		})
	}
}

func TestAnalyzeTypography(t *testing.T) {
	compiledCSS := `
:root {
	--font-body: "Open Sans", sans-serif;
}
body {
	font-family: var(--font-body);
	font-size: 1rem;
	line-height: 1.5;
}
h1 {
	font-size: 2.5rem;
	line-height: 1.2;
}
.small {
	font-size: 0.875rem;
}
`
	a := AnalyzeTypography("", "", compiledCSS)

	require.Contains(t, a.Families, "Open Sans")
	profile := a.Families["Open Sans"]
	assert.True(t, profile.Global)
	assert.True(t, profile.HasGenericFallback)

	assert.Equal(t, 1, a.FamilyDeclCount)
	assert.Equal(t, 3, a.SizeDeclCount)
	assert.Equal(t, 2, a.LineHeightCount)
	assert.True(t, a.HasGlobalFamily)
	assert.InDelta(t, 1.0, a.RelativeSizeRatio, 1e-9)
	assert.InDelta(t, 1.0, a.ProportionalLHRate, 1e-9)
	assert.InDelta(t, 1.0, a.InheritanceQuality, 1e-9)

	assert.Equal(t, 25, a.Breakdown["inheritance"].Score)
	assert.Equal(t, 20, a.Breakdown["fallbacks"].Score)
	// 3 sizes for one family, all relative units.
	assert.Equal(t, 20, a.Breakdown["sizes"].Score)
	assert.Equal(t, GradeFor(a.Total), a.Grade)
}

func TestAnalyzeTypographyUnresolvedVarDropped(t *testing.T) {
	compiledCSS := `
body {
	font-family: var(--missing-family);
	font-size: 16px;
}
`
	a := AnalyzeTypography("", "", compiledCSS)
	assert.Empty(t, a.Families)
	assert.Equal(t, 0, a.FamilyDeclCount)
	assert.Equal(t, 1, a.SizeDeclCount)
}

func TestIsProportionalLineHeight(t *testing.T) {
	assert.True(t, isProportionalLineHeight("1.5"))
	assert.True(t, isProportionalLineHeight("normal"))
	assert.True(t, isProportionalLineHeight("150%"))
	assert.False(t, isProportionalLineHeight("24px"))
	assert.False(t, isProportionalLineHeight("1.5em"))
}
