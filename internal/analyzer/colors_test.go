package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSample(t *testing.T, literal string) ColorSample {
	t.Helper()
	s, ok := parseColorSample(literal, 1)
	require.True(t, ok, "expected %q to parse", literal)
	return s
}

func TestSimilarColors(t *testing.T) {
	tests := []struct {
		name    string
		first   string
		second  string
		similar bool
	}{
		{"near identical reds", "#ff0000", "#fe0101", true},
		{"red and blue", "#ff0000", "#0000ff", false},
		{"close grays", "#f0f0f0", "#ececec", true},
		{"black and white", "#000000", "#ffffff", false},
		{"same color different syntax", "#ff0000", "rgb(255, 0, 0)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustSample(t, tt.first)
			b := mustSample(t, tt.second)
			assert.Equal(t, tt.similar, SimilarColors(a, b))
			// Symmetry must hold regardless of argument order.
			assert.Equal(t, SimilarColors(a, b), SimilarColors(b, a))
		})
	}
}

func TestParseColorSample(t *testing.T) {
	t.Run("short hex expands", func(t *testing.T) {
		short := mustSample(t, "#f00")
		long := mustSample(t, "#ff0000")
		assert.InDelta(t, long.L, short.L, 1e-9)
		assert.InDelta(t, long.C, short.C, 1e-9)
		assert.InDelta(t, long.H, short.H, 1e-9)
	})

	t.Run("hex with alpha is transparent", func(t *testing.T) {
		s := mustSample(t, "#ff000080")
		assert.Less(t, s.Alpha, 1.0)
	})

	t.Run("rgba alpha", func(t *testing.T) {
		s := mustSample(t, "rgba(255, 0, 0, 0.5)")
		assert.InDelta(t, 0.5, s.Alpha, 1e-9)
	})

	t.Run("transparent keyword", func(t *testing.T) {
		s := mustSample(t, "transparent")
		assert.Zero(t, s.Alpha)
	})

	t.Run("oklch passthrough", func(t *testing.T) {
		s := mustSample(t, "oklch(62.8% 0.258 29.2)")
		assert.InDelta(t, 0.628, s.L, 1e-9)
		assert.InDelta(t, 0.258, s.C, 1e-9)
		assert.InDelta(t, 29.2, s.H, 1e-9)
	})

	t.Run("named color", func(t *testing.T) {
		named := mustSample(t, "red")
		hex := mustSample(t, "#ff0000")
		assert.InDelta(t, hex.L, named.L, 1e-9)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, ok := parseColorSample("not-a-color", 1)
		assert.False(t, ok)
	})
}

func TestAchromatic(t *testing.T) {
	assert.True(t, mustSample(t, "#808080").Achromatic())
	assert.True(t, mustSample(t, "#ffffff").Achromatic())
	assert.False(t, mustSample(t, "#ff0000").Achromatic())
}

func TestAnalyzeColorsEmpty(t *testing.T) {
	a := AnalyzeColors(map[string]int{})
	assert.Equal(t, 0, a.Total)
	assert.Equal(t, "N/A", a.Grade)
	assert.Len(t, a.Breakdown, 5)
}

func TestAnalyzeColors(t *testing.T) {
	frequencies := map[string]int{
		"#1a1a2e":            4,
		"#e94560":            3,
		"#0f3460":            2,
		"#16213e":            2,
		"#f5f5f5":            5,
		"#ffffff":            8,
		"#2ecc71":            1,
		"#f39c12":            1,
		"rgba(0, 0, 0, 0.4)": 2,
		"var(--color-brand)": 6,
	}

	a := AnalyzeColors(frequencies)

	assert.Equal(t, 9, a.UniqueColors)
	assert.Equal(t, 1, a.TransparentCount)
	require.Contains(t, a.Breakdown, "paletteSize")
	assert.Equal(t, 30, a.Breakdown["paletteSize"].Score, "8-15 colors is the sweet spot")
	assert.Equal(t, 8, a.Formats["hex"])
	assert.Equal(t, 1, a.Formats["rgb"])
	assert.Equal(t, 1, a.Formats["variable"])
	assert.NotEmpty(t, a.Improvements)
	assert.Equal(t, GradeFor(a.Total), a.Grade)

	sum := 0
	for _, c := range a.Breakdown {
		sum += c.Score
	}
	assert.Equal(t, sum, a.Total)
}

func TestAnalyzeColorsSimilarPairsPenalty(t *testing.T) {
	tight := AnalyzeColors(map[string]int{
		"#ff0000": 1, "#00aa00": 1, "#0000ff": 1, "#ffaa00": 1,
		"#111111": 1, "#eeeeee": 1, "#aa00aa": 1, "#00aaaa": 1,
	})
	muddy := AnalyzeColors(map[string]int{
		"#ff0000": 1, "#fe0101": 1, "#fd0202": 1, "#fc0303": 1,
		"#111111": 1, "#eeeeee": 1, "#aa00aa": 1, "#00aaaa": 1,
	})

	assert.Empty(t, tight.SimilarPairs)
	assert.NotEmpty(t, muddy.SimilarPairs)
	assert.Greater(t, tight.Breakdown["consistency"].Score, muddy.Breakdown["consistency"].Score)
}

func TestCollectColorLiterals(t *testing.T) {
	css := `
:root {
	--color-brand: #e94560;
}
.btn {
	color: #fff;
	background: var(--color-brand);
	border: 1px solid rgba(0, 0, 0, 0.2);
}
.card {
	color: #fff;
	background-color: tomato;
	margin: 10px;
}
`
	counts := CollectColorLiterals(css)

	assert.Equal(t, 2, counts["#fff"])
	assert.Equal(t, 1, counts["#e94560"])
	assert.Equal(t, 1, counts["rgba(0, 0, 0, 0.2)"])
	assert.Equal(t, 1, counts["var(--color-brand)"])
	assert.Equal(t, 1, counts["tomato"])
	assert.NotContains(t, counts, "10px")
}
