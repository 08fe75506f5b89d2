package webaudit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierweb/webaudit/internal/analyzer"
)

const fixtureHTML = `<!DOCTYPE html><html><head>
<link rel="stylesheet" href="https://fonts.googleapis.com/css2?family=Inter">
</head><body>
<div class="card">
	<h2 class="card__title">Bonjour</h2>
	<img src="hero.webp" alt="Vue du campus" loading="lazy">
	<img src="deco.svg" alt="" aria-hidden="true">
</div>
<button class="btn btn--primary">OK</button>
</body></html>`

const fixtureCompiledCSS = `
:root {
	--color-primary: #336699;
	--font-size-base: 1rem;
	--space-2: 0.5rem;
	--radius-sm: 4px;
}
body {
	font-family: "Inter", sans-serif;
	font-size: var(--font-size-base);
	line-height: 1.5;
}
.card { padding: var(--space-2); border-radius: var(--radius-sm); }
.card__title { color: var(--color-primary); font-size: 1.5rem; }
.btn { background: #eeeeee; }
.btn--primary { background: var(--color-primary); color: #ffffff; }
`

func fixtureInput(baseURL string) ProjectInput {
	return ProjectInput{
		URL: baseURL,
		Pages: []Page{{
			URL:  baseURL,
			HTML: fixtureHTML,
			Images: []analyzer.ImageRecord{
				{Src: "hero.webp", Alt: "Vue du campus", HasLazyLoading: true},
				{Src: "deco.svg", Alt: "", AriaHidden: true},
			},
		}},
		RawCSS:      `@import url("styles/fonts.css");` + fixtureCompiledCSS,
		CompiledCSS: fixtureCompiledCSS,
	}
}

// stubServer answers every probe with 200 so import validity does not
// depend on the network.
func stubServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAuditorRun(t *testing.T) {
	srv := stubServer(t)
	report := New(srv.Client()).Run(fixtureInput(srv.URL))

	require.NotNil(t, report)
	assert.Equal(t, srv.URL, report.ProjectURL)
	assert.False(t, report.GeneratedAt.IsZero())

	scores := report.Scores()
	require.Len(t, scores, len(ScoreKeys))
	for _, key := range ScoreKeys {
		result, ok := scores[key]
		require.True(t, ok, "missing analyzer key %s", key)
		assert.NotEmpty(t, result.Breakdown, "empty breakdown for %s", key)
		assert.NotEmpty(t, result.Improvements, "empty improvements for %s", key)

		sum := 0
		for _, c := range result.Breakdown {
			sum += c.Score
			assert.LessOrEqual(t, c.Score, c.Max, "%s criterion over max", key)
			assert.GreaterOrEqual(t, c.Score, 0)
		}
		assert.Equal(t, sum, result.Total, "total must equal breakdown sum for %s", key)
	}

	// Spot checks on cross-analyzer wiring.
	assert.NotEmpty(t, report.Typography.Webfonts, "webfont link must be seen from page HTML")
	assert.Contains(t, report.Bem.Blocks, "card")
	assert.Equal(t, 2, report.Images.Stats.Total)
	assert.NotEmpty(t, report.CustomProperties.Declared)
}

func TestAuditorRunEmptyProject(t *testing.T) {
	report := New(nil).Run(ProjectInput{URL: "https://vide.example"})

	assert.Equal(t, 0, report.Imports.Total)
	assert.Equal(t, 0, report.CustomProperties.Total)
	assert.Equal(t, "N/A", report.Colors.Grade)
	assert.Equal(t, 100, report.Images.Total, "no images is not a defect")
}

func TestReportPassthrough(t *testing.T) {
	srv := stubServer(t)
	input := fixtureInput(srv.URL)
	input.Lighthouse = map[string]float64{"performance": 0.92}
	input.ValidationErrors = []string{"element div not allowed here"}

	report := New(srv.Client()).Run(input)
	assert.Equal(t, 0.92, report.Lighthouse["performance"])
	assert.Equal(t, input.ValidationErrors, report.ValidationErrors)
}
