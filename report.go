package webaudit

import (
	"net/http"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/atelierweb/webaudit/internal/analyzer"
)

// Page is one crawled (or locally read) HTML document with its
// extracted image records.
type Page struct {
	URL    string                 `json:"url"`
	HTML   string                 `json:"-"`
	Images []analyzer.ImageRecord `json:"images"`
}

// ProjectInput gathers everything the analyzers consume for one
// project. RawCSS is the pre-compilation text (used for @import and
// webfont detection); CompiledCSS is the inlined, comment-free result.
type ProjectInput struct {
	URL             string
	Pages           []Page
	RawCSS          string
	CompiledCSS     string
	NetworkRequests []analyzer.NetworkRequest

	// Passthrough fields produced by external collaborators; stored in
	// the report untouched.
	Lighthouse       map[string]float64
	ValidationErrors []string
}

// AuditReport is the per-project JSON document. Analyzer outputs sit
// under fixed keys next to the passthrough collaborator fields.
type AuditReport struct {
	ProjectURL  string    `json:"projectUrl"`
	GeneratedAt time.Time `json:"generatedAt"`

	Imports          analyzer.ImportsAnalysis    `json:"imports"`
	CustomProperties analyzer.VariablesAnalysis  `json:"customProperties"`
	Typography       analyzer.TypographyAnalysis `json:"typography"`
	Colors           analyzer.ColorAnalysis      `json:"colors"`
	Bem              analyzer.ClassAnalysis      `json:"bem"`
	Images           analyzer.ImagesAnalysis     `json:"images"`

	Lighthouse       map[string]float64 `json:"lighthouse,omitempty"`
	ValidationErrors []string           `json:"validationErrors,omitempty"`
}

// ScoreKeys are the fixed analyzer keys of a report, in display order.
var ScoreKeys = []string{"imports", "customProperties", "typography", "colors", "bem", "images"}

// Scores returns the six analyzer results keyed by their report keys.
func (r *AuditReport) Scores() map[string]analyzer.ScoreResult {
	return map[string]analyzer.ScoreResult{
		"imports":          r.Imports.ScoreResult,
		"customProperties": r.CustomProperties.ScoreResult,
		"typography":       r.Typography.ScoreResult,
		"colors":           r.Colors.ScoreResult,
		"bem":              r.Bem.ScoreResult,
		"images":           r.Images.ScoreResult,
	}
}

// Auditor runs the scoring engine over a project's inputs.
type Auditor struct {
	imports analyzer.ImportsAnalyzer
}

// New returns an Auditor. client is used for import reachability
// probes; nil uses a default with a 3 second timeout.
func New(client *http.Client) *Auditor {
	return &Auditor{imports: analyzer.ImportsAnalyzer{Client: client}}
}

// Run executes the six analyzers and merges their results into one
// report. The analyzers only read shared input and write disjoint
// report fields, so they run concurrently.
func (a *Auditor) Run(input ProjectInput) *AuditReport {
	report := &AuditReport{
		ProjectURL:       input.URL,
		GeneratedAt:      time.Now().UTC(),
		Lighthouse:       input.Lighthouse,
		ValidationErrors: input.ValidationErrors,
	}

	var htmlPages []string
	firstHTML := ""
	for i, page := range input.Pages {
		htmlPages = append(htmlPages, page.HTML)
		if i == 0 {
			firstHTML = page.HTML
		}
	}

	var wg conc.WaitGroup
	wg.Go(func() {
		report.Imports = a.imports.Analyze(input.RawCSS, input.URL)
	})
	wg.Go(func() {
		report.CustomProperties = analyzer.AnalyzeCustomProperties(input.CompiledCSS)
	})
	wg.Go(func() {
		report.Typography = analyzer.AnalyzeTypography(firstHTML, input.RawCSS, input.CompiledCSS)
	})
	wg.Go(func() {
		report.Colors = analyzer.AnalyzeColors(analyzer.CollectColorLiterals(input.CompiledCSS))
	})
	wg.Go(func() {
		report.Bem = analyzer.PerformClassAnalysis(htmlPages, input.CompiledCSS)
	})
	wg.Go(func() {
		pages := make([]analyzer.ImagesAnalysis, 0, len(input.Pages))
		for _, page := range input.Pages {
			pageURL := page.URL
			if pageURL == "" {
				pageURL = input.URL
			}
			pages = append(pages, analyzer.AnalyzeImages(page.Images, input.NetworkRequests, pageURL))
		}
		report.Images = analyzer.SynthesizeImages(pages)
	})
	wg.Wait()

	return report
}
