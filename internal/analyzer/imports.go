package analyzer

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Import types.
const (
	ImportTypeExternal    = "external"
	ImportTypeRelative    = "relative"
	ImportTypeGoogleFonts = "google-fonts"
)

// probeTimeout bounds each reachability HEAD request. A probe failure
// marks the import invalid; it is never retried and never fatal.
const probeTimeout = 3 * time.Second

// largeImportBytes is the threshold above which an imported file is
// penalized in the modularity score.
const largeImportBytes = 100 * 1024

// CSSImportRecord is one classified @import statement.
type CSSImportRecord struct {
	Path         string `json:"path"`
	ResolvedURL  string `json:"resolvedUrl"`
	MediaQuery   string `json:"mediaQuery,omitempty"`
	IsValid      bool   `json:"isValid"`
	IsNormalize  bool   `json:"isNormalize"`
	IsGoogleFont bool   `json:"isGoogleFont"`
	Type         string `json:"type"`
	Category     string `json:"category"`
	FileSize     int64  `json:"fileSize,omitempty"`
	NamingIssue  bool   `json:"namingIssue"`
}

// ImportsAnalysis is the scored import hygiene summary.
type ImportsAnalysis struct {
	ScoreResult
	Imports       []CSSImportRecord `json:"imports"`
	ValidCount    int               `json:"validCount"`
	ExternalCount int               `json:"externalCount"`
	RelativeCount int               `json:"relativeCount"`
	GoogleFonts   int               `json:"googleFonts"`
	Categories    map[string]int    `json:"categories"`
}

// ImportsAnalyzer classifies and probes @import statements. Client is
// injectable for tests; nil uses a default with a 3s timeout.
type ImportsAnalyzer struct {
	Client *http.Client
}

func (a *ImportsAnalyzer) client() *http.Client {
	if a.Client != nil {
		return a.Client
	}
	return &http.Client{Timeout: probeTimeout}
}

// Analyze parses @import rules out of raw CSS, classifies and probes
// each one sequentially, and scores import hygiene.
func (a *ImportsAnalyzer) Analyze(rawCSS, baseURL string) ImportsAnalysis {
	analysis := ImportsAnalysis{Categories: make(map[string]int)}

	statements := ExtractImports(rawCSS)
	if len(statements) == 0 {
		analysis.Breakdown = map[string]Criterion{
			"validity":     {Score: 0, Max: 25, Details: "aucun @import trouvé"},
			"organization": {Score: 0, Max: 30, Details: "aucun @import trouvé"},
			"modularity":   {Score: 0, Max: 20, Details: "le CSS n'est pas découpé en fichiers"},
			"naming":       {Score: 0, Max: 15, Details: "aucun fichier à vérifier"},
			"practices":    {Score: 0, Max: 10, Details: "aucun @import trouvé"},
		}
		analysis.Total = 0
		analysis.Grade = GradeFor(0)
		analysis.Improvements = []string{"Découpez le CSS en fichiers thématiques reliés par @import."}
		return analysis
	}

	base, baseErr := url.Parse(baseURL)
	largeFiles := 0
	namingIssues := 0
	namingRelevant := 0

	for _, stmt := range statements {
		record := classifyImport(stmt, base, baseErr == nil)

		size, reachable := a.probe(record.ResolvedURL)
		record.IsValid = reachable
		record.FileSize = size
		if size > largeImportBytes {
			largeFiles++
		}

		if record.Type == ImportTypeRelative && record.Category != CategoryFonts {
			namingRelevant++
			record.NamingIssue = HasNamingIssues(record.Path)
			if record.NamingIssue {
				namingIssues++
			}
		}

		analysis.Imports = append(analysis.Imports, record)
		analysis.Categories[record.Category]++
		if record.IsValid {
			analysis.ValidCount++
		}
		switch record.Type {
		case ImportTypeExternal:
			analysis.ExternalCount++
		case ImportTypeRelative:
			analysis.RelativeCount++
		case ImportTypeGoogleFonts:
			analysis.GoogleFonts++
		}
	}

	total := len(analysis.Imports)
	analysis.Breakdown = map[string]Criterion{
		"validity":     scoreValidity(analysis.ValidCount, total),
		"organization": scoreOrganization(analysis.Categories, analysis.RelativeCount, total),
		"modularity":   scoreModularity(total, largeFiles),
		"naming":       scoreNaming(namingIssues, namingRelevant),
		"practices":    scoreImportPractices(&analysis),
	}
	analysis.finalize()
	analysis.Improvements = importImprovements(&analysis, namingIssues)
	return analysis
}

// probe issues one HEAD request. Any failure, including a non-2xx/3xx
// status, yields invalid. Size comes from Content-Length when present.
func (a *ImportsAnalyzer) probe(resolvedURL string) (size int64, ok bool) {
	if resolvedURL == "" {
		return 0, false
	}
	resp, err := a.client().Head(resolvedURL)
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return 0, false
	}
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			size = n
		}
	}
	return size, true
}

func classifyImport(stmt ImportStatement, base *url.URL, haveBase bool) CSSImportRecord {
	record := CSSImportRecord{
		Path:        stmt.Path,
		MediaQuery:  stmt.MediaQuery,
		Category:    ImportCategory(stmt.Path),
		IsNormalize: strings.Contains(strings.ToLower(stmt.Path), "normalize"),
	}

	lower := strings.ToLower(stmt.Path)
	record.IsGoogleFont = strings.Contains(lower, "fonts.googleapis.com") ||
		strings.Contains(lower, "fonts.gstatic.com")

	switch {
	case record.IsGoogleFont:
		record.Type = ImportTypeGoogleFonts
	case strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "//"):
		record.Type = ImportTypeExternal
	default:
		record.Type = ImportTypeRelative
	}

	if ref, err := url.Parse(stmt.Path); err == nil {
		if ref.IsAbs() {
			record.ResolvedURL = ref.String()
		} else if haveBase {
			record.ResolvedURL = base.ResolveReference(ref).String()
		}
	}
	return record
}

func scoreValidity(valid, total int) Criterion {
	c := Criterion{Max: 25}
	c.Score = scale(25, ratio(valid, total))
	c.Details = fmt.Sprintf("%d/%d imports accessibles", valid, total)
	return c
}

func scoreOrganization(categories map[string]int, relative, total int) Criterion {
	c := Criterion{Max: 30}
	c.Score = clampInt(len(categories)*3, 0, 15)
	if ratio(relative, total) >= 0.3 {
		c.Score += 10
	}
	if len(categories) >= 3 {
		c.Score += 5
	}
	c.Score = clampInt(c.Score, 0, 30)
	c.Details = fmt.Sprintf("%d catégories de fichiers", len(categories))
	return c
}

// scoreModularity is non-monotonic: the sweet spot sits at 15-25
// imports, degrading both below 10 and above 30. Files over 100KB
// take an extra penalty.
func scoreModularity(total, largeFiles int) Criterion {
	c := Criterion{Max: 20}
	switch {
	case total >= 15 && total <= 25:
		c.Score = 20
	case (total >= 10 && total <= 14) || (total >= 26 && total <= 30):
		c.Score = 14
	case total >= 5 && total <= 9:
		c.Score = 10
	case total > 30:
		c.Score = 8
	default:
		c.Score = 6
	}
	penalty := clampInt(largeFiles*2, 0, 5)
	c.Score = clampInt(c.Score-penalty, 0, 20)
	c.Details = fmt.Sprintf("%d imports, %d fichiers volumineux", total, largeFiles)
	return c
}

func scoreNaming(issues, relevant int) Criterion {
	c := Criterion{Max: 15}
	if relevant == 0 {
		c.Score = 15
		c.Details = "aucun fichier local à vérifier"
		return c
	}
	c.Score = scale(15, ratio(relevant-issues, relevant))
	c.Details = fmt.Sprintf("%d/%d fichiers bien nommés", relevant-issues, relevant)
	return c
}

func scoreImportPractices(a *ImportsAnalysis) Criterion {
	c := Criterion{Max: 10}
	for _, imp := range a.Imports {
		if imp.IsNormalize {
			c.Score += 3
			break
		}
	}
	if a.GoogleFonts >= 1 && a.GoogleFonts <= 2 {
		c.Score += 4
	}
	if a.ExternalCount <= 3 {
		c.Score += 3
	}
	c.Score = clampInt(c.Score, 0, 10)
	c.Details = "normalize, webfonts et dépendances externes"
	return c
}

func importImprovements(a *ImportsAnalysis, namingIssues int) []string {
	var out []string
	total := len(a.Imports)
	if a.ValidCount < total {
		out = append(out, fmt.Sprintf("%d import(s) inaccessibles : vérifiez les chemins.", total-a.ValidCount))
	}
	if total < 10 {
		out = append(out, "Découpez davantage le CSS (idéal : 15 à 25 fichiers thématiques).")
	}
	if total > 30 {
		out = append(out, "Trop de fichiers CSS : regroupez les petits fichiers par thème.")
	}
	if namingIssues > 0 {
		out = append(out, fmt.Sprintf("Renommez %d fichier(s) : minuscules, sans espaces ni accents.", namingIssues))
	}
	if a.GoogleFonts > 2 {
		out = append(out, "Regroupez les imports Google Fonts en une seule requête.")
	}
	if len(out) == 0 {
		out = append(out, "Organisation des imports CSS exemplaire.")
	}
	return out
}
