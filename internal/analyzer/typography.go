package analyzer

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Webfont sources.
const (
	WebfontSourceHTMLLink  = "html-link"
	WebfontSourceCSSImport = "css-import"
	WebfontSourceFontFace  = "font-face"
)

// webfontProviders maps host fragments to provider names.
var webfontProviders = map[string]string{
	"fonts.googleapis.com": "Google Fonts",
	"fonts.gstatic.com":    "Google Fonts",
	"use.typekit.net":      "Adobe Fonts",
	"fonts.bunny.net":      "Bunny Fonts",
	"use.fontawesome.com":  "Font Awesome",
	"fonts.cdnfonts.com":   "CDN Fonts",
}

// WebfontImport is a detected webfont inclusion.
type WebfontImport struct {
	URL      string `json:"url,omitempty"`
	Provider string `json:"provider,omitempty"`
	Source   string `json:"source"`
}

// SizeUsage aggregates selectors and line-heights for one font size.
type SizeUsage struct {
	Selectors   []string `json:"selectors"`
	LineHeights []string `json:"lineHeights"`
}

// FontFamilyProfile aggregates every declaration of one normalized
// font family across the compiled CSS.
type FontFamilyProfile struct {
	Name               string                `json:"name"`
	Selectors          []string              `json:"selectors"`
	Sizes              map[string]*SizeUsage `json:"sizes"`
	Global             bool                  `json:"global"`
	Fallbacks          []string              `json:"fallbacks"`
	HasGenericFallback bool                  `json:"hasGenericFallback"`
	DeclCount          int                   `json:"declCount"`
}

// TypographyAnalysis is the scored typography summary.
type TypographyAnalysis struct {
	ScoreResult
	Webfonts           []WebfontImport               `json:"webfonts"`
	Families           map[string]*FontFamilyProfile `json:"families"`
	FamilyDeclCount    int                           `json:"familyDeclCount"`
	SizeDeclCount      int                           `json:"sizeDeclCount"`
	LineHeightCount    int                           `json:"lineHeightCount"`
	RelativeSizeRatio  float64                       `json:"relativeSizeRatio"`
	ProportionalLHRate float64                       `json:"proportionalLineHeightRatio"`
	InheritanceQuality float64                       `json:"inheritanceQuality"`
	HasGlobalFamily    bool                          `json:"hasGlobalFamily"`
}

// AnalyzeTypography reconstructs font usage across selectors and
// scores consistency. Declarations whose var() chain cannot be
// resolved are dropped before aggregation.
func AnalyzeTypography(htmlText, rawCSS, compiledCSS string) TypographyAnalysis {
	analysis := TypographyAnalysis{Families: make(map[string]*FontFamilyProfile)}

	analysis.Webfonts = detectWebfonts(htmlText, rawCSS)

	declarations := collectCustomPropertyValues(compiledCSS)

	globalFamilyDecls := 0
	relativeSizes := 0
	proportionalLH := 0

	WalkRules(compiledCSS, func(selector string, decls []Declaration) {
		for _, d := range decls {
			if strings.HasPrefix(d.Property, "--") {
				continue
			}
			value := ResolveVar(d.Value, declarations)
			if !IsResolved(value) {
				// unresolved variable chain: ignore, never guess
				continue
			}

			switch d.Property {
			case "font-family":
				analysis.recordFamily(selector, value)
				analysis.FamilyDeclCount++
				if IsGlobalSelector(selector) {
					globalFamilyDecls++
				}
			case "font-size":
				analysis.recordSize(selector, value, "")
				analysis.SizeDeclCount++
				if isRelativeUnit(value) {
					relativeSizes++
				}
			case "line-height":
				analysis.LineHeightCount++
				if isProportionalLineHeight(value) {
					proportionalLH++
				}
				analysis.attachLineHeight(selector, value)
			case "font":
				size, lineHeight, family := parseFontShorthand(value)
				if family != "" {
					analysis.recordFamily(selector, family)
					analysis.FamilyDeclCount++
					if IsGlobalSelector(selector) {
						globalFamilyDecls++
					}
				}
				if size != "" {
					analysis.recordSize(selector, size, lineHeight)
					analysis.SizeDeclCount++
					if isRelativeUnit(size) {
						relativeSizes++
					}
				}
				if lineHeight != "" {
					analysis.LineHeightCount++
					if isProportionalLineHeight(lineHeight) {
						proportionalLH++
					}
				}
			}
		}
	})

	analysis.HasGlobalFamily = globalFamilyDecls > 0
	if analysis.FamilyDeclCount > 0 && analysis.HasGlobalFamily {
		analysis.InheritanceQuality = 1 - float64(analysis.FamilyDeclCount-globalFamilyDecls)/float64(analysis.FamilyDeclCount)
	}
	if analysis.SizeDeclCount > 0 {
		analysis.RelativeSizeRatio = float64(relativeSizes) / float64(analysis.SizeDeclCount)
	}
	if analysis.LineHeightCount > 0 {
		analysis.ProportionalLHRate = float64(proportionalLH) / float64(analysis.LineHeightCount)
	}

	analysis.Breakdown = map[string]Criterion{
		"webfonts":    scoreWebfonts(analysis.Webfonts),
		"fallbacks":   scoreFallbacks(analysis.Families),
		"inheritance": scoreInheritance(analysis.HasGlobalFamily, analysis.InheritanceQuality),
		"sizes":       scoreSizeConsistency(&analysis),
		"lineHeights": scoreLineHeights(&analysis),
		"practices":   scoreTypographyPractices(&analysis),
	}
	analysis.finalize()
	analysis.Improvements = typographyImprovements(&analysis)
	return analysis
}

// collectCustomPropertyValues gathers custom property declarations for
// variable resolution (first occurrence wins).
func collectCustomPropertyValues(compiledCSS string) map[string]string {
	declarations := make(map[string]string)
	WalkRules(compiledCSS, func(_ string, decls []Declaration) {
		for _, d := range decls {
			if strings.HasPrefix(d.Property, "--") {
				if _, seen := declarations[d.Property]; !seen {
					declarations[d.Property] = d.Value
				}
			}
		}
	})
	return declarations
}

func (a *TypographyAnalysis) recordFamily(selector, stack string) {
	primary, fallbacks, hasGeneric := splitFamilyStack(stack)
	if primary == "" {
		return
	}
	profile, ok := a.Families[primary]
	if !ok {
		profile = &FontFamilyProfile{Name: primary, Sizes: make(map[string]*SizeUsage)}
		a.Families[primary] = profile
	}
	profile.DeclCount++
	profile.Selectors = append(profile.Selectors, selector)
	if len(fallbacks) > len(profile.Fallbacks) {
		profile.Fallbacks = fallbacks
	}
	if hasGeneric {
		profile.HasGenericFallback = true
	}
	if IsGlobalSelector(selector) {
		profile.Global = true
	}
}

// recordSize attaches a size declaration to the family declared on the
// same selector, falling back to the first global family.
func (a *TypographyAnalysis) recordSize(selector, size, lineHeight string) {
	profile := a.profileForSelector(selector)
	if profile == nil {
		return
	}
	usage, ok := profile.Sizes[size]
	if !ok {
		usage = &SizeUsage{}
		profile.Sizes[size] = usage
	}
	usage.Selectors = append(usage.Selectors, selector)
	if lineHeight != "" {
		usage.LineHeights = append(usage.LineHeights, lineHeight)
	}
}

func (a *TypographyAnalysis) attachLineHeight(selector, value string) {
	profile := a.profileForSelector(selector)
	if profile == nil {
		return
	}
	for _, usage := range profile.Sizes {
		for _, s := range usage.Selectors {
			if s == selector {
				usage.LineHeights = append(usage.LineHeights, value)
				return
			}
		}
	}
}

func (a *TypographyAnalysis) profileForSelector(selector string) *FontFamilyProfile {
	for _, p := range a.Families {
		for _, s := range p.Selectors {
			if s == selector {
				return p
			}
		}
	}
	for _, p := range a.Families {
		if p.Global {
			return p
		}
	}
	return nil
}

// splitFamilyStack parses a font-family value into the normalized
// primary family, its fallback stack, and generic-fallback presence.
func splitFamilyStack(stack string) (primary string, fallbacks []string, hasGeneric bool) {
	parts := strings.Split(stack, ",")
	for i, part := range parts {
		name := strings.Trim(strings.TrimSpace(part), `'"`)
		if name == "" {
			continue
		}
		if IsGenericFamily(name) {
			hasGeneric = true
		}
		if i == 0 {
			primary = TitleCaseFamily(name)
		} else {
			fallbacks = append(fallbacks, TitleCaseFamily(name))
		}
	}
	return primary, fallbacks, hasGeneric
}

// fontShorthandStrip removes style/weight/variant/stretch tokens from
// the front of a font shorthand so the size token comes first.
var fontShorthandStrip = regexp.MustCompile(`(?i)^(?:(?:italic|oblique|normal|small-caps|bold|bolder|lighter|[1-9]00|ultra-condensed|condensed|expanded)\s+)*`)

// fontShorthandPattern captures size[/line-height] followed by the
// family list.
var fontShorthandPattern = regexp.MustCompile(`(?i)^([\d.]+(?:px|rem|em|pt|%)|xx-small|x-small|small|medium|large|x-large|xx-large|smaller|larger)\s*(?:/\s*(normal|[\d.]+[a-z%]*))?\s+(.+)$`)

// parseFontShorthand extracts size, line-height and family list from a
// resolved font shorthand value. Empty results mean the shorthand did
// not match (e.g. system keywords like "menu").
func parseFontShorthand(value string) (size, lineHeight, family string) {
	stripped := fontShorthandStrip.ReplaceAllString(strings.TrimSpace(value), "")
	m := fontShorthandPattern.FindStringSubmatch(stripped)
	if m == nil {
		return "", "", ""
	}
	size = strings.ToLower(m[1])
	if m[2] != "" && !strings.EqualFold(m[2], "normal") {
		lineHeight = strings.ToLower(m[2])
	}
	family = strings.TrimSpace(m[3])
	return size, lineHeight, family
}

func isRelativeUnit(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return strings.HasSuffix(v, "rem") || strings.HasSuffix(v, "em") || strings.HasSuffix(v, "%")
}

// isProportionalLineHeight prefers unitless and percent line-heights
// over px/em values.
func isProportionalLineHeight(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "normal" || strings.HasSuffix(v, "%") {
		return true
	}
	return regexp.MustCompile(`^[\d.]+$`).MatchString(v)
}

// detectWebfonts finds webfont inclusions in HTML link tags and CSS
// @import / @font-face rules, tagged by provider host.
func detectWebfonts(htmlText, rawCSS string) []WebfontImport {
	var fonts []WebfontImport

	if htmlText != "" {
		doc, err := html.Parse(strings.NewReader(htmlText))
		if err == nil {
			var walk func(*html.Node)
			walk = func(n *html.Node) {
				if n.Type == html.ElementNode && n.Data == "link" {
					var rel, href string
					for _, attr := range n.Attr {
						switch strings.ToLower(attr.Key) {
						case "rel":
							rel = strings.ToLower(attr.Val)
						case "href":
							href = attr.Val
						}
					}
					if strings.Contains(rel, "stylesheet") {
						if provider := providerForURL(href); provider != "" {
							fonts = append(fonts, WebfontImport{URL: href, Provider: provider, Source: WebfontSourceHTMLLink})
						}
					}
				}
				for child := n.FirstChild; child != nil; child = child.NextSibling {
					walk(child)
				}
			}
			walk(doc)
		}
	}

	for _, imp := range ExtractImports(rawCSS) {
		if provider := providerForURL(imp.Path); provider != "" {
			fonts = append(fonts, WebfontImport{URL: imp.Path, Provider: provider, Source: WebfontSourceCSSImport})
		}
	}

	if strings.Contains(StripComments(rawCSS), "@font-face") {
		fonts = append(fonts, WebfontImport{Provider: "self-hosted", Source: WebfontSourceFontFace})
	}
	return fonts
}

func providerForURL(rawURL string) string {
	lower := strings.ToLower(rawURL)
	for host, provider := range webfontProviders {
		if strings.Contains(lower, host) {
			return provider
		}
	}
	return ""
}

func scoreWebfonts(fonts []WebfontImport) Criterion {
	c := Criterion{Max: 15}
	if len(fonts) == 0 {
		c.Score = 5
		c.Details = "aucune webfont détectée"
		return c
	}
	c.Score = 5 // presence

	knownSource := true
	providerCounts := make(map[string]int)
	for _, f := range fonts {
		if f.Provider == "" {
			knownSource = false
		}
		providerCounts[f.Provider]++
	}
	if knownSource {
		c.Score += 5
	}
	overused := false
	for _, n := range providerCounts {
		if n > 2 {
			overused = true
		}
	}
	if !overused {
		c.Score += 5
	}
	c.Details = fmt.Sprintf("%d import(s) de webfonts", len(fonts))
	return c
}

func scoreFallbacks(families map[string]*FontFamilyProfile) Criterion {
	c := Criterion{Max: 20}
	if len(families) == 0 {
		c.Details = "aucune famille de police déclarée"
		return c
	}
	withGeneric := 0
	for _, f := range families {
		if f.HasGenericFallback {
			withGeneric++
		}
	}
	c.Score = scale(20, ratio(withGeneric, len(families)))
	c.Details = fmt.Sprintf("%d/%d familles avec fallback générique", withGeneric, len(families))
	return c
}

func scoreInheritance(hasGlobal bool, quality float64) Criterion {
	c := Criterion{Max: 25}
	if hasGlobal {
		c.Score = 10 + scale(15, quality)
		c.Details = fmt.Sprintf("héritage global, qualité %.0f%%", quality*100)
	} else {
		c.Details = "aucune police définie sur html/body/:root"
	}
	return c
}

// scoreSizeConsistency bands the average size-variation count per
// family (sweet spot 2-4) and rewards relative units.
func scoreSizeConsistency(a *TypographyAnalysis) Criterion {
	c := Criterion{Max: 20}
	if a.SizeDeclCount == 0 {
		c.Details = "aucune taille de police déclarée"
		return c
	}
	variations := 0
	familiesWithSizes := 0
	for _, f := range a.Families {
		if len(f.Sizes) > 0 {
			familiesWithSizes++
			variations += len(f.Sizes)
		}
	}
	avg := 0.0
	if familiesWithSizes > 0 {
		avg = float64(variations) / float64(familiesWithSizes)
	}
	switch {
	case avg >= 2 && avg <= 4:
		c.Score = 10
	case avg > 0 && avg < 7:
		c.Score = 7
	case avg >= 7:
		c.Score = 3
	}
	c.Score += scale(10, a.RelativeSizeRatio)
	c.Details = fmt.Sprintf("%.1f tailles par famille, %.0f%% en unités relatives", avg, a.RelativeSizeRatio*100)
	return c
}

func scoreLineHeights(a *TypographyAnalysis) Criterion {
	c := Criterion{Max: 15}
	coverage := ratio(a.LineHeightCount, max(a.SizeDeclCount, 1))
	if coverage > 1 {
		coverage = 1
	}
	if a.SizeDeclCount == 0 {
		coverage = 0
	}
	c.Score = scale(10, coverage) + scale(5, a.ProportionalLHRate)
	c.Details = fmt.Sprintf("%d line-height pour %d font-size", a.LineHeightCount, a.SizeDeclCount)
	return c
}

func scoreTypographyPractices(a *TypographyAnalysis) Criterion {
	c := Criterion{Max: 5, Score: 5, Details: "déclarations cohérentes"}
	if len(a.Families) > 0 && a.FamilyDeclCount > 2*len(a.Families) {
		c.Score = 2
		c.Details = "font-family répété trop souvent : privilégiez l'héritage"
	}
	return c
}

func typographyImprovements(a *TypographyAnalysis) []string {
	var out []string
	if len(a.Webfonts) == 0 {
		out = append(out, "Ajoutez une webfont (Google Fonts) pour personnaliser la typographie.")
	}
	for _, f := range a.Families {
		if !f.HasGenericFallback {
			out = append(out, fmt.Sprintf("Ajoutez un fallback générique à la famille %s (ex : sans-serif).", f.Name))
		}
	}
	if !a.HasGlobalFamily {
		out = append(out, "Définissez la police principale sur body pour profiter de l'héritage.")
	}
	if a.RelativeSizeRatio < 0.5 && a.SizeDeclCount > 0 {
		out = append(out, "Préférez les unités relatives (rem, em) aux pixels pour font-size.")
	}
	if a.LineHeightCount == 0 && a.SizeDeclCount > 0 {
		out = append(out, "Déclarez des line-height (de préférence sans unité).")
	}
	if len(out) == 0 {
		out = append(out, "Typographie cohérente et bien structurée.")
	}
	return out
}
