package analyzer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// BemKind classifies a class name against BEM grammar. Classification
// is total: every class string lands in exactly one kind.
type BemKind string

// BEM grammar kinds.
const (
	BemBlock           BemKind = "block"
	BemElement         BemKind = "element"
	BemBlockModifier   BemKind = "blockModifier"
	BemElementModifier BemKind = "elementModifier"
	BemOther           BemKind = "other"
)

var (
	bemBlockPattern           = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	bemElementPattern         = regexp.MustCompile(`^([a-z0-9]+(?:-[a-z0-9]+)*)__([a-z0-9]+(?:-[a-z0-9]+)*)$`)
	bemBlockModifierPattern   = regexp.MustCompile(`^([a-z0-9]+(?:-[a-z0-9]+)*)--([a-z0-9]+(?:-[a-z0-9]+)*)$`)
	bemElementModifierPattern = regexp.MustCompile(`^([a-z0-9]+(?:-[a-z0-9]+)*)__([a-z0-9]+(?:-[a-z0-9]+)*)--([a-z0-9]+(?:-[a-z0-9]+)*)$`)
)

// ClassifyBEM returns the BEM kind of a class name.
func ClassifyBEM(name string) BemKind {
	switch {
	case bemElementModifierPattern.MatchString(name):
		return BemElementModifier
	case bemElementPattern.MatchString(name):
		return BemElement
	case bemBlockModifierPattern.MatchString(name):
		return BemBlockModifier
	case bemBlockPattern.MatchString(name):
		return BemBlock
	default:
		return BemOther
	}
}

// bemBlockOf extracts the block-name prefix of an element or modifier.
func bemBlockOf(name string) string {
	if m := bemElementModifierPattern.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	if m := bemElementPattern.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	if m := bemBlockModifierPattern.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return ""
}

// Block aggregates the element and modifier classes referencing one
// BEM block, whether or not the bare block class is ever declared.
type Block struct {
	Name             string   `json:"name"`
	Declared         bool     `json:"declared"`
	Elements         []string `json:"elements"`
	Modifiers        []string `json:"modifiers"`
	ElementModifiers []string `json:"elementModifiers"`
}

// Structured reports whether the block has at least one element or
// modifier attached.
func (b *Block) Structured() bool {
	return len(b.Elements) > 0 || len(b.Modifiers) > 0 || len(b.ElementModifiers) > 0
}

// BemViolation records an element/modifier whose block prefix never
// resolves. Informational, never fatal.
type BemViolation struct {
	Class string `json:"class"`
	Block string `json:"block"`
}

// SelectorInfo is one parsed CSS selector.
type SelectorInfo struct {
	Selector    string   `json:"selector"`
	Classes     []string `json:"classes"`
	Specificity int      `json:"specificity"`
	PureBEM     bool     `json:"pureBem"`
}

// redundantClassShare flags HTML classes present on at least this
// share of class-bearing nodes.
const redundantClassShare = 0.25

// ClassAnalysis is the scored class/BEM discipline summary.
type ClassAnalysis struct {
	ScoreResult
	HTMLClasses          map[string]int    `json:"htmlClasses"`
	RedundantClasses     []string          `json:"redundantClasses"`
	UndefinedHTMLClasses []string          `json:"undefinedHtmlClasses"`
	UnusedCSSClasses     []string          `json:"unusedCssClasses"`
	CoverageHTML         float64           `json:"coverageHtml"`
	CoverageCSS          float64           `json:"coverageCss"`
	Selectors            []SelectorInfo    `json:"selectors"`
	Blocks               map[string]*Block `json:"blocks"`
	ImplicitBlocks       []string          `json:"implicitBlocks"`
	OrphanBlocks         []string          `json:"orphanBlocks"`
	Violations           []BemViolation    `json:"violations"`
}

// PerformClassAnalysis extracts HTML and CSS class usage across all
// pages, classifies every class against BEM grammar, and scores
// structural discipline.
func PerformClassAnalysis(htmlPages []string, compiledCSS string) ClassAnalysis {
	analysis := ClassAnalysis{
		HTMLClasses: make(map[string]int),
		Blocks:      make(map[string]*Block),
	}

	classNodes := 0
	for _, page := range htmlPages {
		classNodes += collectHTMLClasses(page, analysis.HTMLClasses)
	}

	cssClasses := make(map[string]bool)
	pureSelectors := 0
	WalkRules(compiledCSS, func(selector string, _ []Declaration) {
		for _, single := range strings.Split(selector, ",") {
			single = strings.TrimSpace(single)
			if single == "" {
				continue
			}
			info := parseSelector(single)
			if len(info.Classes) == 0 && info.Specificity == 0 {
				continue
			}
			for _, cls := range info.Classes {
				cssClasses[cls] = true
			}
			if info.PureBEM {
				pureSelectors++
			}
			analysis.Selectors = append(analysis.Selectors, info)
		}
	})

	if len(analysis.HTMLClasses) == 0 && len(cssClasses) == 0 {
		analysis.Breakdown = map[string]Criterion{
			"coverage":   {Score: 0, Max: 15, Details: "aucune classe détectée"},
			"pureBem":    {Score: 0, Max: 30, Details: "aucun sélecteur de classe"},
			"structure":  {Score: 0, Max: 25, Details: "aucun bloc BEM"},
			"elements":   {Score: 0, Max: 20, Details: "aucun bloc BEM"},
			"modifiers":  {Score: 0, Max: 10, Details: "aucun bloc BEM"},
		}
		analysis.Total = 0
		analysis.Grade = GradeFor(0)
		analysis.Improvements = []string{"Structurez le HTML et le CSS avec des classes BEM (bloc__element--modificateur)."}
		return analysis
	}

	// Redundant HTML classes: present on >= 25% of class-bearing nodes.
	for name, count := range analysis.HTMLClasses {
		if classNodes > 0 && float64(count)/float64(classNodes) >= redundantClassShare {
			analysis.RedundantClasses = append(analysis.RedundantClasses, name)
		}
	}
	sort.Strings(analysis.RedundantClasses)

	// HTML <-> CSS cross-reference.
	htmlInCSS := 0
	for name := range analysis.HTMLClasses {
		if cssClasses[name] {
			htmlInCSS++
		} else {
			analysis.UndefinedHTMLClasses = append(analysis.UndefinedHTMLClasses, name)
		}
	}
	cssInHTML := 0
	for name := range cssClasses {
		if _, ok := analysis.HTMLClasses[name]; ok {
			cssInHTML++
		} else {
			analysis.UnusedCSSClasses = append(analysis.UnusedCSSClasses, name)
		}
	}
	sort.Strings(analysis.UndefinedHTMLClasses)
	sort.Strings(analysis.UnusedCSSClasses)
	analysis.CoverageHTML = ratio(htmlInCSS, len(analysis.HTMLClasses))
	analysis.CoverageCSS = ratio(cssInHTML, len(cssClasses))

	// Block registry over the combined class set.
	combined := make(map[string]bool, len(cssClasses)+len(analysis.HTMLClasses))
	for name := range cssClasses {
		combined[name] = true
	}
	for name := range analysis.HTMLClasses {
		combined[name] = true
	}
	analysis.buildBlockRegistry(combined)

	totalSelectors := len(analysis.Selectors)
	structured := 0
	elements := 0
	modifiers := 0
	for _, b := range analysis.Blocks {
		if b.Structured() {
			structured++
		}
		elements += len(b.Elements)
		modifiers += len(b.Modifiers) + len(b.ElementModifiers)
	}

	analysis.Breakdown = map[string]Criterion{
		"coverage":  scoreClassCoverage(analysis.CoverageHTML, analysis.CoverageCSS),
		"pureBem":   scorePureBem(pureSelectors, totalSelectors),
		"structure": scoreBlockStructure(structured, len(analysis.Blocks)),
		"elements":  scoreElementRatio(elements, len(analysis.Blocks)),
		"modifiers": scoreModifierRatio(modifiers, len(analysis.Blocks)),
	}
	analysis.finalize()
	analysis.Improvements = classImprovements(&analysis, pureSelectors, totalSelectors)
	return analysis
}

// collectHTMLClasses walks one page and tallies class attribute
// tokens, returning the number of class-bearing nodes.
func collectHTMLClasses(page string, freq map[string]int) int {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return 0
	}
	nodes := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, attr := range n.Attr {
				if strings.ToLower(attr.Key) != "class" {
					continue
				}
				tokens := strings.Fields(attr.Val)
				if len(tokens) > 0 {
					nodes++
				}
				for _, cls := range tokens {
					freq[cls]++
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return nodes
}

var (
	idTokenPattern    = regexp.MustCompile(`#[\w-]+`)
	typeTokenPattern  = regexp.MustCompile(`(?:^|[\s>+~(])([a-zA-Z][a-zA-Z0-9]*)`)
	pseudoPattern     = regexp.MustCompile(`::?[a-zA-Z-]+(?:\([^)]*\))?`)
	combinatorPattern = regexp.MustCompile(`[\s>+~]`)
	attributePattern  = regexp.MustCompile(`\[[^\]]*\]`)
)

// parseSelector computes class tokens, simplified specificity and the
// pure-BEM form of a single (comma-free) selector.
func parseSelector(selector string) SelectorInfo {
	info := SelectorInfo{Selector: selector, Classes: SelectorClasses(selector)}

	stripped := attributePattern.ReplaceAllString(selector, "")
	ids := len(idTokenPattern.FindAllString(stripped, -1))
	withoutPseudo := pseudoPattern.ReplaceAllString(stripped, "")
	types := 0
	for _, m := range typeTokenPattern.FindAllStringSubmatch(withoutPseudo, -1) {
		if m[1] != "" {
			types++
		}
	}
	info.Specificity = ids*100 + len(info.Classes)*10 + types

	// Pure BEM: exactly one class, BEM-valid, and the selector reduces
	// to .class alone after pseudo stripping.
	if len(info.Classes) == 1 && ClassifyBEM(info.Classes[0]) != BemOther {
		reduced := strings.TrimSpace(withoutPseudo)
		if reduced == "."+info.Classes[0] && !combinatorPattern.MatchString(reduced) {
			info.PureBEM = true
		}
	}
	return info
}

// buildBlockRegistry accumulates blocks from the combined HTML+CSS
// class set. A block is created implicitly when first referenced by an
// element or modifier, even if the bare block class never appears.
func (a *ClassAnalysis) buildBlockRegistry(combined map[string]bool) {
	names := make([]string, 0, len(combined))
	for name := range combined {
		names = append(names, name)
	}
	sort.Strings(names)

	ensure := func(block string) *Block {
		b, ok := a.Blocks[block]
		if !ok {
			b = &Block{Name: block}
			a.Blocks[block] = b
		}
		return b
	}

	for _, name := range names {
		switch ClassifyBEM(name) {
		case BemBlock:
			ensure(name).Declared = true
		case BemElement:
			block := bemBlockOf(name)
			b := ensure(block)
			b.Elements = append(b.Elements, name)
		case BemBlockModifier:
			block := bemBlockOf(name)
			b := ensure(block)
			b.Modifiers = append(b.Modifiers, name)
		case BemElementModifier:
			block := bemBlockOf(name)
			b := ensure(block)
			b.ElementModifiers = append(b.ElementModifiers, name)
		}
	}

	for _, name := range names {
		kind := ClassifyBEM(name)
		if kind == BemBlock || kind == BemOther {
			continue
		}
		block := bemBlockOf(name)
		if !bemBlockPattern.MatchString(block) || !combined[block] {
			a.Violations = append(a.Violations, BemViolation{Class: name, Block: block})
		}
	}

	blockNames := make([]string, 0, len(a.Blocks))
	for name := range a.Blocks {
		blockNames = append(blockNames, name)
	}
	sort.Strings(blockNames)
	for _, name := range blockNames {
		b := a.Blocks[name]
		if !b.Declared {
			a.ImplicitBlocks = append(a.ImplicitBlocks, name)
		}
		if b.Declared && !b.Structured() {
			a.OrphanBlocks = append(a.OrphanBlocks, name)
		}
	}
}

func scoreClassCoverage(coverageHTML, coverageCSS float64) Criterion {
	c := Criterion{Max: 15}
	avg := (coverageHTML + coverageCSS) / 2
	switch {
	case avg >= 0.95:
		c.Score = 15
	case avg >= 0.85:
		c.Score = 11
	case avg >= 0.70:
		c.Score = 7
	default:
		c.Score = 3
	}
	c.Details = fmt.Sprintf("HTML %.0f%%, CSS %.0f%%", coverageHTML*100, coverageCSS*100)
	return c
}

func scorePureBem(pure, total int) Criterion {
	c := Criterion{Max: 30}
	p := ratio(pure, total)
	switch {
	case p >= 0.8:
		c.Score = 30
	case p >= 0.6:
		c.Score = 22
	case p >= 0.4:
		c.Score = 15
	case p >= 0.25:
		c.Score = 8
	default:
		c.Score = 3
	}
	c.Details = fmt.Sprintf("%.0f%% de sélecteurs BEM purs", p*100)
	return c
}

func scoreBlockStructure(structured, blocks int) Criterion {
	c := Criterion{Max: 25}
	if blocks == 0 {
		c.Details = "aucun bloc BEM"
		return c
	}
	s := ratio(structured, blocks)
	switch {
	case s >= 0.8:
		c.Score = 25
	case s >= 0.6:
		c.Score = 18
	case s >= 0.4:
		c.Score = 12
	case s >= 0.25:
		c.Score = 6
	default:
		c.Score = 2
	}
	c.Details = fmt.Sprintf("%d/%d blocs structurés", structured, blocks)
	return c
}

func scoreElementRatio(elements, blocks int) Criterion {
	c := Criterion{Max: 20}
	if blocks == 0 {
		c.Details = "aucun bloc BEM"
		return c
	}
	avg := float64(elements) / float64(blocks)
	switch {
	case avg >= 2 && avg <= 6:
		c.Score = 20
	case (avg >= 1 && avg < 2) || (avg > 6 && avg <= 8):
		c.Score = 12
	case avg > 0:
		c.Score = 6
	default:
		c.Score = 2
	}
	c.Details = fmt.Sprintf("%.1f éléments par bloc", avg)
	return c
}

func scoreModifierRatio(modifiers, blocks int) Criterion {
	c := Criterion{Max: 10}
	if blocks == 0 {
		c.Details = "aucun bloc BEM"
		return c
	}
	avg := float64(modifiers) / float64(blocks)
	switch {
	case avg >= 1.5:
		c.Score = 10
	case avg >= 1:
		c.Score = 7
	case avg >= 0.5:
		c.Score = 4
	default:
		c.Score = 1
	}
	c.Details = fmt.Sprintf("%.1f modificateurs par bloc", avg)
	return c
}

func classImprovements(a *ClassAnalysis, pure, total int) []string {
	var out []string
	if len(a.UndefinedHTMLClasses) > 0 {
		out = append(out, fmt.Sprintf("%d classe(s) HTML sans règle CSS correspondante (ex : %s).",
			len(a.UndefinedHTMLClasses), a.UndefinedHTMLClasses[0]))
	}
	if len(a.UnusedCSSClasses) > 0 {
		out = append(out, fmt.Sprintf("%d classe(s) CSS jamais utilisées dans le HTML.", len(a.UnusedCSSClasses)))
	}
	if ratio(pure, total) < 0.6 {
		out = append(out, "Simplifiez les sélecteurs : une classe BEM par sélecteur, sans imbrication.")
	}
	if len(a.OrphanBlocks) > 0 {
		out = append(out, fmt.Sprintf("%d bloc(s) sans élément ni modificateur : structurez-les ou simplifiez.", len(a.OrphanBlocks)))
	}
	if len(a.Violations) > 0 {
		out = append(out, fmt.Sprintf("%d classe(s) référencent un bloc inexistant.", len(a.Violations)))
	}
	if len(out) == 0 {
		out = append(out, "Architecture de classes BEM rigoureuse.")
	}
	return out
}
