package analyzer

import (
	"fmt"
	"sort"
	"strings"
)

// adoptionTarget is the var() adoption ratio considered excellent.
// The target is deliberately low: 35% adoption already indicates a
// tokenized stylesheet.
const adoptionTarget = 0.35

// CSSVariable is one declared custom property.
type CSSVariable struct {
	Name          string `json:"name"`
	DeclaredValue string `json:"declaredValue"`
	UsageCount    int    `json:"usageCount"`
	Category      string `json:"category"`
}

// UndeclaredUsage records a var() reference to a name that is never
// declared. Deduplicated by name.
type UndeclaredUsage struct {
	Name     string `json:"name"`
	Fallback string `json:"fallback,omitempty"`
}

// VariablesAnalysis is the scored custom-property usage summary.
type VariablesAnalysis struct {
	ScoreResult
	Declared      []CSSVariable     `json:"declared"`
	Unused        []string          `json:"unused"`
	Undeclared    []UndeclaredUsage `json:"undeclared"`
	AdoptionRatio float64           `json:"adoptionRatio"`
	UsedCoverage  float64           `json:"usedCoverage"`
}

// AnalyzeCustomProperties scans compiled CSS in a single tokenizer
// pass, collecting declarations (first occurrence wins), usages, and
// the var() adoption ratio across regular property values.
func AnalyzeCustomProperties(compiledCSS string) VariablesAnalysis {
	analysis := VariablesAnalysis{}

	declared := make(map[string]*CSSVariable)
	var order []string
	usages := make(map[string]int)
	undeclaredFallbacks := make(map[string]string)
	varUsingDecls := 0
	rawDecls := 0

	WalkRules(compiledCSS, func(_ string, decls []Declaration) {
		for _, d := range decls {
			if strings.HasPrefix(d.Property, "--") {
				if _, seen := declared[d.Property]; !seen {
					declared[d.Property] = &CSSVariable{
						Name:          d.Property,
						DeclaredValue: d.Value,
						Category:      VariableCategory(d.Property),
					}
					order = append(order, d.Property)
				}
			} else if strings.Contains(d.Value, "var(") {
				varUsingDecls++
			} else {
				rawDecls++
			}

			for _, m := range varUsagePattern.FindAllStringSubmatch(d.Value, -1) {
				usages[m[1]]++
				if fb := strings.TrimSpace(m[2]); fb != "" {
					undeclaredFallbacks[m[1]] = fb
				}
			}
		}
	})

	used := 0
	for _, name := range order {
		v := declared[name]
		v.UsageCount = usages[name]
		if v.UsageCount > 0 {
			used++
		} else {
			analysis.Unused = append(analysis.Unused, name)
		}
		analysis.Declared = append(analysis.Declared, *v)
	}

	var undeclaredNames []string
	for name := range usages {
		if _, ok := declared[name]; !ok {
			undeclaredNames = append(undeclaredNames, name)
		}
	}
	sort.Strings(undeclaredNames)
	for _, name := range undeclaredNames {
		analysis.Undeclared = append(analysis.Undeclared, UndeclaredUsage{
			Name:     name,
			Fallback: undeclaredFallbacks[name],
		})
	}

	if len(declared) == 0 && len(usages) == 0 {
		analysis.Breakdown = map[string]Criterion{
			"adoption":   {Score: 0, Max: 40, Details: "aucune variable CSS détectée"},
			"coverage":   {Score: 0, Max: 25, Details: "aucune variable CSS détectée"},
			"hygiene":    {Score: 0, Max: 20, Details: "aucune variable CSS détectée"},
			"categories": {Score: 0, Max: 10, Details: "aucune variable CSS détectée"},
			"practices":  {Score: 0, Max: 5, Details: "aucune variable CSS détectée"},
		}
		analysis.Total = 0
		analysis.Grade = GradeFor(0)
		analysis.Improvements = []string{"Définissez des variables CSS (--color-*, --spacing-*) dans :root."}
		return analysis
	}

	if varUsingDecls+rawDecls > 0 {
		analysis.AdoptionRatio = float64(varUsingDecls) / float64(varUsingDecls+rawDecls)
	}
	analysis.UsedCoverage = ratio(used, len(declared))

	analysis.Breakdown = map[string]Criterion{
		"adoption":   scoreAdoption(analysis.AdoptionRatio),
		"coverage":   scoreVarCoverage(analysis.UsedCoverage, len(declared)),
		"hygiene":    scoreVarHygiene(len(analysis.Undeclared), len(analysis.Unused), len(declared)),
		"categories": scoreVarCategories(analysis.Declared),
		"practices":  scoreVarPractices(analysis.AdoptionRatio, len(analysis.Undeclared)),
	}
	analysis.finalize()
	analysis.Improvements = variableImprovements(&analysis)
	return analysis
}

// scoreAdoption ramps linearly from 0 to 40 points over adoption 0 to
// adoptionTarget, capped thereafter.
func scoreAdoption(adoption float64) Criterion {
	c := Criterion{Max: 40}
	c.Score = scale(40, adoption/adoptionTarget)
	c.Details = fmt.Sprintf("%.0f%% des déclarations utilisent var()", adoption*100)
	return c
}

func scoreVarCoverage(coverage float64, declaredCount int) Criterion {
	c := Criterion{Max: 25, Details: fmt.Sprintf("%.0f%% des variables déclarées sont utilisées", coverage*100)}
	if declaredCount == 0 {
		c.Details = "aucune variable déclarée"
		return c
	}
	switch {
	case coverage >= 0.8:
		c.Score = 25
	case coverage >= 0.6:
		c.Score = 20
	case coverage >= 0.4:
		c.Score = 14
	case coverage >= 0.2:
		c.Score = 8
	default:
		c.Score = 3
	}
	return c
}

func scoreVarHygiene(undeclared, unused, declared int) Criterion {
	c := Criterion{Max: 20, Score: 20}
	c.Score -= clampInt(undeclared*4, 0, 12)
	c.Score -= scale(8, ratio(unused, max(declared, 1)))
	c.Score = clampInt(c.Score, 0, 20)
	c.Details = fmt.Sprintf("%d non déclarées, %d inutilisées", undeclared, unused)
	return c
}

func scoreVarCategories(declared []CSSVariable) Criterion {
	c := Criterion{Max: 10}
	wanted := map[string]bool{
		VarCategoryColor:      false,
		VarCategoryTypography: false,
		VarCategorySpacing:    false,
		VarCategoryRadius:     false,
	}
	for _, v := range declared {
		if _, tracked := wanted[v.Category]; tracked {
			wanted[v.Category] = true
		}
	}
	covered := 0
	for _, ok := range wanted {
		if ok {
			covered++
		}
	}
	c.Score = scale(10, float64(covered)/float64(len(wanted)))
	c.Details = fmt.Sprintf("%d/%d familles de variables couvertes", covered, len(wanted))
	return c
}

func scoreVarPractices(adoption float64, undeclared int) Criterion {
	c := Criterion{Max: 5}
	switch {
	case adoption >= adoptionTarget:
		c.Score = 3
	case adoption >= 0.2:
		c.Score = 2
	case adoption > 0:
		c.Score = 1
	}
	if undeclared == 0 {
		c.Score += 2
	}
	c.Score = clampInt(c.Score, 0, 5)
	c.Details = "adoption et absence de variables fantômes"
	return c
}

func variableImprovements(a *VariablesAnalysis) []string {
	var out []string
	if a.AdoptionRatio < 0.15 {
		out = append(out, "Remplacez les valeurs répétées (couleurs, espacements) par des variables CSS.")
	}
	if len(a.Unused) > 0 {
		out = append(out, fmt.Sprintf("Supprimez %d variable(s) déclarées mais jamais utilisées.", len(a.Unused)))
	}
	for _, u := range a.Undeclared {
		out = append(out, fmt.Sprintf("La variable %s est utilisée mais jamais déclarée.", u.Name))
		break
	}
	if len(a.Undeclared) > 1 {
		out = append(out, fmt.Sprintf("%d variables utilisées sans déclaration au total.", len(a.Undeclared)))
	}
	if len(out) == 0 {
		out = append(out, "Usage des variables CSS bien structuré.")
	}
	return out
}
