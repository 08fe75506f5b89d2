package analyzer

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Perceptual similarity thresholds in OKLCH-like space. Two opaque
// samples are similar when all three deltas are under threshold; when
// both samples are achromatic only lightness is compared, with a
// stricter bound.
const (
	similarLightnessDelta  = 0.1
	similarChromaDelta     = 0.06
	similarHueDelta        = 35.0
	achromaticChromaMax    = 0.02
	achromaticLightnessMax = 0.07
	hueBucketWidth         = 40.0
)

// ColorSample is one distinct color literal with its perceptual triple.
type ColorSample struct {
	Value  string  `json:"value"`
	Count  int     `json:"count"`
	L      float64 `json:"lightness"`
	C      float64 `json:"chroma"`
	H      float64 `json:"hue"`
	Alpha  float64 `json:"alpha"`
	Format string  `json:"format"`
}

// Achromatic reports whether the sample carries no usable hue.
func (s ColorSample) Achromatic() bool {
	return s.C < achromaticChromaMax
}

// SimilarPair records two mutually similar color literals.
type SimilarPair struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

// ColorAnalysis is the scored palette summary.
type ColorAnalysis struct {
	ScoreResult
	UniqueColors     int                 `json:"uniqueColors"`
	TransparentCount int                 `json:"transparentCount"`
	SimilarPairs     []SimilarPair       `json:"similarPairs"`
	HueBuckets       map[string][]string `json:"hueBuckets"`
	Formats          map[string]int      `json:"formats"`
}

// AnalyzeColors scores the palette of a color frequency table.
// Unparseable literals are dropped, never errored.
func AnalyzeColors(frequencies map[string]int) ColorAnalysis {
	analysis := ColorAnalysis{
		HueBuckets: make(map[string][]string),
		Formats:    make(map[string]int),
	}

	var opaque, transparent []ColorSample
	variableBased := 0
	for literal, count := range frequencies {
		format := colorSyntaxFamily(literal)
		if format == "variable" {
			variableBased += count
			analysis.Formats[format]++
			continue
		}
		sample, ok := parseColorSample(literal, count)
		if !ok {
			continue
		}
		analysis.Formats[sample.Format]++
		if sample.Alpha < 1 {
			transparent = append(transparent, sample)
		} else {
			opaque = append(opaque, sample)
		}
	}

	analysis.UniqueColors = len(opaque) + len(transparent)
	analysis.TransparentCount = len(transparent)

	if analysis.UniqueColors == 0 && variableBased == 0 {
		analysis.Breakdown = map[string]Criterion{
			"paletteSize":  {Score: 0, Max: 30, Details: "aucune couleur détectée"},
			"consistency":  {Score: 0, Max: 25, Details: "aucune couleur détectée"},
			"formats":      {Score: 0, Max: 20, Details: "aucune couleur détectée"},
			"transparency": {Score: 0, Max: 15, Details: "aucune couleur détectée"},
			"practices":    {Score: 0, Max: 10, Details: "aucune couleur détectée"},
		}
		analysis.Total = 0
		analysis.Grade = "N/A"
		analysis.Improvements = []string{"Aucune couleur détectée dans le CSS compilé."}
		return analysis
	}

	// Pairwise similarity over opaque samples only. Semi-transparent
	// overlays reuse base hues intentionally and are excluded.
	sort.Slice(opaque, func(i, j int) bool { return opaque[i].Value < opaque[j].Value })
	for i := 0; i < len(opaque); i++ {
		for j := i + 1; j < len(opaque); j++ {
			if SimilarColors(opaque[i], opaque[j]) {
				analysis.SimilarPairs = append(analysis.SimilarPairs, SimilarPair{
					First:  opaque[i].Value,
					Second: opaque[j].Value,
				})
			}
		}
	}

	for _, s := range opaque {
		bucket := hueBucket(s)
		analysis.HueBuckets[bucket] = append(analysis.HueBuckets[bucket], s.Value)
	}

	analysis.Breakdown = map[string]Criterion{
		"paletteSize":  scorePaletteSize(analysis.UniqueColors),
		"consistency":  scoreConsistency(len(opaque), analysis.SimilarPairs),
		"formats":      scoreFormats(analysis.Formats),
		"transparency": scoreTransparency(analysis.TransparentCount, analysis.UniqueColors),
		"practices":    scoreColorPractices(analysis.HueBuckets, variableBased),
	}
	analysis.finalize()
	analysis.Improvements = colorImprovements(analysis)
	return analysis
}

// SimilarColors reports perceptual similarity. Symmetric by
// construction: every comparison uses absolute deltas.
func SimilarColors(a, b ColorSample) bool {
	dl := math.Abs(a.L - b.L)
	if a.Achromatic() && b.Achromatic() {
		return dl < achromaticLightnessMax
	}
	dc := math.Abs(a.C - b.C)
	dh := hueDistance(a.H, b.H)
	return dl < similarLightnessDelta && dc < similarChromaDelta && dh < similarHueDelta
}

func hueDistance(h1, h2 float64) float64 {
	d := math.Abs(h1 - h2)
	if d > 180 {
		d = 360 - d
	}
	return d
}

func hueBucket(s ColorSample) string {
	if s.Achromatic() {
		return "achromatic"
	}
	from := int(s.H/hueBucketWidth) * int(hueBucketWidth)
	return fmt.Sprintf("%d-%d", from, from+int(hueBucketWidth))
}

func scorePaletteSize(n int) Criterion {
	c := Criterion{Max: 30, Details: fmt.Sprintf("%d couleurs uniques", n)}
	switch {
	case n >= 8 && n <= 15:
		c.Score = 30
	case (n >= 5 && n <= 7) || (n >= 16 && n <= 20):
		c.Score = 22
	case (n >= 3 && n <= 4) || (n >= 21 && n <= 30):
		c.Score = 15
	default:
		c.Score = 8
	}
	return c
}

func scoreConsistency(opaque int, pairs []SimilarPair) Criterion {
	c := Criterion{Max: 25}
	involved := make(map[string]bool)
	for _, p := range pairs {
		involved[p.First] = true
		involved[p.Second] = true
	}
	r := ratio(len(involved), opaque)
	c.Details = fmt.Sprintf("%d paires de couleurs trop proches", len(pairs))
	// Linear penalty: full marks at ratio 0, zero at ratio 0.4.
	if r >= 0.4 {
		c.Score = 0
	} else {
		c.Score = scale(25, 1-r/0.4)
	}
	return c
}

func scoreFormats(formats map[string]int) Criterion {
	c := Criterion{Max: 20}
	distinct := 0
	modern := false
	for f := range formats {
		if f == "variable" || f == "transparent" {
			continue
		}
		distinct++
		if f == "oklch" {
			modern = true
		}
	}
	switch {
	case distinct <= 1:
		c.Score = 20
	case distinct == 2:
		c.Score = 15
	case distinct == 3:
		c.Score = 10
	default:
		c.Score = 5
	}
	if modern {
		c.Score = clampInt(c.Score+5, 0, 20)
	}
	c.Details = fmt.Sprintf("%d syntaxes de couleur distinctes", distinct)
	return c
}

func scoreTransparency(transparent, total int) Criterion {
	c := Criterion{Max: 15}
	r := ratio(transparent, total)
	c.Details = fmt.Sprintf("%.0f%% de couleurs semi-transparentes", r*100)
	switch {
	case r <= 0.3:
		c.Score = 15
	case r <= 0.5:
		c.Score = 10
	default:
		c.Score = 5
	}
	return c
}

func scoreColorPractices(buckets map[string][]string, variableBased int) Criterion {
	c := Criterion{Max: 10}
	hueGroups := 0
	for name := range buckets {
		if name != "achromatic" {
			hueGroups++
		}
	}
	if hueGroups >= 3 && hueGroups <= 6 {
		c.Score = 6
	} else {
		c.Score = 3
	}
	if variableBased > 0 {
		c.Score += 4
	}
	c.Score = clampInt(c.Score, 0, 10)
	c.Details = fmt.Sprintf("%d familles de teintes", hueGroups)
	return c
}

func colorImprovements(a ColorAnalysis) []string {
	var out []string
	if a.UniqueColors > 15 {
		out = append(out, fmt.Sprintf("Réduisez la palette : %d couleurs uniques détectées (idéal : 8 à 15).", a.UniqueColors))
	}
	if a.UniqueColors > 0 && a.UniqueColors < 8 {
		out = append(out, "Palette très réduite : vérifiez que les états (hover, focus) sont bien différenciés.")
	}
	if len(a.SimilarPairs) > 0 {
		out = append(out, fmt.Sprintf("Fusionnez les couleurs quasi identiques (%d paires détectées).", len(a.SimilarPairs)))
	}
	distinct := 0
	for f := range a.Formats {
		if f != "variable" && f != "transparent" {
			distinct++
		}
	}
	if distinct > 2 {
		out = append(out, "Harmonisez la syntaxe des couleurs (un seul format, hex ou oklch).")
	}
	if a.Formats["variable"] == 0 {
		out = append(out, "Centralisez les couleurs dans des variables CSS (--color-*).")
	}
	if len(out) == 0 {
		out = append(out, "Palette de couleurs bien maîtrisée.")
	}
	return out
}

var (
	hexColorPattern  = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	funcColorPattern = regexp.MustCompile(`(?i)^(rgba?|hsla?|oklch)\(\s*(.*)\)$`)
	numberPattern    = regexp.MustCompile(`-?[\d.]+%?`)
)

// colorSyntaxFamily tallies the literal's syntax family.
func colorSyntaxFamily(literal string) string {
	l := strings.ToLower(strings.TrimSpace(literal))
	switch {
	case l == "transparent":
		return "transparent"
	case strings.HasPrefix(l, "var("):
		return "variable"
	case strings.HasPrefix(l, "#"):
		return "hex"
	case strings.HasPrefix(l, "rgb"):
		return "rgb"
	case strings.HasPrefix(l, "hsl"):
		return "hsl"
	case strings.HasPrefix(l, "oklch"):
		return "oklch"
	default:
		return "named"
	}
}

// parseColorSample converts a CSS color literal into its OKLCH-like
// perceptual triple. Returns false for unparseable literals.
func parseColorSample(literal string, count int) (ColorSample, bool) {
	l := strings.ToLower(strings.TrimSpace(literal))
	sample := ColorSample{Value: literal, Count: count, Alpha: 1, Format: colorSyntaxFamily(literal)}

	if l == "transparent" {
		sample.Alpha = 0
		return sample, true
	}

	if hexColorPattern.MatchString(l) {
		col, alpha, ok := parseHex(l)
		if !ok {
			return sample, false
		}
		sample.Alpha = alpha
		sample.L, sample.C, sample.H = toOkLCH(col)
		return sample, true
	}

	if m := funcColorPattern.FindStringSubmatch(l); m != nil {
		fn := m[1]
		nums := numberPattern.FindAllString(m[2], -1)
		switch {
		case strings.HasPrefix(fn, "rgb") && len(nums) >= 3:
			r := channelValue(nums[0], 255)
			g := channelValue(nums[1], 255)
			b := channelValue(nums[2], 255)
			if len(nums) >= 4 {
				sample.Alpha = channelValue(nums[3], 1)
			}
			sample.L, sample.C, sample.H = toOkLCH(colorful.Color{R: r, G: g, B: b})
			return sample, true
		case strings.HasPrefix(fn, "hsl") && len(nums) >= 3:
			h := parseFloatToken(nums[0])
			s := channelValue(nums[1], 1)
			v := channelValue(nums[2], 1)
			if len(nums) >= 4 {
				sample.Alpha = channelValue(nums[3], 1)
			}
			sample.L, sample.C, sample.H = toOkLCH(colorful.Hsl(h, s, v))
			return sample, true
		case fn == "oklch" && len(nums) >= 3:
			// Already the perceptual triple.
			sample.L = channelValue(nums[0], 1)
			sample.C = parseFloatToken(nums[1])
			sample.H = math.Mod(parseFloatToken(nums[2])+360, 360)
			if len(nums) >= 4 {
				sample.Alpha = channelValue(nums[3], 1)
			}
			return sample, true
		}
		return sample, false
	}

	if rgb, ok := namedColors[l]; ok {
		col := colorful.Color{R: float64(rgb[0]) / 255, G: float64(rgb[1]) / 255, B: float64(rgb[2]) / 255}
		sample.L, sample.C, sample.H = toOkLCH(col)
		return sample, true
	}

	return sample, false
}

// channelValue parses a numeric token, treating "%" as a fraction of
// scale and bare numbers as already in [0, scale].
func channelValue(token string, scale float64) float64 {
	if strings.HasSuffix(token, "%") {
		return parseFloatToken(strings.TrimSuffix(token, "%")) / 100
	}
	v := parseFloatToken(token)
	if scale > 1 {
		return v / scale
	}
	return v
}

func parseFloatToken(token string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(token, "%"), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseHex(literal string) (colorful.Color, float64, bool) {
	hex := strings.TrimPrefix(literal, "#")
	alpha := 1.0
	switch len(hex) {
	case 3:
		hex = expandShortHex(hex)
	case 4:
		alpha = float64(hexNibble(hex[3])*17) / 255
		hex = expandShortHex(hex[:3])
	case 8:
		a, err := strconv.ParseUint(hex[6:8], 16, 8)
		if err != nil {
			return colorful.Color{}, 0, false
		}
		alpha = float64(a) / 255
		hex = hex[:6]
	}
	col, err := colorful.Hex("#" + hex)
	if err != nil {
		return colorful.Color{}, 0, false
	}
	return col, alpha, true
}

func expandShortHex(hex string) string {
	var b strings.Builder
	for i := 0; i < len(hex); i++ {
		b.WriteByte(hex[i])
		b.WriteByte(hex[i])
	}
	return b.String()
}

func hexNibble(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10
	default:
		return 0
	}
}

// toOkLCH converts an sRGB color to the OKLCH perceptual triple
// (lightness 0..1, chroma, hue degrees). Conversion goes through
// linear RGB and the OKLab matrices.
func toOkLCH(c colorful.Color) (l, chroma, hue float64) {
	r, g, b := c.LinearRgb()

	lms1 := 0.4122214708*r + 0.5363325363*g + 0.0514459929*b
	lms2 := 0.2119034982*r + 0.6806995451*g + 0.1073969566*b
	lms3 := 0.0883024619*r + 0.2817188376*g + 0.6299787005*b

	l1 := math.Cbrt(lms1)
	l2 := math.Cbrt(lms2)
	l3 := math.Cbrt(lms3)

	okL := 0.2104542553*l1 + 0.7936177850*l2 - 0.0040720468*l3
	okA := 1.9779984951*l1 - 2.4285922050*l2 + 0.4505937099*l3
	okB := 0.0259040371*l1 + 0.7827717662*l2 - 0.8086757660*l3

	chroma = math.Sqrt(okA*okA + okB*okB)
	hue = math.Mod(math.Atan2(okB, okA)*180/math.Pi+360, 360)
	return okL, chroma, hue
}

// namedColors covers the CSS basic palette plus the extended names
// commonly seen in student projects. Unknown names are dropped by the
// unresolvable-input policy.
var namedColors = map[string][3]uint8{
	"black":         {0, 0, 0},
	"silver":        {192, 192, 192},
	"gray":          {128, 128, 128},
	"grey":          {128, 128, 128},
	"white":         {255, 255, 255},
	"maroon":        {128, 0, 0},
	"red":           {255, 0, 0},
	"purple":        {128, 0, 128},
	"fuchsia":       {255, 0, 255},
	"magenta":       {255, 0, 255},
	"green":         {0, 128, 0},
	"lime":          {0, 255, 0},
	"olive":         {128, 128, 0},
	"yellow":        {255, 255, 0},
	"navy":          {0, 0, 128},
	"blue":          {0, 0, 255},
	"teal":          {0, 128, 128},
	"aqua":          {0, 255, 255},
	"cyan":          {0, 255, 255},
	"orange":        {255, 165, 0},
	"gold":          {255, 215, 0},
	"coral":         {255, 127, 80},
	"tomato":        {255, 99, 71},
	"salmon":        {250, 128, 114},
	"crimson":       {220, 20, 60},
	"pink":          {255, 192, 203},
	"hotpink":       {255, 105, 180},
	"violet":        {238, 130, 238},
	"indigo":        {75, 0, 130},
	"slateblue":     {106, 90, 205},
	"royalblue":     {65, 105, 225},
	"dodgerblue":    {30, 144, 255},
	"deepskyblue":   {0, 191, 255},
	"lightblue":     {173, 216, 230},
	"skyblue":       {135, 206, 235},
	"steelblue":     {70, 130, 180},
	"turquoise":     {64, 224, 208},
	"seagreen":      {46, 139, 87},
	"forestgreen":   {34, 139, 34},
	"limegreen":     {50, 205, 50},
	"darkgreen":     {0, 100, 0},
	"khaki":         {240, 230, 140},
	"beige":         {245, 245, 220},
	"ivory":         {255, 255, 240},
	"snow":          {255, 250, 250},
	"brown":         {165, 42, 42},
	"chocolate":     {210, 105, 30},
	"tan":           {210, 180, 140},
	"wheat":         {245, 222, 179},
	"darkgray":      {169, 169, 169},
	"darkgrey":      {169, 169, 169},
	"dimgray":       {105, 105, 105},
	"dimgrey":       {105, 105, 105},
	"lightgray":     {211, 211, 211},
	"lightgrey":     {211, 211, 211},
	"gainsboro":     {220, 220, 220},
	"whitesmoke":    {245, 245, 245},
	"darkblue":      {0, 0, 139},
	"darkred":       {139, 0, 0},
	"darkorange":    {255, 140, 0},
	"darkviolet":    {148, 0, 211},
	"darkslategray": {47, 79, 79},
	"midnightblue":  {25, 25, 112},
	"rebeccapurple": {102, 51, 153},
	"lavender":      {230, 230, 250},
	"plum":          {221, 160, 221},
	"orchid":        {218, 112, 214},
	"goldenrod":     {218, 165, 32},
	"firebrick":     {178, 34, 34},
	"sienna":        {160, 82, 45},
	"peru":          {205, 133, 63},
	"slategray":     {112, 128, 144},
	"slategrey":     {112, 128, 144},
	"lightslategray": {119, 136, 153},
	"mintcream":      {245, 255, 250},
	"honeydew":       {240, 255, 240},
	"aliceblue":      {240, 248, 255},
	"ghostwhite":     {248, 248, 255},
	"linen":          {250, 240, 230},
	"oldlace":        {253, 245, 230},
	"seashell":       {255, 245, 238},
	"cornsilk":       {255, 248, 220},
	"lemonchiffon":   {255, 250, 205},
	"lightyellow":    {255, 255, 224},
	"lightcyan":      {224, 255, 255},
	"lightpink":      {255, 182, 193},
	"lightsalmon":    {255, 160, 122},
	"lightgreen":     {144, 238, 144},
	"palegreen":      {152, 251, 152},
	"palegoldenrod":  {238, 232, 170},
	"paleturquoise":  {175, 238, 238},
	"palevioletred":  {219, 112, 147},
	"mediumseagreen": {60, 179, 113},
	"mediumpurple":   {147, 112, 219},
	"mediumblue":     {0, 0, 205},
	"cadetblue":      {95, 158, 160},
	"cornflowerblue": {100, 149, 237},
}

// CollectColorLiterals walks compiled CSS and tallies every color
// literal found in declaration values, keyed by raw literal text.
// var() references on color-bearing properties are tallied under the
// literal "var(--name)" so the palette score can reward token usage.
func CollectColorLiterals(compiledCSS string) map[string]int {
	counts := make(map[string]int)
	WalkRules(compiledCSS, func(_ string, decls []Declaration) {
		for _, d := range decls {
			if strings.HasPrefix(d.Property, "--") && VariableCategory(d.Property) != VarCategoryColor {
				continue
			}
			for _, lit := range extractColorTokens(d.Property, d.Value) {
				counts[lit]++
			}
		}
	})
	return counts
}

// colorBearingProperties accept color values directly.
var colorBearingProperties = map[string]bool{
	"color":                 true,
	"background":            true,
	"background-color":      true,
	"border":                true,
	"border-color":          true,
	"border-top":            true,
	"border-right":          true,
	"border-bottom":         true,
	"border-left":           true,
	"outline":               true,
	"outline-color":         true,
	"box-shadow":            true,
	"text-shadow":           true,
	"fill":                  true,
	"stroke":                true,
	"caret-color":           true,
	"accent-color":          true,
	"text-decoration-color": true,
}

var inlineColorPattern = regexp.MustCompile(`(?i)#(?:[0-9a-f]{3,4}|[0-9a-f]{6}|[0-9a-f]{8})\b|(?:rgba?|hsla?|oklch)\([^)]*\)`)

func extractColorTokens(property, value string) []string {
	var tokens []string
	tokens = append(tokens, inlineColorPattern.FindAllString(value, -1)...)

	if !colorBearingProperties[property] && !strings.HasPrefix(property, "--") {
		return tokens
	}

	for _, field := range strings.FieldsFunc(value, func(r rune) bool { return r == ' ' || r == ',' }) {
		f := strings.ToLower(strings.TrimSpace(field))
		if f == "transparent" {
			tokens = append(tokens, "transparent")
			continue
		}
		if _, ok := namedColors[f]; ok {
			tokens = append(tokens, f)
		}
	}

	if strings.Contains(value, "var(") && colorBearingProperties[property] {
		for _, m := range varUsagePattern.FindAllStringSubmatch(value, -1) {
			tokens = append(tokens, "var("+m[1]+")")
		}
	}
	return tokens
}
