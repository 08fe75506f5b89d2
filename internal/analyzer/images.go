package analyzer

import (
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"
)

// Alt text quality levels.
const (
	AltMissing = "missing"
	AltPoor    = "poor"
	AltGood    = "good"
)

// altSentinel is the placeholder some generators emit instead of an
// empty alt attribute.
const altSentinel = "no alt"

// genericAltTerms flag non-descriptive alt texts when combined with a
// short length.
var genericAltTerms = []string{"image", "img", "photo", "picture", "pic", "icon", "logo", "banner"}

// modernImageFormats are rewarded by the best-practices criterion.
var modernImageFormats = map[string]bool{"avif": true, "webp": true, "svg": true}

// ImageRecord is one extracted <img> element.
type ImageRecord struct {
	Src            string `json:"src"`
	Alt            string `json:"alt"`
	AriaHidden     bool   `json:"ariaHidden"`
	HasLazyLoading bool   `json:"hasLazyLoading"`
}

// NetworkRequest is one entry of the performance-audit request list.
type NetworkRequest struct {
	URL          string `json:"url"`
	ResourceSize int64  `json:"resourceSize"`
	MimeType     string `json:"mimeType"`
	ResourceType string `json:"resourceType"`
}

// ImageDetail is an image enriched with request data and quality
// classification. Enrichment fields stay nil when the src cannot be
// resolved or matched.
type ImageDetail struct {
	ImageRecord
	ResourceSize *int64  `json:"resourceSize"`
	MimeType     *string `json:"mimeType"`
	Format       string  `json:"format"`
	AltQuality   string  `json:"altQuality"`
	Decorative   bool    `json:"decorative"`
}

// ImageStats are the aggregate counters the image score is a pure
// function of, so per-page and whole-project scoring share one path.
type ImageStats struct {
	Total        int            `json:"total"`
	WithAlt      int            `json:"withAlt"`
	GoodAlt      int            `json:"goodAlt"`
	Decorative   int            `json:"decorative"`
	Lazy         int            `json:"lazy"`
	Modern       int            `json:"modern"`
	Formats      map[string]int `json:"formats"`
	TopWeightsKB []float64      `json:"topWeightsKb"`
}

// ImagesAnalysis is the scored image summary of one page.
type ImagesAnalysis struct {
	ScoreResult
	Images []ImageDetail `json:"images"`
	Stats  ImageStats    `json:"stats"`
}

// AnalyzeImages enriches extracted images with network-request data
// and scores accessibility, performance and best practices.
func AnalyzeImages(images []ImageRecord, requests []NetworkRequest, baseURL string) ImagesAnalysis {
	analysis := ImagesAnalysis{Stats: ImageStats{Formats: make(map[string]int)}}

	byURL := make(map[string]NetworkRequest, len(requests))
	for _, r := range requests {
		if strings.EqualFold(r.ResourceType, "image") {
			byURL[r.URL] = r
		}
	}
	base, baseErr := url.Parse(baseURL)

	for _, img := range images {
		detail := ImageDetail{ImageRecord: img}
		detail.AltQuality = classifyAlt(img.Alt)
		detail.Decorative = isDecorative(img)

		if resolved := resolveImageURL(img.Src, base, baseErr == nil); resolved != "" {
			if req, ok := byURL[resolved]; ok {
				size := req.ResourceSize
				mime := req.MimeType
				detail.ResourceSize = &size
				detail.MimeType = &mime
			}
		}
		detail.Format = imageFormat(img.Src, detail.MimeType)

		analysis.Images = append(analysis.Images, detail)
		accumulateImage(&analysis.Stats, detail)
	}

	finishStats(&analysis.Stats)
	analysis.ScoreResult = ScoreImageStats(analysis.Stats)
	return analysis
}

// SynthesizeImages merges per-page stats and re-runs the same scorer
// over the whole-project aggregate.
func SynthesizeImages(pages []ImagesAnalysis) ImagesAnalysis {
	global := ImagesAnalysis{Stats: ImageStats{Formats: make(map[string]int)}}
	for _, page := range pages {
		s := page.Stats
		global.Stats.Total += s.Total
		global.Stats.WithAlt += s.WithAlt
		global.Stats.GoodAlt += s.GoodAlt
		global.Stats.Decorative += s.Decorative
		global.Stats.Lazy += s.Lazy
		global.Stats.Modern += s.Modern
		for f, n := range s.Formats {
			global.Stats.Formats[f] += n
		}
		global.Stats.TopWeightsKB = append(global.Stats.TopWeightsKB, s.TopWeightsKB...)
		global.Images = append(global.Images, page.Images...)
	}
	finishStats(&global.Stats)
	global.ScoreResult = ScoreImageStats(global.Stats)
	return global
}

func accumulateImage(stats *ImageStats, detail ImageDetail) {
	stats.Total++
	if detail.AltQuality != AltMissing {
		stats.WithAlt++
	}
	if detail.AltQuality == AltGood {
		stats.GoodAlt++
	}
	if detail.Decorative {
		stats.Decorative++
	}
	if detail.HasLazyLoading {
		stats.Lazy++
	}
	if modernImageFormats[detail.Format] {
		stats.Modern++
	}
	if detail.Format != "" {
		stats.Formats[detail.Format]++
	}
	if detail.ResourceSize != nil {
		stats.TopWeightsKB = append(stats.TopWeightsKB, float64(*detail.ResourceSize)/1024)
	}
}

// finishStats keeps only the five heaviest weights.
func finishStats(stats *ImageStats) {
	sort.Sort(sort.Reverse(sort.Float64Slice(stats.TopWeightsKB)))
	if len(stats.TopWeightsKB) > 5 {
		stats.TopWeightsKB = stats.TopWeightsKB[:5]
	}
}

// ScoreImageStats is a pure function of the aggregate counters.
func ScoreImageStats(stats ImageStats) ScoreResult {
	if stats.Total == 0 {
		// Absence of images is not a defect.
		return ScoreResult{
			Total: 100,
			Grade: "A",
			Breakdown: map[string]Criterion{
				"accessibility": {Score: 35, Max: 35, Details: "aucune image"},
				"performance":   {Score: 35, Max: 35, Details: "aucune image"},
				"practices":     {Score: 30, Max: 30, Details: "aucune image"},
			},
			Improvements: []string{"Aucune image à optimiser."},
		}
	}

	result := ScoreResult{
		Breakdown: map[string]Criterion{
			"accessibility": scoreImageAccessibility(stats),
			"performance":   scoreImagePerformance(stats),
			"practices":     scoreImagePractices(stats),
		},
	}
	result.finalize()
	result.Improvements = imageImprovements(stats)
	return result
}

func scoreImageAccessibility(stats ImageStats) Criterion {
	c := Criterion{Max: 35}

	presence := ratio(stats.WithAlt, stats.Total)
	switch {
	case presence >= 0.95:
		c.Score += 15
	case presence >= 0.8:
		c.Score += 11
	case presence >= 0.5:
		c.Score += 7
	default:
		c.Score += 3
	}

	quality := ratio(stats.GoodAlt, max(stats.WithAlt, 1))
	switch {
	case quality >= 0.9:
		c.Score += 10
	case quality >= 0.7:
		c.Score += 7
	case quality >= 0.5:
		c.Score += 4
	default:
		c.Score += 2
	}

	c.Score += decorativeBand(stats, 10)
	c.Details = fmt.Sprintf("%.0f%% d'attributs alt, %.0f%% descriptifs", presence*100, quality*100)
	return c
}

// decorativeBand rewards a decorative share inside the 10-25% sweet
// spot, scaled to the criterion's point budget.
func decorativeBand(stats ImageStats, budget int) int {
	d := ratio(stats.Decorative, stats.Total)
	switch {
	case d >= 0.10 && d <= 0.25:
		return budget
	case d < 0.10:
		return scale(budget, 0.8)
	case d <= 0.4:
		return scale(budget, 0.5)
	default:
		return scale(budget, 0.2)
	}
}

func scoreImagePerformance(stats ImageStats) Criterion {
	c := Criterion{Max: 35}

	lazy := ratio(stats.Lazy, stats.Total)
	switch {
	case lazy >= 0.4 && lazy <= 0.9:
		c.Score += 20
	case lazy > 0.9:
		// over-application: above-the-fold images should load eagerly
		c.Score += 16
	case lazy >= 0.2:
		c.Score += 12
	case lazy > 0:
		c.Score += 6
	default:
		c.Score += 3
	}

	if len(stats.TopWeightsKB) == 0 {
		// no size data available: enrichment degraded to nulls
		c.Score += 15
		c.Details = fmt.Sprintf("%.0f%% en lazy-loading, poids inconnu", lazy*100)
		return c
	}
	sum := 0.0
	for _, kb := range stats.TopWeightsKB {
		sum += kb
	}
	avg := sum / float64(len(stats.TopWeightsKB))
	switch {
	case avg < 80:
		c.Score += 15
	case avg < 150:
		c.Score += 11
	case avg < 300:
		c.Score += 7
	default:
		c.Score += 3
	}
	c.Details = fmt.Sprintf("%.0f%% en lazy-loading, %.0f Ko en moyenne (top 5)", lazy*100, avg)
	return c
}

func scoreImagePractices(stats ImageStats) Criterion {
	c := Criterion{Max: 30}

	modern := ratio(stats.Modern, stats.Total)
	switch {
	case modern >= 0.8:
		c.Score += 15
	case modern >= 0.5:
		c.Score += 11
	case modern >= 0.25:
		c.Score += 7
	case modern > 0:
		c.Score += 4
	default:
		c.Score += 2
	}

	c.Score += decorativeBand(stats, 10)

	switch len(stats.Formats) {
	case 0:
		c.Score += 3
	case 1:
		c.Score += 5
	case 2:
		c.Score += 4
	case 3:
		c.Score += 3
	default:
		c.Score += 2
	}
	c.Details = fmt.Sprintf("%.0f%% de formats modernes, %d formats distincts", modern*100, len(stats.Formats))
	return c
}

func imageImprovements(stats ImageStats) []string {
	var out []string
	if stats.WithAlt < stats.Total {
		out = append(out, fmt.Sprintf("%d image(s) sans attribut alt.", stats.Total-stats.WithAlt))
	}
	if stats.GoodAlt < stats.WithAlt {
		out = append(out, "Rendez les textes alternatifs plus descriptifs (éviter « image », « photo »...).")
	}
	lazy := ratio(stats.Lazy, stats.Total)
	if lazy < 0.4 {
		out = append(out, "Ajoutez loading=\"lazy\" aux images sous la ligne de flottaison.")
	}
	if lazy > 0.9 {
		out = append(out, "N'appliquez pas le lazy-loading aux images visibles au chargement.")
	}
	if ratio(stats.Modern, stats.Total) < 0.5 {
		out = append(out, "Convertissez les images en WebP ou AVIF.")
	}
	if len(stats.TopWeightsKB) > 0 && stats.TopWeightsKB[0] > 300 {
		out = append(out, fmt.Sprintf("Compressez l'image la plus lourde (%.0f Ko).", stats.TopWeightsKB[0]))
	}
	if len(out) == 0 {
		out = append(out, "Images bien optimisées.")
	}
	return out
}

// classifyAlt grades an alt text: missing, poor or good.
func classifyAlt(alt string) string {
	trimmed := strings.TrimSpace(alt)
	if trimmed == "" || strings.ToLower(trimmed) == altSentinel {
		return AltMissing
	}
	if len(trimmed) < 5 {
		return AltPoor
	}
	lower := strings.ToLower(trimmed)
	for _, term := range genericAltTerms {
		if strings.Contains(lower, term) && len(trimmed) < 15 {
			return AltPoor
		}
	}
	return AltGood
}

// isDecorative marks images hidden from assistive tech or carrying an
// intentionally empty alt.
func isDecorative(img ImageRecord) bool {
	trimmed := strings.TrimSpace(img.Alt)
	return img.AriaHidden || trimmed == "" || strings.ToLower(trimmed) == altSentinel
}

// resolveImageURL resolves src against the page URL; malformed URLs
// degrade to empty (no enrichment), never an error.
func resolveImageURL(src string, base *url.URL, haveBase bool) string {
	ref, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}
	if !haveBase {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// imageFormat resolves the format by file extension first, MIME type
// second. MIME wins only when the extension is absent or unknown.
func imageFormat(src string, mimeType *string) string {
	clean := src
	if idx := strings.IndexAny(clean, "?#"); idx >= 0 {
		clean = clean[:idx]
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(clean), "."))
	switch ext {
	case "jpg", "jpeg":
		return "jpeg"
	case "png", "gif", "webp", "avif", "svg", "ico", "bmp":
		return ext
	}
	if mimeType != nil {
		if sub, found := strings.CutPrefix(*mimeType, "image/"); found {
			if sub == "svg+xml" {
				return "svg"
			}
			if sub == "jpg" {
				return "jpeg"
			}
			return sub
		}
	}
	return ""
}
