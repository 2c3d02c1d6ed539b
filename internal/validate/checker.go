// Package validate decides whether stored article content is genuinely about
// a given stock. Checks run in layers from cheapest to weakest evidence;
// the first decisive layer wins.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// Layer names carried on verdicts.
const (
	LayerTitle     = "title_check"
	LayerCombined  = "combined_pattern"
	LayerProximity = "proximity_check"
	LayerPrice     = "price_detection"
	LayerFallback  = "fallback"
)

const (
	// DefaultThreshold is the minimum fallback confidence to accept content.
	DefaultThreshold = 0.7
	// proximityMaxDistance is the rune window of the proximity layer.
	proximityMaxDistance = 200
)

// Verdict is the outcome of validating one report's content.
type Verdict struct {
	Valid         bool    `json:"valid"`
	Layer         string  `json:"layer"`
	Reason        string  `json:"reason"`
	Confidence    float64 `json:"confidence"`
	SymbolFound   bool    `json:"symbol_found"`
	NameFound     bool    `json:"name_found"`
	FalsePositive bool    `json:"false_positive"`
}

// Checker validates article content against an expected stock identity.
type Checker struct {
	threshold float64
	log       zerolog.Logger
}

// NewChecker creates a checker with the default confidence threshold.
func NewChecker(log zerolog.Logger) *Checker {
	return &Checker{
		threshold: DefaultThreshold,
		log:       log.With().Str("component", "validate.checker").Logger(),
	}
}

// Check validates that content is about the stock identified by symbol and
// name. title is checked first when available (frontmatter title, or a
// <title>/og:title remnant inside the content).
func (c *Checker) Check(title, content, symbol, name string) Verdict {
	verdict := c.check(title, content, symbol, name)

	c.log.Debug().
		Str("stock_code", symbol).
		Str("layer", verdict.Layer).
		Bool("valid", verdict.Valid).
		Float64("confidence", verdict.Confidence).
		Str("reason", verdict.Reason).
		Msg("content validated")

	return verdict
}

func (c *Checker) check(title, content, symbol, name string) Verdict {
	// Layer 1: title evidence decides fast in both directions.
	if title == "" {
		title = extractTitle(content)
	}
	if v, decided := checkTitle(title, symbol); decided {
		return v
	}

	// Layer 2: symbol and name together in a recognized form.
	if v, decided := checkCombined(content, symbol, name); decided {
		return v
	}

	runes := []rune(content)
	mentions, prices := symbolPositions(runes, []rune(symbol))

	// A symbol that only ever appears as a price is another stock's article
	// quoting a coincidental amount.
	if len(mentions) == 0 && len(prices) > 0 {
		return Verdict{
			Valid:         false,
			Layer:         LayerPrice,
			Reason:        "symbol appears only as a price amount",
			FalsePositive: true,
			NameFound:     nameFound(content, name),
		}
	}

	// Layer 3: symbol and name close together.
	if v, decided := checkProximity(runes, mentions, name); decided {
		return v
	}

	// Layer 4: weighted fallback evidence.
	return c.checkFallback(content, symbol, name, len(mentions) > 0)
}

// checkTitle accepts when the title states the expected (NNNN-TW) code and
// rejects when it states a different one.
func checkTitle(title, symbol string) (Verdict, bool) {
	if title == "" {
		return Verdict{}, false
	}
	codes := titleCodePattern.FindAllStringSubmatch(title, -1)
	if len(codes) == 0 {
		return Verdict{}, false
	}
	for _, m := range codes {
		if m[1] == symbol {
			return Verdict{
				Valid:       true,
				Layer:       LayerTitle,
				Reason:      "title states the stock",
				Confidence:  1.5,
				SymbolFound: true,
			}, true
		}
	}
	return Verdict{
		Valid:  false,
		Layer:  LayerTitle,
		Reason: fmt.Sprintf("title names a different stock (%s)", codes[0][1]),
	}, true
}

var titleCodePattern = regexp.MustCompile(`[（(](\d{4})[-.]TW[)）]`)

// checkCombined looks for the symbol and name joined in one of the common
// article forms, e.g. 台積電(2330-TW) or 代號：2330 台積電.
func checkCombined(content, symbol, name string) (Verdict, bool) {
	for _, re := range combinedPatterns(symbol, name) {
		if re.MatchString(content) {
			return Verdict{
				Valid:       true,
				Layer:       LayerCombined,
				Reason:      "symbol and name in combined form",
				Confidence:  1.2,
				SymbolFound: true,
				NameFound:   true,
			}, true
		}
	}
	return Verdict{}, false
}

func combinedPatterns(symbol, name string) []*regexp.Regexp {
	if name == "" {
		return nil
	}
	qs := regexp.QuoteMeta(symbol)
	qn := regexp.QuoteMeta(name)
	return []*regexp.Regexp{
		regexp.MustCompile(qn + `\s*[（(]` + qs + `[-.]TW[)）]`),
		regexp.MustCompile(`[（(]` + qs + `[-.]TW[)）]\s*` + qn),
		regexp.MustCompile(qn + `\s*[（(]` + qs + `[)）]`),
		regexp.MustCompile(qn + `\s*` + qs + `(?:\D|$)`),
		regexp.MustCompile(`代號\s*[:：]?\s*` + qs + `[^\n]{0,30}` + qn),
	}
}

// checkProximity accepts when a genuine symbol mention and the company name
// sit within proximityMaxDistance runes of each other.
func checkProximity(runes []rune, mentions []int, name string) (Verdict, bool) {
	if len(mentions) == 0 || name == "" {
		return Verdict{}, false
	}
	namePos := findAllRunes(runes, []rune(name))
	if len(namePos) == 0 {
		return Verdict{}, false
	}

	best := -1
	for _, sp := range mentions {
		for _, np := range namePos {
			d := sp - np
			if d < 0 {
				d = -d
			}
			if best < 0 || d < best {
				best = d
			}
		}
	}
	if best > proximityMaxDistance {
		return Verdict{}, false
	}

	return Verdict{
		Valid:       true,
		Layer:       LayerProximity,
		Reason:      fmt.Sprintf("symbol and name within %d characters", best),
		Confidence:  1.0 - 0.2*float64(best)/float64(proximityMaxDistance),
		SymbolFound: true,
		NameFound:   true,
	}, true
}

// checkFallback scores the remaining weak evidence: a symbol in a recognized
// context counts 0.5, a bare mention 0.2, the company name 0.3.
func (c *Checker) checkFallback(content, symbol, name string, bareMention bool) Verdict {
	confidence := 0.0

	inContext := symbolContextPattern(symbol).MatchString(content)
	switch {
	case inContext:
		confidence += 0.5
	case bareMention:
		confidence += 0.2
	}

	hasName := nameFound(content, name)
	if hasName {
		confidence += 0.3
	}

	v := Verdict{
		Layer:       LayerFallback,
		Confidence:  confidence,
		SymbolFound: inContext || bareMention,
		NameFound:   hasName,
	}
	if confidence >= c.threshold {
		v.Valid = true
		v.Reason = "fallback evidence above threshold"
	} else {
		v.Reason = fmt.Sprintf("insufficient evidence (%.1f < %.1f)", confidence, c.threshold)
	}
	return v
}

// symbolContextPattern matches the symbol in a form that names a stock:
// 2330-TW, 2330.TW, (2330), 代號2330.
func symbolContextPattern(symbol string) *regexp.Regexp {
	qs := regexp.QuoteMeta(symbol)
	return regexp.MustCompile(qs + `[-.]TW|[（(]` + qs + `[)）]|(?:股票)?代號\s*[:：]?\s*` + qs)
}

// symbolPositions scans for symbol occurrences, splitting genuine mentions
// from price contexts (the symbol immediately followed by 元, e.g.
// 目標價為2330元). Occurrences embedded in longer numbers are ignored.
func symbolPositions(runes, symbol []rune) (mentions, prices []int) {
	if len(symbol) == 0 {
		return nil, nil
	}
	for i := 0; i+len(symbol) <= len(runes); i++ {
		if !runesEqual(runes[i:i+len(symbol)], symbol) {
			continue
		}
		if i > 0 && isDigit(runes[i-1]) {
			continue
		}
		end := i + len(symbol)
		if end < len(runes) && isDigit(runes[end]) {
			continue
		}
		if end < len(runes) && runes[end] == '元' {
			prices = append(prices, i)
			continue
		}
		mentions = append(mentions, i)
	}
	return mentions, prices
}

// nameFound reports whether the company name appears in the content, either
// verbatim or by at least half of its space-separated words.
func nameFound(content, name string) bool {
	if name == "" {
		return false
	}
	if strings.Contains(content, name) {
		return true
	}
	words := strings.Fields(name)
	if len(words) < 2 {
		return false
	}
	required := len(words) / 2
	if required < 1 {
		required = 1
	}
	matched := 0
	for _, w := range words {
		if strings.Contains(content, w) {
			matched++
		}
	}
	return matched >= required
}

// extractTitle pulls a title out of HTML remnants in the content.
func extractTitle(content string) string {
	if !strings.Contains(content, "<title") && !strings.Contains(content, "og:title") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if v, exists := doc.Find(`meta[property="og:title"]`).Attr("content"); exists {
		return strings.TrimSpace(v)
	}
	return ""
}

func findAllRunes(haystack, needle []rune) []int {
	if len(needle) == 0 {
		return nil
	}
	var positions []int
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if runesEqual(haystack[i:i+len(needle)], needle) {
			positions = append(positions, i)
		}
	}
	return positions
}

func runesEqual(a, b []rune) bool {
	for i := range b {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
