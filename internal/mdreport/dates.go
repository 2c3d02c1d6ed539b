package mdreport

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Publication dates outside this range are treated as noise (stock codes,
// prices, page numbers).
const (
	minContentYear = 2020
	maxContentYear = 2030
)

// datePattern is one recognized publication-date form. Higher priority wins
// when multiple forms appear in the same article. impliedYear patterns carry
// month/day only and assume the current year.
type datePattern struct {
	re          *regexp.Regexp
	priority    float64
	impliedYear bool
}

var contentDatePatterns = []datePattern{
	// 鉅亨網新聞中心 byline, the most reliable marker in cnyes articles.
	{regexp.MustCompile(`鉅亨網?新聞中心[^\d]{0,20}(\d{4})[-/年](\d{1,2})[-/月](\d{1,2})`), 6, false},
	{regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`), 6, false},
	{regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`), 6, false},
	{regexp.MustCompile(`(\d{4})/(\d{1,2})/(\d{1,2})`), 6, false},
	{regexp.MustCompile(`(\d{4})\.(\d{1,2})\.(\d{1,2})`), 5.5, false},
	{regexp.MustCompile(`發[布表](?:日期|時間)?\s*[:：]?\s*(\d{4})[-/年.](\d{1,2})[-/月.](\d{1,2})`), 5, false},
	{regexp.MustCompile(`更新(?:日期|時間)?\s*[:：]?\s*(\d{4})[-/年.](\d{1,2})[-/月.](\d{1,2})`), 4, false},
	// Bare month/day, current year assumed. Last resort.
	{regexp.MustCompile(`(?:^|[^\d./])(\d{1,2})/(\d{1,2})(?:[^\d./]|$)`), 2, true},
}

// maxRawDateScore is the ceiling of the raw confidence sum: base 5.0 +
// priority 6.0 + position 2.0 + recency 1.5 + source 1.5.
const maxRawDateScore = 16.0

// extractContentDate finds the publication date of an article body. Structured
// meta tags and JSON-LD are authoritative; free-text date patterns are scored
// by pattern priority, position in the article, recency and source markers.
// The returned confidence is normalized to [0, 1].
func extractContentDate(content string, now time.Time) (time.Time, float64, bool) {
	if t, ok := metaContentDate(content); ok {
		return t, 1.0, true
	}

	var sourceBonus float64
	if strings.Contains(content, "cnyes.com") {
		sourceBonus = 1.5
	} else if strings.Contains(content, "鉅亨網") {
		sourceBonus = 1.0
	}

	var (
		best     time.Time
		bestConf float64
		found    bool
	)
	total := len(content)
	for _, p := range contentDatePatterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(content, -1) {
			t, ok := dateFromMatch(content, m, p, now)
			if !ok {
				continue
			}

			raw := 5.0 + p.priority
			pos := float64(m[0])
			switch {
			case pos < float64(total)*0.1:
				raw += 2.0
			case pos < float64(total)*0.3:
				raw += 1.0
			}
			switch t.Year() {
			case now.Year():
				raw += 1.5
			case now.Year() - 1:
				raw += 1.0
			}
			raw += sourceBonus

			conf := raw / maxRawDateScore
			if conf > 1 {
				conf = 1
			}
			if !found || conf > bestConf {
				best, bestConf, found = t, conf, true
			}
		}
	}
	return best, bestConf, found
}

// dateFromMatch decodes the capture groups of a pattern match and validates
// the resulting calendar date.
func dateFromMatch(content string, m []int, p datePattern, now time.Time) (time.Time, bool) {
	group := func(i int) (int, bool) {
		lo, hi := m[2*i], m[2*i+1]
		if lo < 0 {
			return 0, false
		}
		n, err := strconv.Atoi(content[lo:hi])
		if err != nil {
			return 0, false
		}
		return n, true
	}

	if p.impliedYear {
		month, ok1 := group(1)
		day, ok2 := group(2)
		if !ok1 || !ok2 {
			return time.Time{}, false
		}
		return validDate(now.Year(), month, day)
	}

	year, ok1 := group(1)
	month, ok2 := group(2)
	day, ok3 := group(3)
	if !ok1 || !ok2 || !ok3 {
		return time.Time{}, false
	}
	return validDate(year, month, day)
}

// validDate rejects out-of-range components and impossible calendar dates
// (2025-02-30 normalizes under time.Date, so the round trip catches it).
func validDate(year, month, day int) (time.Time, bool) {
	if year < minContentYear || year > maxContentYear {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

var metaDateSelectors = []string{
	`meta[property="article:published_time"]`,
	`meta[name="pubdate"]`,
	`meta[name="publishdate"]`,
	`meta[itemprop="datePublished"]`,
}

var jsonLDDatePattern = regexp.MustCompile(`"datePublished"\s*:\s*"([^"]+)"`)

// metaContentDate reads publication dates from HTML remnants in the captured
// article: meta tags first, then JSON-LD.
func metaContentDate(content string) (time.Time, bool) {
	if strings.Contains(content, "<meta") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
		if err == nil {
			for _, sel := range metaDateSelectors {
				val, exists := doc.Find(sel).Attr("content")
				if !exists {
					continue
				}
				if t, ok := parseTimeLoose(val); ok && yearInRange(t.Year()) {
					return t, true
				}
			}
		}
	}
	if m := jsonLDDatePattern.FindStringSubmatch(content); m != nil {
		if t, ok := parseTimeLoose(m[1]); ok && yearInRange(t.Year()) {
			return t, true
		}
	}
	return time.Time{}, false
}

func yearInRange(year int) bool {
	return year >= minContentYear && year <= maxContentYear
}

// Layouts with unpadded month/day also accept zero-padded input.
var looseTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-1-2 15:04:05",
	"2006-1-2",
	"2006/1/2 15:04:05",
	"2006/1/2",
	"2006年1月2日",
	"2006.1.2",
}

// parseTimeLoose parses the date/datetime formats seen in frontmatter values
// and meta tags.
func parseTimeLoose(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range looseTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
