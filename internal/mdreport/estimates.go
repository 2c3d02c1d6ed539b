package mdreport

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hsuancheng/factset-consensus/internal/model"
)

type estimateSection int

const (
	sectionNone estimateSection = iota
	sectionEPS
	sectionRevenue
)

// extractEstimates pulls per-year consensus figures from the article body.
// FactSet summary tables are authoritative; prose statements fill what the
// tables leave empty.
func extractEstimates(content string) []model.YearEstimate {
	byYear := make(map[int]*model.YearEstimate)

	parseEstimateTables(content, byYear)
	parseEstimateProse(content, byYear)

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make([]model.YearEstimate, 0, len(years))
	for _, y := range years {
		if est := byYear[y]; !est.Empty() {
			out = append(out, *est)
		}
	}
	return out
}

// parseEstimateTables walks the article line by line tracking which estimate
// section a markdown table belongs to. FactSet rows look like
// | 2025 | 15.07 | 11.63 | 13.50 | 13.53 | (year, high, low, avg, median).
func parseEstimateTables(content string, byYear map[int]*model.YearEstimate) {
	section := sectionNone
	unit := 1.0

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if !strings.HasPrefix(trimmed, "|") {
			switch {
			case strings.Contains(trimmed, "EPS"):
				section = sectionEPS
			case strings.Contains(trimmed, "營收"):
				section = sectionRevenue
				unit = revenueUnit(trimmed)
			}
			continue
		}
		if section == sectionNone {
			continue
		}

		cells := splitTableRow(trimmed)
		if len(cells) < 2 {
			continue
		}
		year, ok := parseTableYear(cells[0])
		if !ok {
			continue
		}

		figures := make([]*float64, 0, len(cells)-1)
		for _, cell := range cells[1:] {
			if v, ok := parseNumber(cell); ok {
				value := v
				figures = append(figures, &value)
			} else {
				figures = append(figures, nil)
			}
		}

		est := ensureYear(byYear, year)
		switch section {
		case sectionEPS:
			applyEPSRow(&est.EPS, figures)
		case sectionRevenue:
			applyRevenueRow(&est.Revenue, figures, unit)
		}
	}
}

func applyEPSRow(eps *model.EPSEstimate, figures []*float64) {
	if len(figures) > 0 && figures[0] != nil {
		eps.High = figures[0]
	}
	if len(figures) > 1 && figures[1] != nil {
		eps.Low = figures[1]
	}
	if len(figures) > 2 && figures[2] != nil {
		eps.Avg = figures[2]
	}
	// Fourth column is the median; stand in for a missing average.
	if eps.Avg == nil && len(figures) > 3 && figures[3] != nil {
		eps.Avg = figures[3]
	}
}

func applyRevenueRow(rev *model.RevenueEstimate, figures []*float64, unit float64) {
	scale := func(src *float64) *float64 {
		if src == nil {
			return nil
		}
		v := *src * unit
		return &v
	}
	if len(figures) > 0 && figures[0] != nil {
		rev.High = scale(figures[0])
	}
	if len(figures) > 1 && figures[1] != nil {
		rev.Low = scale(figures[1])
	}
	if len(figures) > 2 && figures[2] != nil {
		rev.Avg = scale(figures[2])
	}
	if len(figures) > 3 && figures[3] != nil {
		rev.Median = scale(figures[3])
	}
}

// Prose statements, e.g.
// 2025年EPS預估：中位數由13.63元下修至13.53元，其中最高估值15.07元，最低估值11.63元
var (
	prosePattern       = regexp.MustCompile(`(20\d{2})年(?:度)?\s*(EPS|營收)預估[^\n。]*`)
	proseHighPattern   = regexp.MustCompile(`最高(?:估值|值)?(?:為|是|:|：)?\s*([\d,.]+)\s*(兆|億|百萬)?元`)
	proseLowPattern    = regexp.MustCompile(`最低(?:估值|值)?(?:為|是|:|：)?\s*([\d,.]+)\s*(兆|億|百萬)?元`)
	proseAvgPattern    = regexp.MustCompile(`平均(?:值|數)?(?:為|是|:|：)?\s*([\d,.]+)\s*(兆|億|百萬)?元`)
	proseMedianPattern = regexp.MustCompile(`中位數(?:由\s*[\d,.]+\s*(?:兆|億|百萬)?元[^至\n]{0,6}至|為|是|:|：)?\s*([\d,.]+)\s*(兆|億|百萬)?元`)
)

func parseEstimateProse(content string, byYear map[int]*model.YearEstimate) {
	for _, m := range prosePattern.FindAllStringSubmatch(content, -1) {
		year, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		chunk := m[0]
		est := ensureYear(byYear, year)

		switch m[2] {
		case "EPS":
			if est.EPS.High == nil {
				est.EPS.High = proseFigure(chunk, proseHighPattern, false)
			}
			if est.EPS.Low == nil {
				est.EPS.Low = proseFigure(chunk, proseLowPattern, false)
			}
			if est.EPS.Avg == nil {
				est.EPS.Avg = proseFigure(chunk, proseAvgPattern, false)
			}
			// Prose headlines the median revision; use it when no average
			// is stated anywhere.
			if est.EPS.Avg == nil {
				est.EPS.Avg = proseFigure(chunk, proseMedianPattern, false)
			}
		case "營收":
			if est.Revenue.High == nil {
				est.Revenue.High = proseFigure(chunk, proseHighPattern, true)
			}
			if est.Revenue.Low == nil {
				est.Revenue.Low = proseFigure(chunk, proseLowPattern, true)
			}
			if est.Revenue.Avg == nil {
				est.Revenue.Avg = proseFigure(chunk, proseAvgPattern, true)
			}
			if est.Revenue.Median == nil {
				est.Revenue.Median = proseFigure(chunk, proseMedianPattern, true)
			}
		}
	}
}

// proseFigure extracts one figure from a prose chunk. Revenue figures are
// normalized to 億 via their stated unit.
func proseFigure(chunk string, re *regexp.Regexp, revenue bool) *float64 {
	m := re.FindStringSubmatch(chunk)
	if m == nil {
		return nil
	}
	v, ok := parseNumber(m[1])
	if !ok {
		return nil
	}
	if revenue {
		v *= revenueUnit(m[2])
	}
	return &v
}

// ensureYear returns the bundle for year, creating it on first use.
func ensureYear(byYear map[int]*model.YearEstimate, year int) *model.YearEstimate {
	if est, ok := byYear[year]; ok {
		return est
	}
	est := &model.YearEstimate{Year: year}
	byYear[year] = est
	return est
}

// revenueUnit maps a stated unit to the 億 TWD multiplier. 億 is the FactSet
// default when no unit appears.
func revenueUnit(s string) float64 {
	switch {
	case strings.Contains(s, "兆"):
		return 10000
	case strings.Contains(s, "百萬"):
		return 0.01
	default:
		return 1
	}
}

var targetPricePattern = regexp.MustCompile(`(?:預估)?目標價(?:為|是|至|:|：)?\s*([\d,.]+)\s*元`)

func extractTargetPrice(content string) *float64 {
	m := targetPricePattern.FindStringSubmatch(content)
	if m == nil {
		return nil
	}
	if v, ok := parseNumber(m[1]); ok && v > 0 {
		return &v
	}
	return nil
}

var analystCountPattern = regexp.MustCompile(`共?\s*(\d+)\s*[位名]分析師`)

func extractAnalystCount(content string) *int {
	m := analystCountPattern.FindStringSubmatch(content)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

var yearCellPattern = regexp.MustCompile(`^(20\d{2})`)

// parseTableYear reads the leading year from a table cell, tolerating
// suffixes like 2025年, 2025E or 2025(F).
func parseTableYear(cell string) (int, bool) {
	m := yearCellPattern.FindStringSubmatch(cell)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}

func splitTableRow(line string) []string {
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}

// parseNumber parses a figure cell, stripping thousands separators and a
// trailing 元.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "元")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "-" || strings.EqualFold(s, "n/a") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
