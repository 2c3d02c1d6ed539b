package model

import "time"

// Figures per estimate year: EPS high/low/avg plus revenue high/low/avg/median.
const (
	EPSFigures     = 3
	RevenueFigures = 4
	FiguresPerYear = EPSFigures + RevenueFigures
)

// Report is one analyst-report markdown file after parsing: frontmatter
// identity plus the consensus figures extracted from the article body.
type Report struct {
	Path   string `json:"path"`
	Source string `json:"source"` // report source from the filename, e.g. "factset"

	// Frontmatter identity
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Company     string  `json:"company"`
	StockCode   string  `json:"stock_code"`
	SearchScore float64 `json:"search_score"` // quality_score recorded by the upstream search stage
	SearchQuery string  `json:"search_query"`

	ContentDate    time.Time `json:"content_date"`    // article publication date (md_date)
	DateConfidence float64   `json:"date_confidence"` // 1.0 when stated in frontmatter
	ExtractedAt    time.Time `json:"extracted_at"`    // when the upstream stage saved the file

	Content string `json:"-"` // raw article body, kept for content validation

	// Figures extracted from the body
	Estimates    []YearEstimate `json:"estimates,omitempty"`
	TargetPrice  *float64       `json:"target_price,omitempty"`
	AnalystCount *int           `json:"analyst_count,omitempty"`
}

// Year returns the report's anchor year, the calendar year of its content date.
func (r *Report) Year() int {
	return r.ContentDate.Year()
}

// EstimateByYear returns the estimate bundle the report states for year, if any.
func (r *Report) EstimateByYear(year int) (YearEstimate, bool) {
	for _, est := range r.Estimates {
		if est.Year == year {
			return est, true
		}
	}
	return YearEstimate{}, false
}

// Ticker derives the market-qualified ticker for a Taiwan-listed stock code.
func Ticker(code string) string {
	return code + "-TW"
}

// EPSEstimate is a per-year EPS consensus bundle (元 per share).
type EPSEstimate struct {
	High *float64 `json:"high,omitempty"`
	Low  *float64 `json:"low,omitempty"`
	Avg  *float64 `json:"avg,omitempty"`
}

// Empty reports whether no EPS figure is populated.
func (e EPSEstimate) Empty() bool {
	return e.High == nil && e.Low == nil && e.Avg == nil
}

// PopulatedFigures returns the number of populated EPS figures.
func (e EPSEstimate) PopulatedFigures() int {
	n := 0
	for _, v := range []*float64{e.High, e.Low, e.Avg} {
		if v != nil {
			n++
		}
	}
	return n
}

// RevenueEstimate is a per-year revenue consensus bundle, normalized to 億 TWD.
type RevenueEstimate struct {
	High   *float64 `json:"high,omitempty"`
	Low    *float64 `json:"low,omitempty"`
	Avg    *float64 `json:"avg,omitempty"`
	Median *float64 `json:"median,omitempty"`
}

// Empty reports whether no revenue figure is populated.
func (e RevenueEstimate) Empty() bool {
	return e.High == nil && e.Low == nil && e.Avg == nil && e.Median == nil
}

// PopulatedFigures returns the number of populated revenue figures.
func (e RevenueEstimate) PopulatedFigures() int {
	n := 0
	for _, v := range []*float64{e.High, e.Low, e.Avg, e.Median} {
		if v != nil {
			n++
		}
	}
	return n
}

// YearEstimate bundles the consensus figures stated for one estimate year.
type YearEstimate struct {
	Year    int             `json:"year"`
	EPS     EPSEstimate     `json:"eps"`
	Revenue RevenueEstimate `json:"revenue"`
}

// Empty reports whether the bundle carries no figures at all.
func (y YearEstimate) Empty() bool {
	return y.EPS.Empty() && y.Revenue.Empty()
}

// PopulatedFigures returns the number of populated figures in the bundle.
func (y YearEstimate) PopulatedFigures() int {
	return y.EPS.PopulatedFigures() + y.Revenue.PopulatedFigures()
}
