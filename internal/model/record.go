package model

import (
	"sort"
	"time"
)

// ConsensusRecord is one export row: the consensus view of a single stock,
// built once per pipeline run and immutable afterwards.
type ConsensusRecord struct {
	StockCode string `json:"stock_code"`
	Name      string `json:"name"`
	Ticker    string `json:"ticker"`

	OldestReportDate  time.Time `json:"oldest_report_date"`
	NewestReportDate  time.Time `json:"newest_report_date"`
	PrimaryReportDate time.Time `json:"primary_report_date"`
	ReportCount       int       `json:"report_count"`
	AnalystCount      *int      `json:"analyst_count,omitempty"`

	// Estimate bundles keyed by calendar year, already clipped to the export domain.
	Years map[int]YearEstimate `json:"years,omitempty"`

	TargetPrice  *float64 `json:"target_price,omitempty"`
	QualityScore float64  `json:"quality_score"`
	Status       Tier     `json:"status"`

	MDLink      string    `json:"md_link"`
	SearchedAt  time.Time `json:"searched_at"`
	ProcessedAt time.Time `json:"processed_at"`
}

// AnchorYear returns the calendar year of the primary report date.
// Populated estimate years form a contiguous run starting here.
func (r *ConsensusRecord) AnchorYear() int {
	return r.PrimaryReportDate.Year()
}

// PopulatedFigures counts every populated estimate figure plus the target
// price. Quality scoring uses it as the completeness numerator.
func (r *ConsensusRecord) PopulatedFigures() int {
	n := 0
	for _, est := range r.Years {
		n += est.PopulatedFigures()
	}
	if r.TargetPrice != nil {
		n++
	}
	return n
}

// EstimateYears returns the populated calendar years in ascending order.
func (r *ConsensusRecord) EstimateYears() []int {
	years := make([]int, 0, len(r.Years))
	for year, est := range r.Years {
		if !est.Empty() {
			years = append(years, year)
		}
	}
	sort.Ints(years)
	return years
}
