// Package consensus aggregates validated reports into one record per stock.
//
// FactSet articles are snapshots of the same rolling survey, so reports about
// one stock supersede each other rather than accumulate: for every estimate
// year the newest report stating that year wins outright. Extremes are never
// mixed across snapshots.
package consensus

import (
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hsuancheng/factset-consensus/internal/model"
	"github.com/hsuancheng/factset-consensus/internal/quality"
	"github.com/hsuancheng/factset-consensus/internal/watchlist"
	"github.com/hsuancheng/factset-consensus/internal/window"
)

// Builder turns groups of validated reports into consensus records.
type Builder struct {
	domain   window.Domain
	scorer   *quality.Scorer
	linkBase string
	log      zerolog.Logger
	now      func() time.Time
}

// NewBuilder creates a builder. linkBase, when non-empty, prefixes the
// markdown link column instead of the local report path.
func NewBuilder(domain window.Domain, scorer *quality.Scorer, linkBase string, log zerolog.Logger) *Builder {
	return &Builder{
		domain:   domain,
		scorer:   scorer,
		linkBase: linkBase,
		log:      log.With().Str("component", "consensus.builder").Logger(),
		now:      time.Now,
	}
}

// Build aggregates reports into records, one per stock, sorted by stock code.
// All records of one run share a single processing timestamp. Stocks whose
// reports cannot be aggregated are skipped with a warning.
func (b *Builder) Build(reports []*model.Report, list *watchlist.List) []model.ConsensusRecord {
	processedAt := b.now()

	groups := make(map[string][]*model.Report)
	for _, r := range reports {
		groups[r.StockCode] = append(groups[r.StockCode], r)
	}

	records := make([]model.ConsensusRecord, 0, len(groups))
	for code, group := range groups {
		record, err := b.buildOne(code, group, list, processedAt)
		if err != nil {
			b.log.Warn().
				Err(err).
				Str("stock_code", code).
				Int("reports", len(group)).
				Msg("stock skipped")
			continue
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].StockCode < records[j].StockCode
	})

	b.log.Info().
		Int("stocks", len(groups)).
		Int("records", len(records)).
		Msg("consensus built")

	return records
}

func (b *Builder) buildOne(code string, group []*model.Report, list *watchlist.List, processedAt time.Time) (model.ConsensusRecord, error) {
	// Oldest first; later reports overwrite earlier ones.
	sort.Slice(group, func(i, j int) bool {
		a, z := group[i], group[j]
		if !a.ContentDate.Equal(z.ContentDate) {
			return a.ContentDate.Before(z.ContentDate)
		}
		if !a.ExtractedAt.Equal(z.ExtractedAt) {
			return a.ExtractedAt.Before(z.ExtractedAt)
		}
		return a.Path < z.Path
	})
	primary := group[len(group)-1]
	anchor := primary.Year()

	merged := make(map[int]model.YearEstimate)
	var (
		analystCount *int
		targetPrice  *float64
		searchedAt   time.Time
	)
	for _, r := range group {
		for _, est := range r.Estimates {
			merged[est.Year] = est
		}
		if r.AnalystCount != nil {
			analystCount = r.AnalystCount
		}
		if r.TargetPrice != nil {
			targetPrice = r.TargetPrice
		}
		if r.ExtractedAt.After(searchedAt) {
			searchedAt = r.ExtractedAt
		}
	}

	estimates := make([]model.YearEstimate, 0, len(merged))
	for year, est := range merged {
		if offset := year - anchor; offset < 0 || offset > window.MaxOffset {
			b.log.Debug().
				Str("stock_code", code).
				Int("estimate_year", year).
				Int("anchor", anchor).
				Msg("estimate year outside horizon dropped")
			continue
		}
		estimates = append(estimates, est)
	}

	byYear, err := window.Map(anchor, window.Offsets(anchor, estimates), b.domain)
	if err != nil {
		return model.ConsensusRecord{}, err
	}

	name := primary.Company
	if list != nil {
		if entry, ok := list.Get(code); ok {
			name = entry.Name
		}
	}

	record := model.ConsensusRecord{
		StockCode:         code,
		Name:              name,
		Ticker:            model.Ticker(code),
		OldestReportDate:  group[0].ContentDate,
		NewestReportDate:  primary.ContentDate,
		PrimaryReportDate: primary.ContentDate,
		ReportCount:       len(group),
		AnalystCount:      analystCount,
		Years:             byYear,
		TargetPrice:       targetPrice,
		MDLink:            b.mdLink(primary.Path),
		SearchedAt:        searchedAt,
		ProcessedAt:       processedAt,
	}

	analysts := 0
	if analystCount != nil {
		analysts = *analystCount
	}
	record.QualityScore, record.Status = b.scorer.Score(record.PopulatedFigures(), analysts, record.ReportCount)

	b.log.Debug().
		Str("stock_code", code).
		Int("anchor", anchor).
		Int("estimate_years", len(byYear)).
		Int("reports", record.ReportCount).
		Float64("score", record.QualityScore).
		Str("status", string(record.Status)).
		Msg("record built")

	return record, nil
}

// mdLink renders the markdown link column for a record's primary report.
func (b *Builder) mdLink(reportPath string) string {
	if b.linkBase == "" {
		return reportPath
	}
	return strings.TrimSuffix(b.linkBase, "/") + "/" + filepath.Base(reportPath)
}
