// Package mdreport parses the analyst-report markdown files saved by the
// upstream search stage: YAML frontmatter carries identity, the article body
// carries the publication date and the consensus figures.
package mdreport

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/hsuancheng/factset-consensus/internal/model"
)

// DefaultSource is assumed when the filename does not state a report source.
const DefaultSource = "factset"

var (
	// ErrMissingStockCode marks a report with no stock code in either the
	// frontmatter or the filename.
	ErrMissingStockCode = errors.New("report missing stock code")
	// ErrMissingDate marks a report whose publication date could not be
	// established from frontmatter or content.
	ErrMissingDate = errors.New("report content date not found")
)

// Parser turns report files into model.Report values.
type Parser struct {
	log zerolog.Logger
	now func() time.Time
}

// NewParser creates a parser.
func NewParser(log zerolog.Logger) *Parser {
	return &Parser{
		log: log.With().Str("component", "mdreport.parser").Logger(),
		now: time.Now,
	}
}

// ParseFile reads and parses one report file.
func (p *Parser) ParseFile(path string) (*model.Report, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}
	return p.Parse(path, raw)
}

// Parse decodes a report from its raw bytes. path supplies the filename
// identity fallback and is recorded on the report.
func (p *Parser) Parse(path string, raw []byte) (*model.Report, error) {
	id, idOK := parseFilename(path)

	meta, body, hasMeta := splitFrontmatter(raw)
	fm := &frontmatter{}
	if hasMeta {
		decoded, err := decodeFrontmatter(meta)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		fm = decoded
	} else {
		p.log.Warn().
			Str("file", filepath.Base(path)).
			Msg("no frontmatter, using filename identity")
	}

	report := &model.Report{
		Path:        path,
		Source:      DefaultSource,
		URL:         fm.URL.String(),
		Title:       fm.Title.String(),
		Company:     fm.Company.String(),
		StockCode:   fm.StockCode.String(),
		SearchScore: float64(fm.QualityScore),
		SearchQuery: fm.SearchQuery.String(),
		Content:     body,
	}
	if idOK {
		report.Source = id.Source
		if report.StockCode == "" {
			report.StockCode = id.Code
		}
		if report.Company == "" {
			report.Company = id.Company
		}
	}
	if report.StockCode == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrMissingStockCode)
	}

	// Publication date: frontmatter md_date is authoritative, content
	// extraction is the fallback.
	if t, ok := parseTimeLoose(fm.MDDate.String()); ok {
		report.ContentDate = t
		report.DateConfidence = 1.0
	} else if t, conf, ok := extractContentDate(body, p.now()); ok {
		report.ContentDate = t
		report.DateConfidence = conf
		p.log.Debug().
			Str("file", filepath.Base(path)).
			Str("content_date", t.Format("2006-01-02")).
			Float64("confidence", conf).
			Msg("content date extracted from body")
	} else {
		return nil, fmt.Errorf("%s: %w", path, ErrMissingDate)
	}

	if t, ok := parseTimeLoose(fm.ExtractedDate.String()); ok {
		report.ExtractedAt = t
	}

	report.Estimates = extractEstimates(body)
	report.TargetPrice = extractTargetPrice(body)
	report.AnalystCount = extractAnalystCount(body)

	p.log.Debug().
		Str("stock_code", report.StockCode).
		Str("source", report.Source).
		Int("estimate_years", len(report.Estimates)).
		Msg("report parsed")

	return report, nil
}
