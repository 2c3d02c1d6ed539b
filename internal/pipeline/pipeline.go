// Package pipeline wires the stages into one batch run: scan the report
// directory, parse and validate each file, aggregate per stock, score, and
// export one CSV pair per report source.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hsuancheng/factset-consensus/internal/consensus"
	"github.com/hsuancheng/factset-consensus/internal/export"
	"github.com/hsuancheng/factset-consensus/internal/mdreport"
	"github.com/hsuancheng/factset-consensus/internal/model"
	"github.com/hsuancheng/factset-consensus/internal/quality"
	"github.com/hsuancheng/factset-consensus/internal/validate"
	"github.com/hsuancheng/factset-consensus/internal/watchlist"
	"github.com/hsuancheng/factset-consensus/internal/window"
	"github.com/hsuancheng/factset-consensus/pkg/config"
	"github.com/hsuancheng/factset-consensus/pkg/logger"
)

// Skip reasons tallied in the run summary. A skipped file is logged once
// under exactly one of these.
const (
	SkipParse      = "parse_error"
	SkipUnlisted   = "unlisted_stock"
	SkipValidation = "failed_validation"
)

// Pipeline runs the full markdown-to-CSV transform. Build one per run
// configuration; Run may be called repeatedly.
type Pipeline struct {
	cfg     *config.Config
	log     *logger.Logger
	parser  *mdreport.Parser
	checker *validate.Checker
	builder *consensus.Builder
	writer  *export.Writer
}

// Summary reports what one run did.
type Summary struct {
	RunID        string
	FilesSeen    int
	FilesParsed  int
	FilesSkipped int
	SkipReasons  map[string]int
	Records      int
	Tiers        map[model.Tier]int
	Outputs      []string
	Duration     time.Duration
}

// New builds a pipeline from configuration. The quality policy file is
// loaded here, once, so a bad policy fails before any file is touched.
func New(cfg *config.Config, log *logger.Logger) (*Pipeline, error) {
	policy := quality.DefaultPolicy()
	if cfg.QualityPolicyPath != "" {
		var err error
		policy, err = quality.LoadPolicy(cfg.QualityPolicyPath)
		if err != nil {
			return nil, fmt.Errorf("load quality policy: %w", err)
		}
	}
	hash, err := policy.Hash()
	if err != nil {
		return nil, fmt.Errorf("hash quality policy: %w", err)
	}

	domain := window.Domain{First: cfg.FirstYear}
	possibleFigures := window.DomainYears*model.FiguresPerYear + 1 // + target price
	scorer := quality.NewScorer(policy, possibleFigures)

	log.WithFields(map[string]interface{}{
		"policy_hash": hash,
		"first_year":  domain.First,
		"last_year":   domain.Last(),
	}).Debug("pipeline configured")

	zl := log.Zerolog()
	return &Pipeline{
		cfg:     cfg,
		log:     log,
		parser:  mdreport.NewParser(zl),
		checker: validate.NewChecker(zl),
		builder: consensus.NewBuilder(domain, scorer, cfg.MDLinkBase, zl),
		writer:  export.NewWriter(cfg.CSVDir, domain, cfg.KeepHistory, zl),
	}, nil
}

// Run executes one batch run. Individual bad files are skipped and logged;
// only empty input, a missing watch list, or an export failure abort the run.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	runID := uuid.New().String()
	log := p.log.WithField("run_id", runID)

	log.WithFields(map[string]interface{}{
		"md_dir":     p.cfg.MDDir,
		"watch_list": p.cfg.WatchlistPath,
		"csv_dir":    p.cfg.CSVDir,
	}).Info("pipeline run starting")

	list, err := watchlist.Load(p.cfg.WatchlistPath)
	if err != nil {
		return nil, err
	}
	log.Infof("watch list loaded: %d stocks", list.Len())

	files, err := ReportFiles(p.cfg.MDDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no markdown reports under %s", p.cfg.MDDir)
	}

	summary := &Summary{
		RunID:       runID,
		FilesSeen:   len(files),
		SkipReasons: make(map[string]int),
		Tiers:       make(map[model.Tier]int),
	}

	reports := make([]*model.Report, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report, skip := p.admit(log, path, list)
		if skip != "" {
			summary.FilesSkipped++
			summary.SkipReasons[skip]++
			continue
		}
		summary.FilesParsed++
		reports = append(reports, report)
	}

	bySource := make(map[string][]*model.Report)
	for _, r := range reports {
		bySource[r.Source] = append(bySource[r.Source], r)
	}
	sources := make([]string, 0, len(bySource))
	for source := range bySource {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	for _, source := range sources {
		records := p.builder.Build(bySource[source], list)
		result, err := p.writer.Write(source, records)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", source, err)
		}
		summary.Records += result.Records
		summary.Outputs = append(summary.Outputs, result.LatestPath)
		if result.HistoryPath != "" {
			summary.Outputs = append(summary.Outputs, result.HistoryPath)
		}
		for _, rec := range records {
			summary.Tiers[rec.Status]++
		}
	}

	summary.Duration = time.Since(start)

	log.WithFields(map[string]interface{}{
		"files_seen":    summary.FilesSeen,
		"files_parsed":  summary.FilesParsed,
		"files_skipped": summary.FilesSkipped,
		"records":       summary.Records,
		"duration":      summary.Duration.String(),
	}).Info("pipeline run finished")

	return summary, nil
}

// admit runs one file through parsing, watch-list screening, and content
// validation. It returns the report, or the skip reason when the file is
// rejected at any gate.
func (p *Pipeline) admit(log *logger.Logger, path string, list *watchlist.List) (*model.Report, string) {
	name := filepath.Base(path)

	report, err := p.parser.ParseFile(path)
	if err != nil {
		log.WithError(err).WithField("file", name).Warn("report skipped: parse failed")
		return nil, SkipParse
	}

	entry, ok := list.Get(report.StockCode)
	if !ok {
		log.WithFields(map[string]interface{}{
			"file":       name,
			"stock_code": report.StockCode,
		}).Warn("report skipped: stock not on watch list")
		return nil, SkipUnlisted
	}
	if report.Company != "" && report.Company != entry.Name {
		log.WithFields(map[string]interface{}{
			"file":       name,
			"stock_code": report.StockCode,
			"report":     report.Company,
			"watch_list": entry.Name,
		}).Debug("company name differs from watch list")
	}

	verdict := p.checker.Check(report.Title, report.Content, report.StockCode, entry.Name)
	if !verdict.Valid {
		log.WithFields(map[string]interface{}{
			"file":       name,
			"stock_code": report.StockCode,
			"layer":      verdict.Layer,
			"reason":     verdict.Reason,
		}).Warn("report skipped: content validation failed")
		return nil, SkipValidation
	}

	return report, ""
}

// ReportFiles lists the markdown report files under dir, sorted by name.
// Subdirectories and non-markdown files are ignored.
func ReportFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan report dir: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
