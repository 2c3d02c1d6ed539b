// Package export renders consensus records as the CSV files downstream
// sheets consume.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/hsuancheng/factset-consensus/internal/model"
	"github.com/hsuancheng/factset-consensus/internal/window"
)

// utf8BOM keeps Excel from mangling the Chinese headers and company names.
const utf8BOM = "\uFEFF"

// historyStamp is the timestamp layout in history file names.
const historyStamp = "20060102_150405"

// Result reports where one source's export landed.
type Result struct {
	Source      string
	LatestPath  string
	HistoryPath string // empty when history is disabled
	Records     int
}

// Writer renders consensus CSV files into an output directory.
type Writer struct {
	dir         string
	domain      window.Domain
	keepHistory bool
	log         zerolog.Logger
	now         func() time.Time
}

// NewWriter creates a writer. When keepHistory is set, every Write also
// leaves a timestamped copy next to the latest file.
func NewWriter(dir string, domain window.Domain, keepHistory bool, log zerolog.Logger) *Writer {
	return &Writer{
		dir:         dir,
		domain:      domain,
		keepHistory: keepHistory,
		log:         log.With().Str("component", "export.writer").Logger(),
		now:         time.Now,
	}
}

// Write renders records for one report source. The latest file is always
// overwritten; the history copy shares the exact same bytes. Identical
// records (and a fixed clock) reproduce byte-identical files.
func (w *Writer) Write(source string, records []model.ConsensusRecord) (*Result, error) {
	sorted := make([]model.ConsensusRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StockCode < sorted[j].StockCode
	})

	var buf bytes.Buffer
	buf.WriteString(utf8BOM)

	cw := csv.NewWriter(&buf)
	cw.UseCRLF = true
	if err := cw.Write(Headers(w.domain)); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i := range sorted {
		if err := cw.Write(row(&sorted[i], w.domain)); err != nil {
			return nil, fmt.Errorf("write record %s: %w", sorted[i].StockCode, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	result := &Result{
		Source:     source,
		LatestPath: LatestPath(w.dir, source),
		Records:    len(sorted),
	}
	if err := os.WriteFile(result.LatestPath, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", result.LatestPath, err)
	}

	if w.keepHistory {
		name := fmt.Sprintf("%s_consensus_%s.csv", source, w.now().Format(historyStamp))
		result.HistoryPath = filepath.Join(w.dir, name)
		if err := os.WriteFile(result.HistoryPath, buf.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", result.HistoryPath, err)
		}
	}

	w.log.Info().
		Str("source", source).
		Int("records", result.Records).
		Str("latest", result.LatestPath).
		Str("history", result.HistoryPath).
		Msg("consensus exported")

	return result, nil
}

// LatestPath returns the canonical latest-file path for a source.
func LatestPath(dir, source string) string {
	return filepath.Join(dir, source+"_consensus_latest.csv")
}

// Headers returns the fixed column layout for a domain. Estimate columns are
// named after their calendar year; the revenue unit is 億 TWD.
func Headers(domain window.Domain) []string {
	headers := []string{
		"代號", "名稱", "股票代號",
		"最舊報告日期", "最新報告日期", "主要報告日期",
		"報告數", "分析師數",
	}
	for _, year := range domain.Years() {
		headers = append(headers,
			fmt.Sprintf("%dEPS最高值", year),
			fmt.Sprintf("%dEPS最低值", year),
			fmt.Sprintf("%dEPS平均值", year),
		)
	}
	for _, year := range domain.Years() {
		headers = append(headers,
			fmt.Sprintf("%d營收最高值(億元)", year),
			fmt.Sprintf("%d營收最低值(億元)", year),
			fmt.Sprintf("%d營收平均值(億元)", year),
			fmt.Sprintf("%d營收中位數(億元)", year),
		)
	}
	return append(headers,
		"目標價", "品質評分", "狀態", "MD連結", "搜尋時間", "處理時間",
	)
}

func row(rec *model.ConsensusRecord, domain window.Domain) []string {
	fields := make([]string, 0, 8+window.DomainYears*model.FiguresPerYear+6)
	fields = append(fields,
		rec.StockCode,
		rec.Name,
		rec.Ticker,
		formatDate(rec.OldestReportDate),
		formatDate(rec.NewestReportDate),
		formatDate(rec.PrimaryReportDate),
		strconv.Itoa(rec.ReportCount),
		formatIntPtr(rec.AnalystCount),
	)
	for _, year := range domain.Years() {
		est := rec.Years[year]
		fields = append(fields,
			formatFloatPtr(est.EPS.High),
			formatFloatPtr(est.EPS.Low),
			formatFloatPtr(est.EPS.Avg),
		)
	}
	for _, year := range domain.Years() {
		est := rec.Years[year]
		fields = append(fields,
			formatFloatPtr(est.Revenue.High),
			formatFloatPtr(est.Revenue.Low),
			formatFloatPtr(est.Revenue.Avg),
			formatFloatPtr(est.Revenue.Median),
		)
	}
	return append(fields,
		formatFloatPtr(rec.TargetPrice),
		strconv.FormatFloat(rec.QualityScore, 'f', 1, 64),
		string(rec.Status),
		rec.MDLink,
		formatDateTime(rec.SearchedAt),
		formatDateTime(rec.ProcessedAt),
	)
}

// Absent values render as empty cells, never as zeros.

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
