package mdreport

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `---
url: https://news.cnyes.com/news/id/5980123
title: 鉅亨速報 - Factset 最新調查：台積電(2330-TW)EPS預估上修至59.96元，預估目標價為1235元
quality_score: 9.2
company: 台積電
stock_code: 2330
md_date: 2025/05/20
extracted_date: 2025-05-21 09:15:00
search_query: 2330 台積電 factset EPS 預估
content_validation: passed
version: v3.6.0
---

鉅亨網新聞中心 2025-05-20 18:11

根據FactSet最新調查，共22位分析師，對台積電(2330-TW)做出2025年EPS預估：中位數由59.50元上修至59.96元，其中最高估值64.00元，最低估值55.20元，預估目標價為1235元。

### EPS預估

| 年度 | 最高值 | 最低值 | 平均值 | 中位數 |
|------|--------|--------|--------|--------|
| 2025 | 64.00 | 55.20 | 59.80 | 59.96 |
| 2026 | 75.50 | 61.10 | 68.30 | 68.00 |
| 2027 | 88.00 | 70.00 | 79.10 | 78.50 |

### 營收預估(億元)

| 年度 | 最高值 | 最低值 | 平均值 | 中位數 |
|------|--------|--------|--------|--------|
| 2025 | 38,500 | 35,200 | 36,900 | 37,000 |
| 2026 | 45,800 | 40,100 | 43,200 | 43,500 |
`

func newTestParser() *Parser {
	return NewParser(zerolog.Nop())
}

func TestParse_FullReport(t *testing.T) {
	p := newTestParser()

	report, err := p.Parse("data/md/2330_台積電_factset_a1b2c3d4.md", []byte(sampleReport))
	require.NoError(t, err)

	assert.Equal(t, "2330", report.StockCode)
	assert.Equal(t, "台積電", report.Company)
	assert.Equal(t, "factset", report.Source)
	assert.Equal(t, "https://news.cnyes.com/news/id/5980123", report.URL)
	assert.InDelta(t, 9.2, report.SearchScore, 1e-9)
	assert.Equal(t, "2330 台積電 factset EPS 預估", report.SearchQuery)

	assert.Equal(t, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), report.ContentDate)
	assert.Equal(t, 1.0, report.DateConfidence)
	assert.Equal(t, time.Date(2025, 5, 21, 9, 15, 0, 0, time.UTC), report.ExtractedAt)
	assert.Equal(t, 2025, report.Year())

	require.Len(t, report.Estimates, 3)

	est2025, ok := report.EstimateByYear(2025)
	require.True(t, ok)
	require.NotNil(t, est2025.EPS.High)
	assert.InDelta(t, 64.00, *est2025.EPS.High, 1e-9)
	require.NotNil(t, est2025.EPS.Low)
	assert.InDelta(t, 55.20, *est2025.EPS.Low, 1e-9)
	require.NotNil(t, est2025.EPS.Avg)
	assert.InDelta(t, 59.80, *est2025.EPS.Avg, 1e-9)
	require.NotNil(t, est2025.Revenue.High)
	assert.InDelta(t, 38500, *est2025.Revenue.High, 1e-9)
	require.NotNil(t, est2025.Revenue.Median)
	assert.InDelta(t, 37000, *est2025.Revenue.Median, 1e-9)

	est2027, ok := report.EstimateByYear(2027)
	require.True(t, ok)
	assert.False(t, est2027.EPS.Empty())
	assert.True(t, est2027.Revenue.Empty())

	require.NotNil(t, report.TargetPrice)
	assert.InDelta(t, 1235, *report.TargetPrice, 1e-9)
	require.NotNil(t, report.AnalystCount)
	assert.Equal(t, 22, *report.AnalystCount)
}

func TestParse_NoFrontmatterFallsBackToFilename(t *testing.T) {
	p := newTestParser()
	content := `鉅亨網新聞中心 2025-05-20 18:11

根據FactSet最新調查，對聯發科(2454-TW)做出2026年EPS預估：中位數為88.10元。
`

	report, err := p.Parse("2454_聯發科_factset_deadbeef.md", []byte(content))
	require.NoError(t, err)

	assert.Equal(t, "2454", report.StockCode)
	assert.Equal(t, "聯發科", report.Company)
	assert.Equal(t, "factset", report.Source)
	assert.Equal(t, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), report.ContentDate)
	assert.Greater(t, report.DateConfidence, 0.0)
	assert.Less(t, report.DateConfidence, 1.0)

	est, ok := report.EstimateByYear(2026)
	require.True(t, ok)
	require.NotNil(t, est.EPS.Avg)
	assert.InDelta(t, 88.10, *est.EPS.Avg, 1e-9)
}

func TestParse_FrontmatterIdentityWinsOverFilename(t *testing.T) {
	p := newTestParser()
	content := `---
stock_code: 2317
company: 鴻海
md_date: 2025/06/01
---

body
`

	report, err := p.Parse("9999_別家_factset_cafebabe.md", []byte(content))
	require.NoError(t, err)
	assert.Equal(t, "2317", report.StockCode)
	assert.Equal(t, "鴻海", report.Company)
}

func TestParse_MissingStockCode(t *testing.T) {
	p := newTestParser()
	content := `---
title: 無代號報告
md_date: 2025/06/01
---

body
`

	_, err := p.Parse("report.md", []byte(content))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingStockCode))
}

func TestParse_MissingDate(t *testing.T) {
	p := newTestParser()
	content := `---
stock_code: 2330
company: 台積電
---

內文沒有任何日期。
`

	_, err := p.Parse("2330_台積電_factset_a1b2c3d4.md", []byte(content))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingDate))
}

func TestParse_BadFrontmatterYAML(t *testing.T) {
	p := newTestParser()
	content := "---\nstock_code: [unclosed\n---\n\nbody\n"

	_, err := p.Parse("2330_台積電_factset_a1b2c3d4.md", []byte(content))
	require.Error(t, err)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2330_台積電_factset_a1b2c3d4.md")
	require.NoError(t, os.WriteFile(path, []byte(sampleReport), 0o644))

	p := newTestParser()
	report, err := p.ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2330", report.StockCode)
	assert.Equal(t, path, report.Path)
}

func TestParseFile_Missing(t *testing.T) {
	p := newTestParser()
	_, err := p.ParseFile(filepath.Join(t.TempDir(), "absent.md"))
	require.Error(t, err)
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		want   fileIdentity
		wantOK bool
	}{
		{
			name:   "standard",
			path:   "data/md/2330_台積電_factset_a1b2c3d4.md",
			want:   fileIdentity{Code: "2330", Company: "台積電", Source: "factset", Hash: "a1b2c3d4"},
			wantOK: true,
		},
		{
			name:   "company with underscore",
			path:   "2618_長榮_航_factset_12345678.md",
			want:   fileIdentity{Code: "2618", Company: "長榮_航", Source: "factset", Hash: "12345678"},
			wantOK: true,
		},
		{
			name:   "too few segments",
			path:   "2330_factset.md",
			wantOK: false,
		},
		{
			name:   "code not numeric",
			path:   "abcd_台積電_factset_a1b2c3d4.md",
			wantOK: false,
		},
		{
			name:   "code wrong length",
			path:   "23305_台積電_factset_a1b2c3d4.md",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseFilename(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSplitFrontmatter(t *testing.T) {
	meta, body, ok := splitFrontmatter([]byte("---\na: 1\n---\nbody text\n"))
	require.True(t, ok)
	assert.Equal(t, "a: 1\n", string(meta))
	assert.Equal(t, "body text\n", body)

	// CRLF and BOM tolerated.
	meta, body, ok = splitFrontmatter([]byte("\uFEFF---\r\na: 1\r\n---\r\nbody\r\n"))
	require.True(t, ok)
	assert.Equal(t, "a: 1\n", string(meta))
	assert.Equal(t, "body\n", body)

	// No frontmatter fence.
	_, body, ok = splitFrontmatter([]byte("plain text"))
	assert.False(t, ok)
	assert.Equal(t, "plain text", body)

	// Unterminated fence.
	_, _, ok = splitFrontmatter([]byte("---\na: 1\nno closing"))
	assert.False(t, ok)
}
