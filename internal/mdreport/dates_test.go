package mdreport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 8, 25, 12, 0, 0, 0, time.UTC)

func TestExtractContentDate_Patterns(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    time.Time
	}{
		{
			name:    "cnyes byline",
			content: "鉅亨網新聞中心 2025-05-20 18:11\n\n內文",
			want:    time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "chinese date",
			content: "本篇發表於2025年5月3日，內容如下。",
			want:    time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "iso date",
			content: "published 2024-12-31 some text",
			want:    time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "slash date",
			content: "更新 2025/08/12 後的內容",
			want:    time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "dotted date",
			content: "2025.06.15 刊出",
			want:    time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "labeled publish date",
			content: "發布日期：2025-07-01",
			want:    time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "bare month day assumes current year",
			content: "(8/12 更新)",
			want:    time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, conf, ok := extractContentDate(tt.content, fixedNow)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.Greater(t, conf, 0.0)
			assert.LessOrEqual(t, conf, 1.0)
		})
	}
}

func TestExtractContentDate_RejectsNoise(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no date at all", "FactSet 調查內容，沒有日期。"},
		{"year out of range low", "2019-05-20 舊聞"},
		{"year out of range high", "2031-05-20 未來"},
		{"impossible month", "2025-13-05"},
		{"impossible day", "2025-02-30"},
		{"stock code is not a date", "台積電(2330-TW)目標價1200元"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok := extractContentDate(tt.content, fixedNow)
			assert.False(t, ok)
		})
	}
}

func TestExtractContentDate_PrefersEarlyHighPriorityMatch(t *testing.T) {
	// The byline near the top outranks a date buried later in the article.
	content := "鉅亨網新聞中心 2025-05-20 18:11\n\n" +
		"很長的內文。很長的內文。很長的內文。很長的內文。很長的內文。很長的內文。\n" +
		"很長的內文。很長的內文。很長的內文。很長的內文。很長的內文。很長的內文。\n" +
		"文末提到 2024/01/05 的舊資料。\n"

	got, conf, ok := extractContentDate(content, fixedNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), got)
	assert.Greater(t, conf, 0.5)
}

func TestMetaContentDate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    time.Time
	}{
		{
			name:    "article published_time",
			content: `<meta property="article:published_time" content="2025-05-20T18:11:00+08:00">`,
			want:    time.Date(2025, 5, 20, 18, 11, 0, 0, time.FixedZone("", 8*3600)),
		},
		{
			name:    "pubdate",
			content: `<meta name="pubdate" content="2025-05-20">`,
			want:    time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "json-ld",
			content: `{"@type":"NewsArticle","datePublished":"2025-05-20T18:11:00"}`,
			want:    time.Date(2025, 5, 20, 18, 11, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := metaContentDate(tt.content)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestMetaContentDate_WinsWithFullConfidence(t *testing.T) {
	content := `<meta property="article:published_time" content="2025-05-20T18:11:00+08:00">` +
		"\n\n鉅亨網新聞中心 2025-05-19 09:00\n"

	got, conf, ok := extractContentDate(content, fixedNow)
	require.True(t, ok)
	assert.Equal(t, 2025, got.Year())
	assert.Equal(t, time.May, got.Month())
	assert.Equal(t, 20, got.Day())
	assert.Equal(t, 1.0, conf)
}

func TestMetaContentDate_RejectsOutOfRange(t *testing.T) {
	content := `<meta name="pubdate" content="2035-05-20">`
	_, ok := metaContentDate(content)
	assert.False(t, ok)
}

func TestParseTimeLoose(t *testing.T) {
	tests := []struct {
		input  string
		want   time.Time
		wantOK bool
	}{
		{"2025/05/20", time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), true},
		{"2025/5/3", time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC), true},
		{"2025-05-21 09:15:00", time.Date(2025, 5, 21, 9, 15, 0, 0, time.UTC), true},
		{"2025-05-20T18:11:00", time.Date(2025, 5, 20, 18, 11, 0, 0, time.UTC), true},
		{"2025年5月20日", time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), true},
		{"2025.05.20", time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"not a date", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseTimeLoose(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestValidDate(t *testing.T) {
	tests := []struct {
		name    string
		y, m, d int
		wantOK  bool
	}{
		{"valid", 2025, 5, 20, true},
		{"leap day", 2024, 2, 29, true},
		{"non leap feb 29", 2025, 2, 29, false},
		{"normalizing day", 2025, 2, 30, false},
		{"month 13", 2025, 13, 1, false},
		{"day zero", 2025, 5, 0, false},
		{"year below range", 2019, 5, 20, false},
		{"year above range", 2031, 5, 20, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := validDate(tt.y, tt.m, tt.d)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}
