package model

import (
	"testing"
	"time"
)

func fp(v float64) *float64 { return &v }

func TestConsensusRecord_PopulatedFigures(t *testing.T) {
	tests := []struct {
		name   string
		record ConsensusRecord
		want   int
	}{
		{
			name:   "empty record",
			record: ConsensusRecord{},
			want:   0,
		},
		{
			name: "target price only",
			record: ConsensusRecord{
				TargetPrice: fp(201.0),
			},
			want: 1,
		},
		{
			name: "one full year plus target price",
			record: ConsensusRecord{
				Years: map[int]YearEstimate{
					2025: {
						Year:    2025,
						EPS:     EPSEstimate{High: fp(15.07), Low: fp(11.63), Avg: fp(13.50)},
						Revenue: RevenueEstimate{High: fp(7800), Low: fp(7100), Avg: fp(7400), Median: fp(7420)},
					},
				},
				TargetPrice: fp(201.0),
			},
			want: 8,
		},
		{
			name: "partial bundles across two years",
			record: ConsensusRecord{
				Years: map[int]YearEstimate{
					2025: {Year: 2025, EPS: EPSEstimate{Avg: fp(13.53)}},
					2026: {Year: 2026, Revenue: RevenueEstimate{Median: fp(8125)}},
				},
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.PopulatedFigures(); got != tt.want {
				t.Errorf("PopulatedFigures() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConsensusRecord_EstimateYears(t *testing.T) {
	record := ConsensusRecord{
		Years: map[int]YearEstimate{
			2027: {Year: 2027, EPS: EPSEstimate{Avg: fp(16.0)}},
			2025: {Year: 2025, EPS: EPSEstimate{Avg: fp(13.5)}},
			2026: {Year: 2026, EPS: EPSEstimate{Avg: fp(14.8)}},
			2028: {Year: 2028}, // present but empty
		},
	}

	years := record.EstimateYears()
	want := []int{2025, 2026, 2027}
	if len(years) != len(want) {
		t.Fatalf("EstimateYears() = %v, want %v", years, want)
	}
	for i := range want {
		if years[i] != want[i] {
			t.Errorf("EstimateYears()[%d] = %d, want %d", i, years[i], want[i])
		}
	}
}

func TestConsensusRecord_AnchorYear(t *testing.T) {
	record := ConsensusRecord{
		PrimaryReportDate: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
	}
	if got := record.AnchorYear(); got != 2025 {
		t.Errorf("AnchorYear() = %d, want 2025", got)
	}
}

func TestReport_EstimateByYear(t *testing.T) {
	report := Report{
		Estimates: []YearEstimate{
			{Year: 2025, EPS: EPSEstimate{Avg: fp(13.53)}},
			{Year: 2026, EPS: EPSEstimate{Avg: fp(14.81)}},
		},
	}

	est, ok := report.EstimateByYear(2026)
	if !ok {
		t.Fatal("EstimateByYear(2026) not found")
	}
	if est.EPS.Avg == nil || *est.EPS.Avg != 14.81 {
		t.Errorf("EstimateByYear(2026).EPS.Avg = %v, want 14.81", est.EPS.Avg)
	}

	if _, ok := report.EstimateByYear(2028); ok {
		t.Error("EstimateByYear(2028) found, want absent")
	}
}

func TestTicker(t *testing.T) {
	if got := Ticker("2330"); got != "2330-TW" {
		t.Errorf("Ticker(2330) = %q, want 2330-TW", got)
	}
}

func TestYearEstimate_Empty(t *testing.T) {
	if !(YearEstimate{Year: 2025}).Empty() {
		t.Error("bundle with no figures should be empty")
	}
	if (YearEstimate{Year: 2025, Revenue: RevenueEstimate{Median: fp(7420)}}).Empty() {
		t.Error("bundle with a revenue median should not be empty")
	}
}
