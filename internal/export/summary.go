package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hsuancheng/factset-consensus/internal/model"
)

// Summary describes an existing consensus CSV without reparsing the reports
// behind it.
type Summary struct {
	Path      string
	Records   int
	Tiers     map[model.Tier]int
	UpdatedAt time.Time
}

// ReadSummary reads record and tier counts back out of an exported CSV.
// Columns are located by header name, so the summary survives domain changes.
func ReadSummary(path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat export: %w", err)
	}

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	statusCol := -1
	for i, name := range header {
		if strings.TrimPrefix(name, utf8BOM) == "狀態" {
			statusCol = i
			break
		}
	}
	if statusCol < 0 {
		return nil, fmt.Errorf("%s: no 狀態 column", path)
	}

	summary := &Summary{
		Path:      path,
		Tiers:     make(map[model.Tier]int),
		UpdatedAt: info.ModTime(),
	}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		summary.Records++
		if statusCol < len(row) {
			if tier, ok := model.ParseTier(row[statusCol]); ok {
				summary.Tiers[tier]++
			}
		}
	}

	return summary, nil
}
