// Package watchlist loads the covered-stock list: the Taiwan-listed stocks
// the pipeline is allowed to build consensus records for. Reports about
// anything else are rejected upstream of aggregation.
package watchlist

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var codePattern = regexp.MustCompile(`^\d{4}$`)

// Entry is one covered stock.
type Entry struct {
	Code string // 4-digit listing code, e.g. "2330"
	Name string // company name, e.g. "台積電"
}

// Ticker returns the market-qualified ticker for the entry.
func (e Entry) Ticker() string {
	return e.Code + "-TW"
}

// List is the set of covered stocks, looked up by code.
type List struct {
	entries []Entry
	byCode  map[string]Entry
}

// Load reads a watch-list CSV file with a 代號,名稱 header.
func Load(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open watch list: %w", err)
	}
	defer f.Close()

	list, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("watch list %s: %w", path, err)
	}
	return list, nil
}

// Parse reads watch-list rows from r. The file is small and hand-maintained
// configuration, so a malformed row fails the whole load rather than being
// skipped like a bad report.
func Parse(r io.Reader) (*List, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	list := &List{byCode: make(map[string]Entry)}

	line := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line++

		if len(row) < 2 {
			return nil, fmt.Errorf("line %d: want 代號,名稱 columns, got %d fields", line, len(row))
		}

		code := strings.TrimSpace(strings.TrimPrefix(row[0], "\uFEFF"))
		name := strings.TrimSpace(row[1])

		// Header row from Excel or the upstream exporter.
		if line == 1 && !codePattern.MatchString(code) {
			continue
		}

		if !codePattern.MatchString(code) {
			return nil, fmt.Errorf("line %d: %q is not a 4-digit stock code", line, code)
		}
		if name == "" {
			return nil, fmt.Errorf("line %d: stock %s has no name", line, code)
		}
		if _, dup := list.byCode[code]; dup {
			return nil, fmt.Errorf("line %d: duplicate stock code %s", line, code)
		}

		entry := Entry{Code: code, Name: name}
		list.entries = append(list.entries, entry)
		list.byCode[code] = entry
	}

	if len(list.entries) == 0 {
		return nil, errors.New("no stocks listed")
	}

	return list, nil
}

// Get returns the entry for code.
func (l *List) Get(code string) (Entry, bool) {
	e, ok := l.byCode[code]
	return e, ok
}

// Has reports whether code is covered.
func (l *List) Has(code string) bool {
	_, ok := l.byCode[code]
	return ok
}

// Len returns the number of covered stocks.
func (l *List) Len() int {
	return len(l.entries)
}

// Entries returns the covered stocks in file order.
func (l *List) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
