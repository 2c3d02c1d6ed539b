// Package window projects relative-year estimate bundles onto the fixed
// calendar-year columns of the consensus export.
//
// A report states estimates for its anchor year N and up to three following
// years (N+1, N+2, N+3). The export always carries the same four calendar
// columns regardless of when a report was written, so the two drift apart as
// anchors move: a 2026-anchored report simply has nothing to say about the
// 2025 column. Mapping is the one place that drift is resolved.
package window

import (
	"errors"
	"fmt"

	"github.com/hsuancheng/factset-consensus/internal/model"
)

const (
	// DefaultFirstYear anchors the standard export columns 2025..2028.
	DefaultFirstYear = 2025

	// DomainYears is the number of consecutive calendar years the export covers.
	DomainYears = 4

	// MaxOffset bounds the estimate horizon relative to the anchor year.
	MaxOffset = 3
)

var (
	ErrBadAnchor = errors.New("anchor is not a 4-digit year")
	ErrBadOffset = errors.New("offset outside supported horizon")
)

// Domain is the contiguous run of DomainYears calendar years that estimate
// columns are exported under.
type Domain struct {
	First int
}

// DefaultDomain covers 2025 through 2028.
var DefaultDomain = Domain{First: DefaultFirstYear}

// Last returns the final calendar year of the domain.
func (d Domain) Last() int {
	return d.First + DomainYears - 1
}

// Contains reports whether year falls inside the domain.
func (d Domain) Contains(year int) bool {
	return year >= d.First && year <= d.Last()
}

// Years returns the domain's calendar years in ascending order.
func (d Domain) Years() []int {
	years := make([]int, DomainYears)
	for i := range years {
		years[i] = d.First + i
	}
	return years
}

// ValidateAnchor checks that anchor is a plausible 4-digit calendar year.
func ValidateAnchor(anchor int) error {
	if anchor < 1000 || anchor > 9999 {
		return fmt.Errorf("%w: %d", ErrBadAnchor, anchor)
	}
	return nil
}

// Map projects estimate bundles keyed by relative-year offset (0=anchor,
// 1=anchor+1, ...) onto the absolute calendar years of the domain.
//
// The anchor must pass ValidateAnchor and every offset must lie in
// 0..MaxOffset; either violation fails the whole mapping. A bundle whose
// calendar year misses the domain is dropped silently: the column set is
// fixed, so an out-of-domain year is "not applicable", not an error.
//
// Pure function of its inputs. The returned bundles carry their calendar
// year in YearEstimate.Year.
func Map(anchor int, byOffset map[int]model.YearEstimate, domain Domain) (map[int]model.YearEstimate, error) {
	if err := ValidateAnchor(anchor); err != nil {
		return nil, err
	}

	byYear := make(map[int]model.YearEstimate, len(byOffset))
	for offset, est := range byOffset {
		if offset < 0 || offset > MaxOffset {
			return nil, fmt.Errorf("%w: %d", ErrBadOffset, offset)
		}

		year := anchor + offset
		if !domain.Contains(year) {
			continue
		}

		est.Year = year
		byYear[year] = est
	}

	return byYear, nil
}

// Offsets inverts Map's keying: it rekeys bundles carrying absolute calendar
// years by their offset from anchor, dropping years outside the supported
// horizon. Aggregation uses it to prepare a report's estimates for mapping.
func Offsets(anchor int, estimates []model.YearEstimate) map[int]model.YearEstimate {
	byOffset := make(map[int]model.YearEstimate, len(estimates))
	for _, est := range estimates {
		offset := est.Year - anchor
		if offset < 0 || offset > MaxOffset {
			continue
		}
		byOffset[offset] = est
	}
	return byOffset
}
