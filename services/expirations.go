package services

import (
	"fmt"
	"sort"
	"time"

	"earnings-scanner/interfaces"
)

// expirationCutoffDays is the tenor the term-structure slope is measured
// against; the selected expirations must bracket it.
const expirationCutoffDays = 45

// FilterExpirations reduces a symbol's listed expiration dates to the minimal
// near-term set that still brackets the 45-day tenor: every date up to and
// including the first one at least 45 calendar days out, ascending. A leading
// same-day expiration is dropped (no usable extrinsic value). Returns
// ErrInsufficientExpirations when no listed date reaches the cutoff.
func FilterExpirations(dates []string, today time.Time) ([]string, error) {
	y, m, d := today.Date()
	todayDate := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	cutoff := todayDate.AddDate(0, 0, expirationCutoffDays)

	parsed := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			return nil, fmt.Errorf("invalid expiration date %q: %w", d, err)
		}
		parsed = append(parsed, t)
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Before(parsed[j]) })

	selected := []time.Time{}
	for i, d := range parsed {
		if !d.Before(cutoff) {
			selected = parsed[:i+1]
			break
		}
	}
	if len(selected) == 0 {
		return nil, interfaces.ErrInsufficientExpirations
	}

	if selected[0].Equal(todayDate) {
		selected = selected[1:]
	}
	if len(selected) == 0 {
		return nil, interfaces.ErrInsufficientExpirations
	}

	out := make([]string, len(selected))
	for i, d := range selected {
		out[i] = d.Format("2006-01-02")
	}
	return out, nil
}
