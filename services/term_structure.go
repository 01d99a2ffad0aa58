package services

import (
	"errors"
	"sort"
)

// TermStructure is a piecewise-linear interpolant over (days-to-expiry,
// ATM implied vol) points. Queries outside the observed day range return the
// boundary vol unchanged; extrapolating the end segments would manufacture
// slope where nothing was observed.
type TermStructure struct {
	days []float64
	ivs  []float64
}

// NewTermStructure builds the interpolant from parallel day/IV slices,
// sorting them by day. At least one point is required.
func NewTermStructure(days []int, ivs []float64) (*TermStructure, error) {
	if len(days) == 0 || len(days) != len(ivs) {
		return nil, errors.New("term structure requires at least one (day, iv) point")
	}

	idx := make([]int, len(days))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return days[idx[a]] < days[idx[b]] })

	ts := &TermStructure{
		days: make([]float64, len(days)),
		ivs:  make([]float64, len(ivs)),
	}
	for i, j := range idx {
		ts.days[i] = float64(days[j])
		ts.ivs[i] = ivs[j]
	}
	return ts, nil
}

// MinDays returns the shortest tenor among the fitted points.
func (ts *TermStructure) MinDays() float64 {
	return ts.days[0]
}

// ValueAt evaluates the interpolant at a day count. Below the shortest tenor
// it returns the first vol, above the longest the last, and linear
// interpolation between the two bracketing points otherwise.
func (ts *TermStructure) ValueAt(dte float64) float64 {
	n := len(ts.days)
	if dte <= ts.days[0] {
		return ts.ivs[0]
	}
	if dte >= ts.days[n-1] {
		return ts.ivs[n-1]
	}
	// find the bracketing segment
	hi := sort.SearchFloat64s(ts.days, dte)
	lo := hi - 1
	frac := (dte - ts.days[lo]) / (ts.days[hi] - ts.days[lo])
	return ts.ivs[lo] + frac*(ts.ivs[hi]-ts.ivs[lo])
}

// Slope returns the average IV change per day between two tenors,
// (ValueAt(to) - ValueAt(from)) / (to - from). ok is false when the tenors
// coincide, where the slope is undefined.
func (ts *TermStructure) Slope(from, to float64) (slope float64, ok bool) {
	if from == to {
		return 0, false
	}
	return (ts.ValueAt(to) - ts.ValueAt(from)) / (to - from), true
}
