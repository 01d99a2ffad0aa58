package services

import (
	"math"
	"time"

	"earnings-scanner/interfaces"
)

// classifyTiming resolves the report timing of an earnings event. An
// explicit timing from the data source wins; otherwise the exchange-local
// clock decides: at or after the 16:00 close means after-close, before the
// 09:30 open means before-open. Anything in between is treated as
// after-close, the dominant convention for intraday-stamped reports.
func classifyTiming(event interfaces.EarningsEvent) interfaces.EarningsTiming {
	switch event.Timing {
	case interfaces.TimingBeforeOpen, interfaces.TimingAfterClose:
		return event.Timing
	}
	clock := event.Timestamp.Hour()*60 + event.Timestamp.Minute()
	if clock >= 16*60 {
		return interfaces.TimingAfterClose
	}
	if clock < 9*60+30 {
		return interfaces.TimingBeforeOpen
	}
	return interfaces.TimingAfterClose
}

// barIndex maps calendar dates to bar positions for trading-day resolution.
type barIndex struct {
	bars  []interfaces.PriceBar
	byDay map[string]int
	first time.Time
	last  time.Time
}

func newBarIndex(bars []interfaces.PriceBar) *barIndex {
	idx := &barIndex{bars: bars, byDay: make(map[string]int, len(bars))}
	for i, b := range bars {
		idx.byDay[dateKey(b.Date)] = i
	}
	if len(bars) > 0 {
		idx.first = dateOnly(bars[0].Date)
		idx.last = dateOnly(bars[len(bars)-1].Date)
	}
	return idx
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// resolveBackward walks from the target date toward older dates until a
// trading day in the history is found.
func (idx *barIndex) resolveBackward(target time.Time) (int, bool) {
	for d := target; !d.Before(idx.first); d = d.AddDate(0, 0, -1) {
		if i, ok := idx.byDay[dateKey(d)]; ok {
			return i, true
		}
	}
	return 0, false
}

// resolveForward walks from the target date toward newer dates until a
// trading day in the history is found.
func (idx *barIndex) resolveForward(target time.Time) (int, bool) {
	for d := target; !d.After(idx.last); d = d.AddDate(0, 0, 1) {
		if i, ok := idx.byDay[dateKey(d)]; ok {
			return i, true
		}
	}
	return 0, false
}

// HistoricalMoves computes the realized post-earnings price move for each
// historical earnings event, as a percentage of the pre-earnings close.
// The result maps the pre-earnings trading date (ISO) to the absolute move
// percentage. Events whose pre/post dates cannot be resolved to trading days
// in the history, or whose post date is within a day of the newest bar (no
// settled post-earnings price yet), are excluded.
func HistoricalMoves(events []interfaces.EarningsEvent, bars []interfaces.PriceBar) map[string]float64 {
	moves := make(map[string]float64)
	if len(bars) == 0 {
		return moves
	}
	idx := newBarIndex(bars)

	for _, event := range events {
		eventDate := dateOnly(event.Timestamp)

		var preTarget, postTarget time.Time
		switch classifyTiming(event) {
		case interfaces.TimingBeforeOpen:
			preTarget = eventDate.AddDate(0, 0, -1)
			postTarget = eventDate
		default: // after close
			preTarget = eventDate
			postTarget = eventDate.AddDate(0, 0, 1)
		}

		// the post-earnings close has not settled yet
		if !postTarget.Before(idx.last.AddDate(0, 0, -1)) {
			continue
		}

		preIdx, ok := idx.resolveBackward(preTarget)
		if !ok {
			continue
		}
		postIdx, ok := idx.resolveForward(postTarget)
		if !ok {
			continue
		}

		preClose := bars[preIdx].Close
		if preClose == 0 {
			continue
		}
		movePct := math.Abs(bars[postIdx].Close-preClose) / preClose * 100.0
		moves[dateKey(bars[preIdx].Date)] = movePct
	}
	return moves
}

// AverageMove returns the mean of the historical move percentages. ok is
// false when there is no history to average.
func AverageMove(moves map[string]float64) (float64, bool) {
	if len(moves) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, m := range moves {
		sum += m
	}
	return sum / float64(len(moves)), true
}
