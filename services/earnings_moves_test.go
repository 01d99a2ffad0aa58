package services

import (
	"math"
	"testing"
	"time"

	"earnings-scanner/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// genSequentialBars produces n weekday bars with distinct closes (100 + i)
// starting at the given date.
func genSequentialBars(start time.Time, n int) []interfaces.PriceBar {
	bars := make([]interfaces.PriceBar, 0, n)
	day := start
	for len(bars) < n {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, 1)
			continue
		}
		close := 100.0 + float64(len(bars))
		bars = append(bars, interfaces.PriceBar{
			Date:   day,
			Open:   close - 0.5,
			High:   close + 1,
			Low:    close - 1,
			Close:  close,
			Volume: 1_000_000,
		})
		day = day.AddDate(0, 0, 1)
	}
	return bars
}

func closeOn(t *testing.T, bars []interfaces.PriceBar, date string) float64 {
	t.Helper()
	for _, b := range bars {
		if b.Date.Format("2006-01-02") == date {
			return b.Close
		}
	}
	t.Fatalf("no bar on %s", date)
	return 0
}

func pctMove(pre, post float64) float64 {
	return math.Abs(post-pre) / pre * 100.0
}

func eventAt(ts time.Time) interfaces.EarningsEvent {
	return interfaces.EarningsEvent{Symbol: "TEST", Timestamp: ts, Timing: interfaces.TimingUnknown}
}

func TestHistoricalMovesAfterClose(t *testing.T) {
	// Mon 2026-01-05 onward
	bars := genSequentialBars(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), 60)

	// Tue 2026-02-03, reported after the close: pre=Feb 3, post=Feb 4
	events := []interfaces.EarningsEvent{
		eventAt(time.Date(2026, 2, 3, 16, 30, 0, 0, time.UTC)),
	}

	moves := HistoricalMoves(events, bars)
	require.Len(t, moves, 1)

	pre := closeOn(t, bars, "2026-02-03")
	post := closeOn(t, bars, "2026-02-04")
	assert.InDelta(t, pctMove(pre, post), moves["2026-02-03"], 1e-12)
}

func TestHistoricalMovesBeforeOpen(t *testing.T) {
	bars := genSequentialBars(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), 60)

	// Wed 2026-02-11, reported before the open: pre=Feb 10, post=Feb 11
	events := []interfaces.EarningsEvent{
		eventAt(time.Date(2026, 2, 11, 8, 0, 0, 0, time.UTC)),
	}

	moves := HistoricalMoves(events, bars)
	require.Len(t, moves, 1)

	pre := closeOn(t, bars, "2026-02-10")
	post := closeOn(t, bars, "2026-02-11")
	assert.InDelta(t, pctMove(pre, post), moves["2026-02-10"], 1e-12)
}

func TestHistoricalMovesMiddayTreatedAsAfterClose(t *testing.T) {
	bars := genSequentialBars(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), 60)

	// Thu 2026-02-19 at noon: ambiguous timing defaults to after-close
	events := []interfaces.EarningsEvent{
		eventAt(time.Date(2026, 2, 19, 12, 0, 0, 0, time.UTC)),
	}

	moves := HistoricalMoves(events, bars)
	require.Len(t, moves, 1)
	_, ok := moves["2026-02-19"]
	assert.True(t, ok)
}

func TestHistoricalMovesExplicitTimingWins(t *testing.T) {
	bars := genSequentialBars(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), 60)

	// stamped 17:00 but the source says before-open: resolved as BMO
	event := interfaces.EarningsEvent{
		Symbol:    "TEST",
		Timestamp: time.Date(2026, 2, 11, 17, 0, 0, 0, time.UTC),
		Timing:    interfaces.TimingBeforeOpen,
	}

	moves := HistoricalMoves([]interfaces.EarningsEvent{event}, bars)
	require.Len(t, moves, 1)
	_, ok := moves["2026-02-10"]
	assert.True(t, ok)
}

func TestHistoricalMovesResolvesAcrossWeekend(t *testing.T) {
	bars := genSequentialBars(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), 60)

	// Fri 2026-02-27 after close: post target Sat 2026-02-28 resolves
	// forward to Mon 2026-03-02
	events := []interfaces.EarningsEvent{
		eventAt(time.Date(2026, 2, 27, 18, 0, 0, 0, time.UTC)),
	}

	moves := HistoricalMoves(events, bars)
	require.Len(t, moves, 1)

	pre := closeOn(t, bars, "2026-02-27")
	post := closeOn(t, bars, "2026-03-02")
	assert.InDelta(t, pctMove(pre, post), moves["2026-02-27"], 1e-12)
}

func TestHistoricalMovesSkipsUnsettledRecentEvent(t *testing.T) {
	bars := genSequentialBars(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), 20)
	last := bars[len(bars)-1].Date

	events := []interfaces.EarningsEvent{
		eventAt(time.Date(last.Year(), last.Month(), last.Day(), 16, 30, 0, 0, time.UTC)),
	}

	moves := HistoricalMoves(events, bars)
	assert.Empty(t, moves)
}

func TestHistoricalMovesExcludesUnresolvableEvents(t *testing.T) {
	bars := genSequentialBars(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), 20)

	// long before the available history: the pre-date search runs off the
	// front of the bars
	events := []interfaces.EarningsEvent{
		eventAt(time.Date(2025, 6, 2, 16, 30, 0, 0, time.UTC)),
	}

	moves := HistoricalMoves(events, bars)
	assert.Empty(t, moves)
}

func TestHistoricalMovesAlwaysNonNegative(t *testing.T) {
	bars := genSequentialBars(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), 60)

	events := []interfaces.EarningsEvent{
		eventAt(time.Date(2026, 1, 13, 16, 30, 0, 0, time.UTC)),
		eventAt(time.Date(2026, 2, 3, 8, 0, 0, 0, time.UTC)),
		eventAt(time.Date(2026, 2, 19, 12, 0, 0, 0, time.UTC)),
	}

	moves := HistoricalMoves(events, bars)
	require.NotEmpty(t, moves)
	for date, move := range moves {
		assert.GreaterOrEqual(t, move, 0.0, "move on %s", date)
	}
}

func TestHistoricalMovesEmptyHistory(t *testing.T) {
	events := []interfaces.EarningsEvent{
		eventAt(time.Date(2026, 2, 3, 16, 30, 0, 0, time.UTC)),
	}
	assert.Empty(t, HistoricalMoves(events, nil))
	assert.Empty(t, HistoricalMoves(nil, genSequentialBars(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), 10)))
}

func TestAverageMove(t *testing.T) {
	avg, ok := AverageMove(map[string]float64{"a": 2.0, "b": 4.0})
	require.True(t, ok)
	assert.InDelta(t, 3.0, avg, 1e-12)

	_, ok = AverageMove(nil)
	assert.False(t, ok)
}
