package stats

import (
	"math"
	"time"
)

// TimedValue is a document reduced to what bucketing needs: when it was
// created and the number it contributes.
type TimedValue struct {
	At    time.Time
	Value float64
}

// CountByMonth buckets creation timestamps into a window of `length`
// calendar months ending at today's month: most recent month in the last
// slot, oldest in slot 0. The diff is mod-12 on month alone, so a document
// 13 months old collides with one 1 month old — a deliberate approximation
// kept from the original arithmetic.
func CountByMonth(length int, today time.Time, times []time.Time) []int {
	out := make([]int, length)
	for _, t := range times {
		if idx, ok := bucketIndex(length, today, t); ok {
			out[idx]++
		}
	}
	return out
}

// SumByMonth is CountByMonth with a numeric field added instead of 1.
func SumByMonth(length int, today time.Time, docs []TimedValue) []float64 {
	out := make([]float64, length)
	for _, d := range docs {
		if idx, ok := bucketIndex(length, today, d.At); ok {
			out[idx] += d.Value
		}
	}
	return out
}

func bucketIndex(length int, today, at time.Time) (int, bool) {
	monthDiff := (int(today.Month()) - int(at.Month()) + 12) % 12
	if monthDiff >= length {
		return 0, false
	}
	return length - monthDiff - 1, true
}

// CalculatePercentage is the month-over-month change, rounded to whole
// percent. A zero baseline yields thisMonth*100.
func CalculatePercentage(thisMonth, lastMonth float64) int {
	if lastMonth == 0 {
		return int(math.Round(thisMonth * 100))
	}
	return int(math.Round((thisMonth - lastMonth) / lastMonth * 100))
}

// monthRange is a half-open [Start, End) interval.
type monthRange struct {
	Start time.Time
	End   time.Time
}

func (r monthRange) contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// thisAndLastMonth returns the current calendar month up to `today` and the
// whole preceding calendar month.
func thisAndLastMonth(today time.Time) (thisMonth, lastMonth monthRange) {
	startOfThis := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	startOfLast := startOfThis.AddDate(0, -1, 0)

	return monthRange{Start: startOfThis, End: today},
		monthRange{Start: startOfLast, End: startOfThis}
}
