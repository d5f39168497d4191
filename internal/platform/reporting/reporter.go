package reporting

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// forecastWindow is how many trailing periods feed the regression.
const forecastWindow = 3

// Metric names used in trends and forecasts.
const (
	MetricPatients      = "distinct_patients"
	MetricConsultations = "consultations"
	MetricLabTests      = "lab_tests"
	MetricRevenue       = "revenue"
	MetricAvgDuration   = "avg_consultation_minutes"
)

var metrics = []struct {
	name  string
	value func(PeriodStats) float64
}{
	{MetricPatients, func(p PeriodStats) float64 { return float64(p.DistinctPatients) }},
	{MetricConsultations, func(p PeriodStats) float64 { return float64(p.Consultations) }},
	{MetricLabTests, func(p PeriodStats) float64 { return float64(p.LabTests) }},
	{MetricRevenue, func(p PeriodStats) float64 { return p.Revenue }},
	{MetricAvgDuration, func(p PeriodStats) float64 { return p.AvgConsultationMinutes }},
}

// bucketStart returns the first instant of the period containing t.
// Weeks start on Monday.
func bucketStart(t time.Time, p Period, loc *time.Location) time.Time {
	t = t.In(loc)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	switch p {
	case PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	}
	return day
}

func bucketLabel(start time.Time, p Period) string {
	if p == PeriodMonth {
		return start.Format("2006-01")
	}
	return start.Format("2006-01-02")
}

type bucket struct {
	stats        PeriodStats
	patients     map[string]struct{}
	completed    int
	minutesTotal float64
}

// BuildReport groups in by period, then derives trends between the two most
// recent periods and a one-step forecast per metric.
func BuildReport(in Input, period Period) Report {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	buckets := make(map[time.Time]*bucket)
	get := func(t time.Time) *bucket {
		start := bucketStart(t, period, loc)
		b, ok := buckets[start]
		if !ok {
			b = &bucket{
				stats:    PeriodStats{Start: start, Label: bucketLabel(start, period)},
				patients: make(map[string]struct{}),
			}
			buckets[start] = b
		}
		return b
	}

	for _, c := range in.Consultations {
		b := get(c.StartedAt)
		b.stats.Consultations++
		b.patients[c.PatientID] = struct{}{}
		if c.Status == ConsultationCompleted && c.EndedAt != nil && !c.EndedAt.Before(c.StartedAt) {
			b.completed++
			b.minutesTotal += c.EndedAt.Sub(c.StartedAt).Minutes()
		}
	}
	for _, l := range in.LabTests {
		b := get(l.OrderedAt)
		b.stats.LabTests++
		b.patients[l.PatientID] = struct{}{}
	}
	for _, inv := range in.Invoices {
		b := get(inv.CreatedAt)
		b.stats.Invoices++
		b.stats.Billed += inv.Total
		b.patients[inv.PatientID] = struct{}{}
	}
	for _, p := range in.Payments {
		get(p.PaidAt).stats.Revenue += p.Amount
	}

	periods := make([]PeriodStats, 0, len(buckets))
	for _, b := range buckets {
		b.stats.DistinctPatients = len(b.patients)
		if b.completed > 0 {
			b.stats.AvgConsultationMinutes = b.minutesTotal / float64(b.completed)
		}
		periods = append(periods, b.stats)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Start.Before(periods[j].Start) })

	report := Report{
		Period:    period,
		Periods:   periods,
		Trends:    make([]Trend, 0, len(metrics)),
		Forecasts: make([]Forecast, 0, len(metrics)),
	}
	for _, m := range metrics {
		values := make([]float64, len(periods))
		for i, p := range periods {
			values[i] = m.value(p)
		}
		report.Trends = append(report.Trends, trendOf(m.name, values))

		window := values
		if len(window) > forecastWindow {
			window = window[len(window)-forecastWindow:]
		}
		slope, next := LinearForecast(window)
		report.Forecasts = append(report.Forecasts, Forecast{Metric: m.name, Slope: slope, Next: math.Max(next, 0)})
	}
	return report
}

// trendOf compares the last two values. A single value is compared with zero.
func trendOf(metric string, values []float64) Trend {
	t := Trend{Metric: metric}
	if n := len(values); n > 0 {
		t.Current = values[n-1]
		if n > 1 {
			t.Previous = values[n-2]
		}
	}
	t.Change = ChangeString(t.Previous, t.Current)
	switch {
	case t.Current > t.Previous:
		t.Direction = DirectionUp
	case t.Current < t.Previous:
		t.Direction = DirectionDown
	default:
		t.Direction = DirectionStable
	}
	return t
}

// ChangeString formats the percentage change from previous to current,
// e.g. "+12.3%". A rise from zero is "+∞%".
func ChangeString(previous, current float64) string {
	if previous == 0 {
		switch {
		case current > 0:
			return "+∞%"
		case current < 0:
			return "-∞%"
		}
		return "0%"
	}
	return fmt.Sprintf("%+.1f%%", (current-previous)/math.Abs(previous)*100)
}

// LinearForecast fits y = a + b·x by ordinary least squares over x = 0..n-1
// and extrapolates to x = n. With fewer than two points the slope is zero
// and the forecast is the last value, or zero when values is empty.
func LinearForecast(values []float64) (slope, next float64) {
	n := len(values)
	switch n {
	case 0:
		return 0, 0
	case 1:
		return 0, values[0]
	}

	var sumX, sumY float64
	for i, y := range values {
		sumX += float64(i)
		sumY += y
	}
	meanX, meanY := sumX/float64(n), sumY/float64(n)

	var num, den float64
	for i, y := range values {
		dx := float64(i) - meanX
		num += dx * (y - meanY)
		den += dx * dx
	}
	slope = num / den
	intercept := meanY - slope*meanX
	return slope, intercept + slope*float64(n)
}
