package labsummary

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	maxSummaryLines = 3

	// Values below min*criticalLowFactor or above max*criticalHighFactor are critical.
	criticalLowFactor  = 0.7
	criticalHighFactor = 1.5

	noDataLine    = "No detailed results available for analysis"
	allNormalLine = "All results within normal ranges"
	attentionLine = "ATTENTION: Critical values detected - immediate clinical review recommended"
)

// Finding is the classification of one known result field.
type Finding struct {
	Field    string
	Value    float64
	Range    ReferenceRange
	Flag     Flag
	Critical bool
}

// Classify compares value against r.
func Classify(field string, value float64, r ReferenceRange) Finding {
	f := Finding{Field: field, Value: value, Range: r, Flag: FlagNormal}
	switch {
	case value < r.Min:
		f.Flag = FlagLow
		f.Critical = value < r.Min*criticalLowFactor
	case value > r.Max:
		f.Flag = FlagHigh
		f.Critical = value > r.Max*criticalHighFactor
	}
	return f
}

// Line renders the result-list entry for f.
func (f Finding) Line() string {
	name := strings.ToUpper(f.Field)
	value := formatNumber(f.Value)
	rng := fmt.Sprintf("%s-%s %s", formatNumber(f.Range.Min), formatNumber(f.Range.Max), f.Range.Unit)
	switch f.Flag {
	case FlagLow:
		return fmt.Sprintf("%s: %s %s (Low - Normal range: %s)", name, value, f.Range.Unit, rng)
	case FlagHigh:
		return fmt.Sprintf("%s: %s %s (High - Normal range: %s)", name, value, f.Range.Unit, rng)
	}
	return fmt.Sprintf("%s: %s %s (Normal)", name, value, f.Range.Unit)
}

// Phrase returns the narrative line for an out-of-range finding. The first
// field-specific phrase is used so output is reproducible.
func (f Finding) Phrase() string {
	switch f.Flag {
	case FlagLow:
		if len(f.Range.LowPhrases) > 0 {
			return f.Range.LowPhrases[0]
		}
		return fmt.Sprintf("%s is below the normal range (%s %s)", f.Range.Label, formatNumber(f.Value), f.Range.Unit)
	case FlagHigh:
		if len(f.Range.HighPhrases) > 0 {
			return f.Range.HighPhrases[0]
		}
		return fmt.Sprintf("%s is above the normal range (%s %s)", f.Range.Label, formatNumber(f.Value), f.Range.Unit)
	}
	return ""
}

// Summarize classifies every known numeric field of a completed test.
// Missing results are reported as a summary line, never as an error.
func Summarize(test LabTest) Summary {
	out := Summary{
		Summary:         []string{},
		AbnormalResults: []string{},
		CriticalResults: []string{},
		NormalResults:   []string{},
	}

	if test.Status != "" && test.Status != StatusCompleted {
		out.Summary = append(out.Summary, fmt.Sprintf("Results not yet available (status: %s)", test.Status))
		return out
	}
	if test.Results == nil || test.Results.CustomFields == nil {
		out.Summary = append(out.Summary, noDataLine)
		return out
	}

	// Map iteration order is random; sort for reproducible output.
	fields := make([]string, 0, len(test.Results.CustomFields))
	for k := range test.Results.CustomFields {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	for _, field := range fields {
		r, ok := LookupRange(field)
		if !ok {
			continue
		}
		value, ok := toFloat(test.Results.CustomFields[field])
		if !ok {
			continue
		}

		f := Classify(field, value, r)
		if f.Flag == FlagNormal {
			out.NormalResults = append(out.NormalResults, f.Line())
			continue
		}
		out.AbnormalResults = append(out.AbnormalResults, f.Line())
		out.Summary = append(out.Summary, f.Phrase())
		if f.Critical {
			out.CriticalResults = append(out.CriticalResults, f.Line())
		}
	}

	if len(out.Summary) == 0 {
		out.Summary = append(out.Summary, allNormalLine)
	}
	if len(out.CriticalResults) > 0 {
		out.Summary = append([]string{attentionLine}, out.Summary...)
	}
	if len(out.Summary) > maxSummaryLines {
		out.Summary = out.Summary[:maxSummaryLines]
	}
	return out
}

// toFloat accepts JSON numbers, Go numeric types and numeric strings.
// Non-finite values are rejected.
func toFloat(v interface{}) (float64, bool) {
	var (
		f  float64
		ok bool
	)
	switch n := v.(type) {
	case float64:
		f, ok = n, true
	case float32:
		f, ok = float64(n), true
	case int:
		f, ok = float64(n), true
	case int32:
		f, ok = float64(n), true
	case int64:
		f, ok = float64(n), true
	case json.Number:
		parsed, err := n.Float64()
		f, ok = parsed, err == nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		f, ok = parsed, err == nil
	}
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
