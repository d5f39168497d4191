package triage

import (
	"fmt"
	"strings"
)

// Symptom score thresholds shared by both combination paths.
const (
	criticalSymptomScore = 5
	urgentSymptomScore   = 3
)

// VitalsAssessment is the vitals-only part of a suggestion.
type VitalsAssessment struct {
	Level         Level
	CriticalCount int
	WarningCount  int
	Reasoning     []string
	Warnings      []string
}

// AssessVitals classifies each recorded channel into none/warning/critical.
// Channels left at zero are treated as not recorded and reported in Warnings.
func AssessVitals(v *VitalSigns) VitalsAssessment {
	a := VitalsAssessment{Level: LevelLow}
	if v == nil {
		return a
	}

	var findings []*finding
	if strings.TrimSpace(v.BloodPressure) != "" {
		bp, err := ParseBloodPressure(v.BloodPressure)
		if err != nil {
			a.Warnings = append(a.Warnings,
				fmt.Sprintf("blood pressure %q could not be parsed; assumed %s", v.BloodPressure, defaultBloodPressure))
			a.Reasoning = append(a.Reasoning,
				fmt.Sprintf("Unparseable vitals: blood pressure %q scored as %s", v.BloodPressure, defaultBloodPressure))
			bp = defaultBloodPressure
		}
		findings = append(findings, classifyBloodPressure(bp))
	} else {
		a.skip("blood pressure")
	}

	channels := []struct {
		name     string
		recorded bool
		classify func() *finding
	}{
		{"temperature", v.Temperature != 0, func() *finding { return classifyTemperature(v.Temperature) }},
		{"pulse rate", v.PulseRate != 0, func() *finding { return classifyPulse(v.PulseRate) }},
		{"oxygen saturation", v.OxygenSaturation != 0, func() *finding { return classifyOxygen(v.OxygenSaturation) }},
		{"respiratory rate", v.RespiratoryRate != 0, func() *finding { return classifyRespiration(v.RespiratoryRate) }},
	}
	for _, ch := range channels {
		if !ch.recorded {
			a.skip(ch.name)
			continue
		}
		findings = append(findings, ch.classify())
	}

	for _, f := range findings {
		if f == nil {
			continue
		}
		switch f.tier {
		case TierCritical:
			a.CriticalCount++
		case TierWarning:
			a.WarningCount++
		}
		a.Reasoning = append(a.Reasoning, f.line)
	}

	switch {
	case a.CriticalCount > 0:
		a.Level = LevelHigh
	case a.WarningCount > 0:
		a.Level = LevelMedium
	}
	return a
}

func (a *VitalsAssessment) skip(channel string) {
	a.Warnings = append(a.Warnings, channel+" not recorded; channel not scored")
}

// ScoreSymptoms sums lexicon matches across all symptoms. Every term found
// in a symptom counts, and each match yields one reasoning line.
func ScoreSymptoms(symptoms []string) (int, []string) {
	score := 0
	var lines []string
	for _, raw := range symptoms {
		s := strings.ToLower(strings.TrimSpace(raw))
		if s == "" {
			continue
		}
		for _, tier := range symptomLexicon {
			for _, term := range tier.terms {
				if strings.Contains(s, term) {
					score += int(tier.severity)
					lines = append(lines, fmt.Sprintf("%s-severity symptom: %s", capitalize(tier.severity.String()), term))
				}
			}
		}
	}
	return score, lines
}

// isAgeRisk reports whether age falls in a higher-risk group.
func isAgeRisk(age int) bool {
	return age < 5 || age > 65
}

// SuggestPriority combines vital signs, symptoms and age into a priority.
// vitals may be nil. The result depends only on its arguments.
func SuggestPriority(vitals *VitalSigns, symptoms []string, age int) Suggestion {
	symptomScore, symptomLines := ScoreSymptoms(symptoms)

	if vitals == nil {
		out := Suggestion{Reasoning: symptomLines}
		switch {
		case symptomScore >= criticalSymptomScore:
			out.Priority, out.Confidence = PriorityCritical, 0.7
		case symptomScore >= urgentSymptomScore:
			out.Priority, out.Confidence = PriorityUrgent, 0.6
		default:
			out.Priority, out.Confidence = PriorityNormal, 0.5
		}
		if out.Reasoning == nil {
			out.Reasoning = []string{}
		}
		return out
	}

	va := AssessVitals(vitals)
	level := va.Level

	reasoning := make([]string, 0, len(va.Reasoning)+len(symptomLines)+1)
	reasoning = append(reasoning, va.Reasoning...)
	reasoning = append(reasoning, symptomLines...)

	if level == LevelMedium && isAgeRisk(age) {
		level = LevelHigh
		reasoning = append(reasoning, fmt.Sprintf("Age %d is a risk factor; vital-sign concern escalated", age))
	}

	out := Suggestion{Reasoning: reasoning, Warnings: va.Warnings}
	switch {
	case level == LevelHigh || symptomScore >= criticalSymptomScore:
		out.Priority, out.Confidence = PriorityCritical, 0.9
	case level == LevelMedium || symptomScore >= urgentSymptomScore:
		out.Priority, out.Confidence = PriorityUrgent, 0.8
	default:
		out.Priority, out.Confidence = PriorityNormal, 0.7
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
