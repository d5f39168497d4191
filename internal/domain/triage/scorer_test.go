package triage

import (
	"reflect"
	"strings"
	"testing"
)

func normalVitals() *VitalSigns {
	return &VitalSigns{
		BloodPressure:    "120/80",
		PulseRate:        80,
		Temperature:      37,
		OxygenSaturation: 98,
		RespiratoryRate:  16,
	}
}

func containsLine(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func TestSuggestPriority_HypertensiveCrisis(t *testing.T) {
	v := normalVitals()
	v.BloodPressure = "190/130"

	got := SuggestPriority(v, nil, 30)
	if got.Priority != PriorityCritical {
		t.Errorf("expected critical, got %s", got.Priority)
	}
	if got.Confidence != 0.9 {
		t.Errorf("expected confidence 0.9, got %v", got.Confidence)
	}
	if !containsLine(got.Reasoning, "Hypertensive crisis") {
		t.Errorf("expected hypertensive crisis line, got %v", got.Reasoning)
	}
}

func TestSuggestPriority_SymptomOnlyChestPain(t *testing.T) {
	got := SuggestPriority(nil, []string{"chest pain"}, 40)
	if got.Priority != PriorityUrgent {
		t.Errorf("expected urgent, got %s", got.Priority)
	}
	if got.Confidence != 0.6 {
		t.Errorf("expected confidence 0.6, got %v", got.Confidence)
	}
	if len(got.Reasoning) != 1 {
		t.Errorf("expected 1 reasoning line, got %v", got.Reasoning)
	}
}

func TestSuggestPriority_SymptomOnlyThresholds(t *testing.T) {
	tests := []struct {
		name       string
		symptoms   []string
		priority   Priority
		confidence float64
	}{
		{"none", nil, PriorityNormal, 0.5},
		{"low only", []string{"cough", "headache"}, PriorityNormal, 0.5},
		{"score 3 from lows", []string{"cough", "rash", "nausea"}, PriorityUrgent, 0.6},
		{"score 5", []string{"Seizure", "vomiting"}, PriorityCritical, 0.7},
		{"case insensitive", []string{"SHORTNESS OF BREATH and high fever"}, PriorityCritical, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestPriority(nil, tt.symptoms, 30)
			if got.Priority != tt.priority || got.Confidence != tt.confidence {
				t.Errorf("got %s/%v, want %s/%v", got.Priority, got.Confidence, tt.priority, tt.confidence)
			}
		})
	}
}

func TestSuggestPriority_NormalVitals(t *testing.T) {
	got := SuggestPriority(normalVitals(), nil, 30)
	if got.Priority != PriorityNormal || got.Confidence != 0.7 {
		t.Errorf("expected normal/0.7, got %s/%v", got.Priority, got.Confidence)
	}
	if len(got.Reasoning) != 0 {
		t.Errorf("expected no reasoning, got %v", got.Reasoning)
	}
}

func TestSuggestPriority_WarningVitalsUrgent(t *testing.T) {
	v := normalVitals()
	v.PulseRate = 124

	got := SuggestPriority(v, nil, 30)
	if got.Priority != PriorityUrgent || got.Confidence != 0.8 {
		t.Errorf("expected urgent/0.8, got %s/%v", got.Priority, got.Confidence)
	}
	if !reflect.DeepEqual(got.Reasoning, []string{"Tachycardia (124 bpm)"}) {
		t.Errorf("unexpected reasoning %v", got.Reasoning)
	}
}

func TestSuggestPriority_AgeEscalation(t *testing.T) {
	v := normalVitals()
	v.Temperature = 38.9

	for _, age := range []int{3, 70} {
		got := SuggestPriority(v, nil, age)
		if got.Priority != PriorityCritical {
			t.Errorf("age %d: expected critical, got %s", age, got.Priority)
		}
		last := got.Reasoning[len(got.Reasoning)-1]
		if !strings.Contains(last, "risk factor") {
			t.Errorf("age %d: expected age line last, got %v", age, got.Reasoning)
		}
	}

	got := SuggestPriority(v, nil, 30)
	if got.Priority != PriorityUrgent {
		t.Errorf("age 30: expected urgent, got %s", got.Priority)
	}
	if containsLine(got.Reasoning, "risk factor") {
		t.Errorf("age 30: unexpected age line %v", got.Reasoning)
	}
}

func TestSuggestPriority_AgeDoesNotEscalateWithoutVitals(t *testing.T) {
	got := SuggestPriority(nil, []string{"cough"}, 80)
	if got.Priority != PriorityNormal {
		t.Errorf("expected normal, got %s", got.Priority)
	}
}

func TestSuggestPriority_ReasoningOrder(t *testing.T) {
	v := normalVitals()
	v.OxygenSaturation = 93
	got := SuggestPriority(v, []string{"cough"}, 80)

	want := []string{
		"Low oxygen saturation (SpO2 93%)",
		"Low-severity symptom: cough",
	}
	if len(got.Reasoning) != 3 {
		t.Fatalf("expected 3 reasoning lines, got %v", got.Reasoning)
	}
	if !reflect.DeepEqual(got.Reasoning[:2], want) {
		t.Errorf("got %v, want prefix %v", got.Reasoning, want)
	}
	if !strings.Contains(got.Reasoning[2], "Age 80") {
		t.Errorf("expected age line last, got %q", got.Reasoning[2])
	}
}

func TestSuggestPriority_Deterministic(t *testing.T) {
	v := normalVitals()
	v.RespiratoryRate = 24
	symptoms := []string{"vomiting", "headache"}
	first := SuggestPriority(v, symptoms, 50)
	for i := 0; i < 10; i++ {
		if got := SuggestPriority(v, symptoms, 50); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestSuggestPriority_ReasoningNotDeduplicated(t *testing.T) {
	got := SuggestPriority(nil, []string{"cough", "cough"}, 30)
	if len(got.Reasoning) != 2 {
		t.Errorf("expected duplicate lines kept, got %v", got.Reasoning)
	}
}

func TestSuggestPriority_UnparseableBloodPressure(t *testing.T) {
	v := normalVitals()
	v.BloodPressure = "12O/80"

	got := SuggestPriority(v, nil, 30)
	if got.Priority != PriorityNormal {
		t.Errorf("expected fallback to normal reading, got %s", got.Priority)
	}
	if len(got.Warnings) != 1 || !strings.Contains(got.Warnings[0], "could not be parsed") {
		t.Errorf("expected parse warning, got %v", got.Warnings)
	}
	if !containsLine(got.Reasoning, "Unparseable vitals: blood pressure") {
		t.Errorf("expected unparseable vitals reasoning line, got %v", got.Reasoning)
	}
}

func TestAssessVitals_Channels(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(v *VitalSigns)
		level  Level
		line   string
	}{
		{"hypotension", func(v *VitalSigns) { v.BloodPressure = "85/55" }, LevelHigh, "Hypotension (85/55 mmHg)"},
		{"stage 2", func(v *VitalSigns) { v.BloodPressure = "150/95" }, LevelMedium, "Stage 2 hypertension"},
		{"mild hypotension", func(v *VitalSigns) { v.BloodPressure = "98/70" }, LevelMedium, "Mild hypotension"},
		{"fever", func(v *VitalSigns) { v.Temperature = 38.5 }, LevelMedium, "Fever (38.5°C)"},
		{"hypothermia", func(v *VitalSigns) { v.Temperature = 34.8 }, LevelHigh, "Hypothermia"},
		{"hyperpyrexia", func(v *VitalSigns) { v.Temperature = 41.1 }, LevelHigh, "Hyperpyrexia"},
		{"bradycardia", func(v *VitalSigns) { v.PulseRate = 55 }, LevelMedium, "Bradycardia (55 bpm)"},
		{"severe bradycardia", func(v *VitalSigns) { v.PulseRate = 25 }, LevelHigh, "Severe bradycardia"},
		{"severe tachycardia", func(v *VitalSigns) { v.PulseRate = 150 }, LevelHigh, "Severe tachycardia"},
		{"low spo2", func(v *VitalSigns) { v.OxygenSaturation = 94 }, LevelMedium, "Low oxygen saturation"},
		{"hypoxemia", func(v *VitalSigns) { v.OxygenSaturation = 90 }, LevelHigh, "Severe hypoxemia"},
		{"bradypnea", func(v *VitalSigns) { v.RespiratoryRate = 12 }, LevelMedium, "Bradypnea"},
		{"tachypnea", func(v *VitalSigns) { v.RespiratoryRate = 20 }, LevelMedium, "Tachypnea"},
		{"severe bradypnea", func(v *VitalSigns) { v.RespiratoryRate = 6 }, LevelHigh, "Severe bradypnea"},
		{"severe tachypnea", func(v *VitalSigns) { v.RespiratoryRate = 45 }, LevelHigh, "Severe tachypnea"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := normalVitals()
			tt.mutate(v)
			a := AssessVitals(v)
			if a.Level != tt.level {
				t.Errorf("level = %s, want %s", a.Level, tt.level)
			}
			if !containsLine(a.Reasoning, tt.line) {
				t.Errorf("expected line containing %q, got %v", tt.line, a.Reasoning)
			}
		})
	}
}

func TestAssessVitals_CountsTiers(t *testing.T) {
	v := &VitalSigns{
		BloodPressure:    "200/125",
		PulseRate:        110,
		Temperature:      39,
		OxygenSaturation: 88,
		RespiratoryRate:  16,
	}
	a := AssessVitals(v)
	if a.CriticalCount != 2 || a.WarningCount != 2 {
		t.Errorf("expected 2 critical and 2 warning, got %d/%d", a.CriticalCount, a.WarningCount)
	}
	if len(a.Reasoning) != 4 {
		t.Errorf("expected 4 lines, got %v", a.Reasoning)
	}
}

func TestAssessVitals_SkipsUnrecordedChannels(t *testing.T) {
	a := AssessVitals(&VitalSigns{PulseRate: 80})
	if a.Level != LevelLow || len(a.Reasoning) != 0 {
		t.Errorf("expected low with no reasoning, got %s %v", a.Level, a.Reasoning)
	}
	want := []string{
		"blood pressure not recorded; channel not scored",
		"temperature not recorded; channel not scored",
		"oxygen saturation not recorded; channel not scored",
		"respiratory rate not recorded; channel not scored",
	}
	if !reflect.DeepEqual(a.Warnings, want) {
		t.Errorf("unexpected warnings %v", a.Warnings)
	}
}

func TestSuggestPriority_ZeroChannelsReported(t *testing.T) {
	v := normalVitals()
	v.PulseRate = 0
	v.OxygenSaturation = 0

	got := SuggestPriority(v, nil, 30)
	if len(got.Warnings) != 2 {
		t.Fatalf("expected one warning per skipped channel, got %v", got.Warnings)
	}
	if !containsLine(got.Warnings, "pulse rate not recorded") || !containsLine(got.Warnings, "oxygen saturation not recorded") {
		t.Errorf("skipped channels not named: %v", got.Warnings)
	}
}

func TestSuggestPriority_AllChannelsRecordedNoWarnings(t *testing.T) {
	if got := SuggestPriority(normalVitals(), nil, 30); len(got.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", got.Warnings)
	}
}

func TestScoreSymptoms(t *testing.T) {
	score, lines := ScoreSymptoms([]string{"Chest pain with vomiting", "rash", "  ", "itchy eyes"})
	if score != 6 {
		t.Errorf("expected score 6, got %d", score)
	}
	if len(lines) != 3 {
		t.Errorf("expected 3 lines, got %v", lines)
	}
	if lines[0] != "High-severity symptom: chest pain" {
		t.Errorf("unexpected first line %q", lines[0])
	}
}

func TestParseBloodPressure(t *testing.T) {
	bp, err := ParseBloodPressure(" 135 / 85 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bp.Systolic != 135 || bp.Diastolic != 85 {
		t.Errorf("got %+v", bp)
	}
	for _, bad := range []string{"", "120", "120/80/70", "abc/80", "120/"} {
		if _, err := ParseBloodPressure(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
