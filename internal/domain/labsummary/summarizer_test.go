package labsummary

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"testing"
)

func completed(fields map[string]interface{}) LabTest {
	return LabTest{
		Type:     "CBC",
		Category: "hematology",
		Status:   StatusCompleted,
		Results:  &LabResults{CustomFields: fields},
	}
}

func TestSummarize_CriticalLowWBC(t *testing.T) {
	out := Summarize(completed(map[string]interface{}{"wbc": 2.0}))

	want := "WBC: 2 x10^3/uL (Low - Normal range: 4-11 x10^3/uL)"
	if !reflect.DeepEqual(out.AbnormalResults, []string{want}) {
		t.Errorf("abnormal = %v, want [%s]", out.AbnormalResults, want)
	}
	if !reflect.DeepEqual(out.CriticalResults, []string{want}) {
		t.Errorf("critical = %v", out.CriticalResults)
	}
	if len(out.Summary) == 0 || !strings.HasPrefix(out.Summary[0], "ATTENTION") {
		t.Errorf("expected ATTENTION first, got %v", out.Summary)
	}
	if len(out.NormalResults) != 0 {
		t.Errorf("expected no normal results, got %v", out.NormalResults)
	}
}

func TestSummarize_NoResults(t *testing.T) {
	out := Summarize(LabTest{Type: "CBC", Status: StatusCompleted})
	if !reflect.DeepEqual(out.Summary, []string{"No detailed results available for analysis"}) {
		t.Errorf("summary = %v", out.Summary)
	}
	if len(out.AbnormalResults)+len(out.CriticalResults)+len(out.NormalResults) != 0 {
		t.Errorf("expected empty lists, got %+v", out)
	}

	out = Summarize(LabTest{Type: "CBC", Status: StatusCompleted, Results: &LabResults{Notes: "haemolysed"}})
	if out.Summary[0] != noDataLine {
		t.Errorf("expected no-data line for missing custom fields, got %v", out.Summary)
	}
}

func TestSummarize_NotCompleted(t *testing.T) {
	out := Summarize(LabTest{Type: "CBC", Status: StatusInProgress, Results: &LabResults{
		CustomFields: map[string]interface{}{"wbc": 2.0},
	}})
	if len(out.Summary) != 1 || !strings.Contains(out.Summary[0], "in-progress") {
		t.Errorf("unexpected summary %v", out.Summary)
	}
	if len(out.AbnormalResults) != 0 {
		t.Error("expected no classification before completion")
	}
}

func TestSummarize_AllNormal(t *testing.T) {
	out := Summarize(completed(map[string]interface{}{"hemoglobin": 14.0, "Glucose": 90}))
	if !reflect.DeepEqual(out.Summary, []string{"All results within normal ranges"}) {
		t.Errorf("summary = %v", out.Summary)
	}
	if len(out.NormalResults) != 2 {
		t.Errorf("expected 2 normal lines, got %v", out.NormalResults)
	}
	if out.NormalResults[0] != "GLUCOSE: 90 mg/dL (Normal)" {
		t.Errorf("unexpected first normal line %q", out.NormalResults[0])
	}
}

func TestSummarize_UnknownAndNonNumericSkipped(t *testing.T) {
	out := Summarize(completed(map[string]interface{}{
		"vitamin_x": 999.0,
		"comment":   "see notes",
		"sodium":    "not measured",
		"potassium": "4.2",
		"wbc":       "NaN",
		"glucose":   "Inf",
		"alt":       math.Inf(1),
	}))
	if len(out.NormalResults) != 1 || !strings.HasPrefix(out.NormalResults[0], "POTASSIUM: 4.2") {
		t.Errorf("expected only potassium, got %v", out.NormalResults)
	}
	if len(out.AbnormalResults) != 0 {
		t.Errorf("unexpected abnormal %v", out.AbnormalResults)
	}
	if len(out.CriticalResults) != 0 {
		t.Errorf("non-finite values must not be reported, got %v", out.CriticalResults)
	}
}

func TestSummarize_HighAndCriticalHigh(t *testing.T) {
	out := Summarize(completed(map[string]interface{}{
		"glucose": 120,
		"alt":     90,
	}))
	if len(out.AbnormalResults) != 2 {
		t.Fatalf("expected 2 abnormal, got %v", out.AbnormalResults)
	}
	// alt 90 > 56*1.5 = 84
	if len(out.CriticalResults) != 1 || !strings.HasPrefix(out.CriticalResults[0], "ALT: 90 U/L (High") {
		t.Errorf("critical = %v", out.CriticalResults)
	}
	want := []string{
		attentionLine,
		"Elevated ALT may indicate liver stress or injury",
		"Elevated glucose level suggests hyperglycemia",
	}
	if !reflect.DeepEqual(out.Summary, want) {
		t.Errorf("summary = %v, want %v", out.Summary, want)
	}
}

func TestSummarize_TruncatesToThreeLines(t *testing.T) {
	out := Summarize(completed(map[string]interface{}{
		"wbc":       1.0,
		"sodium":    120,
		"potassium": 6.0,
		"glucose":   50,
		"ast":       60,
	}))
	if len(out.Summary) != 3 {
		t.Fatalf("expected 3 summary lines, got %v", out.Summary)
	}
	if out.Summary[0] != attentionLine {
		t.Errorf("expected attention line first, got %q", out.Summary[0])
	}
	if len(out.AbnormalResults) != 5 {
		t.Errorf("expected 5 abnormal, got %d", len(out.AbnormalResults))
	}
}

func TestSummarize_GenericPhrase(t *testing.T) {
	out := Summarize(completed(map[string]interface{}{"chloride": 110}))
	if out.Summary[0] != "Chloride is above the normal range (110 mEq/L)" {
		t.Errorf("unexpected phrase %q", out.Summary[0])
	}
}

func TestSummarize_Idempotent(t *testing.T) {
	test := completed(map[string]interface{}{
		"wbc": 2.0, "rbc": 7.0, "hdl": 30, "calcium": 9, "triglycerides": 400,
	})
	first, _ := json.Marshal(Summarize(test))
	for i := 0; i < 20; i++ {
		again, _ := json.Marshal(Summarize(test))
		if string(again) != string(first) {
			t.Fatalf("run %d differs:\n%s\n%s", i, again, first)
		}
	}
}

func TestClassify_Boundaries(t *testing.T) {
	r, _ := LookupRange("WBC")
	if f := Classify("wbc", 4.0, r); f.Flag != FlagNormal {
		t.Errorf("min is inclusive, got %s", f.Flag)
	}
	if f := Classify("wbc", 11.0, r); f.Flag != FlagNormal {
		t.Errorf("max is inclusive, got %s", f.Flag)
	}
	if f := Classify("wbc", 2.8, r); f.Flag != FlagLow || f.Critical {
		t.Errorf("2.8 is low but not critical, got %+v", f)
	}
	if f := Classify("wbc", 16.5, r); f.Flag != FlagHigh || f.Critical {
		t.Errorf("16.5 is high but not critical, got %+v", f)
	}
	if f := Classify("wbc", 16.6, r); !f.Critical {
		t.Errorf("16.6 should be critical, got %+v", f)
	}
}

func TestReferenceRanges_Table(t *testing.T) {
	if KnownFields() != 24 {
		t.Errorf("expected 24 analytes, got %d", KnownFields())
	}
	for key, r := range referenceRanges {
		if key != strings.ToLower(key) {
			t.Errorf("key %q must be lower case", key)
		}
		if r.Min > r.Max {
			t.Errorf("%s: min %v > max %v", key, r.Min, r.Max)
		}
		if r.Unit == "" || r.Label == "" {
			t.Errorf("%s: missing unit or label", key)
		}
	}
}
