package labsummary

import "strings"

// ReferenceRange is the adult reference interval for one analyte.
type ReferenceRange struct {
	Label string
	Min   float64
	Max   float64
	Unit  string
	// LowPhrases and HighPhrases are narrative lines for out-of-range values.
	// When empty the generic phrase is used.
	LowPhrases  []string
	HighPhrases []string
}

// referenceRanges is keyed by lower-cased result field name.
var referenceRanges = map[string]ReferenceRange{
	// ===== COMPLETE BLOOD COUNT =====
	"wbc": {Label: "White blood cell count", Min: 4.0, Max: 11.0, Unit: "x10^3/uL",
		LowPhrases:  []string{"Low white blood cell count may indicate a weakened immune response"},
		HighPhrases: []string{"Elevated white blood cell count suggests possible infection or inflammation"},
	},
	"rbc": {Label: "Red blood cell count", Min: 4.2, Max: 5.9, Unit: "x10^6/uL"},
	"hemoglobin": {Label: "Hemoglobin", Min: 12.0, Max: 17.5, Unit: "g/dL",
		LowPhrases:  []string{"Low hemoglobin suggests anemia"},
		HighPhrases: []string{"Elevated hemoglobin may indicate dehydration or polycythemia"},
	},
	"hematocrit": {Label: "Hematocrit", Min: 36, Max: 52, Unit: "%"},
	"platelets": {Label: "Platelet count", Min: 150, Max: 450, Unit: "x10^3/uL",
		LowPhrases:  []string{"Low platelet count increases bleeding risk"},
		HighPhrases: []string{"Elevated platelet count may increase clotting risk"},
	},
	"mcv": {Label: "Mean corpuscular volume", Min: 80, Max: 100, Unit: "fL"},

	// ===== LIVER FUNCTION =====
	"alt": {Label: "ALT", Min: 7, Max: 56, Unit: "U/L",
		HighPhrases: []string{"Elevated ALT may indicate liver stress or injury"},
	},
	"ast": {Label: "AST", Min: 10, Max: 40, Unit: "U/L",
		HighPhrases: []string{"Elevated AST may indicate liver or muscle injury"},
	},
	"alp":       {Label: "Alkaline phosphatase", Min: 44, Max: 147, Unit: "U/L"},
	"bilirubin": {Label: "Total bilirubin", Min: 0.1, Max: 1.2, Unit: "mg/dL"},
	"albumin":   {Label: "Albumin", Min: 3.5, Max: 5.0, Unit: "g/dL"},

	// ===== LIPID PROFILE =====
	"cholesterol": {Label: "Total cholesterol", Min: 125, Max: 200, Unit: "mg/dL",
		HighPhrases: []string{"Elevated cholesterol increases cardiovascular risk"},
	},
	"ldl":           {Label: "LDL cholesterol", Min: 0, Max: 100, Unit: "mg/dL"},
	"hdl":           {Label: "HDL cholesterol", Min: 40, Max: 60, Unit: "mg/dL"},
	"triglycerides": {Label: "Triglycerides", Min: 0, Max: 150, Unit: "mg/dL"},

	// ===== GLYCEMIC =====
	"glucose": {Label: "Glucose", Min: 70, Max: 100, Unit: "mg/dL",
		LowPhrases:  []string{"Low glucose level indicates hypoglycemia"},
		HighPhrases: []string{"Elevated glucose level suggests hyperglycemia"},
	},
	"hba1c": {Label: "HbA1c", Min: 4.0, Max: 5.6, Unit: "%",
		HighPhrases: []string{"Elevated HbA1c suggests poor long-term glucose control"},
	},

	// ===== RENAL =====
	"creatinine": {Label: "Creatinine", Min: 0.6, Max: 1.2, Unit: "mg/dL",
		HighPhrases: []string{"Elevated creatinine may indicate reduced kidney function"},
	},
	"bun":       {Label: "Blood urea nitrogen", Min: 7, Max: 20, Unit: "mg/dL"},
	"uric_acid": {Label: "Uric acid", Min: 3.5, Max: 7.2, Unit: "mg/dL"},

	// ===== ELECTROLYTES =====
	"sodium": {Label: "Sodium", Min: 135, Max: 145, Unit: "mEq/L",
		LowPhrases:  []string{"Low sodium level indicates hyponatremia"},
		HighPhrases: []string{"Elevated sodium level indicates hypernatremia"},
	},
	"potassium": {Label: "Potassium", Min: 3.5, Max: 5.0, Unit: "mEq/L",
		LowPhrases:  []string{"Low potassium level indicates hypokalemia"},
		HighPhrases: []string{"Elevated potassium level indicates hyperkalemia"},
	},
	"chloride": {Label: "Chloride", Min: 96, Max: 106, Unit: "mEq/L"},
	"calcium":  {Label: "Calcium", Min: 8.5, Max: 10.5, Unit: "mg/dL"},
}

// LookupRange returns the reference range for a result field name.
func LookupRange(field string) (ReferenceRange, bool) {
	r, ok := referenceRanges[strings.ToLower(strings.TrimSpace(field))]
	return r, ok
}

// KnownFields returns the number of analytes with a reference range.
func KnownFields() int {
	return len(referenceRanges)
}
