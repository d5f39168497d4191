package triage

// Severity is a symptom severity tier and the score each match contributes.
type Severity int

const (
	SeverityLow    Severity = 1
	SeverityMedium Severity = 2
	SeverityHigh   Severity = 3
)

func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	case SeverityLow:
		return "low"
	}
	return "unknown"
}

// lexiconTier pairs a severity with its lower-cased terms.
type lexiconTier struct {
	severity Severity
	terms    []string
}

// symptomLexicon is scanned highest severity first.
var symptomLexicon = []lexiconTier{
	{SeverityHigh, []string{
		"chest pain", "difficulty breathing", "shortness of breath", "severe bleeding",
		"unconscious", "unresponsive", "seizure", "stroke", "heart attack",
	}},
	{SeverityMedium, []string{
		"moderate bleeding", "high fever", "vomiting", "dehydration", "severe pain",
		"fracture", "head injury", "allergic reaction",
	}},
	{SeverityLow, []string{
		"mild pain", "cough", "cold", "sore throat", "headache", "nausea", "rash",
		"minor injury",
	}},
}
