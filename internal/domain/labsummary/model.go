package labsummary

import "time"

// Status is the lifecycle state of an ordered lab test.
type Status string

const (
	StatusPending    Status = "pending"
	StatusSent       Status = "sent"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// LabTest is one ordered test.
type LabTest struct {
	ID          string      `json:"id"`
	PatientID   string      `json:"patient_id,omitempty"`
	Type        string      `json:"type" validate:"required"`
	Category    string      `json:"category"`
	Status      Status      `json:"status" validate:"required,oneof=pending sent in-progress completed cancelled"`
	SampleID    string      `json:"sample_id,omitempty"`
	OrderedAt   *time.Time  `json:"ordered_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	Results     *LabResults `json:"results,omitempty"`
}

// LabResults holds a free-form map of named result fields. Numeric values
// (or numeric strings) are summarized; anything else is ignored.
type LabResults struct {
	CustomFields map[string]interface{} `json:"custom_fields,omitempty"`
	Notes        string                 `json:"notes,omitempty"`
}

// Summary is the summarizer's output.
type Summary struct {
	Summary         []string `json:"summary"`
	AbnormalResults []string `json:"abnormal_results"`
	CriticalResults []string `json:"critical_results"`
	NormalResults   []string `json:"normal_results"`
}

// Flag is the classification of one numeric value.
type Flag string

const (
	FlagNormal Flag = "normal"
	FlagLow    Flag = "low"
	FlagHigh   Flag = "high"
)
