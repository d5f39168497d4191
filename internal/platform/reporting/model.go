package reporting

import (
	"fmt"
	"strings"
	"time"
)

// Period is the bucket width of a performance report.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return p, nil
	}
	return "", fmt.Errorf("unknown report period %q", s)
}

// ConsultationCompleted is the only status counted toward average duration.
const ConsultationCompleted = "completed"

type Consultation struct {
	ID        string     `json:"id"`
	PatientID string     `json:"patient_id" validate:"required"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"started_at" validate:"required"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

type LabOrder struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patient_id" validate:"required"`
	OrderedAt time.Time `json:"ordered_at" validate:"required"`
}

type Invoice struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patient_id" validate:"required"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"created_at" validate:"required"`
}

type Payment struct {
	ID        string    `json:"id"`
	InvoiceID string    `json:"invoice_id"`
	Amount    float64   `json:"amount"`
	PaidAt    time.Time `json:"paid_at" validate:"required"`
}

// Input is the activity a report is computed from. Location selects the
// calendar used for bucketing; nil means UTC.
type Input struct {
	Consultations []Consultation `json:"consultations" validate:"dive"`
	LabTests      []LabOrder     `json:"lab_tests" validate:"dive"`
	Invoices      []Invoice      `json:"invoices" validate:"dive"`
	Payments      []Payment      `json:"payments" validate:"dive"`
	Location      *time.Location `json:"-" validate:"-"`
}

// PeriodStats aggregates one bucket.
type PeriodStats struct {
	Start                  time.Time `json:"start"`
	Label                  string    `json:"label"`
	DistinctPatients       int       `json:"distinct_patients"`
	Consultations          int       `json:"consultations"`
	LabTests               int       `json:"lab_tests"`
	Invoices               int       `json:"invoices"`
	Billed                 float64   `json:"billed"`
	Revenue                float64   `json:"revenue"`
	AvgConsultationMinutes float64   `json:"avg_consultation_minutes"`
}

// Direction of a metric between the two most recent periods.
type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

type Trend struct {
	Metric    string    `json:"metric"`
	Current   float64   `json:"current"`
	Previous  float64   `json:"previous"`
	Change    string    `json:"change"`
	Direction Direction `json:"direction"`
}

type Forecast struct {
	Metric string  `json:"metric"`
	Slope  float64 `json:"slope"`
	Next   float64 `json:"next"`
}

type Report struct {
	Period    Period        `json:"period"`
	Periods   []PeriodStats `json:"periods"`
	Trends    []Trend       `json:"trends"`
	Forecasts []Forecast    `json:"forecasts"`
}
