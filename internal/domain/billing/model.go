package billing

import (
	"time"

	"github.com/google/uuid"
)

// Invoice groups billing line items for one patient.
type Invoice struct {
	ID        uuid.UUID     `json:"id"`
	PatientID uuid.UUID     `json:"patient_id"`
	Items     []BillingItem `json:"items" validate:"dive"`
	CreatedAt time.Time     `json:"created_at"`
}

// BillingItem is one invoice line.
type BillingItem struct {
	ID          uuid.UUID `json:"id"`
	ServiceName string    `json:"service_name" validate:"required"`
	Quantity    int       `json:"quantity" validate:"gte=0"`
	UnitPrice   float64   `json:"unit_price" validate:"gte=0"`
	Total       float64   `json:"total"`
	Department  string    `json:"department,omitempty"`
}

// NewBillingItem returns an item whose Total is quantity × unitPrice.
func NewBillingItem(serviceName string, quantity int, unitPrice float64, department string) BillingItem {
	return BillingItem{
		ID:          uuid.New(),
		ServiceName: serviceName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Total:       float64(quantity) * unitPrice,
		Department:  department,
	}
}

// ServiceCharge is a reference list price.
type ServiceCharge struct {
	ServiceName string  `json:"service_name" validate:"required"`
	Amount      float64 `json:"amount" validate:"gte=0"`
}

// Anomaly annotates one flagged line item. ItemIndex is the item's position
// in the invoice, so flags stay matchable when items carry no ID.
type Anomaly struct {
	ItemID          uuid.UUID `json:"item_id"`
	ItemIndex       int       `json:"item_index"`
	IsAnomaly       bool      `json:"is_anomaly"`
	Score           float64   `json:"score"`
	Reason          string    `json:"reason"`
	SuggestedAction string    `json:"suggested_action,omitempty"`
}

// Report is the detector's output for one invoice.
type Report struct {
	HasAnomalies     bool      `json:"has_anomalies"`
	Anomalies        []Anomaly `json:"anomalies"`
	OverallRiskScore float64   `json:"overall_risk_score"`
}
