package triage

import (
	"encoding/json"
	"fmt"
	"time"
)

// Priority is the triage priority suggested for a patient.
type Priority string

const (
	PriorityNormal   Priority = "normal"
	PriorityUrgent   Priority = "urgent"
	PriorityCritical Priority = "critical"
)

// Level is the intermediate severity derived from vital signs alone.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// AVPULevel is the AVPU responsiveness scale.
type AVPULevel string

const (
	AVPUAlert        AVPULevel = "alert"
	AVPUVerbal       AVPULevel = "verbal"
	AVPUPain         AVPULevel = "pain"
	AVPUUnresponsive AVPULevel = "unresponsive"
)

// Valid reports whether a is one of the four AVPU levels.
func (a AVPULevel) Valid() bool {
	switch a {
	case AVPUAlert, AVPUVerbal, AVPUPain, AVPUUnresponsive:
		return true
	}
	return false
}

// GlasgowComaScale holds the three GCS components. Total always equals
// Eye+Verbal+Motor; NewGlasgowComaScale and UnmarshalJSON maintain it.
type GlasgowComaScale struct {
	Eye    int `json:"eye"`
	Verbal int `json:"verbal"`
	Motor  int `json:"motor"`
	Total  int `json:"total"`
}

// NewGlasgowComaScale builds a validated scale with its total computed.
func NewGlasgowComaScale(eye, verbal, motor int) (*GlasgowComaScale, error) {
	g := &GlasgowComaScale{Eye: eye, Verbal: verbal, Motor: motor}
	g.recompute()
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *GlasgowComaScale) recompute() {
	g.Total = g.Eye + g.Verbal + g.Motor
}

// Validate checks each component against its clinical range.
func (g *GlasgowComaScale) Validate() error {
	if g.Eye < 1 || g.Eye > 4 {
		return fmt.Errorf("gcs eye response must be 1-4, got %d", g.Eye)
	}
	if g.Verbal < 1 || g.Verbal > 5 {
		return fmt.Errorf("gcs verbal response must be 1-5, got %d", g.Verbal)
	}
	if g.Motor < 1 || g.Motor > 6 {
		return fmt.Errorf("gcs motor response must be 1-6, got %d", g.Motor)
	}
	return nil
}

// UnmarshalJSON decodes the components and ignores any supplied total.
func (g *GlasgowComaScale) UnmarshalJSON(data []byte) error {
	type raw GlasgowComaScale
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*g = GlasgowComaScale(r)
	g.recompute()
	return nil
}

// VitalSigns is one observation snapshot. It is never mutated after it is
// recorded; re-assessment takes a new snapshot.
type VitalSigns struct {
	BloodPressure    string            `json:"blood_pressure"`
	PulseRate        int               `json:"pulse_rate"`
	Temperature      float64           `json:"temperature"`
	OxygenSaturation int               `json:"oxygen_saturation"`
	RespiratoryRate  int               `json:"respiratory_rate"`
	RecordedAt       time.Time         `json:"recorded_at"`
	RecordedBy       string            `json:"recorded_by"`
	GCS              *GlasgowComaScale `json:"gcs,omitempty"`
	AVPU             *AVPULevel        `json:"avpu,omitempty"`
}

// Validate checks the optional neurological assessments.
func (v *VitalSigns) Validate() error {
	if v.GCS != nil {
		if err := v.GCS.Validate(); err != nil {
			return err
		}
	}
	if v.AVPU != nil && !v.AVPU.Valid() {
		return fmt.Errorf("invalid avpu level %q", *v.AVPU)
	}
	return nil
}

// Suggestion is the scorer's output.
type Suggestion struct {
	Priority   Priority `json:"priority"`
	Confidence float64  `json:"confidence"`
	Reasoning  []string `json:"reasoning"`
	// Warnings reports input problems that were tolerated, such as an
	// unparseable blood pressure.
	Warnings []string `json:"warnings,omitempty"`
}
