package triage

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidBloodPressure is returned when a reading is not "systolic/diastolic".
var ErrInvalidBloodPressure = errors.New("invalid blood pressure")

// BloodPressure is a parsed systolic/diastolic pair in mmHg.
type BloodPressure struct {
	Systolic  int
	Diastolic int
}

func (bp BloodPressure) String() string {
	return fmt.Sprintf("%d/%d", bp.Systolic, bp.Diastolic)
}

// defaultBloodPressure stands in for unparseable readings.
var defaultBloodPressure = BloodPressure{Systolic: 120, Diastolic: 80}

// ParseBloodPressure parses "systolic/diastolic".
func ParseBloodPressure(s string) (BloodPressure, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return BloodPressure{}, fmt.Errorf("%w: %q", ErrInvalidBloodPressure, s)
	}
	sys, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return BloodPressure{}, fmt.Errorf("%w: %q", ErrInvalidBloodPressure, s)
	}
	dia, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return BloodPressure{}, fmt.Errorf("%w: %q", ErrInvalidBloodPressure, s)
	}
	return BloodPressure{Systolic: sys, Diastolic: dia}, nil
}

// Tier is the alert tier a single vital-sign channel falls into.
type Tier int

const (
	TierNone Tier = iota
	TierWarning
	TierCritical
)

// finding is one triggered vital-sign channel.
type finding struct {
	tier Tier
	line string
}

// Channel thresholds. All bounds are inclusive.
const (
	bpCrisisSystolic      = 180
	bpCrisisDiastolic     = 120
	bpStage2Systolic      = 140
	bpStage2Diastolic     = 90
	bpHypotensionSystolic = 90
	bpHypotensionDiastol  = 60
	bpLowSystolic         = 100
	bpLowDiastolic        = 65

	tempFever        = 38.5
	tempHyperpyrexia = 41.1
	tempHypothermia  = 35.0

	pulseLow          = 55
	pulseHigh         = 100
	pulseCriticalLow  = 25
	pulseCriticalHigh = 150

	spo2Low      = 94
	spo2Critical = 90

	respLow          = 12
	respHigh         = 20
	respCriticalLow  = 6
	respCriticalHigh = 45
)

func classifyBloodPressure(bp BloodPressure) *finding {
	switch {
	case bp.Systolic >= bpCrisisSystolic || bp.Diastolic >= bpCrisisDiastolic:
		return &finding{TierCritical, fmt.Sprintf("Hypertensive crisis (%s mmHg)", bp)}
	case bp.Systolic <= bpHypotensionSystolic || bp.Diastolic <= bpHypotensionDiastol:
		return &finding{TierCritical, fmt.Sprintf("Hypotension (%s mmHg)", bp)}
	case bp.Systolic >= bpStage2Systolic || bp.Diastolic >= bpStage2Diastolic:
		return &finding{TierWarning, fmt.Sprintf("Stage 2 hypertension (%s mmHg)", bp)}
	case bp.Systolic <= bpLowSystolic || bp.Diastolic <= bpLowDiastolic:
		return &finding{TierWarning, fmt.Sprintf("Mild hypotension (%s mmHg)", bp)}
	}
	return nil
}

func classifyTemperature(t float64) *finding {
	switch {
	case t <= tempHypothermia:
		return &finding{TierCritical, fmt.Sprintf("Hypothermia (%.1f°C)", t)}
	case t >= tempHyperpyrexia:
		return &finding{TierCritical, fmt.Sprintf("Hyperpyrexia (%.1f°C)", t)}
	case t >= tempFever:
		return &finding{TierWarning, fmt.Sprintf("Fever (%.1f°C)", t)}
	}
	return nil
}

func classifyPulse(p int) *finding {
	switch {
	case p <= pulseCriticalLow:
		return &finding{TierCritical, fmt.Sprintf("Severe bradycardia (%d bpm)", p)}
	case p >= pulseCriticalHigh:
		return &finding{TierCritical, fmt.Sprintf("Severe tachycardia (%d bpm)", p)}
	case p <= pulseLow:
		return &finding{TierWarning, fmt.Sprintf("Bradycardia (%d bpm)", p)}
	case p >= pulseHigh:
		return &finding{TierWarning, fmt.Sprintf("Tachycardia (%d bpm)", p)}
	}
	return nil
}

func classifyOxygen(s int) *finding {
	switch {
	case s <= spo2Critical:
		return &finding{TierCritical, fmt.Sprintf("Severe hypoxemia (SpO2 %d%%)", s)}
	case s <= spo2Low:
		return &finding{TierWarning, fmt.Sprintf("Low oxygen saturation (SpO2 %d%%)", s)}
	}
	return nil
}

func classifyRespiration(r int) *finding {
	switch {
	case r <= respCriticalLow:
		return &finding{TierCritical, fmt.Sprintf("Severe bradypnea (%d breaths/min)", r)}
	case r >= respCriticalHigh:
		return &finding{TierCritical, fmt.Sprintf("Severe tachypnea (%d breaths/min)", r)}
	case r <= respLow:
		return &finding{TierWarning, fmt.Sprintf("Bradypnea (%d breaths/min)", r)}
	case r >= respHigh:
		return &finding{TierWarning, fmt.Sprintf("Tachypnea (%d breaths/min)", r)}
	}
	return nil
}
