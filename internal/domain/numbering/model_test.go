package numbering

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	for in, want := range map[string]Category{
		"outpatient":  CategoryOutpatient,
		" Inpatient ": CategoryInpatient,
		"EMERGENCY":   CategoryEmergency,
	} {
		got, err := ParseCategory(in)
		if err != nil || got != want {
			t.Errorf("ParseCategory(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseCategory("dental"); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestDefaultSettings_Valid(t *testing.T) {
	s := DefaultSettings()
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	for _, c := range Categories {
		cs, _ := s.For(c)
		if !cs.Enabled || cs.StartingSequence != 1 || cs.CurrentSequence != 1 {
			t.Errorf("%s: unexpected defaults %+v", c, cs)
		}
	}
	if s.Inpatient.ResetInterval != ResetYearly || s.Outpatient.ResetInterval != ResetDaily {
		t.Errorf("unexpected reset intervals %+v", s)
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		errSub string
	}{
		{"unknown interval", func(s *Settings) { s.Outpatient.ResetInterval = "hourly" }, "unknown reset interval"},
		{"per-admission outpatient", func(s *Settings) { s.Outpatient.ResetInterval = ResetPerAdmission }, "inpatient numbering only"},
		{"zero start", func(s *Settings) { s.Emergency.StartingSequence = 0 }, "starting sequence"},
		{"negative current", func(s *Settings) { s.Inpatient.CurrentSequence = -1 }, "current sequence"},
		{"no sequence token", func(s *Settings) { s.Inpatient.Format = "IP{year}" }, "{sequence}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(s)
			err := s.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("expected error containing %q, got %v", tt.errSub, err)
			}
		})
	}

	s := DefaultSettings()
	s.Inpatient.ResetInterval = ResetPerAdmission
	if err := s.Validate(); err != nil {
		t.Errorf("per-admission is valid for inpatient: %v", err)
	}
}

func TestSettings_CloneIsDeep(t *testing.T) {
	last := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := DefaultSettings()
	s.Outpatient.LastReset = &last

	c := s.Clone()
	*c.Outpatient.LastReset = last.AddDate(1, 0, 0)
	c.Outpatient.CurrentSequence = 99
	if !s.Outpatient.LastReset.Equal(last) || s.Outpatient.CurrentSequence != 1 {
		t.Error("clone shares state with the original")
	}
}
