package numbering

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownCategory = errors.New("unknown numbering category")

// Category selects one of the independently numbered patient streams.
type Category string

const (
	CategoryOutpatient Category = "outpatient"
	CategoryInpatient  Category = "inpatient"
	CategoryEmergency  Category = "emergency"
)

// Categories lists every category in a fixed order. Stores that lock more
// than one category acquire them in this order.
var Categories = []Category{CategoryOutpatient, CategoryInpatient, CategoryEmergency}

// ParseCategory accepts a category name in any case.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryOutpatient, CategoryInpatient, CategoryEmergency:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// ResetInterval controls when the sequence returns to StartingSequence.
type ResetInterval string

const (
	ResetDaily        ResetInterval = "daily"
	ResetMonthly      ResetInterval = "monthly"
	ResetYearly       ResetInterval = "yearly"
	ResetNever        ResetInterval = "never"
	ResetPerAdmission ResetInterval = "per-admission"
)

func (r ResetInterval) Valid() bool {
	switch r {
	case ResetDaily, ResetMonthly, ResetYearly, ResetNever, ResetPerAdmission:
		return true
	}
	return false
}

// CategorySettings is the persisted numbering state of one category.
type CategorySettings struct {
	Enabled          bool          `json:"enabled"`
	Format           string        `json:"format"`
	StartingSequence int           `json:"starting_sequence"`
	CurrentSequence  int           `json:"current_sequence"`
	ResetInterval    ResetInterval `json:"reset_interval"`
	LastReset        *time.Time    `json:"last_reset,omitempty"`
}

// Clone returns a deep copy.
func (cs CategorySettings) Clone() CategorySettings {
	if cs.LastReset != nil {
		t := *cs.LastReset
		cs.LastReset = &t
	}
	return cs
}

func (cs CategorySettings) validate(c Category) error {
	if !cs.ResetInterval.Valid() {
		return fmt.Errorf("%s: unknown reset interval %q", c, cs.ResetInterval)
	}
	if cs.ResetInterval == ResetPerAdmission && c != CategoryInpatient {
		return fmt.Errorf("%s: per-admission reset applies to inpatient numbering only", c)
	}
	if cs.StartingSequence < 1 {
		return fmt.Errorf("%s: starting sequence must be positive", c)
	}
	if cs.CurrentSequence < 0 {
		return fmt.Errorf("%s: current sequence must not be negative", c)
	}
	if !strings.Contains(cs.Format, "{sequence}") {
		return fmt.Errorf("%s: format must contain {sequence}", c)
	}
	return nil
}

// Settings is the full numbering configuration.
type Settings struct {
	Outpatient CategorySettings `json:"outpatient"`
	Inpatient  CategorySettings `json:"inpatient"`
	Emergency  CategorySettings `json:"emergency"`
}

// DefaultSettings returns the out-of-the-box configuration: every category
// enabled and starting at 1.
func DefaultSettings() *Settings {
	return &Settings{
		Outpatient: CategorySettings{
			Enabled:          true,
			Format:           "OP{year}{month}{day}{sequence}",
			StartingSequence: 1,
			CurrentSequence:  1,
			ResetInterval:    ResetDaily,
		},
		Inpatient: CategorySettings{
			Enabled:          true,
			Format:           "IP{year}{sequence}",
			StartingSequence: 1,
			CurrentSequence:  1,
			ResetInterval:    ResetYearly,
		},
		Emergency: CategorySettings{
			Enabled:          true,
			Format:           "EM{year}{month}{day}{sequence}",
			StartingSequence: 1,
			CurrentSequence:  1,
			ResetInterval:    ResetDaily,
		},
	}
}

// For returns a pointer to the settings of category c.
func (s *Settings) For(c Category) (*CategorySettings, error) {
	switch c {
	case CategoryOutpatient:
		return &s.Outpatient, nil
	case CategoryInpatient:
		return &s.Inpatient, nil
	case CategoryEmergency:
		return &s.Emergency, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
}

// Clone returns a deep copy.
func (s *Settings) Clone() *Settings {
	return &Settings{
		Outpatient: s.Outpatient.Clone(),
		Inpatient:  s.Inpatient.Clone(),
		Emergency:  s.Emergency.Clone(),
	}
}

func (s *Settings) Validate() error {
	var errs []error
	for _, c := range Categories {
		cs, _ := s.For(c)
		if err := cs.validate(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
