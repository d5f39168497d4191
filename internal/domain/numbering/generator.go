package numbering

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/clinassist/internal/platform/telemetry"
)

// Generator issues sequential patient numbers. Each call is an atomic
// read-modify-write of one category through the Store.
type Generator struct {
	store   Store
	now     func() time.Time
	logger  zerolog.Logger
	metrics *telemetry.Provider
}

type Option func(*Generator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

func WithMetrics(m *telemetry.Provider) Option {
	return func(g *Generator) { g.metrics = m }
}

func NewGenerator(store Store, opts ...Option) *Generator {
	g := &Generator{
		store:  store,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Store returns the backing store.
func (g *Generator) Store() Store {
	return g.store
}

// Next issues the next number for category c. A disabled category yields
// an empty string and no error.
func (g *Generator) Next(ctx context.Context, c Category) (string, error) {
	c, err := ParseCategory(string(c))
	if err != nil {
		return "", err
	}

	var (
		number string
		reset  bool
	)
	err = g.store.Update(ctx, c, func(cs *CategorySettings) error {
		if !cs.Enabled {
			return nil
		}
		now := g.now()
		if shouldReset(cs.ResetInterval, cs.LastReset, now) {
			cs.CurrentSequence = cs.StartingSequence
			reset = true
		}
		number = render(cs.Format, now, cs.CurrentSequence)
		cs.CurrentSequence++
		cs.LastReset = &now
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("issue %s number: %w", c, err)
	}

	if number == "" {
		g.logger.Debug().Str("category", string(c)).Msg("numbering disabled, no number issued")
		return "", nil
	}
	if reset {
		g.metrics.RecordNumberingReset(string(c))
		g.logger.Info().Str("category", string(c)).Msg("sequence reset")
	}
	g.metrics.RecordNumberIssued(string(c))
	g.logger.Debug().Str("category", string(c)).Str("number", number).Msg("number issued")
	return number, nil
}

// Preview renders the number Next would issue now, without consuming it.
func (g *Generator) Preview(ctx context.Context, c Category) (string, error) {
	c, err := ParseCategory(string(c))
	if err != nil {
		return "", err
	}
	settings, err := g.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("preview %s number: %w", c, err)
	}
	cs, err := settings.For(c)
	if err != nil {
		return "", err
	}
	if !cs.Enabled {
		return "", nil
	}
	now := g.now()
	seq := cs.CurrentSequence
	if shouldReset(cs.ResetInterval, cs.LastReset, now) {
		seq = cs.StartingSequence
	}
	return render(cs.Format, now, seq), nil
}

// shouldReset reports whether a reset boundary lies between last and now.
// Calendar fields are compared in now's location. A category that has never
// issued a number keeps its current sequence.
func shouldReset(interval ResetInterval, last *time.Time, now time.Time) bool {
	if last == nil {
		return false
	}
	prev := last.In(now.Location())
	switch interval {
	case ResetDaily:
		return prev.Year() != now.Year() || prev.YearDay() != now.YearDay()
	case ResetMonthly:
		return prev.Year() != now.Year() || prev.Month() != now.Month()
	case ResetYearly:
		return prev.Year() != now.Year()
	}
	// never, per-admission
	return false
}

func render(format string, now time.Time, seq int) string {
	r := strings.NewReplacer(
		"{year}", fmt.Sprintf("%04d", now.Year()),
		"{month}", fmt.Sprintf("%02d", int(now.Month())),
		"{day}", fmt.Sprintf("%02d", now.Day()),
		"{sequence}", fmt.Sprintf("%05d", seq),
	)
	return r.Replace(format)
}
