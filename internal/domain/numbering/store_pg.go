package numbering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/clinassist/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// PGStore keeps one patient_numbering row per category. Update locks the
// row with SELECT ... FOR UPDATE for the duration of the transaction.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return s.pool
}

const numberingCols = `category, enabled, format, starting_sequence, current_sequence, reset_interval, last_reset`

func scanCategory(row pgx.Row) (Category, CategorySettings, error) {
	var (
		c        string
		cs       CategorySettings
		interval string
		last     *time.Time
	)
	err := row.Scan(&c, &cs.Enabled, &cs.Format, &cs.StartingSequence, &cs.CurrentSequence, &interval, &last)
	cs.ResetInterval = ResetInterval(interval)
	cs.LastReset = last
	return Category(c), cs, err
}

// Load returns the stored settings. Categories without a row fall back to
// their defaults.
func (s *PGStore) Load(ctx context.Context) (*Settings, error) {
	rows, err := s.conn(ctx).Query(ctx, `SELECT `+numberingCols+` FROM patient_numbering`)
	if err != nil {
		return nil, fmt.Errorf("load numbering settings: %w", err)
	}
	defer rows.Close()

	out := DefaultSettings()
	for rows.Next() {
		c, cs, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan numbering settings: %w", err)
		}
		dst, err := out.For(c)
		if err != nil {
			continue
		}
		*dst = cs
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate numbering settings: %w", err)
	}
	return out, nil
}

func (s *PGStore) Save(ctx context.Context, in *Settings) error {
	return db.WithTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		for _, c := range Categories {
			cs, _ := in.For(c)
			if err := upsertCategory(ctx, tx, c, *cs); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *PGStore) Update(ctx context.Context, c Category, fn func(*CategorySettings) error) error {
	return db.WithTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		cs, err := lockCategory(ctx, tx, c)
		if err != nil {
			return err
		}
		if err := fn(&cs); err != nil {
			return err
		}
		return upsertCategory(ctx, tx, c, cs)
	})
}

// lockCategory row-locks category c, seeding it from the defaults first if
// the row does not exist yet.
func lockCategory(ctx context.Context, q queryable, c Category) (CategorySettings, error) {
	def, err := DefaultSettings().For(c)
	if err != nil {
		return CategorySettings{}, err
	}

	_, err = q.Exec(ctx, `
		INSERT INTO patient_numbering (`+numberingCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (category) DO NOTHING`,
		string(c), def.Enabled, def.Format, def.StartingSequence, def.CurrentSequence,
		string(def.ResetInterval), def.LastReset)
	if err != nil {
		return CategorySettings{}, fmt.Errorf("seed numbering row %s: %w", c, err)
	}

	_, cs, err := scanCategory(q.QueryRow(ctx,
		`SELECT `+numberingCols+` FROM patient_numbering WHERE category = $1 FOR UPDATE`, string(c)))
	if errors.Is(err, pgx.ErrNoRows) {
		return CategorySettings{}, fmt.Errorf("numbering row %s vanished", c)
	}
	if err != nil {
		return CategorySettings{}, fmt.Errorf("lock numbering row %s: %w", c, err)
	}
	return cs, nil
}

func upsertCategory(ctx context.Context, q queryable, c Category, cs CategorySettings) error {
	_, err := q.Exec(ctx, `
		INSERT INTO patient_numbering (`+numberingCols+`, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (category) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			format = EXCLUDED.format,
			starting_sequence = EXCLUDED.starting_sequence,
			current_sequence = EXCLUDED.current_sequence,
			reset_interval = EXCLUDED.reset_interval,
			last_reset = EXCLUDED.last_reset,
			updated_at = NOW()`,
		string(c), cs.Enabled, cs.Format, cs.StartingSequence, cs.CurrentSequence,
		string(cs.ResetInterval), cs.LastReset)
	if err != nil {
		return fmt.Errorf("save numbering row %s: %w", c, err)
	}
	return nil
}

// Ping checks connectivity.
func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
