package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scholaris/lms-api/internal/models"
)

// InspirationRepository rotates and reads the daily inspiration row.
type InspirationRepository struct {
	db *sqlx.DB
}

// NewInspirationRepository constructs the repository.
func NewInspirationRepository(db *sqlx.DB) *InspirationRepository {
	return &InspirationRepository{db: db}
}

// EnsureForDate picks a random quote, verse and message for the date if no
// row exists yet. The unique date column makes concurrent calls converge on
// a single row, replacing the process-wide "already checked today" flag.
func (r *InspirationRepository) EnsureForDate(ctx context.Context, date string) error {
	const query = `INSERT INTO daily_inspirations (id, date, quote_id, verse_id, message_id)
        SELECT $1, $2, q.id, v.id, m.id
        FROM (SELECT id FROM motivational_quotes ORDER BY random() LIMIT 1) q,
             (SELECT id FROM bible_verses ORDER BY random() LIMIT 1) v,
             (SELECT id FROM grateful_peace_messages ORDER BY random() LIMIT 1) m
        ON CONFLICT (date) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), date); err != nil {
		return fmt.Errorf("ensure daily inspiration: %w", err)
	}
	return nil
}

// FindByDate returns the inspiration for a date with its referenced content.
func (r *InspirationRepository) FindByDate(ctx context.Context, date string) (*models.DailyInspiration, error) {
	const query = `SELECT di.id, di.date, q.quote, q.author, v.verse_text, v.reference, m.message, m.theme
        FROM daily_inspirations di
        LEFT JOIN motivational_quotes q ON q.id = di.quote_id
        LEFT JOIN bible_verses v ON v.id = di.verse_id
        LEFT JOIN grateful_peace_messages m ON m.id = di.message_id
        WHERE di.date = $1`
	var inspiration models.DailyInspiration
	if err := r.db.GetContext(ctx, &inspiration, query, date); err != nil {
		return nil, err
	}
	return &inspiration, nil
}
