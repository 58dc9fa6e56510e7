package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aliskhannn/selfaudit-bot/internal/domain/entities"
)

// DBTX is the subset of pgxpool.Pool and pgx.Tx the repository needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// CompletionRepository archives finished polls.
type CompletionRepository struct {
	db DBTX
}

func NewCompletionRepository(db DBTX) *CompletionRepository {
	return &CompletionRepository{db: db}
}

// Record stores a finished poll. Only the hashed user id is kept.
func (r *CompletionRepository) Record(ctx context.Context, c entities.Completion) error {
	query := `
		INSERT INTO poll_completions (uid_hash, poll_name, score, total, is_quiz)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.db.Exec(ctx, query, c.UID, c.PollName, c.Score, c.Total, c.IsQuiz); err != nil {
		return fmt.Errorf("insert completion: %w", err)
	}
	return nil
}

// CountByPoll returns the number of completions per poll, ordered by poll name.
func (r *CompletionRepository) CountByPoll(ctx context.Context) ([]entities.CompletionCount, error) {
	query := `
		SELECT poll_name, COUNT(*)
		FROM poll_completions
		GROUP BY poll_name
		ORDER BY poll_name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count completions: %w", err)
	}

	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entities.CompletionCount, error) {
		var c entities.CompletionCount
		err := row.Scan(&c.PollName, &c.Count)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan completion counts: %w", err)
	}

	return counts, nil
}
