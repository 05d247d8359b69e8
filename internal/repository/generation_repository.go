package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nexaguru/nexaguru/internal/models"
)

type GenerationRepository struct {
	db *sql.DB
}

func NewGenerationRepository(db *sql.DB) *GenerationRepository {
	return &GenerationRepository{db: db}
}

func (r *GenerationRepository) Log(ctx context.Context, accountID int64, mode models.Mode, prompt string, cost int, succeeded bool) error {
	const query = `
INSERT INTO generation_logs (account_id, mode, prompt, cost, succeeded)
VALUES (?, ?, ?, ?, ?)`
	ok := 0
	if succeeded {
		ok = 1
	}
	if _, err := r.db.ExecContext(ctx, query, accountID, string(mode), prompt, cost, ok); err != nil {
		return fmt.Errorf("insert generation log: %w", err)
	}
	return nil
}

func (r *GenerationRepository) CountForAccount(ctx context.Context, accountID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM generation_logs WHERE account_id = ?`
	var count int
	if err := r.db.QueryRowContext(ctx, query, accountID).Scan(&count); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("count generations: %w", err)
	}
	return count, nil
}
