package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nexaguru/nexaguru/internal/models"
)

type GiftRepository struct {
	db *sql.DB
}

func NewGiftRepository(db *sql.DB) *GiftRepository {
	return &GiftRepository{db: db}
}

// EnsureDefaults seeds the promotional codes the storefront ships with.
func (r *GiftRepository) EnsureDefaults(ctx context.Context) error {
	defaults := []models.GiftCode{
		{Code: "NEXA0909", Bonus: 10},
		{Code: "GURU1212", Bonus: 30},
		{Code: "SN1010", Bonus: 20},
	}
	const query = `INSERT IGNORE INTO gift_codes (code, bonus) VALUES (?, ?)`
	for _, gift := range defaults {
		if _, err := r.db.ExecContext(ctx, query, gift.Code, gift.Bonus); err != nil {
			return fmt.Errorf("seed gift code %s: %w", gift.Code, err)
		}
	}
	return nil
}

func (r *GiftRepository) GetByCode(ctx context.Context, code string) (*models.GiftCode, error) {
	const query = `SELECT id, code, bonus, created_at FROM gift_codes WHERE code = ?`
	row := r.db.QueryRowContext(ctx, query, code)
	var gift models.GiftCode
	if err := row.Scan(&gift.ID, &gift.Code, &gift.Bonus, &gift.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan gift code: %w", err)
	}
	return &gift, nil
}

func (r *GiftRepository) GetByID(ctx context.Context, id int64) (*models.GiftCode, error) {
	const query = `SELECT id, code, bonus, created_at FROM gift_codes WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	var gift models.GiftCode
	if err := row.Scan(&gift.ID, &gift.Code, &gift.Bonus, &gift.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get gift code by id: %w", err)
	}
	return &gift, nil
}

func (r *GiftRepository) List(ctx context.Context) ([]models.GiftCode, error) {
	const query = `SELECT id, code, bonus, created_at FROM gift_codes ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list gift codes: %w", err)
	}
	defer rows.Close()

	var gifts []models.GiftCode
	for rows.Next() {
		var gift models.GiftCode
		if err := rows.Scan(&gift.ID, &gift.Code, &gift.Bonus, &gift.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan gift code list: %w", err)
		}
		gifts = append(gifts, gift)
	}
	return gifts, rows.Err()
}

func (r *GiftRepository) Create(ctx context.Context, gift *models.GiftCode) (*models.GiftCode, error) {
	const query = `INSERT INTO gift_codes (code, bonus) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, query, gift.Code, gift.Bonus)
	if err != nil {
		return nil, fmt.Errorf("create gift code: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("gift code last insert id: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *GiftRepository) Update(ctx context.Context, gift *models.GiftCode) (*models.GiftCode, error) {
	const query = `UPDATE gift_codes SET code = ?, bonus = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, gift.Code, gift.Bonus, gift.ID); err != nil {
		return nil, fmt.Errorf("update gift code: %w", err)
	}
	return r.GetByID(ctx, gift.ID)
}

func (r *GiftRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM gift_codes WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete gift code: %w", err)
	}
	return nil
}
