package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nexaguru/nexaguru/internal/models"
)

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	const query = `
INSERT INTO payments (account_id, plan_id, reference, currency, amount, status)
VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, payment.AccountID, payment.PlanID, payment.Reference, payment.Currency, payment.Amount, string(payment.Status))
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("payment last insert id: %w", err)
	}
	payment.ID = id
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*models.Payment, error) {
	const query = `
SELECT id, account_id, plan_id, reference, currency, amount, status, created_at, updated_at
FROM payments WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	var p models.Payment
	var status string
	if err := row.Scan(&p.ID, &p.AccountID, &p.PlanID, &p.Reference, &p.Currency, &p.Amount, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	p.Status = models.PaymentStatus(status)
	return &p, nil
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, id int64, status models.PaymentStatus) error {
	const query = `UPDATE payments SET status = ?, updated_at = NOW() WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, string(status), id); err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	return nil
}

func (r *PaymentRepository) ListByAccount(ctx context.Context, accountID int64) ([]models.Payment, error) {
	const query = `
SELECT id, account_id, plan_id, reference, currency, amount, status, created_at, updated_at
FROM payments WHERE account_id = ? ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		var status string
		if err := rows.Scan(&p.ID, &p.AccountID, &p.PlanID, &p.Reference, &p.Currency, &p.Amount, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan payment list: %w", err)
		}
		p.Status = models.PaymentStatus(status)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
