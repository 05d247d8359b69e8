package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nexaguru/nexaguru/internal/models"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	const query = `
SELECT id, email, password, credits, gift_redeemed, created_at, updated_at
FROM accounts WHERE email = ?`
	row := r.db.QueryRowContext(ctx, query, email)
	var a models.Account
	var redeemed int
	if err := row.Scan(&a.ID, &a.Email, &a.Password, &a.Credits, &redeemed, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	a.GiftRedeemed = redeemed != 0
	return &a, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	const query = `
SELECT id, email, password, credits, gift_redeemed, created_at, updated_at
FROM accounts WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	var a models.Account
	var redeemed int
	if err := row.Scan(&a.ID, &a.Email, &a.Password, &a.Credits, &redeemed, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	a.GiftRedeemed = redeemed != 0
	return &a, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	const query = `
INSERT INTO accounts (email, password, credits, gift_redeemed)
VALUES (?, ?, ?, ?)`
	redeemed := 0
	if account.GiftRedeemed {
		redeemed = 1
	}
	res, err := r.db.ExecContext(ctx, query, account.Email, account.Password, account.Credits, redeemed)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	account.ID = id
	return account, nil
}

// DebitCredits subtracts amount from the account balance, clamping at zero.
func (r *AccountRepository) DebitCredits(ctx context.Context, email string, amount int) error {
	const query = `UPDATE accounts SET credits = GREATEST(credits - ?, 0), updated_at = NOW() WHERE email = ?`
	if _, err := r.db.ExecContext(ctx, query, amount, email); err != nil {
		return fmt.Errorf("debit credits: %w", err)
	}
	return nil
}

func (r *AccountRepository) AddCredits(ctx context.Context, email string, amount int) error {
	const query = `UPDATE accounts SET credits = credits + ?, updated_at = NOW() WHERE email = ?`
	if _, err := r.db.ExecContext(ctx, query, amount, email); err != nil {
		return fmt.Errorf("add credits: %w", err)
	}
	return nil
}

// RedeemGift credits the bonus and flips the one-way gift flag in a single
// transaction. Returns false without mutating anything when the flag is
// already set.
func (r *AccountRepository) RedeemGift(ctx context.Context, email string, bonus int) (bool, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var redeemed int
	row := tx.QueryRowContext(ctx, `SELECT gift_redeemed FROM accounts WHERE email = ? FOR UPDATE`, email)
	if err := row.Scan(&redeemed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("account not found: %s", email)
		}
		return false, fmt.Errorf("lock account: %w", err)
	}
	if redeemed != 0 {
		return false, nil
	}

	const update = `UPDATE accounts SET credits = credits + ?, gift_redeemed = 1, updated_at = NOW() WHERE email = ?`
	if _, err := tx.ExecContext(ctx, update, bonus, email); err != nil {
		return false, fmt.Errorf("apply gift bonus: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit gift tx: %w", err)
	}
	return true, nil
}

func (r *AccountRepository) ListEmails(ctx context.Context) ([]string, error) {
	const query = `SELECT email FROM accounts`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}
