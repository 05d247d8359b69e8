package service

import (
	"context"
	"fmt"
)

// LedgerService owns balance arithmetic. Every mutation is a single SQL
// statement on the store, so there is no read-modify-write window for an
// unrelated update to fall into.
type LedgerService struct {
	accounts AccountStore
}

func NewLedgerService(accounts AccountStore) *LedgerService {
	return &LedgerService{accounts: accounts}
}

// Affordable reports whether the balance covers the cost.
func Affordable(balance, cost int) bool {
	return balance >= cost
}

// DebitBalance is the pure debit rule: the balance clamps at zero, never
// underflowing.
func DebitBalance(balance, cost int) int {
	if cost >= balance {
		return 0
	}
	return balance - cost
}

// Debit spends cost from the account, clamped at zero by the store.
func (s *LedgerService) Debit(ctx context.Context, email string, cost int) error {
	if cost <= 0 {
		return ErrInvalidAmount
	}
	if err := s.accounts.DebitCredits(ctx, email, cost); err != nil {
		return fmt.Errorf("debit account: %w", err)
	}
	return nil
}

// Credit adds amount to the account balance.
func (s *LedgerService) Credit(ctx context.Context, email string, amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if err := s.accounts.AddCredits(ctx, email, amount); err != nil {
		return fmt.Errorf("credit account: %w", err)
	}
	return nil
}
