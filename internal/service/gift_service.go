package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nexaguru/nexaguru/internal/models"
)

// GiftService redeems one-time promotional codes. Each account may redeem at
// most one code over its lifetime; the bonus credit and the redeemed flag are
// committed together.
type GiftService struct {
	gifts    GiftStore
	accounts AccountStore
}

func NewGiftService(gifts GiftStore, accounts AccountStore) *GiftService {
	return &GiftService{gifts: gifts, accounts: accounts}
}

// Redeem looks up the normalized code and applies its bonus to the account.
func (s *GiftService) Redeem(ctx context.Context, account *models.Account, code string) (int, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return 0, ErrInvalidGiftCode
	}
	if account.GiftRedeemed {
		return 0, ErrGiftRedeemed
	}

	gift, err := s.gifts.GetByCode(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("get gift code: %w", err)
	}
	if gift == nil {
		return 0, ErrInvalidGiftCode
	}

	applied, err := s.accounts.RedeemGift(ctx, account.Email, gift.Bonus)
	if err != nil {
		return 0, fmt.Errorf("redeem gift: %w", err)
	}
	if !applied {
		return 0, ErrGiftRedeemed
	}

	account.Credits += gift.Bonus
	account.GiftRedeemed = true

	return gift.Bonus, nil
}

func (s *GiftService) List(ctx context.Context) ([]models.GiftCode, error) {
	return s.gifts.List(ctx)
}

func (s *GiftService) GetByID(ctx context.Context, id int64) (*models.GiftCode, error) {
	return s.gifts.GetByID(ctx, id)
}

func (s *GiftService) Create(ctx context.Context, code string, bonus int) (*models.GiftCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("code is required")
	}
	if bonus <= 0 {
		return nil, fmt.Errorf("bonus must be positive")
	}
	return s.gifts.Create(ctx, &models.GiftCode{Code: code, Bonus: bonus})
}

func (s *GiftService) Update(ctx context.Context, id int64, code string, bonus int) (*models.GiftCode, error) {
	existing, err := s.gifts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrInvalidGiftCode
	}
	if code != "" {
		existing.Code = strings.ToUpper(strings.TrimSpace(code))
	}
	if bonus > 0 {
		existing.Bonus = bonus
	}
	return s.gifts.Update(ctx, existing)
}

func (s *GiftService) Delete(ctx context.Context, id int64) error {
	return s.gifts.Delete(ctx, id)
}
