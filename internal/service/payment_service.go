package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/nexaguru/nexaguru/internal/config"
	"github.com/nexaguru/nexaguru/internal/models"
)

// Notifier receives operator-facing payment events. Optional.
type Notifier interface {
	PaymentInitiated(account *models.Account, plan *models.Plan, payment *models.Payment)
	PaymentConfirmed(payment *models.Payment, plan *models.Plan)
}

// PaymentService implements the simulated checkout: it records a pending
// payment and hands back a UPI deep link plus a messaging contact. Credits are
// granted only when an operator confirms the payment by hand.
type PaymentService struct {
	cfg      config.Config
	payments PaymentStore
	plans    PlanStore
	ledger   *LedgerService
	accounts AccountStore
	notifier Notifier
}

type CheckoutLink struct {
	PaymentID    int64
	Reference    string
	UPILink      string
	WhatsAppLink string
	Instructions string
}

func NewPaymentService(cfg config.Config, payments PaymentStore, plans PlanStore, ledger *LedgerService, accounts AccountStore, notifier Notifier) *PaymentService {
	return &PaymentService{
		cfg:      cfg,
		payments: payments,
		plans:    plans,
		ledger:   ledger,
		accounts: accounts,
		notifier: notifier,
	}
}

// Initiate records a pending payment for the plan and builds the deep links
// the storefront shows.
func (s *PaymentService) Initiate(ctx context.Context, account *models.Account, planID int64) (*CheckoutLink, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	if plan == nil || !plan.IsActive {
		return nil, ErrPlanNotFound
	}

	payment := &models.Payment{
		AccountID: account.ID,
		PlanID:    plan.ID,
		Reference: uuid.NewString(),
		Currency:  s.cfg.Currency,
		Amount:    plan.Price,
		Status:    models.PaymentPending,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	if s.notifier != nil {
		s.notifier.PaymentInitiated(account, plan, payment)
	}

	return &CheckoutLink{
		PaymentID:    payment.ID,
		Reference:    payment.Reference,
		UPILink:      s.upiLink(plan),
		WhatsAppLink: s.whatsAppLink(),
		Instructions: fmt.Sprintf("After paying %d %s, send a screenshot to %s quoting reference %s to receive %d credits.",
			plan.Price, s.cfg.Currency, s.cfg.SupportPhone, payment.Reference, plan.Credits),
	}, nil
}

// Confirm is the manual reconciliation step: the operator marks the payment
// paid and the plan's credits land on the account. Confirming twice is a
// no-op.
func (s *PaymentService) Confirm(ctx context.Context, paymentID int64) (*models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("find payment: %w", err)
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if payment.Status == models.PaymentPaid {
		return payment, nil
	}

	plan, err := s.plans.GetByID(ctx, payment.PlanID)
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}

	email, err := s.accountEmail(ctx, payment.AccountID)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Credit(ctx, email, plan.Credits); err != nil {
		return nil, fmt.Errorf("grant plan credits: %w", err)
	}
	if err := s.payments.UpdateStatus(ctx, payment.ID, models.PaymentPaid); err != nil {
		return nil, fmt.Errorf("update payment status: %w", err)
	}
	payment.Status = models.PaymentPaid

	if s.notifier != nil {
		s.notifier.PaymentConfirmed(payment, plan)
	}

	return payment, nil
}

// History returns the account's payments, newest first.
func (s *PaymentService) History(ctx context.Context, account *models.Account) ([]models.Payment, error) {
	payments, err := s.payments.ListByAccount(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// Cancel marks a pending payment canceled without touching the balance.
func (s *PaymentService) Cancel(ctx context.Context, paymentID int64) error {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("find payment: %w", err)
	}
	if payment == nil {
		return ErrPaymentNotFound
	}
	if payment.Status != models.PaymentPending {
		return nil
	}
	if err := s.payments.UpdateStatus(ctx, payment.ID, models.PaymentCanceled); err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	return nil
}

func (s *PaymentService) upiLink(plan *models.Plan) string {
	params := url.Values{}
	params.Set("pa", s.cfg.UPIID)
	params.Set("pn", s.cfg.UPIPayeeName)
	params.Set("cu", s.cfg.Currency)
	params.Set("am", strconv.Itoa(plan.Price))
	return "upi://pay?" + params.Encode()
}

func (s *PaymentService) whatsAppLink() string {
	phone := s.cfg.SupportPhone
	for len(phone) > 0 && (phone[0] == '+' || phone[0] == ' ') {
		phone = phone[1:]
	}
	return "https://wa.me/" + phone
}

func (s *PaymentService) accountEmail(ctx context.Context, accountID int64) (string, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("lookup account: %w", err)
	}
	if account == nil {
		return "", fmt.Errorf("account %d not found", accountID)
	}
	return account.Email, nil
}
