package service

import (
	"context"

	"github.com/nexaguru/nexaguru/internal/models"
)

// AccountStore is the persistence capability the ledger and session flows
// depend on. Keeping it an interface lets a server-authoritative store replace
// the MySQL repository without touching orchestrator logic.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id int64) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	DebitCredits(ctx context.Context, email string, amount int) error
	AddCredits(ctx context.Context, email string, amount int) error
	RedeemGift(ctx context.Context, email string, bonus int) (bool, error)
	ListEmails(ctx context.Context) ([]string, error)
}

type GiftStore interface {
	GetByCode(ctx context.Context, code string) (*models.GiftCode, error)
	GetByID(ctx context.Context, id int64) (*models.GiftCode, error)
	List(ctx context.Context) ([]models.GiftCode, error)
	Create(ctx context.Context, gift *models.GiftCode) (*models.GiftCode, error)
	Update(ctx context.Context, gift *models.GiftCode) (*models.GiftCode, error)
	Delete(ctx context.Context, id int64) error
}

type PlanStore interface {
	GetByID(ctx context.Context, id int64) (*models.Plan, error)
	List(ctx context.Context, activeOnly bool) ([]models.Plan, error)
}

// PlanCatalogStore extends PlanStore with the mutations the admin CRUD needs.
type PlanCatalogStore interface {
	PlanStore
	GetBySlug(ctx context.Context, slug string) (*models.Plan, error)
	Create(ctx context.Context, plan *models.Plan) (*models.Plan, error)
	Update(ctx context.Context, plan *models.Plan) (*models.Plan, error)
	Delete(ctx context.Context, id int64) error
}

type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id int64) (*models.Payment, error)
	UpdateStatus(ctx context.Context, id int64, status models.PaymentStatus) error
	ListByAccount(ctx context.Context, accountID int64) ([]models.Payment, error)
}

type GenerationLogStore interface {
	Log(ctx context.Context, accountID int64, mode models.Mode, prompt string, cost int, succeeded bool) error
	CountForAccount(ctx context.Context, accountID int64) (int, error)
}
