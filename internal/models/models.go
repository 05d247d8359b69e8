package models

import "time"

type Mode string

const (
	ModeImage Mode = "image"
	ModeVideo Mode = "video"
)

const (
	InitialCredits = 20
	CostPerImage   = 1
	CostPerVideo   = 5
)

// CostFor returns the credit price of one generation in the given mode.
func CostFor(mode Mode) int {
	if mode == ModeVideo {
		return CostPerVideo
	}
	return CostPerImage
}

type Account struct {
	ID           int64
	Email        string
	Password     string
	Credits      int
	GiftRedeemed bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type GiftCode struct {
	ID        int64
	Code      string
	Bonus     int
	CreatedAt time.Time
}

type Plan struct {
	ID        int64
	Slug      string
	Name      string
	Price     int
	Credits   int
	Features  []string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentCanceled PaymentStatus = "canceled"
)

type Payment struct {
	ID        int64
	AccountID int64
	PlanID    int64
	Reference string
	Currency  string
	Amount    int
	Status    PaymentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

type GenerationLog struct {
	ID        int64
	AccountID int64
	Mode      Mode
	Prompt    string
	Cost      int
	Succeeded bool
	CreatedAt time.Time
}
