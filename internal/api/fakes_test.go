package api

import (
	"context"
	"sync"

	"github.com/nexaguru/nexaguru/internal/gemini"
	"github.com/nexaguru/nexaguru/internal/models"
)

type memAccountStore struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	nextID   int64
}

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{accounts: make(map[string]*models.Account)}
}

func (m *memAccountStore) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[email]
	if !ok {
		return nil, nil
	}
	copied := *account
	return &copied, nil
}

func (m *memAccountStore) FindByID(_ context.Context, id int64) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.accounts {
		if account.ID == id {
			copied := *account
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memAccountStore) Create(_ context.Context, account *models.Account) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	account.ID = m.nextID
	copied := *account
	m.accounts[account.Email] = &copied
	result := copied
	return &result, nil
}

func (m *memAccountStore) DebitCredits(_ context.Context, email string, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account := m.accounts[email]
	account.Credits -= amount
	if account.Credits < 0 {
		account.Credits = 0
	}
	return nil
}

func (m *memAccountStore) AddCredits(_ context.Context, email string, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[email].Credits += amount
	return nil
}

func (m *memAccountStore) RedeemGift(_ context.Context, email string, bonus int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account := m.accounts[email]
	if account.GiftRedeemed {
		return false, nil
	}
	account.Credits += bonus
	account.GiftRedeemed = true
	return true, nil
}

func (m *memAccountStore) ListEmails(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	emails := make([]string, 0, len(m.accounts))
	for email := range m.accounts {
		emails = append(emails, email)
	}
	return emails, nil
}

func (m *memAccountStore) seed(account models.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	account.ID = m.nextID
	m.accounts[account.Email] = &account
}

type memGiftStore struct {
	mu     sync.Mutex
	gifts  map[string]*models.GiftCode
	nextID int64
}

func newMemGiftStore(codes map[string]int) *memGiftStore {
	store := &memGiftStore{gifts: make(map[string]*models.GiftCode)}
	for code, bonus := range codes {
		store.nextID++
		store.gifts[code] = &models.GiftCode{ID: store.nextID, Code: code, Bonus: bonus}
	}
	return store
}

func (m *memGiftStore) GetByCode(_ context.Context, code string) (*models.GiftCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gift, ok := m.gifts[code]
	if !ok {
		return nil, nil
	}
	copied := *gift
	return &copied, nil
}

func (m *memGiftStore) GetByID(_ context.Context, id int64) (*models.GiftCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, gift := range m.gifts {
		if gift.ID == id {
			copied := *gift
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memGiftStore) List(_ context.Context) ([]models.GiftCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var gifts []models.GiftCode
	for _, gift := range m.gifts {
		gifts = append(gifts, *gift)
	}
	return gifts, nil
}

func (m *memGiftStore) Create(_ context.Context, gift *models.GiftCode) (*models.GiftCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	gift.ID = m.nextID
	copied := *gift
	m.gifts[gift.Code] = &copied
	result := copied
	return &result, nil
}

func (m *memGiftStore) Update(_ context.Context, gift *models.GiftCode) (*models.GiftCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for code, existing := range m.gifts {
		if existing.ID == gift.ID {
			delete(m.gifts, code)
			copied := *gift
			m.gifts[gift.Code] = &copied
			result := copied
			return &result, nil
		}
	}
	return nil, nil
}

func (m *memGiftStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for code, gift := range m.gifts {
		if gift.ID == id {
			delete(m.gifts, code)
		}
	}
	return nil
}

type memPlanStore struct {
	mu     sync.Mutex
	plans  map[int64]*models.Plan
	nextID int64
}

func newMemPlanStore() *memPlanStore {
	return &memPlanStore{plans: make(map[int64]*models.Plan)}
}

func (m *memPlanStore) GetByID(_ context.Context, id int64) (*models.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	plan, ok := m.plans[id]
	if !ok {
		return nil, nil
	}
	copied := *plan
	return &copied, nil
}

func (m *memPlanStore) GetBySlug(_ context.Context, slug string) (*models.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, plan := range m.plans {
		if plan.Slug == slug {
			copied := *plan
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memPlanStore) List(_ context.Context, activeOnly bool) ([]models.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var plans []models.Plan
	for _, plan := range m.plans {
		if activeOnly && !plan.IsActive {
			continue
		}
		plans = append(plans, *plan)
	}
	return plans, nil
}

func (m *memPlanStore) Create(_ context.Context, plan *models.Plan) (*models.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	plan.ID = m.nextID
	copied := *plan
	m.plans[plan.ID] = &copied
	result := copied
	return &result, nil
}

func (m *memPlanStore) Update(_ context.Context, plan *models.Plan) (*models.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *plan
	m.plans[plan.ID] = &copied
	result := copied
	return &result, nil
}

func (m *memPlanStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.plans, id)
	return nil
}

type memPaymentStore struct {
	mu       sync.Mutex
	payments map[int64]*models.Payment
	nextID   int64
}

func newMemPaymentStore() *memPaymentStore {
	return &memPaymentStore{payments: make(map[int64]*models.Payment)}
}

func (m *memPaymentStore) Create(_ context.Context, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	payment.ID = m.nextID
	copied := *payment
	m.payments[payment.ID] = &copied
	return nil
}

func (m *memPaymentStore) GetByID(_ context.Context, id int64) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, nil
	}
	copied := *payment
	return &copied, nil
}

func (m *memPaymentStore) UpdateStatus(_ context.Context, id int64, status models.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if payment, ok := m.payments[id]; ok {
		payment.Status = status
	}
	return nil
}

func (m *memPaymentStore) ListByAccount(_ context.Context, accountID int64) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var payments []models.Payment
	for id := m.nextID; id > 0; id-- {
		if payment, ok := m.payments[id]; ok && payment.AccountID == accountID {
			payments = append(payments, *payment)
		}
	}
	return payments, nil
}

type memGenerationLog struct {
	mu      sync.Mutex
	entries []models.GenerationLog
}

func (m *memGenerationLog) Log(_ context.Context, accountID int64, mode models.Mode, prompt string, cost int, succeeded bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, models.GenerationLog{
		AccountID: accountID,
		Mode:      mode,
		Prompt:    prompt,
		Cost:      cost,
		Succeeded: succeeded,
	})
	return nil
}

func (m *memGenerationLog) CountForAccount(_ context.Context, accountID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, entry := range m.entries {
		if entry.AccountID == accountID {
			count++
		}
	}
	return count, nil
}

type staticProvider struct {
	imageAsset *gemini.Asset
	imageErr   error
	videoAsset *gemini.Asset
	videoErr   error
}

func (p *staticProvider) GenerateImage(context.Context, string) (*gemini.Asset, error) {
	if p.imageErr != nil {
		return nil, p.imageErr
	}
	return p.imageAsset, nil
}

func (p *staticProvider) GenerateVideo(context.Context, string, string) (*gemini.Asset, error) {
	if p.videoErr != nil {
		return nil, p.videoErr
	}
	return p.videoAsset, nil
}
