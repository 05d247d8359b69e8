package service

import (
	"context"
	"sync"

	"github.com/nexaguru/nexaguru/internal/gemini"
	"github.com/nexaguru/nexaguru/internal/models"
)

// fakeAccountStore is an in-memory AccountStore. Reads return copies, the way
// a SQL scan would.
type fakeAccountStore struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	nextID   int64
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: make(map[string]*models.Account)}
}

func (f *fakeAccountStore) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[email]
	if !ok {
		return nil, nil
	}
	copied := *account
	return &copied, nil
}

func (f *fakeAccountStore) FindByID(_ context.Context, id int64) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.ID == id {
			copied := *account
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountStore) Create(_ context.Context, account *models.Account) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	account.ID = f.nextID
	copied := *account
	f.accounts[account.Email] = &copied
	result := copied
	return &result, nil
}

func (f *fakeAccountStore) DebitCredits(_ context.Context, email string, amount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account := f.accounts[email]
	account.Credits -= amount
	if account.Credits < 0 {
		account.Credits = 0
	}
	return nil
}

func (f *fakeAccountStore) AddCredits(_ context.Context, email string, amount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[email].Credits += amount
	return nil
}

func (f *fakeAccountStore) RedeemGift(_ context.Context, email string, bonus int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account := f.accounts[email]
	if account.GiftRedeemed {
		return false, nil
	}
	account.Credits += bonus
	account.GiftRedeemed = true
	return true, nil
}

func (f *fakeAccountStore) ListEmails(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	emails := make([]string, 0, len(f.accounts))
	for email := range f.accounts {
		emails = append(emails, email)
	}
	return emails, nil
}

func (f *fakeAccountStore) credits(email string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts[email].Credits
}

func (f *fakeAccountStore) seed(account models.Account) *models.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	account.ID = f.nextID
	f.accounts[account.Email] = &account
	copied := account
	return &copied
}

type fakeGiftStore struct {
	mu     sync.Mutex
	gifts  map[string]*models.GiftCode
	nextID int64
}

func newFakeGiftStore(codes map[string]int) *fakeGiftStore {
	store := &fakeGiftStore{gifts: make(map[string]*models.GiftCode)}
	for code, bonus := range codes {
		store.nextID++
		store.gifts[code] = &models.GiftCode{ID: store.nextID, Code: code, Bonus: bonus}
	}
	return store
}

func (f *fakeGiftStore) GetByCode(_ context.Context, code string) (*models.GiftCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gift, ok := f.gifts[code]
	if !ok {
		return nil, nil
	}
	copied := *gift
	return &copied, nil
}

func (f *fakeGiftStore) GetByID(_ context.Context, id int64) (*models.GiftCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, gift := range f.gifts {
		if gift.ID == id {
			copied := *gift
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeGiftStore) List(_ context.Context) ([]models.GiftCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var gifts []models.GiftCode
	for _, gift := range f.gifts {
		gifts = append(gifts, *gift)
	}
	return gifts, nil
}

func (f *fakeGiftStore) Create(_ context.Context, gift *models.GiftCode) (*models.GiftCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	gift.ID = f.nextID
	copied := *gift
	f.gifts[gift.Code] = &copied
	result := copied
	return &result, nil
}

func (f *fakeGiftStore) Update(_ context.Context, gift *models.GiftCode) (*models.GiftCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for code, existing := range f.gifts {
		if existing.ID == gift.ID {
			delete(f.gifts, code)
			copied := *gift
			f.gifts[gift.Code] = &copied
			result := copied
			return &result, nil
		}
	}
	return nil, nil
}

func (f *fakeGiftStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for code, gift := range f.gifts {
		if gift.ID == id {
			delete(f.gifts, code)
		}
	}
	return nil
}

type fakePlanStore struct {
	mu     sync.Mutex
	plans  map[int64]*models.Plan
	nextID int64
}

func newFakePlanStore() *fakePlanStore {
	return &fakePlanStore{plans: make(map[int64]*models.Plan)}
}

func (f *fakePlanStore) GetByID(_ context.Context, id int64) (*models.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	plan, ok := f.plans[id]
	if !ok {
		return nil, nil
	}
	copied := *plan
	return &copied, nil
}

func (f *fakePlanStore) GetBySlug(_ context.Context, slug string) (*models.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, plan := range f.plans {
		if plan.Slug == slug {
			copied := *plan
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakePlanStore) List(_ context.Context, activeOnly bool) ([]models.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var plans []models.Plan
	for _, plan := range f.plans {
		if activeOnly && !plan.IsActive {
			continue
		}
		plans = append(plans, *plan)
	}
	return plans, nil
}

func (f *fakePlanStore) Create(_ context.Context, plan *models.Plan) (*models.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	plan.ID = f.nextID
	copied := *plan
	f.plans[plan.ID] = &copied
	result := copied
	return &result, nil
}

func (f *fakePlanStore) Update(_ context.Context, plan *models.Plan) (*models.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *plan
	f.plans[plan.ID] = &copied
	result := copied
	return &result, nil
}

func (f *fakePlanStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.plans, id)
	return nil
}

type fakePaymentStore struct {
	mu       sync.Mutex
	payments map[int64]*models.Payment
	nextID   int64
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: make(map[int64]*models.Payment)}
}

func (f *fakePaymentStore) Create(_ context.Context, payment *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	payment.ID = f.nextID
	copied := *payment
	f.payments[payment.ID] = &copied
	return nil
}

func (f *fakePaymentStore) GetByID(_ context.Context, id int64) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[id]
	if !ok {
		return nil, nil
	}
	copied := *payment
	return &copied, nil
}

func (f *fakePaymentStore) UpdateStatus(_ context.Context, id int64, status models.PaymentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if payment, ok := f.payments[id]; ok {
		payment.Status = status
	}
	return nil
}

func (f *fakePaymentStore) ListByAccount(_ context.Context, accountID int64) ([]models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var payments []models.Payment
	for id := f.nextID; id > 0; id-- {
		if payment, ok := f.payments[id]; ok && payment.AccountID == accountID {
			payments = append(payments, *payment)
		}
	}
	return payments, nil
}

type fakeUploader struct {
	url   string
	err   error
	calls int
}

func (u *fakeUploader) Upload(_ context.Context, _ []byte, _ string) (string, error) {
	u.calls++
	if u.err != nil {
		return "", u.err
	}
	return u.url, nil
}

// stubProvider is a deterministic Provider double.
type stubProvider struct {
	mu         sync.Mutex
	imageAsset *gemini.Asset
	imageErr   error
	videoAsset *gemini.Asset
	videoErr   error
	imageCalls int
	videoCalls int

	// When set, GenerateImage signals entered and then blocks until release
	// is closed, so tests can hold a generation in flight.
	entered chan struct{}
	release chan struct{}
}

func (p *stubProvider) GenerateImage(ctx context.Context, prompt string) (*gemini.Asset, error) {
	p.mu.Lock()
	p.imageCalls++
	entered, release := p.entered, p.release
	p.mu.Unlock()
	if entered != nil {
		close(entered)
		<-release
	}
	if p.imageErr != nil {
		return nil, p.imageErr
	}
	return p.imageAsset, nil
}

func (p *stubProvider) GenerateVideo(ctx context.Context, prompt string, aspectRatio string) (*gemini.Asset, error) {
	p.mu.Lock()
	p.videoCalls++
	p.mu.Unlock()
	if p.videoErr != nil {
		return nil, p.videoErr
	}
	return p.videoAsset, nil
}

func (p *stubProvider) calls() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.imageCalls, p.videoCalls
}
