package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nexaguru/nexaguru/internal/gemini"
	"github.com/nexaguru/nexaguru/internal/models"
	"github.com/nexaguru/nexaguru/internal/storage"
)

// Provider is the generation backend. The concrete implementation is the
// Gemini client; tests inject deterministic stubs.
type Provider interface {
	GenerateImage(ctx context.Context, prompt string) (*gemini.Asset, error)
	GenerateVideo(ctx context.Context, prompt string, aspectRatio string) (*gemini.Asset, error)
}

// Uploader persists generated media and returns a public URL. Optional.
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

var videoAspectRatios = map[string]bool{
	"16:9": true,
	"9:16": true,
}

type GenerationRequest struct {
	Mode        models.Mode
	Prompt      string
	AspectRatio string
}

type GenerationResult struct {
	Mode models.Mode
	Data []byte
	Mime string
	URL  string
	Cost int
}

// GenerationService decides whether a request may proceed, debits the balance
// before invoking the provider, and reconciles the outcome. The debit is
// deliberately optimistic: it is sequenced strictly before the provider call
// so concurrent requests cannot spend the same balance twice.
type GenerationService struct {
	log         *slog.Logger
	accounts    AccountStore
	ledger      *LedgerService
	provider    Provider
	uploader    Uploader
	generations GenerationLogStore

	// refundOnFailure selects the compensation policy applied when the
	// provider fails after the debit. The historical behavior forfeits the
	// credit.
	refundOnFailure bool

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewGenerationService(log *slog.Logger, accounts AccountStore, ledger *LedgerService, provider Provider, uploader Uploader, generations GenerationLogStore, refundOnFailure bool) *GenerationService {
	return &GenerationService{
		log:             log,
		accounts:        accounts,
		ledger:          ledger,
		provider:        provider,
		uploader:        uploader,
		generations:     generations,
		refundOnFailure: refundOnFailure,
		inflight:        make(map[string]struct{}),
	}
}

// Generate runs one credit-gated generation attempt for the account. At most
// one attempt may be in flight per account; concurrent calls are rejected, not
// queued.
func (s *GenerationService) Generate(ctx context.Context, account *models.Account, req GenerationRequest) (*GenerationResult, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		return nil, ErrEmptyPrompt
	}

	switch req.Mode {
	case models.ModeImage:
	case models.ModeVideo:
		if req.AspectRatio == "" {
			req.AspectRatio = "16:9"
		}
		if !videoAspectRatios[req.AspectRatio] {
			return nil, ErrInvalidAspectRatio
		}
	default:
		return nil, ErrUnsupportedMode
	}

	cost := models.CostFor(req.Mode)
	if !Affordable(account.Credits, cost) {
		return nil, &InsufficientCreditsError{Mode: req.Mode, Cost: cost, Balance: account.Credits}
	}

	if !s.acquire(account.Email) {
		return nil, ErrGenerationBusy
	}
	defer s.release(account.Email)

	// The caller's snapshot may predate another request's spend; settle
	// affordability against the stored balance while holding the guard.
	fresh, err := s.accounts.FindByEmail(ctx, account.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if fresh != nil {
		account.Credits = fresh.Credits
	}
	if !Affordable(account.Credits, cost) {
		return nil, &InsufficientCreditsError{Mode: req.Mode, Cost: cost, Balance: account.Credits}
	}

	// Spend before invoking: the balance reflects the attempt even if the
	// caller never observes the outcome.
	if err := s.ledger.Debit(ctx, account.Email, cost); err != nil {
		return nil, err
	}
	account.Credits = DebitBalance(account.Credits, cost)

	asset, err := s.invoke(ctx, req)
	if err != nil {
		s.compensate(account, cost)
		s.logGeneration(account.ID, req, cost, false)
		return nil, err
	}

	// The provider's own media URI is only fetchable with the server's key,
	// so the result never carries it; a public URL comes from the uploader.
	result := &GenerationResult{
		Mode: req.Mode,
		Data: asset.Data,
		Mime: asset.Mime,
		Cost: cost,
	}

	if s.uploader != nil {
		url, uploadErr := s.uploader.Upload(ctx, asset.Data, asset.Mime)
		if uploadErr != nil {
			// Storage is best effort; the caller still gets the raw bytes.
			s.log.Error("failed to store generated media", "err", uploadErr)
		} else {
			result.URL = url
		}
	}

	s.logGeneration(account.ID, req, cost, true)

	return result, nil
}

func (s *GenerationService) invoke(ctx context.Context, req GenerationRequest) (*gemini.Asset, error) {
	switch req.Mode {
	case models.ModeVideo:
		asset, err := s.provider.GenerateVideo(ctx, req.Prompt, req.AspectRatio)
		if err != nil {
			return nil, &ProviderFailureError{Err: fmt.Errorf("generate video: %w", err)}
		}
		return asset, nil
	default:
		asset, err := s.provider.GenerateImage(ctx, req.Prompt)
		if err != nil {
			return nil, &ProviderFailureError{Err: fmt.Errorf("generate image: %w", err)}
		}
		return asset, nil
	}
}

// compensate applies the configured failure policy after an unsuccessful
// provider call. The default forfeits the already-spent credit.
func (s *GenerationService) compensate(account *models.Account, cost int) {
	if !s.refundOnFailure {
		return
	}
	// Refund outside the request's cancellation scope; the debit already
	// happened, so the compensation must too.
	if err := s.ledger.Credit(context.Background(), account.Email, cost); err != nil {
		s.log.Error("failed to refund after provider failure", "email", account.Email, "cost", cost, "err", err)
		return
	}
	account.Credits += cost
}

func (s *GenerationService) logGeneration(accountID int64, req GenerationRequest, cost int, succeeded bool) {
	if s.generations == nil {
		return
	}
	if err := s.generations.Log(context.Background(), accountID, req.Mode, req.Prompt, cost, succeeded); err != nil {
		s.log.Error("failed to log generation", "err", err)
	}
}

// CountFor reports how many generation attempts the account has logged.
func (s *GenerationService) CountFor(ctx context.Context, accountID int64) (int, error) {
	if s.generations == nil {
		return 0, nil
	}
	return s.generations.CountForAccount(ctx, accountID)
}

func (s *GenerationService) acquire(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[email]; busy {
		return false
	}
	s.inflight[email] = struct{}{}
	return true
}

func (s *GenerationService) release(email string) {
	s.mu.Lock()
	delete(s.inflight, email)
	s.mu.Unlock()
}

// DataURI renders an asset payload the way the browser client consumes
// inline media.
func (r *GenerationResult) DataURI() string {
	return storage.DataURI(r.Data, r.Mime)
}
