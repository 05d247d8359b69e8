package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nexaguru/nexaguru/internal/gemini"
	"github.com/nexaguru/nexaguru/internal/models"
	"github.com/nexaguru/nexaguru/internal/service"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accountView struct {
	Email        string `json:"email"`
	Credits      int    `json:"credits"`
	GiftRedeemed bool   `json:"gift_redeemed"`
}

type sessionResponse struct {
	Token   string      `json:"token"`
	Account accountView `json:"account"`
}

func viewOf(account *models.Account) accountView {
	return accountView{
		Email:        account.Email,
		Credits:      account.Credits,
		GiftRedeemed: account.GiftRedeemed,
	}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	account, sess, err := s.auth.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, sessionResponse{Token: sess.Token, Account: viewOf(account)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	account, sess, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sessionResponse{Token: sess.Token, Account: viewOf(account)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Logout(bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	s.auth.LogoutAll(currentAccount(r).Email)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, viewOf(currentAccount(r)))
}

type generateRequest struct {
	Mode        string `json:"mode"`
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
}

type generateResponse struct {
	Mode    string `json:"mode"`
	Mime    string `json:"mime_type"`
	DataURI string `json:"data_uri,omitempty"`
	URL     string `json:"url,omitempty"`
	Cost    int    `json:"cost"`
	Credits int    `json:"credits"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	account := currentAccount(r)
	result, err := s.generations.Generate(r.Context(), account, service.GenerationRequest{
		Mode:        models.Mode(req.Mode),
		Prompt:      req.Prompt,
		AspectRatio: req.AspectRatio,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	resp := generateResponse{
		Mode:    string(result.Mode),
		Mime:    result.Mime,
		URL:     result.URL,
		Cost:    result.Cost,
		Credits: account.Credits,
	}
	// Images always inline; video inlines too when no public URL exists,
	// otherwise the payload would carry nothing playable.
	if result.Mode == models.ModeImage || result.URL == "" {
		resp.DataURI = result.DataURI()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type redeemRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleRedeemGift(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	account := currentAccount(r)
	bonus, err := s.gifts.Redeem(r.Context(), account, req.Code)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"bonus":   bonus,
		"credits": account.Credits,
		"message": "Success! Credits added.",
	})
}

type planView struct {
	ID       int64    `json:"id"`
	Slug     string   `json:"slug"`
	Name     string   `json:"name"`
	Price    int      `json:"price"`
	Credits  int      `json:"credits"`
	Features []string `json:"features"`
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.List(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	views := make([]planView, 0, len(plans))
	for _, p := range plans {
		views = append(views, planView{
			ID:       p.ID,
			Slug:     p.Slug,
			Name:     p.Name,
			Price:    p.Price,
			Credits:  p.Credits,
			Features: p.Features,
		})
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleSupport(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"whatsapp": s.cfg.SupportPhone,
		"email":    s.cfg.SupportEmail,
	})
}

type initiatePaymentRequest struct {
	PlanID int64 `json:"plan_id"`
}

func (s *Server) handleInitiatePayment(w http.ResponseWriter, r *http.Request) {
	var req initiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	checkout, err := s.payments.Initiate(r.Context(), currentAccount(r), req.PlanID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"payment_id":    checkout.PaymentID,
		"reference":     checkout.Reference,
		"upi_link":      checkout.UPILink,
		"whatsapp_link": checkout.WhatsAppLink,
		"instructions":  checkout.Instructions,
	})
}

type paymentView struct {
	ID        int64  `json:"id"`
	PlanID    int64  `json:"plan_id"`
	Reference string `json:"reference"`
	Currency  string `json:"currency"`
	Amount    int    `json:"amount"`
	Status    string `json:"status"`
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.payments.History(r.Context(), currentAccount(r))
	if err != nil {
		s.internalError(w, err)
		return
	}
	views := make([]paymentView, 0, len(payments))
	for _, p := range payments {
		views = append(views, paymentView{
			ID:        p.ID,
			PlanID:    p.PlanID,
			Reference: p.Reference,
			Currency:  p.Currency,
			Amount:    p.Amount,
			Status:    string(p.Status),
		})
	}
	s.writeJSON(w, http.StatusOK, views)
}

type addCreditsRequest struct {
	Email  string `json:"email"`
	Amount int    `json:"amount"`
}

// handleAddCredits is the demo-only top-up backdoor; it trusts the admin
// caller entirely.
func (s *Server) handleAddCredits(w http.ResponseWriter, r *http.Request) {
	var req addCreditsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	email := service.NormalizeEmail(req.Email)
	account, err := s.accounts.FindByEmail(r.Context(), email)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if account == nil {
		s.writeError(w, http.StatusNotFound, "account_not_found", "account not found")
		return
	}
	if err := s.ledger.Credit(r.Context(), email, req.Amount); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"email":   email,
		"credits": account.Credits + req.Amount,
	})
}

type accountOverview struct {
	Email        string `json:"email"`
	Credits      int    `json:"credits"`
	GiftRedeemed bool   `json:"gift_redeemed"`
	Generations  int    `json:"generations"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	emails, err := s.accounts.ListEmails(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	views := make([]accountOverview, 0, len(emails))
	for _, email := range emails {
		account, err := s.accounts.FindByEmail(r.Context(), email)
		if err != nil {
			s.internalError(w, err)
			return
		}
		if account == nil {
			continue
		}
		count, err := s.generations.CountFor(r.Context(), account.ID)
		if err != nil {
			s.internalError(w, err)
			return
		}
		views = append(views, accountOverview{
			Email:        account.Email,
			Credits:      account.Credits,
			GiftRedeemed: account.GiftRedeemed,
			Generations:  count,
		})
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	payment, err := s.payments.Confirm(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"payment_id": payment.ID,
		"status":     payment.Status,
	})
}

func (s *Server) handleCancelPayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	if err := s.payments.Cancel(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type planRequest struct {
	Slug     string   `json:"slug"`
	Name     string   `json:"name"`
	Price    int      `json:"price"`
	Credits  int      `json:"credits"`
	Features []string `json:"features"`
	IsActive *bool    `json:"is_active"`
}

type planUpdateRequest struct {
	Name     *string  `json:"name"`
	Price    *int     `json:"price"`
	Credits  *int     `json:"credits"`
	Features []string `json:"features"`
	IsActive *bool    `json:"is_active"`
}

func (s *Server) handleAdminListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.ListAll(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	plan, err := s.plans.Create(r.Context(), service.CreatePlanInput{
		Slug:     req.Slug,
		Name:     req.Name,
		Price:    req.Price,
		Credits:  req.Credits,
		Features: req.Features,
		IsActive: req.IsActive,
	})
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_plan", err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	var req planUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	plan, err := s.plans.Update(r.Context(), id, service.UpdatePlanInput{
		Name:     req.Name,
		Price:    req.Price,
		Credits:  req.Credits,
		Features: req.Features,
		IsActive: req.IsActive,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	if err := s.plans.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type giftCodeRequest struct {
	Code  string `json:"code"`
	Bonus int    `json:"bonus"`
}

func (s *Server) handleListGiftCodes(w http.ResponseWriter, r *http.Request) {
	gifts, err := s.gifts.List(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, gifts)
}

func (s *Server) handleCreateGiftCode(w http.ResponseWriter, r *http.Request) {
	var req giftCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	gift, err := s.gifts.Create(r.Context(), req.Code, req.Bonus)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_gift_code", err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, gift)
}

func (s *Server) handleUpdateGiftCode(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	var req giftCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	gift, err := s.gifts.Update(r.Context(), id, req.Code, req.Bonus)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, gift)
}

func (s *Server) handleDeleteGiftCode(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	if err := s.gifts.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps service and provider errors onto stable HTTP codes
// the presentation layer can branch on.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var shortfall *service.InsufficientCreditsError
	if errors.As(err, &shortfall) {
		s.writeJSON(w, http.StatusPaymentRequired, map[string]any{
			"code":    "insufficient_credits",
			"message": shortfall.Error(),
			"mode":    string(shortfall.Mode),
			"cost":    shortfall.Cost,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrEmptyCredentials):
		s.writeError(w, http.StatusBadRequest, "empty_credentials", err.Error())
	case errors.Is(err, service.ErrAccountExists):
		s.writeError(w, http.StatusConflict, "account_exists", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		s.writeError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, service.ErrEmptyPrompt):
		s.writeError(w, http.StatusBadRequest, "empty_prompt", err.Error())
	case errors.Is(err, service.ErrUnsupportedMode):
		s.writeError(w, http.StatusBadRequest, "unsupported_mode", err.Error())
	case errors.Is(err, service.ErrInvalidAspectRatio):
		s.writeError(w, http.StatusBadRequest, "invalid_aspect_ratio", err.Error())
	case errors.Is(err, service.ErrInvalidAmount):
		s.writeError(w, http.StatusBadRequest, "invalid_amount", err.Error())
	case errors.Is(err, service.ErrGenerationBusy):
		s.writeError(w, http.StatusConflict, "generation_busy", err.Error())
	case errors.Is(err, service.ErrInvalidGiftCode):
		s.writeError(w, http.StatusBadRequest, "invalid_code", err.Error())
	case errors.Is(err, service.ErrGiftRedeemed):
		s.writeError(w, http.StatusConflict, "already_redeemed", err.Error())
	case errors.Is(err, service.ErrPlanNotFound):
		s.writeError(w, http.StatusNotFound, "plan_not_found", err.Error())
	case errors.Is(err, service.ErrPaymentNotFound):
		s.writeError(w, http.StatusNotFound, "payment_not_found", err.Error())
	case errors.Is(err, gemini.ErrTimedOut):
		s.writeError(w, http.StatusGatewayTimeout, "provider_timeout", err.Error())
	case errors.Is(err, gemini.ErrAuthExpired):
		s.writeError(w, http.StatusBadGateway, "provider_auth", err.Error())
	case errors.Is(err, gemini.ErrMissingCredential):
		s.writeError(w, http.StatusInternalServerError, "missing_credential", err.Error())
	case errors.Is(err, gemini.ErrEmptyResult), errors.Is(err, gemini.ErrDownloadFailed):
		s.writeError(w, http.StatusBadGateway, "provider_error", err.Error())
	case errors.Is(err, service.ErrProviderFailure):
		s.writeError(w, http.StatusBadGateway, "provider_error", err.Error())
	default:
		s.internalError(w, err)
	}
}
