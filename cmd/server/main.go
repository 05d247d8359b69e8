package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/nexaguru/nexaguru/internal/api"
	"github.com/nexaguru/nexaguru/internal/config"
	"github.com/nexaguru/nexaguru/internal/database"
	"github.com/nexaguru/nexaguru/internal/gemini"
	"github.com/nexaguru/nexaguru/internal/notify"
	"github.com/nexaguru/nexaguru/internal/repository"
	"github.com/nexaguru/nexaguru/internal/service"
	"github.com/nexaguru/nexaguru/internal/session"
	"github.com/nexaguru/nexaguru/internal/storage"
	"github.com/nexaguru/nexaguru/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logr := logger.New()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("database connect: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("database migrate: %v", err)
	}

	accountRepo := repository.NewAccountRepository(db)
	giftRepo := repository.NewGiftRepository(db)
	planRepo := repository.NewPlanRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	generationRepo := repository.NewGenerationRepository(db)

	if err := giftRepo.EnsureDefaults(ctx); err != nil {
		log.Fatalf("ensure gift codes: %v", err)
	}

	sessions := session.NewManager(cfg.SessionTTL)
	provider := gemini.NewClient(cfg, logr)

	var uploader service.Uploader
	if cfg.MediaStorageEnabled() {
		up, err := storage.NewUploader(cfg)
		if err != nil {
			log.Fatalf("storage uploader: %v", err)
		}
		uploader = up
	}

	notifier, err := notify.NewTelegram(cfg, logr)
	if err != nil {
		log.Fatalf("telegram notifier: %v", err)
	}

	authService := service.NewAuthService(accountRepo, sessions)
	ledgerService := service.NewLedgerService(accountRepo)
	generationService := service.NewGenerationService(logr, accountRepo, ledgerService, provider, uploader, generationRepo, cfg.RefundOnFailure)
	giftService := service.NewGiftService(giftRepo, accountRepo)
	planService := service.NewPlanService(planRepo)

	var paymentNotifier service.Notifier
	if notifier != nil {
		paymentNotifier = notifier
	}
	paymentService := service.NewPaymentService(cfg, paymentRepo, planRepo, ledgerService, accountRepo, paymentNotifier)

	if err := planService.EnsureDefaultPlans(ctx); err != nil {
		log.Fatalf("ensure default plans: %v", err)
	}

	server := api.NewServer(cfg, logr, authService, ledgerService, generationService, giftService, planService, paymentService, accountRepo)

	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logr.Error("api server stopped", "err", err)
	}
}
