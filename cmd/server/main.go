package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/chesterguides/guiding-backend/internal/config"
	"github.com/chesterguides/guiding-backend/internal/database"
	"github.com/chesterguides/guiding-backend/internal/handler"
	"github.com/chesterguides/guiding-backend/internal/invoice"
	"github.com/chesterguides/guiding-backend/internal/notify"
	"github.com/chesterguides/guiding-backend/internal/payment"
	"github.com/chesterguides/guiding-backend/internal/queue"
	"github.com/chesterguides/guiding-backend/internal/repository"
	"github.com/chesterguides/guiding-backend/internal/router"
	"github.com/chesterguides/guiding-backend/internal/worker"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()
	loc := cfg.Location()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	locker := config.NewRedisLocker(rdb)

	guides := repository.NewGuideRepo(db)
	slots := repository.NewSlotRepo(db)
	scans := repository.NewScanRepo(db)
	payments := repository.NewPaymentRepo(db)
	invoices := repository.NewInvoiceRepo(db)
	configuration := repository.NewConfigurationRepo(db)
	pushTokens := repository.NewPushTokenRepo(db)
	availability := repository.NewAvailabilityRepo(db)

	store, err := invoice.NewStore(cfg.InvoiceDir, cfg.PublicBaseURL)
	if err != nil {
		logger.WithError(err).Fatal("invoice store init failed")
	}

	notifier := &notify.PushNotifier{
		Tokens:  pushTokens,
		Expo:    notify.NewExpoSender(logger),
		WebPush: notify.NewWebPushSenderFromEnv(pushTokens, logger),
		Logger:  logger,
	}

	finalizer := &payment.Finalizer{
		Slots:     slots,
		Guides:    guides,
		Scans:     scans,
		Config:    configuration,
		Payments:  payments,
		Invoices:  invoices,
		Artifacts: store,
		Render:    invoice.Render,
		Publish:   queue.PublishPaymentCompleted,
		Logger:    logger,
	}

	completion := &worker.CompletionWorker{
		Slots:    slots,
		Scans:    scans,
		Payments: payments,
		Config:   configuration,
		Locker:   locker,
		Logger:   logger,
		Interval: cfg.WorkerInterval,
		Grace:    cfg.CompletionGrace,
		Loc:      loc,
	}
	reminders := &worker.ReminderWorker{
		Slots:    slots,
		Guides:   guides,
		Notifier: notifier,
		Logger:   logger,
		Interval: cfg.ReminderInterval,
		Loc:      loc,
	}

	ctx := context.Background()
	go completion.Run(ctx)
	go reminders.Run(ctx)
	go func() {
		if err := queue.StartPaymentConsumer(notifier, logger); err != nil {
			logger.WithError(err).Error("payment consumer stopped")
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Handlers{
		Admin:        handler.NewAdminPaymentHandler(finalizer, invoices, store),
		Tours:        handler.NewGuideTourHandler(guides, slots, scans, invoices, store),
		Scans:        handler.NewTicketScanHandler(guides, slots, scans),
		Push:         handler.NewPushHandler(pushTokens),
		Availability: handler.NewAvailabilityHandler(guides, availability),
	}, cfg.JWTSecret, store.Root(), rdb)

	addr := ":" + cfg.Port
	logger.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
	if err := e.Start(addr); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
