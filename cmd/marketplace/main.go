package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	pkgdb "github.com/Skotchmaster/marketplace/pkg/db"
	"github.com/Skotchmaster/marketplace/pkg/logging"
	loggingmw "github.com/Skotchmaster/marketplace/pkg/middleware/logging"
	"github.com/Skotchmaster/marketplace/pkg/mykafka"

	"github.com/Skotchmaster/marketplace/internal/config"
	"github.com/Skotchmaster/marketplace/internal/gateway"
	"github.com/Skotchmaster/marketplace/internal/httpserver"
	"github.com/Skotchmaster/marketplace/internal/lock"
	"github.com/Skotchmaster/marketplace/internal/metrics"
	"github.com/Skotchmaster/marketplace/internal/notify"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/service"
)

func main() {
	cfg := config.Load(".env")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	r := repo.New(db)
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	err = r.Migrate(ctx)
	cancel()
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}

	var events service.EventPublisher
	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		events = producer
	} else {
		logger.Warn("KAFKA_BROKERS not set, domain events are not published")
	}

	var locker service.Locker
	var closeRedis func() error
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := lock.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, webhook lock disabled", "error", err)
		} else {
			locker = lock.NewRedisLocker(rdb, cfg.ServiceName)
			closeRedis = rdb.Close
		}
	}

	var notifier service.Notifier = notify.LogNotifier{}
	if cfg.SMTP.Host != "" {
		smtp, err := notify.NewSMTPNotifier(notify.SMTPConfig(cfg.SMTP))
		if err != nil {
			log.Fatalf("smtp: %v", err)
		}
		notifier = smtp
	}

	gw := gateway.NewClient(gateway.Config{
		BaseURL:   cfg.Gateway.BaseURL,
		SecretKey: cfg.Gateway.SecretKey,
		Timeout:   15 * time.Second,
	})

	cartSvc := &service.CartService{Repo: r, Catalog: r}
	checkoutSvc := &service.CheckoutService{Repo: r, Catalog: r, Notifier: notifier, Events: events}
	orderSvc := &service.OrderService{Repo: r, Events: events}
	paymentSvc := &service.PaymentService{
		Repo:          r,
		Gateway:       gw,
		Notifier:      notifier,
		Events:        events,
		Locker:        locker,
		WebhookSecret: cfg.WebhookSecret(),
		CallbackURL:   cfg.Gateway.CallbackURL,
		Currency:      cfg.Gateway.Currency,
	}
	ledgerSvc := &service.LedgerService{Repo: r}
	withdrawalSvc := &service.WithdrawalService{Repo: r, Notifier: notifier, Events: events}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(metrics.Middleware(cfg.ServiceName))

	httpserver.Register(e, &httpserver.Deps{
		CartHandler:       &httpserver.CartHTTP{Svc: cartSvc, Checkout: checkoutSvc},
		OrderHandler:      &httpserver.OrderHTTP{Svc: orderSvc},
		PaymentHandler:    &httpserver.PaymentHTTP{Svc: paymentSvc},
		EarningHandler:    &httpserver.EarningHTTP{Svc: ledgerSvc},
		WithdrawalHandler: &httpserver.WithdrawalHTTP{Svc: withdrawalSvc},
		JWTSecret:         cfg.JWTAccessSecret,
		Ready:             r.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("marketplace listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close", "error", err)
		}
	}
	if closeRedis != nil {
		_ = closeRedis()
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db close", "error", err)
	}

	logger.Info("marketplace stopped")
}
