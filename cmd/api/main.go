package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	httpadp "loan-pipeline/internal/adapter/http"
	idemp "loan-pipeline/internal/adapter/middleware"
	"loan-pipeline/internal/adapter/notify"
	"loan-pipeline/internal/adapter/repository/mysql"
	"loan-pipeline/internal/config"
	"loan-pipeline/internal/domain/eligibility"
	"loan-pipeline/internal/domain/pricing"
	"loan-pipeline/internal/domain/reference"
	"loan-pipeline/internal/infrastructure/cache"
	"loan-pipeline/internal/infrastructure/db"
	"loan-pipeline/internal/infrastructure/logging"
	"loan-pipeline/internal/infrastructure/metrics"
	ucLoan "loan-pipeline/internal/usecase/loan"
	ucNeeds "loan-pipeline/internal/usecase/needslist"
	ucStatus "loan-pipeline/internal/usecase/status"
)

func main() {
	// .env is optional; real deployments inject the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	log.WithFields(logrus.Fields{
		"env":              cfg.AppEnv,
		"eligibility_mode": cfg.EligibilityMode,
		"needs_list_caps":  cfg.NeedsListSchema,
	}).Info("starting loan pipeline")

	tables, err := reference.Load(cfg.ReferenceDataPath)
	if err != nil {
		log.WithError(err).Fatal("reference data")
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.WithError(err).Fatal("mysql")
	}
	if err := db.Migrate(gdb, mysql.QuoteModel()); err != nil {
		log.WithError(err).Fatal("migrate")
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.WithError(err).Fatal("redis")
	}

	events := notify.NewAsync(notify.NewRedisPublisher(rdb, cfg.EventsChannel), log, 3*time.Second)

	loans := mysql.NewLoanRepository(gdb)
	hist := mysql.NewHistoryRepository(gdb)
	quotes := mysql.NewQuoteRepository(gdb)
	items := mysql.NewNeedsListRepository(gdb)
	tx := mysql.NewGormUoW(gdb)
	caps := cfg.NeedsListCaps()

	loanUC := ucLoan.NewUsecase(ucLoan.Deps{
		Loans:     loans,
		History:   hist,
		Quotes:    quotes,
		NeedsList: items,
		UoW:       tx,
		Gate:      eligibility.NewGate(tables, cfg.EligibilityMode, log),
		Engine:    pricing.NewEngine(tables),
		Caps:      caps,
		Events:    events,
		Log:       log,
	})
	statusUC := ucStatus.NewUsecase(loans, hist, tx, events, log)
	needsUC := ucNeeds.NewUsecase(loans, items, caps, events, log)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	httpadp.Register(e, httpadp.Handlers{
		Base:      httpadp.NewHandler(),
		Loans:     httpadp.NewLoanHandler(loanUC),
		Status:    httpadp.NewStatusHandler(statusUC),
		NeedsList: httpadp.NewNeedsListHandler(needsUC),
	}, idemp.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, log))

	go func() {
		addr := ":" + cfg.AppPort
		log.WithField("addr", addr).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown")
	}
	events.Wait()
	_ = rdb.Close()
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("stopped")
}
