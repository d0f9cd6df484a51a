package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nimasrn/customer-ledger/internal/config"
	gateway "github.com/nimasrn/customer-ledger/internal/gateways"
	"github.com/nimasrn/customer-ledger/internal/handlers"
	"github.com/nimasrn/customer-ledger/internal/notify"
	"github.com/nimasrn/customer-ledger/internal/phone"
	"github.com/nimasrn/customer-ledger/internal/repository"
	"github.com/nimasrn/customer-ledger/internal/services"
	xhttp "github.com/nimasrn/customer-ledger/pkg/http"
	"github.com/nimasrn/customer-ledger/pkg/logger"
	"github.com/nimasrn/customer-ledger/pkg/pg"
	"github.com/nimasrn/customer-ledger/pkg/prom"
	"github.com/nimasrn/customer-ledger/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	defer logger.Sync()

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	cfg := config.Get()
	logger.Info("starting customer ledger", "version", version, "commit", commit, "date", date, "env", cfg.AppEnv)

	if cfg.AppDebugMetricsAddr != "" {
		host, _ := os.Hostname()
		if err := prom.Create(host, cfg.AppEnv, cfg.PromNamespace); err != nil {
			logger.Error("failed creating metrics", "error", err)
			return
		}
		go prom.ListenAndServer(cfg.AppDebugMetricsAddr, cfg.AppDebugMetricsURI)
	}

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Server.ReadTimeout = cfg.HttpServerReadTimeout
	s.Server.WriteTimeout = cfg.HttpServerWriteTimeout
	s.Use(xhttp.RecoverMiddleware)
	s.Use(xhttp.RequestIDMiddleware)
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.TimeoutMiddleware(cfg.HttpRequestTimeout))
	s.Use(xhttp.CompressMiddleware(6))
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     cfg.PostgresReadUser,
		Host:     cfg.PostgresReadHost,
		Port:     cfg.PostgresReadPort,
		Password: cfg.PostgresReadPassword,
		Database: cfg.PostgresReadDatabase,
		SSLMode:  cfg.PostgresSSLMode,
	}
	writeConf := pg.Config{
		User:     cfg.PostgresWriteUser,
		Host:     cfg.PostgresWriteHost,
		Port:     cfg.PostgresWritePort,
		Password: cfg.PostgresWritePassword,
		Database: cfg.PostgresWriteDatabase,
		SSLMode:  cfg.PostgresSSLMode,
	}

	db, err := pg.CreateReadWrite(readConf, writeConf, cfg.AppEnv == "dev")
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{cfg.RedisAddr},
		ClientName: cfg.AppName,
		DB:         cfg.RedisDatabase,
		Username:   cfg.RedisUsername,
		Password:   cfg.RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	sms := gateway.NewClient(gateway.Config{
		Enabled: cfg.SMSEnabled,
		BaseURL: cfg.SMSBaseURL,
		APIID:   cfg.SMSApiID,
		Sender:  cfg.SMSSender,
		Timeout: cfg.SMSTimeout,
	})
	defer sms.Close()
	if !sms.Enabled() {
		logger.Warn("sms transport disabled, confirmed notifications will not be delivered")
	}

	// repositories
	customerRepo := repository.NewCustomerRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	// services
	phones := phone.Normalizer{}
	drafts := notify.NewRedisDraftStore(redisAdap, cfg.DraftTTL, cfg.SMSTimeout*5)
	notifications := notify.NewGateway(drafts, sms, phones)
	customers := services.NewCustomerDirectory(customerRepo, phones)
	writer := services.NewTransactionWriter(transactionRepo, customerRepo, nil)
	ledgerService := services.NewLedgerService(db, customers, writer, notifications)
	healthService := services.NewHealthService(map[string]services.Pinger{
		"postgres": db,
		"redis":    redisAdap,
	})

	// v1 handlers
	g := s.Router.Group("/api/v1")
	handlers.RegisterCustomerRoutes(g, handlers.NewCustomerHandler(customers, ledgerService, writer))
	handlers.RegisterTransactionRoutes(g, handlers.NewTransactionHandler(ledgerService, writer))
	handlers.RegisterNotificationRoutes(g, handlers.NewNotificationHandler(notifications))
	handlers.RegisterStatisticsRoutes(g, handlers.NewStatisticsHandler(writer))
	handlers.RegisterHealthRoutes(g, handlers.NewHealthHandler(healthService, sms))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(cfg.HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
			c <- syscall.SIGTERM
		}
	}()

	<-c
	done := make(chan struct{})
	go func() {
		s.Shutdown()
		close(done)
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn("shutdown timed out")
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Stat(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
