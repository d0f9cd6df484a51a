package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config of the mock SMS provider used for local runs of the ledger.
type Config struct {
	Port         string        `env:"PORT,default=8081"`
	APIID        string        `env:"MOCK_SMS_API_ID"`
	DeliveryRate float64       `env:"DELIVERY_RATE,default=1"`
	HangRate     float64       `env:"HANG_RATE,default=0"`
	MinDelay     time.Duration `env:"MIN_DELAY,default=50ms"`
	MaxDelay     time.Duration `env:"MAX_DELAY,default=500ms"`
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to read configuration")
	}

	log.Info().
		Str("port", cfg.Port).
		Float64("delivery_rate", cfg.DeliveryRate).
		Float64("hang_rate", cfg.HangRate).
		Dur("min_delay", cfg.MinDelay).
		Dur("max_delay", cfg.MaxDelay).
		Msg("starting mock sms provider")

	router := SetupRouter(NewHandler(NewMockProvider(cfg)))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
}
