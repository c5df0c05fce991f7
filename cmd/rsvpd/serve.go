package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/go-wedding-rsvp/internal/config"
	httpapi "github.com/tbourn/go-wedding-rsvp/internal/http"
	"github.com/tbourn/go-wedding-rsvp/internal/notify"
	"github.com/tbourn/go-wedding-rsvp/internal/observability"
	"github.com/tbourn/go-wedding-rsvp/internal/ratelimit"
	"github.com/tbourn/go-wedding-rsvp/internal/repo"
	"github.com/tbourn/go-wedding-rsvp/internal/sysutil"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return serve(commandContext(cmd), cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	sysutil.SetupLogger(os.Stderr, cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(cfg.GinMode)

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return fmt.Errorf("init otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Error().Err(err).Msg("shutdown otel")
		}
	}()

	db, err := repo.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := repo.Close(db); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	store, closeStore, err := counterStore(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer closeStore()

	channels, closeChannels, err := notifier(cfg.Notify)
	if err != nil {
		return err
	}
	defer closeChannels()
	async := notify.NewAsync(channels, cfg.Notify.Timeout)

	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{DB: db, Counters: store, Notifier: async}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("db_driver", cfg.DBDriver).
			Str("counter_backend", cfg.CounterBackend).
			Str("version", version).
			Msg("starting rsvpd")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("shutdown server")
	}
	async.Wait()
	log.Info().Msg("rsvpd stopped")
	return nil
}

// counterStore selects where the abuse counters live.
func counterStore(ctx context.Context, cfg config.Config, db *gorm.DB) (ratelimit.Store, func(), error) {
	if cfg.CounterBackend != "redis" {
		return ratelimit.NewSQLStore(db), func() {}, nil
	}
	rs, err := ratelimit.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return rs, func() {
		if err := rs.Close(); err != nil {
			log.Error().Err(err).Msg("close redis")
		}
	}, nil
}

// notifier builds the operator channels. The log channel is always on.
func notifier(cfg config.NotifyConfig) (notify.Notifier, func(), error) {
	fan := notify.Fanout{notify.Log{}}
	closers := []func(){}

	if cfg.SMTPHost != "" {
		m, err := notify.NewMailer(notify.MailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.From,
			To:       cfg.To,
			ReplyTo:  cfg.ReplyTo,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("smtp notifier: %w", err)
		}
		fan = append(fan, m)
	}

	if cfg.NATSURL != "" {
		p, err := notify.NewPublisher(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			return nil, nil, fmt.Errorf("nats notifier: %w", err)
		}
		fan = append(fan, p)
		closers = append(closers, p.Close)
	}

	return fan, func() {
		for _, c := range closers {
			c()
		}
	}, nil
}
