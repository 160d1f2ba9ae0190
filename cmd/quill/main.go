// Quill serves the registration, login and feedback pages.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/sethvargo/go-retry"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/jdholdren/quill/internal/auth"
	"github.com/jdholdren/quill/internal/logger"
	"github.com/jdholdren/quill/internal/migrations"
	"github.com/jdholdren/quill/internal/quill"
	"github.com/jdholdren/quill/internal/sqlite"
	"github.com/jdholdren/quill/internal/web"
)

type config struct {
	Database string `env:"DATABASE, required"`

	Port            int    `env:"PORT, default=4444"`
	HTTPSCookies    bool   `env:"HTTPS_COOKIES, default=false"`
	CookieHashKey   string `env:"COOKIE_HASH_KEY, required"`
	CookieBlockKey  string `env:"COOKIE_BLOCK_KEY"`
	BcryptCost      int    `env:"BCRYPT_COST, default=10"`
	ProfanityFilter bool   `env:"PROFANITY_FILTER, default=false"`

	// Which format to use for logging: either text or json
	LoggerFormat string `env:"LOGGER_FORMAT, default=text"`
	Debug        bool   `env:"DEBUG, default=false"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Parse the config
	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		log.Fatalf("error parsing config: %s", err)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.LoggerFormat, level))

	// Connect to the sqlite db
	dbx, err := sqlite.Open(cfg.Database)
	if err != nil {
		log.Fatalf("error opening database: %s", err)
	}
	defer dbx.Close()

	// The file can be briefly locked by another process on startup
	backoff := retry.WithMaxRetries(8, retry.NewFibonacci(100*time.Millisecond))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := dbx.PingContext(ctx); err != nil {
			slog.Warn("database not ready", "err", err)
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		log.Fatalf("error connecting to database: %s", err)
	}

	// Run all migrations
	if err := migrations.Run(dbx); err != nil {
		log.Fatalf("error running migrations: %s", err)
	}

	repo := sqlite.New(dbx)

	// Start the application
	fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.SlogLogger{Logger: slog.Default()}
		}),
		fx.Supply(
			web.ServerConfig{
				Port:            cfg.Port,
				CookieHashKey:   []byte(cfg.CookieHashKey),
				CookieBlockKey:  []byte(cfg.CookieBlockKey),
				HttpsCookies:    cfg.HTTPSCookies,
				ProfanityFilter: cfg.ProfanityFilter,
			},
			fx.Annotate(repo, fx.As(new(quill.Repository))),
			fx.Annotate(auth.BcryptHasher{Cost: cfg.BcryptCost}, fx.As(new(auth.Hasher))),
		),
		fx.Provide(
			func(r quill.Repository) quill.UserRepository { return r },
			fx.Annotate(auth.NewService, fx.As(new(web.Authenticator))),
		),
		web.Module,
	).Run()
}
