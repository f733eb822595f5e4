// Package app wires the shop together: storage, payment pipeline, wizards,
// the Telegram surface, the storefront API, and the expiry sweeper.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/cozn1l/gorosso/bot"
	"github.com/cozn1l/gorosso/core/bootstrap"
	coretelegram "github.com/cozn1l/gorosso/core/telegram"
	"github.com/cozn1l/gorosso/core/telegram/router"
	"github.com/cozn1l/gorosso/metrics"
	"github.com/cozn1l/gorosso/payments"
	"github.com/cozn1l/gorosso/storage"
	"github.com/cozn1l/gorosso/webapi"
	"github.com/cozn1l/gorosso/wizard"
)

// App holds the wired components for the lifetime of the process.
type App struct {
	cfg *Config

	db      *sqlx.DB
	rdb     *redis.Client
	store   *storage.Store
	shopM   *metrics.Shop
	issuer  *bot.TelegramIssuer
	bot     *bot.Bot
	api     *webapi.Server
	sweeper *payments.Sweeper

	stopSweeper context.CancelFunc
}

// Bootstrap initializes infrastructure and builds the application graph.
func Bootstrap(cfg *Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   &cfg.Config,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	store := storage.New(res.DB)
	shopM := metrics.NewShop()

	var rdb *redis.Client
	sessions := wizard.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		sessions = wizard.NewRedisStore(rdb, cfg.Redis.SessionTTL())
	}
	engine := wizard.NewEngine(sessions, shopM)
	wizard.RegisterCatalogWizards(engine, store)

	issuer := bot.NewTelegramIssuer(cfg.Payments.ProviderToken)
	pipeline := payments.NewPipeline(store, store, issuer,
		cfg.Payments.Currency, cfg.Payments.InvoiceTitle, shopM)

	shopBot := bot.New(bot.Config{
		AdminID:   cfg.Telegram.AdminID,
		WebAppURL: cfg.Shop.WebAppURL,
		Contacts:  cfg.Shop.Contacts,
	}, store, store, pipeline, engine, issuer)

	api := webapi.New(webapi.Options{
		Listen:         cfg.API.Listen,
		AllowedOrigins: cfg.API.AllowedOrigins,
		Catalog:        store,
		Metrics:        shopM,
	})

	sweeper := payments.NewSweeper(store,
		cfg.Payments.PendingTTL(), cfg.Payments.SweepInterval(), shopM)

	return &App{
		cfg:     cfg,
		db:      res.DB,
		rdb:     rdb,
		store:   store,
		shopM:   shopM,
		issuer:  issuer,
		bot:     shopBot,
		api:     api,
		sweeper: sweeper,
	}, nil
}

// TelegramRunOptions assembles the bot runtime: registry, routes, middleware,
// and lifecycle hooks that start and stop the API server and the sweeper.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.bot.Register(reg)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, a.bot.Routes(reg)...)

	return coretelegram.RunOptions{
		Config:      &a.cfg.Config,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Config, nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			if rt.Bot == nil {
				return fmt.Errorf("app: runtime has no bot")
			}
			a.issuer.Bind(rt.Bot)

			go a.api.Start()

			sweepCtx, cancel := context.WithCancel(context.Background())
			a.stopSweeper = cancel
			go a.sweeper.Run(sweepCtx)
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			if a.stopSweeper != nil {
				a.stopSweeper()
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = a.api.Shutdown(shutdownCtx)
			if a.rdb != nil {
				_ = a.rdb.Close()
			}
			return a.db.Close()
		},
	}, nil
}
