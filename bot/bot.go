// Package bot implements the Telegram surface of the shop: the storefront
// menu with the webapp button, checkout over Telegram Payments, and the
// admin's catalog wizards.
package bot

import (
	"context"

	tele "gopkg.in/telebot.v4"

	tg "github.com/cozn1l/gorosso/core/telegram"
	"github.com/cozn1l/gorosso/core/telegram/commands"
	"github.com/cozn1l/gorosso/core/telegram/router"
	"github.com/cozn1l/gorosso/core/telegram/ui"
	"github.com/cozn1l/gorosso/domain"
	"github.com/cozn1l/gorosso/payments"
	"github.com/cozn1l/gorosso/wizard"
)

// Config carries the shop-specific settings the handlers need.
type Config struct {
	AdminID   int64
	WebAppURL string
	Contacts  string
}

// CatalogReader is the slice of the store the handlers read from.
type CatalogReader interface {
	ListProducts(ctx context.Context) ([]domain.ProductRow, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
}

// OrderReader lists a buyer's past orders.
type OrderReader interface {
	ListOrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error)
}

// Bot holds the handler dependencies.
type Bot struct {
	cfg      Config
	catalog  CatalogReader
	orders   OrderReader
	pipeline *payments.Pipeline
	wizards  *wizard.Engine
	issuer   *TelegramIssuer
}

// New wires the bot surface. The issuer must be the same instance handed to
// the pipeline so invoices go out through the running tele.Bot.
func New(cfg Config, catalog CatalogReader, orders OrderReader, pipeline *payments.Pipeline, wizards *wizard.Engine, issuer *TelegramIssuer) *Bot {
	return &Bot{
		cfg:      cfg,
		catalog:  catalog,
		orders:   orders,
		pipeline: pipeline,
		wizards:  wizards,
		issuer:   issuer,
	}
}

// Register puts the shop's commands and callbacks into the registry.
func (b *Bot) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     b.handleStart,
		Description: "Open the shop menu",
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:     b.handleAdminMenu,
		Description: "Manage the catalog",
		AdminOnly:   true,
		Hidden:      true,
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     b.handleCancel,
		Description: "Abort the current dialog",
		Hidden:      true,
	})

	_ = reg.RegisterCallback(cbMyOrders, b.handleMyOrders)
	_ = reg.RegisterCallback(cbContacts, b.handleContacts)
	_ = reg.RegisterCallback(cbAdminAdd, b.adminOnly(b.startWizardCallback(wizard.AddProduct)))
	_ = reg.RegisterCallback(cbAdminEdit, b.adminOnly(b.startWizardCallback(wizard.EditProduct)))
	_ = reg.RegisterCallback(cbAdminDeleteProduct, b.adminOnly(b.startWizardCallback(wizard.DeleteProduct)))
	_ = reg.RegisterCallback(cbAdminDeleteCategory, b.adminOnly(b.startWizardCallback(wizard.DeleteCategory)))
	_ = reg.RegisterCallback(cbAdminList, b.adminOnly(b.handleAdminList))
	_ = reg.RegisterCallback(cbAdminProduct, b.adminOnly(b.handleAdminProduct))
	_ = reg.RegisterCallback(cbAdminCancel, b.handleCancelCallback)

	reg.SetTextFallback(b.UnknownText())
	reg.SetCallbackNotFound(b.UnknownCallback())
}

var _ ui.FallbackProvider = (*Bot)(nil)

// UnknownText handles messages that match no command or active wizard.
func (b *Bot) UnknownText() tele.HandlerFunc { return b.handleUnknownText }

// UnknownDocument ignores stray documents.
func (b *Bot) UnknownDocument() tele.HandlerFunc {
	return func(tele.Context) error { return nil }
}

// UnknownCallback answers stale inline buttons.
func (b *Bot) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "This button is no longer active"})
	}
}

// Routes returns the non-command endpoints: webapp checkout, the payment
// events, and photo routing into an active wizard.
func (b *Bot) Routes(reg *tg.Registry) []tg.Route {
	fsm := b.WizardFSM()

	routes := []tg.Route{
		{Endpoint: tele.OnWebApp, Handler: b.handleWebAppData},
		{Endpoint: tele.OnCheckout, Handler: b.handleCheckout},
		{Endpoint: tele.OnPayment, Handler: b.handlePayment},
		{Endpoint: tele.OnPhoto, Handler: b.handlePhoto},
	}
	routes = append(routes, router.TextRoutes(fsm, reg, router.TextOptions{
		UnknownText:     b.UnknownText(),
		UnknownDocument: b.UnknownDocument(),
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	return routes
}

// adminOnly guards a callback handler; callbacks bypass the command-level
// admin middleware so the check is repeated here.
func (b *Bot) adminOnly(h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if b.cfg.AdminID == 0 || c.Sender().ID != b.cfg.AdminID {
			return c.Respond(&tele.CallbackResponse{Text: "Admins only"})
		}
		return h(c)
	}
}
