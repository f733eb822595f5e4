package bot

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/cozn1l/gorosso/core/telegram/helpers"
	"github.com/cozn1l/gorosso/domain"
	"github.com/cozn1l/gorosso/payments"
)

// TelegramIssuer sends invoices through the running tele.Bot. It is created
// during bootstrap and bound to the bot instance once the runtime is up.
type TelegramIssuer struct {
	token string
	bot   atomic.Pointer[tele.Bot]
}

// NewTelegramIssuer builds an issuer for the given payment provider token.
func NewTelegramIssuer(providerToken string) *TelegramIssuer {
	return &TelegramIssuer{token: providerToken}
}

// Bind attaches the running bot. Must be called before the first checkout.
func (t *TelegramIssuer) Bind(b *tele.Bot) {
	t.bot.Store(b)
}

// Issue sends the invoice to the buyer's private chat.
func (t *TelegramIssuer) Issue(_ context.Context, inv payments.Invoice) error {
	b := t.bot.Load()
	if b == nil {
		return errors.New("issuer: bot not bound")
	}
	prices := make([]tele.Price, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		prices = append(prices, tele.Price{Label: l.Label, Amount: int(l.Amount)})
	}
	invoice := tele.Invoice{
		Title:       inv.Title,
		Description: inv.Description,
		Payload:     inv.Payload,
		Currency:    inv.Currency,
		Token:       t.token,
		Prices:      prices,
	}
	_, err := b.Send(&tele.User{ID: inv.UserID}, &invoice)
	return err
}

// handleCheckout answers the provider's pre-checkout query. Telegram gives
// us ten seconds; anything but an explicit Accept cancels the charge.
func (b *Bot) handleCheckout(c tele.Context) error {
	q := c.PreCheckoutQuery()
	if q == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	if err := b.pipeline.PreCheckout(ctx, payments.PreCheckout{
		Payload: q.Payload,
		Amount:  int64(q.Total),
	}); err != nil {
		_ = c.Accept(userText(err))
		return err
	}
	return c.Accept()
}

func (b *Bot) handlePayment(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Payment == nil {
		return nil
	}
	pay := msg.Payment

	ctx := tghelpers.BuildContext(c)
	res, err := b.pipeline.Capture(ctx, payments.Confirmation{
		Payload: pay.Payload,
		UserID:  c.Sender().ID,
		Receipt: pay.ProviderChargeID,
	})
	if err != nil {
		_ = tghelpers.SendText(c, userText(err))
		return err
	}
	if res.Duplicate {
		return nil
	}
	return tghelpers.SendText(c, fmt.Sprintf(
		"Payment received! Your order number is %s.\nTotal: %s. Thank you for shopping with us!",
		res.Order.OrderNumber,
		domain.FormatMinorUnits(res.Order.TotalAmount),
	))
}
