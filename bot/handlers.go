package bot

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/cozn1l/gorosso/core/telegram/helpers"
	"github.com/cozn1l/gorosso/core/telegram/keyboard"
	"github.com/cozn1l/gorosso/domain"
)

func (b *Bot) menuMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	shop := markup.WebApp("🛍 Open shop", &tele.WebApp{URL: b.cfg.WebAppURL})
	orders := markup.Data("📦 My orders", cbMyOrders)
	contacts := markup.Data("☎️ Contacts", cbContacts)
	markup.Inline(
		markup.Row(shop),
		markup.Row(orders, contacts),
	)
	return markup
}

func (b *Bot) handleStart(c tele.Context) error {
	return tghelpers.SendText(c, textWelcome, &tele.SendOptions{ReplyMarkup: b.menuMarkup()})
}

func (b *Bot) handleMyOrders(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	orders, err := b.orders.ListOrdersByUser(ctx, c.Sender().ID)
	if err != nil {
		_ = tghelpers.SendText(c, userText(err))
		return err
	}
	if len(orders) == 0 {
		return tghelpers.SendText(c, textNoOrders)
	}

	var sb strings.Builder
	sb.WriteString("Your orders:\n")
	for _, o := range orders {
		fmt.Fprintf(&sb, "\n%s — %s (%s)\n%s",
			o.OrderNumber,
			domain.FormatMinorUnits(o.TotalAmount),
			o.Status,
			o.CreatedAt.Format("02.01.2006 15:04"),
		)
		sb.WriteString("\n")
	}
	return tghelpers.SendText(c, sb.String())
}

func (b *Bot) handleContacts(c tele.Context) error {
	return tghelpers.SendText(c, b.cfg.Contacts)
}

func (b *Bot) handleCancel(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	existed, err := b.wizards.Cancel(ctx, c.Sender().ID)
	if err != nil {
		_ = tghelpers.SendText(c, userText(err))
		return err
	}
	if !existed {
		return tghelpers.SendText(c, textNothingToCancel)
	}
	return tghelpers.SendText(c, textCancelled, &tele.SendOptions{
		ReplyMarkup: keyboard.RemoveKeyboard(),
	})
}

func (b *Bot) handleCancelCallback(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	existed, err := b.wizards.Cancel(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	if !existed {
		return c.Respond(&tele.CallbackResponse{Text: textNothingToCancel})
	}
	return tghelpers.EditOrSendMD(c, textCancelled)
}

func (b *Bot) handleUnknownText(c tele.Context) error {
	return tghelpers.SendText(c, textUnknown)
}
