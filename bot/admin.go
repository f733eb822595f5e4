package bot

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/cozn1l/gorosso/core/telegram/callbacks"
	"github.com/cozn1l/gorosso/core/telegram/format"
	tghelpers "github.com/cozn1l/gorosso/core/telegram/helpers"
	"github.com/cozn1l/gorosso/core/telegram/keyboard"
	"github.com/cozn1l/gorosso/domain"
)

func adminMenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "➕ Add product", Unique: cbAdminAdd},
			{Text: "✏️ Edit product", Unique: cbAdminEdit},
		},
		[]keyboard.InlineBtn{
			{Text: "🗑 Delete product", Unique: cbAdminDeleteProduct},
			{Text: "🗑 Delete category", Unique: cbAdminDeleteCategory},
		},
		[]keyboard.InlineBtn{
			{Text: "📋 List products", Unique: cbAdminList},
		},
	)
}

func (b *Bot) handleAdminMenu(c tele.Context) error {
	return tghelpers.SendText(c, "Catalog management:", &tele.SendOptions{
		ReplyMarkup: adminMenuMarkup(),
	})
}

// startWizardCallback begins the named wizard and asks the first question
// with an inline cancel button attached.
func (b *Bot) startWizardCallback(name string) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		prompt, err := b.wizards.Start(ctx, c.Sender().ID, name)
		if err != nil {
			_ = tghelpers.SendText(c, userText(err))
			return err
		}
		return tghelpers.SendText(c, prompt, &tele.SendOptions{
			ReplyMarkup: keyboard.SingleCancelMarkup(cbAdminCancel),
		})
	}
}

func (b *Bot) handleAdminList(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	rows, err := b.catalog.ListProducts(ctx)
	if err != nil {
		_ = tghelpers.SendText(c, userText(err))
		return err
	}
	if len(rows) == 0 {
		return tghelpers.SendText(c, "The catalog is empty.")
	}

	var sb strings.Builder
	sb.WriteString("Products:\n")
	markup := &tele.ReplyMarkup{}
	btns := make([]tele.Btn, 0, len(rows))
	for _, p := range rows {
		fmt.Fprintf(&sb, "\n#%d %s [%s] — %s, stock %d",
			p.ID, p.Name, p.Category, domain.FormatMinorUnits(p.Price), p.Stock)
		btns = append(btns, markup.Data(
			fmt.Sprintf("#%d %s", p.ID, p.Name),
			cbAdminProduct,
			strconv.FormatInt(p.ID, 10),
		))
	}
	markup.InlineKeyboard = keyboard.ToInlineKeyboard(keyboard.ChunkButtons(btns, 2))
	return tghelpers.SendText(c, sb.String(), &tele.SendOptions{ReplyMarkup: markup})
}

// handleAdminProduct shows one product in full, with the photo when present.
func (b *Bot) handleAdminProduct(c tele.Context) error {
	id, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Broken button"})
	}
	ctx := tghelpers.BuildContext(c)
	p, err := b.catalog.GetProduct(ctx, id)
	if err != nil {
		_ = tghelpers.SendText(c, userText(err))
		return err
	}

	name, _ := format.EscapeMarkdown(p.Name, format.MarkdownV1, "")
	desc, _ := format.EscapeMarkdown(p.Description, format.MarkdownV1, "")
	text := fmt.Sprintf("*#%d %s*\nPrice: %s\nStock: %d\nSizes: %s\nColors: %s\n\n%s",
		p.ID, name,
		domain.FormatMinorUnits(p.Price),
		p.Stock,
		listOrDash(p.SizeList()),
		listOrDash(p.ColorList()),
		desc,
	)
	if p.Photo != "" {
		return c.Send(&tele.Photo{
			File:    tele.File{FileID: p.Photo},
			Caption: text,
		}, &tele.SendOptions{ParseMode: tele.ModeMarkdown})
	}
	return tghelpers.SendMD(c, text)
}

func listOrDash(values []string) string {
	if len(values) == 0 {
		return "—"
	}
	return strings.Join(values, ", ")
}
