package bot

import (
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/cozn1l/gorosso/core/telegram/helpers"
	"github.com/cozn1l/gorosso/core/telegram/keyboard"
	"github.com/cozn1l/gorosso/core/telegram/router"
	"github.com/cozn1l/gorosso/domain"
)

// wizardFSM routes messages from admins with an active wizard session into
// the engine instead of command lookup.
type wizardFSM struct {
	b *Bot
}

// WizardFSM exposes the wizard engine through the message router's
// conversation interface.
func (b *Bot) WizardFSM() router.FSM {
	return wizardFSM{b: b}
}

func (w wizardFSM) InProgress(userID int64) bool {
	return w.b.wizards.InProgress(userID)
}

func (w wizardFSM) Handle(c tele.Context) error {
	return w.b.advanceWizard(c, wizardInput(c))
}

// handlePhoto feeds photos into an active wizard (the add-product flow ends
// with one); photos outside a wizard are ignored.
func (b *Bot) handlePhoto(c tele.Context) error {
	if !b.wizards.InProgress(c.Sender().ID) {
		return nil
	}
	return b.advanceWizard(c, wizardInput(c))
}

// wizardInput extracts the step answer from the update. A photo answers with
// its file id, anything else with the message text.
func wizardInput(c tele.Context) string {
	if msg := c.Message(); msg != nil && msg.Photo != nil {
		return msg.Photo.FileID
	}
	return c.Text()
}

func (b *Bot) advanceWizard(c tele.Context, input string) error {
	ctx := tghelpers.BuildContext(c)
	out, err := b.wizards.Advance(ctx, c.Sender().ID, input)
	if err != nil {
		if domain.IsKind(err, domain.KindNoActiveSession) {
			return b.handleUnknownText(c)
		}
		_ = tghelpers.SendText(c, userText(err))
		return err
	}
	if out.Done {
		return tghelpers.SendText(c, out.Reply)
	}
	return tghelpers.SendText(c, out.Reply, &tele.SendOptions{
		ReplyMarkup: keyboard.SingleCancelMarkup(cbAdminCancel),
	})
}
