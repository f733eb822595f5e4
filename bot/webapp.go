package bot

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/cozn1l/gorosso/core/telegram/helpers"
	"github.com/cozn1l/gorosso/domain"
)

var validate = validator.New()

// webAppOrder is the checkout payload posted by the storefront webapp. Cart
// keys are "<product>_<size>_<color>" and are treated as opaque line ids.
type webAppOrder struct {
	Command string      `json:"command" validate:"required,eq=create_order"`
	Cart    domain.Cart `json:"cart" validate:"required,dive"`
}

// parseWebAppOrder decodes and validates the raw payload from
// Message.WebAppData.
func parseWebAppOrder(data string) (domain.Cart, error) {
	const op = "bot.webapp"
	var order webAppOrder
	if err := json.Unmarshal([]byte(data), &order); err != nil {
		return nil, domain.Wrap(domain.KindValidationFailed, op, err)
	}
	if err := validate.Struct(order); err != nil {
		return nil, domain.Wrap(domain.KindValidationFailed, op, err)
	}
	return order.Cart, nil
}

func (b *Bot) handleWebAppData(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.WebAppData == nil {
		return nil
	}

	cart, err := parseWebAppOrder(msg.WebAppData.Data)
	if err != nil {
		_ = tghelpers.SendText(c, "Could not read your cart, please try again.")
		return err
	}

	ctx := tghelpers.BuildContext(c)
	if _, _, err := b.pipeline.SubmitCart(ctx, c.Sender().ID, cart); err != nil {
		_ = tghelpers.SendText(c, userText(err))
		return err
	}
	// The invoice message itself is the confirmation.
	return nil
}
