package bot

import (
	"errors"

	"github.com/cozn1l/gorosso/domain"
)

// Callback keys. Inline buttons are built with these as the unique part.
const (
	cbMyOrders            = "my_orders"
	cbContacts            = "contacts"
	cbAdminAdd            = "admin_add_product"
	cbAdminEdit           = "admin_edit_product"
	cbAdminDeleteProduct  = "admin_delete_product"
	cbAdminDeleteCategory = "admin_delete_category"
	cbAdminList           = "admin_list_products"
	cbAdminProduct        = "admin_product"
	cbAdminCancel         = "admin_cancel"
)

const (
	textWelcome         = "Welcome to Gorosso! Tap the button below to browse the catalog."
	textNoOrders        = "You have no orders yet."
	textUnknown         = "I did not understand that. Use /start to open the menu."
	textCancelled       = "Dialog cancelled."
	textNothingToCancel = "Nothing to cancel."
)

// userText maps a coded error to something a buyer or admin can act on.
// Anything uncoded stays generic; details belong in the logs.
func userText(err error) string {
	var de *domain.Error
	if !errors.As(err, &de) {
		return "Something went wrong, please try again later."
	}
	switch de.Kind {
	case domain.KindEmptyCart:
		return "Your cart is empty."
	case domain.KindNotFound:
		return "Not found."
	case domain.KindConstraintViolation:
		return "The category still has products; delete or move them first."
	case domain.KindUnknownPayload:
		return "This invoice has expired, please checkout again."
	case domain.KindValidationFailed, domain.KindInvalidField:
		if de.Msg != "" {
			return de.Msg
		}
		return "Invalid value."
	default:
		return "Something went wrong, please try again later."
	}
}
