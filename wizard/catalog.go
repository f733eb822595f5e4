package wizard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cozn1l/gorosso/domain"
	"github.com/cozn1l/gorosso/storage"
)

// Wizard names, used by the bot's admin callbacks to start flows.
const (
	AddProduct     = "add_product"
	EditProduct    = "edit_product"
	DeleteProduct  = "delete_product"
	DeleteCategory = "delete_category"
)

// Catalog is the slice of the store the wizards commit through.
type Catalog interface {
	EnsureCategory(ctx context.Context, name string) (domain.Category, error)
	CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	UpdateProductField(ctx context.Context, id int64, field string, value any) error
	DeleteProduct(ctx context.Context, id int64) error
	DeleteCategory(ctx context.Context, id int64) error
}

// RegisterCatalogWizards wires the four admin flows into the engine.
func RegisterCatalogWizards(e *Engine, cat Catalog) {
	e.Register(addProductWizard(cat))
	e.Register(editProductWizard(cat))
	e.Register(deleteProductWizard(cat))
	e.Register(deleteCategoryWizard(cat))
}

func addProductWizard(cat Catalog) Definition {
	return Definition{
		Name: AddProduct,
		Steps: []Step{
			{Field: "name", Prompt: ask("Product name:"), Parse: parseText},
			{Field: "category", Prompt: ask("Category (created if it does not exist):"), Parse: parseText},
			{Field: "price", Prompt: ask("Price, e.g. 750 or 749.99:"), Parse: parsePrice},
			{Field: "description", Prompt: ask("Description:"), Parse: parseText},
			{Field: "sizes", Prompt: ask("Sizes, comma separated (or \"-\" for none):"), Parse: parseList},
			{Field: "colors", Prompt: ask("Colors, comma separated (or \"-\" for none):"), Parse: parseList},
			{Field: "stock", Prompt: ask("Stock quantity:"), Parse: parseStock},
			{Field: "photo", Prompt: ask("Send the product photo:"), Parse: parseText},
		},
		Commit: func(ctx context.Context, f Fields) (string, error) {
			category, err := cat.EnsureCategory(ctx, f["category"])
			if err != nil {
				return "", err
			}
			price, _ := strconv.ParseInt(f["price"], 10, 64)
			stock, _ := strconv.ParseInt(f["stock"], 10, 64)
			p, err := cat.CreateProduct(ctx, domain.Product{
				Name:        f["name"],
				CategoryID:  category.ID,
				Price:       price,
				Description: f["description"],
				Sizes:       f["sizes"],
				Colors:      f["colors"],
				Photo:       f["photo"],
				Stock:       stock,
			})
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Added product #%d %q to %q at %s.",
				p.ID, p.Name, category.Name, domain.FormatMinorUnits(p.Price)), nil
		},
	}
}

func editProductWizard(cat Catalog) Definition {
	return Definition{
		Name: EditProduct,
		Steps: []Step{
			{Field: "id", Prompt: ask("Product id to edit:"), Parse: parseProductID(cat)},
			{
				Field: "field",
				Prompt: ask("Field to change (" +
					strings.Join(storage.EditableFields(), ", ") + "):"),
				Parse: parseEditableField,
			},
			{
				Field: "value",
				Prompt: func(f Fields) string {
					return fmt.Sprintf("New value for %s:", f["field"])
				},
				Parse: parseFieldValue,
			},
		},
		Commit: func(ctx context.Context, f Fields) (string, error) {
			id, _ := strconv.ParseInt(f["id"], 10, 64)
			field := f["field"]
			var value any
			switch field {
			case "price", "stock":
				value, _ = strconv.ParseInt(f["value"], 10, 64)
			default:
				value = f["value"]
			}
			if err := cat.UpdateProductField(ctx, id, field, value); err != nil {
				return "", err
			}
			return fmt.Sprintf("Product #%d updated: %s set.", id, field), nil
		},
	}
}

func deleteProductWizard(cat Catalog) Definition {
	return Definition{
		Name: DeleteProduct,
		Steps: []Step{
			{Field: "id", Prompt: ask("Product id to delete:"), Parse: parseProductID(cat)},
		},
		Commit: func(ctx context.Context, f Fields) (string, error) {
			id, _ := strconv.ParseInt(f["id"], 10, 64)
			if err := cat.DeleteProduct(ctx, id); err != nil {
				return "", err
			}
			return fmt.Sprintf("Product #%d deleted.", id), nil
		},
	}
}

func deleteCategoryWizard(cat Catalog) Definition {
	return Definition{
		Name: DeleteCategory,
		Steps: []Step{
			{Field: "id", Prompt: ask("Category id to delete (must be empty):"), Parse: parsePositiveID},
		},
		Commit: func(ctx context.Context, f Fields) (string, error) {
			id, _ := strconv.ParseInt(f["id"], 10, 64)
			if err := cat.DeleteCategory(ctx, id); err != nil {
				return "", err
			}
			return fmt.Sprintf("Category #%d deleted.", id), nil
		},
	}
}

func parseText(_ context.Context, _ Fields, raw string) (string, error) {
	const op = "wizard.parse_text"
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", domain.E(domain.KindValidationFailed, op, "Value must not be empty.")
	}
	return v, nil
}

func parsePrice(_ context.Context, _ Fields, raw string) (string, error) {
	minor, err := domain.ParseMinorUnits(raw)
	if err != nil {
		return "", domain.E(domain.KindValidationFailed, "wizard.parse_price",
			"Enter a non-negative price like 750 or 749.99.")
	}
	return strconv.FormatInt(minor, 10), nil
}

func parseStock(_ context.Context, _ Fields, raw string) (string, error) {
	const op = "wizard.parse_stock"
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 0 {
		return "", domain.E(domain.KindValidationFailed, op, "Enter a whole non-negative quantity.")
	}
	return strconv.FormatInt(n, 10), nil
}

// parseList normalizes a comma separated reply; "-" means no values.
func parseList(_ context.Context, _ Fields, raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "-" || v == "--" {
		return "", nil
	}
	joined := domain.JoinList([]string{v})
	if joined == "" {
		return "", domain.E(domain.KindValidationFailed, "wizard.parse_list",
			"Enter comma separated values, or \"-\" for none.")
	}
	return joined, nil
}

func parsePositiveID(_ context.Context, _ Fields, raw string) (string, error) {
	const op = "wizard.parse_id"
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return "", domain.E(domain.KindValidationFailed, op, "Enter a numeric id.")
	}
	return strconv.FormatInt(id, 10), nil
}

// parseProductID additionally checks the product exists so typos are caught
// at the first step, not at commit.
func parseProductID(cat Catalog) func(context.Context, Fields, string) (string, error) {
	return func(ctx context.Context, f Fields, raw string) (string, error) {
		v, err := parsePositiveID(ctx, f, raw)
		if err != nil {
			return "", err
		}
		id, _ := strconv.ParseInt(v, 10, 64)
		if _, err := cat.GetProduct(ctx, id); err != nil {
			if domain.IsKind(err, domain.KindNotFound) {
				return "", domain.Ef(domain.KindValidationFailed, "wizard.parse_product_id",
					"No product with id %d.", id)
			}
			return "", err
		}
		return v, nil
	}
}

func parseEditableField(_ context.Context, _ Fields, raw string) (string, error) {
	const op = "wizard.parse_field"
	field := strings.ToLower(strings.TrimSpace(raw))
	if !storage.IsEditableField(field) {
		return "", domain.Ef(domain.KindValidationFailed, op,
			"Field must be one of: %s.", strings.Join(storage.EditableFields(), ", "))
	}
	return field, nil
}

// parseFieldValue validates the new value according to the field picked in
// the previous step.
func parseFieldValue(ctx context.Context, f Fields, raw string) (string, error) {
	switch f["field"] {
	case "price":
		return parsePrice(ctx, f, raw)
	case "stock":
		return parseStock(ctx, f, raw)
	case "sizes", "colors":
		return parseList(ctx, f, raw)
	default:
		return parseText(ctx, f, raw)
	}
}
