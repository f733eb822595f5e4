package storage

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/cozn1l/gorosso/core/logger"
	"github.com/cozn1l/gorosso/domain"
)

// editableColumns is the only place a caller-supplied field name may turn
// into a column reference. Everything else is rejected with InvalidField.
var editableColumns = map[string]string{
	"name":        "name",
	"price":       "price",
	"description": "description",
	"sizes":       "sizes",
	"colors":      "colors",
	"stock":       "stock",
	"photo":       "photo",
}

// EditableFields lists the product fields admins may edit, sorted for prompts.
func EditableFields() []string {
	fields := make([]string, 0, len(editableColumns))
	for f := range editableColumns {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// IsEditableField reports whether field is on the edit allow-list.
func IsEditableField(field string) bool {
	_, ok := editableColumns[field]
	return ok
}

// CreateCategory inserts a new category with a unique name.
func (s *Store) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	const op = "catalog.create_category"
	var cat domain.Category
	err := s.db.GetContext(ctx, &cat,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id, name`, name)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Category{}, domain.Ef(domain.KindConstraintViolation, op, "category %q already exists", name)
		}
		return domain.Category{}, domain.Wrap(domain.KindInternal, op, err)
	}
	logger.SVCCatalog.Info("category created",
		slog.String("event", "catalog.category.create"),
		slog.Int64("category_id", cat.ID),
	)
	return cat, nil
}

// CategoryByName looks a category up by its exact name.
func (s *Store) CategoryByName(ctx context.Context, name string) (domain.Category, error) {
	const op = "catalog.category_by_name"
	var cat domain.Category
	err := s.db.GetContext(ctx, &cat,
		`SELECT id, name FROM categories WHERE name = $1`, name)
	if err != nil {
		if isNoRows(err) {
			return domain.Category{}, domain.Ef(domain.KindNotFound, op, "category %q not found", name)
		}
		return domain.Category{}, domain.Wrap(domain.KindInternal, op, err)
	}
	return cat, nil
}

// EnsureCategory returns the category with the given name, creating it when
// absent. Safe against concurrent creators.
func (s *Store) EnsureCategory(ctx context.Context, name string) (domain.Category, error) {
	cat, err := s.CategoryByName(ctx, name)
	if err == nil {
		return cat, nil
	}
	if !domain.IsKind(err, domain.KindNotFound) {
		return domain.Category{}, err
	}
	cat, err = s.CreateCategory(ctx, name)
	if err == nil {
		return cat, nil
	}
	if domain.IsKind(err, domain.KindConstraintViolation) {
		// Lost the race; the other creator's row is what we want.
		return s.CategoryByName(ctx, name)
	}
	return domain.Category{}, err
}

// DeleteCategory removes a category that has no referencing products.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	const op = "catalog.delete_category"
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM categories
		  WHERE id = $1
		    AND NOT EXISTS (SELECT 1 FROM products WHERE category_id = $1)`, id)
	if err != nil {
		return domain.Wrap(domain.KindInternal, op, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		logger.SVCCatalog.Info("category deleted",
			slog.String("event", "catalog.category.delete"),
			slog.Int64("category_id", id),
		)
		return nil
	}
	var exists bool
	if err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id); err != nil {
		return domain.Wrap(domain.KindInternal, op, err)
	}
	if exists {
		return domain.Ef(domain.KindConstraintViolation, op, "category %d still has products", id)
	}
	return domain.Ef(domain.KindNotFound, op, "category %d not found", id)
}

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "catalog.list_categories"
	var cats []domain.Category
	if err := s.db.SelectContext(ctx, &cats,
		`SELECT id, name FROM categories ORDER BY name`); err != nil {
		return nil, domain.Wrap(domain.KindInternal, op, err)
	}
	return cats, nil
}

// CreateProduct inserts a product and returns it with its assigned id.
func (s *Store) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	const op = "catalog.create_product"
	start := time.Now()
	err := s.db.GetContext(ctx, &p,
		`INSERT INTO products (name, category_id, price, description, sizes, colors, photo, stock, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		 RETURNING id, name, category_id, price, description, sizes, colors, photo, stock, created_at`,
		p.Name, p.CategoryID, p.Price, p.Description, p.Sizes, p.Colors, p.Photo, p.Stock)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Product{}, domain.Ef(domain.KindConstraintViolation, op, "category %d does not exist", p.CategoryID)
		}
		return domain.Product{}, domain.Wrap(domain.KindInternal, op, err)
	}
	logger.SVCCatalog.Info("product created",
		slog.String("event", "catalog.product.create"),
		slog.Int64("product_id", p.ID),
		slog.Int64("category_id", p.CategoryID),
		slog.Duration("duration", logger.Took(start)),
	)
	return p, nil
}

// UpdateProductField applies a single-field update through the allow-list.
// The value must already be of the column's type (int64 for price/stock,
// string otherwise).
func (s *Store) UpdateProductField(ctx context.Context, id int64, field string, value any) error {
	const op = "catalog.update_product_field"
	col, ok := editableColumns[field]
	if !ok {
		return domain.Ef(domain.KindInvalidField, op, "field %q is not editable", field)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET `+col+` = $1 WHERE id = $2`, value, id)
	if err != nil {
		return domain.Wrap(domain.KindInternal, op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Ef(domain.KindNotFound, op, "product %d not found", id)
	}
	logger.SVCCatalog.Info("product updated",
		slog.String("event", "catalog.product.update"),
		slog.Int64("product_id", id),
		slog.String("field", field),
	)
	return nil
}

// DeleteProduct removes a product; deleting an absent id is a no-op.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	const op = "catalog.delete_product"
	if _, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return domain.Wrap(domain.KindInternal, op, err)
	}
	logger.SVCCatalog.Info("product deleted",
		slog.String("event", "catalog.product.delete"),
		slog.Int64("product_id", id),
	)
	return nil
}

// GetProduct fetches one product by id.
func (s *Store) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	const op = "catalog.get_product"
	var p domain.Product
	err := s.db.GetContext(ctx, &p,
		`SELECT id, name, category_id, price, description, sizes, colors, photo, stock, created_at
		   FROM products WHERE id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return domain.Product{}, domain.Ef(domain.KindNotFound, op, "product %d not found", id)
		}
		return domain.Product{}, domain.Wrap(domain.KindInternal, op, err)
	}
	return p, nil
}

// ListProducts returns products joined with category names for admin display.
func (s *Store) ListProducts(ctx context.Context) ([]domain.ProductRow, error) {
	const op = "catalog.list_products"
	var rows []domain.ProductRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT p.id, p.name, COALESCE(c.name, '') AS category, p.price, p.stock
		   FROM products p
		   LEFT JOIN categories c ON p.category_id = c.id
		  ORDER BY p.id`)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, op, err)
	}
	return rows, nil
}

// AllProducts returns full product records for the catalog read API.
func (s *Store) AllProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "catalog.all_products"
	var products []domain.Product
	err := s.db.SelectContext(ctx, &products,
		`SELECT id, name, category_id, price, description, sizes, colors, photo, stock, created_at
		   FROM products ORDER BY id`)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, op, err)
	}
	return products, nil
}
