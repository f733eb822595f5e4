package wizard

import (
	"context"
	"strings"
	"testing"

	"github.com/cozn1l/gorosso/domain"
)

type fakeCatalog struct {
	categories map[string]domain.Category
	products   map[int64]domain.Product
	nextCatID  int64
	nextProdID int64

	updates           []string
	deleted           []int64
	deleteCategoryErr error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		categories: make(map[string]domain.Category),
		products:   make(map[int64]domain.Product),
	}
}

func (f *fakeCatalog) EnsureCategory(_ context.Context, name string) (domain.Category, error) {
	if c, ok := f.categories[name]; ok {
		return c, nil
	}
	f.nextCatID++
	c := domain.Category{ID: f.nextCatID, Name: name}
	f.categories[name] = c
	return c, nil
}

func (f *fakeCatalog) CreateProduct(_ context.Context, p domain.Product) (domain.Product, error) {
	f.nextProdID++
	p.ID = f.nextProdID
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeCatalog) GetProduct(_ context.Context, id int64) (domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, domain.E(domain.KindNotFound, "fake.get_product", "no such product")
	}
	return p, nil
}

func (f *fakeCatalog) UpdateProductField(_ context.Context, id int64, field string, value any) error {
	if _, ok := f.products[id]; !ok {
		return domain.E(domain.KindNotFound, "fake.update", "no such product")
	}
	f.updates = append(f.updates, field)
	if field == "stock" {
		p := f.products[id]
		p.Stock = value.(int64)
		f.products[id] = p
	}
	return nil
}

func (f *fakeCatalog) DeleteProduct(_ context.Context, id int64) error {
	delete(f.products, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCatalog) DeleteCategory(_ context.Context, id int64) error {
	if f.deleteCategoryErr != nil {
		return f.deleteCategoryErr
	}
	for name, c := range f.categories {
		if c.ID == id {
			delete(f.categories, name)
			return nil
		}
	}
	return domain.E(domain.KindNotFound, "fake.delete_category", "no such category")
}

func newTestEngine(cat Catalog) *Engine {
	e := NewEngine(NewMemoryStore(), nil)
	RegisterCatalogWizards(e, cat)
	return e
}

// drive feeds replies in order, failing the test on any engine error, and
// returns the final outcome.
func drive(t *testing.T, e *Engine, userID int64, replies ...string) Outcome {
	t.Helper()
	var out Outcome
	for _, r := range replies {
		var err error
		out, err = e.Advance(context.Background(), userID, r)
		if err != nil {
			t.Fatalf("Advance(%q): %v", r, err)
		}
	}
	return out
}

func TestAddProductFlow(t *testing.T) {
	cat := newFakeCatalog()
	e := newTestEngine(cat)
	ctx := context.Background()

	prompt, err := e.Start(ctx, 7, AddProduct)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !strings.Contains(prompt, "name") {
		t.Fatalf("first prompt = %q", prompt)
	}
	if !e.InProgress(7) {
		t.Fatal("session not in progress after Start")
	}

	out := drive(t, e, 7,
		"Hoodie",
		"Streetwear",
		"750",
		"Heavy fleece",
		"S, M, L",
		"Black,White",
		"12",
		"file-id-123",
	)
	if !out.Done {
		t.Fatalf("wizard not done: %+v", out)
	}
	if e.InProgress(7) {
		t.Fatal("session survived commit")
	}

	p, ok := cat.products[1]
	if !ok {
		t.Fatal("product not created")
	}
	if p.Price != 75000 {
		t.Fatalf("price = %d, want 75000 minor units", p.Price)
	}
	if p.Sizes != "S,M,L" || p.Colors != "Black,White" {
		t.Fatalf("sizes/colors = %q/%q", p.Sizes, p.Colors)
	}
	if p.Stock != 12 || p.CategoryID != 1 {
		t.Fatalf("product = %+v", p)
	}
}

func TestValidationReasks(t *testing.T) {
	cat := newFakeCatalog()
	e := newTestEngine(cat)
	ctx := context.Background()

	if _, err := e.Start(ctx, 7, AddProduct); err != nil {
		t.Fatalf("Start: %v", err)
	}
	drive(t, e, 7, "Hoodie", "Streetwear")

	out, err := e.Advance(ctx, 7, "not a price")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if out.Done {
		t.Fatal("wizard finished on invalid input")
	}
	if !strings.Contains(out.Reply, "price") && !strings.Contains(out.Reply, "Price") {
		t.Fatalf("re-prompt = %q", out.Reply)
	}

	// Valid value after re-prompt continues the same flow.
	out = drive(t, e, 7, "749.99")
	if !strings.Contains(out.Reply, "Description") {
		t.Fatalf("next prompt = %q", out.Reply)
	}
}

func TestLastStartWins(t *testing.T) {
	cat := newFakeCatalog()
	cat.products[5] = domain.Product{ID: 5, Name: "Cap"}
	e := newTestEngine(cat)
	ctx := context.Background()

	if _, err := e.Start(ctx, 7, AddProduct); err != nil {
		t.Fatalf("Start add: %v", err)
	}
	if _, err := e.Start(ctx, 7, DeleteProduct); err != nil {
		t.Fatalf("Start delete: %v", err)
	}

	out := drive(t, e, 7, "5")
	if !out.Done {
		t.Fatalf("delete wizard not done: %+v", out)
	}
	if len(cat.deleted) != 1 || cat.deleted[0] != 5 {
		t.Fatalf("deleted = %v", cat.deleted)
	}
}

func TestCancel(t *testing.T) {
	e := newTestEngine(newFakeCatalog())
	ctx := context.Background()

	existed, err := e.Cancel(ctx, 7)
	if err != nil || existed {
		t.Fatalf("Cancel with no session = %v, %v", existed, err)
	}

	if _, err := e.Start(ctx, 7, AddProduct); err != nil {
		t.Fatalf("Start: %v", err)
	}
	existed, err = e.Cancel(ctx, 7)
	if err != nil || !existed {
		t.Fatalf("Cancel = %v, %v", existed, err)
	}
	if e.InProgress(7) {
		t.Fatal("session survived cancel")
	}
}

func TestAdvanceWithoutSession(t *testing.T) {
	e := newTestEngine(newFakeCatalog())
	_, err := e.Advance(context.Background(), 7, "hello")
	if !domain.IsKind(err, domain.KindNoActiveSession) {
		t.Fatalf("want NO_ACTIVE_SESSION, got %v", err)
	}
}

func TestEditProductTypedValue(t *testing.T) {
	cat := newFakeCatalog()
	cat.products[3] = domain.Product{ID: 3, Name: "Hoodie", Stock: 1}
	e := newTestEngine(cat)
	ctx := context.Background()

	if _, err := e.Start(ctx, 7, EditProduct); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Unknown field re-asks with the allow-list.
	drive(t, e, 7, "3")
	out, err := e.Advance(ctx, 7, "owner")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if out.Done || !strings.Contains(out.Reply, "stock") {
		t.Fatalf("allow-list re-prompt = %q", out.Reply)
	}

	out = drive(t, e, 7, "stock", "42")
	if !out.Done {
		t.Fatalf("edit not done: %+v", out)
	}
	if got := cat.products[3].Stock; got != 42 {
		t.Fatalf("stock = %d, want 42", got)
	}
	if len(cat.updates) != 1 || cat.updates[0] != "stock" {
		t.Fatalf("updates = %v", cat.updates)
	}
}

func TestCommitFailureClearsSession(t *testing.T) {
	cat := newFakeCatalog()
	e := newTestEngine(cat)
	ctx := context.Background()

	if _, err := e.Start(ctx, 7, DeleteCategory); err != nil {
		t.Fatalf("Start: %v", err)
	}
	_, err := e.Advance(ctx, 7, "99")
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("want NOT_FOUND from commit, got %v", err)
	}
	if e.InProgress(7) {
		t.Fatal("session survived failed commit")
	}
}

func TestDeleteCategoryWithProductsAborts(t *testing.T) {
	cat := newFakeCatalog()
	cat.categories["Streetwear"] = domain.Category{ID: 1, Name: "Streetwear"}
	cat.deleteCategoryErr = domain.E(domain.KindConstraintViolation,
		"fake.delete_category", "category has products")
	e := newTestEngine(cat)
	ctx := context.Background()

	if _, err := e.Start(ctx, 7, DeleteCategory); err != nil {
		t.Fatalf("Start: %v", err)
	}
	_, err := e.Advance(ctx, 7, "1")
	if !domain.IsKind(err, domain.KindConstraintViolation) {
		t.Fatalf("want CONSTRAINT_VIOLATION from commit, got %v", err)
	}
	if e.InProgress(7) {
		t.Fatal("session survived aborted delete")
	}
	if _, ok := cat.categories["Streetwear"]; !ok {
		t.Fatal("category deleted despite constraint")
	}
}
