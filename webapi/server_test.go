package webapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cozn1l/gorosso/domain"
)

type fakeCatalog struct {
	categories []domain.Category
	products   []domain.Product
}

func (f *fakeCatalog) ListCategories(context.Context) ([]domain.Category, error) {
	return f.categories, nil
}

func (f *fakeCatalog) AllProducts(context.Context) ([]domain.Product, error) {
	return f.products, nil
}

func TestAllData(t *testing.T) {
	cat := &fakeCatalog{
		categories: []domain.Category{{ID: 1, Name: "Streetwear"}},
		products: []domain.Product{{
			ID:         3,
			Name:       "Hoodie",
			CategoryID: 1,
			Price:      75000,
			Sizes:      "S,M,L",
			Colors:     "Black,White",
			Stock:      12,
		}},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/all_data", nil)
	allDataHandler(cat)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Categories []domain.Category `json:"categories"`
		Products   []struct {
			ID     int64    `json:"id"`
			Name   string   `json:"name"`
			Price  int64    `json:"price"`
			Sizes  []string `json:"sizes"`
			Colors []string `json:"colors"`
		} `json:"products"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Categories) != 1 || resp.Categories[0].Name != "Streetwear" {
		t.Fatalf("categories = %+v", resp.Categories)
	}
	if len(resp.Products) != 1 {
		t.Fatalf("products = %+v", resp.Products)
	}
	p := resp.Products[0]
	if p.Price != 75000 {
		t.Fatalf("price = %d", p.Price)
	}
	if len(p.Sizes) != 3 || p.Sizes[0] != "S" {
		t.Fatalf("sizes = %v", p.Sizes)
	}
	if len(p.Colors) != 2 {
		t.Fatalf("colors = %v", p.Colors)
	}
}

func TestAllDataEmptyCatalog(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/all_data", nil)
	allDataHandler(&fakeCatalog{})(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	// Empty catalog must serialize as [] rather than null.
	body := rec.Body.String()
	var resp map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(resp["categories"]) != "[]" || string(resp["products"]) != "[]" {
		t.Fatalf("body = %s", body)
	}
}
