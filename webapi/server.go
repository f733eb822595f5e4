// Package webapi serves the storefront webapp's read API: the full catalog
// in one response, plus health and metrics endpoints.
package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cozn1l/gorosso/core/logger"
	"github.com/cozn1l/gorosso/domain"
	"github.com/cozn1l/gorosso/metrics"
)

// Catalog is the read-only slice of the store the API serves.
type Catalog interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	AllProducts(ctx context.Context) ([]domain.Product, error)
}

// Options configure the HTTP server.
type Options struct {
	Listen         string
	AllowedOrigins []string
	Catalog        Catalog
	Metrics        *metrics.Shop
}

// Server is the storefront read API.
type Server struct {
	http *http.Server
}

// New builds the server and its routes.
func New(opts Options) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	r.Get("/api/all_data", allDataHandler(opts.Catalog))

	return &Server{
		http: &http.Server{
			Addr:              opts.Listen,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// productPayload widens a product with the expanded size and color lists the
// webapp renders as selectors.
type productPayload struct {
	domain.Product
	Sizes  []string `json:"sizes"`
	Colors []string `json:"colors"`
}

type allDataResponse struct {
	Categories []domain.Category `json:"categories"`
	Products   []productPayload  `json:"products"`
}

func allDataHandler(cat Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		categories, err := cat.ListCategories(ctx)
		if err != nil {
			writeError(w, err)
			return
		}
		products, err := cat.AllProducts(ctx)
		if err != nil {
			writeError(w, err)
			return
		}

		resp := allDataResponse{
			Categories: categories,
			Products:   make([]productPayload, 0, len(products)),
		}
		if resp.Categories == nil {
			resp.Categories = []domain.Category{}
		}
		for _, p := range products {
			resp.Products = append(resp.Products, productPayload{
				Product: p,
				Sizes:   listOrEmpty(p.SizeList()),
				Colors:  listOrEmpty(p.ColorList()),
			})
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.API.Warn("response encode failed",
				slog.String("event", "api.all_data"),
				slog.String("err", err.Error()),
			)
		}
	}
}

func listOrEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func writeError(w http.ResponseWriter, err error) {
	logger.API.Error("request failed",
		slog.String("event", "api.all_data"),
		slog.String("status", "error"),
		slog.String("err", err.Error()),
	)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() {
	logger.API.Info("api listening",
		slog.String("event", "api.start"),
		slog.String("listen", s.http.Addr),
	)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.API.Error("api server failed",
			slog.String("event", "api.start"),
			slog.String("err", err.Error()),
		)
	}
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
