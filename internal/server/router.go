// Package server assembles the HTTP routing table.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	authhandler "shopfront-backend/internal/auth/handler"
	carthandler "shopfront-backend/internal/cart/handler"
	companyhandler "shopfront-backend/internal/company/handler"
	producthandler "shopfront-backend/internal/product/handler"
	samplehandler "shopfront-backend/internal/sample/handler"
	"shopfront-backend/internal/server/httpjson"
	"shopfront-backend/internal/server/middleware"
)

// Handlers bundles the route handlers the router mounts.
type Handlers struct {
	Auth      *authhandler.AuthHandler
	Companies *companyhandler.CompanyHandler
	Products  *producthandler.ProductHandler
	Samples   *samplehandler.SampleHandler
	Cart      *carthandler.CartHandler
}

// NewRouter builds the route table. Reads on catalog resources are public;
// every mutation and the whole cart sit behind the authorization gate.
func NewRouter(gate *middleware.Gate, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(middleware.ClientIPContext)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpjson.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/signup", h.Auth.Signup)
	r.Post("/login", h.Auth.Login)
	// Logout is deliberately outside the gate: clearing an expired or missing
	// session must still succeed.
	r.With(gate.Optional).Delete("/logout", h.Auth.Logout)

	r.Get("/companies", h.Companies.List)
	r.Get("/companies/{id}", h.Companies.Get)
	r.Group(func(r chi.Router) {
		r.Use(gate.Require)
		r.Post("/companies", h.Companies.Create)
		r.Patch("/companies/{id}", h.Companies.Update)
		r.Delete("/companies/{id}", h.Companies.Delete)
	})

	r.Get("/products", h.Products.List)
	r.Get("/products/{id}", h.Products.Get)
	r.Get("/products/{id}/samples", h.Samples.ListByProduct)
	r.Get("/samples/{id}", h.Samples.Get)
	r.Group(func(r chi.Router) {
		r.Use(gate.Require)
		r.Post("/products", h.Products.Create)
		r.Patch("/products/{id}", h.Products.Update)
		r.Delete("/products/{id}", h.Products.Delete)
		r.Post("/products/{id}/samples", h.Samples.Create)
		r.Delete("/samples/{id}", h.Samples.Delete)
	})

	// The {id} under /cart is a product id on add and a line-item id on
	// remove; chi needs one param name per position.
	r.Group(func(r chi.Router) {
		r.Use(gate.Require)
		r.Get("/cart", h.Cart.Get)
		r.Post("/cart/{id}/add", h.Cart.AddItem)
		r.Delete("/cart/{id}/remove", h.Cart.RemoveItem)
	})

	return r
}
