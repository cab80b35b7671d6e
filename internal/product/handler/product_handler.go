// Package handler exposes product CRUD over HTTP.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shopfront-backend/internal/audit"
	auditdomain "shopfront-backend/internal/audit/domain"
	"shopfront-backend/internal/blobstore"
	companyrepo "shopfront-backend/internal/company/repository"
	"shopfront-backend/internal/logging"
	"shopfront-backend/internal/product/domain"
	"shopfront-backend/internal/product/repository"
	sampledomain "shopfront-backend/internal/sample/domain"
	samplerepo "shopfront-backend/internal/sample/repository"
	"shopfront-backend/internal/server/httpjson"
	"shopfront-backend/internal/server/middleware"
	"shopfront-backend/internal/validation"
)

// ProductHandler handles /products.
type ProductHandler struct {
	repo      repository.Repository
	companies companyrepo.Repository
	samples   samplerepo.Repository
	blobs     blobstore.Store
	audit     audit.AuditLogger
	log       logging.Logger
}

// NewProductHandler returns a ProductHandler.
func NewProductHandler(repo repository.Repository, companies companyrepo.Repository, samples samplerepo.Repository, blobs blobstore.Store, auditLog audit.AuditLogger, log logging.Logger) *ProductHandler {
	return &ProductHandler{
		repo:      repo,
		companies: companies,
		samples:   samples,
		blobs:     blobs,
		audit:     auditLog,
		log:       log,
	}
}

type productRequestDTO struct {
	CompanyID          string  `json:"company_id"`
	Name               string  `json:"name"`
	MarketingStatement string  `json:"marketing_statement"`
	ProductPrice       float64 `json:"product_price"`
	ProductDiscount    float64 `json:"product_discount"`
}

type productDTO struct {
	ID                 string    `json:"id"`
	CompanyID          string    `json:"company_id"`
	Name               string    `json:"name"`
	MarketingStatement string    `json:"marketing_statement"`
	ProductPrice       float64   `json:"product_price"`
	ProductDiscount    float64   `json:"product_discount"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func toProductDTO(p *domain.Product) productDTO {
	return productDTO{
		ID:                 p.ID,
		CompanyID:          p.CompanyID,
		Name:               p.Name,
		MarketingStatement: p.MarketingStatement,
		ProductPrice:       p.ProductPrice,
		ProductDiscount:    p.ProductDiscount,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// List handles GET /products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.List(r.Context())
	if err != nil {
		h.log.Error(r.Context(), "product list failed", "error", err)
		httpjson.Internal(w)
		return
	}
	out := make([]productDTO, 0, len(products))
	for _, p := range products {
		out = append(out, toProductDTO(p))
	}
	httpjson.Respond(w, http.StatusOK, out)
}

// Get handles GET /products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.log.Error(r.Context(), "product get failed", "error", err)
		httpjson.Internal(w)
		return
	}
	if p == nil {
		httpjson.Error(w, http.StatusNotFound, httpjson.CodeNotFound, "product not found")
		return
	}
	httpjson.Respond(w, http.StatusOK, toProductDTO(p))
}

// Create handles POST /products. The owning company must exist.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequestDTO
	if !httpjson.Decode(w, r, &req) {
		return
	}
	now := time.Now().UTC()
	p := &domain.Product{
		ID:                 uuid.New().String(),
		CompanyID:          req.CompanyID,
		Name:               req.Name,
		MarketingStatement: req.MarketingStatement,
		ProductPrice:       req.ProductPrice,
		ProductDiscount:    req.ProductDiscount,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := p.Validate(); err != nil {
		httpjson.ValidationError(w, validation.AsError(err))
		return
	}
	company, err := h.companies.GetByID(r.Context(), p.CompanyID)
	if err != nil {
		h.log.Error(r.Context(), "company lookup failed", "error", err)
		httpjson.Internal(w)
		return
	}
	if company == nil {
		v := validation.NewError()
		v.Add("company_id", "does not exist")
		httpjson.ValidationError(w, v)
		return
	}
	if err := h.repo.Create(r.Context(), p); err != nil {
		h.log.Error(r.Context(), "product create failed", "error", err)
		httpjson.Internal(w)
		return
	}
	h.audit.LogEvent(r.Context(), middleware.GetUserID(r.Context()), auditdomain.ActionCreate, "product", p.ID)
	httpjson.Respond(w, http.StatusCreated, toProductDTO(p))
}

// Update handles PATCH /products/{id}. The request body carries the full set
// of writable fields.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req productRequestDTO
	if !httpjson.Decode(w, r, &req) {
		return
	}
	p, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.log.Error(r.Context(), "product get failed", "error", err)
		httpjson.Internal(w)
		return
	}
	if p == nil {
		httpjson.Error(w, http.StatusNotFound, httpjson.CodeNotFound, "product not found")
		return
	}
	if req.CompanyID != "" && req.CompanyID != p.CompanyID {
		company, err := h.companies.GetByID(r.Context(), req.CompanyID)
		if err != nil {
			h.log.Error(r.Context(), "company lookup failed", "error", err)
			httpjson.Internal(w)
			return
		}
		if company == nil {
			v := validation.NewError()
			v.Add("company_id", "does not exist")
			httpjson.ValidationError(w, v)
			return
		}
		p.CompanyID = req.CompanyID
	}
	p.Name = req.Name
	p.MarketingStatement = req.MarketingStatement
	p.ProductPrice = req.ProductPrice
	p.ProductDiscount = req.ProductDiscount
	p.UpdatedAt = time.Now().UTC()
	if err := p.Validate(); err != nil {
		httpjson.ValidationError(w, validation.AsError(err))
		return
	}
	if err := h.repo.Update(r.Context(), p); err != nil {
		h.log.Error(r.Context(), "product update failed", "error", err)
		httpjson.Internal(w)
		return
	}
	h.audit.LogEvent(r.Context(), middleware.GetUserID(r.Context()), auditdomain.ActionUpdate, "product", p.ID)
	httpjson.Respond(w, http.StatusOK, toProductDTO(p))
}

// Delete handles DELETE /products/{id}. The database cascades samples and cart
// line items; sample image blobs are removed best-effort afterwards.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	samples, err := h.samples.ListByProduct(r.Context(), id)
	if err != nil {
		h.log.Error(r.Context(), "sample list failed", "error", err)
		httpjson.Internal(w)
		return
	}

	ok, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		h.log.Error(r.Context(), "product delete failed", "error", err)
		httpjson.Internal(w)
		return
	}
	if !ok {
		httpjson.Error(w, http.StatusNotFound, httpjson.CodeNotFound, "product not found")
		return
	}

	// Rows are gone; orphaned blobs are an acceptable cost if this fails.
	go func(keys []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, key := range keys {
			if err := h.blobs.Delete(ctx, key); err != nil {
				h.log.Warn(ctx, "sample blob delete failed", "key", key, "error", err)
			}
		}
	}(storageKeys(samples))

	h.audit.LogEvent(r.Context(), middleware.GetUserID(r.Context()), auditdomain.ActionDelete, "product", id)
	w.WriteHeader(http.StatusNoContent)
}

func storageKeys(samples []*sampledomain.Sample) []string {
	keys := make([]string, 0, len(samples))
	for _, s := range samples {
		if s.Image.StorageKey != "" {
			keys = append(keys, s.Image.StorageKey)
		}
	}
	return keys
}
