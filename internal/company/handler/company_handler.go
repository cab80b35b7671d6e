// Package handler exposes company CRUD over HTTP.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shopfront-backend/internal/audit"
	auditdomain "shopfront-backend/internal/audit/domain"
	"shopfront-backend/internal/company/domain"
	"shopfront-backend/internal/company/repository"
	"shopfront-backend/internal/logging"
	"shopfront-backend/internal/server/httpjson"
	"shopfront-backend/internal/server/middleware"
	"shopfront-backend/internal/validation"
)

// CompanyHandler handles /companies.
type CompanyHandler struct {
	repo  repository.Repository
	audit audit.AuditLogger
	log   logging.Logger
}

// NewCompanyHandler returns a CompanyHandler.
func NewCompanyHandler(repo repository.Repository, auditLog audit.AuditLogger, log logging.Logger) *CompanyHandler {
	return &CompanyHandler{repo: repo, audit: auditLog, log: log}
}

type companyRequestDTO struct {
	Name string `json:"name"`
}

type companyDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCompanyDTO(c *domain.Company) companyDTO {
	return companyDTO{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

// List handles GET /companies.
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	companies, err := h.repo.List(r.Context())
	if err != nil {
		h.log.Error(r.Context(), "company list failed", "error", err)
		httpjson.Internal(w)
		return
	}
	out := make([]companyDTO, 0, len(companies))
	for _, c := range companies {
		out = append(out, toCompanyDTO(c))
	}
	httpjson.Respond(w, http.StatusOK, out)
}

// Get handles GET /companies/{id}.
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.log.Error(r.Context(), "company get failed", "error", err)
		httpjson.Internal(w)
		return
	}
	if c == nil {
		httpjson.Error(w, http.StatusNotFound, httpjson.CodeNotFound, "company not found")
		return
	}
	httpjson.Respond(w, http.StatusOK, toCompanyDTO(c))
}

// Create handles POST /companies.
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req companyRequestDTO
	if !httpjson.Decode(w, r, &req) {
		return
	}
	now := time.Now().UTC()
	c := &domain.Company{
		ID:        uuid.New().String(),
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.Validate(); err != nil {
		httpjson.ValidationError(w, validation.AsError(err))
		return
	}
	if err := h.repo.Create(r.Context(), c); err != nil {
		h.log.Error(r.Context(), "company create failed", "error", err)
		httpjson.Internal(w)
		return
	}
	h.audit.LogEvent(r.Context(), middleware.GetUserID(r.Context()), auditdomain.ActionCreate, "company", c.ID)
	httpjson.Respond(w, http.StatusCreated, toCompanyDTO(c))
}

// Update handles PATCH /companies/{id}.
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req companyRequestDTO
	if !httpjson.Decode(w, r, &req) {
		return
	}
	c, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.log.Error(r.Context(), "company get failed", "error", err)
		httpjson.Internal(w)
		return
	}
	if c == nil {
		httpjson.Error(w, http.StatusNotFound, httpjson.CodeNotFound, "company not found")
		return
	}
	c.Name = req.Name
	c.UpdatedAt = time.Now().UTC()
	if err := c.Validate(); err != nil {
		httpjson.ValidationError(w, validation.AsError(err))
		return
	}
	if err := h.repo.Update(r.Context(), c); err != nil {
		h.log.Error(r.Context(), "company update failed", "error", err)
		httpjson.Internal(w)
		return
	}
	h.audit.LogEvent(r.Context(), middleware.GetUserID(r.Context()), auditdomain.ActionUpdate, "company", c.ID)
	httpjson.Respond(w, http.StatusOK, toCompanyDTO(c))
}

// Delete handles DELETE /companies/{id}. Products owned by the company, their
// samples, and any cart line items referencing them go with it.
func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ok, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		h.log.Error(r.Context(), "company delete failed", "error", err)
		httpjson.Internal(w)
		return
	}
	if !ok {
		httpjson.Error(w, http.StatusNotFound, httpjson.CodeNotFound, "company not found")
		return
	}
	h.audit.LogEvent(r.Context(), middleware.GetUserID(r.Context()), auditdomain.ActionDelete, "company", id)
	w.WriteHeader(http.StatusNoContent)
}
