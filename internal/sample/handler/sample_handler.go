// Package handler exposes sample image upload and retrieval over HTTP.
// Sample rows hold only an attachment reference; bytes go to the blob store
// first, and a row is written only after the upload succeeds.
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
	"shopfront-backend/internal/logging"
	productdomain "shopfront-backend/internal/product/domain"
	"shopfront-backend/internal/sample/domain"
	"shopfront-backend/internal/sample/repository"
	"shopfront-backend/internal/server/httpjson"
	"shopfront-backend/internal/server/middleware"
	"shopfront-backend/internal/validation"
)

// maxImageBytes caps a single uploaded image.
const maxImageBytes = 10 << 20

// imageURLTTL is how long a served image URL stays valid.
const imageURLTTL = 15 * time.Minute

// ProductGetter resolves the product a sample attaches to.
type ProductGetter interface {
	GetByID(ctx context.Context, id string) (*productdomain.Product, error)
}

// SampleHandler handles /products/{id}/samples and /samples/{id}.
type SampleHandler struct {
	repo     repository.Repository
	products ProductGetter
	blobs    blobstore.Store
	audit    audit.AuditLogger
	log      logging.Logger
}

// NewSampleHandler returns a SampleHandler.
func NewSampleHandler(repo repository.Repository, products ProductGetter, blobs blobstore.Store, auditLog audit.AuditLogger, log logging.Logger) *SampleHandler {
	return &SampleHandler{
		repo:     repo,
		products: products,
		blobs:    blobs,
		audit:    auditLog,
		log:      log,
	}
}

type sampleDTO struct {
	ID       string `json:"id"`
	ImageURL string `json:"image_url"`
}

func (h *SampleHandler) toDTO(ctx context.Context, s *domain.Sample) sampleDTO {
	url, err := h.blobs.URL(ctx, s.Image.StorageKey, imageURLTTL)
	if err != nil {
		h.log.Warn(ctx, "image url generation failed", "sample_id", s.ID, "error", err)
		url = ""
	}
	return sampleDTO{ID: s.ID, ImageURL: url}
}

// ListByProduct handles GET /products/{id}/samples.
func (h *SampleHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")
	product, err := h.products.GetByID(r.Context(), productID)
	if err != nil {
		h.log.Error(r.Context(), "product lookup failed", "error", err)
		httpjson.Internal(w)
		return
	}
	if product == nil {
		httpjson.Error(w, http.StatusNotFound, httpjson.CodeNotFound, "product not found")
		return
	}
	samples, err := h.repo.ListByProduct(r.Context(), productID)
	if err != nil {
		h.log.Error(r.Context(), "sample list failed", "error", err)
		httpjson.Internal(w)
		return
	}
	out := make([]sampleDTO, 0, len(samples))
	for _, s := range samples {
		out = append(out, h.toDTO(r.Context(), s))
	}
	httpjson.Respond(w, http.StatusOK, out)
}

// Get handles GET /samples/{id}.
func (h *SampleHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.log.Error(r.Context(), "sample get failed", "error", err)
		httpjson.Internal(w)
		return
	}
	if s == nil {
		httpjson.Error(w, http.StatusNotFound, httpjson.CodeNotFound, "sample not found")
		return
	}
	httpjson.Respond(w, http.StatusOK, h.toDTO(r.Context(), s))
}

// Create handles POST /products/{id}/samples. The request is multipart
// form data with the image under the "image" field.
func (h *SampleHandler) Create(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")
	product, err := h.products.GetByID(r.Context(), productID)
	if err != nil {
		h.log.Error(r.Context(), "product lookup failed", "error", err)
		httpjson.Internal(w)
		return
	}
	if product == nil {
		httpjson.Error(w, http.StatusNotFound, httpjson.CodeNotFound, "product not found")
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		httpjson.Error(w, http.StatusBadRequest, httpjson.CodeInvalidRequest, "request is not valid multipart form data")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		v := validation.NewError()
		v.Add("image", "is required")
		httpjson.ValidationError(w, v)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := blobstore.NewStorageKey()
	if err := h.blobs.Upload(r.Context(), key, contentType, http.MaxBytesReader(w, file, maxImageBytes)); err != nil {
		h.log.Error(r.Context(), "image upload failed", "error", err)
		httpjson.Internal(w)
		return
	}

	s := &domain.Sample{
		ID:        uuid.New().String(),
		ProductID: productID,
		Image: domain.Attachment{
			StorageKey:  key,
			ContentType: contentType,
			ByteSize:    header.Size,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Validate(); err != nil {
		httpjson.ValidationError(w, validation.AsError(err))
		return
	}
	if err := h.repo.Create(r.Context(), s); err != nil {
		h.log.Error(r.Context(), "sample create failed", "error", err)
		// The row never landed; drop the uploaded blob so it does not orphan.
		if derr := h.blobs.Delete(r.Context(), key); derr != nil {
			h.log.Warn(r.Context(), "orphaned blob cleanup failed", "key", key, "error", derr)
		}
		httpjson.Internal(w)
		return
	}

	h.audit.LogEvent(r.Context(), middleware.GetUserID(r.Context()), auditdomain.ActionCreate, "sample", s.ID)
	httpjson.Respond(w, http.StatusCreated, h.toDTO(r.Context(), s))
}

// Delete handles DELETE /samples/{id}. The blob is removed best-effort after
// the row.
func (h *SampleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.log.Error(r.Context(), "sample get failed", "error", err)
		httpjson.Internal(w)
		return
	}
	if s == nil {
		httpjson.Error(w, http.StatusNotFound, httpjson.CodeNotFound, "sample not found")
		return
	}
	ok, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		h.log.Error(r.Context(), "sample delete failed", "error", err)
		httpjson.Internal(w)
		return
	}
	if !ok {
		httpjson.Error(w, http.StatusNotFound, httpjson.CodeNotFound, "sample not found")
		return
	}
	if err := h.blobs.Delete(r.Context(), s.Image.StorageKey); err != nil {
		h.log.Warn(r.Context(), "sample blob delete failed", "key", s.Image.StorageKey, "error", err)
	}
	h.audit.LogEvent(r.Context(), middleware.GetUserID(r.Context()), auditdomain.ActionDelete, "sample", id)
	w.WriteHeader(http.StatusNoContent)
}
