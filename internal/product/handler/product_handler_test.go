package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shopfront-backend/internal/audit"
	"shopfront-backend/internal/blobstore"
	companydomain "shopfront-backend/internal/company/domain"
	"shopfront-backend/internal/logging"
	"shopfront-backend/internal/product/domain"
	sampledomain "shopfront-backend/internal/sample/domain"
	"shopfront-backend/internal/server/httpjson"
)

type memProductRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{byID: map[string]*domain.Product{}}
}

func (r *memProductRepo) List(ctx context.Context) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Product, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, nil
}

func (r *memProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id], nil
}

func (r *memProductRepo) Create(ctx context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *memProductRepo) Update(ctx context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *memProductRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

type memCompanyRepo struct {
	byID map[string]*companydomain.Company
}

func (r *memCompanyRepo) List(ctx context.Context) ([]*companydomain.Company, error) {
	return nil, nil
}

func (r *memCompanyRepo) GetByID(ctx context.Context, id string) (*companydomain.Company, error) {
	return r.byID[id], nil
}

func (r *memCompanyRepo) Create(ctx context.Context, c *companydomain.Company) error { return nil }
func (r *memCompanyRepo) Update(ctx context.Context, c *companydomain.Company) error { return nil }
func (r *memCompanyRepo) Delete(ctx context.Context, id string) (bool, error)        { return false, nil }

type memSampleRepo struct {
	byProduct map[string][]*sampledomain.Sample
}

func (r *memSampleRepo) ListByProduct(ctx context.Context, productID string) ([]*sampledomain.Sample, error) {
	return r.byProduct[productID], nil
}

func (r *memSampleRepo) GetByID(ctx context.Context, id string) (*sampledomain.Sample, error) {
	return nil, nil
}

func (r *memSampleRepo) Create(ctx context.Context, s *sampledomain.Sample) error { return nil }
func (r *memSampleRepo) Delete(ctx context.Context, id string) (bool, error)      { return false, nil }

type fixture struct {
	router  *chi.Mux
	repo    *memProductRepo
	samples *memSampleRepo
	blobs   *blobstore.Memory
	company *companydomain.Company
}

func newFixture() *fixture {
	repo := newMemProductRepo()
	company := &companydomain.Company{ID: uuid.New().String(), Name: "Nike"}
	companies := &memCompanyRepo{byID: map[string]*companydomain.Company{company.ID: company}}
	samples := &memSampleRepo{byProduct: map[string][]*sampledomain.Sample{}}
	blobs := blobstore.NewMemory()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	h := NewProductHandler(repo, companies, samples, blobs, audit.Noop{}, log)

	r := chi.NewRouter()
	r.Get("/products", h.List)
	r.Get("/products/{id}", h.Get)
	r.Post("/products", h.Create)
	r.Patch("/products/{id}", h.Update)
	r.Delete("/products/{id}", h.Delete)
	return &fixture{router: r, repo: repo, samples: samples, blobs: blobs, company: company}
}

func (f *fixture) createProduct(t *testing.T) productDTO {
	t.Helper()
	body := `{"company_id":"` + f.company.ID + `","name":"Air Max","marketing_statement":"runs fast","product_price":120,"product_discount":10}`
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest("POST", "/products", strings.NewReader(body)))
	if w.Code != http.StatusCreated {
		t.Fatalf("create status: got %d (%s)", w.Code, w.Body.String())
	}
	var p productDTO
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return p
}

func TestProductCreateAndGet(t *testing.T) {
	f := newFixture()
	p := f.createProduct(t)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest("GET", "/products/"+p.ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("get status: got %d", w.Code)
	}
	var got productDTO
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != "Air Max" || got.CompanyID != f.company.ID || got.ProductPrice != 120 {
		t.Errorf("got: %+v", got)
	}
}

func TestProductCreate_UnknownCompany(t *testing.T) {
	f := newFixture()
	body := `{"company_id":"` + uuid.New().String() + `","name":"Air Max","marketing_statement":"x","product_price":1}`
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest("POST", "/products", strings.NewReader(body)))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422 (%s)", w.Code, w.Body.String())
	}
	var resp httpjson.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Details["company_id"] == "" {
		t.Errorf("details: %v", resp.Details)
	}
}

func TestProductCreate_Validation(t *testing.T) {
	f := newFixture()
	body := `{"company_id":"` + f.company.ID + `","name":"","marketing_statement":"","product_price":-5}`
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest("POST", "/products", strings.NewReader(body)))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422", w.Code)
	}
	var resp httpjson.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, field := range []string{"name", "marketing_statement", "product_price"} {
		if resp.Details[field] == "" {
			t.Errorf("missing %s in details: %v", field, resp.Details)
		}
	}
}

func TestProductUpdate(t *testing.T) {
	f := newFixture()
	p := f.createProduct(t)

	body := `{"company_id":"` + f.company.ID + `","name":"Air Max 2","marketing_statement":"still fast","product_price":99,"product_discount":0}`
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest("PATCH", "/products/"+p.ID, strings.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("update status: got %d (%s)", w.Code, w.Body.String())
	}
	var got productDTO
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != "Air Max 2" || got.ProductPrice != 99 {
		t.Errorf("got: %+v", got)
	}
}

func TestProductDelete_RemovesSampleBlobs(t *testing.T) {
	f := newFixture()
	p := f.createProduct(t)

	ctx := context.Background()
	key := blobstore.NewStorageKey()
	if err := f.blobs.Upload(ctx, key, "image/png", strings.NewReader("img")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	f.samples.byProduct[p.ID] = []*sampledomain.Sample{
		{ID: uuid.New().String(), ProductID: p.ID, Image: sampledomain.Attachment{StorageKey: key}},
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest("DELETE", "/products/"+p.ID, nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status: got %d", w.Code)
	}

	// Blob deletion is async; poll briefly.
	deadline := time.Now().Add(2 * time.Second)
	for {
		ok, _ := f.blobs.Exists(ctx, key)
		if !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("sample blob still present after product delete")
		}
		time.Sleep(10 * time.Millisecond)
	}

	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest("GET", "/products/"+p.ID, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: got %d, want 404", w.Code)
	}
}

func TestProductDelete_NotFound(t *testing.T) {
	f := newFixture()
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest("DELETE", "/products/"+uuid.New().String(), nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", w.Code)
	}
}
