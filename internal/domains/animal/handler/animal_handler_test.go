package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wildbook-backend/internal/domains/animal"
)

// stubService overrides just the methods a test needs; everything else
// panics via the embedded nil interface.
type stubService struct {
	animal.Service
	listPage   func(ctx context.Context, page int) (*animal.AnimalPage, error)
	getBySlug  func(ctx context.Context, slug string) (*animal.Animal, error)
	searchText func(ctx context.Context, query string) ([]animal.Animal, error)
}

func (s *stubService) ListPage(ctx context.Context, page int) (*animal.AnimalPage, error) {
	return s.listPage(ctx, page)
}

func (s *stubService) GetBySlug(ctx context.Context, slug string) (*animal.Animal, error) {
	return s.getBySlug(ctx, slug)
}

func (s *stubService) SearchText(ctx context.Context, query string) ([]animal.Animal, error) {
	return s.searchText(ctx, query)
}

func setupRouter(svc animal.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAnimalHandler(svc)

	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.GET("/animals", h.ListAnimals)
	v1.GET("/animals/page/:page", h.ListAnimals)
	v1.GET("/animals/search", h.SearchAnimals)
	v1.GET("/animals/slug/:slug", h.GetBySlug)
	return r
}

func TestListAnimalsOverflowRedirectsToLastPage(t *testing.T) {
	svc := &stubService{
		listPage: func(_ context.Context, page int) (*animal.AnimalPage, error) {
			return nil, &animal.PageOverflowError{Requested: page, LastPage: 3}
		},
	}
	router := setupRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/animals/page/99", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/api/v1/animals/page/3", w.Header().Get("Location"))
}

func TestListAnimalsReturnsMeta(t *testing.T) {
	svc := &stubService{
		listPage: func(_ context.Context, page int) (*animal.AnimalPage, error) {
			return &animal.AnimalPage{
				Animals: []animal.Animal{{Name: "Okapi", Slug: "okapi"}},
				Page:    page,
				Pages:   2,
				Total:   7,
			}, nil
		},
	}
	router := setupRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/animals", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Meta    struct {
			Page  int `json:"page"`
			Pages int `json:"pages"`
			Total int `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Meta.Page)
	assert.Equal(t, 2, body.Meta.Pages)
	assert.Equal(t, 7, body.Meta.Total)
}

func TestListAnimalsRejectsBadPage(t *testing.T) {
	router := setupRouter(&stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/animals/page/zero", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBySlugNotFound(t *testing.T) {
	svc := &stubService{
		getBySlug: func(_ context.Context, _ string) (*animal.Animal, error) {
			return nil, animal.ErrAnimalNotFound
		},
	}
	router := setupRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/animals/slug/missing", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchAnimalsRequiresQuery(t *testing.T) {
	router := setupRouter(&stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/animals/search", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
