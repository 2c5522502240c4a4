package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matcat/internal/core/entity"
	"matcat/internal/core/id"
	corenumerator "matcat/internal/core/numerator"
	"matcat/internal/domain"
	"matcat/internal/domain/catalogs/category"
	"matcat/internal/domain/catalogs/material"
	"matcat/internal/infrastructure/http/v1/dto"
	"matcat/internal/infrastructure/http/v1/handlers"
	"matcat/internal/infrastructure/http/v1/middleware"
	infranumerator "matcat/internal/infrastructure/numerator"
	"matcat/internal/infrastructure/storage/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

type testAPI struct {
	store  *memory.Store
	engine *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	for _, c := range []*category.Category{
		{Catalog: entity.Catalog{BaseEntity: entity.BaseEntity{ID: 1}, Code: "MTL", Name: "Metals"}},
		{Catalog: entity.Catalog{BaseEntity: entity.BaseEntity{ID: 2}, Code: "PLS", Name: "Plastics"}},
	} {
		require.NoError(t, store.Categories().Create(ctx, c))
	}

	materials := material.NewService(material.ServiceConfig{
		Repo:       store.Materials(),
		Categories: store.Categories(),
		Numerator:  infranumerator.New(store.Materials(), corenumerator.DefaultOptions()),
	})
	categories := category.NewService(store.Categories(), nil)

	return &testAPI{
		store:  store,
		engine: newEngine(materials, categories, 20),
	}
}

func newEngine(materials handlers.MaterialService, categories handlers.CategoryService, maxPageSize int) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.Trace(), middleware.ErrorHandler())

	base := handlers.NewBaseHandler(maxPageSize)
	mh := handlers.NewMaterialHandler(base, materials)
	ch := handlers.NewCategoryHandler(base, categories)

	engine.GET("/materials", mh.List)
	engine.GET("/materials/search", mh.Search)
	engine.GET("/materials/:id", mh.Get)
	engine.POST("/materials", mh.Create)
	engine.PUT("/materials/:id", mh.Update)
	engine.DELETE("/materials/:id", mh.Delete)
	engine.GET("/categories", ch.List)
	engine.GET("/categories/:id/materials", mh.ListByCategory)
	return engine
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, a.engine, method, path, body)
}

func serve(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) seed(t *testing.T, materialID, categoryID id.ID, code, name string) {
	t.Helper()
	m := material.NewMaterial(name, categoryID)
	m.ID = materialID
	m.Code = code
	require.NoError(t, a.store.Materials().Create(context.Background(), m))
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestMaterialHandler_Create(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/materials", dto.MaterialRequest{Name: "Steel Bar", MaterialCategoryID: 1})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decode[dto.MaterialResponse](t, rec)
	assert.NotZero(t, got.ID)
	assert.Equal(t, "Steel Bar", got.Name)
	assert.Equal(t, "MTL-0001", got.MaterialCode)
	assert.Equal(t, id.ID(1), got.MaterialCategoryID)
	assert.Equal(t, "Metals", got.MaterialCategoryName)

	rec = api.do(t, http.MethodPost, "/materials", dto.MaterialRequest{Name: "Copper Wire", MaterialCategoryID: 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "MTL-0002", decode[dto.MaterialResponse](t, rec).MaterialCode)
}

func TestMaterialHandler_Create_JSONShape(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/materials", `{"name":"PVC Pipe","materialCategoryId":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.ElementsMatch(t,
		[]string{"id", "name", "materialCode", "materialCategoryId", "materialCategoryName"},
		keys(raw))
	assert.Equal(t, "PLS-0001", raw["materialCode"])
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestMaterialHandler_Create_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"unknown category", dto.MaterialRequest{Name: "Ghost", MaterialCategoryID: 99}, http.StatusNotFound, "NOT_FOUND"},
		{"blank name", dto.MaterialRequest{Name: "  ", MaterialCategoryID: 1}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"missing category", `{"name":"Steel"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"malformed body", `{"name":`, http.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t)

			rec := api.do(t, http.MethodPost, "/materials", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decode[apiError](t, rec).Code)

			count, err := api.store.Materials().Count(context.Background())
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestMaterialHandler_Create_UnknownCategoryDetails(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/materials", dto.MaterialRequest{Name: "Ghost", MaterialCategoryID: 99})
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decode[apiError](t, rec)
	assert.Equal(t, "category", body.Details["entity"])
	assert.EqualValues(t, 99, body.Details["id"])
}

func TestMaterialHandler_Get(t *testing.T) {
	api := newTestAPI(t)
	api.seed(t, 3, 2, "PLS-0010", "Nylon")

	rec := api.do(t, http.MethodGet, "/materials/3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[dto.MaterialResponse](t, rec)
	assert.Equal(t, "PLS-0010", got.MaterialCode)
	assert.Equal(t, "Plastics", got.MaterialCategoryName)

	rec = api.do(t, http.MethodGet, "/materials/4", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "material", decode[apiError](t, rec).Details["entity"])

	rec = api.do(t, http.MethodGet, "/materials/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decode[apiError](t, rec).Code)
}

func TestMaterialHandler_Update(t *testing.T) {
	api := newTestAPI(t)
	api.seed(t, 1, 1, "MTL-0001", "Steel")
	api.seed(t, 2, 2, "PLS-0010", "Nylon")

	rec := api.do(t, http.MethodPut, "/materials/1", dto.MaterialRequest{Name: "Steel", MaterialCategoryID: 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[dto.MaterialResponse](t, rec)
	assert.Equal(t, "PLS-0011", got.MaterialCode)
	assert.Equal(t, "Plastics", got.MaterialCategoryName)

	rec = api.do(t, http.MethodPut, "/materials/2", dto.MaterialRequest{Name: "Nylon 6", MaterialCategoryID: 2})
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[dto.MaterialResponse](t, rec)
	assert.Equal(t, "PLS-0010", got.MaterialCode)
	assert.Equal(t, "Nylon 6", got.Name)

	rec = api.do(t, http.MethodPut, "/materials/77", dto.MaterialRequest{Name: "X", MaterialCategoryID: 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPut, "/materials/0", dto.MaterialRequest{Name: "X", MaterialCategoryID: 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMaterialHandler_Delete(t *testing.T) {
	api := newTestAPI(t)
	api.seed(t, 1, 1, "MTL-0001", "Steel")

	rec := api.do(t, http.MethodDelete, "/materials/1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = api.do(t, http.MethodDelete, "/materials/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/materials/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMaterialHandler_List(t *testing.T) {
	api := newTestAPI(t)
	for i := id.ID(1); i <= 25; i++ {
		api.seed(t, i, 1, "MTL-"+id.String(i), "item")
	}

	rec := api.do(t, http.MethodGet, "/materials", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[dto.PageResponse[dto.MaterialResponse]](t, rec)
	assert.Len(t, page.Content, dto.DefaultPageSize)
	assert.Equal(t, int64(25), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, id.ID(1), page.Content[0].ID)

	rec = api.do(t, http.MethodGet, "/materials?page=2&size=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[dto.PageResponse[dto.MaterialResponse]](t, rec)
	assert.Len(t, page.Content, 5)
	assert.Equal(t, id.ID(21), page.Content[0].ID)

	// size above the cap is clamped to 20
	rec = api.do(t, http.MethodGet, "/materials?size=500", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[dto.PageResponse[dto.MaterialResponse]](t, rec)
	assert.Len(t, page.Content, 20)
	assert.Equal(t, 2, page.TotalPages)

	rec = api.do(t, http.MethodGet, "/materials?page=9", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[dto.PageResponse[dto.MaterialResponse]](t, rec)
	assert.NotNil(t, page.Content)
	assert.Empty(t, page.Content)
}

func TestMaterialHandler_List_InvalidPaging(t *testing.T) {
	api := newTestAPI(t)

	for _, query := range []string{"page=-1", "size=0", "page=abc", "size=1.5"} {
		t.Run(query, func(t *testing.T) {
			rec := api.do(t, http.MethodGet, "/materials?"+query, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, "VALIDATION_ERROR", decode[apiError](t, rec).Code)
		})
	}
}

func TestMaterialHandler_EmptyPageSerializesContentArray(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/materials", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"content":[],"totalElements":0,"totalPages":0}`, rec.Body.String())
}

func TestMaterialHandler_Search(t *testing.T) {
	api := newTestAPI(t)
	api.seed(t, 1, 1, "MTL-0001", "Steel Bar")
	api.seed(t, 2, 1, "MTL-0002", "Copper Wire")
	api.seed(t, 3, 2, "PLS-0001", "Stainless Pipe")

	rec := api.do(t, http.MethodGet, "/materials/search?keyword=STEEL", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[dto.PageResponse[dto.MaterialResponse]](t, rec)
	assert.Equal(t, int64(1), page.TotalElements)
	assert.Equal(t, "Steel Bar", page.Content[0].Name)

	rec = api.do(t, http.MethodGet, "/materials/search?keyword=pls-", nil)
	page = decode[dto.PageResponse[dto.MaterialResponse]](t, rec)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "PLS-0001", page.Content[0].MaterialCode)

	for _, path := range []string{"/materials/search", "/materials/search?keyword=", "/materials/search?keyword=%20%20"} {
		rec = api.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(3), decode[dto.PageResponse[dto.MaterialResponse]](t, rec).TotalElements, path)
	}
}

func TestMaterialHandler_ListByCategory(t *testing.T) {
	api := newTestAPI(t)
	api.seed(t, 1, 1, "MTL-0001", "Steel")
	api.seed(t, 2, 2, "PLS-0001", "Nylon")
	api.seed(t, 3, 1, "MTL-0002", "Copper")

	rec := api.do(t, http.MethodGet, "/categories/1/materials", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[dto.PageResponse[dto.MaterialResponse]](t, rec)
	require.Len(t, page.Content, 2)
	assert.Equal(t, id.ID(1), page.Content[0].ID)
	assert.Equal(t, id.ID(3), page.Content[1].ID)

	rec = api.do(t, http.MethodGet, "/categories/9/materials", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "category", decode[apiError](t, rec).Details["entity"])

	rec = api.do(t, http.MethodGet, "/categories/x/materials", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type failingMaterials struct {
	handlers.MaterialService
}

func (failingMaterials) List(context.Context, domain.PageRequest) (domain.Page[material.View], error) {
	return domain.Page[material.View]{}, errors.New("connection reset by peer")
}

func TestMaterialHandler_InternalErrorsAreHidden(t *testing.T) {
	engine := newEngine(failingMaterials{}, nil, 20)

	rec := serve(t, engine, http.MethodGet, "/materials", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[apiError](t, rec)
	assert.Equal(t, "INTERNAL_ERROR", body.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
	assert.NotEmpty(t, body.Details["request_id"])
}
