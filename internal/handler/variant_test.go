package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/catalog"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/service"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/store"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"
)

const createBody = `{
	"modelId": "model-1",
	"name": "Long Range",
	"basePrice": 45990,
	"specs": {"horsepower": {"value": 670, "unit": "hp"}, "driveType": {"value": "AWD"}},
	"features": {"safety": ["BackupCamera"], "convenience": []}
}`

func newRouter() http.Handler {
	h := NewVariantHandler(service.New(store.NewMemoryStore(), nil), catalog.Default())
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Route("/v1", h.Routes)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

var actor = map[string]string{"X-Actor": "alice"}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestCreateAndGetVariant(t *testing.T) {
	r := newRouter()

	w := do(t, r, http.MethodPost, "/v1/variants", createBody, actor)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[types.VariantRecord](t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "user", created.Source)
	assert.NotEmpty(t, created.CorrelationID)

	w = do(t, r, http.MethodGet, "/v1/variants/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[types.VariantRecord](t, w)
	assert.Equal(t, types.SpecValue{Value: 670.0, Unit: "hp"}, got.Specs["Horsepower"])
	assert.Equal(t, types.SpecValue{Value: "AWD"}, got.Specs["DriveType"])
	assert.Equal(t, []string{"BackupCamera"}, got.Features["safety"])
}

func TestCreateVariant_Errors(t *testing.T) {
	r := newRouter()

	w := do(t, r, http.MethodPost, "/v1/variants", createBody, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_ACTOR", decode[errorBody](t, w).Code)

	w = do(t, r, http.MethodPost, "/v1/variants", "{", actor)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_JSON", decode[errorBody](t, w).Code)

	w = do(t, r, http.MethodPost, "/v1/variants", `{"modelId":"m","name":"","basePrice":0}`, actor)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[errorBody](t, w)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	require.Len(t, body.Fields, 2)
	assert.Equal(t, "name", body.Fields[0].Field)
	assert.Equal(t, "basePrice", body.Fields[1].Field)

	w = do(t, r, http.MethodPost, "/v1/variants", createBody, map[string]string{"X-Actor": "a", "X-Source": "robot"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVariant_Errors(t *testing.T) {
	r := newRouter()

	w := do(t, r, http.MethodGet, "/v1/variants/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decode[errorBody](t, w).Code)

	w = do(t, r, http.MethodGet, "/v1/variants/0b4c6f4e-5a33-4c38-9f2a-0d6c0d1f7b11", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode[errorBody](t, w).Code)
}

func TestUpdateAndDeleteVariant(t *testing.T) {
	r := newRouter()
	created := decode[types.VariantRecord](t, do(t, r, http.MethodPost, "/v1/variants", createBody, actor))

	upd := strings.Replace(createBody, "Long Range", "Performance", 1)
	w := do(t, r, http.MethodPut, "/v1/variants/"+created.ID, upd, map[string]string{"X-Actor": "bob", "X-Source": "import"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[types.VariantRecord](t, w)
	assert.Equal(t, "Performance", got.Name)
	assert.Equal(t, "alice", got.CreatedBy)
	assert.Equal(t, "bob", got.UpdatedBy)

	w = do(t, r, http.MethodPut, "/v1/variants/"+created.ID, upd, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodDelete, "/v1/variants/"+created.ID, "", actor)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, r, http.MethodGet, "/v1/variants/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListVariants(t *testing.T) {
	r := newRouter()
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/v1/variants", createBody, actor).Code)
	}
	other := strings.Replace(createBody, "model-1", "model-2", 1)
	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/v1/variants", other, actor).Code)

	w := do(t, r, http.MethodGet, "/v1/variants?model_id=model-1&page_size=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[ListResponse](t, w)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.PageSize)

	w = do(t, r, http.MethodGet, "/v1/variants?page_size=500&offset=3", "", nil)
	page = decode[ListResponse](t, w)
	assert.Equal(t, 100, page.PageSize)
	assert.Equal(t, 4, page.Total)
	assert.Len(t, page.Items, 1)
}

func TestGetSchema(t *testing.T) {
	r := newRouter()
	w := do(t, r, http.MethodGet, "/v1/schema", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	doc := decode[catalog.Document](t, w)
	require.NotEmpty(t, doc.Specs)
	assert.Equal(t, catalog.CategoryPerformance, doc.Specs[0].Category)
	assert.Len(t, doc.Features, len(catalog.Default().FeatureCategories()))
}
