package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	neorecipe "github.com/saulfrancisco-ruizacevedo/go-neorecipe"
	"github.com/saulfrancisco-ruizacevedo/go-neorecipe/internal/config"
	"github.com/saulfrancisco-ruizacevedo/go-neorecipe/models"
)

// fakeService returns canned values and records the arguments it saw.
type fakeService struct {
	err       error
	verifyErr error

	lastID      string
	lastName    string
	lastIDs     []string
	lastRecipe  models.RecipeInput
	lastElement models.ElementInput
}

func (f *fakeService) Verify(context.Context) error { return f.verifyErr }

func (f *fakeService) GetIngredient(_ context.Context, id string) (*models.Ingredient, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	in := models.NewIngredient(id, "Salt")
	return &in, nil
}

func (f *fakeService) GetAllIngredients(context.Context) ([]models.Ingredient, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.Ingredient{models.NewIngredient("1", "Salt"), models.NewIngredient("2", "Rice")}, nil
}

func (f *fakeService) CreateIngredient(_ context.Context, name string) (*models.Ingredient, error) {
	f.lastName = name
	if f.err != nil {
		return nil, f.err
	}
	in := models.NewIngredient("9", name)
	return &in, nil
}

func (f *fakeService) UpdateIngredient(_ context.Context, id, name string) (*models.Ingredient, error) {
	f.lastID, f.lastName = id, name
	if f.err != nil {
		return nil, f.err
	}
	in := models.NewIngredient(id, name)
	return &in, nil
}

func (f *fakeService) DeleteIngredient(_ context.Context, id string) (bool, error) {
	f.lastID = id
	return f.err == nil, f.err
}

func (f *fakeService) GetRecipe(_ context.Context, id string) (*models.Recipe, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	r := models.RecipeInput{Name: "Soup"}.Recipe()
	r.ID = id
	return &r, nil
}

func (f *fakeService) GetAllRecipes(context.Context) ([]models.Recipe, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.Recipe{}, nil
}

func (f *fakeService) GetRecipesByIngredients(_ context.Context, ids []string) ([]models.RankedRecipe, error) {
	f.lastIDs = ids
	if f.err != nil {
		return nil, f.err
	}
	r := models.RecipeInput{Name: "Soup"}.Recipe()
	r.ID = "10"
	return []models.RankedRecipe{{Recipe: r, IngredientCount: 2, MissingIngredientCount: 1}}, nil
}

func (f *fakeService) CreateRecipe(_ context.Context, in models.RecipeInput) (*models.Recipe, error) {
	f.lastRecipe = in
	if f.err != nil {
		return nil, f.err
	}
	r := in.Recipe()
	r.ID = "10"
	return &r, nil
}

func (f *fakeService) UpdateRecipe(_ context.Context, id string, in models.RecipeInput) (*models.Recipe, error) {
	f.lastID, f.lastRecipe = id, in
	if f.err != nil {
		return nil, f.err
	}
	r := in.Recipe()
	r.ID = id
	return &r, nil
}

func (f *fakeService) DeleteRecipe(_ context.Context, id string) (bool, error) {
	f.lastID = id
	return f.err == nil, f.err
}

func (f *fakeService) RecipeGraph(_ context.Context, id string) (*models.GraphResult, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return &models.GraphResult{
		Nodes: []*models.GraphNode{{ID: id, Labels: []string{"Recipe"}}},
		Edges: []*models.Edge{},
	}, nil
}

func (f *fakeService) AddIngredientToRecipe(_ context.Context, recipeID string, el models.ElementInput) (*models.Element, error) {
	f.lastID, f.lastElement = recipeID, el
	if f.err != nil {
		return nil, f.err
	}
	e := models.NewElement("30", el.Amount, el.Unit, models.NewIngredient(el.ID, "Salt"))
	return &e, nil
}

func (f *fakeService) UpdateIngredientInRecipe(_ context.Context, el models.ElementInput) (*models.Element, error) {
	f.lastElement = el
	if f.err != nil {
		return nil, f.err
	}
	e := models.NewElement(el.ID, el.Amount, el.Unit, models.NewIngredient("1", "Salt"))
	return &e, nil
}

func (f *fakeService) RemoveIngredientFromRecipe(_ context.Context, id string) (bool, error) {
	f.lastID = id
	return f.err == nil, f.err
}

func testConfig() config.ServerConfig {
	cfg := config.DefaultConfig().Server
	cfg.RateLimit = 1000
	cfg.RateLimitBurst = 1000
	return cfg
}

func newTestServer(svc Service) *Server {
	return NewServer(testConfig(), svc)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRoutes_Success(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"list ingredients", http.MethodGet, "/v1/ingredients", "", http.StatusOK},
		{"create ingredient", http.MethodPost, "/v1/ingredients", `{"name":"Salt"}`, http.StatusCreated},
		{"get ingredient", http.MethodGet, "/v1/ingredients/4", "", http.StatusOK},
		{"update ingredient", http.MethodPut, "/v1/ingredients/4", `{"name":"Sea salt"}`, http.StatusOK},
		{"delete ingredient", http.MethodDelete, "/v1/ingredients/4", "", http.StatusOK},
		{"list recipes", http.MethodGet, "/v1/recipes", "", http.StatusOK},
		{"create recipe", http.MethodPost, "/v1/recipes", `{"name":"Soup"}`, http.StatusCreated},
		{"match recipes", http.MethodPost, "/v1/recipes/match", `{"ingredientIds":["1"]}`, http.StatusOK},
		{"get recipe", http.MethodGet, "/v1/recipes/10", "", http.StatusOK},
		{"update recipe", http.MethodPut, "/v1/recipes/10", `{"name":"Stew"}`, http.StatusOK},
		{"delete recipe", http.MethodDelete, "/v1/recipes/10", "", http.StatusOK},
		{"recipe graph", http.MethodGet, "/v1/recipes/10/graph", "", http.StatusOK},
		{"add element", http.MethodPost, "/v1/recipes/10/elements", `{"id":"1","amount":2}`, http.StatusCreated},
		{"update element", http.MethodPut, "/v1/elements/30", `{"amount":3,"unit":"g"}`, http.StatusOK},
		{"remove element", http.MethodDelete, "/v1/elements/30", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(&fakeService{}), tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			_, err := uuid.Parse(rec.Header().Get("X-Request-Id"))
			assert.NoError(t, err)
		})
	}
}

func TestCreateIngredient(t *testing.T) {
	svc := &fakeService{}
	rec := do(t, newTestServer(svc), http.MethodPost, "/v1/ingredients", `{"name":"Pepper"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Pepper", svc.lastName)
	assert.Equal(t, models.Ingredient{ID: "9", Name: "Pepper"}, decode[models.Ingredient](t, rec))
}

func TestMatchRecipes(t *testing.T) {
	svc := &fakeService{}
	rec := do(t, newTestServer(svc), http.MethodPost, "/v1/recipes/match", `{"ingredientIds":["1","2"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"1", "2"}, svc.lastIDs)

	body := decode[[]map[string]any](t, rec)
	require.Len(t, body, 1)
	assert.Equal(t, "Soup", body[0]["name"])
	assert.Equal(t, 2.0, body[0]["ingredientCount"])
	assert.Equal(t, 1.0, body[0]["missingIngredientCount"])
	assert.Equal(t, []any{}, body[0]["elements"])
}

func TestAddElement(t *testing.T) {
	svc := &fakeService{}
	rec := do(t, newTestServer(svc), http.MethodPost, "/v1/recipes/10/elements", `{"id":"5","amount":2,"unit":"cup"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "10", svc.lastID)
	assert.Equal(t, "5", svc.lastElement.ID)
	assert.Equal(t, 2.0, svc.lastElement.Amount)
	require.NotNil(t, svc.lastElement.Unit)
	assert.Equal(t, "cup", *svc.lastElement.Unit)

	el := decode[models.Element](t, rec)
	assert.Equal(t, "30", el.ID)
	assert.Equal(t, "5", el.Ingredient.ID)
}

func TestUpdateElementUsesPathID(t *testing.T) {
	svc := &fakeService{}
	rec := do(t, newTestServer(svc), http.MethodPut, "/v1/elements/30", `{"id":"99","amount":1.5}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "30", svc.lastElement.ID)
	assert.Equal(t, 1.5, svc.lastElement.Amount)
	assert.Nil(t, svc.lastElement.Unit)
}

func TestDeleteResponse(t *testing.T) {
	rec := do(t, newTestServer(&fakeService{}), http.MethodDelete, "/v1/recipes/10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":true}`, rec.Body.String())
}

func TestOperationErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		code      string
		retryable bool
	}{
		{"invalid id", &neorecipe.Error{Code: neorecipe.ErrCodeInvalidID, Op: "getRecipe", Message: "bad"}, http.StatusBadRequest, "INVALID_ID", false},
		{"not found", &neorecipe.Error{Code: neorecipe.ErrCodeNotFound, Op: "getRecipe", Message: "gone"}, http.StatusNotFound, "NOT_FOUND", false},
		{"not created", &neorecipe.Error{Code: neorecipe.ErrCodeNotCreated, Op: "getRecipe"}, http.StatusInternalServerError, "NOT_CREATED", false},
		{"malformed", &neorecipe.Error{Code: neorecipe.ErrCodeMalformedResult, Op: "getRecipe"}, http.StatusInternalServerError, "MALFORMED_RESULT", false},
		{"upstream", &neorecipe.Error{Code: neorecipe.ErrCodeUpstreamQuery, Op: "getRecipe", Cause: errors.New("down")}, http.StatusBadGateway, "UPSTREAM_QUERY_FAILURE", true},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(&fakeService{err: tt.err}), http.MethodGet, "/v1/recipes/10", "")
			require.Equal(t, tt.status, rec.Code)

			resp := decode[ErrorResponse](t, rec)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.retryable, resp.Retryable)
			assert.Equal(t, rec.Header().Get("X-Request-Id"), resp.RequestID)
			assert.False(t, resp.Timestamp.IsZero())
		})
	}
}

func TestDeleteNotFound(t *testing.T) {
	svc := &fakeService{err: &neorecipe.Error{Code: neorecipe.ErrCodeNotFound, Op: "deleteIngredient"}}
	rec := do(t, newTestServer(svc), http.MethodDelete, "/v1/ingredients/404", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "deleteIngredient", resp.Details["operation"])
}

func TestInvalidBodies(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"empty body", http.MethodPost, "/v1/ingredients", ""},
		{"broken json", http.MethodPost, "/v1/ingredients", `{"name":`},
		{"blank name", http.MethodPost, "/v1/ingredients", `{"name":"  "}`},
		{"unknown field", http.MethodPost, "/v1/recipes", `{"name":"Soup","serves":4}`},
		{"recipe without name", http.MethodPut, "/v1/recipes/1", `{"description":"x"}`},
		{"element without amount", http.MethodPost, "/v1/recipes/1/elements", `{"id":"1"}`},
		{"update without amount", http.MethodPut, "/v1/elements/1", `{"unit":"g"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			rec := do(t, newTestServer(svc), tt.method, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, ErrCodeInvalidRequest, decode[ErrorResponse](t, rec).Code)
			assert.Empty(t, svc.lastName)
			assert.Empty(t, svc.lastRecipe.Name)
		})
	}
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(&fakeService{}), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[HealthResponse](t, rec).Status)
}

func TestReady(t *testing.T) {
	s := newTestServer(&fakeService{})
	rec := do(t, s, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s.SetReady(true)
	rec = do(t, s, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decode[HealthResponse](t, rec).Status)

	down := newTestServer(&fakeService{verifyErr: errors.New("connection refused")})
	down.SetReady(true)
	rec = do(t, down, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "graph store unreachable", decode[HealthResponse](t, rec).Reason)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(&fakeService{})
	do(t, s, http.MethodGet, "/v1/ingredients", "")

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `neorecipe_http_requests_total{method="GET",route="GET /v1/ingredients",status="200"}`)
}

func TestDefaultRoute(t *testing.T) {
	rec := do(t, newTestServer(&fakeService{}), http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "neorecipe", body["name"])
	assert.Contains(t, body["routes"], "POST /v1/recipes/match")
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 0.001
	cfg.RateLimitBurst = 1
	s := NewServer(cfg, &fakeService{})

	first := do(t, s, http.MethodGet, "/v1/ingredients", "")
	assert.Equal(t, http.StatusOK, first.Code)

	second := do(t, s, http.MethodGet, "/v1/ingredients", "")
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
	resp := decode[ErrorResponse](t, second)
	assert.Equal(t, ErrCodeRateLimitExceeded, resp.Code)
	assert.True(t, resp.Retryable)

	// system endpoints are not rate limited
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health", "").Code)
}

func TestShutdown(t *testing.T) {
	s := newTestServer(&fakeService{})
	s.SetReady(true)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.False(t, s.isReady())
}
