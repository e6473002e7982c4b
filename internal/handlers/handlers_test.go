package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akozadaev/route_scout/internal/models"
	"github.com/akozadaev/route_scout/internal/recommend"
	"github.com/akozadaev/route_scout/internal/storage"
	"github.com/akozadaev/route_scout/internal/validation"
)

type fakeRecommender struct {
	lastReq  models.RecommendRequest
	resp     *models.RecommendResponse
	err      error
	routes   map[int64]*models.Route
	areas    []string
	readyErr error
}

func (f *fakeRecommender) Recommend(_ context.Context, req models.RecommendRequest) (*models.RecommendResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeRecommender) Route(_ context.Context, id int64) (*models.Route, error) {
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.routes[id]
	if !ok {
		return nil, storage.ErrRouteNotFound
	}
	return r, nil
}

func (f *fakeRecommender) Areas(context.Context) ([]string, error) {
	return f.areas, f.err
}

func (f *fakeRecommender) Grades() []models.GradeMark {
	return []models.GradeMark{{Grade: -1, Label: "VB"}, {Grade: 0, Label: "V0"}}
}

func (f *fakeRecommender) Ready(context.Context) error { return f.readyErr }

func serve(t *testing.T, svc Recommender, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := mux.NewRouter()
	NewHandlers(svc).Register(router)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRecommendRoutes_Post(t *testing.T) {
	svc := &fakeRecommender{resp: &models.RecommendResponse{
		Routes: []models.RouteCard{{ID: 1, Name: "Highball", Score: 0.7}},
		Total:  1,
	}}

	rec := serve(t, svc, http.MethodPost, "/routes/recommend",
		`{"grade_min":1,"grade_max":3,"areas":["USA, California"],"description":"tall slab","order":"quality"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	resp := decode[models.RecommendResponse](t, rec)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "Highball", resp.Routes[0].Name)

	assert.Equal(t, 1, svc.lastReq.GradeMin)
	assert.Equal(t, 3, svc.lastReq.GradeMax)
	assert.Equal(t, []string{"USA, California"}, svc.lastReq.Areas)
	assert.Equal(t, "tall slab", svc.lastReq.Description)
	assert.Equal(t, "quality", svc.lastReq.Order)
}

func TestRecommendRoutes_PostBadBody(t *testing.T) {
	svc := &fakeRecommender{}
	rec := serve(t, svc, http.MethodPost, "/routes/recommend", `{"grade_min":"hard"`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decode[ErrorResponse](t, rec).Error)
}

func TestRecommendRoutes_Query(t *testing.T) {
	svc := &fakeRecommender{resp: &models.RecommendResponse{Routes: []models.RouteCard{}}}

	rec := serve(t, svc, http.MethodGet,
		"/routes/recommend?grade_min=2&grade_max=5&area=USA&area=USA,+Utah&q=crack&order=popularity&limit=5", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RecommendRequest{
		GradeMin:    2,
		GradeMax:    5,
		Areas:       []string{"USA", "USA, Utah"},
		Description: "crack",
		Order:       "popularity",
		Limit:       5,
	}, svc.lastReq)
}

func TestRecommendRoutes_QueryDefaults(t *testing.T) {
	svc := &fakeRecommender{resp: &models.RecommendResponse{}}

	rec := serve(t, svc, http.MethodGet, "/routes/recommend", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.lastReq.GradeMin)
	assert.Equal(t, 3, svc.lastReq.GradeMax)
	assert.Empty(t, svc.lastReq.Areas)
	assert.Zero(t, svc.lastReq.Limit)
}

func TestRecommendRoutes_QueryNotInteger(t *testing.T) {
	for _, param := range []string{"grade_min", "grade_max", "limit"} {
		t.Run(param, func(t *testing.T) {
			svc := &fakeRecommender{}
			rec := serve(t, svc, http.MethodGet, fmt.Sprintf("/routes/recommend?%s=V3", param), "")

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[ErrorResponse](t, rec).Error, param)
			assert.Zero(t, svc.lastReq.GradeMin)
		})
	}
}

func TestRecommendRoutes_Errors(t *testing.T) {
	verr := &validation.RequestValidationError{Fields: []validation.FieldError{
		{Field: "GradeMin", Tag: "ltefield", Message: "GradeMin must be less than or equal to GradeMax"},
	}}

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", fmt.Errorf("%w: %w", recommend.ErrInvalidRequest, verr), http.StatusBadRequest},
		{"store", fmt.Errorf("%w: %w", recommend.ErrStoreUnavailable, errors.New("refused")), http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, &fakeRecommender{err: tt.err}, http.MethodPost, "/routes/recommend", `{}`)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	rec := serve(t, &fakeRecommender{err: fmt.Errorf("%w: %w", recommend.ErrInvalidRequest, verr)},
		http.MethodPost, "/routes/recommend", `{}`)
	body := decode[ErrorResponse](t, rec)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "GradeMin", body.Fields[0].Field)
}

func TestGetRoute(t *testing.T) {
	svc := &fakeRecommender{routes: map[int64]*models.Route{42: {ID: 42, Name: "Arete"}}}

	rec := serve(t, svc, http.MethodGet, "/routes/42", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Arete", decode[models.Route](t, rec).Name)

	rec = serve(t, svc, http.MethodGet, "/routes/43", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, svc, http.MethodGet, "/routes/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, &fakeRecommender{err: recommend.ErrStoreUnavailable}, http.MethodGet, "/routes/42", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetAreas(t *testing.T) {
	svc := &fakeRecommender{areas: []string{"USA", "USA, Utah"}}

	rec := serve(t, svc, http.MethodGet, "/areas", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"USA", "USA, Utah"}, decode[[]string](t, rec))

	rec = serve(t, &fakeRecommender{err: errors.New("down")}, http.MethodGet, "/areas", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetGrades(t *testing.T) {
	rec := serve(t, &fakeRecommender{}, http.MethodGet, "/grades", "")

	require.Equal(t, http.StatusOK, rec.Code)
	marks := decode[[]models.GradeMark](t, rec)
	require.Len(t, marks, 2)
	assert.Equal(t, "VB", marks[0].Label)
}

func TestHealthAndReady(t *testing.T) {
	rec := serve(t, &fakeRecommender{readyErr: errors.New("down")}, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])

	rec = serve(t, &fakeRecommender{}, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, &fakeRecommender{readyErr: errors.New("down")}, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	rec := serve(t, &fakeRecommender{}, http.MethodDelete, "/routes/recommend", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
