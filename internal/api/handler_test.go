package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/maloquacious/mealmax/internal/logger"
	"github.com/maloquacious/mealmax/internal/meal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCatalogue struct {
	mock.Mock
}

func (m *mockCatalogue) CreateMeal(ctx context.Context, name, cuisine string, price float64, difficulty string) (int64, error) {
	args := m.Called(ctx, name, cuisine, price, difficulty)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCatalogue) DeleteMeal(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCatalogue) GetMealByID(ctx context.Context, id int64) (meal.Meal, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(meal.Meal), args.Error(1)
}

func (m *mockCatalogue) GetMealByName(ctx context.Context, name string) (meal.Meal, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(meal.Meal), args.Error(1)
}

func (m *mockCatalogue) UpdateMealStats(ctx context.Context, id int64, result string) error {
	return m.Called(ctx, id, result).Error(0)
}

func (m *mockCatalogue) GetLeaderboard(ctx context.Context, sortBy string) ([]meal.LeaderboardEntry, error) {
	args := m.Called(ctx, sortBy)
	entries, _ := args.Get(0).([]meal.LeaderboardEntry)
	return entries, args.Error(1)
}

func (m *mockCatalogue) ClearMeals(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func serve(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCreateMeal(t *testing.T) {
	c := &mockCatalogue{}
	c.On("CreateMeal", mock.Anything, "Pasta", "Italian", 9.5, "LOW").Return(int64(1), nil)
	h := NewHandler(c, logger.NewNop()).PublicRoutes()

	rec := serve(t, h, http.MethodPost, "/api/meals", `{"meal":"Pasta","cuisine":"Italian","price":9.5,"difficulty":"LOW"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["id"])
	assert.Equal(t, "Pasta", body["meal"])
	c.AssertExpectations(t)
}

func TestCreateMealErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "duplicate", err: meal.NewError(meal.CodeDuplicateName, "meal with name 'Pasta' already exists"), wantStatus: http.StatusConflict, wantCode: "duplicate_name"},
		{name: "invalid", err: meal.NewError(meal.CodeInvalidArgument, "bad price"), wantStatus: http.StatusBadRequest, wantCode: "invalid_argument"},
		{name: "storage", err: meal.WrapError(meal.CodeStorage, "database error", errors.New("disk full")), wantStatus: http.StatusInternalServerError, wantCode: "storage_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &mockCatalogue{}
			c.On("CreateMeal", mock.Anything, "Pasta", "Italian", 9.5, "LOW").Return(int64(0), tt.err)
			h := NewHandler(c, logger.NewNop()).PublicRoutes()

			rec := serve(t, h, http.MethodPost, "/api/meals", `{"meal":"Pasta","cuisine":"Italian","price":9.5,"difficulty":"LOW"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decode(t, rec)["error"])
		})
	}
}

func TestCreateMealRejectsBadBody(t *testing.T) {
	h := NewHandler(&mockCatalogue{}, logger.NewNop()).PublicRoutes()

	rec := serve(t, h, http.MethodPost, "/api/meals", `{"meal":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decode(t, rec)["error"])

	req := httptest.NewRequest(http.MethodPost, "/api/meals", strings.NewReader(`meal=Pasta`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestGetMeal(t *testing.T) {
	want := meal.Meal{ID: 3, Name: "Ramen", Cuisine: "Japanese", Price: 12, Difficulty: meal.DifficultyMed}
	c := &mockCatalogue{}
	c.On("GetMealByID", mock.Anything, int64(3)).Return(want, nil)
	c.On("GetMealByID", mock.Anything, int64(4)).Return(meal.Meal{}, meal.NewError(meal.CodeDeleted, "meal with ID 4 has been deleted"))
	c.On("GetMealByName", mock.Anything, "Ramen").Return(want, nil)
	c.On("GetMealByName", mock.Anything, "Pho").Return(meal.Meal{}, meal.NewError(meal.CodeNotFound, "meal with name Pho not found"))
	h := NewHandler(c, logger.NewNop()).PublicRoutes()

	rec := serve(t, h, http.MethodGet, "/api/meals/3", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ramen", decode(t, rec)["meal"])

	rec = serve(t, h, http.MethodGet, "/api/meals/4", "")
	assert.Equal(t, http.StatusGone, rec.Code)

	rec = serve(t, h, http.MethodGet, "/api/meals/by-name/Ramen", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MED", decode(t, rec)["difficulty"])

	rec = serve(t, h, http.MethodGet, "/api/meals/by-name/Pho", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, h, http.MethodGet, "/api/meals/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c.AssertExpectations(t)
}

func TestDeleteMeal(t *testing.T) {
	c := &mockCatalogue{}
	c.On("DeleteMeal", mock.Anything, int64(5)).Return(nil)
	c.On("DeleteMeal", mock.Anything, int64(6)).Return(meal.NewError(meal.CodeNotFound, "meal with ID 6 not found"))
	h := NewHandler(c, logger.NewNop()).PublicRoutes()

	rec := serve(t, h, http.MethodDelete, "/api/meals/5", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "deleted", decode(t, rec)["status"])

	rec = serve(t, h, http.MethodDelete, "/api/meals/6", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordBattle(t *testing.T) {
	c := &mockCatalogue{}
	c.On("UpdateMealStats", mock.Anything, int64(2), "win").Return(nil)
	c.On("UpdateMealStats", mock.Anything, int64(2), "draw").Return(meal.NewError(meal.CodeInvalidArgument, "invalid result: draw"))
	h := NewHandler(c, logger.NewNop()).PublicRoutes()

	rec := serve(t, h, http.MethodPost, "/api/meals/2/battles", `{"result":"win"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, h, http.MethodPost, "/api/meals/2/battles", `{"result":"draw"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c.AssertExpectations(t)
}

func TestLeaderboard(t *testing.T) {
	entries := []meal.LeaderboardEntry{
		{ID: 1, Name: "A", Cuisine: "Thai", Price: 5, Difficulty: meal.DifficultyLow, Battles: 4, Wins: 3, WinPct: 75.0},
	}
	c := &mockCatalogue{}
	c.On("GetLeaderboard", mock.Anything, "wins").Return(entries, nil)
	c.On("GetLeaderboard", mock.Anything, "win_pct").Return(entries, nil)
	c.On("GetLeaderboard", mock.Anything, "bogus").Return(nil, meal.NewError(meal.CodeInvalidArgument, "invalid sort_by parameter: bogus"))
	h := NewHandler(c, logger.NewNop()).PublicRoutes()

	rec := serve(t, h, http.MethodGet, "/api/leaderboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	board := decode(t, rec)["leaderboard"].([]any)
	require.Len(t, board, 1)
	assert.Equal(t, 75.0, board[0].(map[string]any)["win_pct"])

	rec = serve(t, h, http.MethodGet, "/api/leaderboard?sort_by=win_pct", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, h, http.MethodGet, "/api/leaderboard?sort_by=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c.AssertExpectations(t)
}

func TestReady(t *testing.T) {
	handler := NewHandler(&mockCatalogue{}, logger.NewNop())
	h := handler.PublicRoutes()

	rec := serve(t, h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	handler.Ready = func() error { return errors.New("uninitialized") }
	rec = serve(t, h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdminRoutes(t *testing.T) {
	c := &mockCatalogue{}
	c.On("ClearMeals", mock.Anything).Return(nil).Once()
	handler := NewHandler(c, logger.NewNop())
	handler.Status = func() map[string]string { return map[string]string{"mode": "running"} }
	h := handler.AdminRoutes()

	rec := serve(t, h, http.MethodGet, "/admin/status", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "running", decode(t, rec)["mode"])

	rec = serve(t, h, http.MethodPost, "/admin/clear-meals", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/status", nil)
	req.Header.Set("Accept", "text/html")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotAcceptable, rec.Code)

	c.AssertExpectations(t)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(meal.ErrInvalidArgument))
	assert.Equal(t, http.StatusNotFound, StatusFor(meal.ErrNotFound))
	assert.Equal(t, http.StatusGone, StatusFor(meal.ErrDeleted))
	assert.Equal(t, http.StatusConflict, StatusFor(meal.ErrDuplicateName))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(meal.ErrStorage))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("boom")))
}
