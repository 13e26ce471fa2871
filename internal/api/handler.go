// Package api exposes the meal catalogue over JSON HTTP.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/maloquacious/mealmax/internal/logger"
	"github.com/maloquacious/mealmax/internal/meal"
	"github.com/maloquacious/mealmax/internal/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves the public and admin routes.
type Handler struct {
	catalogue store.Catalogue
	log       logger.Logger

	// Ready reports whether the store can serve requests. Nil means always ready.
	Ready func() error
	// Status returns the payload for /admin/status.
	Status func() map[string]string
	// Shutdown is invoked by /admin/shutdown after the response is written.
	Shutdown func()
}

// NewHandler creates a Handler backed by c.
func NewHandler(c store.Catalogue, log logger.Logger) *Handler {
	if log == nil {
		log = logger.Default
	}
	return &Handler{catalogue: c, log: log}
}

type createMealRequest struct {
	Meal       string  `json:"meal"`
	Cuisine    string  `json:"cuisine"`
	Price      float64 `json:"price"`
	Difficulty string  `json:"difficulty"`
}

type battleRequest struct {
	Result string `json:"result"`
}

// PublicRoutes returns the JSON API mux.
func (h *Handler) PublicRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		if h.Ready != nil {
			if err := h.Ready(); err != nil {
				h.log.Warn("not ready: %v", err)
				http.Error(w, "NOT READY", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	})

	mux.Handle("POST /api/meals", jsonOnly(http.HandlerFunc(h.createMeal)))
	mux.Handle("GET /api/meals/by-name/{name}", jsonOnly(http.HandlerFunc(h.getMealByName)))
	mux.Handle("GET /api/meals/{id}", jsonOnly(http.HandlerFunc(h.getMealByID)))
	mux.Handle("DELETE /api/meals/{id}", jsonOnly(http.HandlerFunc(h.deleteMeal)))
	mux.Handle("POST /api/meals/{id}/battles", jsonOnly(http.HandlerFunc(h.recordBattle)))
	mux.Handle("GET /api/leaderboard", jsonOnly(http.HandlerFunc(h.leaderboard)))

	return mux
}

// AdminRoutes returns the JSON-only admin mux, including /metrics.
func (h *Handler) AdminRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("GET /admin/status", jsonOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]string{}
		if h.Status != nil {
			resp = h.Status()
		}
		writeJSON(w, http.StatusOK, resp)
	})))

	mux.Handle("POST /admin/clear-meals", jsonOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.catalogue.ClearMeals(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
	})))

	mux.Handle("POST /admin/shutdown", jsonOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "shutting down"})
		if h.Shutdown != nil {
			go h.Shutdown()
		}
	})))

	return mux
}

func (h *Handler) createMeal(w http.ResponseWriter, r *http.Request) {
	var req createMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	id, err := h.catalogue.CreateMeal(r.Context(), req.Meal, req.Cuisine, req.Price, req.Difficulty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, meal.Meal{
		ID:         id,
		Name:       req.Meal,
		Cuisine:    req.Cuisine,
		Price:      req.Price,
		Difficulty: meal.Difficulty(req.Difficulty),
	})
}

func (h *Handler) getMealByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	m, err := h.catalogue.GetMealByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) getMealByName(w http.ResponseWriter, r *http.Request) {
	m, err := h.catalogue.GetMealByName(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) deleteMeal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.catalogue.DeleteMeal(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted", "id": id})
}

func (h *Handler) recordBattle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req battleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.catalogue.UpdateMealStats(r.Context(), id, req.Result); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "recorded", "id": id, "result": req.Result})
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request) {
	sortBy := r.URL.Query().Get("sort_by")
	if sortBy == "" {
		sortBy = string(meal.SortByWins)
	}
	entries, err := h.catalogue.GetLeaderboard(r.Context(), sortBy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, meal.CodeInvalidArgument.String(), "meal id must be an integer")
		return 0, false
	}
	return id, true
}

// jsonOnly enforces the JSON-only contract.
func jsonOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept := r.Header.Get("Accept")
		if !strings.Contains(accept, "application/json") && accept != "" && accept != "*/*" {
			writeJSONError(w, http.StatusNotAcceptable, "not_acceptable", "Accept must include application/json")
			return
		}
		if r.Method == http.MethodPost && r.ContentLength != 0 && !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "Content-Type must be application/json")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StatusFor maps a catalogue failure to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, meal.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, meal.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, meal.ErrDeleted):
		return http.StatusGone
	case errors.Is(err, meal.ErrDuplicateName):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := meal.CodeOf(err)
	if code == meal.CodeUnknown {
		code = meal.CodeStorage
	}
	msg := err.Error()
	if code == meal.CodeStorage {
		msg = "database error"
	}
	writeJSONError(w, StatusFor(err), code.String(), msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{
		"error":   code,
		"message": msg,
	})
}
