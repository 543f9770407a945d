package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/outerrim/holonet/internal/storage"
	"github.com/outerrim/holonet/pkg/community"
)

// MapPointsHandler handles interactive map pin CRUD.
type MapPointsHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewMapPointsHandler(storage storage.Storage, logger *slog.Logger) *MapPointsHandler {
	return &MapPointsHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles HTTP requests for map points
// Routes:
// POST /v1/map-points         - Create a point
// GET /v1/map-points          - List points
// DELETE /v1/map-points/{id}  - Delete a point
func (h *MapPointsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/map-points"), "/")

	if id == "" {
		switch r.Method {
		case http.MethodPost:
			h.handleCreate(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			h.methodNotAllowed(w, r, "POST, GET")
		}
		return
	}

	if r.Method != http.MethodDelete {
		h.methodNotAllowed(w, r, "DELETE")
		return
	}
	h.handleDelete(w, r, id)
}

func (h *MapPointsHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	h.logger.Warn("Method not allowed for map points endpoint", "method", r.Method, "path", r.URL.Path)
	w.WriteHeader(http.StatusMethodNotAllowed)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error: "Method not allowed. Supported methods: " + allowed,
	}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}

func (h *MapPointsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var point community.MapPoint
	if err := json.NewDecoder(r.Body).Decode(&point); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Invalid JSON in request body"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	if err := point.Validate(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	created, err := h.storage.CreateMapPoint(r.Context(), &point)
	if err != nil {
		h.logger.Error("Failed to create map point", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to create point"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		h.logger.Error("Failed to encode point response", "error", err)
	}
}

func (h *MapPointsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	points, err := h.storage.ListMapPoints(r.Context())
	if err != nil {
		h.logger.Error("Failed to list map points", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to list points"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(points); err != nil {
		h.logger.Error("Failed to encode points response", "error", err)
	}
}

func (h *MapPointsHandler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.storage.DeleteMapPoint(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete map point", "error", err, "id", id)
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to delete point"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
