package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/outerrim/holonet/internal/storage"
	"github.com/outerrim/holonet/pkg/community"
)

// ProfilesHandler handles user profile reads and upserts.
type ProfilesHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewProfilesHandler(storage storage.Storage, logger *slog.Logger) *ProfilesHandler {
	return &ProfilesHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles HTTP requests for profiles
// Routes:
// GET /v1/profiles/{userID} - Read a profile
// PUT /v1/profiles/{userID} - Create or replace a profile
func (h *ProfilesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/profiles"), "/")
	if userID == "" {
		w.WriteHeader(http.StatusBadRequest)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "User ID is required"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleRead(w, r, userID)
	case http.MethodPut:
		h.handleUpsert(w, r, userID)
	default:
		h.logger.Warn("Method not allowed for profiles endpoint", "method", r.Method, "path", r.URL.Path)
		w.WriteHeader(http.StatusMethodNotAllowed)
		if err := json.NewEncoder(w).Encode(ErrorResponse{
			Error: "Method not allowed. Supported methods: GET, PUT",
		}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
	}
}

func (h *ProfilesHandler) handleRead(w http.ResponseWriter, r *http.Request, userID string) {
	profile, err := h.storage.GetProfile(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load profile", "error", err, "user_id", userID)
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to load profile"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	if profile == nil {
		w.WriteHeader(http.StatusNotFound)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Profile not found"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(profile); err != nil {
		h.logger.Error("Failed to encode profile response", "error", err)
	}
}

func (h *ProfilesHandler) handleUpsert(w http.ResponseWriter, r *http.Request, userID string) {
	var profile community.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Invalid JSON in request body"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	profile.UserID = userID
	profile.UpdatedAt = time.Now().UTC()
	if err := profile.Validate(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	if err := h.storage.SaveProfile(r.Context(), &profile); err != nil {
		h.logger.Error("Failed to save profile", "error", err, "user_id", userID)
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to save profile"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(profile); err != nil {
		h.logger.Error("Failed to encode profile response", "error", err)
	}
}
