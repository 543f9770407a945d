package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/outerrim/holonet/internal/storage"
	"github.com/outerrim/holonet/pkg/wiki"
)

// WikiHandler handles Holo-Wiki entry CRUD and search.
type WikiHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewWikiHandler(storage storage.Storage, logger *slog.Logger) *WikiHandler {
	return &WikiHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles HTTP requests for wiki entries
// Routes:
// POST /v1/wiki              - Create an entry
// GET /v1/wiki               - List entries (?type= filters, ?q= searches)
// GET /v1/wiki/{id}          - Read an entry
// PUT /v1/wiki/{id}          - Update an entry
// DELETE /v1/wiki/{id}       - Delete an entry
func (h *WikiHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/wiki"), "/")

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

	switch r.Method {
	case http.MethodGet:
		h.handleRead(w, r, id)
	case http.MethodPut:
		h.handleUpdate(w, r, id)
	case http.MethodDelete:
		h.handleDelete(w, r, id)
	default:
		h.methodNotAllowed(w, r, "GET, PUT, DELETE")
	}
}

func (h *WikiHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	h.logger.Warn("Method not allowed for wiki endpoint", "method", r.Method, "path", r.URL.Path)
	w.WriteHeader(http.StatusMethodNotAllowed)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error: "Method not allowed. Supported methods: " + allowed,
	}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}

func (h *WikiHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var entry wiki.Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Invalid JSON in request body"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	if err := entry.Validate(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	created, err := h.storage.CreateEntry(r.Context(), &entry)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateName) {
			w.WriteHeader(http.StatusConflict)
			if err := json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()}); err != nil {
				h.logger.Error("Failed to encode error response", "error", err)
			}
			return
		}
		h.logger.Error("Failed to create wiki entry", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to create entry"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	h.logger.Debug("Wiki entry created", "id", created.ID, "name", created.Name, "type", created.Type)
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		h.logger.Error("Failed to encode entry response", "error", err)
	}
}

func (h *WikiHandler) handleList(w http.ResponseWriter, r *http.Request) {
	var entries []wiki.Entry
	var err error

	if query := r.URL.Query().Get("q"); query != "" {
		entries, err = h.storage.SearchEntries(r.Context(), query)
	} else {
		entries, err = h.storage.ListEntries(r.Context(), wiki.EntryType(r.URL.Query().Get("type")))
	}
	if err != nil {
		h.logger.Error("Failed to list wiki entries", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to list entries"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		h.logger.Error("Failed to encode entries response", "error", err)
	}
}

func (h *WikiHandler) handleRead(w http.ResponseWriter, r *http.Request, id string) {
	entry, err := h.storage.GetEntry(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load wiki entry", "error", err, "id", id)
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to load entry"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	if entry == nil {
		w.WriteHeader(http.StatusNotFound)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Entry not found"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(entry); err != nil {
		h.logger.Error("Failed to encode entry response", "error", err)
	}
}

func (h *WikiHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var entry wiki.Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Invalid JSON in request body"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	entry.ID = id
	if err := entry.Validate(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	existing, err := h.storage.GetEntry(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load wiki entry for update", "error", err, "id", id)
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to load entry"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}
	if existing == nil {
		w.WriteHeader(http.StatusNotFound)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Entry not found"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	updated, err := h.storage.UpdateEntry(r.Context(), &entry)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateName) {
			w.WriteHeader(http.StatusConflict)
			if err := json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()}); err != nil {
				h.logger.Error("Failed to encode error response", "error", err)
			}
			return
		}
		h.logger.Error("Failed to update wiki entry", "error", err, "id", id)
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to update entry"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(updated); err != nil {
		h.logger.Error("Failed to encode entry response", "error", err)
	}
}

func (h *WikiHandler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.storage.DeleteEntry(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete wiki entry", "error", err, "id", id)
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to delete entry"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}
	h.logger.Debug("Wiki entry deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
