package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/outerrim/holonet/internal/storage"
	"github.com/outerrim/holonet/pkg/community"
)

// BlogsHandler handles community blog post CRUD.
type BlogsHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewBlogsHandler(storage storage.Storage, logger *slog.Logger) *BlogsHandler {
	return &BlogsHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles HTTP requests for blog posts
// Routes:
// POST /v1/blogs         - Create a post
// GET /v1/blogs          - List posts
// GET /v1/blogs/{id}     - Read a post
// DELETE /v1/blogs/{id}  - Delete a post
func (h *BlogsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/blogs"), "/")

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
	case http.MethodDelete:
		h.handleDelete(w, r, id)
	default:
		h.methodNotAllowed(w, r, "GET, DELETE")
	}
}

func (h *BlogsHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	h.logger.Warn("Method not allowed for blogs endpoint", "method", r.Method, "path", r.URL.Path)
	w.WriteHeader(http.StatusMethodNotAllowed)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error: "Method not allowed. Supported methods: " + allowed,
	}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}

func (h *BlogsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var post community.BlogPost
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Invalid JSON in request body"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	if err := post.Validate(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	created, err := h.storage.CreateBlogPost(r.Context(), &post)
	if err != nil {
		h.logger.Error("Failed to create blog post", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to create post"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		h.logger.Error("Failed to encode post response", "error", err)
	}
}

func (h *BlogsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.storage.ListBlogPosts(r.Context())
	if err != nil {
		h.logger.Error("Failed to list blog posts", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to list posts"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(posts); err != nil {
		h.logger.Error("Failed to encode posts response", "error", err)
	}
}

func (h *BlogsHandler) handleRead(w http.ResponseWriter, r *http.Request, id string) {
	post, err := h.storage.GetBlogPost(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load blog post", "error", err, "id", id)
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to load post"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	if post == nil {
		w.WriteHeader(http.StatusNotFound)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Post not found"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(post); err != nil {
		h.logger.Error("Failed to encode post response", "error", err)
	}
}

func (h *BlogsHandler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.storage.DeleteBlogPost(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete blog post", "error", err, "id", id)
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to delete post"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
