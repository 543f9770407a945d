package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/outerrim/holonet/internal/storage"
	"github.com/outerrim/holonet/pkg/chat"
	"github.com/outerrim/holonet/pkg/invocation"
	"github.com/outerrim/holonet/pkg/queue"
)

// Enqueuer hands invocation requests to the worker queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, req *queue.Request) error
}

// EventPublisher announces room activity to stream subscribers.
type EventPublisher interface {
	PublishMessageCreated(ctx context.Context, roomID string, messageID string, authorName string) error
}

// RoomsHandler handles room CRUD and the room conversation log.
type RoomsHandler struct {
	storage   storage.Storage
	enqueuer  Enqueuer
	publisher EventPublisher
	logger    *slog.Logger
}

func NewRoomsHandler(storage storage.Storage, enqueuer Enqueuer, publisher EventPublisher, logger *slog.Logger) *RoomsHandler {
	return &RoomsHandler{
		storage:   storage,
		enqueuer:  enqueuer,
		publisher: publisher,
		logger:    logger,
	}
}

// ServeHTTP handles HTTP requests for rooms
// Routes:
// POST /v1/rooms                    - Create a room
// GET /v1/rooms                     - List rooms
// GET /v1/rooms/{id}                - Read a room
// GET /v1/rooms/{id}/messages       - List the room's conversation log
// POST /v1/rooms/{id}/messages      - Post a message (possibly an NPC invocation)
func (h *RoomsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/rooms"), "/")

	switch {
	case path == "":
		switch r.Method {
		case http.MethodPost:
			h.handleCreate(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			h.methodNotAllowed(w, r, "POST, GET")
		}

	case strings.HasSuffix(path, "/messages"):
		roomID := strings.TrimSuffix(path, "/messages")
		roomID = strings.Trim(roomID, "/")
		switch r.Method {
		case http.MethodGet:
			h.handleListMessages(w, r, roomID)
		case http.MethodPost:
			h.handlePostMessage(w, r, roomID)
		default:
			h.methodNotAllowed(w, r, "GET, POST")
		}

	default:
		if r.Method != http.MethodGet {
			h.methodNotAllowed(w, r, "GET")
			return
		}
		h.handleRead(w, r, path)
	}
}

func (h *RoomsHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	h.logger.Warn("Method not allowed for rooms endpoint", "method", r.Method, "path", r.URL.Path)
	w.WriteHeader(http.StatusMethodNotAllowed)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error: "Method not allowed. Supported methods: " + allowed,
	}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}

func (h *RoomsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var room chat.Room
	if err := json.NewDecoder(r.Body).Decode(&room); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Invalid JSON in request body"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	if err := room.Validate(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	created, err := h.storage.CreateRoom(r.Context(), &room)
	if err != nil {
		h.logger.Error("Failed to create room", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to create room"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	h.logger.Debug("Room created", "id", created.ID, "name", created.Name)
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		h.logger.Error("Failed to encode room response", "error", err)
	}
}

func (h *RoomsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.storage.ListRooms(r.Context())
	if err != nil {
		h.logger.Error("Failed to list rooms", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to list rooms"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(rooms); err != nil {
		h.logger.Error("Failed to encode rooms response", "error", err)
	}
}

func (h *RoomsHandler) handleRead(w http.ResponseWriter, r *http.Request, roomID string) {
	room, err := h.storage.GetRoom(r.Context(), roomID)
	if err != nil {
		h.logger.Error("Failed to load room", "error", err, "id", roomID)
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to load room"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	if room == nil {
		w.WriteHeader(http.StatusNotFound)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Room not found"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(room); err != nil {
		h.logger.Error("Failed to encode room response", "error", err)
	}
}

func (h *RoomsHandler) handleListMessages(w http.ResponseWriter, r *http.Request, roomID string) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			w.WriteHeader(http.StatusBadRequest)
			if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Invalid limit parameter"}); err != nil {
				h.logger.Error("Failed to encode error response", "error", err)
			}
			return
		}
		limit = parsed
	}

	msgs, err := h.storage.ListMessages(r.Context(), roomID, limit)
	if err != nil {
		h.logger.Error("Failed to list messages", "error", err, "room_id", roomID)
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to list messages"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msgs); err != nil {
		h.logger.Error("Failed to encode messages response", "error", err)
	}
}

// handlePostMessage appends the submitted message to the room log. When
// the text is an NPC invocation, a generation request is also queued;
// the user's message is always posted verbatim either way.
func (h *RoomsHandler) handlePostMessage(w http.ResponseWriter, r *http.Request, roomID string) {
	var req chat.PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Invalid JSON in request body"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	if err := req.Validate(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	room, err := h.storage.GetRoom(r.Context(), roomID)
	if err != nil {
		h.logger.Error("Failed to load room", "error", err, "id", roomID)
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to load room"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}
	if room == nil {
		w.WriteHeader(http.StatusNotFound)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Room not found"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	msg, err := h.storage.AppendMessage(r.Context(),
		roomID, chat.NewUserMessage(req.Text, req.AuthorID, req.AuthorName, req.AuthorPhotoURL))
	if err != nil {
		h.logger.Error("Failed to append message", "error", err, "room_id", roomID)
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Failed to post message"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	if err := h.publisher.PublishMessageCreated(r.Context(), roomID, msg.ID, msg.AuthorName); err != nil {
		h.logger.Error("Failed to publish message event", "error", err, "room_id", roomID)
		// The message is in the log; event delivery is best-effort
	}

	response := chat.PostResponse{Message: *msg}
	status := http.StatusCreated

	if inv, ok := invocation.Parse(req.Text); ok {
		queueReq := &queue.Request{
			RequestID:  uuid.New().String(),
			Type:       queue.RequestTypeInvocation,
			RoomID:     roomID,
			Target:     inv.Target,
			Utterance:  inv.Utterance,
			SenderID:   req.AuthorID,
			SenderName: req.AuthorName,
			EnqueuedAt: time.Now().UTC(),
		}
		if err := h.enqueuer.Enqueue(r.Context(), queueReq); err != nil {
			h.logger.Error("Failed to enqueue invocation",
				"error", err,
				"room_id", roomID,
				"target", inv.Target,
			)
			response.Error = "Message posted, but the NPC could not be reached"
		} else {
			h.logger.Info("Invocation queued",
				"request_id", queueReq.RequestID,
				"room_id", roomID,
				"target", inv.Target,
			)
			response.NpcPending = true
			status = http.StatusAccepted
		}
	}

	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode post response", "error", err)
	}
}
