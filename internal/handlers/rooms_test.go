package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/outerrim/holonet/internal/storage"
	"github.com/outerrim/holonet/pkg/chat"
	"github.com/outerrim/holonet/pkg/queue"
)

type mockEnqueuer struct {
	requests []*queue.Request
	err      error
}

func (m *mockEnqueuer) Enqueue(ctx context.Context, req *queue.Request) error {
	if m.err != nil {
		return m.err
	}
	m.requests = append(m.requests, req)
	return nil
}

type mockPublisher struct {
	published []string
	err       error
}

func (m *mockPublisher) PublishMessageCreated(ctx context.Context, roomID string, messageID string, authorName string) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, messageID)
	return nil
}

func testHandlerLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func seedRoom(t *testing.T, ms *storage.MockStorage) *chat.Room {
	t.Helper()
	room, err := ms.CreateRoom(context.Background(), &chat.Room{Name: "Cantina"})
	if err != nil {
		t.Fatalf("Failed to seed room: %v", err)
	}
	return room
}

func TestRoomsHandler_PostMessage(t *testing.T) {
	tests := []struct {
		name            string
		body            interface{}
		enqueueErr      error
		expectedStatus  int
		expectedPending bool
		expectedTarget  string
		expectedError   string
	}{
		{
			name: "plain message",
			body: chat.PostRequest{
				Text:       "hello everyone",
				AuthorID:   "u1",
				AuthorName: "Han",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "npc invocation",
			body: chat.PostRequest{
				Text:       "@Boba Fett, where are you?",
				AuthorID:   "u1",
				AuthorName: "Han",
			},
			expectedStatus:  http.StatusAccepted,
			expectedPending: true,
			expectedTarget:  "Boba Fett",
		},
		{
			name: "invocation with empty utterance",
			body: chat.PostRequest{
				Text:       "@Greedo,",
				AuthorID:   "u1",
				AuthorName: "Han",
			},
			expectedStatus:  http.StatusAccepted,
			expectedPending: true,
			expectedTarget:  "Greedo",
		},
		{
			name: "mid-text at-sign is not an invocation",
			body: chat.PostRequest{
				Text:       "say hi to @Greedo, everyone",
				AuthorID:   "u1",
				AuthorName: "Han",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid json",
			body:           "not json",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid JSON in request body",
		},
		{
			name: "missing text",
			body: chat.PostRequest{
				AuthorID:   "u1",
				AuthorName: "Han",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "text cannot be empty",
		},
		{
			name: "missing author",
			body: chat.PostRequest{
				Text:       "hello",
				AuthorName: "Han",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "authorId cannot be empty",
		},
		{
			name: "enqueue failure still posts the message",
			body: chat.PostRequest{
				Text:       "@Greedo, hello",
				AuthorID:   "u1",
				AuthorName: "Han",
			},
			enqueueErr:     errors.New("queue unavailable"),
			expectedStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := storage.NewMockStorage()
			room := seedRoom(t, ms)
			enq := &mockEnqueuer{err: tt.enqueueErr}
			pub := &mockPublisher{}
			h := NewRoomsHandler(ms, enq, pub, testHandlerLogger())

			var body bytes.Buffer
			if s, ok := tt.body.(string); ok {
				body.WriteString(s)
			} else {
				assert.NoError(t, json.NewEncoder(&body).Encode(tt.body))
			}

			req := httptest.NewRequest(http.MethodPost, "/v1/rooms/"+room.ID+"/messages", &body)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedError != "" {
				var errResp ErrorResponse
				assert.NoError(t, json.NewDecoder(w.Body).Decode(&errResp))
				assert.Equal(t, tt.expectedError, errResp.Error)
				return
			}

			var resp chat.PostResponse
			assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.expectedPending, resp.NpcPending)

			postReq := tt.body.(chat.PostRequest)
			assert.Equal(t, postReq.Text, resp.Message.Text)
			assert.Equal(t, postReq.AuthorID, resp.Message.AuthorID)
			assert.NotEmpty(t, resp.Message.ID)
			assert.False(t, resp.Message.IsNpc)

			// The user message always lands in the log, invocation or not
			msgs, err := ms.ListMessages(context.Background(), room.ID, 0)
			assert.NoError(t, err)
			assert.Len(t, msgs, 1)
			assert.Equal(t, postReq.Text, msgs[0].Text)

			assert.Len(t, pub.published, 1)

			if tt.expectedTarget != "" {
				assert.Len(t, enq.requests, 1)
				assert.Equal(t, tt.expectedTarget, enq.requests[0].Target)
				assert.Equal(t, room.ID, enq.requests[0].RoomID)
				assert.Equal(t, postReq.AuthorID, enq.requests[0].SenderID)
				assert.NotEmpty(t, enq.requests[0].RequestID)
			} else {
				assert.Empty(t, enq.requests)
			}

			if tt.enqueueErr != nil {
				assert.NotEmpty(t, resp.Error)
			}
		})
	}
}

func TestRoomsHandler_PostMessage_RoomNotFound(t *testing.T) {
	ms := storage.NewMockStorage()
	h := NewRoomsHandler(ms, &mockEnqueuer{}, &mockPublisher{}, testHandlerLogger())

	var body bytes.Buffer
	assert.NoError(t, json.NewEncoder(&body).Encode(chat.PostRequest{
		Text: "hello", AuthorID: "u1", AuthorName: "Han",
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/rooms/no-such-room/messages", &body)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoomsHandler_CreateAndListRooms(t *testing.T) {
	ms := storage.NewMockStorage()
	h := NewRoomsHandler(ms, &mockEnqueuer{}, &mockPublisher{}, testHandlerLogger())

	var body bytes.Buffer
	assert.NoError(t, json.NewEncoder(&body).Encode(chat.Room{Name: "Cantina", Topic: "Music and blasters"}))

	req := httptest.NewRequest(http.MethodPost, "/v1/rooms", &body)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var created chat.Room
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Cantina", created.Name)

	req = httptest.NewRequest(http.MethodGet, "/v1/rooms", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var rooms []chat.Room
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&rooms))
	assert.Len(t, rooms, 1)
}

func TestRoomsHandler_CreateRoom_MissingName(t *testing.T) {
	ms := storage.NewMockStorage()
	h := NewRoomsHandler(ms, &mockEnqueuer{}, &mockPublisher{}, testHandlerLogger())

	var body bytes.Buffer
	assert.NoError(t, json.NewEncoder(&body).Encode(chat.Room{Topic: "no name"}))

	req := httptest.NewRequest(http.MethodPost, "/v1/rooms", &body)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoomsHandler_ListMessages(t *testing.T) {
	ms := storage.NewMockStorage()
	room := seedRoom(t, ms)
	h := NewRoomsHandler(ms, &mockEnqueuer{}, &mockPublisher{}, testHandlerLogger())

	for _, text := range []string{"first", "second", "third"} {
		_, err := ms.AppendMessage(context.Background(), room.ID, chat.NewUserMessage(text, "u1", "Han", ""))
		assert.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/rooms/"+room.ID+"/messages", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var msgs []chat.Message
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&msgs))
	assert.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, "third", msgs[2].Text)

	// limit keeps the most recent
	req = httptest.NewRequest(http.MethodGet, "/v1/rooms/"+room.ID+"/messages?limit=2", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	msgs = nil
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&msgs))
	assert.Len(t, msgs, 2)
	assert.Equal(t, "second", msgs[0].Text)
}

func TestRoomsHandler_MethodNotAllowed(t *testing.T) {
	ms := storage.NewMockStorage()
	h := NewRoomsHandler(ms, &mockEnqueuer{}, &mockPublisher{}, testHandlerLogger())

	req := httptest.NewRequest(http.MethodDelete, "/v1/rooms", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
