//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/outerrim/holonet/pkg/chat"
	"github.com/outerrim/holonet/pkg/wiki"
)

const (
	// PollInterval is how often to re-read the room log
	PollInterval = 1 * time.Second
	// ReplyTimeout is max time to wait for the NPC reply to appear
	ReplyTimeout = 30 * time.Second
)

func postJSON(ctx context.Context, client *http.Client, url string, payload interface{}, out interface{}) (int, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response %q: %w", string(body), err)
		}
	}
	return resp.StatusCode, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response %q: %w", string(body), err)
		}
	}
	return resp.StatusCode, nil
}

func createRoom(ctx context.Context, client *http.Client, baseURL, name string) (*chat.Room, error) {
	var room chat.Room
	status, err := postJSON(ctx, client, baseURL+"/v1/rooms", chat.Room{Name: name}, &room)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		return nil, fmt.Errorf("room creation returned %d (expected 201)", status)
	}
	return &room, nil
}

func createEntry(ctx context.Context, client *http.Client, baseURL string, entry wiki.Entry) (*wiki.Entry, int, error) {
	var created wiki.Entry
	status, err := postJSON(ctx, client, baseURL+"/v1/wiki", entry, &created)
	if err != nil {
		return nil, status, err
	}
	if status != http.StatusCreated {
		return nil, status, nil
	}
	return &created, status, nil
}

func getEntry(ctx context.Context, client *http.Client, baseURL, id string) (*wiki.Entry, error) {
	var entry wiki.Entry
	status, err := getJSON(ctx, client, fmt.Sprintf("%s/v1/wiki/%s", baseURL, id), &entry)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("wiki read returned %d", status)
	}
	return &entry, nil
}

func postMessage(ctx context.Context, client *http.Client, baseURL, roomID string, req chat.PostRequest) (*chat.PostResponse, int, error) {
	var resp chat.PostResponse
	url := fmt.Sprintf("%s/v1/rooms/%s/messages", baseURL, roomID)
	status, err := postJSON(ctx, client, url, req, &resp)
	if err != nil {
		return nil, status, err
	}
	return &resp, status, nil
}

func listMessages(ctx context.Context, client *http.Client, baseURL, roomID string) ([]chat.Message, error) {
	var msgs []chat.Message
	url := fmt.Sprintf("%s/v1/rooms/%s/messages", baseURL, roomID)
	status, err := getJSON(ctx, client, url, &msgs)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("message list returned %d", status)
	}
	return msgs, nil
}

// pollForReply polls the room log until it grows past initialLen and
// the newest message is not user-authored. Returns that message.
func pollForReply(ctx context.Context, client *http.Client, baseURL, roomID string, initialLen int) (*chat.Message, error) {
	timeout := time.After(ReplyTimeout)
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeout:
			return nil, fmt.Errorf("timeout waiting for NPC reply (waited %v)", ReplyTimeout)
		case <-ticker.C:
			msgs, err := listMessages(ctx, client, baseURL, roomID)
			if err != nil {
				// Keep polling through transient errors
				continue
			}
			if len(msgs) > initialLen {
				last := msgs[len(msgs)-1]
				if last.IsNpc || last.AuthorID == chat.SystemAuthorID {
					return &last, nil
				}
			}
		}
	}
}
