package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/outerrim/holonet/pkg/chat"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func listRooms(client *http.Client, baseURL string) ([]chat.Room, error) {
	resp, err := client.Get(baseURL + "/v1/rooms")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to list rooms: %s", errorResp.Error)
	}

	var rooms []chat.Room
	if err := json.Unmarshal(body, &rooms); err != nil {
		return nil, fmt.Errorf("failed to parse rooms response: %w", err)
	}
	return rooms, nil
}

func createRoom(client *http.Client, baseURL string, name string) (*chat.Room, error) {
	jsonData, err := json.Marshal(chat.Room{Name: name})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/v1/rooms",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to create room: %s", errorResp.Error)
	}

	var created chat.Room
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to parse room response: %w", err)
	}
	return &created, nil
}

func listMessages(client *http.Client, baseURL string, roomID string) ([]chat.Message, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/rooms/%s/messages", baseURL, roomID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to list messages: %s", errorResp.Error)
	}

	var msgs []chat.Message
	if err := json.Unmarshal(body, &msgs); err != nil {
		return nil, fmt.Errorf("failed to parse messages response: %w", err)
	}

	// Subscription delivery can race the log read; keep the view ordered
	chat.SortMessages(msgs)
	return msgs, nil
}

func postMessage(client *http.Client, baseURL string, roomID string, req chat.PostRequest) (*chat.PostResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		fmt.Sprintf("%s/v1/rooms/%s/messages", baseURL, roomID),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to post message: %s", errorResp.Error)
	}

	var postResp chat.PostResponse
	if err := json.Unmarshal(body, &postResp); err != nil {
		return nil, fmt.Errorf("failed to parse post response: %w", err)
	}
	return &postResp, nil
}

// SSEEvent represents an event from the SSE stream
type SSEEvent struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// listenToSSE connects to the SSE endpoint and streams events to a channel
func listenToSSE(ctx context.Context, client *http.Client, baseURL string, roomID string, eventChan chan<- SSEEvent) error {
	url := fmt.Sprintf("%s/v1/events/rooms/%s", baseURL, roomID)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to SSE: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("SSE connection failed with status %d: %s", resp.StatusCode, string(body))
	}

	scanner := bufio.NewScanner(resp.Body)
	var currentEvent SSEEvent

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Text()

		if line == "" {
			// Empty line signals end of event
			if currentEvent.Type != "" {
				eventChan <- currentEvent
				currentEvent = SSEEvent{}
			}
			continue
		}

		if strings.HasPrefix(line, "event: ") {
			currentEvent.Type = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			dataJSON := strings.TrimPrefix(line, "data: ")
			var data map[string]interface{}
			if err := json.Unmarshal([]byte(dataJSON), &data); err == nil {
				currentEvent.Data = data
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading SSE stream: %w", err)
	}

	return nil
}
