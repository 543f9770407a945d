package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/outerrim/holonet/pkg/queue"
)

// invocationsKey is the global list holding pending NPC invocations.
const invocationsKey = "invocations"

// InvocationQueue manages the queue of pending NPC invocations.
// The API enqueues; the worker dequeues.
type InvocationQueue struct {
	client *Client
}

func NewInvocationQueue(client *Client) *InvocationQueue {
	return &InvocationQueue{
		client: client,
	}
}

// Enqueue adds an invocation request to the end of the global queue
func (q *InvocationQueue) Enqueue(ctx context.Context, req *queue.Request) error {
	data, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}

	if err := q.client.rdb.RPush(ctx, invocationsKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue request: %w", err)
	}
	return nil
}

// Dequeue removes and returns the next request from the queue.
// Returns nil if the queue is empty.
func (q *InvocationQueue) Dequeue(ctx context.Context) (*queue.Request, error) {
	result, err := q.client.rdb.LPop(ctx, invocationsKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Queue is empty
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}

	req, err := queue.FromJSON([]byte(result))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}

	return req, nil
}

// BlockingDequeue blocks until a request is available, then returns it.
// Returns nil if the timeout elapses without a request; timeout 0 waits
// forever.
func (q *InvocationQueue) BlockingDequeue(ctx context.Context, timeout time.Duration) (*queue.Request, error) {
	result, err := q.client.rdb.BLPop(ctx, timeout, invocationsKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Timed out waiting
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}

	req, err := queue.FromJSON([]byte(result[1]))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}

	return req, nil
}

// Depth returns the number of requests in the queue
func (q *InvocationQueue) Depth(ctx context.Context) (int, error) {
	count, err := q.client.rdb.LLen(ctx, invocationsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(count), nil
}
