package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/outerrim/holonet/internal/services/events"
	"github.com/outerrim/holonet/internal/services/queue"
	"github.com/outerrim/holonet/internal/storage"
	"github.com/outerrim/holonet/pkg/chat"
	queuePkg "github.com/outerrim/holonet/pkg/queue"
)

const (
	workerTimeout = 5 * time.Second
	npcLockTTL    = 30 * time.Second
)

// Worker processes NPC invocations from the queue. Invocations for the
// same NPC are serialized with a per-NPC lock so sequential memory
// appends land in submission order.
type Worker struct {
	id          string
	queue       *queue.InvocationQueue
	responder   *Responder
	storage     storage.Storage
	broadcaster *events.Broadcaster
	redisClient *redis.Client
	log         *slog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a new worker instance
func New(invocationQueue *queue.InvocationQueue, responder *Responder, store storage.Storage, redisClient *redis.Client, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	broadcaster := events.NewBroadcaster(redisClient, log)

	return &Worker{
		id:          workerID,
		queue:       invocationQueue,
		responder:   responder,
		storage:     store,
		broadcaster: broadcaster,
		redisClient: redisClient,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start begins processing requests from the queue
func (w *Worker) Start() error {
	w.log.Info("Worker starting", "worker_id", w.id)

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down", "worker_id", w.id)
			return nil
		default:
			if err := w.processNextRequest(); err != nil {
				w.log.Error("Error processing request", "error", err, "worker_id", w.id)
				// Continue processing even on error
				time.Sleep(1 * time.Second)
			}
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested", "worker_id", w.id)
	w.cancel()
}

// processNextRequest pulls the next request from the queue and processes it
func (w *Worker) processNextRequest() error {
	// Block waiting for the next request (timeout to check for shutdown)
	ctx, cancel := context.WithTimeout(w.ctx, workerTimeout+time.Second)
	defer cancel()

	req, err := w.queue.BlockingDequeue(ctx, workerTimeout)
	if err != nil {
		if w.ctx.Err() != nil {
			return nil // Shutting down
		}
		return fmt.Errorf("failed to dequeue request: %w", err)
	}

	if req == nil {
		// Queue is empty or timeout occurred - this is normal
		return nil
	}

	w.log.Info("Received request from queue",
		"worker_id", w.id,
		"request_id", req.RequestID,
		"type", req.Type,
		"target", req.Target,
		"room_id", req.RoomID,
	)

	// Try to acquire the per-NPC lock
	locked, err := w.acquireNpcLock(req.Target)
	if err != nil {
		return fmt.Errorf("failed to acquire npc lock: %w", err)
	}
	if !locked {
		// Another worker is generating for this NPC. Re-queue at the
		// end to preserve one-at-a-time memory appends.
		w.log.Info("NPC already locked, re-queueing request",
			"worker_id", w.id,
			"request_id", req.RequestID,
			"target", req.Target,
		)
		if err := w.queue.Enqueue(w.ctx, req); err != nil {
			return fmt.Errorf("failed to re-queue request: %w", err)
		}
		return nil
	}

	defer w.releaseNpcLock(req.Target)
	return w.processRequest(req)
}

// acquireNpcLock attempts to acquire the lock for an NPC by name.
// Returns true if the lock was acquired, false if already locked.
func (w *Worker) acquireNpcLock(target string) (bool, error) {
	lockKey := fmt.Sprintf("npc-lock:%s", target)

	result, err := w.redisClient.SetNX(w.ctx, lockKey, w.id, npcLockTTL).Result()
	if err != nil {
		return false, err
	}

	return result, nil
}

// releaseNpcLock releases the lock for an NPC
func (w *Worker) releaseNpcLock(target string) {
	lockKey := fmt.Sprintf("npc-lock:%s", target)

	// Only delete if we own the lock
	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)

	if err := script.Run(w.ctx, w.redisClient, []string{lockKey}, w.id).Err(); err != nil {
		w.log.Error("Failed to release npc lock", "error", err, "target", target)
	}
}

// processRequest processes a single invocation using the Responder
func (w *Worker) processRequest(req *queuePkg.Request) error {
	if req.Type != queuePkg.RequestTypeInvocation {
		return fmt.Errorf("unknown request type: %s", req.Type)
	}

	start := time.Now()

	if err := w.broadcaster.PublishNpcThinking(w.ctx, req.RoomID, req.RequestID, req.Target); err != nil {
		w.log.Error("Failed to publish thinking event", "error", err)
		// Don't fail the request just because event publishing failed
	}

	msg, err := w.responder.Respond(w.ctx, req)
	if err != nil {
		w.log.Error("Failed to process invocation",
			"error", err,
			"worker_id", w.id,
			"request_id", req.RequestID,
			"target", req.Target,
		)

		// Failures surface in-channel, never only as a vanished thinking
		// indicator. Best-effort: if the log append itself is what broke,
		// this will fail too, and the failure event still clears viewers.
		notice := chat.NewSystemMessage(fmt.Sprintf("%s could not respond due to a HoloNet fault. Please try again.", req.Target))
		if _, appendErr := w.storage.AppendMessage(w.ctx, req.RoomID, notice); appendErr != nil {
			w.log.Error("Failed to append failure notice", "error", appendErr, "room_id", req.RoomID)
		}

		// The failure event clears the thinking indicator on viewers
		if pubErr := w.broadcaster.PublishNpcFailed(w.ctx, req.RoomID, req.RequestID, err.Error()); pubErr != nil {
			w.log.Error("Failed to publish failure event", "error", pubErr)
		}

		return fmt.Errorf("failed to process invocation: %w", err)
	}

	w.log.Info("Invocation processed",
		"worker_id", w.id,
		"request_id", req.RequestID,
		"target", req.Target,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if err := w.broadcaster.PublishNpcCompleted(w.ctx, req.RoomID, req.RequestID, req.Target, msg.ID); err != nil {
		w.log.Error("Failed to publish completion event", "error", err)
	}

	return nil
}
