// Command test-enqueue pushes a sample NPC invocation onto the queue so
// a running worker can be exercised without the API in front of it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	qsvc "github.com/outerrim/holonet/internal/services/queue"
	"github.com/outerrim/holonet/pkg/queue"
)

func main() {
	redisURL := flag.String("redis", getEnv("REDIS_URL", "redis://localhost:6379"), "Redis connection URL")
	roomID := flag.String("room", "test-room", "room ID to post the reply into")
	target := flag.String("target", "Greedo", "NPC name to invoke")
	utterance := flag.String("say", "Hello, anyone out there?", "utterance addressed to the NPC")
	flag.Parse()

	ctx := context.Background()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	client, err := qsvc.NewClient(*redisURL, logger)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer client.Close()

	fmt.Println("Connected to Redis successfully!")

	invocationQueue := qsvc.NewInvocationQueue(client)

	req := &queue.Request{
		RequestID:  uuid.New().String(),
		Type:       queue.RequestTypeInvocation,
		RoomID:     *roomID,
		Target:     *target,
		Utterance:  *utterance,
		SenderID:   "test-user",
		SenderName: "Test User",
		EnqueuedAt: time.Now().UTC(),
	}

	if err := invocationQueue.Enqueue(ctx, req); err != nil {
		log.Fatal("Failed to enqueue request:", err)
	}

	fmt.Printf("✅ Enqueued invocation request: %s (@%s)\n", req.RequestID, req.Target)

	depth, err := invocationQueue.Depth(ctx)
	if err != nil {
		log.Fatal("Failed to get queue depth:", err)
	}

	fmt.Printf("\n📊 Queue depth: %d requests\n", depth)
	fmt.Println("\n💡 Now start the worker to see it process the request!")
	fmt.Println("   Run: go run cmd/worker/main.go")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
