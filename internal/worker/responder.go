package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/outerrim/holonet/internal/services"
	"github.com/outerrim/holonet/internal/storage"
	"github.com/outerrim/holonet/pkg/chat"
	"github.com/outerrim/holonet/pkg/prompts"
	"github.com/outerrim/holonet/pkg/queue"
	"github.com/outerrim/holonet/pkg/textfilter"
	"github.com/outerrim/holonet/pkg/wiki"
)

// Responder turns a queued NPC invocation into an appended reply. It
// resolves the target NPC, builds the generation instruction from the
// NPC's stored personality and interaction history, calls the LLM,
// appends the reply to the room log, and folds the exchange back into
// the NPC's durable memory.
type Responder struct {
	storage      storage.Storage
	llm          services.LLMService
	historyLimit int
	filter       *textfilter.ProfanityFilter
	logger       *slog.Logger
}

// NewResponder creates a responder. historyLimit caps the prompt
// context window in characters; <= 0 uses the default.
func NewResponder(s storage.Storage, llm services.LLMService, historyLimit int, logger *slog.Logger) *Responder {
	if historyLimit <= 0 {
		historyLimit = prompts.DefaultHistoryLimit
	}
	return &Responder{
		storage:      s,
		llm:          llm,
		historyLimit: historyLimit,
		filter:       textfilter.NewProfanityFilter(),
		logger:       logger,
	}
}

// Respond processes one invocation request and returns the message it
// appended to the room log. Every invocation produces exactly one
// appended message: the NPC's reply, the offline fallback, or the
// not-found notice. An error return means nothing could be appended.
func (r *Responder) Respond(ctx context.Context, req *queue.Request) (*chat.Message, error) {
	entry, err := r.storage.FindNPCByName(ctx, req.Target)
	if err != nil {
		return nil, fmt.Errorf("failed to look up npc %q: %w", req.Target, err)
	}

	if entry == nil {
		// Unknown NPC: post the notice and stop. No generation, no
		// memory write.
		text := fmt.Sprintf("NPC named %q not found in Holo-Wiki.", req.Target)
		msg, err := r.storage.AppendMessage(ctx, req.RoomID, chat.NewSystemMessage(text))
		if err != nil {
			return nil, fmt.Errorf("failed to append not-found notice: %w", err)
		}
		r.logger.Info("Invocation target not found",
			"request_id", req.RequestID,
			"target", req.Target,
			"room_id", req.RoomID,
		)
		return msg, nil
	}

	instruction, err := prompts.New().
		WithNpc(entry.Name, entry.Personality).
		WithHistory(entry.InteractionHistory).
		WithHistoryLimit(r.historyLimit).
		WithUtterance(req.Utterance).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build instruction: %w", err)
	}

	reply, err := r.llm.Generate(ctx, instruction)
	if err != nil || reply == "" {
		if err != nil {
			r.logger.Warn("Generation failed, using offline reply",
				"error", err,
				"request_id", req.RequestID,
				"npc", entry.Name,
			)
		}
		reply = prompts.OfflineReply
	}

	// Family-friendly rooms get the reply softened before it is posted.
	// The filtered text is what lands in both the log and the NPC's
	// memory. A room lookup failure just skips filtering.
	room, err := r.storage.GetRoom(ctx, req.RoomID)
	if err != nil {
		r.logger.Warn("Failed to load room for content rating check",
			"error", err,
			"room_id", req.RoomID,
		)
	} else if room != nil && textfilter.ShouldFilterContent(room.Rating) {
		reply = r.filter.FilterText(reply)
	}

	msg, err := r.storage.AppendMessage(ctx, req.RoomID, chat.NewNpcMessage(entry.ID, entry.Name, reply))
	if err != nil {
		return nil, fmt.Errorf("failed to append npc reply: %w", err)
	}

	// Fold the exchange into the NPC's memory. The reply is already in
	// the room log, so a memory failure degrades recall but loses
	// nothing visible; log it and move on.
	block := wiki.MemoryBlock(entry.Name, req.Utterance, reply)
	if err := r.storage.AppendNPCMemory(ctx, entry.ID, block); err != nil {
		r.logger.Error("Failed to append npc memory",
			"error", err,
			"request_id", req.RequestID,
			"npc", entry.Name,
			"record_id", entry.ID,
		)
	}

	return msg, nil
}
