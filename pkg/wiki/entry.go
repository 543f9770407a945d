// Package wiki defines the collaborative wiki record shapes. NPC
// entries are a specialization of the generic entry: their personality
// seeds every generation call and their interaction history is the
// sole persistent memory between invocations.
package wiki

import (
	"fmt"
	"time"

	"github.com/outerrim/holonet/pkg/actor"
)

// EntryType discriminates wiki record kinds.
type EntryType string

const (
	TypeNPC       EntryType = "npc"
	TypeCharacter EntryType = "character"
	TypeLore      EntryType = "lore"
	TypeLocation  EntryType = "location"
)

// ValidTypes lists the accepted entry types, in display order.
var ValidTypes = []EntryType{TypeNPC, TypeCharacter, TypeLore, TypeLocation}

// Entry is one wiki record. For NPC entries, Personality and
// InteractionHistory drive the conversational subsystem; for character
// entries, Sheet optionally carries a d20 stat block. Lore and
// location entries use only Name and Body.
type Entry struct {
	ID   string    `json:"id,omitempty"`
	Name string    `json:"name"`
	Type EntryType `json:"type"`
	Body string    `json:"body,omitempty"`

	// NPC fields. InteractionHistory grows append-only and is never
	// edited through the wiki; only the responder's memory fold-back
	// writes it.
	Personality        string `json:"personality,omitempty"`
	InteractionHistory string `json:"interaction_history,omitempty"`

	// Character fields.
	Sheet *actor.Sheet `json:"sheet,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

func (e *Entry) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	valid := false
	for _, t := range ValidTypes {
		if e.Type == t {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid entry type: %q", e.Type)
	}
	if e.Sheet != nil {
		if e.Type != TypeCharacter {
			return fmt.Errorf("only character entries may carry a stat sheet")
		}
		if err := e.Sheet.Validate(); err != nil {
			return fmt.Errorf("invalid sheet: %w", err)
		}
	}
	return nil
}

// IsNPC reports whether this entry is addressable in chat.
func (e *Entry) IsNPC() bool {
	return e.Type == TypeNPC
}

// MemoryBlock formats one exchange for fold-back into an NPC's
// interaction history. The format is fixed; tests and future prompt
// context both depend on it byte-for-byte.
func MemoryBlock(name, utterance, reply string) string {
	return fmt.Sprintf("User: %s\n%s: %s\n\n", utterance, name, reply)
}
