// Package actor holds the optional d20 stat block a character wiki
// entry may carry. The hub is narrative-first: sheets are flavor for
// roleplay, not a combat engine.
package actor

import (
	"fmt"

	"github.com/jwebster45206/d20"
)

// Sheet is the serializable stat block for a character entry.
type Sheet struct {
	HP              int            `json:"hp,omitempty"` // current HP, defaults to MaxHP
	MaxHP           int            `json:"max_hp"`
	AC              int            `json:"ac"`
	Attributes      map[string]int `json:"attributes,omitempty"`       // ability scores, skills, proficiencies
	CombatModifiers map[string]int `json:"combat_modifiers,omitempty"` // e.g. "blaster": 4
}

// BuildActor constructs the runtime d20.Actor for a sheet. The id is
// the owning wiki entry's record ID.
func (s *Sheet) BuildActor(id string) (*d20.Actor, error) {
	if s == nil {
		return nil, fmt.Errorf("sheet cannot be nil")
	}

	actor, err := d20.NewActor(id).
		WithHP(s.MaxHP).
		WithAC(s.AC).
		WithAttributes(s.Attributes).
		WithCombatModifiers(s.CombatModifiers).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}

	if s.HP != s.MaxHP && s.HP > 0 {
		if err := actor.SetHP(s.HP); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}

	return actor, nil
}

// Validate checks a sheet for obviously broken values before storage.
func (s *Sheet) Validate() error {
	if s == nil {
		return nil
	}
	if s.MaxHP <= 0 {
		return fmt.Errorf("max_hp must be positive")
	}
	if s.HP < 0 || s.HP > s.MaxHP {
		return fmt.Errorf("hp must be between 0 and max_hp")
	}
	if s.AC < 0 {
		return fmt.Errorf("ac cannot be negative")
	}
	return nil
}
