package wiki

import (
	"testing"

	"github.com/outerrim/holonet/pkg/actor"
)

func TestEntry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		wantErr bool
	}{
		{"valid npc", Entry{Name: "Greedo", Type: TypeNPC, Personality: "A jumpy bounty hunter."}, false},
		{"valid lore", Entry{Name: "The Clone Wars", Type: TypeLore, Body: "A galaxy-wide conflict."}, false},
		{"valid character with sheet", Entry{Name: "Ash", Type: TypeCharacter, Sheet: &actor.Sheet{MaxHP: 20, AC: 13}}, false},
		{"empty name", Entry{Type: TypeNPC}, true},
		{"unknown type", Entry{Name: "X", Type: "starship"}, true},
		{"sheet on npc rejected", Entry{Name: "Greedo", Type: TypeNPC, Sheet: &actor.Sheet{MaxHP: 20, AC: 13}}, true},
		{"broken sheet", Entry{Name: "Ash", Type: TypeCharacter, Sheet: &actor.Sheet{AC: 13}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestMemoryBlock(t *testing.T) {
	got := MemoryBlock("NpcName", "U1", "R1")
	want := "User: U1\nNpcName: R1\n\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestMemoryBlock_EmptyUtterance(t *testing.T) {
	got := MemoryBlock("Greedo", "", "Oota goota?")
	want := "User: \nGreedo: Oota goota?\n\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestEntry_IsNPC(t *testing.T) {
	if !(&Entry{Name: "G", Type: TypeNPC}).IsNPC() {
		t.Error("npc entry should report IsNPC")
	}
	if (&Entry{Name: "G", Type: TypeCharacter}).IsNPC() {
		t.Error("character entry should not report IsNPC")
	}
}
