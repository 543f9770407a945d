package actor

import "testing"

func TestSheet_BuildActor(t *testing.T) {
	sheet := &Sheet{
		MaxHP: 24,
		AC:    15,
		Attributes: map[string]int{
			"dexterity": 16,
			"piloting":  4,
		},
		CombatModifiers: map[string]int{
			"blaster": 5,
		},
	}

	actor, err := sheet.BuildActor("rec-123")
	if err != nil {
		t.Fatalf("failed to build actor: %v", err)
	}
	if actor == nil {
		t.Fatal("expected non-nil actor")
	}
}

func TestSheet_BuildActor_CurrentHP(t *testing.T) {
	sheet := &Sheet{HP: 10, MaxHP: 24, AC: 12}

	actor, err := sheet.BuildActor("rec-123")
	if err != nil {
		t.Fatalf("failed to build actor: %v", err)
	}
	if actor == nil {
		t.Fatal("expected non-nil actor")
	}
}

func TestSheet_BuildActor_Nil(t *testing.T) {
	var sheet *Sheet
	if _, err := sheet.BuildActor("rec-123"); err == nil {
		t.Error("expected error for nil sheet")
	}
}

func TestSheet_Validate(t *testing.T) {
	tests := []struct {
		name    string
		sheet   *Sheet
		wantErr bool
	}{
		{"nil sheet is fine", nil, false},
		{"valid", &Sheet{HP: 10, MaxHP: 20, AC: 14}, false},
		{"zero max hp", &Sheet{AC: 10}, true},
		{"hp above max", &Sheet{HP: 30, MaxHP: 20, AC: 10}, true},
		{"negative ac", &Sheet{MaxHP: 20, AC: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sheet.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}
