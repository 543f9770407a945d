// Command validate checks wiki entry seed files before they are
// imported into the Holo-Wiki. It enforces strict JSON (no unknown
// fields), the entry validation rules, and the seed file conventions.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/outerrim/holonet/pkg/wiki"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <entry.json> [entry.json ...]\n", os.Args[0])
		os.Exit(1)
	}

	validator := &EntryValidator{}
	failed := false

	for _, filename := range os.Args[1:] {
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid!\n", filename)
	}

	if failed {
		os.Exit(1)
	}
}

type EntryValidator struct {
	errors []string
}

func (v *EntryValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("entry file must have .json extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ".json")
	if !isValidSeedFilename(nameWithoutExt) {
		return fmt.Errorf("entry filename '%s' must be lowercase snake_case (e.g., greedo.json, not Greedo.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var entry wiki.Entry
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&entry); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	v.validateEntry(&entry)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

func (v *EntryValidator) validateEntry(entry *wiki.Entry) {
	if err := entry.Validate(); err != nil {
		v.addError(err.Error())
	}

	// Seed files describe records that do not exist yet
	if entry.ID != "" {
		v.addError("seed entries must not carry an id; the store assigns it on import")
	}
	if !entry.CreatedAt.IsZero() || !entry.UpdatedAt.IsZero() {
		v.addError("seed entries must not carry timestamps; the store assigns them on import")
	}

	if entry.IsNPC() {
		if strings.TrimSpace(entry.Personality) == "" {
			v.addError("NPC entries need a personality; it seeds every generation call")
		}
		// Interaction history is owned by the responder, never seeded
		if entry.InteractionHistory != "" {
			v.addError("NPC entries must not seed interaction_history")
		}
	} else if entry.Personality != "" || entry.InteractionHistory != "" {
		v.addError(fmt.Sprintf("%s entries must not carry NPC fields", entry.Type))
	}

	// A sheet that passes field checks can still fail actor
	// construction; prove the seed builds before it is imported.
	if entry.Sheet != nil && entry.Sheet.Validate() == nil {
		if _, err := entry.Sheet.BuildActor("seed-check"); err != nil {
			v.addError(fmt.Sprintf("sheet does not build a playable actor: %v", err))
		}
	}
}

func (v *EntryValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidSeedFilename(name string) bool {
	// Allow 'x.' prefix for experimental entries
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
