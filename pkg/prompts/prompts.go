// Package prompts assembles the single text instruction block sent to
// the generation service for an NPC invocation.
package prompts

// FallbackPersonality seeds generation when an NPC record has an empty
// personality field.
const FallbackPersonality = "A mysterious figure about whom little is known. Speaks cryptically and briefly."

// OfflineReply is substituted for the generated text when the
// generation call fails or returns an empty payload. The flow always
// proceeds to the log append and memory fold-back with this text.
const OfflineReply = "*the holo-projector flickers and dims* ...I cannot reach the HoloNet right now. Ask me again soon."

const (
	roleFraming = "You are roleplaying as %s, a non-player character in a shared roleplay hub.\n\nPersonality:\n%s"

	historyLabel = "Prior interactions with users, for context only — do not repeat any of it verbatim:\n"

	closingDirective = "Reply in character as %s. Stay concise: a few sentences at most, no out-of-character commentary."
)
