// Package textfilter softens profanity in NPC replies for rooms with a
// family-friendly content rating. Filtering is replacement-based rather
// than rejection-based: the reply still lands in the log, with flagged
// words swapped for tamer alternatives.
package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// replacements maps each filtered word to its substitute. Words with no
// acceptable substitute are blanked to [censored].
var replacements = map[string]string{
	"fuck":         "fudge",
	"shit":         "shoot",
	"damn":         "dang",
	"hell":         "heck",
	"ass":          "butt",
	"bitch":        "jerk",
	"bastard":      "jerk",
	"crap":         "crud",
	"piss":         "ticked",
	"cock":         "[censored]",
	"dick":         "jerk",
	"pussy":        "[censored]",
	"tits":         "[censored]",
	"whore":        "[censored]",
	"slut":         "[censored]",
	"fag":          "[censored]",
	"retard":       "[censored]",
	"nigger":       "[censored]",
	"nigga":        "[censored]",
	"motherfucker": "mother-trucker",
	"goddamn":      "gosh-dang",
	"asshole":      "jerk",
	"dumbass":      "dummy",
	"jackass":      "jerk",
	"bullshit":     "baloney",
	"horseshit":    "nonsense",
	"dipshit":      "dummy",
	"shithead":     "jerk",
	"dickhead":     "jerk",
	"prick":        "jerk",
	"douchebag":    "jerk",
}

// ProfanityFilter replaces profanity with family-friendly alternatives.
// Construct once and reuse; the word patterns are compiled up front.
type ProfanityFilter struct {
	regexes map[string]*regexp.Regexp
}

func NewProfanityFilter() *ProfanityFilter {
	pf := &ProfanityFilter{
		regexes: make(map[string]*regexp.Regexp, len(replacements)),
	}
	for word := range replacements {
		// Optional trailing s catches the common plural form
		pattern := `(?i)\b` + regexp.QuoteMeta(word) + `s?\b`
		pf.regexes[word] = regexp.MustCompile(pattern)
	}
	return pf
}

// FilterText returns text with each flagged word replaced, preserving
// the case pattern and pluralization of the original match.
func (pf *ProfanityFilter) FilterText(text string) string {
	result := text
	for word, replacement := range replacements {
		result = pf.regexes[word].ReplaceAllStringFunc(result, func(match string) string {
			substitute := replacement
			if len(match) > len(word) {
				substitute += "s"
			}
			return preserveCase(match, substitute)
		})
	}
	return result
}

// ContainsProfanity reports whether text matches any flagged word.
func (pf *ProfanityFilter) ContainsProfanity(text string) bool {
	for _, regex := range pf.regexes {
		if regex.MatchString(text) {
			return true
		}
	}
	return false
}

// ShouldFilterContent reports whether a room's content rating requires
// filtering. Unknown or empty ratings are left unfiltered.
func ShouldFilterContent(rating string) bool {
	switch strings.ToUpper(strings.TrimSpace(rating)) {
	case "G", "PG", "PG13", "PG-13":
		return true
	default:
		return false
	}
}

// preserveCase applies the case pattern of the matched word to its
// replacement: all-caps stays all-caps, title case stays title case.
func preserveCase(original, replacement string) string {
	if original == "" {
		return replacement
	}

	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}
	if strings.ToLower(original) == original {
		return strings.ToLower(replacement)
	}

	titleCaser := cases.Title(language.English)
	if titleCaser.String(strings.ToLower(original)) == original {
		return titleCaser.String(replacement)
	}

	// Mixed case: mirror the original character by character
	originalRunes := []rune(original)
	result := make([]rune, 0, len(replacement))
	for i, r := range replacement {
		if i < len(originalRunes) && unicode.IsUpper(originalRunes[i]) {
			result = append(result, unicode.ToUpper(r))
		} else {
			result = append(result, unicode.ToLower(r))
		}
	}
	return string(result)
}
