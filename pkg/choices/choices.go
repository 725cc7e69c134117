// Package choices extracts a bounded menu of options from free-form
// model output. The generation instruction asks for a numbered list, but
// the provider contract gives no structural guarantee, so extraction is a
// line-oriented heuristic. If the provider contract is ever upgraded to
// structured output, this package is the only thing that needs to change.
package choices

import (
	"strings"
	"unicode"
)

// MaxChoices is the number of options offered to the player.
const MaxChoices = 4

// MinChoices is the smallest parse result that is still usable. Anything
// below this is treated as a generation failure by callers.
const MinChoices = 3

// Fallback is the generic option set used when parsing fails. Callers
// must never present fewer than MinChoices options to the player.
var Fallback = []string{
	"Stand your ground",
	"Seek a compromise",
	"Walk away",
	"Forge a new path",
}

// Parse extracts up to MaxChoices option texts from raw model output.
//
// A line survives if it is non-empty after trimming and looks like a list
// item: it starts with a digit, or contains a period within its first
// three bytes. The leading marker is stripped by taking the text after
// the first ". " if present, otherwise the text after the first ":",
// otherwise the line is used verbatim.
func Parse(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !isListItem(line) {
			continue
		}
		out = append(out, stripMarker(line))
		if len(out) == MaxChoices {
			break
		}
	}
	return out
}

// Usable reports whether a parse result is large enough to present.
func Usable(parsed []string) bool {
	return len(parsed) >= MinChoices
}

func isListItem(line string) bool {
	if unicode.IsDigit(rune(line[0])) {
		return true
	}
	head := line
	if len(head) > 3 {
		head = head[:3]
	}
	return strings.Contains(head, ".")
}

func stripMarker(line string) string {
	if _, after, found := strings.Cut(line, ". "); found {
		return after
	}
	if _, after, found := strings.Cut(line, ":"); found {
		return strings.TrimSpace(after)
	}
	return line
}
