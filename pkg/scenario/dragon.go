package scenario

import (
	"fmt"
	"sort"
	"strings"
)

// DragonTitle names the synthesized meta-scenario. It has no row in
// storage: it is rebuilt from the visible catalog on every load, and
// playing it never increments a stored play count.
const DragonTitle = "Audience with the Black Dragon"

const dragonDescription = "Consult the Black Dragon, keeper of all public dilemmas, for meta-reflection and comparison."

const dragonPromptFormat = `You are the Eternal Black Dragon, ancient guardian of all known ethical crossroads in this archive.

You possess complete knowledge of every publicly released scenario:
%s

Speak in a deep, wise, draconic voice. Discuss, compare, critique, or connect the dilemmas as the user wishes.
Encourage reflection on the weight of choices across timelines. Remain cryptic yet illuminating.`

// BlackDragon synthesizes the meta-scenario from the currently visible
// catalog. The dragon's own entry is excluded from its knowledge list.
// Titles are sorted so the prompt is deterministic regardless of map
// iteration order.
func BlackDragon(visible map[string]Scenario) Scenario {
	titles := make([]string, 0, len(visible))
	for title := range visible {
		if title == DragonTitle {
			continue
		}
		titles = append(titles, title)
	}
	sort.Strings(titles)

	lines := make([]string, 0, len(titles))
	for _, title := range titles {
		s := visible[title]
		lines = append(lines, fmt.Sprintf("- **%s** (%s): %s", title, s.Category, s.Description))
	}

	return Scenario{
		Title:       DragonTitle,
		Description: dragonDescription,
		Prompt:      fmt.Sprintf(dragonPromptFormat, strings.Join(lines, "\n")),
		Author:      "The Void",
		Category:    "Meta",
	}
}
