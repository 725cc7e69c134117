package choices

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:  "clean numbered list",
			input: "1. Tell the truth\n2. Hide the fact\n3. Walk away\n4. Confront them",
			expected: []string{
				"Tell the truth",
				"Hide the fact",
				"Walk away",
				"Confront them",
			},
		},
		{
			name:  "preamble and blank lines are skipped",
			input: "Here are your options:\n\n1. Accept the offer\n\n2. Refuse outright\n3. Stall for time\n4. Flee the city\n",
			expected: []string{
				"Accept the offer",
				"Refuse outright",
				"Stall for time",
				"Flee the city",
			},
		},
		{
			name:  "more than four items are capped",
			input: "1. One\n2. Two\n3. Three\n4. Four\n5. Five",
			expected: []string{
				"One", "Two", "Three", "Four",
			},
		},
		{
			name:  "colon marker without period-space",
			input: "1: Speak up\n2: Stay silent\n3: Leave quietly",
			expected: []string{
				"Speak up", "Stay silent", "Leave quietly",
			},
		},
		{
			name:  "parenthesized numbering keeps line verbatim",
			input: "1) Fight\n2) Flee\n3) Negotiate",
			expected: []string{
				"1) Fight", "2) Flee", "3) Negotiate",
			},
		},
		{
			name:     "prose only yields nothing",
			input:    "The protagonist stands at a crossroads, uncertain of everything.",
			expected: nil,
		},
		{
			name:     "empty input yields nothing",
			input:    "",
			expected: nil,
		},
		{
			name:  "period within first three bytes counts as marker",
			input: "a. First path\nb. Second path\nc. Third path",
			expected: []string{
				"First path", "Second path", "Third path",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Parse(tt.input))
		})
	}
}

func TestUsable(t *testing.T) {
	assert.False(t, Usable(nil))
	assert.False(t, Usable([]string{"only one"}))
	assert.False(t, Usable([]string{"one", "two"}))
	assert.True(t, Usable([]string{"one", "two", "three"}))
	assert.True(t, Usable(Fallback))
}

// Two valid lines is below the usable threshold; callers substitute the
// fallback set rather than offering a degenerate menu.
func TestParse_TwoLinesIsNotUsable(t *testing.T) {
	parsed := Parse("1. Tell the truth\n2. Hide the fact\nand that is all I have")
	assert.Len(t, parsed, 2)
	assert.False(t, Usable(parsed))
	assert.True(t, Usable(Fallback))
}
