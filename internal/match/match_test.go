package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventhubx/eventhubx/internal/record"
)

func TestSubstring_TitleContainsCandidateName(t *testing.T) {
	m := Substring{}
	candidates := []record.Record{
		{"name": "LEAP", "status": "active"},
		{"name": "DeepFest", "status": "done"},
	}

	got, ok := m.Match("LEAP 2026", candidates)

	require.True(t, ok)
	assert.Equal(t, "LEAP", got.Str("name", ""))
}

func TestSubstring_CandidateNameContainsTitle(t *testing.T) {
	m := Substring{}
	candidates := []record.Record{
		{"name": "DeepFest Riyadh Edition"},
	}

	_, ok := m.Match("DeepFest", candidates)
	assert.True(t, ok)
}

func TestSubstring_CaseInsensitive(t *testing.T) {
	m := Substring{}
	candidates := []record.Record{{"name": "leap"}}

	_, ok := m.Match("LEAP 2026", candidates)
	assert.True(t, ok)
}

func TestSubstring_FirstMatchWins(t *testing.T) {
	m := Substring{}
	candidates := []record.Record{
		{"name": "LEAP", "id": "first"},
		{"name": "LEAP 2026", "id": "exact"},
	}

	got, ok := m.Match("LEAP 2026", candidates)

	require.True(t, ok)
	assert.Equal(t, "first", got.Str("id", ""),
		"insertion order wins over match quality")
}

func TestSubstring_NoMatch(t *testing.T) {
	m := Substring{}
	candidates := []record.Record{
		{"name": "GITEX"},
		{"name": "Money Expo"},
	}

	got, ok := m.Match("DeepFest", candidates)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestSubstring_EmptyTitleNeverMatches(t *testing.T) {
	m := Substring{}
	candidates := []record.Record{{"name": "LEAP"}}

	_, ok := m.Match("", candidates)
	assert.False(t, ok)

	_, ok = m.Match("   ", candidates)
	assert.False(t, ok)
}

func TestSubstring_SkipsCandidatesWithoutName(t *testing.T) {
	m := Substring{}
	candidates := []record.Record{
		{"status": "no name field"},
		{"name": ""},
		{"name": "LEAP"},
	}

	got, ok := m.Match("LEAP", candidates)
	require.True(t, ok)
	assert.Equal(t, "LEAP", got.Str("name", ""))
}

func TestSubstring_CustomField(t *testing.T) {
	m := Substring{Field: "title"}
	candidates := []record.Record{
		{"title": "LEAP", "name": "ignored"},
	}

	_, ok := m.Match("LEAP 2026", candidates)
	assert.True(t, ok)
}
