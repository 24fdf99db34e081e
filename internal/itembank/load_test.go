package itembank

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_Valid(t *testing.T) {
	b, err := Seed()
	require.NoError(t, err)

	for _, s := range AllSections() {
		assert.GreaterOrEqual(t, b.SectionSize(s), 10, "section %s", s)
	}

	it, err := b.GetItem("math_foundation_1")
	require.NoError(t, err)
	assert.Equal(t, SectionCoreMath, it.Section)
	assert.Len(t, it.Hints, 3)
	assert.True(t, it.Score("5"))
}

func TestLoadYAML_RoundTripsThroughMarshal(t *testing.T) {
	b, err := New("v2.1.0", testItems())
	require.NoError(t, err)

	data, err := MarshalYAML(b)
	require.NoError(t, err)

	got, err := LoadYAML(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, b.Version(), got.Version())
	assert.Equal(t, b.AllItems(), got.AllItems())
}

func TestLoadYAML_RejectsUnknownFields(t *testing.T) {
	src := `version: v1.0.0
items:
  - id: a
    section: core_math
    params: {a: 1, b: 0, c: 0}
    colour: blue
`
	_, err := LoadYAML(strings.NewReader(src))
	assert.Error(t, err)
}

func TestLoadLegacyYAML_AppliesDefaultCalibration(t *testing.T) {
	src := `- id: q1
  subject: calculus_basics
  difficulty: 4
  question_text: "d/dx x^2?"
  answer: "2x"
- id: q2
  subject: art_history
  difficulty: 1
  question_text: "Who painted the Mona Lisa?"
  answer: "da vinci"
`
	b, err := LoadLegacyYAML("v1.0.1", strings.NewReader(src))
	require.NoError(t, err)

	q1, err := b.GetItem("q1")
	require.NoError(t, err)
	assert.Equal(t, SectionCoreMath, q1.Section)
	assert.InDelta(t, 1.5, q1.Params.Difficulty, 1e-9)
	assert.Equal(t, LegacyDiscrimination, q1.Params.Discrimination)
	assert.Equal(t, LegacyGuessing, q1.Params.Guessing)

	q2, err := b.GetItem("q2")
	require.NoError(t, err)
	assert.Equal(t, SectionAppliedReasoning, q2.Section)
	assert.InDelta(t, -1.5, q2.Params.Difficulty, 1e-9)
}
