package faq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewDefaultIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestSearch_FindsFeatureEntry(t *testing.T) {
	idx := newTestIndex(t)

	results, err := idx.Search("what can you do", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "features", results[0].Entry.ID)
}

func TestSearch_TypoTolerant(t *testing.T) {
	idx := newTestIndex(t)

	results, err := idx.Search("pricng", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "pricing", results[0].Entry.ID)
}

func TestAnswer_LanguageSelection(t *testing.T) {
	idx := newTestIndex(t)

	en, ok := idx.Answer("how do i fix a mistake", false)
	require.True(t, ok)
	assert.Contains(t, en, "10 minutes")

	bn, ok := idx.Answer("how do i fix a mistake", true)
	require.True(t, ok)
	assert.Contains(t, bn, "মিনিটের")
}

func TestAnswer_NoMatch(t *testing.T) {
	idx := newTestIndex(t)

	_, ok := idx.Answer("zzzz qqqq xxxx", false)
	assert.False(t, ok)
}

func TestAdd_CustomEntry(t *testing.T) {
	idx, err := NewIndex()
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Add(Entry{
		ID:       "export",
		Topic:    "export",
		Question: "can i export my expenses csv excel",
		AnswerEN: "Yes, ask for an export and you get a CSV or spreadsheet.",
		AnswerBN: "হ্যাঁ, এক্সপোর্ট চাইলে CSV বা স্প্রেডশিট পাবেন।",
	}))

	answer, ok := idx.Answer("export csv", false)
	require.True(t, ok)
	assert.Contains(t, answer, "CSV")
}
