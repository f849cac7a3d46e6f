package textindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchOnEmptyIndexReturnsEmpty(t *testing.T) {
	idx := New()
	assert.Empty(t, idx.Search("foo", 5))
}

func TestSearchRanksExactTermMatchHighest(t *testing.T) {
	idx := New()
	idx.AddDocument("a", "parse the configuration file and validate settings")
	idx.AddDocument("b", "render the dashboard widgets for the homepage")

	results := idx.Search("configuration validate", 5)
	require.NotEmpty(t, results)
	assert.Equal(t, "a", results[0].ID)
}

func TestAddDocumentReplacesPriorEntry(t *testing.T) {
	idx := New()
	idx.AddDocument("a", "apples and oranges")
	idx.AddDocument("a", "bananas and grapes")

	results := idx.Search("apples", 5)
	assert.Empty(t, results)

	results = idx.Search("bananas", 5)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
}

func TestRemoveDocument(t *testing.T) {
	idx := New()
	idx.AddDocument("a", "apples and oranges")
	idx.RemoveDocument("a")
	assert.Empty(t, idx.Search("apples", 5))
}

func TestTokenizeDropsStopwordsAndShortTokens(t *testing.T) {
	tokens := Tokenize("The quick fox is at a gate")
	assert.NotContains(t, tokens, "the")
	assert.NotContains(t, tokens, "is")
	assert.NotContains(t, tokens, "at")
	assert.NotContains(t, tokens, "a")
	assert.Contains(t, tokens, "quick")
}
