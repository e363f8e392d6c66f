package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordFilter(t *testing.T) {
	filter := NewWordFilter([]string{"darn", "heck"})

	assert.True(t, filter.Matches("Darn whale"))
	assert.True(t, filter.Matches("what the HECK"))
	assert.False(t, filter.Matches("darnell saw it"), "only whole words match")
	assert.False(t, filter.Matches("off the point"))

	assert.False(t, NewWordFilter(nil).Matches("anything"))
}

func TestLoadWordFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.yaml")
	require.NoError(t, os.WriteFile(path, []byte("words:\n  - barnacle\n  - bilge\n"), 0o644))

	filter, err := LoadWordFilter(path)
	require.NoError(t, err)
	assert.True(t, filter.Matches("you bilge rat"))
	assert.True(t, filter.Matches("shit"), "built-in words stay in the list")

	_, err = LoadWordFilter(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	builtin, err := LoadWordFilter("")
	require.NoError(t, err)
	assert.False(t, builtin.Matches("humpback off the pier"))
}

func TestWordListGenerator(t *testing.T) {
	var gen WordListGenerator
	for i := 0; i < 200; i++ {
		word := gen.RandomWord(5)
		assert.NotEmpty(t, word)
		assert.LessOrEqual(t, len(word), 5)
		assert.Equal(t, IntentAdminConfirmation, Classify(word, FlowIdle, true),
			"keyword %q must not collide with another command", word)
	}
	assert.Len(t, gen.RandomWord(2), 2)
}
