package moderation

import (
	"embed"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/errors"
)

//go:embed testdata/dictionaries
var dictionariesFS embed.FS

//go:embed testdata/empty
var emptyFS embed.FS

func TestCensoredLoader_LoadAll(t *testing.T) {
	req := require.New(t)
	loader := NewCensoredLoader(dictionariesFS)

	// When loading a directory with two dictionaries
	data, err := loader.LoadAll("testdata/dictionaries")
	req.NoError(err)

	// Then comments and blank lines are skipped, duplicates collapse
	req.ElementsMatch([]string{"badger", "snake", "couleuvre"}, data.Words)
	req.ElementsMatch([]string{"en", "fr"}, data.Languages)
}

func TestCensoredLoader_EmptyDictionaries(t *testing.T) {
	req := require.New(t)
	loader := NewCensoredLoader(emptyFS)

	// A directory with only comments yields no usable words
	_, err := loader.LoadAll("testdata/empty")
	req.ErrorIs(err, errors.ErrEmptyWords)
}

func TestLoadDefaultWords(t *testing.T) {
	req := require.New(t)

	data, err := LoadDefaultWords()
	req.NoError(err)
	req.NotEmpty(data.Words)
	req.ElementsMatch([]string{"en", "fr"}, data.Languages)
}
