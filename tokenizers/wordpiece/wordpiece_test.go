package wordpiece

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/go-bertdata/tokenizers/api"
)

// testVocab is a small BERT-style vocabulary. Ids are the list positions.
var testVocab = []string{
	"[PAD]",  // 0
	"[UNK]",  // 1
	"[CLS]",  // 2
	"[SEP]",  // 3
	"[MASK]", // 4
	"hello",  // 5
	"world",  // 6
	"test",   // 7
	"##ing",  // 8
	"##ed",   // 9
	"the",    // 10
	"is",     // 11
	",",      // 12
	".",      // 13
	"un",     // 14
	"##want", // 15
}

func newTestTokenizer(t *testing.T) *Tokenizer {
	tok, err := New(testVocab, true)
	require.NoError(t, err)
	return tok
}

func TestTokenize(t *testing.T) {
	tok := newTestTokenizer(t)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"simple words", "hello world", []string{"hello", "world"}},
		{"lowercasing", "Hello WORLD", []string{"hello", "world"}},
		{"greedy subwords", "testing tested", []string{"test", "##ing", "test", "##ed"}},
		{"punctuation split", "hello, world.", []string{"hello", ",", "world", "."}},
		{"unknown word", "hello xyzzy", []string{"hello", "[UNK]"}},
		{"partial decomposition fails whole word", "unstoppable", []string{"[UNK]"}},
		{"accents stripped", "héllo", []string{"hello"}},
		{"whitespace collapsed", "hello \t world", []string{"hello", "world"}},
		{"empty", "", nil},
		{"blank", "   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tok.Tokenize(tt.text))
		})
	}
}

func TestTokensToIDs(t *testing.T) {
	tok := newTestTokenizer(t)
	ids := tok.TokensToIDs([]string{"hello", "world", "##ing", "nope"})
	assert.Equal(t, []int{5, 6, 8, 1}, ids) // unknown maps to [UNK]
}

func TestTokenToID(t *testing.T) {
	tok := newTestTokenizer(t)
	id, ok := tok.TokenToID("test")
	require.True(t, ok)
	assert.Equal(t, 7, id)
	_, ok = tok.TokenToID("missing")
	assert.False(t, ok)
}

func TestSpecialTokenIDs(t *testing.T) {
	tok := newTestTokenizer(t)
	for _, tt := range []struct {
		special api.SpecialToken
		want    int
	}{
		{api.TokPad, 0},
		{api.TokUnknown, 1},
		{api.TokClassification, 2},
		{api.TokSeparator, 3},
		{api.TokMask, 4},
	} {
		id, err := tok.SpecialTokenID(tt.special)
		require.NoError(t, err)
		assert.Equal(t, tt.want, id, "special token %s", tt.special)
	}
}

func TestSpecialTokenMissing(t *testing.T) {
	tok, err := New([]string{"[UNK]", "a", "b"}, false)
	require.NoError(t, err)
	_, err = tok.SpecialTokenID(api.TokMask)
	assert.Error(t, err)
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil, true)
	assert.Error(t, err, "empty vocabulary must be rejected")

	_, err = New([]string{"a", "a"}, true)
	assert.Error(t, err, "duplicate tokens must be rejected")

	_, err = New([]string{"a", "b"}, true)
	assert.Error(t, err, "vocabulary without [UNK] must be rejected")
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	vocabPath := filepath.Join(dir, "vocab.txt")
	content := "[PAD]\n[UNK]\nhello\nworld\n"
	require.NoError(t, os.WriteFile(vocabPath, []byte(content), 0o644))

	tok, err := NewFromFile(vocabPath, true)
	require.NoError(t, err)
	assert.Equal(t, 4, tok.VocabSize())
	assert.Equal(t, []string{"hello", "world"}, tok.Tokenize("Hello World"))
	assert.Equal(t, []string{"[PAD]", "[UNK]", "hello", "world"}, tok.Vocab())
}

func TestNewFromFileMissing(t *testing.T) {
	_, err := NewFromFile(filepath.Join(t.TempDir(), "nope.txt"), true)
	assert.Error(t, err)
}
