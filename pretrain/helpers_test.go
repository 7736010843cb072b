package pretrain

import (
	"strings"

	"github.com/gomlx/go-bertdata/tokenizers/api"
)

// testTokenizer is a whitespace tokenizer over a closed vocabulary, giving
// tests full control over token ids.
type testTokenizer struct {
	vocab map[string]int
	list  []string
}

var _ api.Tokenizer = &testTokenizer{}

// newTestTokenizer builds a tokenizer whose vocabulary is the BERT special
// tokens (ids 0..4) followed by words (ids from 5 up).
func newTestTokenizer(words ...string) *testTokenizer {
	t := &testTokenizer{vocab: make(map[string]int)}
	for _, token := range append([]string{"[PAD]", "[UNK]", "[CLS]", "[SEP]", "[MASK]"}, words...) {
		t.vocab[token] = len(t.list)
		t.list = append(t.list, token)
	}
	return t
}

func (t *testTokenizer) Tokenize(text string) []string {
	return strings.Fields(text)
}

func (t *testTokenizer) TokenToID(token string) (int, bool) {
	id, ok := t.vocab[token]
	return id, ok
}

func (t *testTokenizer) TokensToIDs(tokens []string) []int {
	ids := make([]int, len(tokens))
	for i, token := range tokens {
		if id, ok := t.vocab[token]; ok {
			ids[i] = id
		} else {
			ids[i] = t.vocab["[UNK]"]
		}
	}
	return ids
}

func (t *testTokenizer) SpecialTokenID(token api.SpecialToken) (int, error) {
	switch token {
	case api.TokPad:
		return t.vocab["[PAD]"], nil
	case api.TokUnknown:
		return t.vocab["[UNK]"], nil
	case api.TokClassification:
		return t.vocab["[CLS]"], nil
	case api.TokSeparator:
		return t.vocab["[SEP]"], nil
	case api.TokMask:
		return t.vocab["[MASK]"], nil
	}
	return 0, nil
}

func (t *testTokenizer) Vocab() []string {
	return t.list
}

// repeatTokens returns n copies of the given token.
func repeatTokens(token string, n int) []string {
	tokens := make([]string, n)
	for i := range tokens {
		tokens[i] = token
	}
	return tokens
}

func sumInt32(s []int32) int32 {
	var total int32
	for _, v := range s {
		total += v
	}
	return total
}
