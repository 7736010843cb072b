// Package wordpiece implements a BERT-style WordPiece tokenizer loaded from a
// plain vocab.txt file (one token per line, the line number is the token id).
//
// Tokenization follows the original BERT recipe: clean the text, optionally
// lowercase and strip accents, split on whitespace and punctuation, then
// greedily match the longest vocabulary subword with a "##" continuation
// prefix for non-initial pieces.
package wordpiece

import (
	"bufio"
	"os"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"

	"github.com/gomlx/go-bertdata/tokenizers/api"
)

// Canonical BERT special token strings.
const (
	PadToken  = "[PAD]"
	UnkToken  = "[UNK]"
	ClsToken  = "[CLS]"
	SepToken  = "[SEP]"
	MaskToken = "[MASK]"
)

const (
	continuingPrefix     = "##"
	maxInputCharsPerWord = 100
)

// Tokenizer implements api.Tokenizer backed by a WordPiece vocabulary.
type Tokenizer struct {
	vocab     map[string]int
	vocabList []string
	lowercase bool

	unkID  int
	padID  int
	clsID  int
	sepID  int
	maskID int
}

// Compile time assert that Tokenizer implements the tokenizer interfaces.
var (
	_ api.Tokenizer   = &Tokenizer{}
	_ api.VocabLister = &Tokenizer{}
)

// NewFromFile loads a WordPiece tokenizer from a vocab.txt file path.
func NewFromFile(vocabPath string, lowercase bool) (*Tokenizer, error) {
	f, err := os.Open(vocabPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open vocabulary file %q", vocabPath)
	}
	defer f.Close()

	var tokens []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		// Only trailing line-break trimming: some vocabularies contain tokens
		// that are themselves whitespace-adjacent.
		tokens = append(tokens, strings.TrimRight(scanner.Text(), "\r\n"))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read vocabulary file %q", vocabPath)
	}
	return New(tokens, lowercase)
}

// New creates a WordPiece tokenizer from an ordered token list; the position
// of each token in the list is its id.
func New(tokens []string, lowercase bool) (*Tokenizer, error) {
	if len(tokens) == 0 {
		return nil, errors.Errorf("empty vocabulary")
	}
	t := &Tokenizer{
		vocab:     make(map[string]int, len(tokens)),
		vocabList: tokens,
		lowercase: lowercase,
		unkID:     -1,
		padID:     -1,
		clsID:     -1,
		sepID:     -1,
		maskID:    -1,
	}
	for id, token := range tokens {
		if _, dup := t.vocab[token]; dup {
			return nil, errors.Errorf("duplicate token %q in vocabulary (ids %d and %d)", token, t.vocab[token], id)
		}
		t.vocab[token] = id
	}
	if id, ok := t.vocab[UnkToken]; ok {
		t.unkID = id
	}
	if id, ok := t.vocab[PadToken]; ok {
		t.padID = id
	}
	if id, ok := t.vocab[ClsToken]; ok {
		t.clsID = id
	}
	if id, ok := t.vocab[SepToken]; ok {
		t.sepID = id
	}
	if id, ok := t.vocab[MaskToken]; ok {
		t.maskID = id
	}
	if t.unkID < 0 {
		return nil, errors.Errorf("vocabulary has no %s token", UnkToken)
	}
	return t, nil
}

// Tokenize converts a line of text to WordPiece subword tokens.
func (t *Tokenizer) Tokenize(text string) []string {
	text = cleanText(text)
	if t.lowercase {
		text = stripAccents(norm.NFD.String(strings.ToLower(text)))
	}

	var tokens []string
	for _, word := range splitOnPunctuation(text) {
		tokens = append(tokens, t.wordPiece(word)...)
	}
	return tokens
}

// wordPiece tokenizes a single whitespace-free word by greedy longest-match.
// A word with no possible decomposition becomes a single [UNK].
func (t *Tokenizer) wordPiece(word string) []string {
	if word == "" {
		return nil
	}
	if len(word) > maxInputCharsPerWord {
		return []string{UnkToken}
	}

	var pieces []string
	start := 0
	for start < len(word) {
		end := len(word)
		found := false
		for start < end {
			piece := word[start:end]
			if start > 0 {
				piece = continuingPrefix + piece
			}
			if _, ok := t.vocab[piece]; ok {
				pieces = append(pieces, piece)
				found = true
				break
			}
			end--
		}
		if !found {
			return []string{UnkToken}
		}
		start = end
	}
	return pieces
}

// TokenToID returns the vocabulary id of a token, and whether it is known.
func (t *Tokenizer) TokenToID(token string) (int, bool) {
	id, ok := t.vocab[token]
	return id, ok
}

// TokensToIDs converts tokens to ids, mapping unknown tokens to the [UNK] id.
func (t *Tokenizer) TokensToIDs(tokens []string) []int {
	ids := make([]int, len(tokens))
	for i, token := range tokens {
		if id, ok := t.vocab[token]; ok {
			ids[i] = id
		} else {
			ids[i] = t.unkID
		}
	}
	return ids
}

// SpecialTokenID returns the id for the given special token.
func (t *Tokenizer) SpecialTokenID(token api.SpecialToken) (int, error) {
	var id int
	switch token {
	case api.TokUnknown:
		id = t.unkID
	case api.TokPad:
		id = t.padID
	case api.TokClassification:
		id = t.clsID
	case api.TokSeparator:
		id = t.sepID
	case api.TokMask:
		id = t.maskID
	default:
		return 0, errors.Errorf("unknown special token: %s (%d)", token, int(token))
	}
	if id < 0 {
		return 0, errors.Errorf("special token %s not found in vocabulary", token)
	}
	return id, nil
}

// Vocab returns the ordered vocabulary token list. The returned slice is
// shared and must not be modified.
func (t *Tokenizer) Vocab() []string {
	return t.vocabList
}

// VocabSize returns the size of the vocabulary.
func (t *Tokenizer) VocabSize() int {
	return len(t.vocabList)
}

// cleanText removes control characters and canonicalizes whitespace to ' '.
func cleanText(text string) string {
	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if r == 0 || r == 0xFFFD || isControl(r) {
			continue
		}
		if isWhitespace(r) {
			result.WriteRune(' ')
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// stripAccents removes non-spacing combining marks; input must already be
// NFD-decomposed.
func stripAccents(text string) string {
	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if !unicode.Is(unicode.Mn, r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// splitOnPunctuation splits text on whitespace, emitting each punctuation
// rune as its own word.
func splitOnPunctuation(text string) []string {
	var words []string
	var current strings.Builder
	for _, r := range text {
		switch {
		case isWhitespace(r):
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		case isPunctuation(r):
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
			words = append(words, string(r))
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}
	return words
}

func isWhitespace(r rune) bool {
	if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return unicode.IsControl(r)
}

func isPunctuation(r rune) bool {
	// ASCII punctuation ranges first, then the Unicode category.
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) ||
		(r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}
