// Package api defines the Tokenizer API consumed by the corpus reader and the
// pretraining pipeline. It is a separate package so implementations
// (wordpiece, sentencepiece) and consumers can be imported independently.
package api

// Tokenizer converts raw text into subword tokens and tokens into integer ids.
//
// The pretraining pipeline operates on token strings first (truncation and
// masking rewrite tokens in place) and converts to ids only at the end, so
// the two halves of the mapping are exposed separately rather than as a
// single text-to-ids Encode.
type Tokenizer interface {
	// Tokenize splits a line of text into an ordered sequence of subword tokens.
	Tokenize(text string) []string

	// TokenToID returns the vocabulary id of a token, and whether it is known.
	TokenToID(token string) (int, bool)

	// TokensToIDs converts a token sequence to ids, mapping unknown tokens
	// to the unknown-token id.
	TokensToIDs(tokens []string) []int

	// SpecialTokenID returns the id for the given special token if registered,
	// or an error if not.
	SpecialTokenID(token SpecialToken) (int, error)
}

// VocabLister is implemented by tokenizers that can enumerate their
// vocabulary. The pretraining masker draws uniform-random replacement words
// from such a list.
type VocabLister interface {
	// Vocab returns the vocabulary as an ordered, read-only token list.
	Vocab() []string
}

// SpecialToken is an enum of commonly used special tokens.
type SpecialToken int

const (
	TokUnknown SpecialToken = iota
	TokPad
	TokClassification
	TokSeparator
	TokMask
	TokSpecialTokensCount
)

// String implements fmt.Stringer.
func (t SpecialToken) String() string {
	switch t {
	case TokUnknown:
		return "unknown"
	case TokPad:
		return "pad"
	case TokClassification:
		return "classification"
	case TokSeparator:
		return "separator"
	case TokMask:
		return "mask"
	}
	return "invalid"
}
