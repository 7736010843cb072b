// Package sentencepiece adapts the SentencePiece tokenizer by Google to the
// api.Tokenizer interface, for corpora whose models ship a tokenizer.model
// SentencePiece proto instead of a WordPiece vocab.txt.
package sentencepiece

import (
	esentencepiece "github.com/eliben/go-sentencepiece"
	"github.com/pkg/errors"

	"github.com/gomlx/go-bertdata/tokenizers/api"
)

// Tokenizer implements api.Tokenizer backed by a SentencePiece processor.
type Tokenizer struct {
	Processor *esentencepiece.Processor
	Info      *esentencepiece.ModelInfo
}

// Compile time assert that Tokenizer implements api.Tokenizer.
var _ api.Tokenizer = &Tokenizer{}

// NewFromFile creates a SentencePiece tokenizer from a tokenizer.model file,
// which must be a SentencePiece Model proto.
func NewFromFile(modelPath string) (*Tokenizer, error) {
	proc, err := esentencepiece.NewProcessorFromPath(modelPath)
	if err != nil {
		return nil, errors.Wrapf(err, "can't create sentencepiece tokenizer from %q", modelPath)
	}
	return &Tokenizer{
		Processor: proc,
		Info:      proc.ModelInfo(),
	}, nil
}

// Tokenize returns the text split into SentencePiece piece strings.
func (p *Tokenizer) Tokenize(text string) []string {
	tokens := p.Processor.Encode(text)
	pieces := make([]string, len(tokens))
	for i, tok := range tokens {
		pieces[i] = tok.Text
	}
	return pieces
}

// TokenToID returns the id of a single piece, and whether the piece is a unit
// of the model's vocabulary. SentencePiece does not expose a direct
// piece-to-id lookup, so the piece is re-encoded and accepted only when it
// round-trips to exactly one token.
func (p *Tokenizer) TokenToID(token string) (int, bool) {
	tokens := p.Processor.Encode(token)
	if len(tokens) != 1 || tokens[0].Text != token {
		return 0, false
	}
	return tokens[0].ID, true
}

// TokensToIDs converts pieces to ids, mapping unresolvable pieces to the
// unknown id.
func (p *Tokenizer) TokensToIDs(tokens []string) []int {
	ids := make([]int, len(tokens))
	for i, token := range tokens {
		if id, ok := p.TokenToID(token); ok {
			ids[i] = id
		} else {
			ids[i] = p.Info.UnknownID
		}
	}
	return ids
}

// SpecialTokenID returns the id for the given special token, or an error if
// the model does not carry it. SentencePiece models have no CLS/SEP/MASK
// symbols; BOS/EOS stand in for the sequence-framing roles.
func (p *Tokenizer) SpecialTokenID(token api.SpecialToken) (int, error) {
	switch token {
	case api.TokUnknown:
		return p.Info.UnknownID, nil
	case api.TokPad:
		return p.Info.PadID, nil
	case api.TokClassification:
		return p.Info.BeginningOfSentenceID, nil
	case api.TokSeparator:
		return p.Info.EndOfSentenceID, nil
	default:
		return 0, errors.Errorf("special token %s (%d) not supported by sentencepiece models", token, int(token))
	}
}
