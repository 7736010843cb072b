package pretrain

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/gomlx/go-bertdata/tokenizers/api"
)

// Special token strings the masker inserts. The tokenizer must resolve them
// to stable ids; NewMasker checks this at construction.
const (
	clsToken  = "[CLS]"
	sepToken  = "[SEP]"
	maskToken = "[MASK]"
)

// Masker is the pipeline stage that turns a raw sentence pair into the seven
// fixed-width training fields: joint truncation, special-token assembly,
// masked-position selection, the 80/10/10 mask/random/keep outcomes, token
// indexing and zero padding.
//
// The masker owns no mutable state across calls besides its random source;
// the masking vocabulary is read-only and shared.
type Masker struct {
	cfg   Config
	tok   api.Tokenizer
	vocab []string // replacement candidates for the random-word outcome
	rng   *rand.Rand
}

// Compile time assert that Masker is a pipeline Stage.
var _ Stage = &Masker{}

// NewMasker creates the masking stage. vocab is the list of replacement
// subwords for the random-word outcome; rng is the injected random source all
// masking draws come from.
func NewMasker(tok api.Tokenizer, vocab []string, cfg Config, rng *rand.Rand) (*Masker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid masker configuration")
	}
	if len(vocab) == 0 {
		return nil, errors.Errorf("empty masking vocabulary")
	}
	if rng == nil {
		return nil, errors.Errorf("masker requires an explicit random source")
	}
	for _, special := range []string{clsToken, sepToken, maskToken} {
		if _, ok := tok.TokenToID(special); !ok {
			return nil, errors.Errorf("tokenizer cannot resolve special token %q", special)
		}
	}
	return &Masker{cfg: cfg, tok: tok, vocab: vocab, rng: rng}, nil
}

// Apply transforms a raw sentence-pair instance into its fixed-width form.
func (m *Masker) Apply(inst Instance) Instance {
	// Reserve 3 positions for [CLS] and the two [SEP] tokens.
	tokensA, tokensB := truncatePair(inst.TokensA, inst.TokensB, m.cfg.MaxLen-3)

	tokens := make([]string, 0, len(tokensA)+len(tokensB)+3)
	tokens = append(tokens, clsToken)
	tokens = append(tokens, tokensA...)
	tokens = append(tokens, sepToken)
	tokens = append(tokens, tokensB...)
	tokens = append(tokens, sepToken)

	segmentIDs := make([]int32, len(tokens))
	for i := len(tokensA) + 2; i < len(tokens); i++ {
		segmentIDs[i] = 1
	}
	inputMask := make([]int32, len(tokens))
	for i := range inputMask {
		inputMask[i] = 1
	}

	// The number of predictions is sometimes less than MaxPred when the
	// sequence is short, but at least one position is masked when any
	// candidate exists.
	nPred := min(m.cfg.MaxPred, max(1, int(math.Round(float64(len(tokens))*m.cfg.MaskProb))))

	// Candidate positions: everything except [CLS] and [SEP].
	candPos := make([]int, 0, len(tokens))
	for i, token := range tokens {
		if token != clsToken && token != sepToken {
			candPos = append(candPos, i)
		}
	}
	m.rng.Shuffle(len(candPos), func(i, j int) {
		candPos[i], candPos[j] = candPos[j], candPos[i]
	})
	if nPred > len(candPos) {
		// Degenerate spans can leave fewer candidates than the floor asks for.
		nPred = len(candPos)
	}

	maskedTokens := make([]string, 0, nPred)
	maskedPos := make([]int32, 0, nPred)
	for _, pos := range candPos[:nPred] {
		// Record the original token before any mutation: it is the
		// supervision target regardless of the outcome below.
		maskedTokens = append(maskedTokens, tokens[pos])
		maskedPos = append(maskedPos, int32(pos))
		if m.rng.Float64() < 0.8 { // 80%: mask placeholder
			tokens[pos] = maskToken
		} else if m.rng.Float64() < 0.5 { // 10%: random vocabulary word
			tokens[pos] = m.vocab[m.rng.Intn(len(m.vocab))]
		}
		// Remaining 10%: keep the original token in place.
	}
	maskedWeights := make([]int32, nPred)
	for i := range maskedWeights {
		maskedWeights[i] = 1
	}

	out := Instance{
		IsNext:        inst.IsNext,
		InputIDs:      toInt32(m.tok.TokensToIDs(tokens)),
		SegmentIDs:    segmentIDs,
		InputMask:     inputMask,
		MaskedIDs:     toInt32(m.tok.TokensToIDs(maskedTokens)),
		MaskedPos:     maskedPos,
		MaskedWeights: maskedWeights,
	}
	out.InputIDs = padTo(out.InputIDs, m.cfg.MaxLen)
	out.SegmentIDs = padTo(out.SegmentIDs, m.cfg.MaxLen)
	out.InputMask = padTo(out.InputMask, m.cfg.MaxLen)
	out.MaskedIDs = padTo(out.MaskedIDs, m.cfg.MaxPred)
	out.MaskedPos = padTo(out.MaskedPos, m.cfg.MaxPred)
	out.MaskedWeights = padTo(out.MaskedWeights, m.cfg.MaxPred)
	return out
}

// truncatePair jointly truncates a/b until their combined length fits maxLen,
// removing one token at a time from the end of whichever span is longer; on
// ties the second span loses. Already-fitting pairs come back unchanged, so
// the operation is idempotent.
func truncatePair(a, b []string, maxLen int) ([]string, []string) {
	for len(a)+len(b) > maxLen {
		if len(a) > len(b) {
			a = a[:len(a)-1]
		} else {
			b = b[:len(b)-1]
		}
	}
	return a, b
}

// padTo right-pads s with zeros to exactly width entries.
func padTo(s []int32, width int) []int32 {
	for len(s) < width {
		s = append(s, 0)
	}
	return s
}

func toInt32(ids []int) []int32 {
	out := make([]int32, len(ids))
	for i, id := range ids {
		out[i] = int32(id)
	}
	return out
}
