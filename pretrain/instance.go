// Package pretrain builds masked-LM + next-sentence-prediction training
// batches from a line-oriented corpus.
//
// A Loader samples sentence pairs from the corpus (alternating true-next and
// random pairings), pushes each pair through an ordered list of pipeline
// stages, and groups the results into fixed-shape batches. The only stage
// shipped here is the Masker, which truncates, assembles, masks, indexes and
// pads a sampled pair into the seven fixed-width training fields.
package pretrain

// Instance is one training example flowing through the pipeline.
//
// The Loader fills the raw sentence-pair fields; each Stage consumes the
// instance and returns its replacement. After the Masker ran, the fixed-width
// fields are populated: InputIDs, SegmentIDs and InputMask have exactly
// Config.MaxLen entries, and MaskedIDs, MaskedPos and MaskedWeights have
// exactly Config.MaxPred entries, zero-padded past the real content.
type Instance struct {
	// IsNext is true when TokensB was read starting at the line immediately
	// after TokensA's read region, false when its start line was drawn
	// uniformly at random over the whole corpus.
	IsNext bool

	// TokensA and TokensB are the raw sampled spans. The Masker truncates
	// them jointly and consumes them; they are not carried past it.
	TokensA []string
	TokensB []string

	InputIDs      []int32
	SegmentIDs    []int32
	InputMask     []int32
	MaskedIDs     []int32
	MaskedPos     []int32
	MaskedWeights []int32
}

// Stage is one step of the instance pipeline. Stages are pure with respect to
// shared state: Apply fully replaces the instance value and stages communicate
// only through it.
type Stage interface {
	Apply(inst Instance) Instance
}
