package pretrain

import (
	"math/rand"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gomlx/go-bertdata/corpus"
)

// Loader samples sentence pairs from a corpus and emits fixed-shape training
// batches: a lazy, finite, non-restartable stream.
//
// Each batch slot draws a span-length target (short with probability
// ShortSamplingProb, MaxLen/2 otherwise) and a fair-coin next/random label,
// reads the first span at the cursor within a single document, reads the
// second span either right after it or at a uniformly random corpus line, and
// pushes the pair through the pipeline stages in order. The cursor advances
// by exactly one line per slot regardless of how many lines the reads
// consumed, so successive slots re-scan the corpus from near-contiguous
// start points. Reaching the end of the corpus terminates the stream
// permanently; partial batches are never emitted.
//
// A Loader is single-goroutine state: it owns its cursor and random source.
// The corpus itself is read-only and may back any number of independent
// Loaders.
type Loader struct {
	corpus corpus.Corpus
	reader *corpus.TokenReader
	cfg    Config
	stages []Stage
	rng    *rand.Rand

	now     int // monotonic line cursor, never reset
	done    bool
	batches int
}

// NewLoader creates a batch loader over the corpus. tokenize converts one
// non-blank line into subword tokens; stages are applied to every sampled
// pair in order; rng is the injected random source all sampling draws come
// from.
func NewLoader(c corpus.Corpus, tokenize corpus.TokenizeFunc, cfg Config, stages []Stage, rng *rand.Rand) (*Loader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid loader configuration")
	}
	if c.Len() == 0 {
		return nil, errors.Errorf("corpus is empty")
	}
	if tokenize == nil {
		return nil, errors.Errorf("loader requires a tokenize function")
	}
	if rng == nil {
		return nil, errors.Errorf("loader requires an explicit random source")
	}
	return &Loader{
		corpus: c,
		reader: corpus.NewTokenReader(c, tokenize),
		cfg:    cfg,
		stages: stages,
		rng:    rng,
	}, nil
}

// Next assembles and returns the next batch. The second result is false once
// the corpus is exhausted; from then on every call returns false. Exhaustion
// is the normal end of the stream, not an error.
func (l *Loader) Next() (*Batch, bool) {
	if l.done {
		return nil, false
	}
	instances := make([]Instance, 0, l.cfg.BatchSize)
	for len(instances) < l.cfg.BatchSize {
		inst, ok := l.sample()
		if !ok {
			l.done = true
			klog.V(1).Infof("loader: corpus exhausted after %d batches (cursor %d of %d lines)",
				l.batches, l.now, l.corpus.Len())
			return nil, false
		}
		instances = append(instances, inst)
	}
	l.batches++
	return assembleBatch(instances), true
}

// sample fills one batch slot, advancing the cursor by one line.
func (l *Loader) sample() (Instance, bool) {
	// Sometimes sample a short sequence to match between train and test
	// length distributions.
	targetLen := l.cfg.MaxLen / 2
	if l.rng.Float64() < l.cfg.ShortSamplingProb {
		targetLen = 1 + l.rng.Intn(targetLen)
	}

	isNext := l.rng.Float64() < 0.5

	tokensA, ok := l.reader.Read(l.now, targetLen, true)
	if !ok {
		return Instance{}, false
	}

	// The random index is unconditioned on the cursor: it may legitimately
	// land right after tokensA, so the "random" label is structurally, not
	// semantically, guaranteed.
	nextIdx := l.now + 1
	if !isNext {
		nextIdx = l.rng.Intn(l.corpus.Len())
	}
	tokensB, ok := l.reader.Read(nextIdx, targetLen, false)

	// One line per slot, independent of how many lines the reads consumed.
	l.now++

	if !ok {
		return Instance{}, false
	}

	inst := Instance{IsNext: isNext, TokensA: tokensA, TokensB: tokensB}
	for _, stage := range l.stages {
		inst = stage.Apply(inst)
	}
	return inst, true
}

// Cursor returns the current corpus line cursor. It only ever grows.
func (l *Loader) Cursor() int {
	return l.now
}
