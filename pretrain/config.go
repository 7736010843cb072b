package pretrain

import "github.com/pkg/errors"

// Config holds the sampling and masking parameters shared by the Loader and
// the Masker stage. Misconfiguration is rejected at construction time, not
// discovered mid-stream.
type Config struct {
	// BatchSize is the number of instances per emitted batch.
	BatchSize int

	// MaxLen is the fixed width of the assembled token sequence, including
	// the [CLS] and two [SEP] positions.
	MaxLen int

	// MaxPred is the fixed width of the masked-prediction fields; the number
	// of real masked positions per instance never exceeds it.
	MaxPred int

	// MaskProb is the fraction of the assembled sequence selected for the
	// prediction objective.
	MaskProb float64

	// ShortSamplingProb is the probability of drawing a short span-length
	// target instead of MaxLen/2, so the model sees test-like length
	// distributions during training.
	ShortSamplingProb float64
}

// Validate checks the range sanity of all parameters.
func (c Config) Validate() error {
	if c.BatchSize <= 0 {
		return errors.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.MaxLen <= 3 {
		return errors.Errorf("max length must exceed 3 (one [CLS] plus two [SEP] positions), got %d", c.MaxLen)
	}
	if c.MaxPred <= 0 {
		return errors.Errorf("max predictions must be positive, got %d", c.MaxPred)
	}
	if c.MaxPred > c.MaxLen {
		return errors.Errorf("max predictions (%d) cannot exceed max length (%d)", c.MaxPred, c.MaxLen)
	}
	if c.MaskProb < 0 || c.MaskProb > 1 {
		return errors.Errorf("mask probability must be in [0, 1], got %g", c.MaskProb)
	}
	if c.ShortSamplingProb < 0 || c.ShortSamplingProb > 1 {
		return errors.Errorf("short sampling probability must be in [0, 1], got %g", c.ShortSamplingProb)
	}
	return nil
}
