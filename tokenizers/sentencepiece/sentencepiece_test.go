package sentencepiece

import (
	"os"
	"testing"

	"github.com/gomlx/go-bertdata/tokenizers/api"
)

// A SentencePiece model proto is too large to check in; point the test at one
// with SENTENCEPIECE_MODEL to exercise the adapter end-to-end.
func testModelPath(t *testing.T) string {
	path := os.Getenv("SENTENCEPIECE_MODEL")
	if path == "" {
		t.Skip("SENTENCEPIECE_MODEL not set")
	}
	if _, err := os.Stat(path); err != nil {
		t.Skipf("model file %q not found: %v", path, err)
	}
	return path
}

func TestTokenizeRoundTrip(t *testing.T) {
	tok, err := NewFromFile(testModelPath(t))
	if err != nil {
		t.Fatalf("NewFromFile failed: %v", err)
	}

	inputs := []string{
		"hello",
		"hello world",
		"The quick brown fox jumps over the lazy dog.",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			pieces := tok.Tokenize(input)
			if len(pieces) == 0 {
				t.Fatalf("Tokenize(%q) returned no pieces", input)
			}
			ids := tok.TokensToIDs(pieces)
			if len(ids) != len(pieces) {
				t.Errorf("TokensToIDs returned %d ids for %d pieces", len(ids), len(pieces))
			}
		})
	}
}

func TestSpecialTokenIDs(t *testing.T) {
	tok, err := NewFromFile(testModelPath(t))
	if err != nil {
		t.Fatalf("NewFromFile failed: %v", err)
	}
	for _, special := range []api.SpecialToken{api.TokUnknown, api.TokPad} {
		if _, err := tok.SpecialTokenID(special); err != nil {
			t.Errorf("SpecialTokenID(%s) failed: %v", special, err)
		}
	}
	if _, err := tok.SpecialTokenID(api.TokMask); err == nil {
		t.Error("SpecialTokenID(mask) should fail for sentencepiece models")
	}
}
