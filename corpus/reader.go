package corpus

import "strings"

// TokenizeFunc converts a stripped, non-blank corpus line into subword tokens.
type TokenizeFunc func(line string) []string

// TokenReader accumulates tokens by walking corpus lines forward from an
// explicit start index. It holds no per-read state: the caller owns its own
// cursor and passes a start index on every call, so one reader may serve any
// number of interleaved reads.
type TokenReader struct {
	corpus   Corpus
	tokenize TokenizeFunc
}

// NewTokenReader creates a reader over the given corpus.
func NewTokenReader(c Corpus, tokenize TokenizeFunc) *TokenReader {
	return &TokenReader{corpus: c, tokenize: tokenize}
}

// Read walks forward from start, tokenizing each non-blank line and
// concatenating tokens until at least targetLen tokens have accumulated.
//
// Blank lines delimit documents and their handling depends on nonEmpty:
//   - nonEmpty=true: discard everything accumulated so far and keep walking,
//     restarting inside the next document. A successful read therefore never
//     straddles a document boundary.
//   - nonEmpty=false: return immediately with whatever has accumulated,
//     possibly fewer than targetLen tokens and possibly none. This is the
//     "tail of the current document" mode.
//
// The second result is false when the corpus is exhausted before the read
// completes; callers must treat that as end of stream, not as an error.
func (r *TokenReader) Read(start, targetLen int, nonEmpty bool) ([]string, bool) {
	tokens := []string{}
	idx := start
	for len(tokens) < targetLen {
		if idx >= r.corpus.Len() {
			return nil, false
		}
		line := strings.TrimSpace(r.corpus.Line(idx))
		idx++
		if line == "" {
			if nonEmpty {
				tokens = tokens[:0] // throw all away and restart
				continue
			}
			return tokens, true
		}
		tokens = append(tokens, r.tokenize(line)...)
	}
	return tokens, true
}
