// Package corpus holds a fully-materialized, line-oriented text corpus and a
// document-aware token reader over it.
//
// A corpus is an ordered, 0-indexed sequence of lines. A line that is empty
// or whitespace-only is a document delimiter; all other lines belong to the
// document they fall between. A corpus is immutable for its lifetime and may
// be shared read-only across any number of readers and loaders.
package corpus

import (
	"os"
	"strings"

	"github.com/edsrzf/mmap-go"
	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Corpus is an immutable ordered sequence of text lines.
type Corpus struct {
	lines []string
}

// FromLines creates a corpus from a line slice. The slice is retained as-is
// and must not be modified afterwards.
func FromLines(lines []string) Corpus {
	return Corpus{lines: lines}
}

// FromTextFile loads a corpus from a plain text file, one line per corpus
// entry. The file is memory-mapped for the scan, so corpora much larger than
// the page cache load without a second buffered copy.
func FromTextFile(path string) (Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return Corpus{}, errors.Wrapf(err, "failed to open corpus file %q", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Corpus{}, errors.Wrapf(err, "failed to stat corpus file %q", path)
	}
	if info.Size() == 0 {
		return Corpus{}, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return Corpus{}, errors.Wrapf(err, "failed to mmap corpus file %q", path)
	}
	defer func() {
		if err := m.Unmap(); err != nil {
			klog.Warningf("failed to unmap corpus file %q: %v", path, err)
		}
	}()

	lines := splitLines(string(m))
	klog.V(1).Infof("corpus: loaded %d lines from text file %q", len(lines), path)
	return Corpus{lines: lines}, nil
}

// textRow is the row shape read from HuggingFace-datasets-style parquet
// shards, which store one sentence per row in a "text" column.
type textRow struct {
	Text string `parquet:"text"`
}

// FromParquet loads a corpus from a parquet file with a "text" column,
// the layout HuggingFace datasets export their shards in.
func FromParquet(path string) (Corpus, error) {
	rows, err := parquet.ReadFile[textRow](path)
	if err != nil {
		return Corpus{}, errors.Wrapf(err, "failed to read parquet corpus %q", path)
	}
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = row.Text
	}
	klog.V(1).Infof("corpus: loaded %d lines from parquet file %q", len(lines), path)
	return Corpus{lines: lines}, nil
}

// Len returns the number of lines (including document delimiters).
func (c Corpus) Len() int {
	return len(c.lines)
}

// Line returns the i-th line.
func (c Corpus) Line(i int) string {
	return c.lines[i]
}

// NumDocuments counts the documents in the corpus: maximal runs of non-blank
// lines.
func (c Corpus) NumDocuments() int {
	n := 0
	inDoc := false
	for _, line := range c.lines {
		if IsBlank(line) {
			inDoc = false
		} else if !inDoc {
			inDoc = true
			n++
		}
	}
	return n
}

// IsBlank reports whether a line is a document delimiter.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// splitLines splits file content on '\n', dropping a trailing '\r' per line
// and a final empty fragment from a trailing newline.
func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
