// bertdata materializes masked-LM + next-sentence-prediction training batches
// from a line-oriented corpus.
//
// It loads a corpus (plain text or a HuggingFace-datasets parquet shard),
// builds a WordPiece tokenizer from a vocab.txt file (downloading it first if
// -vocab-url is given), drains the batch stream and optionally writes every
// batch as flat little-endian int32 records to a shard file named after a
// fresh run id.
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/gomlx/go-bertdata/corpus"
	"github.com/gomlx/go-bertdata/hub"
	"github.com/gomlx/go-bertdata/pretrain"
	"github.com/gomlx/go-bertdata/tokenizers/wordpiece"
)

var (
	flagCorpus    = flag.String("corpus", "", "corpus file: plain text (one sentence per line, blank line between documents) or a .parquet shard with a \"text\" column")
	flagVocab     = flag.String("vocab", "vocab.txt", "WordPiece vocab.txt path")
	flagVocabURL  = flag.String("vocab-url", "", "if set, download the vocabulary from this URL to -vocab first")
	flagOutputDir = flag.String("output", "", "if set, write batches as flat int32 shards into this directory")

	flagBatchSize = flag.Int("batch-size", 32, "instances per batch")
	flagMaxLen    = flag.Int("max-len", 512, "fixed token sequence width")
	flagMaxPred   = flag.Int("max-pred", 20, "fixed masked-prediction width")
	flagMaskProb  = flag.Float64("mask-prob", 0.15, "fraction of tokens selected for prediction")
	flagShortProb = flag.Float64("short-prob", 0.1, "probability of sampling a short span length")
	flagSeed      = flag.Int64("seed", 42, "random seed for sampling and masking")
	flagMaxBatch  = flag.Int("max-batches", 0, "stop after this many batches (0 = drain the corpus)")
	flagLowercase = flag.Bool("lowercase", true, "lowercase and strip accents before tokenizing")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagCorpus == "" {
		klog.Exit("missing required -corpus flag")
	}
	if err := run(); err != nil {
		klog.Exitf("bertdata: %+v", err)
	}
}

func run() error {
	ctx := context.Background()

	if *flagVocabURL != "" {
		if err := hub.Fetch(ctx, *flagVocabURL, *flagVocab, false); err != nil {
			return err
		}
	}
	tok, err := wordpiece.NewFromFile(*flagVocab, *flagLowercase)
	if err != nil {
		return err
	}

	var c corpus.Corpus
	if strings.HasSuffix(*flagCorpus, ".parquet") {
		c, err = corpus.FromParquet(*flagCorpus)
	} else {
		c, err = corpus.FromTextFile(*flagCorpus)
	}
	if err != nil {
		return err
	}
	klog.Infof("corpus: %d lines, %d documents", c.Len(), c.NumDocuments())

	cfg := pretrain.Config{
		BatchSize:         *flagBatchSize,
		MaxLen:            *flagMaxLen,
		MaxPred:           *flagMaxPred,
		MaskProb:          *flagMaskProb,
		ShortSamplingProb: *flagShortProb,
	}
	masker, err := pretrain.NewMasker(tok, tok.Vocab(), cfg, rand.New(rand.NewSource(*flagSeed)))
	if err != nil {
		return err
	}
	loader, err := pretrain.NewLoader(c, tok.Tokenize, cfg, []pretrain.Stage{masker}, rand.New(rand.NewSource(*flagSeed+1)))
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	var shard *os.File
	if *flagOutputDir != "" {
		if err := os.MkdirAll(*flagOutputDir, 0o755); err != nil {
			return err
		}
		shardPath := filepath.Join(*flagOutputDir, fmt.Sprintf("batches-%s.bin", runID))
		shard, err = os.Create(shardPath)
		if err != nil {
			return err
		}
		defer shard.Close()
		klog.Infof("writing batches to %s", shardPath)
	}

	start := time.Now()
	batches, instances := 0, 0
	for {
		if *flagMaxBatch > 0 && batches >= *flagMaxBatch {
			break
		}
		batch, ok := loader.Next()
		if !ok {
			break
		}
		if shard != nil {
			if err := writeBatch(shard, batch); err != nil {
				return err
			}
		}
		batches++
		instances += batch.Size()
		if batches%100 == 0 {
			klog.V(1).Infof("emitted %d batches (%d instances)", batches, instances)
		}
	}
	printSummary(runID, batches, instances, time.Since(start))
	return nil
}

// writeBatch appends the seven fields in their fixed order as little-endian
// int32, row-major.
func writeBatch(f *os.File, b *pretrain.Batch) error {
	for _, field := range [][][]int32{
		b.InputIDs, b.SegmentIDs, b.InputMask, b.MaskedIDs, b.MaskedPos, b.MaskedWeights,
	} {
		for _, row := range field {
			if err := binary.Write(f, binary.LittleEndian, row); err != nil {
				return err
			}
		}
	}
	return binary.Write(f, binary.LittleEndian, b.IsNext)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle = lipgloss.NewStyle().Faint(true)
)

func printSummary(runID string, batches, instances int, elapsed time.Duration) {
	fmt.Println(titleStyle.Render("bertdata run " + runID))
	fmt.Printf("%s %d\n", labelStyle.Render("batches:  "), batches)
	fmt.Printf("%s %d\n", labelStyle.Render("instances:"), instances)
	fmt.Printf("%s %s\n", labelStyle.Render("elapsed:  "), elapsed.Round(time.Millisecond))
}
