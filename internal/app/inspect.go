package app

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bft-labs/seqbatch/pkg/bucket"
	"github.com/bft-labs/seqbatch/pkg/source"
)

// Input is a named stream of JSONL sentences.
type Input struct {
	Name   string
	Reader io.Reader
}

// InspectConfig configures a dry run.
type InspectConfig struct {
	RunnerConfig

	// KeepLengths records every length in Report.Lengths for SuggestBounds.
	KeepLengths bool
}

// Report is the outcome of a dry run: how the inputs would be batched.
type Report struct {
	Bounds    bucket.Bounds
	BatchSize int
	Stats     *bucket.Stats
	Skipped   int

	// Lengths holds every record length seen when KeepLengths is set.
	Lengths []int
}

// Inspect groups the inputs without delivering anything.
func Inspect(ctx context.Context, g *bucket.Grouper[source.Sentence], cfg InspectConfig, inputs ...Input) (Report, error) {
	rep := Report{
		Bounds:    g.Bounds(),
		BatchSize: cfg.BatchSize,
		Stats:     bucket.NewStats(g.Bounds().Buckets()),
	}

	for _, in := range inputs {
		reader := source.NewJSONLReader(in.Reader,
			source.WithLenient(cfg.Lenient),
			source.WithMaxLineBytes(cfg.MaxLineBytes))

		records := func(yield func(source.Sentence) bool) {
			for s := range reader.Records() {
				if cfg.KeepLengths {
					rep.Lengths = append(rep.Lengths, g.Length(s))
				}
				if !yield(s) {
					return
				}
			}
		}

		batches, err := g.Slice(records, cfg.BatchSize)
		if err != nil {
			return rep, err
		}
		for b := range batches {
			if err := ctx.Err(); err != nil {
				return rep, err
			}
			rep.Stats.Observe(b.Info())
		}

		rep.Skipped += reader.Skipped()
		if err := reader.Err(); err != nil {
			return rep, fmt.Errorf("read %s: %w", in.Name, err)
		}
	}
	return rep, nil
}

// Print writes a per-bucket table followed by totals.
func (r Report) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "bucket\tlengths\tbatches\trecords\tpadding\t")
	for id, bs := range r.Stats.PerBucket {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t\n", id, r.lengthRange(id), bs.Batches, bs.Records, bs.Padding)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nbatch size %d, %d batches, %d records, %d skipped, padding efficiency %.1f%%\n",
		r.BatchSize, r.Stats.Batches, r.Stats.Records, r.Skipped, 100*r.Stats.Efficiency())
	return err
}

func (r Report) lengthRange(id int) string {
	lo, hi, overflow := r.Bounds.Range(id)
	if overflow {
		if lo < 0 {
			return "any"
		}
		return fmt.Sprintf(">%d", lo)
	}
	return fmt.Sprintf("%d-%d", lo+1, hi)
}
