package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bft-labs/seqbatch/pkg/bucket"
	"github.com/bft-labs/seqbatch/pkg/log"
	"github.com/bft-labs/seqbatch/pkg/sink"
	"github.com/bft-labs/seqbatch/pkg/source"
	"github.com/bft-labs/seqbatch/pkg/state"
)

// RunnerConfig contains the per-run batching options.
type RunnerConfig struct {
	BatchSize    int
	Lenient      bool
	MaxLineBytes int
}

// Summary describes one processed input.
type Summary struct {
	Source   string
	Lines    int
	Records  int
	Batches  int
	Skipped  int
	Stats    *bucket.Stats
	Duration time.Duration
}

// Runner reads sentences, groups them by length and delivers every batch
// to a sink. Envelope sequence numbers continue across inputs.
type Runner struct {
	grouper *bucket.Grouper[source.Sentence]
	sink    sink.Sink
	logger  log.Logger
	cfg     RunnerConfig

	seq    uint64
	totals *bucket.Stats
}

// NewRunner creates a runner. A nil logger discards.
func NewRunner(g *bucket.Grouper[source.Sentence], s sink.Sink, logger log.Logger, cfg RunnerConfig) (*Runner, error) {
	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("%w: %d", bucket.ErrInvalidBatchSize, cfg.BatchSize)
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Runner{
		grouper: g,
		sink:    s,
		logger:  logger,
		cfg:     cfg,
		totals:  bucket.NewStats(g.Bounds().Buckets()),
	}, nil
}

// Totals returns statistics across every input run so far.
func (r *Runner) Totals() *bucket.Stats {
	return r.totals
}

// RunFile batches the JSONL file at path.
func (r *Runner) RunFile(ctx context.Context, path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{Source: path}, err
	}
	defer f.Close()
	return r.RunReader(ctx, filepath.Base(path), f)
}

// RunReader batches JSONL read from in. name labels envelopes and logs.
// It stops at the first read or sink error.
func (r *Runner) RunReader(ctx context.Context, name string, in io.Reader) (Summary, error) {
	start := time.Now()
	bounds := r.grouper.Bounds()
	sum := Summary{Source: name, Stats: bucket.NewStats(bounds.Buckets())}

	reader := source.NewJSONLReader(in,
		source.WithLenient(r.cfg.Lenient),
		source.WithMaxLineBytes(r.cfg.MaxLineBytes),
		source.WithSkipHook(func(line int, err error) {
			r.logger.Warn("skipping malformed record",
				log.String("source", name),
				log.Int("line", line),
				log.Err(err))
		}),
	)

	batches, err := r.grouper.Slice(reader.Records(), r.cfg.BatchSize)
	if err != nil {
		return sum, err
	}

	for b := range batches {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		env := sink.NewEnvelope(r.seq, name, bounds, b)
		if err := r.sink.Write(ctx, env); err != nil {
			return sum, fmt.Errorf("deliver batch %d from %s: %w", env.Seq, name, err)
		}
		r.seq++

		info := b.Info()
		sum.Stats.Observe(info)
		r.totals.Observe(info)
		sum.Batches++
		sum.Records += info.Size

		r.logger.Debug("batch emitted",
			log.String("source", name),
			log.Int64("seq", int64(env.Seq)),
			log.Int("bucket", info.Bucket),
			log.Int("size", info.Size),
			log.Int("max_length", info.MaxLength),
			log.Int("padding", env.Padding))
	}

	sum.Lines = reader.Lines()
	sum.Skipped = reader.Skipped()
	sum.Duration = time.Since(start)
	if err := reader.Err(); err != nil {
		return sum, fmt.Errorf("read %s: %w", name, err)
	}

	r.logger.Info("input batched",
		log.String("source", name),
		log.Int("lines", sum.Lines),
		log.Int("records", sum.Records),
		log.Int("batches", sum.Batches),
		log.Int("skipped", sum.Skipped),
		log.Float64("efficiency", sum.Stats.Efficiency()),
		log.Duration("took", sum.Duration))
	return sum, nil
}

// RunFollow batches every spool file that appears in dir until ctx is
// cancelled. Progress is persisted in repo so restarts skip finished files.
func (r *Runner) RunFollow(ctx context.Context, dir string, repo state.Repository, debounce time.Duration) error {
	st, err := repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if !st.IsEmpty() {
		r.logger.Info("resuming follow mode",
			log.Int("processed_files", len(st.Files)),
			log.String("last_file", st.LastFile))
	}

	handle := func(ctx context.Context, path string) error {
		sum, err := r.RunFile(ctx, path)
		if err != nil {
			return err
		}
		st.MarkProcessed(filepath.Base(path), sum.Batches, sum.Records)
		if err := repo.Save(ctx, st); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
		return nil
	}

	w := source.NewWatcher(dir, handle,
		source.WithDebounce(debounce),
		source.WithSkip(func(name string) bool { return st.Processed(name) }),
		source.WithWatcherLogger(r.logger),
	)

	r.logger.Info("following spool directory", log.String("dir", dir))
	return w.Run(ctx)
}
