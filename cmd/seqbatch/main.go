package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/seqbatch/internal/app"
	"github.com/bft-labs/seqbatch/internal/cliconfig"
	"github.com/bft-labs/seqbatch/pkg/bucket"
	"github.com/bft-labs/seqbatch/pkg/lifecycle"
	"github.com/bft-labs/seqbatch/pkg/log"
	"github.com/bft-labs/seqbatch/pkg/sink"
	"github.com/bft-labs/seqbatch/pkg/source"
	"github.com/bft-labs/seqbatch/pkg/state"
)

const helpDescription = `
Group tokenised sentences into length-bucketed batches so fixed-width
consumers pay as little padding as possible.

Input is JSON lines, one sentence per line: {"id": 1, "words": ["a", "b"]}.
A sentence's length is its word count. Bucket i holds lengths up to
bounds[i]; longer sentences go to a final overflow bucket. A bucket is
emitted as soon as it holds batch-size sentences, and the leftovers are
flushed in bucket order once the input ends.

Batches go to stdout, a file, an HTTP service, Kafka, Redis or a bbolt
database. Configure via file ($HOME/.seqbatch/config.toml), SEQBATCH_*
environment variables, or flags.
`

var exampleUsage = strings.TrimSpace(`
  seqbatch --bounds 5,10,20 --batch-size 64 corpus.jsonl
  cat corpus.jsonl | seqbatch --sink bolt --output batches.db --format msgpack
  seqbatch --follow /var/spool/sentences --sink kafka --kafka-brokers localhost:9092 --kafka-topic batches
  seqbatch inspect --suggest 8 corpus.jsonl
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string
	var logger log.Logger = log.NewNoopLogger()

	// load resolves file, env and flags into cfg, then builds the logger.
	// Delivery settings are only validated when a sink will be opened.
	load := func(cmd *cobra.Command, deliver bool) error {
		cfgFile := cfgPath
		if cfgFile == "" {
			cfgFile = cliconfig.DefaultConfigPath()
		}

		changed := map[string]bool{}
		cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

		if cfgFile != "" && cliconfig.FileExists(cfgFile) {
			fc, err := cliconfig.LoadFileConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
				return err
			}
		}

		// Environment overrides the file; flags override both via changed.
		if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
			return err
		}

		validate := cfg.ValidateBatching
		if deliver {
			validate = cfg.Validate
		}
		if err := validate(); err != nil {
			return err
		}

		l, err := log.New(log.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
		if err != nil {
			return err
		}
		logger = l
		logger.Debug("configuration", log.Any("config", cfg.Masked()))
		return nil
	}

	root := &cobra.Command{
		Use:           "seqbatch [files...]",
		Short:         "Batch variable-length sentences by length bucket",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := load(cmd, true); err != nil {
				return err
			}
			if cfg.Follow != "" && len(args) > 0 {
				return errors.New("--follow cannot be combined with input files")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, err := bucket.WithBounds(cfg.ParsedBounds, source.Sentence.Len)
			if err != nil {
				return err
			}

			out, err := sink.Open(cfg.SinkConfig(), logger)
			if err != nil {
				return fmt.Errorf("open %s sink: %w", cfg.Sink, err)
			}
			defer func() {
				if err := out.Close(); err != nil {
					logger.Error("close sink", log.Err(err))
				}
			}()

			r, err := app.NewRunner(g, out, logger, runnerConfig(cfg))
			if err != nil {
				return err
			}

			if cfg.Follow != "" {
				repo := state.NewFileRepository(cfg.StateDir)
				sup := lifecycle.NewSupervisor(logger)
				err := sup.Run(ctx, "follow", func(ctx context.Context) error {
					return r.RunFollow(ctx, cfg.Follow, repo, cfg.Debounce)
				})
				if ctx.Err() != nil {
					logger.Info("received signal, stopping...")
				}
				return err
			}

			if len(args) == 0 {
				_, err = r.RunReader(ctx, "stdin", cmd.InOrStdin())
				return err
			}
			for _, path := range args {
				if _, err := r.RunFile(ctx, path); err != nil {
					return err
				}
			}
			if len(args) > 1 {
				t := r.Totals()
				logger.Info("all inputs batched",
					log.Int("files", len(args)),
					log.Int("batches", t.Batches),
					log.Int("records", t.Records),
					log.Float64("efficiency", t.Efficiency()))
			}
			return nil
		},
	}

	var suggest int
	inspect := &cobra.Command{
		Use:   "inspect [files...]",
		Short: "Show how inputs would be batched without delivering anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := load(cmd, false); err != nil {
				return err
			}
			g, err := bucket.WithBounds(cfg.ParsedBounds, source.Sentence.Len)
			if err != nil {
				return err
			}

			inputs, closeAll, err := openInputs(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			defer closeAll()

			rep, err := app.Inspect(cmd.Context(), g, app.InspectConfig{
				RunnerConfig: runnerConfig(cfg),
				KeepLengths:  suggest > 0,
			}, inputs...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := rep.Print(out); err != nil {
				return err
			}
			if suggest > 0 {
				s := bucket.SuggestBounds(rep.Lengths, suggest)
				fmt.Fprintf(out, "suggested bounds: %s\n", joinInts(s))
			}
			return nil
		},
	}
	inspect.Flags().IntVar(&suggest, "suggest", 0, "print N bucket bounds derived from the observed lengths")
	root.AddCommand(inspect)

	// Shared flags
	pf := root.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.seqbatch/config.toml)")
	pf.StringVar(&cfg.Bounds, "bounds", cfg.Bounds, "comma-separated ascending bucket upper bounds")
	pf.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "maximum sentences per batch")
	pf.BoolVar(&cfg.Lenient, "lenient", cfg.Lenient, "skip malformed lines instead of failing")
	pf.IntVar(&cfg.MaxLineBytes, "max-line-bytes", cfg.MaxLineBytes, "maximum size of one input line")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (console, json)")

	// Delivery flags
	f := root.Flags()
	f.StringVar(&cfg.Sink, "sink", cfg.Sink, "batch destination: "+strings.Join(sink.Kinds, ", "))
	f.StringVar(&cfg.Output, "output", cfg.Output, "output path for the file and bolt sinks")
	f.StringVar(&cfg.Format, "format", cfg.Format, "envelope encoding (json, msgpack)")

	f.StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, "base URL for the http sink")
	f.StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "bearer token for the http sink")
	f.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout")
	f.IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, "retries for failed http deliveries")

	f.StringVar(&cfg.KafkaBrokers, "kafka-brokers", cfg.KafkaBrokers, "comma-separated Kafka brokers")
	f.StringVar(&cfg.KafkaTopic, "kafka-topic", cfg.KafkaTopic, "Kafka topic")
	f.StringVar(&cfg.KafkaUsername, "kafka-username", cfg.KafkaUsername, "SASL/SCRAM username")
	f.StringVar(&cfg.KafkaPassword, "kafka-password", cfg.KafkaPassword, "SASL/SCRAM password")

	f.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address (host:port)")
	f.StringVar(&cfg.RedisPassword, "redis-password", cfg.RedisPassword, "Redis password")
	f.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "Redis database number")
	f.StringVar(&cfg.RedisPrefix, "redis-prefix", cfg.RedisPrefix, "Redis list key prefix")

	f.StringVar(&cfg.Follow, "follow", cfg.Follow, "follow a spool directory and batch every new .jsonl file")
	f.StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "state directory for state.json (defaults to the follow directory)")
	f.DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "quiet period before a changed spool file is read")

	if err := root.Execute(); err != nil {
		if isNoop(logger) {
			fmt.Fprintln(os.Stderr, "seqbatch:", err)
		} else {
			logger.Error("seqbatch", log.Err(err))
		}
		os.Exit(1)
	}
}

func runnerConfig(cfg cliconfig.Config) app.RunnerConfig {
	return app.RunnerConfig{
		BatchSize:    cfg.BatchSize,
		Lenient:      cfg.Lenient,
		MaxLineBytes: cfg.MaxLineBytes,
	}
}

// openInputs opens every path, or wraps stdin when there are none.
func openInputs(stdin io.Reader, paths []string) ([]app.Input, func(), error) {
	if len(paths) == 0 {
		return []app.Input{{Name: "stdin", Reader: stdin}}, func() {}, nil
	}
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	inputs := make([]app.Input, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		files = append(files, f)
		inputs = append(inputs, app.Input{Name: p, Reader: f})
	}
	return inputs, closeAll, nil
}

func isNoop(l log.Logger) bool {
	_, ok := l.(*log.NoopLogger)
	return ok
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ",")
}
