package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/CTAG07/loremipsum/pkg/lorem"
	"github.com/CTAG07/loremipsum/pkg/registry"
	"github.com/CTAG07/loremipsum/pkg/samples"
	"github.com/CTAG07/loremipsum/pkg/serialization"
)

func init() {
	serialization.Schemes.Register("sqlite", serialization.StoreScheme{Driver: sqliteDriver})
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	sample   string
	seed     uint64
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "loremipsum",
		Short: "Generate lorem ipsum placeholder text",
		Long: `loremipsum generates placeholder words, sentences and paragraphs that
follow the word lengths and sentence shapes of a sample text.

Samples are addressed by registered name or by URL:
  loremipsum                                   built-in loremipsum sample
  ./mysample/                                  directory of .txt ingredient files
  ./mysample.json.gz                           serialized sample
  sqlite:///data/loremipsum.db?name=mysample   sample store

Examples:
  loremipsum paragraphs 3 --incipit
  loremipsum sentence --sentence-len 8 --seed 42
  loremipsum sample convert package://loremipsum ./loremipsum.tar.xz
  loremipsum serve --config config.yaml`,
		Version:      fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildDate),
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.sample, "sample", "s", "", "Sample name or URL (default: the built-in sample)")
	pf.Uint64Var(&opts.seed, "seed", 0, "Seed for reproducible output")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newGenerateCmds(opts)...)
	cmd.AddCommand(newSampleCmd(opts))
	cmd.AddCommand(newServeCmd())
	return cmd
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: parseLogLevel(o.logLevel)}))
}

// loadSample resolves the --sample flag.
func (o *rootOptions) loadSample(cmd *cobra.Command) (*lorem.Sample, error) {
	return resolveSample(cmd.Context(), o.sample, o.logger(cmd))
}

// generator builds a Generator over the --sample flag, seeded when --seed
// was given.
func (o *rootOptions) generator(cmd *cobra.Command) (*lorem.Generator, error) {
	sample, err := o.loadSample(cmd)
	if err != nil {
		return nil, err
	}
	logger := o.logger(cmd)
	genOpts := []lorem.Option{lorem.WithLogger(logger)}
	if cmd.Flags().Changed("seed") {
		genOpts = append(genOpts, lorem.WithSeed(o.seed))
	}
	return lorem.NewGenerator(sample, genOpts...), nil
}

// resolveSample returns the registered sample called ref, or loads ref as a
// URL when no such sample is registered. An empty ref is the default sample.
func resolveSample(ctx context.Context, ref string, logger *slog.Logger) (*lorem.Sample, error) {
	if ref == "" {
		return samples.Default()
	}
	s, err := samples.Get(ref)
	if err == nil || !errors.Is(err, registry.ErrNotRegistered) {
		return s, err
	}
	s, err = serialization.Load(ctx, ref, serialization.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to load sample %q: %w", ref, err)
	}
	return s, nil
}
