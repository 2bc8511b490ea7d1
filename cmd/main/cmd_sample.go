package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/CTAG07/loremipsum/pkg/lorem"
	"github.com/CTAG07/loremipsum/pkg/samples"
	"github.com/CTAG07/loremipsum/pkg/serialization"
	"github.com/CTAG07/loremipsum/pkg/store"
)

// sampleSummary is what `sample info` prints.
type sampleSummary struct {
	Hash               string      `json:"hash"`
	Incipit            string      `json:"incipit"`
	Stats              lorem.Stats `json:"stats"`
	LexiconSize        int         `json:"lexicon_size"`
	ChainSize          int         `json:"chain_size"`
	StartSize          int         `json:"start_size"`
	WordDelimiters     string      `json:"word_delimiters"`
	SentenceDelimiters string      `json:"sentence_delimiters"`
}

func summarize(s *lorem.Sample) sampleSummary {
	return sampleSummary{
		Hash:               fmt.Sprintf("%016x", s.Hash()),
		Incipit:            s.Incipit(),
		Stats:              s.Stats(),
		LexiconSize:        len(s.Lexicon()),
		ChainSize:          len(s.Chains()),
		StartSize:          len(s.Starts()),
		WordDelimiters:     s.WordDelimiters(),
		SentenceDelimiters: s.SentenceDelimiters(),
	}
}

// openStore opens the sample store at path, creating its directory and
// schema when needed. The returned func closes both.
func openStore(path string) (*store.Store, func(), error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := initDB(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = store.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	st, err := store.New(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return st, func() {
		st.Close()
		_ = db.Close()
	}, nil
}

func newSampleCmd(root *rootOptions) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Inspect, convert and store samples",
		Long: `Inspect, convert and store samples.

Subcommands:
  info     - Show the statistics of a sample
  convert  - Copy a sample from one URL to another
  save     - Save a sample into the sample store
  list     - List built-in and stored samples
  remove   - Remove a stored or serialized sample`,
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", DefaultServerConfig().DatabasePath, "Path to the sample store")

	cmd.AddCommand(
		newSampleInfoCmd(root),
		newSampleConvertCmd(root),
		newSampleSaveCmd(root, &dbPath),
		newSampleListCmd(&dbPath),
		newSampleRemoveCmd(root, &dbPath),
	)
	return cmd
}

func newSampleInfoCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info [sample]",
		Short: "Show the statistics of a sample",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := root.sample
			if len(args) == 1 {
				ref = args[0]
			}
			s, err := resolveSample(cmd.Context(), ref, root.logger(cmd))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summarize(s))
		},
	}
}

func newSampleConvertCmd(root *rootOptions) *cobra.Command {
	var contentType, contentEncoding string
	cmd := &cobra.Command{
		Use:   "convert <source> <destination>",
		Short: "Copy a sample from one URL to another",
		Long: `Copy a sample from one URL to another. The content type and encoding of
a file destination are guessed from its extension unless given explicitly.

Examples:
  loremipsum sample convert package://loremipsum ./loremipsum/
  loremipsum sample convert ./loremipsum/ ./loremipsum.json.bz2
  loremipsum sample convert ./loremipsum.json.bz2 "sqlite://./data/loremipsum.db?name=copy"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := root.logger(cmd)
			s, err := resolveSample(cmd.Context(), args[0], logger)
			if err != nil {
				return err
			}
			opts := []serialization.Option{serialization.WithLogger(logger)}
			if contentType != "" {
				opts = append(opts, serialization.WithContentType(contentType))
			}
			if contentEncoding != "" {
				opts = append(opts, serialization.WithContentEncoding(contentEncoding))
			}
			if err = serialization.Dump(cmd.Context(), s, args[1], opts...); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[1], err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Converted %s to %s\n", args[0], args[1])
			return err
		},
	}
	cmd.Flags().StringVarP(&contentType, "content-type", "t", "", "Content type of the destination (e.g. application/json)")
	cmd.Flags().StringVarP(&contentEncoding, "content-encoding", "e", "", "Content encoding of the destination (e.g. gzip, identity)")
	return cmd
}

func newSampleSaveCmd(root *rootOptions, dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "save <name> [source]",
		Short: "Save a sample into the sample store",
		Long:  `Save a sample into the sample store under name, replacing any sample already stored there. The source defaults to --sample.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := root.sample
			if len(args) == 2 {
				ref = args[1]
			}
			logger := root.logger(cmd)
			s, err := resolveSample(cmd.Context(), ref, logger)
			if err != nil {
				return err
			}
			st, closeFn, err := openStore(*dbPath)
			if err != nil {
				return err
			}
			defer closeFn()
			st.SetLogger(logger)
			if err = st.Save(cmd.Context(), args[0], s); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved sample %q to %s\n", args[0], *dbPath)
			return err
		},
	}
}

func newSampleListCmd(dbPath *string) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List built-in and stored samples",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stored, err := listStored(cmd.Context(), *dbPath)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"builtin": samples.Names(),
					"stored":  stored,
				})
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "NAME\tSOURCE\tLEXICON\tCHAINS\tUPDATED")
			for _, name := range samples.Names() {
				_, _ = fmt.Fprintf(tw, "%s\tbuiltin\t-\t-\t-\n", name)
			}
			for _, info := range stored {
				_, _ = fmt.Fprintf(tw, "%s\tstore\t%d\t%d\t%s\n",
					info.Name, info.LexiconSize, info.ChainSize, info.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

// listStored returns the stored samples, or nothing when the store does not
// exist yet.
func listStored(ctx context.Context, dbPath string) ([]store.SampleInfo, error) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return []store.SampleInfo{}, nil
	}
	st, closeFn, err := openStore(dbPath)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return st.List(ctx)
}

func newSampleRemoveCmd(root *rootOptions, dbPath *string) *cobra.Command {
	var fromStore bool
	cmd := &cobra.Command{
		Use:   "remove <name-or-url>",
		Short: "Remove a stored or serialized sample",
		Long: `Remove a sample. With --store the argument names a sample in the sample
store; otherwise it is a URL, and the file or ingredient files it points
at are deleted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := root.logger(cmd)
			if fromStore {
				st, closeFn, err := openStore(*dbPath)
				if err != nil {
					return err
				}
				defer closeFn()
				st.SetLogger(logger)
				if err = st.Remove(cmd.Context(), args[0]); err != nil {
					return err
				}
			} else if err := serialization.Remove(cmd.Context(), args[0], serialization.WithLogger(logger)); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return err
		},
	}
	cmd.Flags().BoolVar(&fromStore, "store", false, "Remove a sample from the sample store by name")
	return cmd
}
