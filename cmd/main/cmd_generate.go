package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CTAG07/loremipsum/pkg/lorem"
)

// textFlags holds the flags of the sentence and paragraph commands.
type textFlags struct {
	incipit        bool
	sentenceLen    int
	sentenceMean   float64
	sentenceSigma  float64
	paragraphLen   int
	paragraphMean  float64
	paragraphSigma float64
	stats          bool
	json           bool
}

func addTextFlags(cmd *cobra.Command, f *textFlags, paragraphs bool) {
	fs := cmd.Flags()
	fs.BoolVar(&f.incipit, "incipit", false, "Open the first sentence with the sample's incipit")
	fs.IntVar(&f.sentenceLen, "sentence-len", 0, "Fixed number of words per sentence")
	fs.Float64Var(&f.sentenceMean, "sentence-mean", 0, "Mean sentence length (default: the sample's)")
	fs.Float64Var(&f.sentenceSigma, "sentence-sigma", 0, "Sentence length deviation (default: the sample's)")
	if paragraphs {
		fs.IntVar(&f.paragraphLen, "paragraph-len", 0, "Fixed number of sentences per paragraph")
		fs.Float64Var(&f.paragraphMean, "paragraph-mean", 0, "Mean paragraph length (default: the sample's)")
		fs.Float64Var(&f.paragraphSigma, "paragraph-sigma", 0, "Paragraph length deviation (default: the sample's)")
	}
	fs.BoolVar(&f.stats, "stats", false, "Print sentence and word counts to stderr")
	fs.BoolVar(&f.json, "json", false, "Output as JSON")
}

// options turns the flags that were set into generation options.
func (f *textFlags) options(cmd *cobra.Command) []lorem.GenerateOption {
	fs := cmd.Flags()
	var opts []lorem.GenerateOption
	if f.incipit {
		opts = append(opts, lorem.WithIncipit(true))
	}
	if fs.Changed("sentence-len") {
		opts = append(opts, lorem.WithSentenceLen(f.sentenceLen))
	}
	if fs.Changed("sentence-mean") {
		opts = append(opts, lorem.WithSentenceMean(f.sentenceMean))
	}
	if fs.Changed("sentence-sigma") {
		opts = append(opts, lorem.WithSentenceSigma(f.sentenceSigma))
	}
	if fs.Changed("paragraph-len") {
		opts = append(opts, lorem.WithParagraphLen(f.paragraphLen))
	}
	if fs.Changed("paragraph-mean") {
		opts = append(opts, lorem.WithParagraphMean(f.paragraphMean))
	}
	if fs.Changed("paragraph-sigma") {
		opts = append(opts, lorem.WithParagraphSigma(f.paragraphSigma))
	}
	return opts
}

func parseAmount(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("amount must be a non-negative integer, got %q", arg)
	}
	return n, nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func newGenerateCmds(root *rootOptions) []*cobra.Command {
	return []*cobra.Command{
		newWordCmd(root),
		newWordsCmd(root),
		newSentenceCmd(root, false),
		newSentenceCmd(root, true),
		newParagraphCmd(root, false),
		newParagraphCmd(root, true),
	}
}

func newWordCmd(root *rootOptions) *cobra.Command {
	var length int
	cmd := &cobra.Command{
		Use:   "word",
		Short: "Generate a single word",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gen, err := root.generator(cmd)
			if err != nil {
				return err
			}
			word, ok := gen.GenerateWord(length)
			if !ok {
				return fmt.Errorf("the sample has no word of length %d", length)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), word)
			return err
		},
	}
	cmd.Flags().IntVarP(&length, "length", "l", 0, "Exact word length in characters (default: random)")
	return cmd
}

func newWordsCmd(root *rootOptions) *cobra.Command {
	var (
		length int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "words <amount>",
		Short: "Generate several words",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			gen, err := root.generator(cmd)
			if err != nil {
				return err
			}
			words := gen.Words(amount, length)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), words)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(words, " "))
			return err
		},
	}
	cmd.Flags().IntVarP(&length, "length", "l", 0, "Exact word length in characters (default: random)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newSentenceCmd(root *rootOptions, plural bool) *cobra.Command {
	flags := &textFlags{}
	cmd := &cobra.Command{
		Use:   "sentence",
		Short: "Generate a single sentence",
		Args:  cobra.NoArgs,
	}
	if plural {
		cmd.Use, cmd.Short, cmd.Args = "sentences <amount>", "Generate several sentences, one per line", cobra.ExactArgs(1)
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		amount := 1
		if plural {
			var err error
			if amount, err = parseAmount(args[0]); err != nil {
				return err
			}
		}
		gen, err := root.generator(cmd)
		if err != nil {
			return err
		}

		out := make([]lorem.Sentence, 0, amount)
		words := 0
		for s, err := range gen.GenerateSentences(amount, flags.options(cmd)...) {
			if err != nil {
				return err
			}
			out = append(out, s)
			words += s.Words
		}

		if flags.json {
			if plural {
				err = writeJSON(cmd.OutOrStdout(), out)
			} else {
				err = writeJSON(cmd.OutOrStdout(), out[0])
			}
		} else {
			for _, s := range out {
				if _, err = fmt.Fprintln(cmd.OutOrStdout(), s.Text); err != nil {
					break
				}
			}
		}
		if err == nil && flags.stats {
			_, err = fmt.Fprintf(cmd.ErrOrStderr(), "%d sentences, %d words\n", len(out), words)
		}
		return err
	}
	addTextFlags(cmd, flags, false)
	return cmd
}

func newParagraphCmd(root *rootOptions, plural bool) *cobra.Command {
	flags := &textFlags{}
	cmd := &cobra.Command{
		Use:   "paragraph",
		Short: "Generate a single paragraph",
		Args:  cobra.NoArgs,
	}
	if plural {
		cmd.Use, cmd.Short, cmd.Args = "paragraphs <amount>", "Generate several paragraphs separated by blank lines", cobra.ExactArgs(1)
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		amount := 1
		if plural {
			var err error
			if amount, err = parseAmount(args[0]); err != nil {
				return err
			}
		}
		gen, err := root.generator(cmd)
		if err != nil {
			return err
		}

		out := make([]lorem.Paragraph, 0, amount)
		sentences, words := 0, 0
		for p, err := range gen.GenerateParagraphs(amount, flags.options(cmd)...) {
			if err != nil {
				return err
			}
			out = append(out, p)
			sentences += p.Sentences
			words += p.Words
		}

		if flags.json {
			if plural {
				err = writeJSON(cmd.OutOrStdout(), out)
			} else {
				err = writeJSON(cmd.OutOrStdout(), out[0])
			}
		} else {
			texts := make([]string, len(out))
			for i, p := range out {
				texts[i] = p.Text
			}
			if len(texts) > 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(texts, "\n\n"))
			}
		}
		if err == nil && flags.stats {
			_, err = fmt.Fprintf(cmd.ErrOrStderr(), "%d paragraphs, %d sentences, %d words\n", len(out), sentences, words)
		}
		return err
	}
	addTextFlags(cmd, flags, true)
	return cmd
}
