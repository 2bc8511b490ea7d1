package lorem

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"gonum.org/v1/gonum/stat"
)

// LengthPair is a chain state: the lengths of the two most recently seen
// words. The zero value opens every scan of the sample text.
type LengthPair struct {
	First  int `json:"first"`
	Second int `json:"second"`
}

// next shifts the pair by one word of the given length.
func (p LengthPair) next(length int) LengthPair {
	return LengthPair{First: p.Second, Second: length}
}

func comparePairs(a, b LengthPair) int {
	if a.First != b.First {
		return a.First - b.First
	}
	return a.Second - b.Second
}

// Link is one observed successor of a LengthPair: the length of the next word
// and the delimiter that trailed it in the sample, if any.
type Link struct {
	Length    int    `json:"length"`
	Delimiter string `json:"delimiter,omitempty"`
}

func compareLinks(a, b Link) int {
	if a.Length != b.Length {
		return a.Length - b.Length
	}
	return strings.Compare(a.Delimiter, b.Delimiter)
}

// Stats holds the length distributions measured on a sample.
type Stats struct {
	SentenceMean   float64 `json:"sentence_mean"`   // words per sentence
	SentenceSigma  float64 `json:"sentence_sigma"`  // population standard deviation
	ParagraphMean  float64 `json:"paragraph_mean"`  // sentences per paragraph
	ParagraphSigma float64 `json:"paragraph_sigma"` // population standard deviation
}

func (st Stats) validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"sentence mean", st.SentenceMean},
		{"sentence sigma", st.SentenceSigma},
		{"paragraph mean", st.ParagraphMean},
		{"paragraph sigma", st.ParagraphSigma},
	}
	for _, c := range checks {
		if err := checkStatistic(c.name, c.value); err != nil {
			return err
		}
	}
	return nil
}

func checkStatistic(name string, v float64) error {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be a non-negative number, got %v", ErrInvalidConfig, name, v)
	}
	return nil
}

// Sample is the analysed form of a sample text and lexicon. It is immutable
// once built and safe for concurrent use.
type Sample struct {
	text               string
	lexicon            []string
	wordDelimiters     string
	sentenceDelimiters string

	chains     map[LengthPair][]Link
	starts     []LengthPair     // sorted, distinct
	dictionary map[int][]string // word length -> distinct words in lexicon order
	lengths    []int            // dictionary keys, ascending
	restarts   []LengthPair     // starts that are also chain keys, sorted

	stats   Stats
	incipit string
}

// NewSample analyses text against lexicon. Words in text may be trailed by
// any of wordDelimiters; sentences end at any of sentenceDelimiters and
// paragraphs are separated by blank lines. Lexicon entries are split on
// whitespace, so a whole word list may be passed as a single string.
//
// It fails with ErrInvalidLexicon when the lexicon has no word, and with
// ErrInvalidSample when the text yields no chain entry.
func NewSample(text string, lexicon []string, wordDelimiters, sentenceDelimiters string) (*Sample, error) {
	s := &Sample{
		text:               trimNewlines(text),
		lexicon:            normalizeLexicon(lexicon),
		wordDelimiters:     trimNewlines(wordDelimiters),
		sentenceDelimiters: trimNewlines(sentenceDelimiters),
		chains:             make(map[LengthPair][]Link),
		dictionary:         make(map[int][]string),
	}

	for _, word := range s.lexicon {
		n := utf8.RuneCountInString(word)
		if !slices.Contains(s.dictionary[n], word) {
			s.dictionary[n] = append(s.dictionary[n], word)
		}
	}
	if len(s.dictionary) == 0 {
		return nil, fmt.Errorf("%w: no word found", ErrInvalidLexicon)
	}
	if s.sentenceDelimiters == "" {
		return nil, fmt.Errorf("%w: no sentence delimiter given", ErrInvalidSample)
	}

	var (
		paragraphLens []float64
		sentenceLens  []float64
		previous      LengthPair
		starts        = []LengthPair{previous}
		incipitFound  bool
	)

	for _, paragraph := range strings.Split(s.text, "\n\n") {
		paragraphLens = append(paragraphLens, 0)

		for _, sentence := range splitSentences(strings.TrimSpace(paragraph), s.sentenceDelimiters) {
			sentenceLens = append(sentenceLens, 0)
			paragraphLens[len(paragraphLens)-1]++

			if !incipitFound {
				s.incipit, incipitFound = sentence, true
			}

			for _, word := range strings.Fields(sentence) {
				sentenceLens[len(sentenceLens)-1]++

				clean, delimiter := splitDelimiter(word, s.wordDelimiters)
				if clean == "" {
					continue
				}
				length := utf8.RuneCountInString(clean)
				s.chains[previous] = append(s.chains[previous], Link{Length: length, Delimiter: delimiter})
				if delimiter != "" {
					starts = append(starts, previous)
				}
				previous = previous.next(length)
			}
		}
	}

	if len(s.chains) == 0 {
		return nil, fmt.Errorf("%w: no word found between delimiters", ErrInvalidSample)
	}

	s.stats.SentenceMean, s.stats.SentenceSigma = meanSigma(sentenceLens)
	s.stats.ParagraphMean, s.stats.ParagraphSigma = meanSigma(paragraphLens)
	s.starts = starts
	s.index()
	return s, nil
}

// index derives the lookup tables that generation relies on.
func (s *Sample) index() {
	slices.SortFunc(s.starts, comparePairs)
	s.starts = slices.Compact(s.starts)

	s.restarts = s.restarts[:0]
	for _, p := range s.starts {
		if _, ok := s.chains[p]; ok {
			s.restarts = append(s.restarts, p)
		}
	}

	s.lengths = make([]int, 0, len(s.dictionary))
	for n := range s.dictionary {
		s.lengths = append(s.lengths, n)
	}
	slices.Sort(s.lengths)
}

// closestLength returns the dictionary length nearest to n. Ties go to the
// shorter length.
func (s *Sample) closestLength(n int) int {
	best, bestDist := s.lengths[0], -1
	for _, l := range s.lengths {
		d := l - n
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = l, d
		}
	}
	return best
}

// WithOverrides returns a copy of the sample with some statistics replaced.
// The receiver is left untouched and the analysed tables are shared.
// Negative or non-finite values fail with ErrInvalidConfig.
func (s *Sample) WithOverrides(overrides ...StatOverride) (*Sample, error) {
	stats := s.stats
	for _, o := range overrides {
		o(&stats)
	}
	if err := stats.validate(); err != nil {
		return nil, err
	}
	derived := *s
	derived.stats = stats
	return &derived, nil
}

// StatOverride replaces one statistic of a derived Sample.
type StatOverride func(*Stats)

// OverrideSentenceMean sets the mean sentence length, in words.
func OverrideSentenceMean(v float64) StatOverride {
	return func(st *Stats) { st.SentenceMean = v }
}

// OverrideSentenceSigma sets the sentence length standard deviation.
func OverrideSentenceSigma(v float64) StatOverride {
	return func(st *Stats) { st.SentenceSigma = v }
}

// OverrideParagraphMean sets the mean paragraph length, in sentences.
func OverrideParagraphMean(v float64) StatOverride {
	return func(st *Stats) { st.ParagraphMean = v }
}

// OverrideParagraphSigma sets the paragraph length standard deviation.
func OverrideParagraphSigma(v float64) StatOverride {
	return func(st *Stats) { st.ParagraphSigma = v }
}

// Text returns the sample text.
func (s *Sample) Text() string { return s.text }

// Lexicon returns a copy of the normalized lexicon.
func (s *Sample) Lexicon() []string { return slices.Clone(s.lexicon) }

// WordDelimiters returns the characters that may trail a word.
func (s *Sample) WordDelimiters() string { return s.wordDelimiters }

// SentenceDelimiters returns the characters that end a sentence.
func (s *Sample) SentenceDelimiters() string { return s.sentenceDelimiters }

// Incipit returns the first sentence of the sample text, verbatim.
func (s *Sample) Incipit() string { return s.incipit }

// Stats returns the sentence and paragraph length statistics.
func (s *Sample) Stats() Stats { return s.stats }

// Chains returns a copy of the chain table.
func (s *Sample) Chains() map[LengthPair][]Link {
	out := make(map[LengthPair][]Link, len(s.chains))
	for k, v := range s.chains {
		out[k] = slices.Clone(v)
	}
	return out
}

// Starts returns the sorted pairs that may open a sentence.
func (s *Sample) Starts() []LengthPair { return slices.Clone(s.starts) }

// Dictionary returns a copy of the length-indexed lexicon.
func (s *Sample) Dictionary() map[int][]string {
	out := make(map[int][]string, len(s.dictionary))
	for k, v := range s.dictionary {
		out[k] = slices.Clone(v)
	}
	return out
}

// splitSentences cuts text after every sentence delimiter. Text following
// the last delimiter does not form a sentence.
func splitSentences(text, delimiters string) []string {
	var sentences []string
	start := 0
	for i, r := range text {
		if strings.ContainsRune(delimiters, r) {
			end := i + utf8.RuneLen(r)
			sentences = append(sentences, text[start:end])
			start = end
		}
	}
	return sentences
}

// splitDelimiter strips the trailing run of delimiter characters from word.
// The returned delimiter is the first character of that run.
func splitDelimiter(word, delimiters string) (string, string) {
	var delimiter string
	for word != "" {
		r, size := utf8.DecodeLastRuneInString(word)
		if !strings.ContainsRune(delimiters, r) {
			break
		}
		word, delimiter = word[:len(word)-size], string(r)
	}
	return word, delimiter
}

func normalizeLexicon(lexicon []string) []string {
	words := make([]string, 0, len(lexicon))
	for _, entry := range lexicon {
		words = append(words, strings.Fields(entry)...)
	}
	return words
}

func trimNewlines(s string) string {
	return strings.Trim(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

// meanSigma returns the mean and population standard deviation of values,
// computed as sqrt(mean(x²) - mean(x)²).
func meanSigma(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean := stat.Mean(values, nil)
	squares := make([]float64, len(values))
	for i, v := range values {
		squares[i] = v * v
	}
	variance := stat.Mean(squares, nil) - mean*mean
	if variance <= 0 {
		return mean, 0
	}
	return mean, math.Sqrt(variance)
}
