package lorem

import (
	"fmt"
	"iter"
	"log/slog"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Sentence is a generated sentence and the number of words in it.
type Sentence struct {
	Words int    `json:"words"`
	Text  string `json:"text"`
}

// Paragraph is a generated paragraph with its sentence and word counts.
type Paragraph struct {
	Sentences int    `json:"sentences"`
	Words     int    `json:"words"`
	Text      string `json:"text"`
}

// generateOptions holds per-call generation settings. Unset statistics fall
// back to the sample's.
type generateOptions struct {
	incipit bool

	sentenceLen    int
	hasSentenceLen bool
	paragraphLen   int
	hasParLen      bool

	sentenceMean   *float64
	sentenceSigma  *float64
	paragraphMean  *float64
	paragraphSigma *float64
}

// GenerateOption configures a single sentence or paragraph request.
type GenerateOption func(*generateOptions)

// WithIncipit makes the first sentence open with the sample's incipit.
func WithIncipit(on bool) GenerateOption {
	return func(o *generateOptions) { o.incipit = on }
}

// WithSentenceLen fixes the number of words per sentence.
func WithSentenceLen(n int) GenerateOption {
	return func(o *generateOptions) { o.sentenceLen, o.hasSentenceLen = n, true }
}

// WithParagraphLen fixes the number of sentences per paragraph.
func WithParagraphLen(n int) GenerateOption {
	return func(o *generateOptions) { o.paragraphLen, o.hasParLen = n, true }
}

// WithSentenceMean overrides the mean sentence length for this call.
func WithSentenceMean(v float64) GenerateOption {
	return func(o *generateOptions) { o.sentenceMean = &v }
}

// WithSentenceSigma overrides the sentence length deviation for this call.
func WithSentenceSigma(v float64) GenerateOption {
	return func(o *generateOptions) { o.sentenceSigma = &v }
}

// WithParagraphMean overrides the mean paragraph length for this call.
func WithParagraphMean(v float64) GenerateOption {
	return func(o *generateOptions) { o.paragraphMean = &v }
}

// WithParagraphSigma overrides the paragraph length deviation for this call.
func WithParagraphSigma(v float64) GenerateOption {
	return func(o *generateOptions) { o.paragraphSigma = &v }
}

// MaxLength bounds the words in a sentence and the sentences in a
// paragraph. Explicit lengths above it are rejected and drawn lengths are
// clamped to it.
const MaxLength = 1000

// resolved is a validated generateOptions with every statistic filled in.
type resolved struct {
	incipit bool

	sentenceLen  int // 0 draws from the distribution
	paragraphLen int

	stats Stats
}

func (g *Generator) resolve(opts []GenerateOption) (resolved, error) {
	var o generateOptions
	for _, opt := range opts {
		opt(&o)
	}

	r := resolved{incipit: o.incipit, stats: g.sample.stats}
	if o.hasSentenceLen {
		if o.sentenceLen < 1 || o.sentenceLen > MaxLength {
			return r, fmt.Errorf("%w: sentence length must be between 1 and %d, got %d", ErrInvalidConfig, MaxLength, o.sentenceLen)
		}
		r.sentenceLen = o.sentenceLen
	}
	if o.hasParLen {
		if o.paragraphLen < 1 || o.paragraphLen > MaxLength {
			return r, fmt.Errorf("%w: paragraph length must be between 1 and %d, got %d", ErrInvalidConfig, MaxLength, o.paragraphLen)
		}
		r.paragraphLen = o.paragraphLen
	}
	if o.sentenceMean != nil {
		r.stats.SentenceMean = *o.sentenceMean
	}
	if o.sentenceSigma != nil {
		r.stats.SentenceSigma = *o.sentenceSigma
	}
	if o.paragraphMean != nil {
		r.stats.ParagraphMean = *o.paragraphMean
	}
	if o.paragraphSigma != nil {
		r.stats.ParagraphSigma = *o.paragraphSigma
	}
	if err := r.stats.validate(); err != nil {
		return r, err
	}
	return r, nil
}

// drawLength samples a normal distribution and rounds the magnitude half to
// even. The result lies between 2 and MaxLength.
func (g *Generator) drawLength(mean, sigma float64) int {
	v := math.RoundToEven(math.Abs(g.rng.NormFloat64()*sigma + mean))
	if v >= MaxLength {
		return MaxLength
	}
	return max(2, int(v))
}

// GenerateSentence returns one sentence. Its length is drawn from the
// sentence distribution unless WithSentenceLen is given.
func (g *Generator) GenerateSentence(opts ...GenerateOption) (Sentence, error) {
	r, err := g.resolve(opts)
	if err != nil {
		return Sentence{}, err
	}
	return g.sentence(r)
}

func (g *Generator) sentence(r resolved) (Sentence, error) {
	s := g.sample

	length := r.sentenceLen
	if length == 0 {
		length = g.drawLength(r.stats.SentenceMean, r.stats.SentenceSigma)
	}

	words := make([]string, 0, min(length, 64))
	var lastWord string
	trailing := s.wordDelimiters + s.sentenceDelimiters
	if r.incipit {
		for _, token := range strings.Fields(s.incipit) {
			if len(words) == length {
				break
			}
			words = append(words, token)
		}
		if n := len(words); n > 0 {
			lastWord = strings.TrimRight(words[n-1], trailing)
		}
	}

	var (
		state  LengthPair
		inside bool // state is a chain key
	)
	for len(words) < length {
		links, ok := s.chains[state]
		if !inside || !ok {
			if len(s.restarts) == 0 {
				return Sentence{}, fmt.Errorf("%w: no sentence start has a chain entry", ErrInternal)
			}
			state = s.restarts[g.rng.IntN(len(s.restarts))]
			links = s.chains[state]
			inside = true
		}

		link := links[g.rng.IntN(len(links))]
		delimiter := link.Delimiter
		if delimiter != "" && strings.Contains(s.sentenceDelimiters, delimiter) {
			delimiter = ""
		}

		bucket := s.dictionary[s.closestLength(link.Length)]
		word := bucket[g.rng.IntN(len(bucket))]
		for word == lastWord && len(bucket) > 1 {
			word = bucket[g.rng.IntN(len(bucket))]
		}
		lastWord = word

		words = append(words, word+delimiter)
		state = state.next(link.Length)
	}

	text := strings.TrimRight(strings.Join(words, " "), trailing) + "."
	g.logger.Debug("Sentence generated",
		slog.Int("words", len(words)),
		slog.Bool("incipit", r.incipit))
	return Sentence{Words: len(words), Text: capitalize(text)}, nil
}

// GenerateSentences yields amount sentences. Only the first one honours
// WithIncipit. The sequence stops after yielding an error, and may be
// ranged over again for a fresh draw.
func (g *Generator) GenerateSentences(amount int, opts ...GenerateOption) iter.Seq2[Sentence, error] {
	return func(yield func(Sentence, error) bool) {
		r, err := g.resolve(opts)
		if err != nil {
			yield(Sentence{}, err)
			return
		}
		for range amount {
			sent, err := g.sentence(r)
			if !yield(sent, err) || err != nil {
				return
			}
			r.incipit = false
		}
	}
}

// GenerateParagraph returns one paragraph of sentences joined by spaces. Its
// length is drawn from the paragraph distribution unless WithParagraphLen is
// given. WithIncipit applies to the first sentence only.
func (g *Generator) GenerateParagraph(opts ...GenerateOption) (Paragraph, error) {
	r, err := g.resolve(opts)
	if err != nil {
		return Paragraph{}, err
	}
	return g.paragraph(r)
}

func (g *Generator) paragraph(r resolved) (Paragraph, error) {
	count := r.paragraphLen
	if count == 0 {
		count = g.drawLength(r.stats.ParagraphMean, r.stats.ParagraphSigma)
	}

	texts := make([]string, 0, min(count, 16))
	words := 0
	for range count {
		sent, err := g.sentence(r)
		if err != nil {
			return Paragraph{}, err
		}
		texts = append(texts, sent.Text)
		words += sent.Words
		r.incipit = false
	}
	return Paragraph{Sentences: count, Words: words, Text: strings.Join(texts, " ")}, nil
}

// GenerateParagraphs yields amount paragraphs. Only the first one honours
// WithIncipit.
func (g *Generator) GenerateParagraphs(amount int, opts ...GenerateOption) iter.Seq2[Paragraph, error] {
	return func(yield func(Paragraph, error) bool) {
		r, err := g.resolve(opts)
		if err != nil {
			yield(Paragraph{}, err)
			return
		}
		for range amount {
			par, err := g.paragraph(r)
			if !yield(par, err) || err != nil {
				return
			}
			r.incipit = false
		}
	}
}

// Sentences collects the text of amount sentences.
func (g *Generator) Sentences(amount int, opts ...GenerateOption) ([]string, error) {
	out := make([]string, 0, max(amount, 0))
	for sent, err := range g.GenerateSentences(amount, opts...) {
		if err != nil {
			return nil, err
		}
		out = append(out, sent.Text)
	}
	return out, nil
}

// Paragraphs collects the text of amount paragraphs.
func (g *Generator) Paragraphs(amount int, opts ...GenerateOption) ([]string, error) {
	out := make([]string, 0, max(amount, 0))
	for par, err := range g.GenerateParagraphs(amount, opts...) {
		if err != nil {
			return nil, err
		}
		out = append(out, par.Text)
	}
	return out, nil
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
