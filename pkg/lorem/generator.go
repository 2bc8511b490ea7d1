package lorem

import (
	"io"
	"iter"
	"log/slog"
	"math/rand/v2"
	"sync"
)

// Generator produces words, sentences and paragraphs from a Sample.
// A Generator is safe for concurrent use.
type Generator struct {
	sample *Sample
	rng    *rand.Rand
	logger *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithSource makes the generator draw from src. Seeding src makes the output
// reproducible for a given sample and call sequence.
func WithSource(src rand.Source) Option {
	return func(g *Generator) {
		g.rng = rand.New(&lockedSource{src: src})
	}
}

// WithSeed is shorthand for WithSource with a PCG source seeded from seed.
func WithSeed(seed uint64) Option {
	return WithSource(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// WithLogger sets the generator's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGenerator returns a generator over sample, which must not be nil.
func NewGenerator(sample *Sample, opts ...Option) *Generator {
	g := &Generator{
		sample: sample,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(&lockedSource{src: rand.NewPCG(rand.Uint64(), rand.Uint64())})
	}
	return g
}

// SetLogger replaces the generator's logger.
func (g *Generator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// Sample returns the sample the generator draws from.
func (g *Generator) Sample() *Sample {
	return g.sample
}

// WithDefaults returns a generator over a copy of the sample with some
// statistics replaced. The new generator shares the receiver's random
// source and logger.
func (g *Generator) WithDefaults(overrides ...StatOverride) (*Generator, error) {
	derived, err := g.sample.WithOverrides(overrides...)
	if err != nil {
		return nil, err
	}
	return &Generator{sample: derived, rng: g.rng, logger: g.logger}, nil
}

// GenerateWord returns a random lexicon word. With length > 0 the word is
// drawn from the words of exactly that many characters, and ok is false
// when there is none. With length <= 0 a length is picked uniformly among
// the available ones first, then a word of that length.
func (g *Generator) GenerateWord(length int) (word string, ok bool) {
	s := g.sample
	if length <= 0 {
		length = s.lengths[g.rng.IntN(len(s.lengths))]
	}
	bucket := s.dictionary[length]
	if len(bucket) == 0 {
		return "", false
	}
	return bucket[g.rng.IntN(len(bucket))], true
}

// GenerateWords yields amount words as GenerateWord would, yielding the
// empty string for every miss. The sequence may be ranged over again for a
// fresh draw.
func (g *Generator) GenerateWords(amount, length int) iter.Seq[string] {
	return func(yield func(string) bool) {
		for range amount {
			word, _ := g.GenerateWord(length)
			if !yield(word) {
				return
			}
		}
	}
}

// Words collects amount words from GenerateWords.
func (g *Generator) Words(amount, length int) []string {
	words := make([]string, 0, max(amount, 0))
	for w := range g.GenerateWords(amount, length) {
		words = append(words, w)
	}
	return words
}

type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}
