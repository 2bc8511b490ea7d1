package lorem

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

// Ingredients are the four raw inputs a Sample is cooked from.
type Ingredients struct {
	Text               string   `json:"text"`
	Lexicon            []string `json:"lexicon"`
	WordDelimiters     string   `json:"word_delimiters"`
	SentenceDelimiters string   `json:"sentence_delimiters"`
}

// Cook analyses the ingredients into a Sample.
func (in Ingredients) Cook() (*Sample, error) {
	return NewSample(in.Text, in.Lexicon, in.WordDelimiters, in.SentenceDelimiters)
}

// Row returns the ingredients the sample was built from. Cooking them again
// yields a sample equal to the receiver, minus any statistic overrides.
func (s *Sample) Row() Ingredients {
	return Ingredients{
		Text:               s.text,
		Lexicon:            slices.Clone(s.lexicon),
		WordDelimiters:     s.wordDelimiters,
		SentenceDelimiters: s.sentenceDelimiters,
	}
}

// FrozenChain is one chain table entry in canonical form.
type FrozenChain struct {
	Key   LengthPair `json:"key"`
	Links []Link     `json:"links"`
}

// FrozenBucket is one dictionary entry in canonical form.
type FrozenBucket struct {
	Length int      `json:"length"`
	Words  []string `json:"words"`
}

// Frozen is the canonical, order-independent form of a Sample's full state.
// Two samples with the same Frozen form are equal.
type Frozen struct {
	Ingredients
	Stats
	Incipit    string         `json:"incipit"`
	Chains     []FrozenChain  `json:"chains"`
	Starts     []LengthPair   `json:"starts"`
	Dictionary []FrozenBucket `json:"dictionary"`
}

// Freeze returns the canonical form of the sample. Chain keys, links,
// starts, dictionary lengths and bucket words are all sorted.
func (s *Sample) Freeze() Frozen {
	f := Frozen{
		Ingredients: s.Row(),
		Stats:       s.stats,
		Incipit:     s.incipit,
		Starts:      slices.Clone(s.starts),
		Chains:      make([]FrozenChain, 0, len(s.chains)),
		Dictionary:  make([]FrozenBucket, 0, len(s.dictionary)),
	}

	for key, links := range s.chains {
		sorted := slices.Clone(links)
		slices.SortFunc(sorted, compareLinks)
		f.Chains = append(f.Chains, FrozenChain{Key: key, Links: sorted})
	}
	slices.SortFunc(f.Chains, func(a, b FrozenChain) int { return comparePairs(a.Key, b.Key) })

	for _, n := range s.lengths {
		words := slices.Clone(s.dictionary[n])
		slices.Sort(words)
		f.Dictionary = append(f.Dictionary, FrozenBucket{Length: n, Words: words})
	}
	return f
}

// Thaw rebuilds a Sample from its frozen form. The state is validated the
// same way NewSample validates its result, and bucket words must match the
// length they are filed under.
func Thaw(f Frozen) (*Sample, error) {
	s := &Sample{
		text:               f.Text,
		lexicon:            slices.Clone(f.Lexicon),
		wordDelimiters:     f.WordDelimiters,
		sentenceDelimiters: f.SentenceDelimiters,
		chains:             make(map[LengthPair][]Link, len(f.Chains)),
		dictionary:         make(map[int][]string, len(f.Dictionary)),
		starts:             slices.Clone(f.Starts),
		stats:              f.Stats,
		incipit:            f.Incipit,
	}

	for _, b := range f.Dictionary {
		for _, w := range b.Words {
			if w == "" || strings.ContainsFunc(w, unicode.IsSpace) {
				return nil, fmt.Errorf("%w: malformed word %q", ErrInvalidLexicon, w)
			}
			if utf8.RuneCountInString(w) != b.Length {
				return nil, fmt.Errorf("%w: word %q filed under length %d", ErrInvalidLexicon, w, b.Length)
			}
			if !slices.Contains(s.dictionary[b.Length], w) {
				s.dictionary[b.Length] = append(s.dictionary[b.Length], w)
			}
		}
	}
	if len(s.dictionary) == 0 {
		return nil, fmt.Errorf("%w: no word found", ErrInvalidLexicon)
	}

	for _, c := range f.Chains {
		if len(c.Links) == 0 {
			continue
		}
		s.chains[c.Key] = append(s.chains[c.Key], c.Links...)
	}
	if len(s.chains) == 0 {
		return nil, fmt.Errorf("%w: no chain entry", ErrInvalidSample)
	}
	if s.sentenceDelimiters == "" {
		return nil, fmt.Errorf("%w: no sentence delimiter given", ErrInvalidSample)
	}
	if err := s.stats.validate(); err != nil {
		return nil, err
	}

	s.index()
	return s, nil
}

// MarshalJSON encodes the sample in its frozen form.
func (s *Sample) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Freeze())
}

// UnmarshalJSON decodes and thaws a frozen sample.
func (s *Sample) UnmarshalJSON(data []byte) error {
	var f Frozen
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	thawed, err := Thaw(f)
	if err != nil {
		return err
	}
	*s = *thawed
	return nil
}

// canonical is the byte form used for equality and hashing.
func (s *Sample) canonical() []byte {
	// Statistics are validated finite, so encoding cannot fail.
	data, _ := json.Marshal(s.Freeze())
	return data
}

// Equal reports whether two samples hold the same state.
func (s *Sample) Equal(other *Sample) bool {
	if s == nil || other == nil {
		return s == other
	}
	return bytes.Equal(s.canonical(), other.canonical())
}

// Hash returns a digest of the sample's canonical form. Equal samples hash
// equally.
func (s *Sample) Hash() uint64 {
	return xxhash.Sum64(s.canonical())
}
