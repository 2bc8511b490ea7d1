package lorem

import "errors"

var (
	// ErrInvalidLexicon indicates the lexicon yields no usable word.
	ErrInvalidLexicon = errors.New("lorem: invalid lexicon")
	// ErrInvalidSample indicates the sample text yields no chain entry.
	ErrInvalidSample = errors.New("lorem: invalid sample text")
	// ErrInvalidConfig indicates a rejected statistic or length override.
	ErrInvalidConfig = errors.New("lorem: invalid configuration")
	// ErrInternal indicates a broken model invariant found while generating.
	// A sample built by NewSample or Thaw never produces it.
	ErrInternal = errors.New("lorem: internal invariant violation")
)
