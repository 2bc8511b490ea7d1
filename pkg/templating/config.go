package templating

// TemplateConfig holds the safety limits applied to template functions.
type TemplateConfig struct {
	// MaxWords caps the count passed to loremWords.
	MaxWords int `json:"max_words" yaml:"max_words"`

	// MaxSentences caps the count passed to loremSentences.
	MaxSentences int `json:"max_sentences" yaml:"max_sentences"`

	// MaxParagraphs caps the count passed to loremParagraphs.
	MaxParagraphs int `json:"max_paragraphs" yaml:"max_paragraphs"`

	// MaxRepeat caps the count passed to repeat, so a template cannot loop
	// forever over a huge range.
	MaxRepeat int `json:"max_repeat" yaml:"max_repeat"`
}

// DefaultConfig returns a TemplateConfig with safe default values.
func DefaultConfig() TemplateConfig {
	return TemplateConfig{
		MaxWords:      500,
		MaxSentences:  100,
		MaxParagraphs: 50,
		MaxRepeat:     1000,
	}
}

// clamp limits n to [0, limit]. A non-positive limit disables the cap.
func clamp(n, limit int) int {
	if n < 0 {
		return 0
	}
	if limit > 0 && n > limit {
		return limit
	}
	return n
}
