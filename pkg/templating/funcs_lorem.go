package templating

import (
	"strings"

	"github.com/CTAG07/loremipsum/pkg/lorem"
)

// These functions run while Execute holds the read lock, so they read
// tm.gen and tm.config directly.

// loremWord returns one word. An optional length asks for a word of exactly
// that many characters; the result is empty when the lexicon has none.
func (tm *TemplateManager) loremWord(length ...int) string {
	n := 0
	if len(length) > 0 {
		n = length[0]
	}
	word, _ := tm.gen.GenerateWord(n)
	return word
}

// loremWords returns count space separated words of random length.
func (tm *TemplateManager) loremWords(count int) string {
	count = clamp(count, tm.config.MaxWords)
	return strings.Join(tm.gen.Words(count, 0), " ")
}

func (tm *TemplateManager) loremSentence() (string, error) {
	s, err := tm.gen.GenerateSentence()
	if err != nil {
		return "", err
	}
	return s.Text, nil
}

// loremSentences returns count sentences joined by spaces.
func (tm *TemplateManager) loremSentences(count int) (string, error) {
	count = clamp(count, tm.config.MaxSentences)
	sentences, err := tm.gen.Sentences(count)
	if err != nil {
		return "", err
	}
	return strings.Join(sentences, " "), nil
}

func (tm *TemplateManager) loremParagraph() (string, error) {
	p, err := tm.gen.GenerateParagraph()
	if err != nil {
		return "", err
	}
	return p.Text, nil
}

// loremParagraphs returns count paragraphs for ranging over. Passing true
// opens the first one with the sample's incipit.
func (tm *TemplateManager) loremParagraphs(count int, incipit ...bool) ([]string, error) {
	count = clamp(count, tm.config.MaxParagraphs)
	var opts []lorem.GenerateOption
	if len(incipit) > 0 && incipit[0] {
		opts = append(opts, lorem.WithIncipit(true))
	}
	return tm.gen.Paragraphs(count, opts...)
}

// loremIncipit returns the sample's opening sentence.
func (tm *TemplateManager) loremIncipit() string {
	return tm.gen.Sample().Incipit()
}
