package samples

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CTAG07/loremipsum/pkg/lorem"
	"github.com/CTAG07/loremipsum/pkg/registry"
)

func TestDefaultSample(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)

	assert.Equal(t, ",.?!", s.WordDelimiters())
	assert.Equal(t, ".?!", s.SentenceDelimiters())
	assert.Equal(t, "Lorem ipsum dolor sit amet, consectetur adipiscing elit.", s.Incipit())
	assert.Contains(t, s.Lexicon(), "lorem")

	again, err := Get(DefaultName)
	require.NoError(t, err)
	assert.Same(t, s, again, "sample is cooked once")

	st := s.Stats()
	assert.Greater(t, st.SentenceMean, 2.0)
	assert.Greater(t, st.ParagraphMean, 1.0)
}

func TestDefaultSampleGenerates(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)

	g := lorem.NewGenerator(s, lorem.WithSeed(1))
	par, err := g.GenerateParagraph(lorem.WithIncipit(true))
	require.NoError(t, err)
	assert.Regexp(t, `^Lorem ipsum`, par.Text)
	assert.GreaterOrEqual(t, par.Sentences, 2)
}

func TestRegisterAndGet(t *testing.T) {
	Register("tiny-test", lorem.Ingredients{
		Text:               "Ab cd. Ef gh.",
		Lexicon:            []string{"xx", "yy"},
		WordDelimiters:     ",.",
		SentenceDelimiters: ".",
	})
	t.Cleanup(func() { builtin.Unregister("tiny-test") })

	assert.Contains(t, Names(), "tiny_test")

	s, err := Get("tiny_test")
	require.NoError(t, err)
	assert.Equal(t, "Ab cd.", s.Incipit())

	in, err := Ingredients("tiny-test")
	require.NoError(t, err)
	assert.Equal(t, []string{"xx", "yy"}, in.Lexicon)

	_, err = Get("missing")
	assert.ErrorIs(t, err, registry.ErrNotRegistered)
}

func TestRegisterInvalidFailsOnGet(t *testing.T) {
	Register("broken", lorem.Ingredients{Text: "Ab cd.", SentenceDelimiters: "."})
	t.Cleanup(func() { builtin.Unregister("broken") })

	_, err := Get("broken")
	assert.ErrorIs(t, err, lorem.ErrInvalidLexicon)
}

func TestFiles(t *testing.T) {
	in := lorem.Ingredients{
		Text:               "Ab cd. Ef gh.",
		Lexicon:            []string{"xx", "yy", "zzz"},
		WordDelimiters:     ",.",
		SentenceDelimiters: ".",
	}
	files := ToFiles(in)
	assert.Equal(t, "xx\nyy\nzzz\n", string(files[LexiconFile]))

	back, err := FromFiles(files)
	require.NoError(t, err)
	assert.Equal(t, in, back)

	delete(files, WordDelimitersFile)
	_, err = FromFiles(files)
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestReadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"s/sample.txt":              {Data: []byte("Ab cd.\n")},
		"s/lexicon.txt":             {Data: []byte("xx\r\nyy\r\n")},
		"s/word_delimiters.txt":     {Data: []byte(",.\n")},
		"s/sentence_delimiters.txt": {Data: []byte(".\n")},
	}
	in, err := ReadFS(fsys, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"xx", "yy"}, in.Lexicon)
	assert.Equal(t, ",.", in.WordDelimiters)

	_, err = ReadFS(fsys, "other")
	assert.ErrorIs(t, err, ErrIncomplete)
}
