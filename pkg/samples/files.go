package samples

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/CTAG07/loremipsum/pkg/lorem"
)

// Ingredient file names. A sample stored as files, in a directory or inside
// an archive, is exactly these four UTF-8 files.
const (
	TextFile               = "sample.txt"
	LexiconFile            = "lexicon.txt"
	WordDelimitersFile     = "word_delimiters.txt"
	SentenceDelimitersFile = "sentence_delimiters.txt"
)

// FileNames lists the ingredient files in a stable order.
var FileNames = []string{TextFile, LexiconFile, WordDelimitersFile, SentenceDelimitersFile}

// ErrIncomplete is returned when an ingredient file is missing.
var ErrIncomplete = errors.New("samples: incomplete ingredient files")

// FromFiles assembles ingredients from file contents keyed by file name.
// The lexicon file holds whitespace separated words, usually one per line.
func FromFiles(files map[string][]byte) (lorem.Ingredients, error) {
	for _, name := range FileNames {
		if _, ok := files[name]; !ok {
			return lorem.Ingredients{}, fmt.Errorf("%w: %s not found", ErrIncomplete, name)
		}
	}
	return lorem.Ingredients{
		Text:               string(files[TextFile]),
		Lexicon:            strings.Fields(string(files[LexiconFile])),
		WordDelimiters:     strings.TrimRight(string(files[WordDelimitersFile]), "\r\n"),
		SentenceDelimiters: strings.TrimRight(string(files[SentenceDelimitersFile]), "\r\n"),
	}, nil
}

// ToFiles renders ingredients as file contents keyed by file name.
func ToFiles(in lorem.Ingredients) map[string][]byte {
	lexicon := strings.Join(in.Lexicon, "\n")
	if lexicon != "" {
		lexicon += "\n"
	}
	return map[string][]byte{
		TextFile:               []byte(in.Text),
		LexiconFile:            []byte(lexicon),
		WordDelimitersFile:     []byte(in.WordDelimiters),
		SentenceDelimitersFile: []byte(in.SentenceDelimiters),
	}
}

// ReadFS reads the ingredient files found in dir of fsys.
func ReadFS(fsys fs.FS, dir string) (lorem.Ingredients, error) {
	files := make(map[string][]byte, len(FileNames))
	for _, name := range FileNames {
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			return lorem.Ingredients{}, fmt.Errorf("%w: %s not found in %s", ErrIncomplete, name, dir)
		}
		if err != nil {
			return lorem.Ingredients{}, fmt.Errorf("failed to read %s: %w", name, err)
		}
		files[name] = data
	}
	return FromFiles(files)
}
