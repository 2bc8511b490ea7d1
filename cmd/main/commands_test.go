package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CTAG07/loremipsum/pkg/lorem"
	"github.com/CTAG07/loremipsum/pkg/samples"
	"github.com/CTAG07/loremipsum/pkg/store"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, stderr, err := execute(t, args...)
	require.NoError(t, err, "stderr: %s", stderr)
	return out
}

func TestWordCommand(t *testing.T) {
	out := mustExecute(t, "word", "--length", "5")
	assert.Len(t, strings.TrimSpace(out), 5)

	_, _, err := execute(t, "word", "-l", "400")
	assert.Error(t, err)
}

func TestWordsCommand(t *testing.T) {
	out := mustExecute(t, "words", "4", "--seed", "9")
	assert.Len(t, strings.Fields(out), 4)
	assert.Equal(t, out, mustExecute(t, "words", "4", "--seed", "9"))

	var words []string
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, "words", "0", "--json")), &words))
	assert.Empty(t, words)
	assert.NotNil(t, words)

	_, _, err := execute(t, "words", "-3")
	assert.Error(t, err)
	_, _, err = execute(t, "words")
	assert.Error(t, err)
}

func TestSentenceCommands(t *testing.T) {
	out := mustExecute(t, "sentence", "--incipit", "--sentence-len", "8")
	assert.Equal(t, incipit+"\n", out)

	out = mustExecute(t, "sentences", "3", "--sentence-len", "2")
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)

	var s lorem.Sentence
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, "sentence", "--json", "--sentence-len", "5")), &s))
	assert.Equal(t, 5, s.Words)

	_, stderr, err := execute(t, "sentences", "2", "--sentence-len", "3", "--stats")
	require.NoError(t, err)
	assert.Equal(t, "2 sentences, 6 words\n", stderr)

	_, _, err = execute(t, "sentence", "--sentence-len", "0")
	assert.Error(t, err)
	_, _, err = execute(t, "sentence", "--sentence-len", "1000000000")
	assert.Error(t, err)
}

func TestParagraphCommands(t *testing.T) {
	out := mustExecute(t, "paragraphs", "3", "--incipit", "--seed", "5")
	assert.True(t, strings.HasPrefix(out, "Lorem ipsum"), "output %q", out)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n\n"), 3)

	var p lorem.Paragraph
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, "paragraph", "--json",
		"--paragraph-len", "2", "--sentence-len", "3")), &p))
	assert.Equal(t, 2, p.Sentences)
	assert.Equal(t, 6, p.Words)

	assert.Empty(t, mustExecute(t, "paragraphs", "0"))
}

func TestUnknownSample(t *testing.T) {
	_, _, err := execute(t, "word", "--sample", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSampleInfoAndConvert(t *testing.T) {
	dir := t.TempDir()

	var builtin sampleSummary
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, "sample", "info")), &builtin))
	assert.Equal(t, incipit, builtin.Incipit)
	assert.Positive(t, builtin.LexiconSize)

	for _, dst := range []string{"copy.json", "copy.json.gz", "copy.tar.xz", "copy"} {
		t.Run(dst, func(t *testing.T) {
			path := filepath.Join(dir, dst)
			out := mustExecute(t, "sample", "convert", samples.DefaultName, path)
			assert.Contains(t, out, "Converted")

			var converted sampleSummary
			require.NoError(t, json.Unmarshal([]byte(mustExecute(t, "sample", "info", path)), &converted))
			assert.Equal(t, builtin.Hash, converted.Hash)

			assert.NotEmpty(t, mustExecute(t, "sentence", "--sample", path))
		})
	}
}

func TestSampleStoreCommands(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "samples.db")

	var list struct {
		Builtin []string           `json:"builtin"`
		Stored  []store.SampleInfo `json:"stored"`
	}
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, "sample", "list", "--json", "--db", dbPath)), &list))
	assert.Equal(t, samples.Names(), list.Builtin)
	assert.Empty(t, list.Stored)

	out := mustExecute(t, "sample", "save", "mine", "--db", dbPath)
	assert.Contains(t, out, `"mine"`)

	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, "sample", "list", "--json", "--db", dbPath)), &list))
	require.Len(t, list.Stored, 1)
	assert.Equal(t, "mine", list.Stored[0].Name)

	table := mustExecute(t, "sample", "list", "--db", dbPath)
	assert.Contains(t, table, "NAME")
	assert.Contains(t, table, "mine")

	// The stored copy is reachable through the sqlite scheme.
	var builtin, stored sampleSummary
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, "sample", "info")), &builtin))
	url := "sqlite://" + filepath.ToSlash(dbPath) + "?name=mine"
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, "sample", "info", url)), &stored))
	assert.Equal(t, builtin.Hash, stored.Hash)
	assert.Len(t, strings.Fields(mustExecute(t, "words", "5", "--sample", url)), 5)

	mustExecute(t, "sample", "remove", "mine", "--store", "--db", dbPath)
	_, _, err := execute(t, "sample", "remove", "mine", "--store", "--db", dbPath)
	assert.Error(t, err)
}

func TestSampleRemoveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "copy.json")
	mustExecute(t, "sample", "convert", samples.DefaultName, path)
	mustExecute(t, "sample", "remove", path)

	_, _, err := execute(t, "sample", "info", path)
	assert.Error(t, err)
}
