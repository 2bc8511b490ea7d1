package main

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CTAG07/loremipsum/pkg/lorem"
	"github.com/CTAG07/loremipsum/pkg/samples"
	"github.com/CTAG07/loremipsum/pkg/store"
)

var tinyIngredients = lorem.Ingredients{
	Text:               "Aa bbb, cc. Ddd ee ff gggg. Hh ii.\n\nJjj kk ll. Mm nnn oo.",
	Lexicon:            []string{"xx", "yyy", "zzzz", "ab", "cde"},
	WordDelimiters:     ",.",
	SentenceDelimiters: ".",
}

func TestSamplesCreateAndGet(t *testing.T) {
	env := newTestEnv(t)

	rr := env.doJSON(t, http.MethodPost, "/api/samples?name=tiny", tinyIngredients)
	requireStatus(t, rr, http.StatusCreated)
	info := decode[store.SampleInfo](t, rr)
	assert.Equal(t, "tiny", info.Name)
	assert.Equal(t, 5, info.LexiconSize)

	rr = env.do(t, http.MethodGet, "/api/samples/tiny", nil)
	requireStatus(t, rr, http.StatusOK)
	detail := decode[sampleDetail](t, rr)
	assert.Equal(t, "store", detail.Source)
	require.NotNil(t, detail.Info)
	assert.Equal(t, info.Hash, detail.Info.Hash)

	rr = env.do(t, http.MethodGet, "/api/samples/"+samples.DefaultName, nil)
	requireStatus(t, rr, http.StatusOK)
	detail = decode[sampleDetail](t, rr)
	assert.Equal(t, "builtin", detail.Source)
	assert.Nil(t, detail.Info)
	assert.Equal(t, incipit, detail.Summary.Incipit)

	// Stored samples can drive generation.
	rr = env.do(t, http.MethodGet, "/api/lorem/words?amount=3&sample=tiny&length=4", nil)
	requireStatus(t, rr, http.StatusOK)
	assert.Equal(t, []string{"zzzz", "zzzz", "zzzz"}, decode[map[string][]string](t, rr)["words"])

	rr = env.do(t, http.MethodGet, "/api/samples/missing", nil)
	requireStatus(t, rr, http.StatusNotFound)
}

func TestSamplesCreateRejects(t *testing.T) {
	env := newTestEnv(t)

	rr := env.doJSON(t, http.MethodPost, "/api/samples", tinyIngredients)
	requireStatus(t, rr, http.StatusBadRequest)

	rr = env.doJSON(t, http.MethodPost, "/api/samples?name="+samples.DefaultName, tinyIngredients)
	requireStatus(t, rr, http.StatusConflict)

	rr = env.do(t, http.MethodPost, "/api/samples?name=bad", bytes.NewBufferString("{"))
	requireStatus(t, rr, http.StatusBadRequest)

	rr = env.doJSON(t, http.MethodPost, "/api/samples?name=empty", lorem.Ingredients{})
	requireStatus(t, rr, http.StatusBadRequest)
}

func TestSamplesListAndDelete(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/samples", nil)
	requireStatus(t, rr, http.StatusOK)
	assert.JSONEq(t, `{"builtin":["loremipsum"],"stored":[]}`, rr.Body.String())

	requireStatus(t, env.doJSON(t, http.MethodPost, "/api/samples?name=tiny", tinyIngredients), http.StatusCreated)

	rr = env.do(t, http.MethodGet, "/api/samples", nil)
	requireStatus(t, rr, http.StatusOK)
	list := decode[struct {
		Builtin []string           `json:"builtin"`
		Stored  []store.SampleInfo `json:"stored"`
	}](t, rr)
	require.Len(t, list.Stored, 1)
	assert.Equal(t, "tiny", list.Stored[0].Name)

	rr = env.do(t, http.MethodGet, "/api/samples/stats", nil)
	requireStatus(t, rr, http.StatusOK)

	requireStatus(t, env.do(t, http.MethodDelete, "/api/samples/"+samples.DefaultName, nil), http.StatusBadRequest)
	requireStatus(t, env.do(t, http.MethodDelete, "/api/samples/tiny", nil), http.StatusNoContent)
	requireStatus(t, env.do(t, http.MethodDelete, "/api/samples/tiny", nil), http.StatusNotFound)
}

func TestSamplesExportImport(t *testing.T) {
	env := newTestEnv(t)
	requireStatus(t, env.doJSON(t, http.MethodPost, "/api/samples?name=tiny", tinyIngredients), http.StatusCreated)

	rr := env.do(t, http.MethodGet, "/api/samples/tiny/export", nil)
	requireStatus(t, rr, http.StatusOK)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "tiny.json")
	exported := rr.Body.Bytes()

	requireStatus(t, env.do(t, http.MethodDelete, "/api/samples/tiny", nil), http.StatusNoContent)

	rr = env.do(t, http.MethodPost, "/api/samples/import", bytes.NewReader(exported))
	requireStatus(t, rr, http.StatusCreated)
	assert.Equal(t, "tiny", decode[map[string]string](t, rr)["name"])
	requireStatus(t, env.do(t, http.MethodGet, "/api/samples/tiny", nil), http.StatusOK)

	// Built-in samples export in the same format.
	rr = env.do(t, http.MethodGet, "/api/samples/"+samples.DefaultName+"/export", nil)
	requireStatus(t, rr, http.StatusOK)
	doc := decode[store.ExportedSample](t, rr)
	assert.Equal(t, samples.DefaultName, doc.Name)

	rr = env.do(t, http.MethodGet, "/api/samples/missing/export", nil)
	requireStatus(t, rr, http.StatusNotFound)
	assert.Empty(t, rr.Header().Get("Content-Disposition"))

	rr = env.do(t, http.MethodPost, "/api/samples/import", bytes.NewBufferString("not json"))
	requireStatus(t, rr, http.StatusBadRequest)
}
