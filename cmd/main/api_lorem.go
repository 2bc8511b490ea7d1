package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/CTAG07/loremipsum/pkg/lorem"
	"github.com/CTAG07/loremipsum/pkg/store"
)

// LoremAPI serves generated text. Every endpoint accepts sample=<name> and
// seed=<uint64>; format=text returns plain text instead of JSON.
type LoremAPI struct {
	resolver *sampleResolver
	cm       *ConfigManager
	logger   *slog.Logger
}

// NewLoremAPI creates a new instance of the LoremAPI.
func NewLoremAPI(resolver *sampleResolver, cm *ConfigManager, logger *slog.Logger) *LoremAPI {
	return &LoremAPI{resolver: resolver, cm: cm, logger: logger}
}

// RegisterRoutes sets up the routing for all /api/lorem endpoints.
func (a *LoremAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/lorem/word", a.handleWord)
	mux.HandleFunc("GET /api/lorem/words", a.handleWords)
	mux.HandleFunc("GET /api/lorem/sentence", a.handleSentence)
	mux.HandleFunc("GET /api/lorem/sentences", a.handleSentences)
	mux.HandleFunc("GET /api/lorem/paragraph", a.handleParagraph)
	mux.HandleFunc("GET /api/lorem/paragraphs", a.handleParagraphs)
}

// badRequest marks errors caused by the query string.
type badRequest struct{ error }

func queryInt(q url.Values, key string) (int, bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, badRequest{fmt.Errorf("query parameter '%s' must be an integer", key)}
	}
	return n, true, nil
}

func queryFloat(q url.Values, key string) (float64, bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, badRequest{fmt.Errorf("query parameter '%s' must be a number", key)}
	}
	return f, true, nil
}

// generator resolves the sample and seed of a request.
func (a *LoremAPI) generator(r *http.Request) (*lorem.Generator, error) {
	q := r.URL.Query()
	sample, err := a.resolver.resolve(r.Context(), q.Get("sample"))
	if err != nil {
		return nil, err
	}
	opts := []lorem.Option{lorem.WithLogger(a.logger)}
	if raw := q.Get("seed"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, badRequest{errors.New("query parameter 'seed' must be an unsigned integer")}
		}
		opts = append(opts, lorem.WithSeed(seed))
	}
	return lorem.NewGenerator(sample, opts...), nil
}

// amount reads the required amount parameter, capped by the configured maximum.
func (a *LoremAPI) amount(q url.Values) (int, error) {
	n, ok, err := queryInt(q, "amount")
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, badRequest{errors.New("query parameter 'amount' is required")}
	}
	limit := a.cm.Get().Generation.MaxAmount
	if n < 0 || n > limit {
		return 0, badRequest{fmt.Errorf("amount must be between 0 and %d", limit)}
	}
	return n, nil
}

// textOptions maps query parameters onto generation options. Lengths and
// statistics are checked against the configured limits.
func (a *LoremAPI) textOptions(q url.Values) ([]lorem.GenerateOption, error) {
	gen := a.cm.Get().Generation
	var opts []lorem.GenerateOption
	if raw := q.Get("incipit"); raw != "" {
		on, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, badRequest{errors.New("query parameter 'incipit' must be a boolean")}
		}
		opts = append(opts, lorem.WithIncipit(on))
	}

	ints := []struct {
		key   string
		limit int
		opt   func(int) lorem.GenerateOption
	}{
		{"sentence_len", gen.MaxSentenceLen, lorem.WithSentenceLen},
		{"paragraph_len", gen.MaxParagraphLen, lorem.WithParagraphLen},
	}
	for _, p := range ints {
		n, ok, err := queryInt(q, p.key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if n < 1 || n > p.limit {
			return nil, badRequest{fmt.Errorf("%s must be between 1 and %d", p.key, p.limit)}
		}
		opts = append(opts, p.opt(n))
	}

	floats := []struct {
		key   string
		limit int
		opt   func(float64) lorem.GenerateOption
	}{
		{"sentence_mean", gen.MaxSentenceLen, lorem.WithSentenceMean},
		{"sentence_sigma", gen.MaxSentenceLen, lorem.WithSentenceSigma},
		{"paragraph_mean", gen.MaxParagraphLen, lorem.WithParagraphMean},
		{"paragraph_sigma", gen.MaxParagraphLen, lorem.WithParagraphSigma},
	}
	for _, p := range floats {
		f, ok, err := queryFloat(q, p.key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		// Negative and non-finite values are left to the generator to reject.
		if f > float64(p.limit) {
			return nil, badRequest{fmt.Errorf("%s must not exceed %d", p.key, p.limit)}
		}
		opts = append(opts, p.opt(f))
	}
	return opts, nil
}

// fail maps an error onto a status code and writes it.
func (a *LoremAPI) fail(w http.ResponseWriter, r *http.Request, err error) {
	var br badRequest
	switch {
	case errors.As(err, &br), errors.Is(err, lorem.ErrInvalidConfig):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrSampleNotFound):
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("Sample '%s' not found", r.URL.Query().Get("sample")))
	default:
		a.logger.Error("Text generation failed",
			slog.String("request_id", requestID(r.Context())),
			slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Text generation failed: %v", err))
	}
}

func wantsText(r *http.Request) bool {
	return r.URL.Query().Get("format") == "text"
}

func respondWithText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(text + "\n"))
}

func (a *LoremAPI) handleWord(w http.ResponseWriter, r *http.Request) {
	length, _, err := queryInt(r.URL.Query(), "length")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	gen, err := a.generator(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	word, ok := gen.GenerateWord(length)
	if !ok {
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("No word of length %d in the sample", length))
		return
	}
	if wantsText(r) {
		respondWithText(w, word)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"word": word})
}

func (a *LoremAPI) handleWords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := a.amount(q)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	length, _, err := queryInt(q, "length")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	gen, err := a.generator(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	words := gen.Words(amount, length)
	if wantsText(r) {
		respondWithText(w, strings.Join(words, " "))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string][]string{"words": words})
}

func (a *LoremAPI) handleSentence(w http.ResponseWriter, r *http.Request) {
	opts, err := a.textOptions(r.URL.Query())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	gen, err := a.generator(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	s, err := gen.GenerateSentence(opts...)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if wantsText(r) {
		respondWithText(w, s.Text)
		return
	}
	respondWithJSON(w, http.StatusOK, s)
}

func (a *LoremAPI) handleSentences(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := a.amount(q)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	opts, err := a.textOptions(q)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	gen, err := a.generator(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]lorem.Sentence, 0, amount)
	for s, err := range gen.GenerateSentences(amount, opts...) {
		if err != nil {
			a.fail(w, r, err)
			return
		}
		out = append(out, s)
	}
	if wantsText(r) {
		texts := make([]string, len(out))
		for i, s := range out {
			texts[i] = s.Text
		}
		respondWithText(w, strings.Join(texts, "\n"))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string][]lorem.Sentence{"sentences": out})
}

func (a *LoremAPI) handleParagraph(w http.ResponseWriter, r *http.Request) {
	opts, err := a.textOptions(r.URL.Query())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	gen, err := a.generator(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	p, err := gen.GenerateParagraph(opts...)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if wantsText(r) {
		respondWithText(w, p.Text)
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func (a *LoremAPI) handleParagraphs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := a.amount(q)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	opts, err := a.textOptions(q)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	gen, err := a.generator(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]lorem.Paragraph, 0, amount)
	for p, err := range gen.GenerateParagraphs(amount, opts...) {
		if err != nil {
			a.fail(w, r, err)
			return
		}
		out = append(out, p)
	}
	if wantsText(r) {
		texts := make([]string, len(out))
		for i, p := range out {
			texts[i] = p.Text
		}
		respondWithText(w, strings.Join(texts, "\n\n"))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string][]lorem.Paragraph{"paragraphs": out})
}
