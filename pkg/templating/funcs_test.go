package templating

import (
	"bytes"
	"slices"
	"strings"
	"testing"
	"unicode/utf8"
)

func render(t *testing.T, tm *TemplateManager, content string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := tm.ExecuteTemplateString(&buf, content, nil); err != nil {
		t.Fatalf("ExecuteTemplateString(%q) failed: %v", content, err)
	}
	return buf.String()
}

// TestTemplateFunctions validates each category of template functions.
func TestTemplateFunctions(t *testing.T) {
	tm := setupTestManager(t)

	t.Run("LoremFuncs", func(t *testing.T) {
		word := render(t, tm, "{{loremWord}}")
		if word == "" || strings.ContainsAny(word, " \n") {
			t.Errorf("loremWord returned '%s'", word)
		}
		if w := render(t, tm, "{{loremWord 5}}"); utf8.RuneCountInString(w) != 5 {
			t.Errorf("loremWord 5 returned '%s'", w)
		}
		if n := len(strings.Fields(render(t, tm, "{{loremWords 7}}"))); n != 7 {
			t.Errorf("loremWords 7 returned %d words", n)
		}

		sentence := render(t, tm, "{{loremSentence}}")
		if !strings.HasSuffix(sentence, ".") {
			t.Errorf("loremSentence returned '%s'", sentence)
		}
		if n := strings.Count(render(t, tm, "{{loremSentences 3}}"), "."); n != 3 {
			t.Errorf("loremSentences 3 returned %d sentences", n)
		}
		if p := render(t, tm, "{{loremParagraph}}"); !strings.HasSuffix(p, ".") {
			t.Errorf("loremParagraph returned '%s'", p)
		}

		out := render(t, tm, `{{range loremParagraphs 2 true}}<p>{{.}}</p>{{end}}`)
		if strings.Count(out, "<p>") != 2 {
			t.Errorf("loremParagraphs 2 rendered %q", out)
		}
		if !strings.HasPrefix(out, "<p>Lorem ipsum") {
			t.Errorf("loremParagraphs with incipit rendered %q", out)
		}

		incipit := render(t, tm, "{{loremIncipit}}")
		if incipit != "Lorem ipsum dolor sit amet, consectetur adipiscing elit." {
			t.Errorf("loremIncipit returned '%s'", incipit)
		}
	})

	t.Run("Limits", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxWords, cfg.MaxSentences, cfg.MaxParagraphs, cfg.MaxRepeat = 3, 2, 1, 4
		tm.SetConfig(&cfg)
		t.Cleanup(func() {
			def := DefaultConfig()
			tm.SetConfig(&def)
		})

		if n := len(strings.Fields(render(t, tm, "{{loremWords 1000}}"))); n != 3 {
			t.Errorf("loremWords did not respect MaxWords, got %d words", n)
		}
		if n := strings.Count(render(t, tm, "{{loremSentences 1000}}"), "."); n != 2 {
			t.Errorf("loremSentences did not respect MaxSentences, got %d", n)
		}
		if n := strings.Count(render(t, tm, "{{range loremParagraphs 1000}}<p>{{end}}"), "<p>"); n != 1 {
			t.Errorf("loremParagraphs did not respect MaxParagraphs, got %d", n)
		}
		if out := render(t, tm, "{{range repeat 1000}}x{{end}}"); out != "xxxx" {
			t.Errorf("repeat did not respect MaxRepeat, got '%s'", out)
		}
		if out := render(t, tm, "{{loremWords -5}}"); out != "" {
			t.Errorf("loremWords with a negative count returned '%s'", out)
		}
	})

	t.Run("LogicFuncs", func(t *testing.T) {
		if out := render(t, tm, "{{range repeat 3}}{{.}}{{end}}"); out != "012" {
			t.Errorf("repeat 3 rendered '%s'", out)
		}
		choices := []string{"a", "b", "c"}
		if c := render(t, tm, `{{randomChoice (list "a" "b" "c")}}`); !slices.Contains(choices, c) {
			t.Errorf("randomChoice returned '%s'", c)
		}
		if randomChoice(nil) != nil || randomChoice(42) != nil || randomChoice([]int{}) != nil {
			t.Error("randomChoice should return nil for nil, non-slice and empty input")
		}
		for i := 0; i < 100; i++ {
			if n := randomInt(3, 6); n < 3 || n >= 6 {
				t.Fatalf("randomInt(3, 6) returned %d", n)
			}
		}
		if randomInt(5, 5) != 5 {
			t.Error("randomInt with an empty range should return min")
		}
	})

	t.Run("TextFuncs", func(t *testing.T) {
		testCases := []struct {
			content, want string
		}{
			{`{{title "lorem ipsum dolor"}}`, "Lorem Ipsum Dolor"},
			{`{{join ", " (loremParagraphs 0)}}`, ""},
			{`{{truncate 11 "lorem ipsum dolor"}}`, "lorem ipsum..."},
			{`{{truncate 8 "lorem, ipsum"}}`, "lorem..."},
			{`{{truncate 3 "lorem"}}`, "lor..."},
			{`{{truncate 20 "lorem"}}`, "lorem"},
			{`{{truncate 0 "lorem"}}`, ""},
			{"{{add 2 3}}", "5"},
			{"{{sub 2 3}}", "-1"},
			{"{{mult 4 3}}", "12"},
			{"{{div 7 2}}", "3"},
			{"{{div 7 0}}", "0"},
			{"{{mod 7 3}}", "1"},
			{"{{mod 7 0}}", "0"},
			{"{{inc 1}}", "2"},
			{"{{dec 1}}", "0"},
		}
		for _, tc := range testCases {
			if got := render(t, tm, tc.content); got != tc.want {
				t.Errorf("%s rendered '%s', want '%s'", tc.content, got, tc.want)
			}
		}
	})
}
