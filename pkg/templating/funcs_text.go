package templating

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// title upper-cases the first letter of every word, for headings built from
// loremWords.
func title(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// join is strings.Join with the separator first, as in
// {{join " / " (loremParagraphs 2)}}.
func join(sep string, elems []string) string {
	return strings.Join(elems, sep)
}

// truncate cuts s to at most n runes, ending on a word boundary when one
// exists, and appends "..." when anything was cut.
func truncate(n int, s string) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	cut := string(runes[:n])
	if !unicode.IsSpace(runes[n]) {
		if i := strings.LastIndexFunc(cut, unicode.IsSpace); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRightFunc(cut, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}) + "..."
}

func add(a, b int) int  { return a + b }
func sub(a, b int) int  { return a - b }
func mult(a, b int) int { return a * b }
func inc(i int) int     { return i + 1 }
func dec(i int) int     { return i - 1 }

// div is integer division. Dividing by zero yields 0.
func div(a, b int) int {
	if b == 0 {
		return 0
	}
	return a / b
}

// mod yields 0 when b is 0.
func mod(a, b int) int {
	if b == 0 {
		return 0
	}
	return a % b
}
