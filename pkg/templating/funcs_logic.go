package templating

import (
	"math/rand/v2"
	"reflect"
)

// repeat returns the integers 0 to count-1, capped by MaxRepeat.
func (tm *TemplateManager) repeat(count int) []int {
	count = clamp(count, tm.config.MaxRepeat)
	s := make([]int, count)
	for i := range s {
		s[i] = i
	}
	return s
}

// list returns its arguments as a slice.
func list(args ...any) []any {
	return args
}

// randomChoice returns a random element of a slice, or nil for anything
// that is not a non-empty slice.
func randomChoice(slice any) any {
	if slice == nil {
		return nil
	}
	val := reflect.ValueOf(slice)
	if val.Kind() != reflect.Slice || val.Len() == 0 {
		return nil
	}
	return val.Index(rand.IntN(val.Len())).Interface()
}

// randomInt returns a random integer in [min, max).
//
//goland:noinspection GoReservedWordUsedAsName
func randomInt(min, max int) int {
	if min >= max {
		return min
	}
	return rand.IntN(max-min) + min
}
