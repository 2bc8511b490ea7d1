// Package samples holds the built-in loremipsum sample and a process-wide
// registry of named samples. Samples are cooked from their ingredients on
// first use and shared afterwards.
package samples

import (
	"embed"
	"io/fs"
	"sync"

	"github.com/CTAG07/loremipsum/pkg/lorem"
	"github.com/CTAG07/loremipsum/pkg/registry"
)

// DefaultName is the name of the built-in lorem ipsum sample.
const DefaultName = "loremipsum"

//go:embed loremipsum/*.txt
var embedded embed.FS

// entry cooks its ingredients at most once.
type entry struct {
	ingredients lorem.Ingredients
	once        sync.Once
	sample      *lorem.Sample
	err         error
}

func (e *entry) get() (*lorem.Sample, error) {
	e.once.Do(func() {
		e.sample, e.err = e.ingredients.Cook()
	})
	return e.sample, e.err
}

var builtin = registry.New[*entry]("sample")

func init() {
	in, err := ReadFS(embedded, DefaultName)
	if err != nil {
		panic(err)
	}
	Register(DefaultName, in)
	if err := builtin.SetDefault(DefaultName); err != nil {
		panic(err)
	}
}

// FS returns the embedded sample files, one directory per built-in sample.
func FS() fs.FS {
	return embedded
}

// Register adds or replaces a named sample. It is cooked on first Get.
func Register(name string, in lorem.Ingredients) {
	builtin.Register(name, &entry{ingredients: in})
}

// Get returns the named sample, cooking it on first use.
func Get(name string) (*lorem.Sample, error) {
	e, err := builtin.Get(name)
	if err != nil {
		return nil, err
	}
	return e.get()
}

// Ingredients returns the raw inputs of the named sample.
func Ingredients(name string) (lorem.Ingredients, error) {
	e, err := builtin.Get(name)
	if err != nil {
		return lorem.Ingredients{}, err
	}
	return e.ingredients, nil
}

// Default returns the default sample, the built-in loremipsum unless
// SetDefault chose another.
func Default() (*lorem.Sample, error) {
	e, _, ok := builtin.Default()
	if !ok {
		return Get(DefaultName)
	}
	return e.get()
}

// SetDefault makes a registered sample the default.
func SetDefault(name string) error {
	return builtin.SetDefault(name)
}

// Names returns the registered sample names, sorted.
func Names() []string {
	return builtin.Names()
}
