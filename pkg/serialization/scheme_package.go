package serialization

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/CTAG07/loremipsum/pkg/lorem"
	"github.com/CTAG07/loremipsum/pkg/samples"
)

// packageScheme serves the samples registered in package samples, e.g.
// "package://loremipsum".
type packageScheme struct{}

func (packageScheme) Load(_ context.Context, u *url.URL, _ *Options) (*lorem.Sample, error) {
	name := u.Host
	if name == "" {
		name = u.Opaque
	}
	if name == "" {
		name = strings.Trim(u.Path, "/")
	}
	if name == "" {
		return samples.Default()
	}
	return samples.Get(name)
}

func (packageScheme) Dump(context.Context, *lorem.Sample, *url.URL, *Options) error {
	return fmt.Errorf("%w: built-in samples are read only", ErrNotSupported)
}

func (packageScheme) Remove(context.Context, *url.URL, *Options) error {
	return fmt.Errorf("%w: built-in samples are read only", ErrNotSupported)
}
