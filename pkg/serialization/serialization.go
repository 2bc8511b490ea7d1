package serialization

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/CTAG07/loremipsum/pkg/lorem"
	"github.com/CTAG07/loremipsum/pkg/registry"
)

// Scheme is a storage medium addressed by URL.
type Scheme interface {
	Load(ctx context.Context, u *url.URL, o *Options) (*lorem.Sample, error)
	Dump(ctx context.Context, s *lorem.Sample, u *url.URL, o *Options) error
	Remove(ctx context.Context, u *url.URL, o *Options) error
}

// Options carries per-call settings to a Scheme.
type Options struct {
	// ContentType and ContentEncoding override the names guessed from a
	// file extension. An empty ContentEncoding means "guess"; NoEncoding
	// disables encoding.
	ContentType     string
	ContentEncoding string
	Logger          *slog.Logger
}

// NoEncoding is the ContentEncoding value that turns encoding off.
const NoEncoding = "identity"

// Option configures a Load, Dump or Remove call.
type Option func(*Options)

// WithContentType forces the content type instead of guessing it.
func WithContentType(name string) Option {
	return func(o *Options) { o.ContentType = name }
}

// WithContentEncoding forces the content encoding instead of guessing it.
func WithContentEncoding(name string) Option {
	return func(o *Options) { o.ContentEncoding = name }
}

// WithLogger sets the logger used for the call.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// Schemes holds the registered URL schemes. "file" is the default and
// handles URLs without a scheme.
var Schemes = registry.New[Scheme]("scheme")

func init() {
	Schemes.Register("file", fileScheme{})
	Schemes.Register("data", dataScheme{})
	Schemes.Register("package", packageScheme{})
	_ = Schemes.SetDefault("file")
}

// Load reads the sample addressed by rawURL.
func Load(ctx context.Context, rawURL string, opts ...Option) (*lorem.Sample, error) {
	scheme, u, o, err := resolve(rawURL, opts)
	if err != nil {
		return nil, err
	}
	s, err := scheme.Load(ctx, u, o)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", redact(u), err)
	}
	o.Logger.DebugContext(ctx, "Sample loaded", slog.String("url", redact(u)))
	return s, nil
}

// Dump writes s to the location addressed by rawURL.
func Dump(ctx context.Context, s *lorem.Sample, rawURL string, opts ...Option) error {
	scheme, u, o, err := resolve(rawURL, opts)
	if err != nil {
		return err
	}
	if err := scheme.Dump(ctx, s, u, o); err != nil {
		return fmt.Errorf("failed to dump %s: %w", redact(u), err)
	}
	o.Logger.InfoContext(ctx, "Sample dumped", slog.String("url", redact(u)))
	return nil
}

// Remove deletes the sample addressed by rawURL.
func Remove(ctx context.Context, rawURL string, opts ...Option) error {
	scheme, u, o, err := resolve(rawURL, opts)
	if err != nil {
		return err
	}
	if err := scheme.Remove(ctx, u, o); err != nil {
		return fmt.Errorf("failed to remove %s: %w", redact(u), err)
	}
	o.Logger.InfoContext(ctx, "Sample removed", slog.String("url", redact(u)))
	return nil
}

func resolve(rawURL string, opts []Option) (Scheme, *url.URL, *Options, error) {
	o := &Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(o)
	}

	u, err := parseURL(rawURL)
	if err != nil {
		return nil, nil, nil, err
	}

	var scheme Scheme
	if u.Scheme == "" {
		scheme, _, _ = Schemes.Default()
	} else {
		scheme, err = Schemes.Get(u.Scheme)
	}
	if err != nil || scheme == nil {
		return nil, nil, nil, fmt.Errorf("%w: %q", ErrUnknownScheme, u.Scheme)
	}
	return scheme, u, o, nil
}

// parseURL accepts bare file paths as well as URLs. Paths are never
// unescaped, so names containing '%' or '?' stay intact.
func parseURL(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("%w: empty URL", ErrUnknownScheme)
	}
	scheme, _, found := strings.Cut(rawURL, ":")
	if !found || !isScheme(scheme) {
		return &url.URL{Path: rawURL}, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	return u, nil
}

// isScheme reports whether s is a URL scheme of two or more characters, so
// Windows drive letters are read as paths.
func isScheme(s string) bool {
	if len(s) < 2 {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

// redact keeps data URIs out of logs and error messages.
func redact(u *url.URL) string {
	if u.Scheme == "data" {
		return "data:..."
	}
	return u.Redacted()
}
