package serialization

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/CTAG07/loremipsum/pkg/lorem"
	"github.com/CTAG07/loremipsum/pkg/samples"
)

var (
	typeExtensions = map[string]string{
		".json": TypeJSON,
		".gob":  TypeGob,
		".bin":  TypeGob,
		".tar":  TypeTar,
		".zip":  TypeZip,
	}
	encodingExtensions = map[string]string{
		".gz":     EncodingGzip,
		".z":      EncodingCompress,
		".zz":     EncodingDeflate,
		".bz2":    EncodingBzip2,
		".xz":     EncodingXZ,
		".sz":     EncodingSnappy,
		".snappy": EncodingSnappy,
	}
	// shorthand extensions carrying both a type and an encoding
	combinedExtensions = map[string][2]string{
		".tgz":  {TypeTar, EncodingGzip},
		".tbz2": {TypeTar, EncodingBzip2},
		".txz":  {TypeTar, EncodingXZ},
	}
)

// GuessType returns the content type and encoding implied by the extensions
// of name, e.g. ("application/x-tar", "gzip") for "sample.tar.gz". Either may
// be empty.
func GuessType(name string) (contentType, encoding string) {
	ext := strings.ToLower(filepath.Ext(name))
	if both, ok := combinedExtensions[ext]; ok {
		return both[0], both[1]
	}
	if enc, ok := encodingExtensions[ext]; ok {
		encoding = enc
		name = strings.TrimSuffix(name, filepath.Ext(name))
		ext = strings.ToLower(filepath.Ext(name))
	}
	return typeExtensions[ext], encoding
}

// fileScheme stores samples on the local filesystem.
type fileScheme struct{}

func filePath(u *url.URL) string {
	if u.Host != "" && u.Host != "localhost" {
		return filepath.FromSlash(u.Host + u.Path)
	}
	if u.Opaque != "" {
		return filepath.FromSlash(u.Opaque)
	}
	return filepath.FromSlash(u.Path)
}

func (fileScheme) Load(_ context.Context, u *url.URL, o *Options) (*lorem.Sample, error) {
	p := filePath(u)
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		in, err := samples.ReadFS(os.DirFS(p), ".")
		if err != nil {
			return nil, err
		}
		return in.Cook()
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	ct, enc, err := codecsFor(p, o)
	if err != nil {
		return nil, err
	}
	if enc != nil {
		if data, err = enc.Decode(data); err != nil {
			return nil, fmt.Errorf("failed to decode content: %w", err)
		}
	}
	return ct.Parse(data)
}

func (fileScheme) Dump(_ context.Context, s *lorem.Sample, u *url.URL, o *Options) error {
	p := filePath(u)
	if filepath.Ext(p) == "" {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return err
		}
		files := samples.ToFiles(s.Row())
		for _, name := range samples.FileNames {
			if err := atomic.WriteFile(filepath.Join(p, name), bytes.NewReader(files[name])); err != nil {
				return fmt.Errorf("failed to write %s: %w", name, err)
			}
		}
		return nil
	}

	ct, enc, err := codecsFor(p, o)
	if err != nil {
		return err
	}
	data, err := ct.Format(s)
	if err != nil {
		return err
	}
	if enc != nil {
		if data, err = enc.Encode(data); err != nil {
			return fmt.Errorf("failed to encode content: %w", err)
		}
	}
	if dir := filepath.Dir(p); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return atomic.WriteFile(p, bytes.NewReader(data))
}

func (fileScheme) Remove(_ context.Context, u *url.URL, _ *Options) error {
	p := filePath(u)
	info, err := os.Stat(p)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return os.Remove(p)
	}
	for _, name := range samples.FileNames {
		if err := os.Remove(filepath.Join(p, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	// A directory holding other files is left in place.
	if err := os.Remove(p); err != nil {
		entries, readErr := os.ReadDir(p)
		if readErr != nil || len(entries) == 0 {
			return err
		}
	}
	return nil
}

// codecsFor resolves the content type and encoding for path p. A nil
// Encoding means the content is stored as is.
func codecsFor(p string, o *Options) (ContentType, Encoding, error) {
	typeName, encName := GuessType(p)
	if o.ContentType != "" {
		typeName = o.ContentType
	}
	switch o.ContentEncoding {
	case "":
	case NoEncoding:
		encName = ""
	default:
		encName = o.ContentEncoding
	}

	if typeName == "" {
		return nil, nil, fmt.Errorf("%w: cannot guess from %q", ErrUnknownContentType, filepath.Base(p))
	}
	ct, err := contentType(typeName)
	if err != nil {
		return nil, nil, err
	}
	if encName == "" {
		return ct, nil, nil
	}
	enc, err := encoding(encName)
	if err != nil {
		return nil, nil, err
	}
	return ct, enc, nil
}
