package serialization

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"slices"

	"github.com/CTAG07/loremipsum/pkg/lorem"
	"github.com/CTAG07/loremipsum/pkg/registry"
	"github.com/CTAG07/loremipsum/pkg/samples"
)

// ContentType converts a sample to and from bytes.
type ContentType interface {
	Format(s *lorem.Sample) ([]byte, error)
	Parse(data []byte) (*lorem.Sample, error)
}

// Content type names registered by default.
const (
	TypeJSON = "application/json"
	TypeGob  = "application/octet-stream"
	TypeTar  = "application/x-tar"
	TypeZip  = "application/zip"
)

// ContentTypes holds the registered content types.
var ContentTypes = registry.New[ContentType]("content type")

func init() {
	ContentTypes.Register(TypeJSON, jsonType{})
	ContentTypes.Register(TypeGob, gobType{})
	ContentTypes.Register(TypeTar, tarType{})
	ContentTypes.Register(TypeZip, zipType{})
	_ = ContentTypes.SetDefault(TypeJSON)
}

func contentType(name string) (ContentType, error) {
	ct, err := ContentTypes.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownContentType, err)
	}
	return ct, nil
}

// jsonType stores the full frozen state, statistic overrides included.
type jsonType struct{}

func (jsonType) Format(s *lorem.Sample) ([]byte, error) {
	return json.MarshalIndent(s.Freeze(), "", "  ")
}

func (jsonType) Parse(data []byte) (*lorem.Sample, error) {
	var f lorem.Frozen
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode json sample: %w", err)
	}
	return lorem.Thaw(f)
}

// gobType is the binary counterpart of jsonType.
type gobType struct{}

func (gobType) Format(s *lorem.Sample) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s.Freeze()); err != nil {
		return nil, fmt.Errorf("failed to encode gob sample: %w", err)
	}
	return buf.Bytes(), nil
}

func (gobType) Parse(data []byte) (*lorem.Sample, error) {
	var f lorem.Frozen
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode gob sample: %w", err)
	}
	return lorem.Thaw(f)
}

// tarType archives the four ingredient files. Statistic overrides are not
// kept since the sample is cooked again on parse.
type tarType struct{}

func (tarType) Format(s *lorem.Sample) ([]byte, error) {
	files := samples.ToFiles(s.Row())
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, name := range samples.FileNames {
		hdr := &tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(files[name])),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, fmt.Errorf("failed to write tar header %s: %w", name, err)
		}
		if _, err := tw.Write(files[name]); err != nil {
			return nil, fmt.Errorf("failed to write tar member %s: %w", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close tar archive: %w", err)
	}
	return buf.Bytes(), nil
}

func (tarType) Parse(data []byte) (*lorem.Sample, error) {
	files := make(map[string][]byte, len(samples.FileNames))
	tr := tar.NewReader(bytes.NewReader(data))
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar archive: %w", err)
		}
		name := path.Base(hdr.Name)
		if hdr.Typeflag != tar.TypeReg || !slices.Contains(samples.FileNames, name) {
			continue
		}
		content, err := readLimited(tr)
		if err != nil {
			return nil, fmt.Errorf("failed to read tar member %s: %w", name, err)
		}
		files[name] = content
	}
	return cookFiles(files)
}

// zipType is tarType in a zip archive.
type zipType struct{}

func (zipType) Format(s *lorem.Sample) ([]byte, error) {
	files := samples.ToFiles(s.Row())
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range samples.FileNames {
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("failed to create zip member %s: %w", name, err)
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, fmt.Errorf("failed to write zip member %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zip archive: %w", err)
	}
	return buf.Bytes(), nil
}

func (zipType) Parse(data []byte) (*lorem.Sample, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read zip archive: %w", err)
	}
	files := make(map[string][]byte, len(samples.FileNames))
	for _, f := range zr.File {
		name := path.Base(f.Name)
		if f.FileInfo().IsDir() || !slices.Contains(samples.FileNames, name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open zip member %s: %w", name, err)
		}
		content, err := readLimited(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read zip member %s: %w", name, err)
		}
		files[name] = content
	}
	return cookFiles(files)
}

func cookFiles(files map[string][]byte) (*lorem.Sample, error) {
	in, err := samples.FromFiles(files)
	if err != nil {
		return nil, err
	}
	return in.Cook()
}
