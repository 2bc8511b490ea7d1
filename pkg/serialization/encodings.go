package serialization

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/golang/snappy"
	"github.com/ulikunitz/xz"

	"github.com/CTAG07/loremipsum/pkg/registry"
)

// Encoding wraps formatted sample bytes, usually in a compression format.
type Encoding interface {
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

// Content encoding names registered by default. "compress" and "deflate"
// both name the zlib format.
const (
	EncodingGzip     = "gzip"
	EncodingCompress = "compress"
	EncodingDeflate  = "deflate"
	EncodingBzip2    = "bzip2"
	EncodingXZ       = "xz"
	EncodingSnappy   = "snappy"
)

// MaxDecodedSize bounds decoded payloads and archive members.
const MaxDecodedSize = 64 << 20

// Encodings holds the registered content encodings.
var Encodings = registry.New[Encoding]("content encoding")

func init() {
	Encodings.Register(EncodingGzip, streamCodec{
		writer: func(w io.Writer) (io.WriteCloser, error) { return gzip.NewWriter(w), nil },
		reader: func(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) },
	})
	zlibCodec := streamCodec{
		writer: func(w io.Writer) (io.WriteCloser, error) { return zlib.NewWriter(w), nil },
		reader: func(r io.Reader) (io.Reader, error) { return zlib.NewReader(r) },
	}
	Encodings.Register(EncodingCompress, zlibCodec)
	Encodings.Register(EncodingDeflate, zlibCodec)
	Encodings.Register(EncodingBzip2, streamCodec{
		writer: func(w io.Writer) (io.WriteCloser, error) {
			return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.DefaultCompression})
		},
		reader: func(r io.Reader) (io.Reader, error) { return bzip2.NewReader(r, nil) },
	})
	Encodings.Register(EncodingXZ, streamCodec{
		writer: func(w io.Writer) (io.WriteCloser, error) { return xz.NewWriter(w) },
		reader: func(r io.Reader) (io.Reader, error) { return xz.NewReader(r) },
	})
	Encodings.Register(EncodingSnappy, snappyCodec{})
}

func encoding(name string) (Encoding, error) {
	enc, err := Encodings.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownEncoding, err)
	}
	return enc, nil
}

// streamCodec adapts a streaming compressor to Encoding.
type streamCodec struct {
	writer func(io.Writer) (io.WriteCloser, error)
	reader func(io.Reader) (io.Reader, error)
}

func (c streamCodec) Encode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := c.writer(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c streamCodec) Decode(data []byte) ([]byte, error) {
	r, err := c.reader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if rc, ok := r.(io.Closer); ok {
		defer func(rc io.Closer) {
			_ = rc.Close()
		}(rc)
	}
	return readLimited(r)
}

// snappyCodec uses the snappy block format.
type snappyCodec struct{}

func (snappyCodec) Encode(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (snappyCodec) Decode(data []byte) ([]byte, error) {
	n, err := snappy.DecodedLen(data)
	if err != nil {
		return nil, err
	}
	if n > MaxDecodedSize {
		return nil, fmt.Errorf("decoded payload exceeds %d bytes", MaxDecodedSize)
	}
	return snappy.Decode(nil, data)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDecodedSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxDecodedSize {
		return nil, fmt.Errorf("decoded payload exceeds %d bytes", MaxDecodedSize)
	}
	return data, nil
}
