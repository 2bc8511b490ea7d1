package serialization

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/CTAG07/loremipsum/pkg/lorem"
)

// dataScheme reads samples inlined in RFC 2397 data URIs, e.g.
// "data:application/json;base64,eyJ0ZXh0Ijo...". The optional "encoding"
// media type parameter names a content encoding applied before base64.
type dataScheme struct{}

func (dataScheme) Load(_ context.Context, u *url.URL, o *Options) (*lorem.Sample, error) {
	rest := u.Opaque
	if rest == "" {
		rest = strings.TrimPrefix(u.Path, "/")
	}
	info, payload, found := strings.Cut(rest, ",")
	if !found {
		return nil, fmt.Errorf("malformed data URI: missing ','")
	}

	isBase64 := strings.HasSuffix(info, ";base64")
	info = strings.TrimSuffix(info, ";base64")

	mediaType, rawParams, _ := strings.Cut(info, ";")
	params := make(map[string]string)
	if rawParams != "" {
		for _, kv := range strings.Split(rawParams, ";") {
			k, v, _ := strings.Cut(kv, "=")
			params[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	if mediaType == "" {
		mediaType = "text/plain"
	}
	if o.ContentType != "" {
		mediaType = o.ContentType
	}

	var data []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			decoded, err = base64.URLEncoding.DecodeString(payload)
		}
		if err != nil {
			return nil, fmt.Errorf("malformed base64 payload: %w", err)
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("malformed percent-encoded payload: %w", err)
		}
		data = []byte(unescaped)
	}

	encName := params["encoding"]
	if o.ContentEncoding != "" {
		encName = o.ContentEncoding
	}
	if encName != "" && encName != NoEncoding {
		enc, err := encoding(encName)
		if err != nil {
			return nil, err
		}
		if data, err = enc.Decode(data); err != nil {
			return nil, fmt.Errorf("failed to decode content: %w", err)
		}
	}

	ct, err := contentType(mediaType)
	if err != nil {
		return nil, err
	}
	return ct.Parse(data)
}

func (dataScheme) Dump(context.Context, *lorem.Sample, *url.URL, *Options) error {
	return fmt.Errorf("%w: data URIs are read only", ErrNotSupported)
}

func (dataScheme) Remove(context.Context, *url.URL, *Options) error {
	return fmt.Errorf("%w: data URIs are read only", ErrNotSupported)
}

// EncodeDataURI formats s as a base64 data URI of the given content type,
// readable by Load.
func EncodeDataURI(s *lorem.Sample, typeName string) (string, error) {
	ct, err := contentType(typeName)
	if err != nil {
		return "", err
	}
	data, err := ct.Format(s)
	if err != nil {
		return "", err
	}
	return "data:" + typeName + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
