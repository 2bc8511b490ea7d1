package serialization

import (
	"context"
	"encoding/base64"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/CTAG07/loremipsum/pkg/lorem"
	"github.com/CTAG07/loremipsum/pkg/samples"
	"github.com/CTAG07/loremipsum/pkg/store"
)

func tinySample(t *testing.T) *lorem.Sample {
	t.Helper()
	s, err := lorem.NewSample("Ab cd, ef. Gh ij kl.", []string{"xx yy zzz"}, ",.", ".")
	require.NoError(t, err)
	return s
}

func TestGuessType(t *testing.T) {
	testCases := []struct {
		name, wantType, wantEnc string
	}{
		{"s.json", TypeJSON, ""},
		{"s.gob", TypeGob, ""},
		{"s.tar.gz", TypeTar, EncodingGzip},
		{"s.TGZ", TypeTar, EncodingGzip},
		{"s.zip", TypeZip, ""},
		{"s.json.bz2", TypeJSON, EncodingBzip2},
		{"s.json.Z", TypeJSON, EncodingCompress},
		{"s.gz", "", EncodingGzip},
		{"s.txt", "", ""},
		{"dir", "", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gotType, gotEnc := GuessType(tc.name)
			assert.Equal(t, tc.wantType, gotType)
			assert.Equal(t, tc.wantEnc, gotEnc)
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := tinySample(t)
	dir := t.TempDir()

	for _, name := range []string{
		"s.json", "s.gob", "s.tar", "s.zip",
		"s.tar.gz", "s.json.bz2", "s.json.xz", "s.gob.sz", "s.json.zz", "s.tgz",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, Dump(ctx, s, path))

			loaded, err := Load(ctx, "file://"+filepath.ToSlash(path))
			require.NoError(t, err)
			assert.True(t, loaded.Equal(s), "loaded sample differs")

			require.NoError(t, Remove(ctx, path))
			_, err = os.Stat(path)
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestFileOverridesSurviveOnlyFrozenTypes(t *testing.T) {
	ctx := context.Background()
	derived, err := tinySample(t).WithOverrides(lorem.OverrideSentenceMean(12))
	require.NoError(t, err)
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "d.json.gz")
	require.NoError(t, Dump(ctx, derived, jsonPath))
	fromJSON, err := Load(ctx, jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 12.0, fromJSON.Stats().SentenceMean)

	zipPath := filepath.Join(dir, "d.zip")
	require.NoError(t, Dump(ctx, derived, zipPath))
	fromZip, err := Load(ctx, zipPath)
	require.NoError(t, err)
	assert.NotEqual(t, 12.0, fromZip.Stats().SentenceMean, "archives keep ingredients only")
}

func TestExplicitCodecs(t *testing.T) {
	ctx := context.Background()
	s := tinySample(t)
	path := filepath.Join(t.TempDir(), "sample.dat")

	_, err := Load(ctx, path)
	assert.Error(t, err)

	err = Dump(ctx, s, path)
	assert.ErrorIs(t, err, ErrUnknownContentType)

	opts := []Option{WithContentType("application-x-tar"), WithContentEncoding("xz")}
	require.NoError(t, Dump(ctx, s, path, opts...))
	loaded, err := Load(ctx, path, opts...)
	require.NoError(t, err)
	assert.True(t, loaded.Equal(s))

	_, err = Load(ctx, path, WithContentType(TypeTar), WithContentEncoding("lzma"))
	assert.ErrorIs(t, err, ErrUnknownEncoding)

	gz := filepath.Join(t.TempDir(), "plain.json.gz")
	require.NoError(t, Dump(ctx, s, gz, WithContentEncoding(NoEncoding)))
	data, err := os.ReadFile(gz)
	require.NoError(t, err)
	assert.Equal(t, byte('{'), data[0], "identity encoding writes plain json")
}

func TestDirectoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := tinySample(t)
	dir := filepath.Join(t.TempDir(), "tiny")

	require.NoError(t, Dump(ctx, s, dir))
	for _, name := range samples.FileNames {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	loaded, err := Load(ctx, dir)
	require.NoError(t, err)
	assert.True(t, loaded.Equal(s))

	require.NoError(t, Remove(ctx, dir))
	assert.NoDirExists(t, dir)
}

func TestDirectoryRemoveKeepsForeignFiles(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "tiny")
	require.NoError(t, Dump(ctx, tinySample(t), dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("keep"), 0o644))

	require.NoError(t, Remove(ctx, dir))
	assert.FileExists(t, filepath.Join(dir, "notes.md"))
	assert.NoFileExists(t, filepath.Join(dir, samples.TextFile))
}

func TestDataScheme(t *testing.T) {
	ctx := context.Background()
	s := tinySample(t)

	uri, err := EncodeDataURI(s, TypeJSON)
	require.NoError(t, err)
	loaded, err := Load(ctx, uri)
	require.NoError(t, err)
	assert.True(t, loaded.Equal(s))

	gz, err := Encodings.MustGet(EncodingGzip).Encode([]byte(`{}`))
	require.NoError(t, err)
	_, err = Load(ctx, "data:application/json;encoding=gzip;base64,"+encodeStd(gz))
	assert.ErrorIs(t, err, lorem.ErrInvalidLexicon, "empty frozen sample decodes but fails validation")

	_, err = Load(ctx, "data:text/plain,hello")
	assert.ErrorIs(t, err, ErrUnknownContentType)

	_, err = Load(ctx, "data:application/json;base64")
	assert.Error(t, err)

	assert.ErrorIs(t, Dump(ctx, s, uri), ErrNotSupported)
	assert.ErrorIs(t, Remove(ctx, uri), ErrNotSupported)
}

func TestPackageScheme(t *testing.T) {
	ctx := context.Background()

	s, err := Load(ctx, "package://loremipsum")
	require.NoError(t, err)
	def, err := samples.Default()
	require.NoError(t, err)
	assert.Same(t, def, s)

	_, err = Load(ctx, "package://nope")
	assert.Error(t, err)

	assert.ErrorIs(t, Dump(ctx, s, "package://loremipsum"), ErrNotSupported)
	assert.ErrorIs(t, Remove(ctx, "package://loremipsum"), ErrNotSupported)
}

func TestStoreScheme(t *testing.T) {
	Schemes.Register("sqlite", StoreScheme{Driver: "sqlite"})
	t.Cleanup(func() { Schemes.Unregister("sqlite") })

	ctx := context.Background()
	s := tinySample(t)
	dbURL := (&url.URL{Scheme: "sqlite", Path: filepath.ToSlash(filepath.Join(t.TempDir(), "samples.db")), RawQuery: "name=tiny"}).String()

	require.NoError(t, Dump(ctx, s, dbURL))
	loaded, err := Load(ctx, dbURL)
	require.NoError(t, err)
	assert.True(t, loaded.Equal(s))

	require.NoError(t, Remove(ctx, dbURL))
	_, err = Load(ctx, dbURL)
	assert.ErrorIs(t, err, store.ErrSampleNotFound)

	_, err = Load(ctx, "sqlite:///tmp/whatever.db")
	assert.Error(t, err, "name parameter is required")
}

func TestUnknownScheme(t *testing.T) {
	_, err := Load(context.Background(), "ftp://example.com/sample.json")
	assert.ErrorIs(t, err, ErrUnknownScheme)

	_, err = Load(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnknownScheme)
}

func TestParseURL(t *testing.T) {
	testCases := []struct {
		raw, scheme, path string
	}{
		{"samples/tiny.json", "", "samples/tiny.json"},
		{`C:\samples\tiny.json`, "", `C:\samples\tiny.json`},
		{"file:///tmp/tiny.json", "file", "/tmp/tiny.json"},
		{"100%.json", "", "100%.json"},
	}
	for _, tc := range testCases {
		u, err := parseURL(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.scheme, u.Scheme, tc.raw)
		assert.Equal(t, tc.path, u.Path, tc.raw)
	}
}

func encodeStd(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
