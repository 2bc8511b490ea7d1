package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/CTAG07/loremipsum/pkg/lorem"
)

// DefaultCacheSize is the number of built samples a Store keeps in memory.
const DefaultCacheSize = 32

// ErrSampleNotFound is returned when no sample is stored under a name.
var ErrSampleNotFound = errors.New("store: sample not found")

// SetupSchema creates the sample table. It is idempotent and safe to call on
// an already-initialized database.
func SetupSchema(db *sql.DB) error {
	const (
		schemaSamples = `
CREATE TABLE IF NOT EXISTS lorem_samples (
    sample_id INTEGER PRIMARY KEY,
    sample_name TEXT NOT NULL UNIQUE,
    sample_hash TEXT NOT NULL,
    frozen TEXT NOT NULL,
    sentence_mean REAL NOT NULL,
    sentence_sigma REAL NOT NULL,
    paragraph_mean REAL NOT NULL,
    paragraph_sigma REAL NOT NULL,
    lexicon_size INTEGER NOT NULL,
    chain_size INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);
`
		indexHash = `CREATE INDEX IF NOT EXISTS lorem_samples_hash ON lorem_samples (sample_hash);`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaSamples); err != nil {
		return fmt.Errorf("could not create schema: %w", err)
	}
	if _, err = tx.Exec(indexHash); err != nil {
		return fmt.Errorf("could not create hash index: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// SampleInfo is the stored summary of a sample.
type SampleInfo struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Hash        string      `json:"hash"`
	Stats       lorem.Stats `json:"stats"`
	LexiconSize int         `json:"lexicon_size"`
	ChainSize   int         `json:"chain_size"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ExportedSample is the JSON document written by Export and read by Import.
type ExportedSample struct {
	Name   string       `json:"name"`
	Sample lorem.Frozen `json:"sample"`
}

// Option configures a Store.
type Option func(*options)

type options struct {
	cacheSize int
}

// WithCacheSize sets how many built samples are cached. Values below one
// fall back to DefaultCacheSize.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// Store reads and writes samples with prepared statements. It is safe for
// concurrent use.
type Store struct {
	db         *sql.DB
	cache      *lru.Cache[string, *lorem.Sample]
	stmtUpsert *sql.Stmt
	stmtFrozen *sql.Stmt
	stmtInfo   *sql.Stmt
	stmtList   *sql.Stmt
	stmtDelete *sql.Stmt
	logger     *slog.Logger
}

const infoColumns = `sample_id, sample_name, sample_hash, sentence_mean, sentence_sigma, paragraph_mean, paragraph_sigma, lexicon_size, chain_size, updated_at`

// New prepares the statements a Store needs. SetupSchema must have been run
// on db first.
func New(db *sql.DB, opts ...Option) (*Store, error) {
	o := options{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cacheSize < 1 {
		o.cacheSize = DefaultCacheSize
	}

	cache, err := lru.New[string, *lorem.Sample](o.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("could not create sample cache: %w", err)
	}

	s := &Store{
		db:     db,
		cache:  cache,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	prepare := func(dst **sql.Stmt, query string) {
		if err != nil {
			return
		}
		*dst, err = db.Prepare(query)
	}
	prepare(&s.stmtUpsert, `
INSERT INTO lorem_samples (sample_name, sample_hash, frozen, sentence_mean, sentence_sigma, paragraph_mean, paragraph_sigma, lexicon_size, chain_size, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(sample_name) DO UPDATE SET
    sample_hash = excluded.sample_hash,
    frozen = excluded.frozen,
    sentence_mean = excluded.sentence_mean,
    sentence_sigma = excluded.sentence_sigma,
    paragraph_mean = excluded.paragraph_mean,
    paragraph_sigma = excluded.paragraph_sigma,
    lexicon_size = excluded.lexicon_size,
    chain_size = excluded.chain_size,
    updated_at = excluded.updated_at;`)
	prepare(&s.stmtFrozen, `SELECT frozen FROM lorem_samples WHERE sample_name = ?;`)
	prepare(&s.stmtInfo, `SELECT `+infoColumns+` FROM lorem_samples WHERE sample_name = ?;`)
	prepare(&s.stmtList, `SELECT `+infoColumns+` FROM lorem_samples ORDER BY sample_name;`)
	prepare(&s.stmtDelete, `DELETE FROM lorem_samples WHERE sample_name = ?;`)
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the prepared statements. The database itself stays open.
func (s *Store) Close() {
	for _, stmt := range []*sql.Stmt{s.stmtUpsert, s.stmtFrozen, s.stmtInfo, s.stmtList, s.stmtDelete} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
}

// SetLogger sets the logger for the Store. By default, all logs are discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Save stores sample under name, replacing any previous sample of that name.
func (s *Store) Save(ctx context.Context, name string, sample *lorem.Sample) error {
	if name == "" {
		return errors.New("store: sample name is empty")
	}
	frozen := sample.Freeze()
	data, err := json.Marshal(frozen)
	if err != nil {
		return fmt.Errorf("failed to encode sample %q: %w", name, err)
	}

	st := frozen.Stats
	_, err = s.stmtUpsert.ExecContext(ctx,
		name, hashString(sample), string(data),
		st.SentenceMean, st.SentenceSigma, st.ParagraphMean, st.ParagraphSigma,
		len(frozen.Lexicon), len(frozen.Chains), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save sample %q: %w", name, err)
	}
	s.cache.Add(name, sample)

	s.logger.InfoContext(ctx, "Sample saved",
		slog.String("sample_name", name),
		slog.Int("lexicon_size", len(frozen.Lexicon)),
		slog.Int("chain_size", len(frozen.Chains)),
	)
	return nil
}

// Load returns the sample stored under name, from the cache when possible.
func (s *Store) Load(ctx context.Context, name string) (*lorem.Sample, error) {
	if sample, ok := s.cache.Get(name); ok {
		return sample, nil
	}

	var data string
	err := s.stmtFrozen.QueryRowContext(ctx, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrSampleNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load sample %q: %w", name, err)
	}

	var frozen lorem.Frozen
	if err := json.Unmarshal([]byte(data), &frozen); err != nil {
		return nil, fmt.Errorf("failed to decode sample %q: %w", name, err)
	}
	sample, err := lorem.Thaw(frozen)
	if err != nil {
		return nil, fmt.Errorf("stored sample %q is invalid: %w", name, err)
	}
	s.cache.Add(name, sample)

	s.logger.DebugContext(ctx, "Sample loaded from database", slog.String("sample_name", name))
	return sample, nil
}

// Info returns the stored summary of a sample.
func (s *Store) Info(ctx context.Context, name string) (SampleInfo, error) {
	info, err := scanInfo(s.stmtInfo.QueryRowContext(ctx, name))
	if errors.Is(err, sql.ErrNoRows) {
		return SampleInfo{}, fmt.Errorf("%w: %q", ErrSampleNotFound, name)
	}
	return info, err
}

// List returns the summaries of all stored samples, ordered by name.
func (s *Store) List(ctx context.Context) ([]SampleInfo, error) {
	rows, err := s.stmtList.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	infos := make([]SampleInfo, 0)
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return infos, nil
}

// Remove deletes the sample stored under name.
func (s *Store) Remove(ctx context.Context, name string) error {
	res, err := s.stmtDelete.ExecContext(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to remove sample %q: %w", name, err)
	}
	s.cache.Remove(name)

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %q", ErrSampleNotFound, name)
	}

	s.logger.InfoContext(ctx, "Sample removed", slog.String("sample_name", name))
	return nil
}

// Export writes the named sample to w as an indented ExportedSample document.
func (s *Store) Export(ctx context.Context, name string, w io.Writer) error {
	sample, err := s.Load(ctx, name)
	if err != nil {
		return err
	}
	exported := ExportedSample{Name: name, Sample: sample.Freeze()}

	s.logger.InfoContext(ctx, "Sample exported",
		slog.String("sample_name", name),
		slog.Int("chains_exported", len(exported.Sample.Chains)),
	)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exported)
}

// Import reads an ExportedSample document from r, validates it and saves it
// under its recorded name, which is returned.
func (s *Store) Import(ctx context.Context, r io.Reader) (string, error) {
	var imported ExportedSample
	if err := json.NewDecoder(r).Decode(&imported); err != nil {
		return "", fmt.Errorf("failed to decode json sample: %w", err)
	}
	if imported.Name == "" {
		return "", errors.New("store: imported sample has no name")
	}
	sample, err := lorem.Thaw(imported.Sample)
	if err != nil {
		return "", fmt.Errorf("imported sample %q is invalid: %w", imported.Name, err)
	}
	if err := s.Save(ctx, imported.Name, sample); err != nil {
		return "", err
	}
	return imported.Name, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInfo(row scanner) (SampleInfo, error) {
	var (
		info    SampleInfo
		updated int64
	)
	err := row.Scan(&info.ID, &info.Name, &info.Hash,
		&info.Stats.SentenceMean, &info.Stats.SentenceSigma,
		&info.Stats.ParagraphMean, &info.Stats.ParagraphSigma,
		&info.LexiconSize, &info.ChainSize, &updated)
	if err != nil {
		return SampleInfo{}, err
	}
	info.UpdatedAt = time.Unix(updated, 0).UTC()
	return info, nil
}

func hashString(sample *lorem.Sample) string {
	return strconv.FormatUint(sample.Hash(), 16)
}
