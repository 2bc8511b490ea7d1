package serialization

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"github.com/CTAG07/loremipsum/pkg/lorem"
	"github.com/CTAG07/loremipsum/pkg/store"
)

// StoreScheme serves samples kept in a SQLite sample store, addressed as
// "sqlite:///path/to/samples.db?name=loremipsum". It is not registered by
// default since the caller chooses the database driver:
//
//	serialization.Schemes.Register("sqlite", serialization.StoreScheme{Driver: "sqlite"})
type StoreScheme struct {
	Driver string
}

func (sc StoreScheme) open(u *url.URL) (*sql.DB, *store.Store, string, error) {
	name := u.Query().Get("name")
	if name == "" {
		return nil, nil, "", errors.New("sqlite URL has no name parameter")
	}
	if sc.Driver == "" {
		return nil, nil, "", errors.New("sqlite scheme has no driver")
	}
	db, err := sql.Open(sc.Driver, filePath(u))
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, nil, "", err
	}
	st, err := store.New(db, store.WithCacheSize(1))
	if err != nil {
		_ = db.Close()
		return nil, nil, "", err
	}
	return db, st, name, nil
}

func (sc StoreScheme) Load(ctx context.Context, u *url.URL, o *Options) (*lorem.Sample, error) {
	db, st, name, err := sc.open(u)
	if err != nil {
		return nil, err
	}
	defer closeStore(db, st)
	st.SetLogger(o.Logger)
	return st.Load(ctx, name)
}

func (sc StoreScheme) Dump(ctx context.Context, s *lorem.Sample, u *url.URL, o *Options) error {
	db, st, name, err := sc.open(u)
	if err != nil {
		return err
	}
	defer closeStore(db, st)
	st.SetLogger(o.Logger)
	return st.Save(ctx, name, s)
}

func (sc StoreScheme) Remove(ctx context.Context, u *url.URL, o *Options) error {
	db, st, name, err := sc.open(u)
	if err != nil {
		return err
	}
	defer closeStore(db, st)
	st.SetLogger(o.Logger)
	return st.Remove(ctx, name)
}

func closeStore(db *sql.DB, st *store.Store) {
	st.Close()
	_ = db.Close()
}
