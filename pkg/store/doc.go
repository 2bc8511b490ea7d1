/*
Package store keeps named lorem samples in a SQLite database.

Each sample is stored in its frozen form alongside a few summary columns, so
listing the store never needs to rebuild a sample. Loaded samples are kept in
an in-memory LRU cache keyed by name; saving or removing a name invalidates
its cache entry.

The package does not import a SQLite driver. Callers open the database with
the driver of their choice (the cmd/main binary picks modernc.org/sqlite or
github.com/mattn/go-sqlite3 with a build tag), then call SetupSchema once and
New to get a Store:

	db, err := sql.Open("sqlite", "samples.db")
	if err != nil {
		// handle
	}
	if err := store.SetupSchema(db); err != nil {
		// handle
	}
	st, err := store.New(db)
	if err != nil {
		// handle
	}
	defer st.Close()

	err = st.Save(ctx, "loremipsum", sample)
	s, err := st.Load(ctx, "loremipsum")
*/
package store
