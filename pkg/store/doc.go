// Package store is the persistent tier of the translation lookup: the
// Store interface and its PostgreSQL and in-memory implementations.
//
// Each locale is one row of the translations table holding the whole tree
// as a JSONB document:
//
//	pool, err := store.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	if err := store.Migrate(ctx, pool, cfg.MigrationsTable, log); err != nil {
//	    return err
//	}
//	st := store.NewPostgres(pool)
//
//	t, err := st.FetchTree(ctx, "en")                    // whole locale
//	v, found, err := st.FetchKey(ctx, "en", "user.name") // single key via #>
//
// FetchTree returns [ErrNotFound] for a locale without a row; callers decide
// whether that is an empty locale or an error. Connection and query failures
// are joined with [ErrUnavailable]. Documents that are not nested mappings
// fail with [github.com/dmitrymomot/onair/pkg/tree.ErrMalformed].
package store
