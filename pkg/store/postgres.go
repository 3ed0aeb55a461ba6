package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/onair/pkg/tree"
)

// Querier is the subset of *pgxpool.Pool used by Postgres.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	fetchTreeSQL   = `SELECT translation FROM translations WHERE language = $1`
	fetchKeySQL    = `SELECT translation #> $2::text[] FROM translations WHERE language = $1`
	listLocalesSQL = `SELECT language FROM translations ORDER BY language`
	upsertSQL      = `INSERT INTO translations (language, translation) VALUES ($1, $2)
ON CONFLICT (language) DO UPDATE SET translation = EXCLUDED.translation, updated_at = now()`
	deleteSQL = `DELETE FROM translations WHERE language = $1`
)

// Postgres reads locale trees from the translations table, one JSONB
// document per language.
type Postgres struct {
	db Querier
}

// NewPostgres returns a Store backed by db, usually a *pgxpool.Pool from Connect.
func NewPostgres(db Querier) *Postgres {
	return &Postgres{db: db}
}

// FetchTree loads the whole JSONB document of a locale.
// A document that is not a nested mapping fails with tree.ErrMalformed.
func (p *Postgres) FetchTree(ctx context.Context, locale string) (tree.Tree, error) {
	var raw []byte
	if err := p.db.QueryRow(ctx, fetchTreeSQL, locale).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrUnavailable, err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: locale %q: %s", tree.ErrMalformed, locale, err)
	}

	t, err := tree.Normalize(doc)
	if err != nil {
		return nil, fmt.Errorf("locale %q: %w", locale, err)
	}
	return t, nil
}

// FetchKey resolves one path with the JSONB #> operator so only the
// requested value leaves the database.
func (p *Postgres) FetchKey(ctx context.Context, locale, path string) (any, bool, error) {
	segments, err := tree.ParsePath(path)
	if err != nil {
		return nil, false, err
	}

	var raw []byte
	if err := p.db.QueryRow(ctx, fetchKeySQL, locale, []string(segments)).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, errors.Join(ErrUnavailable, err)
	}
	if raw == nil {
		return nil, false, nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false, fmt.Errorf("%w: key %q: %s", tree.ErrMalformed, path, err)
	}
	if v == nil {
		return nil, false, nil
	}
	if m, ok := v.(map[string]any); ok {
		sub, err := tree.Normalize(m)
		if err != nil {
			return nil, false, err
		}
		return sub, true, nil
	}
	return v, true, nil
}

// ListLocales returns the stored languages in ascending order.
func (p *Postgres) ListLocales(ctx context.Context) ([]string, error) {
	rows, err := p.db.Query(ctx, listLocalesSQL)
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}

	locales, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}
	return locales, nil
}

// Put inserts or replaces the tree of a locale.
// Used by seeding and tests; lookups never write.
func (p *Postgres) Put(ctx context.Context, locale string, t tree.Tree) error {
	if locale == "" {
		return ErrEmptyLocale
	}
	if t == nil {
		t = tree.Tree{}
	}

	doc, err := json.Marshal(t)
	if err != nil {
		return err
	}

	if _, err := p.db.Exec(ctx, upsertSQL, locale, doc); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

// Remove deletes the record of a locale.
func (p *Postgres) Remove(ctx context.Context, locale string) error {
	if _, err := p.db.Exec(ctx, deleteSQL, locale); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

var _ Store = (*Postgres)(nil)
