package simple

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"path"
	"regexp"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/onair/pkg/logger"
	"github.com/dmitrymomot/onair/pkg/tree"
)

// Language subtag followed by optional script, region or variant subtags,
// as in "en", "pt-BR", "es-419" or "zh-Hant-TW".
var localePattern = regexp.MustCompile(`^[a-z]{2,3}(-[A-Za-z0-9]{2,8})*$`)

// Backend serves translations from locale files. Files are read once on
// first use and again on Reload.
type Backend struct {
	fsys fs.FS
	log  *slog.Logger

	mu     sync.RWMutex
	trees  map[string]tree.Tree
	loaded bool
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(b *Backend) {
		if log != nil {
			b.log = log
		}
	}
}

// New returns a Backend reading <locale>.yml, <locale>.yaml and
// <locale>.json files from the root of fsys.
func New(fsys fs.FS, opts ...Option) *Backend {
	b := &Backend{
		fsys: fsys,
		log:  logger.NewNope(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Translate looks up a dotted key. Unknown locales and keys are missing.
func (b *Backend) Translate(ctx context.Context, locale, key string) (any, bool, error) {
	p, err := tree.ParsePath(key)
	if err != nil {
		return nil, false, err
	}

	trees, err := b.ensure(ctx)
	if err != nil {
		return nil, false, err
	}

	v, ok := trees[locale].Lookup(p)
	if !ok || v == nil {
		return nil, false, nil
	}
	return v, true, nil
}

// AvailableLocales lists the locales found on disk in ascending order.
func (b *Backend) AvailableLocales(ctx context.Context) ([]string, error) {
	trees, err := b.ensure(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Sorted(maps.Keys(trees)), nil
}

// Trees returns a copy of every locale tree.
func (b *Backend) Trees(ctx context.Context) (map[string]tree.Tree, error) {
	trees, err := b.ensure(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]tree.Tree, len(trees))
	for locale, t := range trees {
		out[locale] = t.Clone()
	}
	return out, nil
}

// Reload re-reads every file. On failure the previous trees stay in use.
func (b *Backend) Reload(ctx context.Context) error {
	trees, err := b.readAll(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.trees = trees
	b.loaded = true
	b.mu.Unlock()

	return nil
}

func (b *Backend) ensure(ctx context.Context) (map[string]tree.Tree, error) {
	b.mu.RLock()
	if b.loaded {
		trees := b.trees
		b.mu.RUnlock()
		return trees, nil
	}
	b.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loaded {
		return b.trees, nil
	}

	trees, err := b.readAll(ctx)
	if err != nil {
		return nil, err
	}
	b.trees = trees
	b.loaded = true
	return trees, nil
}

func (b *Backend) readAll(ctx context.Context) (map[string]tree.Tree, error) {
	entries, err := fs.ReadDir(b.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("simple: reading locales dir: %w", err)
	}

	trees := make(map[string]tree.Tree)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		name := e.Name()
		ext := strings.ToLower(path.Ext(name))
		locale := strings.TrimSuffix(name, path.Ext(name))

		var unmarshal func([]byte, any) error
		switch ext {
		case ".yml", ".yaml":
			unmarshal = yaml.Unmarshal
		case ".json":
			unmarshal = json.Unmarshal
		default:
			continue
		}
		if !localePattern.MatchString(locale) {
			b.log.WarnContext(ctx, "skipping file with invalid locale name", "file", name)
			continue
		}
		if _, dup := trees[locale]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateLocale, locale)
		}

		t, err := b.readFile(name, locale, unmarshal)
		if err != nil {
			return nil, err
		}
		trees[locale] = t
	}

	b.log.DebugContext(ctx, "translation files loaded", "locales", len(trees))
	return trees, nil
}

func (b *Backend) readFile(name, locale string, unmarshal func([]byte, any) error) (tree.Tree, error) {
	data, err := fs.ReadFile(b.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("simple: reading %q: %w", name, err)
	}

	var doc any
	if err := unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing %q: %w", tree.ErrMalformed, name, err)
	}

	t, err := tree.Normalize(doc)
	if err != nil {
		return nil, fmt.Errorf("simple: %q: %w", name, err)
	}

	// Files may nest everything under the locale, as in en: {greeting: hi}.
	if len(t) == 1 {
		if inner, ok := t[locale].(tree.Tree); ok {
			return inner, nil
		}
	}
	return t, nil
}
