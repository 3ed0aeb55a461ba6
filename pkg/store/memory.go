package store

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrymomot/onair/pkg/tree"
)

// Memory is a Store kept in process. It backs tests, local development
// and the CLI seed mode.
type Memory struct {
	trees map[string]tree.Tree
	mu    sync.RWMutex
}

// NewMemory returns a Memory store holding the given locales.
func NewMemory(trees map[string]tree.Tree) *Memory {
	m := &Memory{trees: make(map[string]tree.Tree, len(trees))}
	for locale, t := range trees {
		m.trees[locale] = t.Clone()
	}
	return m
}

func (m *Memory) FetchTree(_ context.Context, locale string) (tree.Tree, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.trees[locale]
	if !ok {
		return nil, ErrNotFound
	}
	return t.Clone(), nil
}

func (m *Memory) FetchKey(_ context.Context, locale, path string) (any, bool, error) {
	p, err := tree.ParsePath(path)
	if err != nil {
		return nil, false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.trees[locale]
	if !ok {
		return nil, false, nil
	}
	v, ok := t.Lookup(p)
	if !ok || v == nil {
		return nil, false, nil
	}
	if sub, isTree := v.(tree.Tree); isTree {
		return sub.Clone(), true, nil
	}
	return v, true, nil
}

func (m *Memory) ListLocales(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	locales := make([]string, 0, len(m.trees))
	for locale := range m.trees {
		locales = append(locales, locale)
	}
	slices.Sort(locales)
	return locales, nil
}

// Put replaces the tree of a locale.
func (m *Memory) Put(_ context.Context, locale string, t tree.Tree) error {
	if locale == "" {
		return ErrEmptyLocale
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trees[locale] = t.Clone()
	return nil
}

// Remove deletes a locale.
func (m *Memory) Remove(_ context.Context, locale string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.trees, locale)
	return nil
}

var _ Store = (*Memory)(nil)
