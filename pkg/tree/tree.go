package tree

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Tree is the translation tree of one locale.
// Inner nodes are Tree values, leaves are strings, numbers, booleans or nil.
// A Tree is treated as immutable once it has been handed to a cache.
type Tree map[string]any

// Path is a dotted key split into its segments.
type Path []string

// ParsePath splits a dotted key ("user.profile.name") into segments.
// Empty input and empty segments are rejected with ErrInvalidPath.
func ParsePath(key string) (Path, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidPath)
	}

	segments := strings.Split(key, ".")
	for _, s := range segments {
		if s == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidPath, key)
		}
	}

	return Path(segments), nil
}

// String joins the path back into its dotted form.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// Lookup walks the tree along p.
// It reports false when a segment is absent or a leaf is reached
// while segments remain. The returned value may be a subtree.
func (t Tree) Lookup(p Path) (any, bool) {
	if len(p) == 0 {
		return nil, false
	}

	var node any = t
	for _, segment := range p {
		m, ok := node.(Tree)
		if !ok {
			return nil, false
		}
		node, ok = m[segment]
		if !ok {
			return nil, false
		}
	}

	return node, true
}

// Len returns the number of leaves in the tree.
func (t Tree) Len() int {
	n := 0
	for _, v := range t {
		if sub, ok := v.(Tree); ok {
			n += sub.Len()
			continue
		}
		n++
	}
	return n
}

// Keys returns the sorted dotted paths of every leaf.
func (t Tree) Keys() []string {
	keys := make([]string, 0, len(t))
	t.collect("", &keys)
	slices.Sort(keys)
	return keys
}

func (t Tree) collect(prefix string, keys *[]string) {
	for k, v := range t {
		full := k
		if prefix != "" {
			full = prefix + "." + k
		}
		if sub, ok := v.(Tree); ok {
			sub.collect(full, keys)
			continue
		}
		*keys = append(*keys, full)
	}
}

// Clone returns a deep copy of the tree.
func (t Tree) Clone() Tree {
	out := maps.Clone(t)
	if out == nil {
		return Tree{}
	}
	for k, v := range out {
		if sub, ok := v.(Tree); ok {
			out[k] = sub.Clone()
		}
	}
	return out
}
