// Package tree defines the translation tree of a locale and the dotted key
// paths used to walk it.
//
// A tree is a nested mapping whose leaves are opaque scalar values:
//
//	t, err := tree.Normalize(map[string]any{
//	    "user": map[string]any{"profile": map[string]any{"name": "Name"}},
//	})
//	p, _ := tree.ParsePath("user.profile.name")
//	v, ok := t.Lookup(p) // "Name", true
//
// Trees are replaced as a whole on reload and never mutated once published,
// so concurrent readers always observe a complete snapshot.
package tree
