package tree

import "fmt"

// Normalize converts a decoded JSON or YAML document into a Tree.
// The root must be a mapping; leaves must be scalars. Sequences and
// other composite values are rejected with ErrMalformed.
// A nil document yields an empty tree.
func Normalize(doc any) (Tree, error) {
	if doc == nil {
		return Tree{}, nil
	}

	node, err := normalize(doc, "")
	if err != nil {
		return nil, err
	}

	t, ok := node.(Tree)
	if !ok {
		return nil, fmt.Errorf("%w: root is %T, expected a mapping", ErrMalformed, doc)
	}
	return t, nil
}

func normalize(v any, at string) (any, error) {
	switch val := v.(type) {
	case Tree:
		return normalizeMap(val, at)
	case map[string]any:
		return normalizeMap(val, at)
	case map[string]string:
		out := make(Tree, len(val))
		for k, s := range val {
			out[k] = s
		}
		return out, nil
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, sub := range val {
			key, ok := k.(string)
			if !ok {
				key = fmt.Sprint(k)
			}
			m[key] = sub
		}
		return normalizeMap(m, at)
	case nil, string, bool, float64, float32, int, int64, int32, uint, uint64, uint32:
		return val, nil
	default:
		return nil, fmt.Errorf("%w: unsupported value %T at %q", ErrMalformed, v, at)
	}
}

func normalizeMap(m map[string]any, at string) (Tree, error) {
	out := make(Tree, len(m))
	for k, v := range m {
		if k == "" {
			return nil, fmt.Errorf("%w: empty key under %q", ErrMalformed, at)
		}
		child := k
		if at != "" {
			child = at + "." + k
		}
		n, err := normalize(v, child)
		if err != nil {
			return nil, err
		}
		out[k] = n
	}
	return out, nil
}
