package tree

// LoadState is the lifecycle state of one locale in the in-memory cache.
type LoadState int

const (
	NotLoaded LoadState = iota
	Loading
	Loaded
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return "not_loaded"
	}
}

// Tier names the layer that answered a lookup.
// It is used for logging and metrics only.
type Tier int

const (
	TierNone Tier = iota
	TierMemory
	TierRequest
	TierShared
	TierStore
	TierDefault
)

func (t Tier) String() string {
	switch t {
	case TierMemory:
		return "memory"
	case TierRequest:
		return "request"
	case TierShared:
		return "shared"
	case TierStore:
		return "store"
	case TierDefault:
		return "default"
	default:
		return "none"
	}
}
