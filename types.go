package taproot

import (
	"github.com/jmorrow/taproot/internal/graph"
	"github.com/jmorrow/taproot/internal/store"
)

// Public type aliases for internal types surfaced by the Engine API.
// These are Go type aliases (=) — identical to the internal types at
// compile time, so no conversion is needed.

type Store = store.Store
type Entry = store.Entry
type Node = graph.Node

// ErrStoreUnavailable marks database failures, the only error class that
// aborts a whole documentation run.
var ErrStoreUnavailable = store.ErrUnavailable
