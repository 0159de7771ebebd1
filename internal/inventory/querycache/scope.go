package querycache

import (
	"sort"
)

type ScopeKind int

const (
	// ScopeSingleItem is one item's detail entry.
	ScopeSingleItem ScopeKind = iota
	// ScopeOwnerLists is every list-shaped entry of one owner: all
	// filtered list pages plus the low-stock and out-of-stock lists.
	ScopeOwnerLists
	// ScopeOwnerAggregates is one owner's statistics entry.
	ScopeOwnerAggregates
	// ScopeGlobal is every admin-visible list and aggregate entry.
	ScopeGlobal
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeSingleItem:
		return "single-item"
	case ScopeOwnerLists:
		return "owner-scope-lists"
	case ScopeOwnerAggregates:
		return "owner-scope-aggregates"
	case ScopeGlobal:
		return "global-scope"
	}
	return "unknown"
}

type Scope struct {
	Kind    ScopeKind
	ItemID  string
	OwnerID string
}

func SingleItem(itemID string) Scope       { return Scope{Kind: ScopeSingleItem, ItemID: itemID} }
func OwnerLists(ownerID string) Scope      { return Scope{Kind: ScopeOwnerLists, OwnerID: ownerID} }
func OwnerAggregates(ownerID string) Scope { return Scope{Kind: ScopeOwnerAggregates, OwnerID: ownerID} }
func Global() Scope                        { return Scope{Kind: ScopeGlobal} }

// Targets is the resolved, deduplicated set of exact keys and glob
// patterns an invalidation must remove.
type Targets struct {
	Keys     []string
	Patterns []string
}

// Resolve maps invalidation scopes to a deterministic key/pattern set.
func Resolve(scopes ...Scope) Targets {
	keys := map[string]struct{}{}
	patterns := map[string]struct{}{}

	for _, s := range scopes {
		switch s.Kind {
		case ScopeSingleItem:
			if s.ItemID != "" {
				keys[ItemKey(s.ItemID)] = struct{}{}
			}
		case ScopeOwnerLists:
			if s.OwnerID == "" {
				continue
			}
			seg := ownerSegment(s.OwnerID)
			patterns[join(prefix, kindList, escapeGlob(seg), "*")] = struct{}{}
			keys[join(prefix, kindLowStock, seg)] = struct{}{}
			keys[join(prefix, kindOutOfStock, seg)] = struct{}{}
		case ScopeOwnerAggregates:
			if s.OwnerID == "" {
				continue
			}
			keys[join(prefix, kindStats, ownerSegment(s.OwnerID))] = struct{}{}
		case ScopeGlobal:
			patterns[join(prefix, kindList, globalScopeName, "*")] = struct{}{}
			keys[join(prefix, kindStats, globalScopeName)] = struct{}{}
			keys[join(prefix, kindLowStock, globalScopeName)] = struct{}{}
			keys[join(prefix, kindOutOfStock, globalScopeName)] = struct{}{}
		}
	}

	return Targets{Keys: sortedKeys(keys), Patterns: sortedKeys(patterns)}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
