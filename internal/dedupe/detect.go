package dedupe

import (
	"sort"

	"go.uber.org/zap"

	"github.com/hollis-labs/contacts-cli/internal/model"
)

// Group is one duplicate group: indices into the detector's input
// slice, in ascending (input) order. Every input record appears in
// exactly one group; a record with no matches forms a singleton.
type Group []int

// unionFind is a standard disjoint-set over record indices with path
// compression and union by size.
type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), size: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.size[ra] < uf.size[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
}

// Detect partitions records into duplicate groups. Two records match
// when they share a normalized phone number, share a normalized email,
// or have equal non-empty normalized names while both carry at least
// one phone or email. Matching is transitive: if A matches B and B
// matches C, all three land in one group even when A and C share
// nothing directly. A record with no phone, no email and an empty name
// can never match and is always its own singleton.
func Detect(records []model.ContactRecord) []Group {
	keys := make([]Key, len(records))
	for i, rec := range records {
		keys[i] = Normalize(rec)
	}

	uf := newUnionFind(len(records))

	// Instead of a pairwise scan, bucket records by each normalized
	// value and union within buckets; cost is proportional to match
	// edges, and transitivity falls out of the union-find.
	byPhone := make(map[string]int)
	byEmail := make(map[string]int)
	byName := make(map[string]int)

	for i, k := range keys {
		for _, p := range k.Phones {
			if first, ok := byPhone[p]; ok {
				uf.union(first, i)
			} else {
				byPhone[p] = i
			}
		}
		for _, e := range k.Emails {
			if first, ok := byEmail[e]; ok {
				uf.union(first, i)
			} else {
				byEmail[e] = i
			}
		}
		// Name matches need a corroborating identity field on both
		// sides, so two unrelated people who share a common full name
		// and nothing else stay separate.
		if k.Name == "" || !records[i].HasIdentity() {
			continue
		}
		if first, ok := byName[k.Name]; ok {
			uf.union(first, i)
		} else {
			byName[k.Name] = i
		}
	}

	members := make(map[int][]int)
	for i := range records {
		root := uf.find(i)
		members[root] = append(members[root], i)
	}

	groups := make([]Group, 0, len(members))
	for _, idxs := range members {
		sort.Ints(idxs)
		groups = append(groups, Group(idxs))
	}
	// Deterministic output order: by first member index.
	sort.Slice(groups, func(a, b int) bool { return groups[a][0] < groups[b][0] })

	var multi int
	for _, g := range groups {
		if len(g) > 1 {
			multi++
		}
	}
	zap.L().Debug("dedupe: detection complete",
		zap.Int("records", len(records)),
		zap.Int("groups", len(groups)),
		zap.Int("groups_with_duplicates", multi),
	)

	return groups
}
