package loader

import (
	"context"
	"sort"

	"github.com/goliatone/go-profile-cache/document"
	"github.com/goliatone/go-profile-cache/store"
)

// Strategy selects how a partition batch is fetched.
type Strategy int

const (
	// Membership issues field IN (keys).
	Membership Strategy = iota
	// Range issues min(keys) <= field <= max(keys) and filters per key.
	Range
)

func (s Strategy) String() string {
	if s == Range {
		return "range"
	}
	return "membership"
}

// Partition names a field that groups documents of one kind.
type Partition struct {
	Kind  document.Kind
	Field string
	// Ordered declares that the field has a meaningful ordering, which makes
	// the range strategy available.
	Ordered bool
}

// Strategy returns Range for ordered partitions and Membership otherwise.
func (p Partition) Strategy() Strategy {
	if p.Ordered {
		return Range
	}
	return Membership
}

// ByID resolves documents by id; nil marks an id with no document.
type ByID = Loader[string, *document.Document]

// ByPartition resolves the documents sharing a field value.
type ByPartition = Loader[string, []document.Document]

// NewByID returns a loader listing documents of kind by id.
func NewByID(s store.Store, kind document.Kind, opts ...Option) *ByID {
	return New(func(ctx context.Context, keys []string) ([]*document.Document, error) {
		docs, err := s.List(ctx, store.ListOptions{Keys: keys})
		if err != nil {
			return nil, err
		}

		byID := make(map[string]document.Document, len(docs))
		for _, d := range docs {
			if kind != "" && d.Kind != kind {
				continue
			}
			byID[d.ID] = d
		}

		out := make([]*document.Document, len(keys))
		for i, k := range keys {
			if d, ok := byID[k]; ok {
				out[i] = &d
			}
		}
		return out, nil
	}, opts...)
}

// NewByPartition returns a loader resolving p's groups. A key with no
// documents resolves to an empty slice.
func NewByPartition(s store.Store, p Partition, opts ...Option) *ByPartition {
	return New(func(ctx context.Context, keys []string) ([][]document.Document, error) {
		filter := store.Filter{}
		if p.Kind != "" {
			filter = filter.And(store.Eq(document.FieldKind, p.Kind))
		}
		filter = filter.And(partitionCondition(p, keys))

		docs, err := s.Query(ctx, filter, store.QueryOptions{})
		if err != nil {
			return nil, err
		}

		groups := make(map[string][]document.Document, len(keys))
		for _, d := range docs {
			v, ok := d.GetString(p.Field)
			if !ok {
				continue
			}
			groups[v] = append(groups[v], d)
		}

		out := make([][]document.Document, len(keys))
		for i, k := range keys {
			if g := groups[k]; g != nil {
				out[i] = g
			} else {
				out[i] = []document.Document{}
			}
		}
		return out, nil
	}, opts...)
}

func partitionCondition(p Partition, keys []string) store.Condition {
	if p.Strategy() == Range {
		sorted := append([]string(nil), keys...)
		sort.Strings(sorted)
		return store.Between(p.Field, sorted[0], sorted[len(sorted)-1])
	}

	values := make([]any, len(keys))
	for i, k := range keys {
		values[i] = k
	}
	return store.In(p.Field, values...)
}
