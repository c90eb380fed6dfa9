package store

import "github.com/google/btree"

const btreeDegree = 16

type entry[K, V any] struct {
	key   K
	value V
}

// Ordered is a Store kept in key order by a caller-supplied less function.
// Put, Get and Delete are O(log n); Values, HeadBefore and TailFrom return
// snapshots in ascending key order.
type Ordered[K comparable, V any] struct {
	less func(a, b K) bool
	tree *btree.BTreeG[entry[K, V]]
}

func NewOrdered[K comparable, V any](less func(a, b K) bool) *Ordered[K, V] {
	return &Ordered[K, V]{
		less: less,
		tree: btree.NewG(btreeDegree, func(a, b entry[K, V]) bool {
			return less(a.key, b.key)
		}),
	}
}

func (s *Ordered[K, V]) Put(key K, value V) {
	s.tree.ReplaceOrInsert(entry[K, V]{key: key, value: value})
}

func (s *Ordered[K, V]) Get(key K) (V, bool) {
	e, ok := s.tree.Get(entry[K, V]{key: key})
	return e.value, ok
}

func (s *Ordered[K, V]) Delete(key K) (V, bool) {
	e, ok := s.tree.Delete(entry[K, V]{key: key})
	return e.value, ok
}

func (s *Ordered[K, V]) Clear() {
	s.tree.Clear(false)
}

func (s *Ordered[K, V]) Values() []V {
	out := make([]V, 0, s.tree.Len())
	s.tree.Ascend(func(e entry[K, V]) bool {
		out = append(out, e.value)
		return true
	})
	return out
}

func (s *Ordered[K, V]) Len() int {
	return s.tree.Len()
}

func (s *Ordered[K, V]) IsEmpty() bool {
	return s.tree.Len() == 0
}

// HeadBefore returns the values whose keys sort strictly before key.
func (s *Ordered[K, V]) HeadBefore(key K) []V {
	var out []V
	s.tree.AscendLessThan(entry[K, V]{key: key}, func(e entry[K, V]) bool {
		out = append(out, e.value)
		return true
	})
	return out
}

// TailFrom returns the values whose keys sort at or after key. When
// inclusive is false an entry equal to key is skipped.
func (s *Ordered[K, V]) TailFrom(key K, inclusive bool) []V {
	var out []V
	s.tree.AscendGreaterOrEqual(entry[K, V]{key: key}, func(e entry[K, V]) bool {
		if !inclusive && !s.less(key, e.key) {
			return true
		}
		out = append(out, e.value)
		return true
	})
	return out
}
