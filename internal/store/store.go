// Package store provides the keyed containers behind the task manager: an
// unordered map-backed store for the item table and epic index, and an
// ordered B-tree store for range queries by key.
package store

// Store is the keyed-storage contract. Get and Delete report absence with a
// false second value rather than a placeholder.
type Store[K comparable, V any] interface {
	Put(key K, value V)
	Get(key K) (V, bool)
	Delete(key K) (V, bool)
	Clear()
	Values() []V
	Len() int
	IsEmpty() bool
}

// Map is an unordered Store. Values returns entries in no particular order.
type Map[K comparable, V any] struct {
	m map[K]V
}

func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{m: make(map[K]V)}
}

func (s *Map[K, V]) Put(key K, value V) {
	s.m[key] = value
}

func (s *Map[K, V]) Get(key K) (V, bool) {
	v, ok := s.m[key]
	return v, ok
}

func (s *Map[K, V]) Delete(key K) (V, bool) {
	v, ok := s.m[key]
	if ok {
		delete(s.m, key)
	}
	return v, ok
}

func (s *Map[K, V]) Clear() {
	s.m = make(map[K]V)
}

func (s *Map[K, V]) Values() []V {
	out := make([]V, 0, len(s.m))
	for _, v := range s.m {
		out = append(out, v)
	}
	return out
}

func (s *Map[K, V]) Len() int {
	return len(s.m)
}

func (s *Map[K, V]) IsEmpty() bool {
	return len(s.m) == 0
}
