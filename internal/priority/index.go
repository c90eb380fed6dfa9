// Package priority keeps timed items in ascending start-time order.
package priority

import (
	"time"

	"github.com/baiirun/tracker/internal/model"
	"github.com/baiirun/tracker/internal/store"
)

type key struct {
	start time.Time
	id    int64
}

func less(a, b key) bool {
	if !a.start.Equal(b.start) {
		return a.start.Before(b.start)
	}
	return a.id < b.id
}

// Index orders items by (start time, id). Items without a start time are
// never stored.
type Index struct {
	items *store.Ordered[key, model.Item]
	keys  map[int64]key
}

func New() *Index {
	return &Index{
		items: store.NewOrdered[key, model.Item](less),
		keys:  make(map[int64]key),
	}
}

// Upsert inserts item or moves it to its new position. An item whose start
// time was cleared is dropped from the index.
func (x *Index) Upsert(item model.Item) {
	x.Remove(item.ID)
	if !item.HasTime() {
		return
	}
	k := key{start: item.StartTime, id: item.ID}
	x.items.Put(k, item)
	x.keys[item.ID] = k
}

func (x *Index) Remove(id int64) {
	k, ok := x.keys[id]
	if !ok {
		return
	}
	x.items.Delete(k)
	delete(x.keys, id)
}

func (x *Index) Ascending() []model.Item {
	return x.items.Values()
}

// Before returns the items starting strictly before t.
func (x *Index) Before(t time.Time) []model.Item {
	return x.items.HeadBefore(key{start: t})
}

// Between returns the items starting in [from, to).
func (x *Index) Between(from, to time.Time) []model.Item {
	var out []model.Item
	for _, item := range x.items.TailFrom(key{start: from}, true) {
		if !item.StartTime.Before(to) {
			break
		}
		out = append(out, item)
	}
	return out
}

func (x *Index) Clear() {
	x.items.Clear()
	x.keys = make(map[int64]key)
}

func (x *Index) Len() int {
	return x.items.Len()
}
