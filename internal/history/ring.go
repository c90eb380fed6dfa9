package history

import "github.com/baiirun/tracker/internal/model"

// Ring remembers the last capacity reads, most recent first. Repeated
// reads of the same id occupy separate slots.
type Ring struct {
	slots []model.Item
	next  int
	count int
}

func NewRing(capacity int) *Ring {
	return &Ring{slots: make([]model.Item, capacity)}
}

func (r *Ring) Touch(item model.Item) {
	r.slots[r.next] = item
	r.next = (r.next + 1) % len(r.slots)
	if r.count < len(r.slots) {
		r.count++
	}
}

// Remove drops every slot holding id, keeping the order of the rest.
func (r *Ring) Remove(id int64) {
	kept := r.oldestFirst()
	r.Clear()
	for _, item := range kept {
		if item.ID != id {
			r.Touch(item)
		}
	}
}

func (r *Ring) List() []model.Item {
	out := make([]model.Item, 0, r.count)
	for k := 1; k <= r.count; k++ {
		out = append(out, r.slots[(r.next-k+len(r.slots))%len(r.slots)])
	}
	return out
}

func (r *Ring) Clear() {
	clear(r.slots)
	r.next = 0
	r.count = 0
}

func (r *Ring) Len() int {
	return r.count
}

func (r *Ring) oldestFirst() []model.Item {
	out := make([]model.Item, 0, r.count)
	for k := r.count; k >= 1; k-- {
		out = append(out, r.slots[(r.next-k+len(r.slots))%len(r.slots)])
	}
	return out
}
