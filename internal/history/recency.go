package history

import "github.com/baiirun/tracker/internal/model"

// head is the arena slot of the permanent sentinel. The list is circular
// through it: nodes[head].next is the most recent entry and
// nodes[head].prev the oldest.
const head = 0

type node struct {
	item       model.Item
	prev, next int
}

// Recency is a doubly linked list over an arena of nodes, addressed by
// slot index, plus an id -> slot index.
type Recency struct {
	nodes []node
	free  []int
	index map[int64]int
}

func NewRecency() *Recency {
	r := &Recency{}
	r.Clear()
	return r
}

// Touch moves item to the front, replacing any earlier snapshot of the
// same id.
func (r *Recency) Touch(item model.Item) {
	if slot, ok := r.index[item.ID]; ok {
		r.unlink(slot)
		r.nodes[slot].item = item
		r.pushFront(slot)
		return
	}
	slot := r.alloc(item)
	r.index[item.ID] = slot
	r.pushFront(slot)
}

func (r *Recency) Remove(id int64) {
	slot, ok := r.index[id]
	if !ok {
		return
	}
	r.unlink(slot)
	delete(r.index, id)
	r.nodes[slot] = node{}
	r.free = append(r.free, slot)
}

// List returns the tracked items, most recent first.
func (r *Recency) List() []model.Item {
	out := make([]model.Item, 0, len(r.index))
	for slot := r.nodes[head].next; slot != head; slot = r.nodes[slot].next {
		out = append(out, r.nodes[slot].item)
	}
	return out
}

// Clear drops every entry without walking the list.
func (r *Recency) Clear() {
	r.nodes = []node{{prev: head, next: head}}
	r.free = nil
	r.index = make(map[int64]int)
}

func (r *Recency) Len() int {
	return len(r.index)
}

func (r *Recency) alloc(item model.Item) int {
	if n := len(r.free); n > 0 {
		slot := r.free[n-1]
		r.free = r.free[:n-1]
		r.nodes[slot].item = item
		return slot
	}
	r.nodes = append(r.nodes, node{item: item})
	return len(r.nodes) - 1
}

func (r *Recency) unlink(slot int) {
	prev, next := r.nodes[slot].prev, r.nodes[slot].next
	r.nodes[prev].next = next
	r.nodes[next].prev = prev
}

func (r *Recency) pushFront(slot int) {
	first := r.nodes[head].next
	r.nodes[slot].prev = head
	r.nodes[slot].next = first
	r.nodes[first].prev = slot
	r.nodes[head].next = slot
}
