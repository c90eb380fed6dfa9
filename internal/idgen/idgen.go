// Package idgen hands out strictly increasing item identifiers.
package idgen

// DefaultStart is the first id issued by a generator created with New(0).
const DefaultStart int64 = 1

// Generator issues ids starting at a configured value. Ids are never
// reused. A Generator is not safe for concurrent use on its own; the
// manager serializes access to it.
type Generator struct {
	next int64
}

// New returns a generator whose first id is start, or DefaultStart when
// start < 1.
func New(start int64) *Generator {
	if start < 1 {
		start = DefaultStart
	}
	return &Generator{next: start}
}

func (g *Generator) Next() int64 {
	id := g.next
	g.next++
	return id
}

// Peek returns the id the next call to Next will issue.
func (g *Generator) Peek() int64 {
	return g.next
}

// Advance moves the generator past id so that it is never issued again.
// It never moves the generator backwards.
func (g *Generator) Advance(id int64) {
	if id >= g.next {
		g.next = id + 1
	}
}
