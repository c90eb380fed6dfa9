// Package history records which items were read most recently.
//
// Two policies are available. Recency keeps every id at most once, most
// recent first, with O(1) touch and remove. Ring keeps a fixed number of
// reads and silently overwrites the oldest once full; it does not
// deduplicate by id.
package history

import (
	"fmt"

	"github.com/baiirun/tracker/internal/model"
)

// Tracker is implemented by both policies.
type Tracker interface {
	Touch(item model.Item)
	Remove(id int64)
	List() []model.Item
	Clear()
	Len() int
}

type Policy string

const (
	PolicyRecency Policy = "recency"
	PolicyRing    Policy = "ring"
)

func (p Policy) IsValid() bool {
	return p == PolicyRecency || p == PolicyRing
}

// New builds a tracker for the given policy. capacity is only used by
// PolicyRing.
func New(policy Policy, capacity int) (Tracker, error) {
	switch policy {
	case PolicyRecency, "":
		return NewRecency(), nil
	case PolicyRing:
		if capacity < 1 {
			return nil, fmt.Errorf("history: ring capacity must be positive, got %d", capacity)
		}
		return NewRing(capacity), nil
	default:
		return nil, fmt.Errorf("history: unknown policy %q", policy)
	}
}
