// Package model defines the work items tracked by the manager: standalone
// tasks, epics, and the subtasks that belong to an epic.
package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	ErrInvalidKind     = errors.New("model: invalid item kind")
	ErrInvalidStatus   = errors.New("model: invalid status")
	ErrInvalidDuration = errors.New("model: duration must not be negative")
	ErrInvalidField    = errors.New("model: invalid field")
)

// IsInvalid reports whether err was caused by rejected item input.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidKind) || errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidDuration) || errors.Is(err, ErrInvalidField)
}

// Kind discriminates the three item variants.
type Kind string

const (
	KindTask    Kind = "TASK"
	KindEpic    Kind = "EPIC"
	KindSubtask Kind = "SUBTASK"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindTask, KindEpic, KindSubtask:
		return true
	default:
		return false
	}
}

// ParseKind accepts the upper-case record form as well as lower-case CLI input.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	if k == "SUB" {
		k = KindSubtask
	}
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

type Status string

const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// Item is a value snapshot of a stored work item. It holds no references
// into manager state, so copies can be mutated freely.
//
// StartTime is the zero time when no window is set. For epics the window
// and status are derived from their subtasks; TimeDefined reports whether
// a window has been computed. EpicID is only meaningful for subtasks.
type Item struct {
	ID          int64
	Kind        Kind
	Name        string
	Description string
	Status      Status
	StartTime   time.Time
	Duration    time.Duration
	TimeDefined bool
	EpicID      int64
}

// HasTime reports whether the item has a start time.
func (i Item) HasTime() bool {
	return !i.StartTime.IsZero()
}

// EndTime returns StartTime + Duration, or the zero time when no window is set.
func (i Item) EndTime() time.Time {
	if !i.HasTime() {
		return time.Time{}
	}
	return i.StartTime.Add(i.Duration)
}

// Draft carries the caller-supplied fields for a new item. EpicID is only
// read when creating a subtask; StartTime and Duration are ignored for epics.
type Draft struct {
	Name        string        `validate:"required,notblank,max=255"`
	Description string        `validate:"max=4096"`
	StartTime   time.Time
	Duration    time.Duration `validate:"gte=0"`
	EpicID      int64         `validate:"gte=0"`
}

func (d Draft) Validate() error {
	if d.Duration < 0 {
		return ErrInvalidDuration
	}
	return validateStruct(d)
}

// Patch describes a partial update. Nil fields are left untouched. Status,
// StartTime and Duration only apply to tasks and subtasks; a non-nil zero
// StartTime clears the window.
type Patch struct {
	ID          int64
	Name        *string `validate:"omitnil,notblank,max=255"`
	Description *string `validate:"omitnil,max=4096"`
	Status      *Status
	StartTime   *time.Time
	Duration    *time.Duration
}

func (p Patch) Validate() error {
	if p.Status != nil && !p.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, *p.Status)
	}
	if p.Duration != nil && *p.Duration < 0 {
		return ErrInvalidDuration
	}
	return validateStruct(p)
}

// MaxMinutes is the longest duration, in whole minutes, a time.Duration holds.
const MaxMinutes = math.MaxInt64 / int64(time.Minute)

// Minutes converts a whole-minute count to a Duration, rejecting counts that
// are negative or would overflow.
func Minutes(n int64) (time.Duration, error) {
	if n < 0 {
		return 0, ErrInvalidDuration
	}
	if n > MaxMinutes {
		return 0, fmt.Errorf("%w: %d minutes exceeds %d", ErrInvalidDuration, n, MaxMinutes)
	}
	return time.Duration(n) * time.Minute, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", strings.ToLower(e.Field()), e.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidField, strings.Join(msgs, "; "))
}
