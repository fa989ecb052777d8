// Package editor holds the draft state of the admin create/edit forms and the
// operations that mutate it. Drafts are plain values; where they live between
// requests is the drafts package's concern.
package editor

import (
	"errors"
	"fmt"
)

var (
	ErrIndexOutOfRange   = errors.New("editor: index out of range")
	ErrSlotNotFound      = errors.New("editor: slot not found")
	ErrNotEditable       = errors.New("editor: draft is not editable in its current phase")
	ErrInvalidTransition = errors.New("editor: invalid phase transition")
	ErrNothingToSubmit   = errors.New("editor: draft is empty")
	ErrUnknownOp         = errors.New("editor: unknown operation")
)

// Phase is where a draft sits in its lifecycle:
//
//	Empty -> Populated -> Submitting -> Succeeded
//	                          \-> Populated (on failure)
//	Loading -> Populated | LoadFailed
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseLoading
	PhasePopulated
	PhaseSubmitting
	PhaseSucceeded
	PhaseLoadFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseLoading:
		return "loading"
	case PhasePopulated:
		return "populated"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseLoadFailed:
		return "load_failed"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Terminal phases end the draft's life.
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseLoadFailed
}

var transitions = map[Phase][]Phase{
	PhaseEmpty:      {PhasePopulated},
	PhaseLoading:    {PhasePopulated, PhaseLoadFailed},
	PhasePopulated:  {PhaseSubmitting},
	PhaseSubmitting: {PhaseSucceeded, PhasePopulated},
}

func (p Phase) can(to Phase) bool {
	for _, next := range transitions[p] {
		if next == to {
			return true
		}
	}
	return false
}

// lifecycle is embedded by both drafts.
type lifecycle struct {
	Phase Phase `json:"phase"`
	// EntityID is set for edit drafts: the backend id being updated.
	EntityID string `json:"entityId,omitempty"`
	// LoadError is the message shown when an edit draft failed to load.
	LoadError string `json:"loadError,omitempty"`
}

func (l *lifecycle) move(to Phase) error {
	if !l.Phase.can(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, l.Phase, to)
	}
	l.Phase = to
	return nil
}

// touch is called by every field edit: an empty draft becomes populated and
// drafts that are loading, submitting or finished refuse edits.
func (l *lifecycle) touch() error {
	switch l.Phase {
	case PhaseEmpty:
		l.Phase = PhasePopulated
		return nil
	case PhasePopulated:
		return nil
	}
	return fmt.Errorf("%w (%s)", ErrNotEditable, l.Phase)
}

// IsEdit reports whether the draft updates an existing entity.
func (l *lifecycle) IsEdit() bool {
	return l.EntityID != ""
}

// Editable reports whether field edits are accepted.
func (l *lifecycle) Editable() bool {
	return l.Phase == PhaseEmpty || l.Phase == PhasePopulated
}

// Fail records a load failure. The draft is read-only from here on.
func (l *lifecycle) Fail(cause error) error {
	if err := l.move(PhaseLoadFailed); err != nil {
		return err
	}
	l.LoadError = cause.Error()
	return nil
}

// Finish closes a submission: nil moves to Succeeded, anything else returns
// the draft, unchanged, to Populated so the user can retry.
func (l *lifecycle) Finish(submitErr error) error {
	if submitErr == nil {
		return l.move(PhaseSucceeded)
	}
	return l.move(PhasePopulated)
}

// Status is the draft's current phase.
func (l *lifecycle) Status() Phase {
	return l.Phase
}

// Entity is the backend id an edit draft updates, empty for create drafts.
func (l *lifecycle) Entity() string {
	return l.EntityID
}

func (l *lifecycle) LoadFailure() string {
	return l.LoadError
}
