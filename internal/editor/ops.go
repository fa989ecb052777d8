package editor

import (
	"fmt"
	"strconv"
	"strings"
)

// OpKind is the action a form button requests after the sync.
type OpKind string

const (
	OpSave       OpKind = "save"
	OpSubmit     OpKind = "submit"
	OpAddDay     OpKind = "add_day"
	OpRemoveDay  OpKind = "remove_day"
	OpAddSlot    OpKind = "add_slot"
	OpRemoveSlot OpKind = "remove_slot"
	OpAppend     OpKind = "add"
	OpRemove     OpKind = "remove"
)

// Op is a parsed button value. Encodings:
//
//	save | submit | add_day | remove_day:<day> | add_slot:<day> |
//	remove_slot:<day>:<slotID> | add:<list> | remove:<list>:<index>
type Op struct {
	Kind  OpKind
	Day   int
	Slot  string
	List  ListKind
	Index int
}

func (o Op) String() string {
	switch o.Kind {
	case OpRemoveDay, OpAddSlot:
		return fmt.Sprintf("%s:%d", o.Kind, o.Day)
	case OpRemoveSlot:
		return fmt.Sprintf("%s:%d:%s", o.Kind, o.Day, o.Slot)
	case OpAppend:
		return fmt.Sprintf("%s:%s", o.Kind, o.List)
	case OpRemove:
		return fmt.Sprintf("%s:%s:%d", o.Kind, o.List, o.Index)
	}
	return string(o.Kind)
}

// ParseOp decodes a button value. An empty value is a plain save.
func ParseOp(raw string) (Op, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Op{Kind: OpSave}, nil
	}

	parts := strings.Split(raw, ":")
	kind := OpKind(parts[0])
	args := parts[1:]

	bad := func() (Op, error) {
		return Op{}, fmt.Errorf("%w: %q", ErrUnknownOp, raw)
	}

	switch kind {
	case OpSave, OpSubmit, OpAddDay:
		if len(args) != 0 {
			return bad()
		}
		return Op{Kind: kind}, nil

	case OpRemoveDay, OpAddSlot:
		if len(args) != 1 {
			return bad()
		}
		day, err := strconv.Atoi(args[0])
		if err != nil {
			return bad()
		}
		return Op{Kind: kind, Day: day}, nil

	case OpRemoveSlot:
		if len(args) != 2 || args[1] == "" {
			return bad()
		}
		day, err := strconv.Atoi(args[0])
		if err != nil {
			return bad()
		}
		return Op{Kind: kind, Day: day, Slot: args[1]}, nil

	case OpAppend:
		if len(args) != 1 || !validList(ListKind(args[0])) {
			return bad()
		}
		return Op{Kind: kind, List: ListKind(args[0])}, nil

	case OpRemove:
		if len(args) != 2 || !validList(ListKind(args[0])) {
			return bad()
		}
		idx, err := strconv.Atoi(args[1])
		if err != nil {
			return bad()
		}
		return Op{Kind: kind, List: ListKind(args[0]), Index: idx}, nil
	}
	return bad()
}

func validList(k ListKind) bool {
	return k == Ingredients || k == Nutrients || k == Steps
}

// Apply runs a structural meal plan op. Save and submit are not structural
// and are left to the caller.
func (d *MealPlanDraft) Apply(op Op) error {
	switch op.Kind {
	case OpSave, OpSubmit:
		return nil
	case OpAddDay:
		return d.AddDay()
	case OpRemoveDay:
		return d.RemoveDay(op.Day)
	case OpAddSlot:
		_, err := d.AddSlot(op.Day)
		return err
	case OpRemoveSlot:
		return d.RemoveSlot(op.Day, op.Slot)
	}
	return fmt.Errorf("%w: %s on a meal plan", ErrUnknownOp, op)
}

// Apply runs a structural recipe op.
func (d *RecipeDraft) Apply(op Op) error {
	switch op.Kind {
	case OpSave, OpSubmit:
		return nil
	case OpAppend:
		return d.Append(op.List)
	case OpRemove:
		return d.Remove(op.List, op.Index)
	}
	return fmt.Errorf("%w: %s on a recipe", ErrUnknownOp, op)
}
