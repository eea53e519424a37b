package dialogue

import "fmt"

// Slot identifies one discrete piece of missing decision context the
// assistant may still need to ask about.
type Slot string

const (
	SlotNone       Slot = ""
	SlotTarget     Slot = "target"
	SlotPurpose    Slot = "purpose"
	SlotConstraint Slot = "constraint"
	SlotPreference Slot = "preference"
	SlotBudget     Slot = "budget"
	SlotContext    Slot = "context"
)

// slotPriority is the fixed order in which slots are considered for
// questioning. TARGET first: knowing what the user is shopping for
// unlocks everything else.
var slotPriority = [...]Slot{
	SlotTarget,
	SlotPurpose,
	SlotConstraint,
	SlotPreference,
	SlotBudget,
	SlotContext,
}

// AllSlots returns every decision slot in priority order.
func AllSlots() []Slot {
	out := make([]Slot, len(slotPriority))
	copy(out, slotPriority[:])
	return out
}

// SlotStatus is the lifecycle state of a single slot within a session.
type SlotStatus string

const (
	StatusEmpty       SlotStatus = "empty"
	StatusAsked       SlotStatus = "asked"
	StatusUserUnknown SlotStatus = "user_unknown"
	StatusAnswered    SlotStatus = "answered"
	StatusConfirmed   SlotStatus = "confirmed"
)

// statusRank orders statuses so transitions stay monotone within a turn
// cycle. Only a whole-session reset returns a slot to empty.
var statusRank = map[SlotStatus]int{
	StatusEmpty:       0,
	StatusAsked:       1,
	StatusUserUnknown: 2,
	StatusAnswered:    2,
	StatusConfirmed:   3,
}

// SlotState holds the status and the latest value bound to one slot.
type SlotState struct {
	Status SlotStatus `json:"status"`
	Value  string     `json:"value,omitempty"`
}

// QuestionContext tracks what the assistant last asked so answer binding
// and guide protection can reason about it.
type QuestionContext struct {
	LastAsked      Slot `json:"last_asked,omitempty"`
	LastGuided     Slot `json:"last_guided,omitempty"`
	GuidesSinceAsk int  `json:"guides_since_ask"`
}

// SlotBoard is the per-session store of all six slot states plus the
// question context.
type SlotBoard struct {
	Slots    map[Slot]SlotState `json:"slots"`
	Question QuestionContext    `json:"question"`
}

// NewSlotBoard returns a board with every slot empty.
func NewSlotBoard() *SlotBoard {
	b := &SlotBoard{Slots: make(map[Slot]SlotState, len(slotPriority))}
	for _, s := range slotPriority {
		b.Slots[s] = SlotState{Status: StatusEmpty}
	}
	return b
}

// State returns the current state of a slot. Unknown slots read as empty.
func (b *SlotBoard) State(s Slot) SlotState {
	if b == nil || b.Slots == nil {
		return SlotState{Status: StatusEmpty}
	}
	return b.Slots[s]
}

// MarkAsked records that a direct question was posed for the slot and
// resets the guide streak.
func (b *SlotBoard) MarkAsked(s Slot) {
	state := b.State(s)
	if statusRank[state.Status] <= statusRank[StatusAsked] {
		state.Status = StatusAsked
		b.Slots[s] = state
	}
	b.Question.LastAsked = s
	b.Question.GuidesSinceAsk = 0
}

// MarkGuided records that a directional guide was shown for the slot.
func (b *SlotBoard) MarkGuided(s Slot) {
	b.Question.LastGuided = s
	b.Question.GuidesSinceAsk++
}

// Apply executes one slot update command, respecting monotone status
// transitions: a command never moves a slot backwards.
func (b *SlotBoard) Apply(cmd SlotCommand) error {
	state := b.State(cmd.Slot)
	switch cmd.Kind {
	case CommandAnswered:
		if statusRank[StatusAnswered] < statusRank[state.Status] {
			return nil
		}
		state.Status = StatusAnswered
		state.Value = cmd.Value
	case CommandUserUnknown:
		if statusRank[StatusUserUnknown] < statusRank[state.Status] {
			return nil
		}
		state.Status = StatusUserUnknown
		state.Value = ""
	default:
		return fmt.Errorf("dialogue: unknown slot command kind %q", cmd.Kind)
	}
	b.Slots[cmd.Slot] = state
	return nil
}

// Confirm promotes an answered slot to confirmed when its value passes
// the per-slot type guard. Returns true when the promotion happened.
func (b *SlotBoard) Confirm(s Slot) bool {
	state := b.State(s)
	if state.Status != StatusAnswered {
		return false
	}
	if !ConfirmableValue(s, state.Value) {
		return false
	}
	state.Status = StatusConfirmed
	b.Slots[s] = state
	return true
}

// Reset wipes every slot back to empty and clears the question context.
func (b *SlotBoard) Reset() {
	for _, s := range slotPriority {
		b.Slots[s] = SlotState{Status: StatusEmpty}
	}
	b.Question = QuestionContext{}
}

// Filled reports whether the slot holds a usable answer.
func (b *SlotBoard) Filled(s Slot) bool {
	status := b.State(s).Status
	return status == StatusAnswered || status == StatusConfirmed
}

// Value returns the bound value for a slot, or "" when none is held.
func (b *SlotBoard) Value(s Slot) string {
	return b.State(s).Value
}
