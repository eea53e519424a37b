package dialogue

// CommandKind discriminates slot update commands.
type CommandKind string

const (
	CommandAnswered    CommandKind = "answered"
	CommandUserUnknown CommandKind = "user_unknown"
)

// SlotCommand is one ordered instruction to mutate a slot.
type SlotCommand struct {
	Slot  Slot
	Kind  CommandKind
	Value string
}

// BindAnswer turns an interpretation plus the question context into an
// ordered list of slot update commands.
//
// Noise and context shifts produce nothing here: topic-shift handling is
// an orchestration-level reset, not a slot mutation. Refusals and
// unknowns mark the last-asked slot as user-unknown. Answers bind to the
// last-asked slot first, then fan out any secondary signals that target
// a different slot, so a value is never counted twice.
func BindAnswer(in Interpretation, q QuestionContext) []SlotCommand {
	switch in.Intent {
	case IntentNoise, IntentContextShift:
		return nil
	case IntentRefusal, IntentUnknown:
		if q.LastAsked == SlotNone {
			return nil
		}
		return []SlotCommand{{Slot: q.LastAsked, Kind: CommandUserUnknown}}
	case IntentAnswer:
		var cmds []SlotCommand
		if q.LastAsked != SlotNone {
			cmds = append(cmds, SlotCommand{Slot: q.LastAsked, Kind: CommandAnswered, Value: in.Value})
		}
		for _, sig := range in.Signals {
			if sig.Slot == q.LastAsked {
				continue
			}
			cmds = append(cmds, SlotCommand{Slot: sig.Slot, Kind: CommandAnswered, Value: sig.Value})
		}
		return cmds
	default:
		return nil
	}
}
