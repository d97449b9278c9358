package composer

// Trigger characters are fixed: @ opens a mention or file-reference picker
// depending on configured context, / opens the command picker.
const (
	MentionTrigger = '@'
	CommandTrigger = '/'
)

// Kind identifies the picker variant.
type Kind int

const (
	KindClosed Kind = iota
	KindMention
	KindFileRef
	KindCommand
)

func (k Kind) String() string {
	switch k {
	case KindClosed:
		return "closed"
	case KindMention:
		return "mention"
	case KindFileRef:
		return "fileref"
	case KindCommand:
		return "command"
	default:
		return "unknown"
	}
}

// trigger returns the trigger character for an open picker kind.
func (k Kind) trigger() rune {
	if k == KindCommand {
		return CommandTrigger
	}
	return MentionTrigger
}

// State is the picker state: Closed, or one open variant with the offset of
// its trigger character and the live query between trigger and cursor.
// At most one variant is open at a time.
type State struct {
	Kind          Kind
	TriggerOffset int
	Query         string
}

// Closed is the closed picker state.
var Closed = State{Kind: KindClosed}

// Open reports whether any picker variant is active.
func (s State) Open() bool { return s.Kind != KindClosed }

// Context carries the configured contexts that gate trigger activation.
// A picker never opens without a valid context.
type Context struct {
	// AgentContext identifies the active conversation scope for mentions
	// (the team/project id). Empty disables the mention picker.
	AgentContext string
	// BasePath is the directory file references resolve against.
	// Empty disables the file-reference picker.
	BasePath string
}

// Tracker evaluates picker transitions for each buffer edit.
type Tracker struct {
	ctx Context
}

// NewTracker creates a tracker for the given context configuration.
func NewTracker(ctx Context) Tracker {
	return Tracker{ctx: ctx}
}

// Track computes the picker state after an edit has been applied to the
// buffer. Trigger checks run in fixed priority (command, then mention/fileref)
// and only against a just-inserted single character; at most one fires per
// edit. While a picker is open, every edit rescans the query span.
func (t Tracker) Track(prev State, buf Buffer, e Edit) State {
	if e.Kind == EditClear {
		return Closed
	}

	// Trigger detection targets exactly the just-inserted character.
	if e.Kind == EditInsert && len(e.Runes) == 1 {
		if next, ok := t.detect(buf, e.Runes[0]); ok {
			return next
		}
	}

	if !prev.Open() {
		return Closed
	}
	return rescan(prev, buf)
}

// detect classifies a single-character insertion as opening a picker.
// The inserted rune sits at buf.Cursor()-1.
func (t Tracker) detect(buf Buffer, inserted rune) (State, bool) {
	at := buf.Cursor() - 1

	switch inserted {
	case CommandTrigger:
		// A slash triggers only at buffer start, or when the character
		// two positions back from it is whitespace; otherwise it stays
		// literal ("x /rev" does not open a picker).
		if at == 0 || (at >= 2 && isBoundary(buf.RuneAt(at-2))) {
			return State{Kind: KindCommand, TriggerOffset: at}, true
		}

	case MentionTrigger:
		// Mention wins over file reference when both contexts exist.
		if t.ctx.AgentContext != "" {
			return State{Kind: KindMention, TriggerOffset: at}, true
		}
		if t.ctx.BasePath != "" {
			return State{Kind: KindFileRef, TriggerOffset: at}, true
		}
	}

	return Closed, false
}

// rescan walks backward from the cursor looking for the open picker's
// trigger character without crossing whitespace. Covers trigger deletion
// and cursor relocation past a word boundary.
func rescan(prev State, buf Buffer) State {
	trigger := prev.Kind.trigger()
	cursor := buf.Cursor()

	for i := cursor - 1; i >= 0; i-- {
		r := buf.RuneAt(i)
		if r == trigger {
			return State{
				Kind:          prev.Kind,
				TriggerOffset: i,
				Query:         buf.Slice(i+1, cursor),
			}
		}
		if isBoundary(r) {
			break
		}
	}
	return Closed
}
