package handshake

// State is a step of the handshake.
type State uint32

const (
	Idle State = iota
	Triggered
	AwaitingCompletion
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Triggered:
		return "TRIGGERED"
	case AwaitingCompletion:
		return "AWAITING_COMPLETION"
	case Done:
		return "DONE"
	default:
		return "(invalid state)"
	}
}
