package sendlib

// State is a stage of a connection worker.
type State uint8

const (
	StateAccepted State = iota
	StateBufferBuilt
	StateStreaming
	StateClosing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAccepted:
		return "accepted"
	case StateBufferBuilt:
		return "buffer-built"
	case StateStreaming:
		return "streaming"
	case StateClosing:
		return "closing"
	case StateDone:
		return "done"
	}

	return "unknown"
}
