package chat

import "fmt"

// ProtocolViolation reports client input that breaks the Secure Chat
// contract (an out-of-range last-seen offset, a negative acknowledgement
// count). The queue keeps running; the connection supervisor decides
// whether to tear the player down.
type ProtocolViolation struct {
	Player string
	Reason string
}

func (e *ProtocolViolation) Error() string {
	return fmt.Sprintf("protocol violation for %s: %s", e.Player, e.Reason)
}

// InvariantViolation reports a bug in the queue's own bookkeeping (e.g. a
// delayed-ack underflow). It is fatal to the ChatQueue that raised it.
type InvariantViolation struct {
	Player string
	Reason string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation for %s: %s", e.Player, e.Reason)
}
