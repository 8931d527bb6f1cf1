package chat

import (
	"math"
	"sync/atomic"
	"time"
)

// ChatState is the per-player record ChatQueue mutates from within a
// running task. lastTimestamp and cachedAcknowledged mirror the `volatile`
// fields of the source's ChatState: nothing but the queue's own worker
// writes them, but diagnostic readers (internal/diagnostics) may sample
// them off-task, so they're published through atomics rather than plain
// fields guarded by a mutex only the worker ever takes.
type ChatState struct {
	player string

	lastTimestampUnixNano atomic.Int64
	cachedAcknowledgedBits atomic.Uint32
	delayedAckCount        atomic.Uint32
}

// NewChatState returns a ChatState with the epoch timestamp, an empty
// cached bitmap, and a zero delayed-ack accumulator - the spec's initial
// values. player is used only to attribute violations raised from this
// state to a player in logs/diagnostics.
func NewChatState(player string) *ChatState {
	s := &ChatState{player: player}
	s.lastTimestampUnixNano.Store(0)
	return s
}

// LastTimestamp returns the wall-clock instant of the most recently
// forwarded client chat/command.
func (s *ChatState) LastTimestamp() time.Time {
	return time.Unix(0, s.lastTimestampUnixNano.Load()).UTC()
}

// CachedAcknowledged returns the last-known client acknowledgement bitmap,
// or the dummy bitmap if none is currently trustworthy.
func (s *ChatState) CachedAcknowledged() BitSet {
	return BitSet(s.cachedAcknowledgedBits.Load())
}

// DelayedAckCount returns the number of acknowledgements currently
// withheld from the server.
func (s *ChatState) DelayedAckCount() uint32 {
	return s.delayedAckCount.Load()
}

// UpdateFromMessage applies a chat/command task's timestamp and last-seen
// fields, per spec.md 4.2: the timestamp (if present) is recorded
// unconditionally; if a last-seen window is present, any accumulated
// delayed acknowledgements are flushed into its offset and the cached
// bitmap is replaced. Returns nil, nil if lastSeen is nil. The returned
// error is non-fatal: it's a ProtocolViolation to report to the connection
// supervisor, and the returned LastSeenMessages (saturated) must still be
// used by the caller.
func (s *ChatState) UpdateFromMessage(timestamp *time.Time, lastSeen *LastSeenMessages) (*LastSeenMessages, error) {
	if timestamp != nil {
		s.lastTimestampUnixNano.Store(timestamp.UnixNano())
	}
	if lastSeen == nil {
		return nil, nil
	}

	delayed := s.delayedAckCount.Swap(0)
	s.cachedAcknowledgedBits.Store(uint32(lastSeen.Acknowledged()))

	shifted, err := lastSeen.ShiftedBy(delayed, s.player)
	return &shifted, err
}

// AccumulateAck applies an acknowledgement task's count, per spec.md 4.2.
// n must be non-negative; a negative n is malformed client input and is
// reported without mutating any state. On success it returns the count of
// acknowledgements to forward to the server as a ChatAcknowledgement
// packet, or 0 if they should keep being withheld.
func (s *ChatState) AccumulateAck(n int32) (uint32, error) {
	if n < 0 {
		return 0, &ProtocolViolation{Player: s.player, Reason: "negative acknowledgement count"}
	}

	for {
		old := s.delayedAckCount.Load()
		sum := uint64(old) + uint64(n)
		delayed := uint32(math.MaxUint32)
		if sum <= math.MaxUint32 {
			delayed = uint32(sum)
		}
		if !s.delayedAckCount.CompareAndSwap(old, delayed) {
			continue
		}

		if delayed < AckForwardThreshold {
			return 0, nil
		}
		forwardable := int64(delayed) - MinDelayed

		s.cachedAcknowledgedBits.Store(uint32(DummyBitSet))
		if !s.delayedAckCount.CompareAndSwap(delayed, MinDelayed) {
			return 0, &InvariantViolation{Player: s.player, Reason: "delayed ack count mutated outside the owning queue"}
		}
		return uint32(forwardable), nil
	}
}

// CreateLastSeen builds a LastSeenMessages carrying the current cached
// bitmap at offset zero, for proxy-synthesized packets that weren't
// triggered by a fresh client packet.
func (s *ChatState) CreateLastSeen() LastSeenMessages {
	return NewLastSeenMessages(0, s.CachedAcknowledged())
}
