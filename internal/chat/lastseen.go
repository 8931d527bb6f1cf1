package chat

import "math"

// LastSeenMessages is an immutable snapshot of the set of recently-seen
// signed message indices plus an integer offset. It is carried inside
// signed chat and command packets.
type LastSeenMessages struct {
	Offset       uint32
	acknowledged BitSet
}

// NewLastSeenMessages builds a LastSeenMessages from an offset and bitmap.
func NewLastSeenMessages(offset uint32, acknowledged BitSet) LastSeenMessages {
	return LastSeenMessages{Offset: offset, acknowledged: acknowledged}
}

// Acknowledged returns the bitmap of recently-seen signed message indices.
func (l LastSeenMessages) Acknowledged() BitSet {
	return l.acknowledged
}

// ShiftedBy returns a new value with Offset increased by delta and the
// acknowledged bitmap unchanged, without mutating l. If offset+delta would
// overflow the protocol's uint32 offset field, the result saturates at
// math.MaxUint32 and a ProtocolViolation is returned alongside it - the
// caller must still use the saturated value so the chain keeps moving.
func (l LastSeenMessages) ShiftedBy(delta uint32, player string) (LastSeenMessages, error) {
	sum := uint64(l.Offset) + uint64(delta)
	if sum > math.MaxUint32 {
		return LastSeenMessages{Offset: math.MaxUint32, acknowledged: l.acknowledged},
			&ProtocolViolation{Player: player, Reason: "last-seen offset overflow"}
	}
	return LastSeenMessages{Offset: uint32(sum), acknowledged: l.acknowledged}, nil
}
