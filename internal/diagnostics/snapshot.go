package diagnostics

import (
	"time"

	"github.com/Playbex/Velocity-CTD/internal/chat"
	"github.com/jinzhu/copier"
)

// StateSnapshot is a point-in-time view of a ChatState, safe to hold onto
// or hand to a CLI/log line after the moment it was taken.
type StateSnapshot struct {
	Player             string
	LastTimestamp      time.Time
	CachedAcknowledged chat.BitSet
	DelayedAckCount    uint32
}

// Snapshot reads state's atomics once and deep-copies the result, the same
// way the teacher's merge.go uses copier.Copy to avoid aliasing a
// provider's live struct when producing a report from it.
func Snapshot(player string, state *chat.ChatState) StateSnapshot {
	src := StateSnapshot{
		Player:             player,
		LastTimestamp:      state.LastTimestamp(),
		CachedAcknowledged: state.CachedAcknowledged(),
		DelayedAckCount:    state.DelayedAckCount(),
	}
	var dst StateSnapshot
	_ = copier.Copy(&dst, &src)
	return dst
}
