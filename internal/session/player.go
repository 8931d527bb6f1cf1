package session

import (
	"sync"

	"github.com/Playbex/Velocity-CTD/internal/chat"
	"github.com/google/uuid"
)

// Player is the opaque handle spec.md 6 describes: something that can
// produce "the current ServerLink" for the player's ChatQueue, and that
// may change which link that is at any time (a server switch/transfer),
// invisibly to already-enqueued tasks.
type Player struct {
	UUID            uuid.UUID
	Name            string
	ProtocolVersion int

	mu   sync.RWMutex
	link *ServerLink
}

// NewPlayer creates a Player identity. A random UUID stands in for the
// real session identity, which spec.md 1 treats as an external
// collaborator.
func NewPlayer(name string, protocolVersion int) *Player {
	return &Player{
		UUID:            uuid.New(),
		Name:            name,
		ProtocolVersion: protocolVersion,
	}
}

// SetServerLink swaps the backend link the player is currently routed
// through, e.g. after a server transfer.
func (p *Player) SetServerLink(link *ServerLink) {
	p.mu.Lock()
	p.link = link
	p.mu.Unlock()
}

// CurrentServerLink implements chat.PlayerHandle: it's resolved fresh on
// every call, so a ChatQueue task always writes to whatever server the
// player is connected to at execution time, not at enqueue time.
func (p *Player) CurrentServerLink() chat.ServerLink {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.link == nil {
		return nil
	}
	return p.link
}
