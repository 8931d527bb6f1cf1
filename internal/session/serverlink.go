package session

import "sync"

// Transport is the collaborator that actually puts bytes on the wire.
// Packet codecs and the network connection itself are external
// collaborators per spec.md 1; ServerLink only needs something that can
// accept an already-built packet.
type Transport interface {
	Send(pk any) error
}

// ServerLink is the concrete backend connection handle. It satisfies
// chat.ServerLink structurally (IsOpen, Write) without either package
// importing the other's concrete types.
type ServerLink struct {
	mu        sync.Mutex
	open      bool
	transport Transport
	exec      *Executor
}

// NewServerLink wraps transport in a ServerLink that starts open.
func NewServerLink(transport Transport) *ServerLink {
	return &ServerLink{
		open:      true,
		transport: transport,
		exec:      NewExecutor(),
	}
}

// IsOpen reports whether the link still accepts writes.
func (l *ServerLink) IsOpen() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.open
}

// Write hands pk to the transport on the link's executor and blocks until
// that send completes, satisfying spec.md 4.3's "await network-level flush
// completion uninterruptibly" requirement. A closed link is a silent no-op.
func (l *ServerLink) Write(pk any) error {
	if !l.IsOpen() {
		return nil
	}
	var sendErr error
	l.exec.Submit(func() {
		if !l.IsOpen() {
			return
		}
		sendErr = l.transport.Send(pk)
	})
	return sendErr
}

// Close marks the link closed; subsequent writes no-op, matching what the
// queue must tolerate on disconnect (spec.md 8 scenario 4).
func (l *ServerLink) Close() {
	l.mu.Lock()
	l.open = false
	l.mu.Unlock()
	l.exec.Close()
}
