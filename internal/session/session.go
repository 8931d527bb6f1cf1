package session

import (
	"context"
	"time"

	"github.com/Playbex/Velocity-CTD/internal/chat"
	"github.com/sirupsen/logrus"
)

// Session ties a Player's identity to its ChatQueue and handler chain, the
// way the teacher's utils/proxy.Session ties a player to its Client/Server
// connections and Handlers.
type Session struct {
	log      *logrus.Entry
	ctx      context.Context
	cancel   context.CancelFunc
	player   *Player
	queue    *chat.ChatQueue
	handlers Handlers
}

// NewSession starts a ChatQueue for player and runs every registered
// OnSessionStart hook. sink (may be nil) receives protocol/invariant
// violations raised by the queue.
func NewSession(ctx context.Context, player *Player, sink chat.ViolationSink, handlers Handlers) *Session {
	sctx, cancel := context.WithCancel(ctx)
	s := &Session{
		log:      logrus.WithField("player", player.Name),
		ctx:      sctx,
		cancel:   cancel,
		player:   player,
		handlers: handlers,
	}
	s.queue = chat.NewChatQueue(player.Name, player, &forwardingSink{session: s, sink: sink})
	if err := handlers.OnSessionStart(s); err != nil {
		s.log.Warnf("session start handler failed: %v", err)
	}
	return s
}

// Queue returns the player's ChatQueue.
func (s *Session) Queue() *chat.ChatQueue { return s.queue }

// Player returns the session's player identity.
func (s *Session) Player() *Player { return s.player }

// Context returns the session's lifetime context, canceled on Disconnect.
func (s *Session) Context() context.Context { return s.ctx }

// ForwardClientChat enqueues a client-originated chat message, giving
// every registered handler a chance to veto forwarding first (but never to
// rewrite the message - spec.md 1's Non-goals).
func (s *Session) ForwardClientChat(message string, timestamp time.Time, lastSeen *chat.LastSeenMessages, build chat.BuildPacketFunc) {
	if s.handlers.OnClientChat(s, message) {
		s.log.Debugf("chat message from %s dropped by a handler", s.player.Name)
		return
	}
	ts := timestamp
	s.queue.EnqueueClientPacket(build, &ts, lastSeen)
}

// ForwardClientCommand enqueues a client-originated signed command. Commands
// carry their own last-seen window exactly like chat, but spec.md's veto
// hook (OnClientChat) is chat-specific, so commands skip straight to the
// queue.
func (s *Session) ForwardClientCommand(timestamp time.Time, lastSeen *chat.LastSeenMessages, build chat.BuildPacketFunc) {
	ts := timestamp
	s.queue.EnqueueClientPacket(build, &ts, lastSeen)
}

// ForwardClientAcknowledgement enqueues a client acknowledgement.
func (s *Session) ForwardClientAcknowledgement(offset int32) {
	s.queue.EnqueueAcknowledgement(offset)
}

// EnqueueSynthesized injects a proxy-internal packet in order relative to
// client traffic.
func (s *Session) EnqueueSynthesized(fn func(chat.StateView) any) {
	s.queue.EnqueueSynthesized(fn)
}

// Disconnect runs every OnSessionEnd hook, stops the player's ChatQueue and
// cancels the session context. Per spec.md 3, the queue's tail is not
// awaited: any task still in flight will simply observe a closed link.
func (s *Session) Disconnect() {
	s.handlers.OnSessionEnd(s)
	s.queue.Close()
	if link := s.player.CurrentServerLink(); link != nil {
		if concrete, ok := link.(*ServerLink); ok {
			concrete.Close()
		}
	}
	s.cancel()
}

type forwardingSink struct {
	session *Session
	sink    chat.ViolationSink
}

func (f *forwardingSink) ReportProtocolViolation(err error) {
	f.session.handlers.OnProtocolViolation(f.session, err)
	if f.sink != nil {
		f.sink.ReportProtocolViolation(err)
	}
}

func (f *forwardingSink) ReportInvariantViolation(err error) {
	f.session.handlers.OnProtocolViolation(f.session, err)
	if f.sink != nil {
		f.sink.ReportInvariantViolation(err)
	}
}
