package session

import (
	fp "github.com/repeale/fp-go"
)

// Handler is a set of optional hooks a proxy-internal component can
// register to observe a Session's lifecycle, mirroring the teacher's
// Handlers/Handler pair in utils/proxy/handlers.go. Unlike that resource
// pack/game data plumbing, nothing here is allowed to rewrite chat content
// (spec.md 1's Non-goals) - OnClientChat may only veto forwarding.
type Handler struct {
	Name string

	OnSessionStart      func(s *Session) error
	OnClientChat        func(s *Session, message string) (drop bool)
	OnProtocolViolation func(s *Session, err error)
	OnSessionEnd        func(s *Session)
}

// Handlers is an ordered chain of Handler, the way teacher's proxy.go
// assembles its ProxyHandler chain.
type Handlers []*Handler

func (h Handlers) with(pred func(*Handler) bool) Handlers {
	return Handlers(fp.Filter(pred)(h))
}

// OnSessionStart runs every registered start hook in order, stopping at
// the first error.
func (h Handlers) OnSessionStart(s *Session) error {
	for _, handler := range h.with(func(hd *Handler) bool { return hd.OnSessionStart != nil }) {
		if err := handler.OnSessionStart(s); err != nil {
			return err
		}
	}
	return nil
}

// OnClientChat reports whether any handler wants the message dropped
// before it ever reaches the chat queue.
func (h Handlers) OnClientChat(s *Session, message string) bool {
	for _, handler := range h.with(func(hd *Handler) bool { return hd.OnClientChat != nil }) {
		if handler.OnClientChat(s, message) {
			return true
		}
	}
	return false
}

// OnProtocolViolation fans a violation out to every interested handler.
func (h Handlers) OnProtocolViolation(s *Session, err error) {
	for _, handler := range h.with(func(hd *Handler) bool { return hd.OnProtocolViolation != nil }) {
		handler.OnProtocolViolation(s, err)
	}
}

// OnSessionEnd runs every registered end hook.
func (h Handlers) OnSessionEnd(s *Session) {
	for _, handler := range h.with(func(hd *Handler) bool { return hd.OnSessionEnd != nil }) {
		handler.OnSessionEnd(s)
	}
}
