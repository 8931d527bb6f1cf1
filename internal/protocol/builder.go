package protocol

// BuilderContext is threaded into a chat.BuildPacketFunc so it has what
// the source's ChatBuilderV2/LegacyChatBuilder/KeyedChatBuilder classes
// needed to pick the right wire shape: which protocol version the client
// speaks, and whose message is being built. Those builder classes are
// themselves out of scope (spec.md 1); this just gives their would-be Go
// callers a stable seam to close over.
type BuilderContext struct {
	ProtocolVersion int
	PlayerName      string
	PlayerUUID      string
}

// SupportsSecureChat reports whether the client's protocol version still
// participates in the last-seen-messages dance at all. 1.20.5+ clients
// don't sign commands, so the source notes the whole ChatState bookkeeping
// is "effectively unused" for them; this is surfaced for logging only and
// never changes ChatQueue's behavior (see SPEC_FULL.md 11).
func (b BuilderContext) SupportsSecureChat() bool {
	const minSecureChat = 760  // 1.19
	const lastSecureChat = 765 // 1.20.3/1.20.4, last version requiring signed commands
	return b.ProtocolVersion >= minSecureChat && b.ProtocolVersion <= lastSecureChat
}
