// Package protocol defines the plain-struct packet shapes referenced by
// the chat ordering core. It intentionally has no wire codec: encoding and
// decoding of individual packet payloads is out of scope (see spec.md 1),
// left to whatever transport a real proxy wires in.
package protocol

// ChatAcknowledgement tells the backend server that the client has
// acknowledged count previously-unacknowledged signed messages.
type ChatAcknowledgement struct {
	Count uint32
}

// PlayerChatPacket carries a signed chat message forwarded from the
// client, with the LastSeenMessages offset already baked in by the chat
// queue.
type PlayerChatPacket struct {
	Message       string
	Timestamp     int64
	LastSeenOffset uint32
}

// PlayerCommandPacket carries a signed command forwarded from the client.
type PlayerCommandPacket struct {
	Command        string
	Timestamp      int64
	LastSeenOffset uint32
}
