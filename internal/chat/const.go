// Package chat implements the per-player Secure Chat ordering pipeline: a
// serial queue that forwards chat/command packets in client order, tracks
// the client's last-seen-messages window, and withholds acknowledgements
// for as long as they'd invalidate the cached window.
package chat

// WindowSize is the bit-width of the signed last-seen bitmap used by
// Minecraft's Secure Chat protocol (>= 1.19).
const WindowSize = 20

// MinDelayed is the headroom kept in the withheld-ack accumulator so an
// in-flight signed command can still reference recently cached bits.
const MinDelayed = WindowSize

// AckForwardThreshold is the total delayed count (MinDelayed plus one full
// WindowSize) at which an out-of-band ChatAcknowledgement is sent to the
// server.
const AckForwardThreshold = 2 * WindowSize
