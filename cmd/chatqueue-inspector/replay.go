package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/Playbex/Velocity-CTD/internal/chat"
	"github.com/Playbex/Velocity-CTD/internal/diagnostics"
	"github.com/Playbex/Velocity-CTD/internal/protocol"
	"github.com/Playbex/Velocity-CTD/internal/session"
	"github.com/Playbex/Velocity-CTD/locale"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

// replayEvent is one line of a replay file: either a client chat/command
// packet or a client acknowledgement, fed to a Session in file order.
type replayEvent struct {
	Type           string `json:"type"`
	Message        string `json:"message,omitempty"`
	Command        string `json:"command,omitempty"`
	TimestampMS    int64  `json:"timestamp_ms,omitempty"`
	LastSeenOffset uint32 `json:"last_seen_offset,omitempty"`
	AckCount       int32  `json:"ack_count,omitempty"`
}

// replayTransport prints every packet the session's ServerLink chooses to
// forward, standing in for a live network connection the way the teacher's
// replay tooling substitutes a dummy_conn for the real one. It's wrapped in
// a session.ServerLink rather than satisfying chat.ServerLink directly, so
// every write still goes through session.Executor's run loop.
type replayTransport struct {
	count int
}

func (t *replayTransport) Send(pk any) error {
	diagnostics.LogPacket(pk, true)
	t.count++
	return nil
}

// ReplayCMD replays a captured JSON-lines event file through a fresh
// session.Session and reports what its queue chose to forward.
type ReplayCMD struct {
	file     string
	player   string
	protocol int
}

func (*ReplayCMD) Name() string     { return "replay" }
func (*ReplayCMD) Synopsis() string { return "replay a captured chat event log through a session" }
func (*ReplayCMD) Usage() string    { return "replay -file path [-player name] [-protocol version]\n" }

func (c *ReplayCMD) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "path to a JSON-lines replay file")
	f.StringVar(&c.player, "player", "replay-player", "player name attributed to the replay")
	f.IntVar(&c.protocol, "protocol", 760, "client protocol version to attribute to the replayed player")
}

func (c *ReplayCMD) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		logrus.Error("replay: -file is required")
		return subcommands.ExitUsageError
	}
	f, err := os.Open(c.file)
	if err != nil {
		logrus.Error(err)
		return subcommands.ExitFailure
	}
	defer f.Close()

	transport := &replayTransport{}
	link := session.NewServerLink(transport)

	player := session.NewPlayer(c.player, c.protocol)
	player.SetServerLink(link)

	sink := diagnostics.NewSink(c.player, nil)
	sess := session.NewSession(ctx, player, sink, nil)
	defer sess.Disconnect()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev replayEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			logrus.Warnf("replay: skipping malformed line %d: %v", lineNo, err)
			continue
		}
		ts := time.UnixMilli(ev.TimestampMS)
		lastSeen := chat.NewLastSeenMessages(ev.LastSeenOffset, chat.DummyBitSet)
		switch ev.Type {
		case "chat":
			message := ev.Message
			sess.ForwardClientChat(message, ts, &lastSeen, func(effective *chat.LastSeenMessages) (any, error) {
				return &protocol.PlayerChatPacket{
					Message:        message,
					Timestamp:      ts.UnixNano(),
					LastSeenOffset: effective.Offset,
				}, nil
			})
		case "command":
			command := ev.Command
			sess.ForwardClientCommand(ts, &lastSeen, func(effective *chat.LastSeenMessages) (any, error) {
				return &protocol.PlayerCommandPacket{
					Command:        command,
					Timestamp:      ts.UnixNano(),
					LastSeenOffset: effective.Offset,
				}, nil
			})
		case "ack":
			sess.ForwardClientAcknowledgement(ev.AckCount)
		default:
			logrus.Warnf("replay: unknown event type %q on line %d", ev.Type, lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		logrus.Error(err)
		return subcommands.ExitFailure
	}

	sess.Queue().Flush()
	logrus.Info(locale.Loc("cli.replayDone", locale.Strmap{"Count": transport.count, "Player": c.player}))
	return subcommands.ExitSuccess
}
