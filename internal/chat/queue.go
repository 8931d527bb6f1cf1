package chat

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Playbex/Velocity-CTD/internal/protocol"
	"github.com/sirupsen/logrus"
	"golang.design/x/lockfree"
)

// ServerLink is the opaque backend connection a ChatQueue writes packets
// onto. Implementations decide what "open" and "write" mean; the queue
// only relies on the contract that a closed link makes Write a no-op.
type ServerLink interface {
	IsOpen() bool
	Write(pk any) error
}

// PlayerHandle resolves the ServerLink a ChatQueue should write to right
// now. It's queried at task-execution time, not enqueue time, so the
// queue adapts transparently across server switches.
type PlayerHandle interface {
	CurrentServerLink() ServerLink
}

// ViolationSink receives the errors ChatQueue can't recover from locally:
// malformed client input, and internal bookkeeping bugs.
type ViolationSink interface {
	ReportProtocolViolation(err error)
	ReportInvariantViolation(err error)
}

// BuildPacketFunc synthesizes the outbound packet for a client-originated
// chat/command task, given the effective LastSeenMessages ChatState
// computed for it (nil if the task carried none).
type BuildPacketFunc func(effective *LastSeenMessages) (any, error)

// StateView is a read-only, torn-free-ish snapshot of ChatState, handed to
// synthesized-packet builders that must not mutate the queue's state.
type StateView struct {
	LastTimestamp      time.Time
	CachedAcknowledged BitSet
}

type queuedTask func(link ServerLink)

// ChatQueue is the single-player serial executor described by spec.md 4.3:
// tasks are appended to a FIFO backlog and drained one at a time by a
// dedicated worker goroutine, so within one queue only one task ever runs,
// and the write of task N is guaranteed complete before task N+1 begins.
// This is the queue+worker variant of the source's chained-futures design,
// explicitly permitted by spec.md 9's design notes.
type ChatQueue struct {
	player   PlayerHandle
	playerID string
	state    *ChatState
	sink     ViolationSink

	backlog *lockfree.Queue
	wake    chan struct{}
	stop    chan struct{}

	poisoned atomic.Bool
}

// NewChatQueue creates a ChatQueue for a player. sink may be nil, in which
// case violations are only logged. The queue's worker goroutine runs until
// Close is called.
func NewChatQueue(playerID string, player PlayerHandle, sink ViolationSink) *ChatQueue {
	q := &ChatQueue{
		player:   player,
		playerID: playerID,
		state:    NewChatState(playerID),
		sink:     sink,
		backlog:  lockfree.NewQueue(),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
	go q.run()
	return q
}

// State returns the queue's ChatState, for diagnostics/snapshotting only.
// Nothing in this package reads it off the worker goroutine.
func (q *ChatQueue) State() *ChatState {
	return q.state
}

// Close stops the queue's worker after it drains whatever is already in
// the backlog. The tail is not awaited by the caller; per spec.md 3, that's
// fine, since a disconnecting player's remaining tasks will simply observe
// a closed link and no-op.
func (q *ChatQueue) Close() {
	close(q.stop)
}

// EnqueueClientPacket queues a task for a client-originated chat/command
// packet, per spec.md 4.3. build is invoked with the effective
// LastSeenMessages computed by ChatState.UpdateFromMessage; a nil build
// (or one that errors/panics) drops the packet without stalling the chain.
func (q *ChatQueue) EnqueueClientPacket(build BuildPacketFunc, timestamp *time.Time, lastSeen *LastSeenMessages) {
	q.push(func(link ServerLink) {
		effective, err := q.state.UpdateFromMessage(timestamp, lastSeen)
		if err != nil {
			q.reportProtocolViolation(err)
		}
		if build == nil {
			return
		}
		pk, buildErr := q.safeBuild(build, effective)
		if buildErr != nil {
			logrus.WithField("player", q.playerID).Debugf("chat: build_packet failed, dropping packet: %v", buildErr)
			return
		}
		if pk == nil {
			return
		}
		q.write(link, pk)
	})
}

// EnqueueSynthesized queues a proxy-internal task that reads ChatState (but
// never mutates it) to build a packet that must still appear in order
// relative to client traffic.
func (q *ChatQueue) EnqueueSynthesized(fn func(StateView) any) {
	q.push(func(link ServerLink) {
		if fn == nil {
			return
		}
		view := StateView{
			LastTimestamp:      q.state.LastTimestamp(),
			CachedAcknowledged: q.state.CachedAcknowledged(),
		}
		pk := q.safeSynthesize(fn, view)
		if pk == nil {
			return
		}
		q.write(link, pk)
	})
}

// EnqueueAcknowledgement queues a client acknowledgement task, per
// spec.md 4.3. offset is signed at this boundary because it comes straight
// off a decoded packet field; a negative value is malformed client input,
// not a Go overflow bug.
func (q *ChatQueue) EnqueueAcknowledgement(offset int32) {
	q.push(func(link ServerLink) {
		forward, err := q.state.AccumulateAck(offset)
		if err != nil {
			if _, fatal := err.(*InvariantViolation); fatal {
				q.poisoned.Store(true)
				q.reportInvariantViolation(err)
				return
			}
			q.reportProtocolViolation(err)
			return
		}
		if forward > 0 {
			q.write(link, &protocol.ChatAcknowledgement{Count: forward})
		}
	})
}

// Flush blocks until every task enqueued before this call has completed.
// It's a synchronization aid for tests and shutdown paths; the queue never
// calls it internally.
func (q *ChatQueue) Flush() {
	done := make(chan struct{})
	q.push(func(ServerLink) { close(done) })
	<-done
}

func (q *ChatQueue) push(task queuedTask) {
	q.backlog.Enqueue(task)
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *ChatQueue) run() {
	for {
		stopping := false
		select {
		case <-q.stop:
			stopping = true
		case <-q.wake:
		}
		for {
			v := q.backlog.Dequeue()
			if v == nil {
				break
			}
			q.runTask(v.(queuedTask))
		}
		if stopping {
			return
		}
	}
}

func (q *ChatQueue) runTask(task queuedTask) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("player", q.playerID).Errorf("chat: task panicked, dropping: %v", r)
		}
	}()
	if q.poisoned.Load() {
		return
	}
	var link ServerLink
	if q.player != nil {
		link = q.player.CurrentServerLink()
	}
	task(link)
}

func (q *ChatQueue) write(link ServerLink, pk any) {
	if link == nil || !link.IsOpen() {
		return
	}
	if err := link.Write(pk); err != nil {
		logrus.WithField("player", q.playerID).Debugf("chat: write failed, dropping: %v", err)
	}
}

func (q *ChatQueue) safeBuild(build BuildPacketFunc, effective *LastSeenMessages) (pk any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("build_packet panicked: %v", r)
		}
	}()
	return build(effective)
}

func (q *ChatQueue) safeSynthesize(fn func(StateView) any, view StateView) (pk any) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("player", q.playerID).Errorf("chat: synthesized packet builder panicked: %v", r)
			pk = nil
		}
	}()
	return fn(view)
}

func (q *ChatQueue) reportProtocolViolation(err error) {
	logrus.WithField("player", q.playerID).Warn(err)
	if q.sink != nil {
		q.sink.ReportProtocolViolation(err)
	}
}

func (q *ChatQueue) reportInvariantViolation(err error) {
	logrus.WithField("player", q.playerID).Error(err)
	if q.sink != nil {
		q.sink.ReportInvariantViolation(err)
	}
}
