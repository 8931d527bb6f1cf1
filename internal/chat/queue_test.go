package chat

import (
	"sync"
	"testing"
	"time"

	"github.com/Playbex/Velocity-CTD/internal/protocol"
)

type fakeLink struct {
	mu     sync.Mutex
	open   bool
	writes []any
}

func newFakeLink() *fakeLink {
	return &fakeLink{open: true}
}

func (f *fakeLink) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *fakeLink) Write(pk any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return nil
	}
	f.writes = append(f.writes, pk)
	return nil
}

func (f *fakeLink) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
}

func (f *fakeLink) snapshot() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]any, len(f.writes))
	copy(out, f.writes)
	return out
}

type fakePlayer struct{ link *fakeLink }

func (p *fakePlayer) CurrentServerLink() ServerLink { return p.link }

type fakeSink struct {
	mu         sync.Mutex
	protocol   []error
	invariants []error
}

func (s *fakeSink) ReportProtocolViolation(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.protocol = append(s.protocol, err)
}

func (s *fakeSink) ReportInvariantViolation(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invariants = append(s.invariants, err)
}

func newTestQueue() (*ChatQueue, *fakeLink, *fakeSink) {
	link := newFakeLink()
	sink := &fakeSink{}
	q := NewChatQueue("steve", &fakePlayer{link: link}, sink)
	return q, link, sink
}

// Scenario 1: pure chat forwarding.
func TestPureChatForwarding(t *testing.T) {
	q, link, _ := newTestQueue()
	t1 := time.Unix(1000, 0)
	ls := NewLastSeenMessages(0, NewBitSet(3, 5))

	var got *LastSeenMessages
	q.EnqueueClientPacket(func(effective *LastSeenMessages) (any, error) {
		got = effective
		return &protocol.PlayerChatPacket{Message: "hi"}, nil
	}, &t1, &ls)
	q.Flush()

	if got == nil || got.Offset != 0 || got.Acknowledged() != NewBitSet(3, 5) {
		t.Fatalf("expected embedded last-seen (0,{3,5}), got %+v", got)
	}
	if len(link.snapshot()) != 1 {
		t.Fatalf("expected exactly one write, got %d", len(link.snapshot()))
	}
	if !q.State().LastTimestamp().Equal(t1) {
		t.Fatalf("expected last timestamp %v, got %v", t1, q.State().LastTimestamp())
	}
	if q.State().CachedAcknowledged() != NewBitSet(3, 5) {
		t.Fatalf("expected cached acknowledged {3,5}, got %v", q.State().CachedAcknowledged())
	}
	if q.State().DelayedAckCount() != 0 {
		t.Fatalf("expected delayed ack count 0, got %d", q.State().DelayedAckCount())
	}
}

// Scenario 2: ack absorption.
func TestAckAbsorption(t *testing.T) {
	q, link, _ := newTestQueue()
	q.EnqueueAcknowledgement(5)
	q.EnqueueAcknowledgement(10)

	var got *LastSeenMessages
	ls := NewLastSeenMessages(0, NewBitSet(7))
	q.EnqueueClientPacket(func(effective *LastSeenMessages) (any, error) {
		got = effective
		return &protocol.PlayerChatPacket{}, nil
	}, nil, &ls)
	q.Flush()

	writes := link.snapshot()
	if len(writes) != 1 {
		t.Fatalf("expected exactly one write (the chat packet), got %d", len(writes))
	}
	if got == nil || got.Offset != 15 || got.Acknowledged() != NewBitSet(7) {
		t.Fatalf("expected embedded last-seen (15,{7}), got %+v", got)
	}
	if q.State().DelayedAckCount() != 0 {
		t.Fatalf("expected delayed ack count 0, got %d", q.State().DelayedAckCount())
	}
	if q.State().CachedAcknowledged() != NewBitSet(7) {
		t.Fatalf("expected cached acknowledged {7}, got %v", q.State().CachedAcknowledged())
	}
}

// Scenario 3: ack overflow forwarding.
func TestAckOverflowForwarding(t *testing.T) {
	q, link, _ := newTestQueue()
	q.EnqueueAcknowledgement(45)
	q.Flush()

	writes := link.snapshot()
	if len(writes) != 1 {
		t.Fatalf("expected exactly one write, got %d", len(writes))
	}
	ack, ok := writes[0].(*protocol.ChatAcknowledgement)
	if !ok || ack.Count != 25 {
		t.Fatalf("expected ChatAcknowledgement(count=25), got %#v", writes[0])
	}
	if q.State().DelayedAckCount() != MinDelayed {
		t.Fatalf("expected delayed ack count %d, got %d", MinDelayed, q.State().DelayedAckCount())
	}
	if !q.State().CachedAcknowledged().IsDummy() {
		t.Fatalf("expected cached acknowledged to be dummy")
	}
}

// Scenario 4: closed link.
func TestClosedLinkIsNoOp(t *testing.T) {
	q, link, _ := newTestQueue()
	link.close()

	q.EnqueueClientPacket(func(*LastSeenMessages) (any, error) {
		return &protocol.PlayerChatPacket{}, nil
	}, nil, nil)
	q.EnqueueAcknowledgement(100)
	q.Flush()

	if len(link.snapshot()) != 0 {
		t.Fatalf("expected zero writes on a closed link, got %d", len(link.snapshot()))
	}

	// queue must still accept subsequent tasks without corruption.
	link.open = true
	ls := NewLastSeenMessages(0, NewBitSet(1))
	t1 := time.Unix(2000, 0)
	q.EnqueueClientPacket(func(*LastSeenMessages) (any, error) {
		return &protocol.PlayerChatPacket{}, nil
	}, &t1, &ls)
	q.Flush()
	if len(link.snapshot()) != 1 {
		t.Fatalf("expected the queue to keep accepting tasks after a closed-link no-op")
	}
}

// Scenario 5: synthesized packet in order.
func TestSynthesizedInOrder(t *testing.T) {
	q, link, _ := newTestQueue()

	t1 := time.Unix(1, 0)
	ls1 := NewLastSeenMessages(0, NewBitSet(2))
	q.EnqueueClientPacket(func(*LastSeenMessages) (any, error) {
		return &protocol.PlayerChatPacket{Message: "first"}, nil
	}, &t1, &ls1)

	var synthesizedSeen BitSet
	q.EnqueueSynthesized(func(view StateView) any {
		synthesizedSeen = view.CachedAcknowledged
		return &protocol.PlayerCommandPacket{Command: "synthesized"}
	})

	t2 := time.Unix(2, 0)
	ls2 := NewLastSeenMessages(0, NewBitSet(9))
	q.EnqueueClientPacket(func(*LastSeenMessages) (any, error) {
		return &protocol.PlayerChatPacket{Message: "second"}, nil
	}, &t2, &ls2)

	q.Flush()

	writes := link.snapshot()
	if len(writes) != 3 {
		t.Fatalf("expected three writes in order, got %d", len(writes))
	}
	if _, ok := writes[0].(*protocol.PlayerChatPacket); !ok {
		t.Fatalf("expected first write to be the first chat packet")
	}
	if _, ok := writes[1].(*protocol.PlayerCommandPacket); !ok {
		t.Fatalf("expected second write to be the synthesized packet")
	}
	if _, ok := writes[2].(*protocol.PlayerChatPacket); !ok {
		t.Fatalf("expected third write to be the second chat packet")
	}
	if synthesizedSeen != NewBitSet(2) {
		t.Fatalf("expected synthesized packet to observe {2} from the first chat task, got %v", synthesizedSeen)
	}
}

// Scenario 6: build failure still applies the preceding state mutation.
func TestBuildFailureStillMutatesState(t *testing.T) {
	q, link, _ := newTestQueue()

	t1 := time.Unix(42, 0)
	ls := NewLastSeenMessages(0, NewBitSet(4))
	q.EnqueueClientPacket(func(*LastSeenMessages) (any, error) {
		return nil, errFailedBuild
	}, &t1, &ls)
	q.Flush()

	if len(link.snapshot()) != 0 {
		t.Fatalf("expected no write for a failed build, got %d", len(link.snapshot()))
	}
	if !q.State().LastTimestamp().Equal(t1) {
		t.Fatalf("expected timestamp to still be recorded despite build failure")
	}
	if q.State().CachedAcknowledged() != NewBitSet(4) {
		t.Fatalf("expected cached acknowledged to still be updated despite build failure")
	}
	if q.State().DelayedAckCount() != 0 {
		t.Fatalf("expected delayed ack count reset despite build failure")
	}

	// subsequent tasks proceed normally.
	q.EnqueueClientPacket(func(*LastSeenMessages) (any, error) {
		return &protocol.PlayerChatPacket{Message: "recovered"}, nil
	}, nil, nil)
	q.Flush()
	if len(link.snapshot()) != 1 {
		t.Fatalf("expected the queue to keep processing after a build failure")
	}
}

var errFailedBuild = &buildError{"synthetic failure"}

type buildError struct{ msg string }

func (e *buildError) Error() string { return e.msg }

// P1: output order equals enqueue order after removing no-ops.
func TestOrderPreserved(t *testing.T) {
	q, link, _ := newTestQueue()
	const n = 50
	for i := 0; i < n; i++ {
		i := i
		q.EnqueueSynthesized(func(StateView) any {
			return i
		})
	}
	q.Flush()

	writes := link.snapshot()
	if len(writes) != n {
		t.Fatalf("expected %d writes, got %d", n, len(writes))
	}
	for i, w := range writes {
		if w.(int) != i {
			t.Fatalf("expected write %d to be %d, got %v", i, i, w)
		}
	}
}

// P3: F <= A <= F + 2*WindowSize across a run.
func TestAckAccountingBounds(t *testing.T) {
	q, link, _ := newTestQueue()
	var total int32
	acks := []int32{3, 4, 5, 6, 7, 8, 9, 10}
	for _, a := range acks {
		q.EnqueueAcknowledgement(a)
		total += a
	}
	q.Flush()

	var forwarded uint32
	for _, w := range link.snapshot() {
		if ack, ok := w.(*protocol.ChatAcknowledgement); ok {
			forwarded += ack.Count
		}
	}
	if uint32(total) < forwarded {
		t.Fatalf("forwarded (%d) exceeds total acked (%d)", forwarded, total)
	}
	if uint32(total) > forwarded+2*WindowSize {
		t.Fatalf("forwarded (%d) too far behind total acked (%d)", forwarded, total)
	}
}

// P4: once dummy, later accumulate_ack calls never resurrect the old bitmap.
func TestDummyIsIdempotent(t *testing.T) {
	q, _, _ := newTestQueue()
	q.EnqueueAcknowledgement(45) // pushes into dummy territory (scenario 3)
	q.EnqueueAcknowledgement(1)
	q.Flush()

	if !q.State().CachedAcknowledged().IsDummy() {
		t.Fatalf("expected cached acknowledged to remain dummy")
	}
}

// P5: last_timestamp reflects the last timestamp enqueued, not the max.
func TestTimestampReflectsLastEnqueued(t *testing.T) {
	q, _, _ := newTestQueue()
	later := time.Unix(1000, 0)
	earlier := time.Unix(500, 0)

	q.EnqueueClientPacket(func(*LastSeenMessages) (any, error) {
		return &protocol.PlayerChatPacket{}, nil
	}, &later, nil)
	q.EnqueueClientPacket(func(*LastSeenMessages) (any, error) {
		return &protocol.PlayerChatPacket{}, nil
	}, &earlier, nil)
	q.Flush()

	if !q.State().LastTimestamp().Equal(earlier) {
		t.Fatalf("expected last timestamp to be the last-enqueued %v, got %v", earlier, q.State().LastTimestamp())
	}
}

// Malformed input is reported without corrupting queue state.
func TestNegativeAckIsReportedAndIgnored(t *testing.T) {
	q, link, sink := newTestQueue()
	q.EnqueueAcknowledgement(-1)
	q.Flush()

	if len(link.snapshot()) != 0 {
		t.Fatalf("expected no write for a malformed ack")
	}
	if q.State().DelayedAckCount() != 0 {
		t.Fatalf("expected delayed ack count untouched by malformed input")
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.protocol) != 1 {
		t.Fatalf("expected one protocol violation reported, got %d", len(sink.protocol))
	}
}
