package session

// Executor is a single-threaded run loop, modeled on the single-threaded
// execution context spec.md 6 requires every ServerLink to expose
// (mirrored from the teacher's use of a dedicated event loop per
// connection in utils/proxy/conn.go). Every write a ServerLink performs is
// submitted here, so two writes on the same link can never interleave.
type Executor struct {
	tasks chan func()
	done  chan struct{}
}

// NewExecutor starts an Executor's run loop.
func NewExecutor() *Executor {
	e := &Executor{
		tasks: make(chan func(), 64),
		done:  make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *Executor) run() {
	for {
		select {
		case fn := <-e.tasks:
			fn()
		case <-e.done:
			return
		}
	}
}

// Submit runs fn on the executor's goroutine and blocks until it returns,
// giving callers the "await flush" semantics spec.md 4.3 requires of
// writes without needing a separate future type. If the executor is
// closed concurrently, Submit returns as soon as that's observed rather
// than waiting on an ack that run()'s exited loop will never send - the
// buffered tasks channel can still accept a late send after Close, so
// the wait on ack must race done too, not just the initial enqueue.
func (e *Executor) Submit(fn func()) {
	ack := make(chan struct{})
	select {
	case e.tasks <- func() { fn(); close(ack) }:
	case <-e.done:
		return
	}
	select {
	case <-ack:
	case <-e.done:
	}
}

// Close stops the executor's run loop. Functions still buffered when the
// loop exits are not run, and a Submit racing Close returns without
// waiting for its function.
func (e *Executor) Close() {
	close(e.done)
}
