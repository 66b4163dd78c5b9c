package query

// Signal is the hot-stream collaborator a List notifies after a refresh
// that found pending changes. Subscribers are invoked synchronously on the
// engine's single logical thread, in subscription order, once per
// notification.
//
// Completion is terminal: a completed signal drops its subscribers and
// ignores further notifications.
type Signal struct {
	subs      []func()
	completed bool
}

// NewSignal creates an idle signal with no subscribers.
func NewSignal() *Signal {
	return &Signal{}
}

// Subscribe registers fn to run on every future notification.
// Subscribing to a completed signal is a no-op.
func (s *Signal) Subscribe(fn func()) {
	if s.completed {
		return
	}
	s.subs = append(s.subs, fn)
}

// Completed reports whether the signal has terminated.
func (s *Signal) Completed() bool {
	return s.completed
}

// notify invokes every subscriber once.
func (s *Signal) notify() {
	if s.completed {
		return
	}
	for _, fn := range s.subs {
		fn()
	}
}

// complete terminates the signal and releases subscribers.
func (s *Signal) complete() {
	s.completed = true
	s.subs = nil
}
