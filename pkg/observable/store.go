package observable

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/tend/internal/logging"
)

// PanicHandler receives the value recovered from a panicking callback.
type PanicHandler func(tok Token, recovered any)

type options struct {
	name    string
	logger  *slog.Logger
	onPanic PanicHandler
}

// Option configures a Store.
type Option func(*options)

// WithName labels the store in log records.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger configures a logger for recovered callback panics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithPanicHandler registers a hook called after a callback panic is recovered.
func WithPanicHandler(h PanicHandler) Option {
	return func(o *options) {
		o.onPanic = h
	}
}

type subscriber struct {
	token Token
	fn    func()
}

// Store holds a single value and notifies subscribers whenever it is replaced.
type Store[T any] struct {
	opts options

	mu    sync.RWMutex
	value T

	// subMu protects subs. It is never held while callbacks run.
	subMu sync.RWMutex
	subs  []subscriber
}

// New creates a Store holding initial.
func New[T any](initial T, opts ...Option) *Store[T] {
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{
		opts:  o,
		value: initial,
	}
}

// Name returns the label configured with WithName.
func (s *Store[T]) Name() string {
	return s.opts.name
}

// Get returns the current value.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the current value and notifies all subscribers.
// Every call notifies, even if v equals the previous value.
func (s *Store[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	s.mu.Unlock()

	s.Notify()
}

// Update atomically replaces the value with fn(current) and notifies all subscribers.
func (s *Store[T]) Update(fn func(T) T) {
	s.mu.Lock()
	s.value = fn(s.value)
	s.mu.Unlock()

	s.Notify()
}

// Subscribe registers fn and returns a Token for Unsubscribe.
// Registering the same function twice creates two independent entries.
// A nil fn is ignored and the zero Token is returned.
func (s *Store[T]) Subscribe(fn func()) Token {
	if fn == nil {
		return Token{}
	}

	tok := newToken()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subs = append(s.subs, subscriber{token: tok, fn: fn})
	return tok
}

// Unsubscribe removes the callback registered under tok.
// Unknown or already removed tokens are ignored.
func (s *Store[T]) Unsubscribe(tok Token) {
	if tok.IsZero() {
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()

	for i, sub := range s.subs {
		if sub.token == tok {
			// Preserve registration order for the remaining subscribers.
			s.subs = slices.Delete(s.subs, i, i+1)
			return
		}
	}
}

// Len returns the number of registered callbacks.
func (s *Store[T]) Len() int {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	return len(s.subs)
}

// Notify invokes every currently registered callback once, in registration order.
// It returns after the last callback has returned.
func (s *Store[T]) Notify() {
	// Copy subscribers while holding lock
	s.subMu.RLock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.RUnlock()

	for _, sub := range subs {
		s.invoke(sub)
	}
}

func (s *Store[T]) invoke(sub subscriber) {
	defer func() {
		if r := recover(); r != nil {
			s.opts.logger.Error("Observer callback panicked",
				"store", s.opts.name,
				"token", sub.token.String(),
				"panic", r,
			)
			if s.opts.onPanic != nil {
				s.opts.onPanic(sub.token, r)
			}
		}
	}()
	sub.fn()
}

// Watch returns a channel that receives the current value immediately and then the
// value observed after each notification. The channel buffers one value and keeps
// only the newest, so slow readers skip intermediate values. The subscription is
// removed and the channel closed once ctx is done.
func (s *Store[T]) Watch(ctx context.Context) <-chan T {
	w := &watcher[T]{ch: make(chan T, 1)}
	tok := s.Subscribe(func() {
		w.push(s.Get())
	})
	// Read after subscribing so a concurrent Set is never missed.
	w.push(s.Get())

	go func() {
		<-ctx.Done()
		s.Unsubscribe(tok)
		w.close()
	}()

	return w.ch
}

type watcher[T any] struct {
	mu     sync.Mutex
	ch     chan T
	closed bool
}

func (w *watcher[T]) push(v T) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	// Drop the stale value, if any, so the send never blocks.
	select {
	case <-w.ch:
	default:
	}
	w.ch <- v
}

func (w *watcher[T]) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.ch)
	}
}
