package gresult

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

var ErrBroadcastConnected = errors.New("broadcast source is already connected")

// Broadcast shares one subscription of s between n streams. The source is
// subscribed once, in its own goroutine, when the last of the n streams is
// subscribed, and every item is delivered to all of them in order. Until
// then the other subscribers block, so the n streams must be subscribed
// concurrently.
//
// A subscriber that terminates or cancels its context is detached and
// receives nothing more, the others keep receiving. The source is
// cancelled once every subscriber is detached. A subscriber leaving before
// the source is connected frees its slot for a new one.
//
// The returned streams are single-use: subscribing after the source was
// connected fails with ErrBroadcastConnected. Broadcast panics if n < 1.
func Broadcast[T any](s Stream[T], n int) []Stream[T] {
	if n < 1 {
		panic(fmt.Sprintf("gresult: Broadcast needs at least 1 subscriber, got %d", n))
	}
	return newBroadcaster(s, n).streams()
}

func newBroadcaster[T any](s Stream[T], n int) *broadcaster[T] {
	return &broadcaster[T]{
		source: s,
		want:   n,
		done:   make(chan struct{}),
	}
}

type broadcaster[T any] struct {
	mu        sync.Mutex
	source    Stream[T]
	want      int
	members   []*member[T]
	connected bool
	attached  int
	cancel    context.CancelFunc
	done      chan struct{}
}

func (b *broadcaster[T]) streams() []Stream[T] {
	streams := make([]Stream[T], b.want)
	for i := range streams {
		streams[i] = New(b.subscribe)
	}
	return streams
}

func (b *broadcaster[T]) subscribe(ctx context.Context, o Observer[T]) {
	m := &member[T]{ctx: ctx, o: o}

	b.mu.Lock()
	if b.connected {
		b.mu.Unlock()
		o.fail(ctx, ErrBroadcastConnected)
		return
	}
	b.members = append(b.members, m)
	if len(b.members) == b.want {
		b.connect()
	}
	b.mu.Unlock()

	select {
	case <-b.done:
	case <-ctx.Done():
		b.leave(m)
	}
}

// connect starts the shared subscription. b.mu must be held.
func (b *broadcaster[T]) connect() {
	b.connected = true
	b.attached = len(b.members)

	forwards := make([]Observer[T], len(b.members))
	for i, m := range b.members {
		forwards[i] = m.observer()
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	go func() {
		defer close(b.done)
		defer cancel()
		b.source.Subscribe(ctx, newFallThroughSupplier[T]().Observer(forwards...))
	}()
}

// leave detaches m once its subscriber is gone.
func (b *broadcaster[T]) leave(m *member[T]) {
	m.detach()

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.connected {
		b.attached--
		if b.attached == 0 {
			b.cancel()
		}
		return
	}
	for i, other := range b.members {
		if other == m {
			b.members = append(b.members[:i], b.members[i+1:]...)
			break
		}
	}
}

type member[T any] struct {
	mu       sync.Mutex
	ctx      context.Context
	o        Observer[T]
	detached bool
}

func (m *member[T]) detach() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.detached = true
}

// deliver runs fn unless m is detached. A detaching subscriber waits for an
// in-flight delivery to return.
func (m *member[T]) deliver(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.detached {
		return
	}
	fn()
}

func (m *member[T]) observer() Observer[T] {
	return Observer[T]{
		OnNext: func(_ context.Context, v T) {
			m.deliver(func() { m.o.next(m.ctx, v) })
		},
		OnError: func(_ context.Context, err error) {
			m.deliver(func() { m.o.fail(m.ctx, err) })
		},
		OnComplete: func(_ context.Context) {
			m.deliver(func() { m.o.complete(m.ctx) })
		},
	}
}
