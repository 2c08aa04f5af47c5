package gresult

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func (b *broadcaster[T]) waiting() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.members)
}

func subscribeAsync[T any](ctx context.Context, s Stream[T], o Observer[T]) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Subscribe(ctx, o)
	}()
	return done
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "subscription did not return")
	}
}

func TestBroadcast(t *testing.T) {
	defer goleak.VerifyNone(t)

	subscriptions := 0
	src := Defer(func() Stream[int] {
		subscriptions++
		return Of(1, 2, 3)
	})
	shared := Broadcast(src, 3)

	ctx := context.Background()
	recorders := make([]*recorder[int], len(shared))
	dones := make([]<-chan struct{}, len(shared))
	for i, s := range shared {
		recorders[i] = &recorder[int]{}
		dones[i] = subscribeAsync(ctx, s, recorders[i].observer())
	}
	for _, done := range dones {
		waitDone(t, done)
	}

	assert.Equal(t, 1, subscriptions)
	for _, r := range recorders {
		assert.Equal(t, []int{1, 2, 3}, r.values)
		assert.Equal(t, 1, r.completes)
	}
}

func TestBroadcastSharesFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	shared := Broadcast(Throw[int](errOdd), 2)

	ctx := context.Background()
	first, second := &recorder[int]{}, &recorder[int]{}
	d1 := subscribeAsync(ctx, shared[0], first.observer())
	d2 := subscribeAsync(ctx, shared[1], second.observer())
	waitDone(t, d1)
	waitDone(t, d2)

	assert.Equal(t, []error{errOdd}, first.errs)
	assert.Equal(t, []error{errOdd}, second.errs)
}

func TestBroadcastLateSubscriber(t *testing.T) {
	shared := Broadcast(Of(1), 1)

	r := record(shared[0])
	assert.Equal(t, []int{1}, r.values)

	r = record(shared[0])
	assert.Empty(t, r.values)
	assert.Equal(t, []error{ErrBroadcastConnected}, r.errs)
}

func TestBroadcastWaitingSubscriberLeaves(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := newBroadcaster(Of(1, 2), 2)
	shared := b.streams()

	ctx, cancel := context.WithCancel(context.Background())
	gone := &recorder[int]{}
	d := subscribeAsync(ctx, shared[0], gone.observer())
	require.Eventually(t, func() bool { return b.waiting() == 1 }, time.Second, time.Millisecond)

	cancel()
	waitDone(t, d)
	assert.Equal(t, 0, b.waiting())

	// the freed slot is taken by a new subscriber
	first, second := &recorder[int]{}, &recorder[int]{}
	d1 := subscribeAsync(context.Background(), shared[0], first.observer())
	d2 := subscribeAsync(context.Background(), shared[1], second.observer())
	waitDone(t, d1)
	waitDone(t, d2)

	assert.Empty(t, gone.values)
	assert.Equal(t, 0, gone.completes)
	assert.Equal(t, []int{1, 2}, first.values)
	assert.Equal(t, []int{1, 2}, second.values)
}

func TestBroadcastDetachesCancelledSubscriber(t *testing.T) {
	defer goleak.VerifyNone(t)

	ch := make(chan int)
	b := newBroadcaster(FromChan(ch), 2)
	shared := b.streams()

	ctx, cancel := context.WithCancel(context.Background())
	seen := make(chan int)
	var detached []int
	d1 := subscribeAsync(ctx, shared[0], Observer[int]{
		OnNext: func(_ context.Context, v int) {
			detached = append(detached, v)
			seen <- v
		},
	})
	require.Eventually(t, func() bool { return b.waiting() == 1 }, time.Second, time.Millisecond)

	connector := &recorder[int]{}
	d2 := subscribeAsync(context.Background(), shared[1], connector.observer())

	ch <- 1
	<-seen
	cancel()
	waitDone(t, d1)

	ch <- 2
	close(ch)
	waitDone(t, d2)

	assert.Equal(t, []int{1}, detached)
	assert.Equal(t, []int{1, 2}, connector.values)
	assert.Equal(t, 1, connector.completes)
}

func TestBroadcastCancelsSourceWhenAllLeave(t *testing.T) {
	defer goleak.VerifyNone(t)

	never := make(chan int)
	b := newBroadcaster(FromChan(never), 2)
	shared := b.streams()

	ctx, cancel := context.WithCancel(context.Background())
	d1 := subscribeAsync(ctx, shared[0], Observer[int]{})
	d2 := subscribeAsync(ctx, shared[1], Observer[int]{})
	require.Eventually(t, func() bool { return b.waiting() == 2 }, time.Second, time.Millisecond)

	cancel()
	waitDone(t, d1)
	waitDone(t, d2)
	select {
	case <-b.done:
	case <-time.After(time.Second):
		require.FailNow(t, "source was not cancelled")
	}
}

func TestBroadcastNeedsSubscribers(t *testing.T) {
	assert.PanicsWithValue(t, "gresult: Broadcast needs at least 1 subscriber, got 0", func() {
		Broadcast(Of(1), 0)
	})
	assert.Panics(t, func() {
		Broadcast(Of(1), -1)
	})
}
