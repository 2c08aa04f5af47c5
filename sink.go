package gresult

import (
	"context"
	"time"

	"github.com/KumKeeHyun/gresult/options/sink"
	"github.com/apex/log"
	"github.com/pkg/errors"
)

// ErrIncomplete is returned by Foreach and Collect when a subscription
// ended without a terminal signal while ctx was still live.
var ErrIncomplete = errors.New("stream ended without a terminal signal")

// To subscribes to s in a new goroutine and sends every item to the
// returned channel, which is closed once the stream terminates or ctx is
// done. A failure signal is logged and closes the channel.
func To[T any](ctx context.Context, s Stream[T], opts ...sink.Option) <-chan T {
	opt := newSinkOption[T](opts...)
	p := opt.BuildPipe()
	supplier := newSinkSupplier(ctx, p, opt.Timeout(), opt.Logger())

	go func() {
		defer close(p)
		s.Subscribe(ctx, supplier.Observer())
	}()

	return p
}

// Collect subscribes to s and returns every item once it completes.
// The error is the failure of s, ctx.Err() when ctx is done first, or
// ErrIncomplete.
func Collect[T any](ctx context.Context, s Stream[T]) ([]T, error) {
	res := make([]T, 0)
	err := Foreach(ctx, s, func(_ context.Context, v T) {
		res = append(res, v)
	})
	return res, err
}

// Foreach subscribes to s and calls foreacher for every item until s
// terminates.
func Foreach[T any](ctx context.Context, s Stream[T], foreacher func(context.Context, T)) error {
	var (
		completed bool
		failed    bool
		failure   error
	)
	s.Subscribe(ctx, Observer[T]{
		OnNext: foreacher,
		OnError: func(_ context.Context, err error) {
			failed = true
			failure = err
		},
		OnComplete: func(_ context.Context) {
			completed = true
		},
	})

	switch {
	case failed:
		return failure
	case completed:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return ErrIncomplete
	}
}

// -------------------------------

func newSinkSupplier[T any](ctx context.Context, o chan T, d time.Duration, logger log.Interface) *sinkSupplier[T] {
	return &sinkSupplier[T]{
		ctx:      ctx,
		output:   o,
		duration: d,
		logger:   logger,
	}
}

type sinkSupplier[T any] struct {
	ctx      context.Context
	output   chan T
	duration time.Duration
	logger   log.Interface
}

var _ ProcessorSupplier[any, any] = &sinkSupplier[any]{}

func (p *sinkSupplier[T]) Observer(_ ...Observer[T]) Observer[T] {
	return Observer[T]{
		OnNext: func(_ context.Context, v T) {
			if p.duration < 0 {
				select {
				case p.output <- v:
				case <-p.ctx.Done():
				}
				return
			}

			bomb := time.NewTimer(p.duration)
			defer bomb.Stop()
			select {
			case p.output <- v:
			case <-bomb.C:
				p.logger.WithField("value", v).Warn("output channel is busy, ignore")
			case <-p.ctx.Done():
			}
		},
		OnError: func(_ context.Context, err error) {
			p.logger.WithError(err).Warn("stream failed, closing output channel")
		},
	}
}
