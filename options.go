package gresult

import (
	"sync"
	"time"

	"github.com/KumKeeHyun/gresult/options/pipe"
	"github.com/KumKeeHyun/gresult/options/sink"
	"github.com/apex/log"
)

type optionsImpl struct {
	isBuffer bool
	buffer   int
	timeout  time.Duration
	logger   log.Interface
}

func (o *optionsImpl) SetBufferedChan(cap int) {
	o.isBuffer = true
	o.buffer = cap
}

func (o *optionsImpl) SetTimeout(t time.Duration) {
	o.timeout = t
}

func (o *optionsImpl) SetLogger(logger log.Interface) {
	if logger == nil {
		return
	}
	o.logger = logger
}

type pipeOption[T any] struct {
	optionsImpl
	once sync.Once
	pipe chan T
}

func (o *pipeOption[T]) BuildPipe() chan T {
	o.once.Do(func() {
		if o.isBuffer {
			o.pipe = make(chan T, o.buffer)
		} else {
			o.pipe = make(chan T)
		}
	})
	return o.pipe
}

func newPipeOption[T any](opts ...pipe.Option) *pipeOption[T] {
	pipeOpt := &pipeOption[T]{
		optionsImpl: optionsImpl{
			isBuffer: false,
		},
	}
	for _, opt := range opts {
		opt(pipeOpt)
	}
	return pipeOpt
}

type sinkOption[T any] struct {
	optionsImpl
	once sync.Once
	pipe chan T
}

func (o *sinkOption[T]) BuildPipe() chan T {
	o.once.Do(func() {
		if o.isBuffer {
			o.pipe = make(chan T, o.buffer)
		} else {
			o.pipe = make(chan T)
		}
	})
	return o.pipe
}

func (o *sinkOption[T]) Timeout() time.Duration {
	return o.timeout
}

func (o *sinkOption[T]) Logger() log.Interface {
	return o.logger
}

func newSinkOption[T any](opts ...sink.Option) *sinkOption[T] {
	sinkOpt := &sinkOption[T]{
		optionsImpl: optionsImpl{
			isBuffer: false,
			timeout:  -1,
			logger:   log.Log,
		},
	}
	for _, opt := range opts {
		opt(sinkOpt)
	}
	return sinkOpt
}
