package pipe

type options interface {
	SetBufferedChan(cap int)
}

type Option func(options)

func WithBufferedChan(cap int) Option {
	return func(o options) {
		o.SetBufferedChan(cap)
	}
}
