package resize

type options struct {
	fs      FileSystem
	log     Logger
	quality int
}

// Option customizes a transport.
type Option func(*options)

// WithFileSystem replaces the os-backed file access.
func WithFileSystem(fs FileSystem) Option {
	return func(o *options) {
		if fs != nil {
			o.fs = fs
		}
	}
}

// WithLogger sets the logger used for debug traces of each exchange.
func WithLogger(log Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithQuality adds the optional quality field to command requests. Zero omits it.
func WithQuality(q int) Option {
	return func(o *options) {
		o.quality = q
	}
}

func buildOptions(opts []Option) options {
	o := options{
		fs:  OSFileSystem{},
		log: noopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
