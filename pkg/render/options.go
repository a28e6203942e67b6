package render

import (
	"log/slog"

	"github.com/vango-dev/canopy/pkg/dom"
)

// Option configures a Renderer. Options passed to New set defaults; options
// passed to Mount override them.
type Option func(*options)

type options struct {
	sync        bool
	merge       bool
	container   dom.Node
	registry    *Registry
	logger      *slog.Logger
	debug       bool
	batchSize   int
	frames      FrameScheduler
	observers   []Observer
	transitions Transitioner
}

func defaultOptions() options {
	return options{
		batchSize:   1,
		transitions: CSSTransitions{},
	}
}

// WithSync drains invalidations immediately instead of on the next frame.
func WithSync(sync bool) Option {
	return func(o *options) { o.sync = sync }
}

// WithMerge adopts the markup already present in the container instead of
// creating fresh nodes for it.
func WithMerge(merge bool) Option {
	return func(o *options) { o.merge = merge }
}

// WithContainer sets the DOM node the tree is mounted into. The document
// body is used when no container is given.
func WithContainer(node dom.Node) Option {
	return func(o *options) { o.container = node }
}

// WithRegistry sets the registry used to resolve vdom.RegistryKey references.
func WithRegistry(reg *Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithLogger sets the logger. slog.Default() is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithDebug enables development diagnostics: ambiguous sibling warnings,
// unresolved label hints and merge mismatch reports.
func WithDebug(debug bool) Option {
	return func(o *options) { o.debug = debug }
}

// WithBatchSize sets how many instructions of one sibling list are
// processed before the remainder is re-queued behind the subtrees produced
// so far. Values below 1 are treated as 1.
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.batchSize = n
	}
}

// WithFrames sets the frame scheduler used in async mode.
func WithFrames(f FrameScheduler) Option {
	return func(o *options) { o.frames = f }
}

// WithObserver adds a drain observer.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

// WithTransitions sets the driver for string valued enter and exit
// animations. CSSTransitions is the default.
func WithTransitions(t Transitioner) Option {
	return func(o *options) { o.transitions = t }
}
