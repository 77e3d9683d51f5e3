package nested

// options controls which container kinds the mapper descends into and how
// the work is executed.
type options struct {
	mapsOnly bool
	slices   bool
	arrays   bool
	workers  int
	progress bool
	label    string
}

func defaultOptions() options {
	return options{
		slices:  true,
		workers: 1,
	}
}

// Option configures a Map or Flatten call.
type Option func(*options)

// MapsOnly restricts traversal to mappings: slices and arrays become
// leaves regardless of other traversal options.
func MapsOnly() Option {
	return func(o *options) { o.mapsOnly = true }
}

// WithSlices controls whether slices are traversed. Enabled by default.
func WithSlices(enabled bool) Option {
	return func(o *options) { o.slices = enabled }
}

// WithArrays controls whether fixed-size arrays are traversed.
// Disabled by default.
func WithArrays(enabled bool) Option {
	return func(o *options) { o.arrays = enabled }
}

// WithWorkers sets the size of the worker pool. Values below two select
// the sequential path.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithProgress enables a progress display on stderr. The display is shown
// only when stderr is attached to a terminal.
func WithProgress(enabled bool) Option {
	return func(o *options) { o.progress = enabled }
}

// WithLabel sets the description shown next to the progress display.
func WithLabel(label string) Option {
	return func(o *options) { o.label = label }
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
