// Package fields implements concurrent shape-based storage for named
// per-object attributes. One privileged context mutates an owner's
// attributes through copy-on-write stores published with an atomic
// pointer swap; any number of contexts read the current snapshot
// without locks.
package fields

import (
	"io"
	"log/slog"
)

// Space is a shared namespace of owners. Owners created from the same
// space share one root shape, so identical attribute-definition
// histories converge on identical shape nodes.
type Space struct {
	root   *Shape
	tuning Tuning
	log    *slog.Logger
}

// Option configures a Space at construction.
type Option func(*Space)

// WithTuning overrides the default growth policy. Invalid tuning
// fields fall back to their defaults.
func WithTuning(t Tuning) Option {
	return func(sp *Space) { sp.tuning = t.normalized() }
}

// WithLogger installs a logger for shape-transition tracing. Traces
// are emitted at Debug level.
func WithLogger(log *slog.Logger) Option {
	return func(sp *Space) { sp.log = log }
}

func NewSpace(opts ...Option) *Space {
	sp := &Space{
		tuning: DefaultTuning(),
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(sp)
	}
	sp.root = newRootShape(sp.tuning)
	return sp
}

// NewOwner creates an owner with no attributes defined. The name is
// used only for diagnostics and error messages.
func (sp *Space) NewOwner(name string) *Owner {
	return &Owner{space: sp, name: name}
}
