package apply

import (
	"log/slog"

	"github.com/joshuapare/regapply/pkg/types"
)

// Options configures an apply run. A nil *Options is valid and means
// defaults everywhere.
type Options struct {
	// OnApplied is called after each directive reaches the store, before the
	// next one is coerced.
	OnApplied func(types.AppliedValue)

	// OnContainer is called after a container handle has been opened.
	OnContainer func(types.ContainerPath)

	// Limits checked before each store call. Nil means types.DefaultLimits().
	Limits *types.Limits

	// Logger receives debug records per group and directive. Nil discards.
	Logger *slog.Logger
}

// Applied counts successful work. It is returned even when the run fails.
type Applied struct {
	Groups     int // groups whose directives all reached the store
	Containers int // successful EnsureContainer calls
	Values     int // successful SetValue calls
}

func (o *Options) limits() types.Limits {
	if o == nil || o.Limits == nil {
		return types.DefaultLimits()
	}
	return *o.Limits
}

func (o *Options) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

func (o *Options) applied(v types.AppliedValue) {
	if o != nil && o.OnApplied != nil {
		o.OnApplied(v)
	}
}

func (o *Options) container(p types.ContainerPath) {
	if o != nil && o.OnContainer != nil {
		o.OnContainer(p)
	}
}
