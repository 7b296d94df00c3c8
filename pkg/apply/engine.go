package apply

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joshuapare/regapply/internal/coerce"
	"github.com/joshuapare/regapply/internal/format"
	"github.com/joshuapare/regapply/pkg/types"
)

// Apply writes doc to st. The returned error, when not a context error, is a
// *types.Error locating the failing group or directive.
func Apply(ctx context.Context, doc *types.Document, st types.Store, opts *Options) (Applied, error) {
	e := &engine{
		st:     st,
		opts:   opts,
		limits: opts.limits(),
		log:    opts.logger(),
	}
	for i := range doc.Groups {
		if err := ctx.Err(); err != nil {
			return e.result, err
		}
		if err := e.applyGroup(ctx, &doc.Groups[i]); err != nil {
			return e.result, err
		}
		e.result.Groups++
	}
	return e.result, nil
}

type engine struct {
	st     types.Store
	opts   *Options
	limits types.Limits
	log    *slog.Logger
	result Applied
}

// applyGroup opens the group's container and writes its directives. The
// handle is released on every exit path.
func (e *engine) applyGroup(ctx context.Context, g *types.Group) error {
	path := g.Path.String()
	if err := e.limits.CheckPath(g.Path); err != nil {
		return types.Locate(err, g.Line, path, "")
	}

	e.log.Debug("opening container", "path", path, "line", g.Line)
	h, err := e.st.EnsureContainer(ctx, g.Path)
	if err != nil {
		return storeError(ctx, err, g.Line, path, "", "open container")
	}
	defer h.Close()
	e.result.Containers++
	e.opts.container(g.Path)

	for i := range g.Directives {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.applyDirective(ctx, h, g.Path, &g.Directives[i]); err != nil {
			return err
		}
	}
	return nil
}

func (e *engine) applyDirective(ctx context.Context, h types.Handle, p types.ContainerPath, d *types.Directive) error {
	path := p.String()
	value, err := coerce.Coerce(d.Kind, d.Raw)
	if err != nil {
		return types.Locate(err, d.Line, path, d.Name)
	}
	if err := e.limits.CheckValue(d.Name, format.EncodedSize(d.Kind, value)); err != nil {
		return types.Locate(err, d.Line, path, d.Name)
	}
	if err := h.SetValue(ctx, d.Name, d.Kind, value); err != nil {
		return storeError(ctx, err, d.Line, path, d.Name, "set value")
	}
	e.result.Values++
	e.log.Debug("value set", "path", path, "name", d.Name, "kind", d.Kind.String(), "line", d.Line)
	e.opts.applied(types.AppliedValue{Path: p, Name: d.Name, Kind: d.Kind, Value: value, Line: d.Line})
	return nil
}

// storeError keeps the kind of typed store errors and classifies anything
// else as StoreUnavailable. A cancelled run returns the context error itself.
func storeError(ctx context.Context, err error, line int, path, name, action string) error {
	if cerr := ctx.Err(); cerr != nil && errors.Is(err, cerr) {
		return cerr
	}
	if types.KindOf(err) != 0 {
		return types.Locate(err, line, path, name)
	}
	return &types.Error{
		Kind: types.ErrKindStoreUnavailable,
		Msg:  fmt.Sprintf("store failed to %s", action),
		Line: line,
		Path: path,
		Name: name,
		Err:  err,
	}
}
