package script

import (
	"errors"

	"github.com/joshuapare/regapply/internal/coerce"
	"github.com/joshuapare/regapply/internal/format"
	"github.com/joshuapare/regapply/pkg/types"
)

// Check coerces every directive and applies the limit checks without a
// store. Unlike Apply it does not stop at the first problem: all failures
// come back joined, each an *types.Error carrying its position.
func Check(doc *types.Document, limits *types.Limits) error {
	l := types.DefaultLimits()
	if limits != nil {
		l = *limits
	}
	var errs []error
	for _, g := range doc.Groups {
		path := g.Path.String()
		if err := l.CheckPath(g.Path); err != nil {
			errs = append(errs, types.Locate(err, g.Line, path, ""))
		}
		for _, d := range g.Directives {
			v, err := coerce.Coerce(d.Kind, d.Raw)
			if err != nil {
				errs = append(errs, types.Locate(err, d.Line, path, d.Name))
				continue
			}
			if err := l.CheckValue(d.Name, format.EncodedSize(d.Kind, v)); err != nil {
				errs = append(errs, types.Locate(err, d.Line, path, d.Name))
			}
		}
	}
	return errors.Join(errs...)
}
