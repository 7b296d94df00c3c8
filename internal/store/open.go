// Package store selects a store backend from configuration.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/joshuapare/regapply/internal/config"
	"github.com/joshuapare/regapply/internal/store/memstore"
	"github.com/joshuapare/regapply/internal/store/sqlstore"
	"github.com/joshuapare/regapply/internal/store/winstore"
	"github.com/joshuapare/regapply/pkg/types"
)

// Backend is an opened store.
type Backend struct {
	types.Store
	Name  string
	close func() error
}

// Close releases the backend's resources.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Dump lists the backend's contents when it supports listing.
func (b *Backend) Dump(ctx context.Context) ([]types.KeyDump, error) {
	d, ok := b.Store.(types.Dumper)
	if !ok {
		return nil, fmt.Errorf("the %s backend cannot be listed", b.Name)
	}
	return d.Dump(ctx)
}

// Open opens the backend named by cfg.Backend.
func Open(ctx context.Context, cfg config.StoreConfig, limits types.Limits) (*Backend, error) {
	name := strings.ToLower(cfg.Backend)
	switch name {
	case config.BackendMemory:
		opts := []memstore.Option{memstore.WithFoldCase(cfg.FoldCase), memstore.WithLimits(limits)}
		if cfg.ReadOnly {
			roots := make([]types.ContainerPath, 0, len(types.RootKeys))
			for _, r := range types.RootKeys {
				roots = append(roots, types.NewPath(r))
			}
			opts = append(opts, memstore.WithReadOnly(roots...))
		}
		return &Backend{Store: memstore.New(opts...), Name: name}, nil

	case config.BackendSQLite:
		s, err := sqlstore.Open(ctx, sqlstore.Options{
			Path:     cfg.Path,
			ReadOnly: cfg.ReadOnly,
			FoldCase: cfg.FoldCase,
		})
		if err != nil {
			return nil, err
		}
		return &Backend{Store: s, Name: name, close: s.Close}, nil

	case config.BackendRegistry:
		if cfg.ReadOnly {
			return nil, &types.Error{Kind: types.ErrKindAccessDenied, Msg: "the registry backend cannot be opened read-only"}
		}
		s, err := winstore.Open()
		if err != nil {
			return nil, err
		}
		return &Backend{Store: s, Name: name}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
