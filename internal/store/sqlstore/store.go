// Package sqlstore persists a registry in a SQLite file. Containers form a
// tree through parent ids; values hold their registry wire bytes.
package sqlstore

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/joshuapare/regapply/internal/format"
	"github.com/joshuapare/regapply/pkg/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS containers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	root INTEGER NOT NULL,
	parent_id INTEGER NOT NULL DEFAULT 0,
	name TEXT NOT NULL,
	name_key TEXT NOT NULL,
	UNIQUE(root, parent_id, name_key)
);
CREATE TABLE IF NOT EXISTS vals (
	container_id INTEGER NOT NULL REFERENCES containers(id),
	name TEXT NOT NULL,
	name_key TEXT NOT NULL,
	type INTEGER NOT NULL,
	data BLOB NOT NULL,
	PRIMARY KEY (container_id, name_key)
);
`

// Options configures Open.
type Options struct {
	Path     string // database file path (":memory:" for in-memory)
	ReadOnly bool   // open with mode=ro; every write fails with AccessDenied
	FoldCase bool   // match container and value names case-insensitively
}

// Store is a types.Store backed by SQLite.
type Store struct {
	mu       sync.Mutex
	db       *sql.DB
	readOnly bool
	foldCase bool
}

// Open opens (creating if needed) the database at opts.Path.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, unavailable("sqlstore: no database path configured", nil)
	}
	dsn := opts.Path
	if opts.Path != ":memory:" {
		if !opts.ReadOnly {
			if err := os.MkdirAll(filepath.Dir(opts.Path), 0o750); err != nil {
				return nil, unavailable("sqlstore: create database dir", err)
			}
		}
		dsn = "file:" + opts.Path + "?_pragma=busy_timeout(5000)"
		if opts.ReadOnly {
			dsn += "&mode=ro"
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, unavailable("sqlstore: open database", err)
	}
	// :memory: databases exist per connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, unavailable("sqlstore: connect to database", err)
	}
	if !opts.ReadOnly {
		if _, err := db.ExecContext(ctx, schema); err != nil {
			db.Close()
			return nil, unavailable("sqlstore: create schema", err)
		}
	}
	return &Store{db: db, readOnly: opts.ReadOnly, foldCase: opts.FoldCase}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) key(name string) string {
	if s.foldCase {
		return strings.ToLower(name)
	}
	return name
}

// EnsureContainer creates any missing segments of path in one transaction.
func (s *Store) EnsureContainer(ctx context.Context, path types.ContainerPath) (types.Handle, error) {
	if s.readOnly {
		return nil, &types.Error{Kind: types.ErrKindAccessDenied, Msg: "sqlstore: database opened read-only", Path: path.String()}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify(err, "begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	var parent int64
	for _, seg := range path.Segments {
		var id int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM containers WHERE root = ? AND parent_id = ? AND name_key = ?`,
			int(path.Root), parent, s.key(seg)).Scan(&id)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			res, err := tx.ExecContext(ctx,
				`INSERT INTO containers (root, parent_id, name, name_key) VALUES (?, ?, ?, ?)`,
				int(path.Root), parent, seg, s.key(seg))
			if err != nil {
				return nil, classify(err, "create container")
			}
			if id, err = res.LastInsertId(); err != nil {
				return nil, classify(err, "create container")
			}
		case err != nil:
			return nil, classify(err, "look up container")
		}
		parent = id
	}
	if err := tx.Commit(); err != nil {
		return nil, classify(err, "commit")
	}
	return &handle{s: s, id: parent}, nil
}

type handle struct {
	s      *Store
	id     int64
	closed bool
}

func (h *handle) SetValue(ctx context.Context, name string, kind types.ValueKind, data types.TypedValue) error {
	if h.closed {
		return unavailable("sqlstore: handle already closed", nil)
	}
	if data == nil || !kind.Valid() || data.Tag() != kind.Tag() {
		return &types.Error{Kind: types.ErrKindTypeMismatch, Msg: fmt.Sprintf("sqlstore: %s cannot hold this data", kind)}
	}
	raw, err := format.Encode(kind, data)
	if err != nil {
		return &types.Error{Kind: types.ErrKindTypeMismatch, Msg: "sqlstore: encode value", Err: err}
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	_, err = h.s.db.ExecContext(ctx, `
		INSERT INTO vals (container_id, name, name_key, type, data) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (container_id, name_key) DO UPDATE SET type = excluded.type, data = excluded.data`,
		h.id, name, h.s.key(name), int64(kind), raw)
	if err != nil {
		return classify(err, "set value")
	}
	return nil
}

func (h *handle) Close() { h.closed = true }

type containerRow struct {
	id, parent int64
	root       types.RootKey
	name       string
}

// Dump lists every container with its values: containers in path order,
// values in name order, both case-insensitively.
func (s *Store) Dump(ctx context.Context) ([]types.KeyDump, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, root, parent_id, name FROM containers`)
	if err != nil {
		return nil, classify(err, "list containers")
	}
	byID := make(map[int64]containerRow)
	for rows.Next() {
		var r containerRow
		var root int
		if err := rows.Scan(&r.id, &root, &r.parent, &r.name); err != nil {
			rows.Close()
			return nil, classify(err, "list containers")
		}
		r.root = types.RootKey(root)
		byID[r.id] = r
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, classify(err, "list containers")
	}

	index := make(map[int64]int, len(byID))
	out := make([]types.KeyDump, 0, len(byID))
	for id := range byID {
		p, err := pathOf(byID, id)
		if err != nil {
			return nil, err
		}
		index[id] = len(out)
		out = append(out, types.KeyDump{Path: p})
	}

	vrows, err := s.db.QueryContext(ctx, `SELECT container_id, name, type, data FROM vals ORDER BY container_id, name_key`)
	if err != nil {
		return nil, classify(err, "list values")
	}
	defer vrows.Close()
	for vrows.Next() {
		var (
			cid  int64
			name string
			typ  int64
			raw  []byte
		)
		if err := vrows.Scan(&cid, &name, &typ, &raw); err != nil {
			return nil, classify(err, "list values")
		}
		i, ok := index[cid]
		if !ok {
			continue
		}
		kind := types.ValueKind(typ)
		v, err := format.Decode(kind, raw)
		if err != nil {
			return nil, unavailable(fmt.Sprintf("sqlstore: corrupt value %q", name), err)
		}
		out[i].Values = append(out[i].Values, types.NamedValue{Name: name, Kind: kind, Value: v})
	}
	if err := vrows.Err(); err != nil {
		return nil, classify(err, "list values")
	}

	slices.SortFunc(out, func(a, b types.KeyDump) int { return comparePaths(a.Path, b.Path) })
	for _, kd := range out {
		slices.SortStableFunc(kd.Values, func(a, b types.NamedValue) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
	}
	return out, nil
}

func pathOf(byID map[int64]containerRow, id int64) (types.ContainerPath, error) {
	var segs []string
	r := byID[id]
	root := r.root
	for guard := 0; ; guard++ {
		if guard > len(byID) {
			return types.ContainerPath{}, unavailable("sqlstore: container cycle", nil)
		}
		segs = append(segs, r.name)
		if r.parent == 0 {
			break
		}
		next, ok := byID[r.parent]
		if !ok {
			return types.ContainerPath{}, unavailable(fmt.Sprintf("sqlstore: dangling parent %d", r.parent), nil)
		}
		r = next
	}
	slices.Reverse(segs)
	return types.NewPath(root, segs...), nil
}

func comparePaths(a, b types.ContainerPath) int {
	if c := cmp.Compare(a.Root, b.Root); c != 0 {
		return c
	}
	for i := 0; i < len(a.Segments) && i < len(b.Segments); i++ {
		if c := strings.Compare(strings.ToLower(a.Segments[i]), strings.ToLower(b.Segments[i])); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a.Segments), len(b.Segments))
}

func unavailable(msg string, err error) *types.Error {
	return &types.Error{Kind: types.ErrKindStoreUnavailable, Msg: msg, Err: err}
}

// classify maps SQLite result codes onto store error kinds.
func classify(err error, action string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_READONLY, sqlite3.SQLITE_PERM, sqlite3.SQLITE_AUTH:
			return &types.Error{Kind: types.ErrKindAccessDenied, Msg: "sqlstore: " + action, Err: err}
		}
	}
	return unavailable("sqlstore: "+action, err)
}
