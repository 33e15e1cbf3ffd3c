// Package sqlitedb persists a mesh database in a SQLite file. It
// wraps the in-memory backend for all live operations and reads or
// writes full snapshots of it, so a saved file is a complete model.
package sqlitedb

import (
	"database/sql"
	"fmt"

	"github.com/chazu/dagmesh/pkg/meshdb"
	"github.com/chazu/dagmesh/pkg/meshdb/memdb"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Compile-time interface checks.
var (
	_ meshdb.Database  = (*Store)(nil)
	_ meshdb.FileSaver = (*Store)(nil)
)

// Store is a mesh database backed by a SQLite file. Live operations
// run against the embedded in-memory database; SaveFile snapshots it.
type Store struct {
	*memdb.DB
	db   *sql.DB
	path string
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tag_defs (
		name TEXT PRIMARY KEY,
		type INTEGER NOT NULL,
		size INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS entity_sets (
		handle INTEGER PRIMARY KEY,
		ord INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS containment (
		parent INTEGER NOT NULL,
		child INTEGER NOT NULL,
		ord INTEGER NOT NULL,
		PRIMARY KEY (parent, child)
	)`,
	`CREATE TABLE IF NOT EXISTS string_tags (
		handle INTEGER NOT NULL,
		tag TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (handle, tag)
	)`,
	`CREATE TABLE IF NOT EXISTS int_tags (
		handle INTEGER NOT NULL,
		tag TEXT NOT NULL,
		value INTEGER NOT NULL,
		PRIMARY KEY (handle, tag)
	)`,
	`CREATE TABLE IF NOT EXISTS pair_tags (
		handle INTEGER NOT NULL,
		tag TEXT NOT NULL,
		forward INTEGER NOT NULL,
		reverse INTEGER NOT NULL,
		PRIMARY KEY (handle, tag)
	)`,
	`CREATE TABLE IF NOT EXISTS vertices (
		handle INTEGER PRIMARY KEY,
		x REAL NOT NULL,
		y REAL NOT NULL,
		z REAL NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS triangles (
		handle INTEGER PRIMARY KEY,
		surface INTEGER NOT NULL,
		ord INTEGER NOT NULL,
		v0 INTEGER NOT NULL,
		v1 INTEGER NOT NULL,
		v2 INTEGER NOT NULL
	)`,
}

// Open opens (or creates) a mesh database file and loads its contents
// into memory.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	s := &Store{DB: memdb.New(), db: db, path: path}
	if err := s.load(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the file the store was opened on.
func (s *Store) Path() string { return s.path }

// Close releases the file connection. The in-memory state stays
// usable; it just can no longer be saved through this store.
func (s *Store) Close() error { return s.db.Close() }

// Save snapshots the in-memory state to the file the store was opened
// on.
func (s *Store) Save() error {
	return save(s.db, s.Export())
}

// SaveFile snapshots the in-memory state to path. An empty path, or
// the store's own path, saves in place; any other path writes a copy.
func (s *Store) SaveFile(path string) error {
	if path == "" || path == s.path {
		return s.Save()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = db.Close() }()
	if err := ensureSchema(db); err != nil {
		return err
	}
	return save(db, s.Export())
}

func ensureSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// load reads the whole file into the embedded in-memory database. A
// fresh file (no meta row) leaves the database empty.
func (s *Store) load() error {
	var next int64
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'next'`).Scan(&next)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read meta: %w", err)
	}
	state := memdb.State{Next: meshdb.Handle(next)}

	rows, err := s.db.Query(`SELECT name, type, size FROM tag_defs ORDER BY name`)
	if err != nil {
		return fmt.Errorf("select tag_defs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var def meshdb.TagDef
		var typ int
		if err := rows.Scan(&def.Name, &typ, &def.Size); err != nil {
			return fmt.Errorf("scan tag_defs: %w", err)
		}
		def.Type = meshdb.TagType(typ)
		state.TagDefs = append(state.TagDefs, def)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	sets := make(map[meshdb.Handle]*memdb.SetState)
	rows, err = s.db.Query(`SELECT handle FROM entity_sets ORDER BY ord`)
	if err != nil {
		return fmt.Errorf("select entity_sets: %w", err)
	}
	for rows.Next() {
		var h int64
		if err := rows.Scan(&h); err != nil {
			return fmt.Errorf("scan entity_sets: %w", err)
		}
		state.Sets = append(state.Sets, memdb.SetState{
			Handle:     meshdb.Handle(h),
			StringTags: make(map[string]string),
			IntTags:    make(map[string]int),
			PairTags:   make(map[string][2]meshdb.Handle),
		})
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := range state.Sets {
		sets[state.Sets[i].Handle] = &state.Sets[i]
	}

	rows, err = s.db.Query(`SELECT parent, child FROM containment ORDER BY parent, ord`)
	if err != nil {
		return fmt.Errorf("select containment: %w", err)
	}
	for rows.Next() {
		var parent, child int64
		if err := rows.Scan(&parent, &child); err != nil {
			return fmt.Errorf("scan containment: %w", err)
		}
		ss, ok := sets[meshdb.Handle(parent)]
		if !ok {
			return fmt.Errorf("containment row for unknown set %d", parent)
		}
		ss.Children = append(ss.Children, meshdb.Handle(child))
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.Query(`SELECT handle, tag, value FROM string_tags`)
	if err != nil {
		return fmt.Errorf("select string_tags: %w", err)
	}
	for rows.Next() {
		var h int64
		var tag, value string
		if err := rows.Scan(&h, &tag, &value); err != nil {
			return fmt.Errorf("scan string_tags: %w", err)
		}
		if ss, ok := sets[meshdb.Handle(h)]; ok {
			ss.StringTags[tag] = value
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.Query(`SELECT handle, tag, value FROM int_tags`)
	if err != nil {
		return fmt.Errorf("select int_tags: %w", err)
	}
	for rows.Next() {
		var h, value int64
		var tag string
		if err := rows.Scan(&h, &tag, &value); err != nil {
			return fmt.Errorf("scan int_tags: %w", err)
		}
		if ss, ok := sets[meshdb.Handle(h)]; ok {
			ss.IntTags[tag] = int(value)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.Query(`SELECT handle, tag, forward, reverse FROM pair_tags`)
	if err != nil {
		return fmt.Errorf("select pair_tags: %w", err)
	}
	for rows.Next() {
		var h, fwd, rev int64
		var tag string
		if err := rows.Scan(&h, &tag, &fwd, &rev); err != nil {
			return fmt.Errorf("scan pair_tags: %w", err)
		}
		if ss, ok := sets[meshdb.Handle(h)]; ok {
			ss.PairTags[tag] = [2]meshdb.Handle{meshdb.Handle(fwd), meshdb.Handle(rev)}
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.Query(`SELECT handle, x, y, z FROM vertices`)
	if err != nil {
		return fmt.Errorf("select vertices: %w", err)
	}
	for rows.Next() {
		var h int64
		var vs memdb.VertexState
		if err := rows.Scan(&h, &vs.Pos.X, &vs.Pos.Y, &vs.Pos.Z); err != nil {
			return fmt.Errorf("scan vertices: %w", err)
		}
		vs.Handle = meshdb.Handle(h)
		state.Vertices = append(state.Vertices, vs)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.Query(`SELECT handle, surface, v0, v1, v2 FROM triangles ORDER BY surface, ord`)
	if err != nil {
		return fmt.Errorf("select triangles: %w", err)
	}
	for rows.Next() {
		var h, surface, v0, v1, v2 int64
		if err := rows.Scan(&h, &surface, &v0, &v1, &v2); err != nil {
			return fmt.Errorf("scan triangles: %w", err)
		}
		state.Triangles = append(state.Triangles, memdb.TriangleState{
			Handle: meshdb.Handle(h),
			Verts:  [3]meshdb.Handle{meshdb.Handle(v0), meshdb.Handle(v1), meshdb.Handle(v2)},
		})
		ss, ok := sets[meshdb.Handle(surface)]
		if !ok {
			return fmt.Errorf("triangle row for unknown set %d", surface)
		}
		ss.Triangles = append(ss.Triangles, meshdb.Handle(h))
	}
	if err := rows.Err(); err != nil {
		return err
	}

	return s.Import(state)
}

// save writes the snapshot in one transaction, replacing any previous
// contents.
func save(db *sql.DB, state memdb.State) (retErr error) {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{
		"meta", "tag_defs", "entity_sets", "containment",
		"string_tags", "int_tags", "pair_tags", "vertices", "triangles",
	} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			retErr = fmt.Errorf("clear %s: %w", table, err)
			return retErr
		}
	}

	if _, err := tx.Exec(`INSERT INTO meta(key, value) VALUES('next', ?)`, int64(state.Next)); err != nil {
		retErr = fmt.Errorf("insert meta: %w", err)
		return retErr
	}
	for _, def := range state.TagDefs {
		if _, err := tx.Exec(`INSERT INTO tag_defs(name, type, size) VALUES(?, ?, ?)`,
			def.Name, int(def.Type), def.Size); err != nil {
			retErr = fmt.Errorf("insert tag_defs: %w", err)
			return retErr
		}
	}
	for i, ss := range state.Sets {
		if _, err := tx.Exec(`INSERT INTO entity_sets(handle, ord) VALUES(?, ?)`,
			int64(ss.Handle), i); err != nil {
			retErr = fmt.Errorf("insert entity_sets: %w", err)
			return retErr
		}
		for j, c := range ss.Children {
			if _, err := tx.Exec(`INSERT INTO containment(parent, child, ord) VALUES(?, ?, ?)`,
				int64(ss.Handle), int64(c), j); err != nil {
				retErr = fmt.Errorf("insert containment: %w", err)
				return retErr
			}
		}
		for tag, v := range ss.StringTags {
			if _, err := tx.Exec(`INSERT INTO string_tags(handle, tag, value) VALUES(?, ?, ?)`,
				int64(ss.Handle), tag, v); err != nil {
				retErr = fmt.Errorf("insert string_tags: %w", err)
				return retErr
			}
		}
		for tag, v := range ss.IntTags {
			if _, err := tx.Exec(`INSERT INTO int_tags(handle, tag, value) VALUES(?, ?, ?)`,
				int64(ss.Handle), tag, int64(v)); err != nil {
				retErr = fmt.Errorf("insert int_tags: %w", err)
				return retErr
			}
		}
		for tag, v := range ss.PairTags {
			if _, err := tx.Exec(`INSERT INTO pair_tags(handle, tag, forward, reverse) VALUES(?, ?, ?, ?)`,
				int64(ss.Handle), tag, int64(v[0]), int64(v[1])); err != nil {
				retErr = fmt.Errorf("insert pair_tags: %w", err)
				return retErr
			}
		}
	}
	for _, vs := range state.Vertices {
		if _, err := tx.Exec(`INSERT INTO vertices(handle, x, y, z) VALUES(?, ?, ?, ?)`,
			int64(vs.Handle), vs.Pos.X, vs.Pos.Y, vs.Pos.Z); err != nil {
			retErr = fmt.Errorf("insert vertices: %w", err)
			return retErr
		}
	}
	conn := make(map[meshdb.Handle][3]meshdb.Handle, len(state.Triangles))
	for _, ts := range state.Triangles {
		conn[ts.Handle] = ts.Verts
	}
	for _, ss := range state.Sets {
		for j, th := range ss.Triangles {
			verts, ok := conn[th]
			if !ok {
				retErr = fmt.Errorf("set %d references unknown triangle %d", ss.Handle, th)
				return retErr
			}
			if _, err := tx.Exec(`INSERT INTO triangles(handle, surface, ord, v0, v1, v2) VALUES(?, ?, ?, ?, ?, ?)`,
				int64(th), int64(ss.Handle), j,
				int64(verts[0]), int64(verts[1]), int64(verts[2])); err != nil {
				retErr = fmt.Errorf("insert triangles: %w", err)
				return retErr
			}
		}
	}
	return tx.Commit()
}
