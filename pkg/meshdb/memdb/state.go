package memdb

import (
	"fmt"
	"sort"

	"github.com/chazu/dagmesh/pkg/meshdb"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// State is a copyable snapshot of a database's full contents, used by
// persistence wrappers. Parent edges are derived from child edges on
// import and are not stored.
type State struct {
	Next      meshdb.Handle
	TagDefs   []meshdb.TagDef
	Sets      []SetState
	Vertices  []VertexState
	Triangles []TriangleState
}

// SetState is one entity set: its tags, ordered children, and ordered
// owned triangles.
type SetState struct {
	Handle     meshdb.Handle
	Children   []meshdb.Handle
	StringTags map[string]string
	IntTags    map[string]int
	PairTags   map[string][2]meshdb.Handle
	Triangles  []meshdb.Handle
}

// VertexState is one vertex position.
type VertexState struct {
	Handle meshdb.Handle
	Pos    v3.Vec
}

// TriangleState is one triangle's vertex handles.
type TriangleState struct {
	Handle meshdb.Handle
	Verts  [3]meshdb.Handle
}

// Export returns a deterministic snapshot: sets in creation order, tag
// definitions sorted by name, vertices and triangles sorted by handle.
func (db *DB) Export() State {
	s := State{Next: db.next}

	s.TagDefs = make([]meshdb.TagDef, 0, len(db.tagDefs))
	for _, def := range db.tagDefs {
		s.TagDefs = append(s.TagDefs, def)
	}
	sort.Slice(s.TagDefs, func(i, j int) bool { return s.TagDefs[i].Name < s.TagDefs[j].Name })

	s.Sets = make([]SetState, 0, len(db.setOrder))
	for _, h := range db.setOrder {
		es := db.sets[h]
		ss := SetState{
			Handle:     h,
			Children:   append([]meshdb.Handle(nil), es.children...),
			StringTags: make(map[string]string, len(es.strTags)),
			IntTags:    make(map[string]int, len(es.intTags)),
			PairTags:   make(map[string][2]meshdb.Handle, len(es.pairTags)),
			Triangles:  append([]meshdb.Handle(nil), es.tris...),
		}
		for k, v := range es.strTags {
			ss.StringTags[k] = v
		}
		for k, v := range es.intTags {
			ss.IntTags[k] = v
		}
		for k, v := range es.pairTags {
			ss.PairTags[k] = v
		}
		s.Sets = append(s.Sets, ss)
	}

	s.Vertices = make([]VertexState, 0, len(db.verts))
	for h, p := range db.verts {
		s.Vertices = append(s.Vertices, VertexState{Handle: h, Pos: p})
	}
	sort.Slice(s.Vertices, func(i, j int) bool { return s.Vertices[i].Handle < s.Vertices[j].Handle })

	s.Triangles = make([]TriangleState, 0, len(db.tris))
	for h, conn := range db.tris {
		s.Triangles = append(s.Triangles, TriangleState{Handle: h, Verts: conn})
	}
	sort.Slice(s.Triangles, func(i, j int) bool { return s.Triangles[i].Handle < s.Triangles[j].Handle })

	return s
}

// Import replaces the database contents with the snapshot.
func (db *DB) Import(s State) error {
	db.next = 1
	db.tagDefs = make(map[string]meshdb.TagDef, len(s.TagDefs))
	db.sets = make(map[meshdb.Handle]*entitySet, len(s.Sets))
	db.setOrder = make([]meshdb.Handle, 0, len(s.Sets))
	db.verts = make(map[meshdb.Handle]v3.Vec, len(s.Vertices))
	db.tris = make(map[meshdb.Handle][3]meshdb.Handle, len(s.Triangles))

	var max meshdb.Handle
	for _, def := range s.TagDefs {
		if _, err := db.EnsureTag(def); err != nil {
			return err
		}
	}
	for _, v := range s.Vertices {
		db.verts[v.Handle] = v.Pos
		if v.Handle > max {
			max = v.Handle
		}
	}
	for _, tri := range s.Triangles {
		for _, v := range tri.Verts {
			if _, ok := db.verts[v]; !ok {
				return fmt.Errorf("triangle %d references unknown vertex %d", tri.Handle, v)
			}
		}
		db.tris[tri.Handle] = tri.Verts
		if tri.Handle > max {
			max = tri.Handle
		}
	}
	for _, ss := range s.Sets {
		if _, ok := db.sets[ss.Handle]; ok {
			return fmt.Errorf("duplicate entity set %d", ss.Handle)
		}
		es := newEntitySet()
		for k, v := range ss.StringTags {
			es.strTags[k] = v
		}
		for k, v := range ss.IntTags {
			es.intTags[k] = v
		}
		for k, v := range ss.PairTags {
			es.pairTags[k] = v
		}
		for _, th := range ss.Triangles {
			if _, ok := db.tris[th]; !ok {
				return fmt.Errorf("set %d references unknown triangle %d", ss.Handle, th)
			}
		}
		es.tris = append([]meshdb.Handle(nil), ss.Triangles...)
		db.sets[ss.Handle] = es
		db.setOrder = append(db.setOrder, ss.Handle)
		if ss.Handle > max {
			max = ss.Handle
		}
	}
	// Edges only after every set exists.
	for _, ss := range s.Sets {
		for _, c := range ss.Children {
			if err := db.AddChild(ss.Handle, c); err != nil {
				return err
			}
		}
	}
	db.next = s.Next
	if db.next <= max {
		db.next = max + 1
	}
	return nil
}
