// Package memdb implements the meshdb.Database interface with plain
// in-memory maps. It is the default backend for models that never
// touch disk and the working state behind the sqlitedb backend.
//
// Iteration surfaces (EntitySets, Children, Parents, tag scans) report
// insertion order, so a sequence of operations replays identically.
package memdb

import (
	"fmt"

	"github.com/chazu/dagmesh/pkg/meshdb"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ meshdb.Database = (*DB)(nil)

// DB is an in-memory mesh database. The zero value is not usable;
// call New.
type DB struct {
	next    meshdb.Handle
	tagDefs map[string]meshdb.TagDef

	sets     map[meshdb.Handle]*entitySet
	setOrder []meshdb.Handle

	verts map[meshdb.Handle]v3.Vec
	tris  map[meshdb.Handle][3]meshdb.Handle
}

// entitySet holds one set's edges, tags, and owned triangles.
// children/parents slices carry order; the maps back them for O(1)
// membership.
type entitySet struct {
	children  []meshdb.Handle
	childSet  map[meshdb.Handle]struct{}
	parents   []meshdb.Handle
	parentSet map[meshdb.Handle]struct{}

	strTags  map[string]string
	intTags  map[string]int
	pairTags map[string][2]meshdb.Handle

	tris []meshdb.Handle
}

func newEntitySet() *entitySet {
	return &entitySet{
		childSet:  make(map[meshdb.Handle]struct{}),
		parentSet: make(map[meshdb.Handle]struct{}),
		strTags:   make(map[string]string),
		intTags:   make(map[string]int),
		pairTags:  make(map[string][2]meshdb.Handle),
	}
}

// New returns an empty in-memory database.
func New() *DB {
	return &DB{
		next:    1,
		tagDefs: make(map[string]meshdb.TagDef),
		sets:    make(map[meshdb.Handle]*entitySet),
		verts:   make(map[meshdb.Handle]v3.Vec),
		tris:    make(map[meshdb.Handle][3]meshdb.Handle),
	}
}

// alloc issues the next handle. Handles are never reused, and handle 0
// is never issued.
func (db *DB) alloc() meshdb.Handle {
	h := db.next
	db.next++
	return h
}

// CreateEntitySet creates an empty entity set and returns its handle.
func (db *DB) CreateEntitySet() meshdb.Handle {
	h := db.alloc()
	db.sets[h] = newEntitySet()
	db.setOrder = append(db.setOrder, h)
	return h
}

// DeleteEntitySet removes a set and every containment edge touching
// it. Triangles owned by the set are orphaned, not deleted.
func (db *DB) DeleteEntitySet(h meshdb.Handle) error {
	es, ok := db.sets[h]
	if !ok {
		return fmt.Errorf("unknown entity set %d", h)
	}
	for _, c := range es.children {
		if child, ok := db.sets[c]; ok {
			child.parents = remove(child.parents, h)
			delete(child.parentSet, h)
		}
	}
	for _, p := range es.parents {
		if parent, ok := db.sets[p]; ok {
			parent.children = remove(parent.children, h)
			delete(parent.childSet, h)
		}
	}
	delete(db.sets, h)
	db.setOrder = remove(db.setOrder, h)
	return nil
}

// EntitySets returns all entity set handles in creation order.
func (db *DB) EntitySets() []meshdb.Handle {
	out := make([]meshdb.Handle, len(db.setOrder))
	copy(out, db.setOrder)
	return out
}

// AddChild records a parent→child containment edge. Adding an edge
// that already exists is a no-op.
func (db *DB) AddChild(parent, child meshdb.Handle) error {
	p, ok := db.sets[parent]
	if !ok {
		return fmt.Errorf("unknown parent set %d", parent)
	}
	c, ok := db.sets[child]
	if !ok {
		return fmt.Errorf("unknown child set %d", child)
	}
	if _, ok := p.childSet[child]; ok {
		return nil
	}
	p.children = append(p.children, child)
	p.childSet[child] = struct{}{}
	c.parents = append(c.parents, parent)
	c.parentSet[parent] = struct{}{}
	return nil
}

// RemoveChild removes a containment edge. Removing an edge that does
// not exist is an error.
func (db *DB) RemoveChild(parent, child meshdb.Handle) error {
	p, ok := db.sets[parent]
	if !ok {
		return fmt.Errorf("unknown parent set %d", parent)
	}
	c, ok := db.sets[child]
	if !ok {
		return fmt.Errorf("unknown child set %d", child)
	}
	if _, ok := p.childSet[child]; !ok {
		return fmt.Errorf("set %d is not a child of set %d", child, parent)
	}
	p.children = remove(p.children, child)
	delete(p.childSet, child)
	c.parents = remove(c.parents, parent)
	delete(c.parentSet, parent)
	return nil
}

// Children returns a copy of the set's children in insertion order.
func (db *DB) Children(h meshdb.Handle) []meshdb.Handle {
	es, ok := db.sets[h]
	if !ok {
		return nil
	}
	out := make([]meshdb.Handle, len(es.children))
	copy(out, es.children)
	return out
}

// Parents returns a copy of the set's parents in insertion order.
func (db *DB) Parents(h meshdb.Handle) []meshdb.Handle {
	es, ok := db.sets[h]
	if !ok {
		return nil
	}
	out := make([]meshdb.Handle, len(es.parents))
	copy(out, es.parents)
	return out
}

// EnsureTag declares a tag or returns its existing definition.
func (db *DB) EnsureTag(def meshdb.TagDef) (meshdb.TagDef, error) {
	if def.Name == "" {
		return meshdb.TagDef{}, fmt.Errorf("tag name must not be empty")
	}
	if existing, ok := db.tagDefs[def.Name]; ok {
		if existing.Type != def.Type || existing.Size != def.Size {
			return meshdb.TagDef{}, fmt.Errorf("tag %q already declared as %s(%d)",
				def.Name, existing.Type, existing.Size)
		}
		return existing, nil
	}
	db.tagDefs[def.Name] = def
	return def, nil
}

// checkTag validates a write target: the set must exist and the tag
// must be declared with the expected type.
func (db *DB) checkTag(h meshdb.Handle, tag string, want meshdb.TagType) (*entitySet, error) {
	es, ok := db.sets[h]
	if !ok {
		return nil, fmt.Errorf("unknown entity set %d", h)
	}
	def, ok := db.tagDefs[tag]
	if !ok {
		return nil, fmt.Errorf("tag %q not declared", tag)
	}
	if def.Type != want {
		return nil, fmt.Errorf("tag %q is %s, not %s", tag, def.Type, want)
	}
	return es, nil
}

// SetTagString writes a string tag value.
func (db *DB) SetTagString(h meshdb.Handle, tag, value string) error {
	es, err := db.checkTag(h, tag, meshdb.TypeString)
	if err != nil {
		return err
	}
	if max := db.tagDefs[tag].Size; max > 0 && len(value) > max {
		return fmt.Errorf("value for tag %q exceeds %d bytes", tag, max)
	}
	es.strTags[tag] = value
	return nil
}

// TagString reads a string tag value.
func (db *DB) TagString(h meshdb.Handle, tag string) (string, bool) {
	es, ok := db.sets[h]
	if !ok {
		return "", false
	}
	v, ok := es.strTags[tag]
	return v, ok
}

// SetTagInt writes an integer tag value.
func (db *DB) SetTagInt(h meshdb.Handle, tag string, value int) error {
	es, err := db.checkTag(h, tag, meshdb.TypeInt)
	if err != nil {
		return err
	}
	es.intTags[tag] = value
	return nil
}

// TagInt reads an integer tag value.
func (db *DB) TagInt(h meshdb.Handle, tag string) (int, bool) {
	es, ok := db.sets[h]
	if !ok {
		return 0, false
	}
	v, ok := es.intTags[tag]
	return v, ok
}

// SetTagHandles writes a two-handle tag value.
func (db *DB) SetTagHandles(h meshdb.Handle, tag string, value [2]meshdb.Handle) error {
	es, err := db.checkTag(h, tag, meshdb.TypeHandlePair)
	if err != nil {
		return err
	}
	es.pairTags[tag] = value
	return nil
}

// TagHandles reads a two-handle tag value.
func (db *DB) TagHandles(h meshdb.Handle, tag string) ([2]meshdb.Handle, bool) {
	es, ok := db.sets[h]
	if !ok {
		return [2]meshdb.Handle{}, false
	}
	v, ok := es.pairTags[tag]
	return v, ok
}

// ClearTag removes a tag value from a set. Clearing a value that was
// never written is a no-op.
func (db *DB) ClearTag(h meshdb.Handle, tag string) error {
	es, ok := db.sets[h]
	if !ok {
		return fmt.Errorf("unknown entity set %d", h)
	}
	def, ok := db.tagDefs[tag]
	if !ok {
		return fmt.Errorf("tag %q not declared", tag)
	}
	switch def.Type {
	case meshdb.TypeString:
		delete(es.strTags, tag)
	case meshdb.TypeInt:
		delete(es.intTags, tag)
	case meshdb.TypeHandlePair:
		delete(es.pairTags, tag)
	}
	return nil
}

// SetsWithTag returns the entity sets carrying any value for the tag,
// in creation order.
func (db *DB) SetsWithTag(tag string) []meshdb.Handle {
	def, ok := db.tagDefs[tag]
	if !ok {
		return nil
	}
	var out []meshdb.Handle
	for _, h := range db.setOrder {
		es := db.sets[h]
		switch def.Type {
		case meshdb.TypeString:
			if _, ok := es.strTags[tag]; ok {
				out = append(out, h)
			}
		case meshdb.TypeInt:
			if _, ok := es.intTags[tag]; ok {
				out = append(out, h)
			}
		case meshdb.TypeHandlePair:
			if _, ok := es.pairTags[tag]; ok {
				out = append(out, h)
			}
		}
	}
	return out
}

// SetsWithTagValue returns the entity sets whose string tag equals
// value, in creation order.
func (db *DB) SetsWithTagValue(tag, value string) []meshdb.Handle {
	def, ok := db.tagDefs[tag]
	if !ok || def.Type != meshdb.TypeString {
		return nil
	}
	var out []meshdb.Handle
	for _, h := range db.setOrder {
		if v, ok := db.sets[h].strTags[tag]; ok && v == value {
			out = append(out, h)
		}
	}
	return out
}

// AddTriangles creates vertex and triangle elements for the given
// surface set. Vertices at exactly equal positions are shared within
// the call; across calls every position is stored again.
func (db *DB) AddTriangles(surface meshdb.Handle, tris []meshdb.Triangle) ([]meshdb.Handle, error) {
	es, ok := db.sets[surface]
	if !ok {
		return nil, fmt.Errorf("unknown entity set %d", surface)
	}
	seen := make(map[v3.Vec]meshdb.Handle, len(tris))
	vertex := func(p v3.Vec) meshdb.Handle {
		if h, ok := seen[p]; ok {
			return h
		}
		h := db.alloc()
		db.verts[h] = p
		seen[p] = h
		return h
	}
	out := make([]meshdb.Handle, 0, len(tris))
	for _, tri := range tris {
		conn := [3]meshdb.Handle{vertex(tri[0]), vertex(tri[1]), vertex(tri[2])}
		th := db.alloc()
		db.tris[th] = conn
		es.tris = append(es.tris, th)
		out = append(out, th)
	}
	return out, nil
}

// Triangles returns a copy of the surface's triangle handles in
// insertion order.
func (db *DB) Triangles(surface meshdb.Handle) []meshdb.Handle {
	es, ok := db.sets[surface]
	if !ok {
		return nil
	}
	out := make([]meshdb.Handle, len(es.tris))
	copy(out, es.tris)
	return out
}

// Connectivity returns the three vertex handles of a triangle.
func (db *DB) Connectivity(tri meshdb.Handle) ([3]meshdb.Handle, error) {
	conn, ok := db.tris[tri]
	if !ok {
		return [3]meshdb.Handle{}, fmt.Errorf("unknown triangle %d", tri)
	}
	return conn, nil
}

// Coordinates returns the position of a vertex.
func (db *DB) Coordinates(vertex meshdb.Handle) (v3.Vec, error) {
	p, ok := db.verts[vertex]
	if !ok {
		return v3.Vec{}, fmt.Errorf("unknown vertex %d", vertex)
	}
	return p, nil
}

// remove splices the first occurrence of h out of s.
func remove(s []meshdb.Handle, h meshdb.Handle) []meshdb.Handle {
	for i, v := range s {
		if v == h {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
