// Package meshdb defines the abstract mesh database interface.
// Implementations (memdb, sqlitedb) store entity sets, typed tags,
// containment edges, and triangle elements behind this interface.
// The database abstraction allows swapping storage backends without
// changing the semantic model built on top of it.
package meshdb

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Handle is an opaque reference to an entity set, triangle element, or
// vertex in a mesh database. Handles are only meaningful to the
// database that issued them. Handle 0 is never allocated; two-handle
// tags use it to mark an empty slot.
type Handle uint64

// TagType identifies the value type of a tag definition.
type TagType int

const (
	// TypeString tags hold a string of at most Size bytes.
	TypeString TagType = iota + 1
	// TypeInt tags hold a single integer.
	TypeInt
	// TypeHandlePair tags hold exactly two handles.
	TypeHandlePair
)

// String returns the type name.
func (t TagType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeHandlePair:
		return "handle-pair"
	}
	return "unknown"
}

// TagDef describes a tag: its name, value type, and size limit.
// Size is the byte limit for string tags and is ignored for the other
// types (integer tags hold one value, handle tags hold two).
type TagDef struct {
	Name string
	Type TagType
	Size int
}

// Triangle is one oriented triangle given as three vertex positions,
// wound counter-clockwise when viewed from its outward side.
type Triangle [3]v3.Vec

// Database is the abstract mesh database interface. It knows nothing
// about categories, senses, or materials; it stores entity sets, the
// parent/child edges between them, typed tags, and the triangle
// elements owned by entity sets.
//
// Reads on unknown handles or absent tags report absence rather than
// failing; mutations on unknown handles fail.
type Database interface {
	// Entity sets.
	CreateEntitySet() Handle
	DeleteEntitySet(h Handle) error
	EntitySets() []Handle

	// Containment edges. AddChild of an existing edge is a no-op;
	// RemoveChild of an absent edge is an error. Children and Parents
	// return copies in insertion order.
	AddChild(parent, child Handle) error
	RemoveChild(parent, child Handle) error
	Children(h Handle) []Handle
	Parents(h Handle) []Handle

	// EnsureTag declares a tag or returns the existing definition.
	// Redeclaring a tag with a different type or size is an error.
	EnsureTag(def TagDef) (TagDef, error)

	// Typed tag storage. Writes fail on unknown handles, undeclared
	// tags, or type mismatches; reads return false for all of those.
	// ClearTag of an absent tag value is a no-op.
	SetTagString(h Handle, tag, value string) error
	TagString(h Handle, tag string) (string, bool)
	SetTagInt(h Handle, tag string, value int) error
	TagInt(h Handle, tag string) (int, bool)
	SetTagHandles(h Handle, tag string, value [2]Handle) error
	TagHandles(h Handle, tag string) ([2]Handle, bool)
	ClearTag(h Handle, tag string) error

	// Tag scans over entity sets, in set-creation order.
	// SetsWithTagValue matches string tags only.
	SetsWithTag(tag string) []Handle
	SetsWithTagValue(tag, value string) []Handle

	// Triangle elements. AddTriangles creates vertices and triangle
	// elements owned by the surface set and returns the new triangle
	// handles; vertices at exactly equal positions are shared within
	// one call. Triangles returns the surface's triangle handles in
	// insertion order.
	AddTriangles(surface Handle, tris []Triangle) ([]Handle, error)
	Triangles(surface Handle) []Handle
	Connectivity(tri Handle) ([3]Handle, error)
	Coordinates(vertex Handle) (v3.Vec, error)
}

// FileSaver is implemented by databases that can persist their entire
// state to a file.
type FileSaver interface {
	SaveFile(path string) error
}
