package dagmc

import (
	"fmt"

	"github.com/chazu/dagmesh/pkg/meshdb"
)

// Set is the capability interface implemented by Surface, Volume, and
// Group.
type Set interface {
	Handle() meshdb.Handle
	Category() Category
	base() *GeometrySet
}

// GeometrySet is the capability layer shared by Surface, Volume, and
// Group: a handle in the underlying database plus the model that owns
// it. It carries identity, naming, classification, triangle access,
// and deletion; the subtypes add their category-specific operations.
type GeometrySet struct {
	model  *Model
	handle meshdb.Handle
}

func (s *GeometrySet) base() *GeometrySet { return s }

// Handle returns the underlying entity set handle.
func (s *GeometrySet) Handle() meshdb.Handle { return s.handle }

// Model returns the model that owns this set.
func (s *GeometrySet) Model() *Model { return s.model }

// Category returns the set's category, or CategoryUnknown if the tag
// is absent.
func (s *GeometrySet) Category() Category {
	c, _ := s.model.tags.Category(s.handle)
	return c
}

// GeomDimension returns the set's geometric dimension tag.
func (s *GeometrySet) GeomDimension() (int, bool) {
	return s.model.tags.Dimension(s.handle)
}

// SetCategory writes the category tag. If the geometric dimension is
// unset it is inferred from the category and written too, with a
// warning logged; a dimension inconsistent with the new category
// rejects the write.
func (s *GeometrySet) SetCategory(c Category) error {
	if c == CategoryUnknown {
		return fmt.Errorf("set %d: cannot assign unknown category", s.handle)
	}
	dim, hasDim := s.model.tags.Dimension(s.handle)
	if hasDim && dim != c.Dimension() {
		return &CategoryDimensionMismatchError{Handle: s.handle, Category: c, Dimension: dim}
	}
	if err := s.model.tags.SetCategory(s.handle, c); err != nil {
		return err
	}
	if !hasDim {
		if err := s.model.tags.SetDimension(s.handle, c.Dimension()); err != nil {
			return err
		}
		s.model.log.Warn().
			Uint64("set", uint64(s.handle)).
			Str("category", c.String()).
			Int("dimension", c.Dimension()).
			Msg("inferred geometric dimension from category")
	}
	return nil
}

// SetGeomDimension writes the geometric dimension tag. If the category
// is unset it is inferred from the dimension and written too, with a
// warning logged; a category inconsistent with the new dimension
// rejects the write.
func (s *GeometrySet) SetGeomDimension(d int) error {
	want, ok := CategoryForDimension(d)
	if !ok {
		return fmt.Errorf("set %d: invalid geometric dimension %d", s.handle, d)
	}
	cat, hasCat := s.model.tags.Category(s.handle)
	if hasCat && cat != want {
		return &CategoryDimensionMismatchError{Handle: s.handle, Category: cat, Dimension: d}
	}
	if err := s.model.tags.SetDimension(s.handle, d); err != nil {
		return err
	}
	if !hasCat {
		if err := s.model.tags.SetCategory(s.handle, want); err != nil {
			return err
		}
		s.model.log.Warn().
			Uint64("set", uint64(s.handle)).
			Str("category", want.String()).
			Int("dimension", d).
			Msg("inferred category from geometric dimension")
	}
	return nil
}

// GlobalID returns the set's global ID tag. IDs are only unique within
// one category of one model.
func (s *GeometrySet) GlobalID() (int, bool) {
	return s.model.tags.GlobalID(s.handle)
}

// SetGlobalID assigns a global ID, or the next free one when id is 0.
// An ID already in use for this set's category in the owning model is
// rejected; on success the model's used-ID bookkeeping is updated and
// any previous ID is released.
func (s *GeometrySet) SetGlobalID(id int) error {
	cat := s.Category()
	if cat == CategoryUnknown {
		return fmt.Errorf("set %d: cannot assign a global ID before the category is set", s.handle)
	}
	if id < 0 {
		return fmt.Errorf("set %d: global IDs are positive, got %d", s.handle, id)
	}
	if id == 0 {
		id = s.model.NextID(cat)
	} else if s.model.idInUse(cat, id) {
		return &DuplicateIDError{Category: cat, ID: id}
	}
	old, hadOld := s.model.tags.GlobalID(s.handle)
	if err := s.model.tags.SetGlobalID(s.handle, id); err != nil {
		return err
	}
	if hadOld {
		s.model.releaseID(cat, old)
	}
	s.model.claimID(cat, id)
	return nil
}

// Name returns the set's name tag.
func (s *GeometrySet) Name() (string, bool) {
	return s.model.tags.Name(s.handle)
}

// SetName writes the set's name tag.
func (s *GeometrySet) SetName(name string) error {
	return s.model.tags.SetName(s.handle, name)
}

// Delete removes the entity set and every containment edge touching
// it. Children are kept; triangles owned by a deleted surface become
// unreachable. The set's global ID is released for reuse.
func (s *GeometrySet) Delete() error {
	cat := s.Category()
	if id, ok := s.GlobalID(); ok {
		s.model.releaseID(cat, id)
	}
	if err := s.model.db.DeleteEntitySet(s.handle); err != nil {
		return err
	}
	s.model.log.Debug().
		Uint64("set", uint64(s.handle)).
		Str("category", cat.String()).
		Msg("deleted geometry set")
	return nil
}
