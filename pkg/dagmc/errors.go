package dagmc

import (
	"fmt"

	"github.com/chazu/dagmesh/pkg/meshdb"
)

// CategoryDimensionMismatchError reports category and geometric
// dimension tags that contradict each other. The offending write is
// rejected; prior state is unchanged.
type CategoryDimensionMismatchError struct {
	Handle    meshdb.Handle
	Category  Category
	Dimension int
}

func (e *CategoryDimensionMismatchError) Error() string {
	return fmt.Sprintf("set %d: category %s is inconsistent with geometric dimension %d",
		e.Handle, e.Category, e.Dimension)
}

// DuplicateIDError reports a global ID already in use for the same
// category in the same model.
type DuplicateIDError struct {
	Category Category
	ID       int
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("%s ID %d is already in use in this model", e.Category, e.ID)
}

// NotAMemberError reports removal of an entity from a group that does
// not contain it.
type NotAMemberError struct {
	Group  meshdb.Handle
	Entity meshdb.Handle
}

func (e *NotAMemberError) Error() string {
	return fmt.Sprintf("set %d is not a member of group %d", e.Entity, e.Group)
}

// NameMismatchError reports a merge attempted between groups whose
// names differ.
type NameMismatchError struct {
	Into string
	From string
}

func (e *NameMismatchError) Error() string {
	return fmt.Sprintf("cannot merge group named %q into group named %q", e.From, e.Into)
}

// DuplicateNameError reports renaming a group to a name already held
// by another group.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("group name %q is already in use in this model", e.Name)
}
