package dagmc

import (
	"fmt"
	"sort"
	"strings"
)

// Group is a named collection of volumes and surfaces, used to attach
// shared metadata such as material assignments and boundary
// conditions.
type Group struct {
	GeometrySet
}

var _ Set = (*Group)(nil)

// sameGroupName compares group names the way merging does: trimmed
// and case-insensitive.
func sameGroupName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Contains reports whether the entity is a direct member of the
// group.
func (g *Group) Contains(e Set) bool {
	for _, c := range g.model.db.Children(g.handle) {
		if c == e.Handle() {
			return true
		}
	}
	return false
}

// Add makes the entity a member of the group. Adding an existing
// member again is a no-op.
func (g *Group) Add(e Set) error {
	if e.base().model != g.model {
		return fmt.Errorf("set %d belongs to a different model", e.Handle())
	}
	return g.model.db.AddChild(g.handle, e.Handle())
}

// Remove takes the entity out of the group. Removing a non-member
// fails with NotAMemberError and leaves the group unchanged.
func (g *Group) Remove(e Set) error {
	if !g.Contains(e) {
		return &NotAMemberError{Group: g.handle, Entity: e.Handle()}
	}
	return g.model.db.RemoveChild(g.handle, e.Handle())
}

// Volumes returns the group's volume members in insertion order.
func (g *Group) Volumes() ([]*Volume, error) {
	var out []*Volume
	for _, c := range g.model.db.Children(g.handle) {
		if cat, _ := g.model.tags.Category(c); cat != CategoryVolume {
			continue
		}
		v, err := g.model.VolumeFromHandle(c)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Surfaces returns the group's surface members in insertion order.
func (g *Group) Surfaces() ([]*Surface, error) {
	var out []*Surface
	for _, c := range g.model.db.Children(g.handle) {
		if cat, _ := g.model.tags.Category(c); cat != CategorySurface {
			continue
		}
		s, err := g.model.SurfaceFromHandle(c)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// VolumesByID returns the group's volume members keyed by global ID.
func (g *Group) VolumesByID() (map[int]*Volume, error) {
	vols, err := g.Volumes()
	if err != nil {
		return nil, err
	}
	out := make(map[int]*Volume, len(vols))
	for _, v := range vols {
		id, _ := v.GlobalID()
		out[id] = v
	}
	return out, nil
}

// SurfacesByID returns the group's surface members keyed by global
// ID.
func (g *Group) SurfacesByID() (map[int]*Surface, error) {
	surfs, err := g.Surfaces()
	if err != nil {
		return nil, err
	}
	out := make(map[int]*Surface, len(surfs))
	for _, s := range surfs {
		id, _ := s.GlobalID()
		out[id] = s
	}
	return out, nil
}

// VolumeIDs returns the global IDs of the group's volume members in
// ascending order.
func (g *Group) VolumeIDs() ([]int, error) {
	vols, err := g.Volumes()
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(vols))
	for _, v := range vols {
		id, _ := v.GlobalID()
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// SurfaceIDs returns the global IDs of the group's surface members in
// ascending order.
func (g *Group) SurfaceIDs() ([]int, error) {
	surfs, err := g.Surfaces()
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(surfs))
	for _, s := range surfs {
		id, _ := s.GlobalID()
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// SetName renames the group. A name already held by another group in
// the model is rejected with DuplicateNameError; comparison is
// trimmed and case-insensitive, like merging.
func (g *Group) SetName(name string) error {
	groups, err := g.model.Groups()
	if err != nil {
		return err
	}
	for _, other := range groups {
		if other.handle == g.handle {
			continue
		}
		if n, ok := other.Name(); ok && sameGroupName(n, name) {
			return &DuplicateNameError{Name: name}
		}
	}
	return g.GeometrySet.SetName(name)
}

// Merge moves every member of other into g, then deletes other.
// Merging a group into itself is a no-op. The two names must match
// under the trimmed case-insensitive comparison; otherwise the merge
// fails with NameMismatchError.
func (g *Group) Merge(other *Group) error {
	if other.handle == g.handle {
		return nil
	}
	gName, _ := g.Name()
	oName, _ := other.Name()
	if !sameGroupName(gName, oName) {
		return &NameMismatchError{Into: gName, From: oName}
	}
	for _, c := range g.model.db.Children(other.handle) {
		if err := g.model.db.AddChild(g.handle, c); err != nil {
			return err
		}
	}
	return other.Delete()
}
