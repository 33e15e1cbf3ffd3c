package dagmc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/chazu/dagmesh/pkg/meshdb"
)

// Group name prefixes carrying metadata assignments.
const (
	matPrefix      = "mat:"
	boundaryPrefix = "boundary:"
)

// Model wraps a mesh database with the DAGMC geometry conventions:
// the canonical tags, per-category global IDs, and typed wrappers
// over entity sets. A Model is not safe for concurrent use.
type Model struct {
	db   meshdb.Database
	tags *tagRegistry
	log  zerolog.Logger

	usedIDs map[Category]map[int]struct{}
}

// Option configures a Model.
type Option func(*Model)

// WithLogger routes the model's diagnostics to log. The default
// logger discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Model) { m.log = log }
}

// NewModel wraps db. The canonical tags are created if absent. Every
// set already categorized as a surface, volume, or group is checked
// for category/dimension consistency (a missing dimension is inferred
// and logged) and its global ID claimed, so fresh allocations never
// collide with what the database already holds.
func NewModel(db meshdb.Database, opts ...Option) (*Model, error) {
	tags, err := newTagRegistry(db)
	if err != nil {
		return nil, err
	}
	m := &Model{
		db:      db,
		tags:    tags,
		log:     zerolog.Nop(),
		usedIDs: make(map[Category]map[int]struct{}),
	}
	for _, o := range opts {
		o(m)
	}
	for _, cat := range []Category{CategorySurface, CategoryVolume, CategoryGroup} {
		for _, h := range db.SetsWithTagValue(TagCategory, cat.String()) {
			if _, err := m.checkCategoryAndDimension(h); err != nil {
				return nil, err
			}
			if id, ok := tags.GlobalID(h); ok {
				m.claimID(cat, id)
			}
		}
	}
	return m, nil
}

// Database returns the underlying mesh database.
func (m *Model) Database() meshdb.Database { return m.db }

func (m *Model) claimID(c Category, id int) {
	ids := m.usedIDs[c]
	if ids == nil {
		ids = make(map[int]struct{})
		m.usedIDs[c] = ids
	}
	ids[id] = struct{}{}
}

func (m *Model) releaseID(c Category, id int) {
	delete(m.usedIDs[c], id)
}

func (m *Model) idInUse(c Category, id int) bool {
	_, ok := m.usedIDs[c][id]
	return ok
}

// NextID returns one more than the highest global ID in use for the
// category, or 1 when none are.
func (m *Model) NextID(c Category) int {
	max := 0
	for id := range m.usedIDs[c] {
		if id > max {
			max = id
		}
	}
	return max + 1
}

// UsedIDs returns the global IDs in use for the category, ascending.
func (m *Model) UsedIDs(c Category) []int {
	ids := make([]int, 0, len(m.usedIDs[c]))
	for id := range m.usedIDs[c] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// checkCategoryAndDimension validates the category and geometric
// dimension tags of h, writing whichever of the two is missing by
// inference from the other. A set carrying neither is an error, as
// is an inconsistent pair.
func (m *Model) checkCategoryAndDimension(h meshdb.Handle) (Category, error) {
	cat, hasCat := m.tags.Category(h)
	dim, hasDim := m.tags.Dimension(h)
	switch {
	case !hasCat && !hasDim:
		return CategoryUnknown, fmt.Errorf("set %d carries neither a category nor a geometric dimension", h)
	case hasCat && !hasDim:
		if err := m.tags.SetDimension(h, cat.Dimension()); err != nil {
			return CategoryUnknown, err
		}
		m.log.Warn().
			Uint64("set", uint64(h)).
			Str("category", cat.String()).
			Int("dimension", cat.Dimension()).
			Msg("inferred geometric dimension from category")
		return cat, nil
	case !hasCat && hasDim:
		want, ok := CategoryForDimension(dim)
		if !ok {
			return CategoryUnknown, fmt.Errorf("set %d: invalid geometric dimension %d", h, dim)
		}
		if err := m.tags.SetCategory(h, want); err != nil {
			return CategoryUnknown, err
		}
		m.log.Warn().
			Uint64("set", uint64(h)).
			Str("category", want.String()).
			Int("dimension", dim).
			Msg("inferred category from geometric dimension")
		return want, nil
	}
	if dim != cat.Dimension() {
		return CategoryUnknown, &CategoryDimensionMismatchError{Handle: h, Category: cat, Dimension: dim}
	}
	return cat, nil
}

func (m *Model) createSet(c Category, globalID int) (*GeometrySet, error) {
	if globalID < 0 {
		return nil, fmt.Errorf("global IDs are positive, got %d", globalID)
	}
	if globalID == 0 {
		globalID = m.NextID(c)
	} else if m.idInUse(c, globalID) {
		return nil, &DuplicateIDError{Category: c, ID: globalID}
	}
	h := m.db.CreateEntitySet()
	if err := m.tags.SetCategory(h, c); err != nil {
		return nil, err
	}
	if err := m.tags.SetDimension(h, c.Dimension()); err != nil {
		return nil, err
	}
	if err := m.tags.SetGlobalID(h, globalID); err != nil {
		return nil, err
	}
	m.claimID(c, globalID)
	m.log.Debug().
		Uint64("set", uint64(h)).
		Str("category", c.String()).
		Int("id", globalID).
		Msg("created geometry set")
	return &GeometrySet{model: m, handle: h}, nil
}

// CreateSurface creates a surface. A globalID of 0 assigns the next
// free surface ID.
func (m *Model) CreateSurface(globalID int) (*Surface, error) {
	base, err := m.createSet(CategorySurface, globalID)
	if err != nil {
		return nil, err
	}
	return &Surface{GeometrySet: *base}, nil
}

// CreateVolume creates a volume. A globalID of 0 assigns the next
// free volume ID.
func (m *Model) CreateVolume(globalID int) (*Volume, error) {
	base, err := m.createSet(CategoryVolume, globalID)
	if err != nil {
		return nil, err
	}
	return &Volume{GeometrySet: *base}, nil
}

// CreateGroup creates a group. name may be empty; a globalID of 0
// assigns the next free group ID. Several groups may share a name
// until GroupsByName merges them.
func (m *Model) CreateGroup(name string, globalID int) (*Group, error) {
	base, err := m.createSet(CategoryGroup, globalID)
	if err != nil {
		return nil, err
	}
	g := &Group{GeometrySet: *base}
	if name != "" {
		if err := m.tags.SetName(g.handle, name); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// SurfaceFromHandle wraps an existing entity set as a Surface after
// validating its category and dimension tags.
func (m *Model) SurfaceFromHandle(h meshdb.Handle) (*Surface, error) {
	cat, err := m.checkCategoryAndDimension(h)
	if err != nil {
		return nil, err
	}
	if cat != CategorySurface {
		return nil, fmt.Errorf("set %d is a %s, not a %s", h, cat, CategorySurface)
	}
	return &Surface{GeometrySet: GeometrySet{model: m, handle: h}}, nil
}

// VolumeFromHandle wraps an existing entity set as a Volume after
// validating its category and dimension tags.
func (m *Model) VolumeFromHandle(h meshdb.Handle) (*Volume, error) {
	cat, err := m.checkCategoryAndDimension(h)
	if err != nil {
		return nil, err
	}
	if cat != CategoryVolume {
		return nil, fmt.Errorf("set %d is a %s, not a %s", h, cat, CategoryVolume)
	}
	return &Volume{GeometrySet: GeometrySet{model: m, handle: h}}, nil
}

// GroupFromHandle wraps an existing entity set as a Group after
// validating its category and dimension tags.
func (m *Model) GroupFromHandle(h meshdb.Handle) (*Group, error) {
	cat, err := m.checkCategoryAndDimension(h)
	if err != nil {
		return nil, err
	}
	if cat != CategoryGroup {
		return nil, fmt.Errorf("set %d is a %s, not a %s", h, cat, CategoryGroup)
	}
	return &Group{GeometrySet: GeometrySet{model: m, handle: h}}, nil
}

// Surfaces returns every surface in the model, in creation order.
func (m *Model) Surfaces() ([]*Surface, error) {
	var out []*Surface
	for _, h := range m.db.EntitySets() {
		if cat, _ := m.tags.Category(h); cat != CategorySurface {
			continue
		}
		s, err := m.SurfaceFromHandle(h)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Volumes returns every volume in the model, in creation order.
func (m *Model) Volumes() ([]*Volume, error) {
	var out []*Volume
	for _, h := range m.db.EntitySets() {
		if cat, _ := m.tags.Category(h); cat != CategoryVolume {
			continue
		}
		v, err := m.VolumeFromHandle(h)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Groups returns every group in the model, in creation order.
func (m *Model) Groups() ([]*Group, error) {
	var out []*Group
	for _, h := range m.db.EntitySets() {
		if cat, _ := m.tags.Category(h); cat != CategoryGroup {
			continue
		}
		g, err := m.GroupFromHandle(h)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// SurfacesByID returns a snapshot of the model's surfaces keyed by
// global ID. It is not updated by later changes.
func (m *Model) SurfacesByID() (map[int]*Surface, error) {
	surfs, err := m.Surfaces()
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

// VolumesByID returns a snapshot of the model's volumes keyed by
// global ID. It is not updated by later changes.
func (m *Model) VolumesByID() (map[int]*Volume, error) {
	vols, err := m.Volumes()
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

// GroupsByName returns the model's named groups keyed by their stored
// names. Groups sharing a name under the trimmed case-insensitive
// comparison are merged into the first-created one as a side effect,
// so the map holds one survivor per distinct name. Unnamed groups are
// skipped.
func (m *Model) GroupsByName() (map[string]*Group, error) {
	groups, err := m.Groups()
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Group)
	for _, g := range groups {
		name, ok := g.Name()
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		merged := false
		for stored, survivor := range out {
			if sameGroupName(stored, name) {
				if err := survivor.Merge(g); err != nil {
					return nil, err
				}
				merged = true
				break
			}
		}
		if !merged {
			out[name] = g
		}
	}
	return out, nil
}

// FindOrCreateGroup returns the first group whose name matches under
// the trimmed case-insensitive comparison, creating one when none
// exists.
func (m *Model) FindOrCreateGroup(name string) (*Group, error) {
	groups, err := m.Groups()
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		if n, ok := g.Name(); ok && sameGroupName(n, name) {
			return g, nil
		}
	}
	return m.CreateGroup(name, 0)
}

// metadataValue returns the value carried by the prefix-named groups
// containing h. With several such groups the one with the lowest
// global ID wins, so the answer does not depend on traversal order.
func (m *Model) metadataValue(h meshdb.Handle, prefix string) (string, bool) {
	bestID := 0
	found := false
	value := ""
	for _, p := range m.db.Parents(h) {
		if cat, _ := m.tags.Category(p); cat != CategoryGroup {
			continue
		}
		name, ok := m.tags.Name(p)
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		id, _ := m.tags.GlobalID(p)
		if !found || id < bestID {
			found = true
			bestID = id
			value = strings.TrimPrefix(name, prefix)
		}
	}
	return value, found
}

// setMetadataValue moves h into the group named prefix+value after
// removing it from every other prefix-named group. An empty value
// only removes. Removal and add are separate writes; a failure in
// between leaves h in no prefix group.
func (m *Model) setMetadataValue(h meshdb.Handle, prefix, value string) error {
	for _, p := range m.db.Parents(h) {
		if cat, _ := m.tags.Category(p); cat != CategoryGroup {
			continue
		}
		name, ok := m.tags.Name(p)
		if !ok || !strings.HasPrefix(strings.TrimSpace(name), prefix) {
			continue
		}
		if err := m.db.RemoveChild(p, h); err != nil {
			return err
		}
	}
	if value == "" {
		return nil
	}
	g, err := m.FindOrCreateGroup(prefix + value)
	if err != nil {
		return err
	}
	return m.db.AddChild(g.handle, h)
}

// VolumesByMaterial returns the model's volumes grouped by assigned
// material. Volumes without one are absent.
func (m *Model) VolumesByMaterial() (map[string][]*Volume, error) {
	vols, err := m.Volumes()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]*Volume)
	for _, v := range vols {
		mat, ok := v.Material()
		if !ok {
			continue
		}
		out[mat] = append(out[mat], v)
	}
	return out, nil
}

// FindVolumesByMaterial returns the volumes assigned exactly the
// named material. When none match, the error names the closest
// assigned materials.
func (m *Model) FindVolumesByMaterial(name string) ([]*Volume, error) {
	byMat, err := m.VolumesByMaterial()
	if err != nil {
		return nil, err
	}
	if vols, ok := byMat[name]; ok {
		return vols, nil
	}
	known := make([]string, 0, len(byMat))
	for mat := range byMat {
		known = append(known, mat)
	}
	sort.Strings(known)
	if close := closeMatches(name, known, 3); len(close) > 0 {
		return nil, fmt.Errorf("no volumes with material %q; close matches: %s", name, strings.Join(close, ", "))
	}
	return nil, fmt.Errorf("no volumes with material %q", name)
}

// VolumesWithoutMaterial returns the volumes carrying no material
// assignment, in creation order.
func (m *Model) VolumesWithoutMaterial() ([]*Volume, error) {
	vols, err := m.Volumes()
	if err != nil {
		return nil, err
	}
	var out []*Volume
	for _, v := range vols {
		if _, ok := v.Material(); !ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// GroupSpec names a group and the global IDs of the volumes and
// surfaces it should contain.
type GroupSpec struct {
	Name     string
	Volumes  []int
	Surfaces []int
}

// AddGroups creates or extends groups from specs. An ID that resolves
// to no entity fails the call; groups created before the failure are
// kept.
func (m *Model) AddGroups(specs []GroupSpec) error {
	volsByID, err := m.VolumesByID()
	if err != nil {
		return err
	}
	surfsByID, err := m.SurfacesByID()
	if err != nil {
		return err
	}
	for _, gs := range specs {
		g, err := m.FindOrCreateGroup(gs.Name)
		if err != nil {
			return err
		}
		for _, id := range gs.Volumes {
			v, ok := volsByID[id]
			if !ok {
				return fmt.Errorf("group %q: no volume with ID %d", gs.Name, id)
			}
			if err := g.Add(v); err != nil {
				return err
			}
		}
		for _, id := range gs.Surfaces {
			s, ok := surfsByID[id]
			if !ok {
				return fmt.Errorf("group %q: no surface with ID %d", gs.Name, id)
			}
			if err := g.Add(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteFile persists the model when the underlying database supports
// it (see meshdb.FileSaver).
func (m *Model) WriteFile(path string) error {
	saver, ok := m.db.(meshdb.FileSaver)
	if !ok {
		return fmt.Errorf("mesh database %T cannot save to files", m.db)
	}
	return saver.SaveFile(path)
}
