package dagmc

import (
	"fmt"

	"github.com/chazu/dagmesh/pkg/meshdb"
)

// Canonical tag names shared with other DAGMC tooling.
const (
	TagCategory      = "CATEGORY"
	TagGlobalID      = "GLOBAL_ID"
	TagName          = "NAME"
	TagGeomDimension = "GEOM_DIMENSION"
	TagGeomSense     = "GEOM_SENSE_2"
)

const (
	categoryTagSize = 32
	nameTagSize     = 256
)

// tagRegistry resolves the five canonical tag definitions against the
// underlying database once per model and provides typed access per
// handle. It carries no consistency logic.
type tagRegistry struct {
	db meshdb.Database

	category  meshdb.TagDef
	globalID  meshdb.TagDef
	name      meshdb.TagDef
	dimension meshdb.TagDef
	sense     meshdb.TagDef
}

func newTagRegistry(db meshdb.Database) (*tagRegistry, error) {
	r := &tagRegistry{db: db}
	for _, bind := range []struct {
		def  meshdb.TagDef
		into *meshdb.TagDef
	}{
		{meshdb.TagDef{Name: TagCategory, Type: meshdb.TypeString, Size: categoryTagSize}, &r.category},
		{meshdb.TagDef{Name: TagGlobalID, Type: meshdb.TypeInt}, &r.globalID},
		{meshdb.TagDef{Name: TagName, Type: meshdb.TypeString, Size: nameTagSize}, &r.name},
		{meshdb.TagDef{Name: TagGeomDimension, Type: meshdb.TypeInt}, &r.dimension},
		{meshdb.TagDef{Name: TagGeomSense, Type: meshdb.TypeHandlePair, Size: 2}, &r.sense},
	} {
		def, err := db.EnsureTag(bind.def)
		if err != nil {
			return nil, fmt.Errorf("resolve tag %s: %w", bind.def.Name, err)
		}
		*bind.into = def
	}
	return r, nil
}

func (r *tagRegistry) Category(h meshdb.Handle) (Category, bool) {
	s, ok := r.db.TagString(h, r.category.Name)
	if !ok {
		return CategoryUnknown, false
	}
	c, ok := ParseCategory(s)
	return c, ok
}

func (r *tagRegistry) SetCategory(h meshdb.Handle, c Category) error {
	return r.db.SetTagString(h, r.category.Name, c.String())
}

func (r *tagRegistry) GlobalID(h meshdb.Handle) (int, bool) {
	return r.db.TagInt(h, r.globalID.Name)
}

func (r *tagRegistry) SetGlobalID(h meshdb.Handle, id int) error {
	return r.db.SetTagInt(h, r.globalID.Name, id)
}

func (r *tagRegistry) Name(h meshdb.Handle) (string, bool) {
	return r.db.TagString(h, r.name.Name)
}

func (r *tagRegistry) SetName(h meshdb.Handle, name string) error {
	return r.db.SetTagString(h, r.name.Name, name)
}

func (r *tagRegistry) Dimension(h meshdb.Handle) (int, bool) {
	return r.db.TagInt(h, r.dimension.Name)
}

func (r *tagRegistry) SetDimension(h meshdb.Handle, d int) error {
	return r.db.SetTagInt(h, r.dimension.Name, d)
}

func (r *tagRegistry) Senses(h meshdb.Handle) ([2]meshdb.Handle, bool) {
	return r.db.TagHandles(h, r.sense.Name)
}

func (r *tagRegistry) SetSenses(h meshdb.Handle, pair [2]meshdb.Handle) error {
	return r.db.SetTagHandles(h, r.sense.Name, pair)
}
