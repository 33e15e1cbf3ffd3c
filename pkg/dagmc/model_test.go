package dagmc

import (
	"errors"
	"strings"
	"testing"

	"github.com/chazu/dagmesh/pkg/meshdb/memdb"
)

func TestCreateAssignsSequentialIDs(t *testing.T) {
	m := newTestModel(t)
	for want := 1; want <= 3; want++ {
		s, err := m.CreateSurface(0)
		if err != nil {
			t.Fatalf("CreateSurface: %v", err)
		}
		if id, _ := s.GlobalID(); id != want {
			t.Errorf("surface ID = %d, want %d", id, want)
		}
	}
	v, err := m.CreateVolume(0)
	if err != nil {
		t.Fatalf("CreateVolume: %v", err)
	}
	if id, _ := v.GlobalID(); id != 1 {
		t.Errorf("first volume ID = %d, want 1 (surface IDs do not count)", id)
	}
	if c := v.Category(); c != CategoryVolume {
		t.Errorf("Category() = %s, want Volume", c)
	}
	if d, _ := v.GeomDimension(); d != 3 {
		t.Errorf("GeomDimension() = %d, want 3", d)
	}
}

func TestCreateExplicitID(t *testing.T) {
	m := newTestModel(t)
	s, err := m.CreateSurface(10)
	if err != nil {
		t.Fatalf("CreateSurface(10): %v", err)
	}
	if id, _ := s.GlobalID(); id != 10 {
		t.Errorf("surface ID = %d, want 10", id)
	}
	next, err := m.CreateSurface(0)
	if err != nil {
		t.Fatalf("CreateSurface: %v", err)
	}
	if id, _ := next.GlobalID(); id != 11 {
		t.Errorf("auto ID after explicit 10 = %d, want 11", id)
	}
	var dup *DuplicateIDError
	if _, err := m.CreateSurface(10); !errors.As(err, &dup) {
		t.Fatalf("CreateSurface(10) again = %v, want DuplicateIDError", err)
	}
}

func TestNewModelPrimesUsedIDs(t *testing.T) {
	db := memdb.New()
	m1, err := NewModel(db)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if _, err := m1.CreateSurface(5); err != nil {
		t.Fatalf("CreateSurface(5): %v", err)
	}

	// A second model over the same database sees the claimed IDs.
	m2, err := NewModel(db)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if got := m2.NextID(CategorySurface); got != 6 {
		t.Errorf("NextID = %d, want 6", got)
	}
	var dup *DuplicateIDError
	if _, err := m2.CreateSurface(5); !errors.As(err, &dup) {
		t.Fatalf("CreateSurface(5) = %v, want DuplicateIDError", err)
	}
}

func TestNewModelRejectsMismatchedSets(t *testing.T) {
	db := memdb.New()
	if _, err := NewModel(db); err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	h := db.CreateEntitySet()
	if err := db.SetTagString(h, TagCategory, "Volume"); err != nil {
		t.Fatalf("SetTagString: %v", err)
	}
	if err := db.SetTagInt(h, TagGeomDimension, 2); err != nil {
		t.Fatalf("SetTagInt: %v", err)
	}

	var mismatch *CategoryDimensionMismatchError
	if _, err := NewModel(db); !errors.As(err, &mismatch) {
		t.Fatalf("NewModel over mismatched set = %v, want CategoryDimensionMismatchError", err)
	}
}

func TestNewModelInfersMissingDimension(t *testing.T) {
	db := memdb.New()
	if _, err := NewModel(db); err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	h := db.CreateEntitySet()
	if err := db.SetTagString(h, TagCategory, "Surface"); err != nil {
		t.Fatalf("SetTagString: %v", err)
	}
	if err := db.SetTagInt(h, TagGlobalID, 4); err != nil {
		t.Fatalf("SetTagInt: %v", err)
	}

	m, buf := newLoggedModelOver(t, db)
	if !strings.Contains(buf.String(), "inferred") {
		t.Errorf("log output %q missing inference warning", buf.String())
	}
	if got := m.NextID(CategorySurface); got != 5 {
		t.Errorf("NextID = %d, want 5", got)
	}
	s, err := m.SurfaceFromHandle(h)
	if err != nil {
		t.Fatalf("SurfaceFromHandle: %v", err)
	}
	if d, ok := s.GeomDimension(); !ok || d != 2 {
		t.Errorf("GeomDimension() = %d, %v, want 2, true", d, ok)
	}
}

func TestFromHandleChecksCategory(t *testing.T) {
	m := newTestModel(t)
	s, err := m.CreateSurface(0)
	if err != nil {
		t.Fatalf("CreateSurface: %v", err)
	}
	if _, err := m.VolumeFromHandle(s.Handle()); err == nil {
		t.Error("VolumeFromHandle on a surface should fail")
	}
	got, err := m.SurfaceFromHandle(s.Handle())
	if err != nil {
		t.Fatalf("SurfaceFromHandle: %v", err)
	}
	if got.Handle() != s.Handle() {
		t.Errorf("SurfaceFromHandle = %d, want %d", got.Handle(), s.Handle())
	}
}

func TestFromHandleUntaggedSet(t *testing.T) {
	m := newTestModel(t)
	h := m.db.CreateEntitySet()
	if _, err := m.SurfaceFromHandle(h); err == nil {
		t.Error("SurfaceFromHandle on an untagged set should fail")
	}
}

func TestFromHandleInfersMissingDimension(t *testing.T) {
	m, buf := newLoggedModel(t)
	h := m.db.CreateEntitySet()
	if err := m.tags.SetCategory(h, CategorySurface); err != nil {
		t.Fatalf("SetCategory: %v", err)
	}
	s, err := m.SurfaceFromHandle(h)
	if err != nil {
		t.Fatalf("SurfaceFromHandle: %v", err)
	}
	if d, ok := s.GeomDimension(); !ok || d != 2 {
		t.Errorf("GeomDimension() = %d, %v, want 2, true", d, ok)
	}
	if !strings.Contains(buf.String(), "inferred") {
		t.Errorf("expected an inference warning, log: %q", buf.String())
	}
}

func TestFromHandleMismatchedTags(t *testing.T) {
	m := newTestModel(t)
	h := m.db.CreateEntitySet()
	if err := m.tags.SetCategory(h, CategorySurface); err != nil {
		t.Fatalf("SetCategory: %v", err)
	}
	if err := m.tags.SetDimension(h, 3); err != nil {
		t.Fatalf("SetDimension: %v", err)
	}
	_, err := m.SurfaceFromHandle(h)
	var mismatch *CategoryDimensionMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("SurfaceFromHandle = %v, want CategoryDimensionMismatchError", err)
	}
}

func TestModelIndices(t *testing.T) {
	m := newTestModel(t)
	s1, _ := m.CreateSurface(0)
	v1, _ := m.CreateVolume(0)
	s2, _ := m.CreateSurface(0)

	surfs, err := m.Surfaces()
	if err != nil {
		t.Fatalf("Surfaces: %v", err)
	}
	if len(surfs) != 2 || surfs[0].Handle() != s1.Handle() || surfs[1].Handle() != s2.Handle() {
		t.Errorf("Surfaces() out of order: got %d entries", len(surfs))
	}
	vols, err := m.Volumes()
	if err != nil {
		t.Fatalf("Volumes: %v", err)
	}
	if len(vols) != 1 || vols[0].Handle() != v1.Handle() {
		t.Errorf("Volumes() = %d entries, want [volume %d]", len(vols), v1.Handle())
	}

	byID, err := m.SurfacesByID()
	if err != nil {
		t.Fatalf("SurfacesByID: %v", err)
	}
	if got := byID[2]; got == nil || got.Handle() != s2.Handle() {
		t.Errorf("SurfacesByID[2] = %v, want surface %d", got, s2.Handle())
	}
}

func TestGroupsByNameMerges(t *testing.T) {
	m := newTestModel(t)
	a, _ := m.CreateGroup("fuel", 0)
	b, _ := m.CreateGroup("FUEL", 0)
	c, _ := m.CreateGroup("cladding", 0)
	v1, _ := m.CreateVolume(0)
	v2, _ := m.CreateVolume(0)
	if err := a.Add(v1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := b.Add(v2); err != nil {
		t.Fatalf("Add: %v", err)
	}

	byName, err := m.GroupsByName()
	if err != nil {
		t.Fatalf("GroupsByName: %v", err)
	}
	if len(byName) != 2 {
		t.Fatalf("GroupsByName = %d entries, want 2", len(byName))
	}
	fuel, ok := byName["fuel"]
	if !ok {
		t.Fatal("survivor should be keyed by the first-created group's name")
	}
	if fuel.Handle() != a.Handle() {
		t.Errorf("survivor = group %d, want first-created %d", fuel.Handle(), a.Handle())
	}
	vols, err := fuel.Volumes()
	if err != nil {
		t.Fatalf("Volumes: %v", err)
	}
	if len(vols) != 2 {
		t.Errorf("merged group holds %d volumes, want 2", len(vols))
	}
	if _, ok := byName["cladding"]; !ok {
		t.Error("unrelated group missing from GroupsByName")
	}
	groups, err := m.Groups()
	if err != nil {
		t.Fatalf("Groups: %v", err)
	}
	if len(groups) != 2 {
		t.Errorf("model holds %d groups after GroupsByName, want 2", len(groups))
	}
	_ = c
}

func TestFindOrCreateGroup(t *testing.T) {
	m := newTestModel(t)
	g1, err := m.FindOrCreateGroup("mat:steel")
	if err != nil {
		t.Fatalf("FindOrCreateGroup: %v", err)
	}
	g2, err := m.FindOrCreateGroup(" MAT:Steel ")
	if err != nil {
		t.Fatalf("FindOrCreateGroup: %v", err)
	}
	if g1.Handle() != g2.Handle() {
		t.Errorf("FindOrCreateGroup created a second group (%d vs %d)", g1.Handle(), g2.Handle())
	}
}

func TestAddGroups(t *testing.T) {
	m := newTestModel(t)
	m.CreateVolume(0)
	m.CreateVolume(0)
	m.CreateSurface(0)
	err := m.AddGroups([]GroupSpec{
		{Name: "mat:fuel", Volumes: []int{1, 2}},
		{Name: "boundary:vacuum", Surfaces: []int{1}},
	})
	if err != nil {
		t.Fatalf("AddGroups: %v", err)
	}

	byMat, err := m.VolumesByMaterial()
	if err != nil {
		t.Fatalf("VolumesByMaterial: %v", err)
	}
	if len(byMat["fuel"]) != 2 {
		t.Errorf("fuel volumes = %d, want 2", len(byMat["fuel"]))
	}
	surfs, err := m.Surfaces()
	if err != nil {
		t.Fatalf("Surfaces: %v", err)
	}
	if bc, ok := surfs[0].Boundary(); !ok || bc != "vacuum" {
		t.Errorf("Boundary() = %q, %v, want %q, true", bc, ok, "vacuum")
	}
}

func TestAddGroupsUnknownID(t *testing.T) {
	m := newTestModel(t)
	m.CreateVolume(0)
	err := m.AddGroups([]GroupSpec{{Name: "mat:fuel", Volumes: []int{99}}})
	if err == nil {
		t.Fatal("AddGroups should fail for an unknown volume ID")
	}
	if !strings.Contains(err.Error(), "99") {
		t.Errorf("error %q should name the missing ID", err)
	}
}

func TestFindVolumesByMaterial(t *testing.T) {
	m := newTestModel(t)
	v1, _ := m.CreateVolume(0)
	v2, _ := m.CreateVolume(0)
	if err := v1.SetMaterial("steel"); err != nil {
		t.Fatalf("SetMaterial: %v", err)
	}
	if err := v2.SetMaterial("water"); err != nil {
		t.Fatalf("SetMaterial: %v", err)
	}

	vols, err := m.FindVolumesByMaterial("steel")
	if err != nil {
		t.Fatalf("FindVolumesByMaterial: %v", err)
	}
	if len(vols) != 1 || vols[0].Handle() != v1.Handle() {
		t.Errorf("FindVolumesByMaterial = %d entries, want [volume %d]", len(vols), v1.Handle())
	}

	// A near-miss suggests the assigned names.
	_, err = m.FindVolumesByMaterial("stell")
	if err == nil {
		t.Fatal("unknown material should fail")
	}
	if !strings.Contains(err.Error(), "steel") {
		t.Errorf("error %q should suggest %q", err, "steel")
	}

	// A far miss fails without suggestions.
	_, err = m.FindVolumesByMaterial("zzzz")
	if err == nil {
		t.Fatal("unknown material should fail")
	}
	if strings.Contains(err.Error(), "close matches") {
		t.Errorf("error %q should carry no suggestions", err)
	}
}

func TestVolumesWithoutMaterial(t *testing.T) {
	m := newTestModel(t)
	v1, _ := m.CreateVolume(0)
	v2, _ := m.CreateVolume(0)
	if err := v1.SetMaterial("steel"); err != nil {
		t.Fatalf("SetMaterial: %v", err)
	}
	bare, err := m.VolumesWithoutMaterial()
	if err != nil {
		t.Fatalf("VolumesWithoutMaterial: %v", err)
	}
	if len(bare) != 1 || bare[0].Handle() != v2.Handle() {
		t.Errorf("VolumesWithoutMaterial = %d entries, want [volume %d]", len(bare), v2.Handle())
	}
}

func TestWriteFileUnsupported(t *testing.T) {
	m := newTestModel(t)
	if err := m.WriteFile(t.TempDir() + "/model.db"); err == nil {
		t.Error("WriteFile over a memory database should fail")
	}
}
