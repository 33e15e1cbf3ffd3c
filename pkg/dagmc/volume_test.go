package dagmc

import (
	"math"
	"testing"

	"github.com/chazu/dagmesh/pkg/meshdb"
)

func TestVolumeOfUnitCube(t *testing.T) {
	tests := []struct {
		name string
		tris []meshdb.Triangle
	}{
		{"same diagonal on every face", unitCube()},
		{"alternate diagonal on bottom face", unitCubeAltBottom()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t)
			v, _ := solidCube(t, m, tt.tris)
			got, err := v.Volume()
			if err != nil {
				t.Fatalf("Volume: %v", err)
			}
			if math.Abs(got-1) > 1e-12 {
				t.Errorf("unit cube volume = %g, want 1", got)
			}
		})
	}
}

func TestVolumeReverseSenseNegates(t *testing.T) {
	m := newTestModel(t)
	v, err := m.CreateVolume(0)
	if err != nil {
		t.Fatalf("CreateVolume: %v", err)
	}
	s, err := m.CreateSurface(0)
	if err != nil {
		t.Fatalf("CreateSurface: %v", err)
	}
	if err := s.AddTriangles(unitCube()); err != nil {
		t.Fatalf("AddTriangles: %v", err)
	}
	if err := s.SetSenses(SensePair{Reverse: v}); err != nil {
		t.Fatalf("SetSenses: %v", err)
	}
	got, err := v.Volume()
	if err != nil {
		t.Fatalf("Volume: %v", err)
	}
	if math.Abs(got+1) > 1e-12 {
		t.Errorf("reverse-sensed unit cube volume = %g, want -1", got)
	}
}

func TestVolumeAcrossSeveralSurfaces(t *testing.T) {
	m := newTestModel(t)
	v, err := m.CreateVolume(0)
	if err != nil {
		t.Fatalf("CreateVolume: %v", err)
	}
	tris := unitCube()
	for _, part := range [][]meshdb.Triangle{tris[:4], tris[4:]} {
		s, err := m.CreateSurface(0)
		if err != nil {
			t.Fatalf("CreateSurface: %v", err)
		}
		if err := s.AddTriangles(part); err != nil {
			t.Fatalf("AddTriangles: %v", err)
		}
		if err := s.SetSenses(SensePair{Forward: v}); err != nil {
			t.Fatalf("SetSenses: %v", err)
		}
	}
	got, err := v.Volume()
	if err != nil {
		t.Fatalf("Volume: %v", err)
	}
	if math.Abs(got-1) > 1e-12 {
		t.Errorf("two-surface unit cube volume = %g, want 1", got)
	}
	if n := v.NumTriangles(); n != 12 {
		t.Errorf("NumTriangles = %d, want 12", n)
	}
}

func TestVolumeMaterial(t *testing.T) {
	m := newTestModel(t)
	v, _ := solidCube(t, m, unitCube())
	if _, ok := v.Material(); ok {
		t.Error("fresh volume should carry no material")
	}
	if err := v.SetMaterial("steel"); err != nil {
		t.Fatalf("SetMaterial: %v", err)
	}
	if mat, ok := v.Material(); !ok || mat != "steel" {
		t.Errorf("Material() = %q, %v, want %q, true", mat, ok, "steel")
	}

	// Reassignment moves the volume out of the old "mat:" group but
	// keeps the group itself.
	if err := v.SetMaterial("iron"); err != nil {
		t.Fatalf("SetMaterial: %v", err)
	}
	if mat, _ := v.Material(); mat != "iron" {
		t.Errorf("Material() = %q after switch, want %q", mat, "iron")
	}
	groups, err := m.GroupsByName()
	if err != nil {
		t.Fatalf("GroupsByName: %v", err)
	}
	old, ok := groups["mat:steel"]
	if !ok {
		t.Fatal("emptied material group should still exist")
	}
	vols, err := old.Volumes()
	if err != nil {
		t.Fatalf("Volumes: %v", err)
	}
	if len(vols) != 0 {
		t.Errorf("old material group still holds %d volumes", len(vols))
	}

	if err := v.SetMaterial(""); err != nil {
		t.Fatalf("SetMaterial: %v", err)
	}
	if _, ok := v.Material(); ok {
		t.Error("cleared volume should carry no material")
	}
}

func TestVolumeMaterialLowestGroupIDWins(t *testing.T) {
	m := newTestModel(t)
	v, err := m.CreateVolume(0)
	if err != nil {
		t.Fatalf("CreateVolume: %v", err)
	}
	g1, err := m.CreateGroup("mat:water", 0)
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	g2, err := m.CreateGroup("mat:heavy water", 0)
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	// Competing assignments, wired directly rather than through
	// SetMaterial.
	if err := g2.Add(v); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := g1.Add(v); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if mat, ok := v.Material(); !ok || mat != "water" {
		t.Errorf("Material() = %q, %v; want the lowest-ID group's %q", mat, ok, "water")
	}
}

func TestVolumeGroups(t *testing.T) {
	m := newTestModel(t)
	v, err := m.CreateVolume(0)
	if err != nil {
		t.Fatalf("CreateVolume: %v", err)
	}
	g, err := m.CreateGroup("fuel", 0)
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if err := g.Add(v); err != nil {
		t.Fatalf("Add: %v", err)
	}
	groups, err := v.Groups()
	if err != nil {
		t.Fatalf("Groups: %v", err)
	}
	if len(groups) != 1 || groups[0].Handle() != g.Handle() {
		t.Errorf("Groups() = %d entries, want [group %d]", len(groups), g.Handle())
	}
}

func TestVolumeSurfacesByID(t *testing.T) {
	m := newTestModel(t)
	v, s := solidCube(t, m, unitCube())
	byID, err := v.SurfacesByID()
	if err != nil {
		t.Fatalf("SurfacesByID: %v", err)
	}
	sid, _ := s.GlobalID()
	got, ok := byID[sid]
	if !ok || got.Handle() != s.Handle() {
		t.Errorf("SurfacesByID[%d] = %v, want surface %d", sid, got, s.Handle())
	}
}
