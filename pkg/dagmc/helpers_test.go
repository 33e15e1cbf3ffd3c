package dagmc

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/dagmesh/pkg/meshdb"
	"github.com/chazu/dagmesh/pkg/meshdb/memdb"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	m, err := NewModel(memdb.New())
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

// newLoggedModel returns a model whose diagnostics land in the
// returned buffer, one JSON event per line.
func newLoggedModel(t *testing.T) (*Model, *bytes.Buffer) {
	t.Helper()
	return newLoggedModelOver(t, memdb.New())
}

func newLoggedModelOver(t *testing.T, db meshdb.Database) (*Model, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	m, err := NewModel(db, WithLogger(zerolog.New(&buf)))
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m, &buf
}

// cubeCorners returns the eight corners of the unit cube keyed by
// their (x, y, z) bit pattern.
func cubeCorners() [8]v3.Vec {
	var p [8]v3.Vec
	for i := 0; i < 8; i++ {
		p[i] = v3.Vec{
			X: float64(i & 1),
			Y: float64(i >> 1 & 1),
			Z: float64(i >> 2 & 1),
		}
	}
	return p
}

// unitCube returns twelve outward-wound triangles covering the unit
// cube, every face split along the same diagonal.
func unitCube() []meshdb.Triangle {
	p := cubeCorners()
	p000, p100, p010, p110 := p[0], p[1], p[2], p[3]
	p001, p101, p011, p111 := p[4], p[5], p[6], p[7]
	return []meshdb.Triangle{
		{p000, p010, p110}, {p000, p110, p100},
		{p001, p101, p111}, {p001, p111, p011},
		{p000, p100, p101}, {p000, p101, p001},
		{p010, p011, p111}, {p010, p111, p110},
		{p000, p001, p011}, {p000, p011, p010},
		{p100, p110, p111}, {p100, p111, p101},
	}
}

// unitCubeAltBottom is unitCube with the bottom face split along the
// other diagonal. The enclosed volume is unchanged.
func unitCubeAltBottom() []meshdb.Triangle {
	p := cubeCorners()
	tris := unitCube()
	tris[0] = meshdb.Triangle{p[0], p[2], p[1]}
	tris[1] = meshdb.Triangle{p[1], p[2], p[3]}
	return tris
}

// solidCube builds a volume bounded by a single surface carrying
// tris, with the forward sense pointing at the volume.
func solidCube(t *testing.T, m *Model, tris []meshdb.Triangle) (*Volume, *Surface) {
	t.Helper()
	v, err := m.CreateVolume(0)
	if err != nil {
		t.Fatalf("CreateVolume: %v", err)
	}
	s, err := m.CreateSurface(0)
	if err != nil {
		t.Fatalf("CreateSurface: %v", err)
	}
	if err := s.AddTriangles(tris); err != nil {
		t.Fatalf("AddTriangles: %v", err)
	}
	if err := s.SetSenses(SensePair{Forward: v}); err != nil {
		t.Fatalf("SetSenses: %v", err)
	}
	return v, s
}
