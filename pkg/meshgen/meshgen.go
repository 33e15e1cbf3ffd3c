// Package meshgen builds meshed geometries directly into a model,
// either from exact primitive triangle tables or by marching-cubes
// rendering of signed distance fields.
package meshgen

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/dagmesh/pkg/dagmc"
	"github.com/chazu/dagmesh/pkg/meshdb"
	"github.com/chazu/dagmesh/pkg/stl"
)

// defaultCells controls marching cubes tessellation resolution.
const defaultCells = 200

// NewVolume stores tris as a new volume bounded by a single surface
// whose forward sense points at the volume. Outward-wound triangles
// therefore yield a positive enclosed volume.
func NewVolume(m *dagmc.Model, tris []meshdb.Triangle) (*dagmc.Volume, error) {
	v, err := m.CreateVolume(0)
	if err != nil {
		return nil, err
	}
	s, err := m.CreateSurface(0)
	if err != nil {
		return nil, err
	}
	if err := s.AddTriangles(tris); err != nil {
		return nil, err
	}
	if err := s.SetSenses(dagmc.SensePair{Forward: v}); err != nil {
		return nil, err
	}
	return v, nil
}

// Box meshes an axis-aligned box with its minimum corner at the
// origin, using the exact twelve-triangle table rather than marching
// cubes. Dimensions must be positive.
func Box(m *dagmc.Model, size v3.Vec) (*dagmc.Volume, error) {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, fmt.Errorf("meshgen: box dimensions must be positive, got %v", size)
	}
	return NewVolume(m, BoxTriangles(v3.Vec{}, size))
}

// BoxTriangles returns the twelve outward-wound triangles of the
// axis-aligned box spanning min..max.
func BoxTriangles(min, max v3.Vec) []meshdb.Triangle {
	p000 := v3.Vec{X: min.X, Y: min.Y, Z: min.Z}
	p100 := v3.Vec{X: max.X, Y: min.Y, Z: min.Z}
	p010 := v3.Vec{X: min.X, Y: max.Y, Z: min.Z}
	p110 := v3.Vec{X: max.X, Y: max.Y, Z: min.Z}
	p001 := v3.Vec{X: min.X, Y: min.Y, Z: max.Z}
	p101 := v3.Vec{X: max.X, Y: min.Y, Z: max.Z}
	p011 := v3.Vec{X: min.X, Y: max.Y, Z: max.Z}
	p111 := v3.Vec{X: max.X, Y: max.Y, Z: max.Z}
	return []meshdb.Triangle{
		// -z
		{p000, p010, p110},
		{p000, p110, p100},
		// +z
		{p001, p101, p111},
		{p001, p111, p011},
		// -y
		{p000, p100, p101},
		{p000, p101, p001},
		// +y
		{p010, p011, p111},
		{p010, p111, p110},
		// -x
		{p000, p001, p011},
		{p000, p011, p010},
		// +x
		{p100, p110, p111},
		{p100, p111, p101},
	}
}

// FromSDF meshes the signed distance field by marching cubes at the
// given cell resolution (0 means the default) and stores the result
// as a new volume.
func FromSDF(m *dagmc.Model, s sdf.SDF3, cells int) (*dagmc.Volume, error) {
	if cells <= 0 {
		cells = defaultCells
	}
	renderer := render.NewMarchingCubesUniform(cells)
	src := render.ToTriangles(s, renderer)
	tris := make([]meshdb.Triangle, len(src))
	for i, tri := range src {
		for j := 0; j < 3; j++ {
			tris[i][j] = tri[j]
		}
	}
	return NewVolume(m, tris)
}

// FromSTL creates a surface holding the triangles of an STL file.
// Sense assignment is left to the caller.
func FromSTL(m *dagmc.Model, path string) (*dagmc.Surface, error) {
	tris, err := stl.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := m.CreateSurface(0)
	if err != nil {
		return nil, err
	}
	if err := s.AddTriangles(tris); err != nil {
		return nil, err
	}
	return s, nil
}

// Sphere meshes an origin-centered sphere of the given radius.
func Sphere(m *dagmc.Model, radius float64, cells int) (*dagmc.Volume, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, err
	}
	return FromSDF(m, s, cells)
}

// Cylinder meshes an origin-centered upright cylinder of the given
// height and radius.
func Cylinder(m *dagmc.Model, height, radius float64, cells int) (*dagmc.Volume, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, err
	}
	return FromSDF(m, s, cells)
}
