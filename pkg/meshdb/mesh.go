package meshdb

import v3 "github.com/deadsy/sdfx/vec/v3"

// TriangleData is a triangle mesh in index form, the shape consumed by
// mesh writers. Connectivity holds three indices per triangle, each
// indexing into Coords.
type TriangleData struct {
	Connectivity [][3]int
	Coords       []v3.Vec
}

// TriangleCount returns the number of triangles.
func (d *TriangleData) TriangleCount() int {
	return len(d.Connectivity)
}

// VertexCount returns the number of vertex positions.
func (d *TriangleData) VertexCount() int {
	return len(d.Coords)
}

// IsEmpty returns true if the mesh has no triangles.
func (d *TriangleData) IsEmpty() bool {
	return len(d.Connectivity) == 0
}

// TriangleCoords returns the three vertex positions of triangle i.
func (d *TriangleData) TriangleCoords(i int) [3]v3.Vec {
	c := d.Connectivity[i]
	return [3]v3.Vec{d.Coords[c[0]], d.Coords[c[1]], d.Coords[c[2]]}
}
