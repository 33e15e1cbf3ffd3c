package dagmc

import (
	"strings"

	"github.com/chazu/dagmesh/pkg/meshdb"
	"github.com/chazu/dagmesh/pkg/vtk"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// contributingSurfaces returns the handles of every surface whose
// triangles belong to the set: a surface contributes itself, a volume
// its direct child surfaces, and a group everything reachable through
// child surfaces, volumes, and nested groups. visited guards against
// cycles and shared children, so each surface is reported once.
func (m *Model) contributingSurfaces(h meshdb.Handle, visited map[meshdb.Handle]struct{}) []meshdb.Handle {
	if _, ok := visited[h]; ok {
		return nil
	}
	visited[h] = struct{}{}
	cat, _ := m.tags.Category(h)
	switch cat {
	case CategorySurface:
		return []meshdb.Handle{h}
	case CategoryVolume:
		var out []meshdb.Handle
		for _, c := range m.db.Children(h) {
			if cc, _ := m.tags.Category(c); cc != CategorySurface {
				continue
			}
			if _, seen := visited[c]; seen {
				continue
			}
			visited[c] = struct{}{}
			out = append(out, c)
		}
		return out
	case CategoryGroup:
		var out []meshdb.Handle
		for _, c := range m.db.Children(h) {
			out = append(out, m.contributingSurfaces(c, visited)...)
		}
		return out
	}
	return nil
}

// TriangleHandles returns the handles of every triangle owned by the
// set's contributing surfaces.
func (s *GeometrySet) TriangleHandles() []meshdb.Handle {
	var out []meshdb.Handle
	for _, surf := range s.model.contributingSurfaces(s.handle, make(map[meshdb.Handle]struct{})) {
		out = append(out, s.model.db.Triangles(surf)...)
	}
	return out
}

// NumTriangles returns the number of triangles reachable from the set.
func (s *GeometrySet) NumTriangles() int {
	return len(s.TriangleHandles())
}

// TriangleConnectivity returns the three vertex handles of each
// reachable triangle.
func (s *GeometrySet) TriangleConnectivity() ([][3]meshdb.Handle, error) {
	ths := s.TriangleHandles()
	out := make([][3]meshdb.Handle, 0, len(ths))
	for _, th := range ths {
		conn, err := s.model.db.Connectivity(th)
		if err != nil {
			return nil, err
		}
		out = append(out, conn)
	}
	return out, nil
}

// TriangleCoords returns the corner positions of each reachable
// triangle, three per triangle in triangle order.
func (s *GeometrySet) TriangleCoords() ([]v3.Vec, error) {
	conn, err := s.TriangleConnectivity()
	if err != nil {
		return nil, err
	}
	out := make([]v3.Vec, 0, len(conn)*3)
	for _, tri := range conn {
		for _, vh := range tri {
			p, err := s.model.db.Coordinates(vh)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
	}
	return out, nil
}

// TriangleData assembles index-form connectivity and coordinates for
// the set's triangles. With compress true, vertices shared between
// triangles appear once in Coords; otherwise every triangle corner
// gets its own entry and row i of the connectivity is (3i, 3i+1,
// 3i+2).
func (s *GeometrySet) TriangleData(compress bool) (*meshdb.TriangleData, error) {
	conn, err := s.TriangleConnectivity()
	if err != nil {
		return nil, err
	}
	data := &meshdb.TriangleData{Connectivity: make([][3]int, 0, len(conn))}
	if compress {
		index := make(map[meshdb.Handle]int)
		for _, tri := range conn {
			var c [3]int
			for i, vh := range tri {
				idx, ok := index[vh]
				if !ok {
					p, err := s.model.db.Coordinates(vh)
					if err != nil {
						return nil, err
					}
					idx = len(data.Coords)
					data.Coords = append(data.Coords, p)
					index[vh] = idx
				}
				c[i] = idx
			}
			data.Connectivity = append(data.Connectivity, c)
		}
		return data, nil
	}
	for _, tri := range conn {
		n := len(data.Coords)
		for _, vh := range tri {
			p, err := s.model.db.Coordinates(vh)
			if err != nil {
				return nil, err
			}
			data.Coords = append(data.Coords, p)
		}
		data.Connectivity = append(data.Connectivity, [3]int{n, n + 1, n + 2})
	}
	return data, nil
}

// WriteVTK writes the set's triangles to path as a legacy-ASCII VTK
// unstructured grid. A missing ".vtk" suffix is appended.
func (s *GeometrySet) WriteVTK(path string) error {
	data, err := s.TriangleData(true)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(path, ".vtk") {
		path += ".vtk"
	}
	return vtk.WriteFile(path, data)
}
