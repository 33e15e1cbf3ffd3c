// Package vtk writes triangle meshes as legacy-ASCII VTK unstructured
// grids, the format ParaView and VisIt read without plugins.
package vtk

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/chazu/dagmesh/pkg/meshdb"
)

// triangle is the VTK cell type id for a linear triangle.
const triangle = 5

// Write writes data to w as a VTK 2.0 ASCII unstructured grid of
// triangle cells.
func Write(w io.Writer, data *meshdb.TriangleData) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# vtk DataFile Version 2.0")
	fmt.Fprintln(bw, "dagmesh triangle mesh")
	fmt.Fprintln(bw, "ASCII")
	fmt.Fprintln(bw, "DATASET UNSTRUCTURED_GRID")
	fmt.Fprintf(bw, "POINTS %d double\n", data.VertexCount())
	for _, p := range data.Coords {
		fmt.Fprintf(bw, "%g %g %g\n", p.X, p.Y, p.Z)
	}
	n := data.TriangleCount()
	fmt.Fprintf(bw, "CELLS %d %d\n", n, 4*n)
	for _, tri := range data.Connectivity {
		fmt.Fprintf(bw, "3 %d %d %d\n", tri[0], tri[1], tri[2])
	}
	fmt.Fprintf(bw, "CELL_TYPES %d\n", n)
	for range data.Connectivity {
		fmt.Fprintln(bw, triangle)
	}
	return bw.Flush()
}

// WriteFile writes data to path, creating or truncating the file.
func WriteFile(path string, data *meshdb.TriangleData) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
