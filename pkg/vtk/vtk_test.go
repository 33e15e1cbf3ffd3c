package vtk

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/dagmesh/pkg/meshdb"
)

func TestWrite(t *testing.T) {
	data := &meshdb.TriangleData{
		Connectivity: [][3]int{{0, 1, 2}, {0, 2, 3}},
		Coords: []v3.Vec{
			{}, {X: 1}, {X: 1, Y: 1}, {Y: 1},
		},
	}
	var buf bytes.Buffer
	if err := Write(&buf, data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := `# vtk DataFile Version 2.0
dagmesh triangle mesh
ASCII
DATASET UNSTRUCTURED_GRID
POINTS 4 double
0 0 0
1 0 0
1 1 0
0 1 0
CELLS 2 8
3 0 1 2
3 0 2 3
CELL_TYPES 2
5
5
`
	if got := buf.String(); got != want {
		t.Errorf("output mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, &meshdb.TriangleData{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, line := range []string{"POINTS 0 double", "CELLS 0 0", "CELL_TYPES 0"} {
		if !strings.Contains(out, line) {
			t.Errorf("empty mesh output missing %q", line)
		}
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.vtk")
	data := &meshdb.TriangleData{
		Connectivity: [][3]int{{0, 1, 2}},
		Coords:       []v3.Vec{{}, {X: 1}, {Y: 1}},
	}
	if err := WriteFile(path, data); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(raw), "# vtk DataFile Version 2.0\n") {
		t.Errorf("unexpected file header: %q", raw[:min(len(raw), 40)])
	}
}
