// Package stl reads and writes stereolithography triangle meshes. Both
// the binary and ASCII encodings are read; writing always produces the
// binary encoding.
package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/dagmesh/pkg/meshdb"
)

// binTri is the 50-byte binary STL facet record.
type binTri struct {
	Normal [3]float32
	Verts  [3][3]float32
	Attr   uint16
}

// Decode parses STL data, detecting the encoding: data starting with
// "solid" and mentioning "facet" is ASCII, everything else binary.
func Decode(data []byte) ([]meshdb.Triangle, error) {
	head := bytes.TrimLeft(data, " \t\r\n")
	if bytes.HasPrefix(head, []byte("solid")) && bytes.Contains(data, []byte("facet")) {
		return decodeASCII(data)
	}
	return decodeBinary(data)
}

// Read parses STL data from r.
func Read(r io.Reader) ([]meshdb.Triangle, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// ReadFile parses the STL file at path.
func ReadFile(path string) ([]meshdb.Triangle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func decodeBinary(data []byte) ([]meshdb.Triangle, error) {
	if len(data) < 84 {
		return nil, fmt.Errorf("stl: binary data too short (%d bytes)", len(data))
	}
	count := binary.LittleEndian.Uint32(data[80:84])
	if want := 84 + 50*int64(count); int64(len(data)) < want {
		return nil, fmt.Errorf("stl: %d triangles need %d bytes, have %d", count, want, len(data))
	}
	r := bytes.NewReader(data[84:])
	tris := make([]meshdb.Triangle, 0, count)
	for i := uint32(0); i < count; i++ {
		var rec binTri
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			return nil, err
		}
		var t meshdb.Triangle
		for j, v := range rec.Verts {
			t[j] = v3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
		}
		tris = append(tris, t)
	}
	return tris, nil
}

// decodeASCII scans word tokens and collects the three coordinates
// after each "vertex" keyword, ignoring facet normals. Stated normals
// are untrustworthy in the wild; winding carries the orientation.
func decodeASCII(data []byte) ([]meshdb.Triangle, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	sc.Split(bufio.ScanWords)
	var tris []meshdb.Triangle
	var corners []v3.Vec
	for sc.Scan() {
		if sc.Text() != "vertex" {
			continue
		}
		var p v3.Vec
		for _, dst := range []*float64{&p.X, &p.Y, &p.Z} {
			if !sc.Scan() {
				return nil, fmt.Errorf("stl: truncated vertex")
			}
			f, err := strconv.ParseFloat(sc.Text(), 64)
			if err != nil {
				return nil, fmt.Errorf("stl: bad vertex coordinate %q", sc.Text())
			}
			*dst = f
		}
		corners = append(corners, p)
		if len(corners) == 3 {
			tris = append(tris, meshdb.Triangle{corners[0], corners[1], corners[2]})
			corners = corners[:0]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(corners) != 0 {
		return nil, fmt.Errorf("stl: facet with %d vertices", len(corners))
	}
	return tris, nil
}

// Write writes tris to w in the binary encoding. Facet normals are
// recomputed from the winding.
func Write(w io.Writer, tris []meshdb.Triangle) error {
	bw := bufio.NewWriter(w)
	var header [80]byte
	copy(header[:], "dagmesh binary STL")
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(tris))); err != nil {
		return err
	}
	for _, t := range tris {
		var rec binTri
		n := t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
		if l := n.Length(); l > 0 {
			n = n.MulScalar(1 / l)
		}
		rec.Normal = [3]float32{float32(n.X), float32(n.Y), float32(n.Z)}
		for j, p := range t {
			rec.Verts[j] = [3]float32{float32(p.X), float32(p.Y), float32(p.Z)}
		}
		if err := binary.Write(bw, binary.LittleEndian, &rec); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes tris to path in the binary encoding.
func WriteFile(path string, tris []meshdb.Triangle) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, tris); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
