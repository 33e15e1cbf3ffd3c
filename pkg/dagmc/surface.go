package dagmc

import (
	"fmt"

	"github.com/chazu/dagmesh/pkg/meshdb"
)

// Surface is a two-dimensional geometry set: a triangulated sheet
// bounding at most two volumes.
type Surface struct {
	GeometrySet
}

var _ Set = (*Surface)(nil)

// SensePair holds the volumes on either side of a surface. A nil
// entry means no volume is assigned on that side.
type SensePair struct {
	Forward *Volume
	Reverse *Volume
}

// Senses returns the surface's sense pair. A surface with no sense
// tag has both sides unassigned.
func (s *Surface) Senses() (SensePair, error) {
	raw, ok := s.model.tags.Senses(s.handle)
	if !ok {
		return SensePair{}, nil
	}
	var pair SensePair
	if raw[0] != 0 {
		v, err := s.model.VolumeFromHandle(raw[0])
		if err != nil {
			return SensePair{}, err
		}
		pair.Forward = v
	}
	if raw[1] != 0 {
		v, err := s.model.VolumeFromHandle(raw[1])
		if err != nil {
			return SensePair{}, err
		}
		pair.Reverse = v
	}
	return pair, nil
}

// SetSenses assigns the volumes on the surface's forward and reverse
// sides and records the surface as a child of each. Either side may
// be nil. Volumes from another model are rejected.
func (s *Surface) SetSenses(pair SensePair) error {
	var raw [2]meshdb.Handle
	for i, v := range []*Volume{pair.Forward, pair.Reverse} {
		if v == nil {
			continue
		}
		if v.model != s.model {
			return fmt.Errorf("sense volume %d belongs to a different model", v.handle)
		}
		raw[i] = v.handle
	}
	if err := s.model.tags.SetSenses(s.handle, raw); err != nil {
		return err
	}
	for _, v := range []*Volume{pair.Forward, pair.Reverse} {
		if v == nil {
			continue
		}
		if err := s.model.db.AddChild(v.handle, s.handle); err != nil {
			return err
		}
	}
	return nil
}

// ForwardVolume returns the volume on the forward side, or nil when
// none is assigned.
func (s *Surface) ForwardVolume() (*Volume, error) {
	pair, err := s.Senses()
	if err != nil {
		return nil, err
	}
	return pair.Forward, nil
}

// ReverseVolume returns the volume on the reverse side, or nil when
// none is assigned.
func (s *Surface) ReverseVolume() (*Volume, error) {
	pair, err := s.Senses()
	if err != nil {
		return nil, err
	}
	return pair.Reverse, nil
}

// SetForwardVolume assigns the forward side, preserving the reverse.
func (s *Surface) SetForwardVolume(v *Volume) error {
	pair, err := s.Senses()
	if err != nil {
		return err
	}
	pair.Forward = v
	return s.SetSenses(pair)
}

// SetReverseVolume assigns the reverse side, preserving the forward.
func (s *Surface) SetReverseVolume(v *Volume) error {
	pair, err := s.Senses()
	if err != nil {
		return err
	}
	pair.Reverse = v
	return s.SetSenses(pair)
}

// Volumes returns the parent volumes of the surface in insertion
// order.
func (s *Surface) Volumes() ([]*Volume, error) {
	var out []*Volume
	for _, p := range s.model.db.Parents(s.handle) {
		if cat, _ := s.model.tags.Category(p); cat != CategoryVolume {
			continue
		}
		v, err := s.model.VolumeFromHandle(p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// AddTriangles appends triangles to the surface's mesh. Corner
// positions repeated within one call share a single vertex.
func (s *Surface) AddTriangles(tris []meshdb.Triangle) error {
	_, err := s.model.db.AddTriangles(s.handle, tris)
	return err
}

// Area returns the total area of the surface's triangles.
func (s *Surface) Area() (float64, error) {
	conn, err := s.TriangleConnectivity()
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, tri := range conn {
		a, err := s.model.db.Coordinates(tri[0])
		if err != nil {
			return 0, err
		}
		b, err := s.model.db.Coordinates(tri[1])
		if err != nil {
			return 0, err
		}
		c, err := s.model.db.Coordinates(tri[2])
		if err != nil {
			return 0, err
		}
		total += 0.5 * b.Sub(a).Cross(c.Sub(a)).Length()
	}
	return total, nil
}

// Boundary returns the boundary condition assigned to the surface
// through "boundary:" groups, and whether one is assigned.
func (s *Surface) Boundary() (string, bool) {
	return s.model.metadataValue(s.handle, boundaryPrefix)
}

// SetBoundary assigns a boundary condition, moving the surface out of
// any previous "boundary:" group. An empty name clears the condition.
func (s *Surface) SetBoundary(name string) error {
	return s.model.setMetadataValue(s.handle, boundaryPrefix, name)
}
