package dagmc

// Volume is a three-dimensional geometry set bounded by sensed
// surfaces.
type Volume struct {
	GeometrySet
}

var _ Set = (*Volume)(nil)

// Surfaces returns the volume's bounding surfaces in the order they
// were attached.
func (v *Volume) Surfaces() ([]*Surface, error) {
	var out []*Surface
	for _, c := range v.model.db.Children(v.handle) {
		if cat, _ := v.model.tags.Category(c); cat != CategorySurface {
			continue
		}
		s, err := v.model.SurfaceFromHandle(c)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// SurfacesByID returns the volume's bounding surfaces keyed by global
// ID.
func (v *Volume) SurfacesByID() (map[int]*Surface, error) {
	surfs, err := v.Surfaces()
	if err != nil {
		return nil, err
	}
	out := make(map[int]*Surface, len(surfs))
	for _, s := range surfs {
		id, _ := s.GlobalID()
		out[id] = s
	}
	return out, nil
}

// Groups returns the groups the volume belongs to, in insertion
// order.
func (v *Volume) Groups() ([]*Group, error) {
	var out []*Group
	for _, p := range v.model.db.Parents(v.handle) {
		if cat, _ := v.model.tags.Category(p); cat != CategoryGroup {
			continue
		}
		g, err := v.model.GroupFromHandle(p)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// Material returns the material assigned to the volume through "mat:"
// groups, and whether one is assigned.
func (v *Volume) Material() (string, bool) {
	return v.model.metadataValue(v.handle, matPrefix)
}

// SetMaterial assigns a material, moving the volume out of any
// previous "mat:" group. An empty name clears the assignment.
func (v *Volume) SetMaterial(name string) error {
	return v.model.setMetadataValue(v.handle, matPrefix, name)
}

// Volume returns the signed volume enclosed by the bounding surfaces,
// computed with the divergence theorem. A surface contributes with
// sign +1 when its forward sense points at this volume and -1
// otherwise, so a consistently outward-wound boundary yields a
// positive total. The result is exact only for a closed, consistently
// sensed triangulation; gaps or mixed winding skew the number without
// any error.
func (v *Volume) Volume() (float64, error) {
	surfs, err := v.Surfaces()
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, s := range surfs {
		sign := -1.0
		if raw, ok := v.model.tags.Senses(s.handle); ok && raw[0] == v.handle {
			sign = 1.0
		}
		conn, err := s.TriangleConnectivity()
		if err != nil {
			return 0, err
		}
		sum := 0.0
		for _, tri := range conn {
			a, err := v.model.db.Coordinates(tri[0])
			if err != nil {
				return 0, err
			}
			b, err := v.model.db.Coordinates(tri[1])
			if err != nil {
				return 0, err
			}
			c, err := v.model.db.Coordinates(tri[2])
			if err != nil {
				return 0, err
			}
			sum += a.Dot(b.Cross(c))
		}
		total += sign * sum
	}
	return total / 6.0, nil
}
