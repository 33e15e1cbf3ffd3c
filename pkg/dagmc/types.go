package dagmc

// Category is the semantic kind of a geometry set, stored in the
// CATEGORY tag of the underlying entity set.
type Category int

const (
	CategoryUnknown Category = iota
	CategorySurface
	CategoryVolume
	CategoryGroup
)

// String returns the canonical tag value for the category.
func (c Category) String() string {
	switch c {
	case CategorySurface:
		return "Surface"
	case CategoryVolume:
		return "Volume"
	case CategoryGroup:
		return "Group"
	}
	return "Unknown"
}

// Dimension returns the geometric dimension paired with the category:
// 2 for Surface, 3 for Volume, 4 for Group, 0 for unknown.
func (c Category) Dimension() int {
	switch c {
	case CategorySurface:
		return 2
	case CategoryVolume:
		return 3
	case CategoryGroup:
		return 4
	}
	return 0
}

// ParseCategory maps a CATEGORY tag value to its Category.
func ParseCategory(s string) (Category, bool) {
	switch s {
	case "Surface":
		return CategorySurface, true
	case "Volume":
		return CategoryVolume, true
	case "Group":
		return CategoryGroup, true
	}
	return CategoryUnknown, false
}

// CategoryForDimension maps a GEOM_DIMENSION value to the category it
// implies.
func CategoryForDimension(d int) (Category, bool) {
	switch d {
	case 2:
		return CategorySurface, true
	case 3:
		return CategoryVolume, true
	case 4:
		return CategoryGroup, true
	}
	return CategoryUnknown, false
}
