// Package groupspec loads group-assignment files: YAML documents
// naming groups and the global IDs of the volumes and surfaces each
// should contain.
//
//	groups:
//	  - name: "mat:steel"
//	    volumes: [1, 2]
//	  - name: "boundary:vacuum"
//	    surfaces: [7]
package groupspec

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chazu/dagmesh/pkg/dagmc"
)

// File is the top-level group-assignment document.
type File struct {
	Groups []Entry `yaml:"groups"`
}

// Entry describes one group and its members by global ID.
type Entry struct {
	Name     string `yaml:"name"`
	Volumes  []int  `yaml:"volumes"`
	Surfaces []int  `yaml:"surfaces"`
}

// Parse decodes a group-assignment document. Every group needs a
// name; member lists may be empty.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("groupspec: %w", err)
	}
	for i, e := range f.Groups {
		if e.Name == "" {
			return nil, fmt.Errorf("groupspec: group %d has no name", i)
		}
	}
	return &f, nil
}

// Load reads and decodes the group-assignment file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Specs converts the document into model group assignments.
func (f *File) Specs() []dagmc.GroupSpec {
	out := make([]dagmc.GroupSpec, len(f.Groups))
	for i, e := range f.Groups {
		out[i] = dagmc.GroupSpec{Name: e.Name, Volumes: e.Volumes, Surfaces: e.Surfaces}
	}
	return out
}

// Apply creates or extends the model's groups per the document.
func (f *File) Apply(m *dagmc.Model) error {
	return m.AddGroups(f.Specs())
}
