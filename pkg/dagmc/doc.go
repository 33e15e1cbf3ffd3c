// Package dagmc overlays a semantic geometry model on a mesh
// database: Surfaces, Volumes, and Groups are entity sets classified
// by tags, related through parent/child containment, and backed by
// triangle elements. The Model mediates entity creation, per-category
// global ID bookkeeping, and the category/dimension consistency rules;
// Surface carries sense and area, Volume carries material and a signed
// divergence-theorem volume, Group carries typed membership and merge.
package dagmc
