// Package resource defines the CPU-side data that the renderer mirrors on the
// GPU.
//
// Every resource carries a stable [ID] and a version counter. The version is
// bumped by the resource's setters, or explicitly through MarkDirty after an
// owner mutates data in place. Caches compare the version they last saw with
// the current one to decide whether a GPU upload is required, so an owner
// that mutates data without bumping the version will not see the change on
// the GPU.
//
// Resources are not safe for concurrent use. They may be mutated freely
// between frames but not while a frame is executing.
package resource
