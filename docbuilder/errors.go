package docbuilder

import "errors"

// ErrBuildFailed wraps any error that aborted materialisation of a single
// resource's document. It is a per-document failure, never a pipeline
// failure: callers log it and move on to the next resource.
var ErrBuildFailed = errors.New("docbuilder: build failed")

// ErrIncompatibleMerge is returned when smart-merging two composite
// sub-documents produces a type clash (e.g. a hash colliding with a
// scalar) that cannot be resolved structurally.
var ErrIncompatibleMerge = errors.New("docbuilder: incompatible merge")
