package graph

import "go.trai.ch/zerr"

var (
	// ErrDuplicateName is returned when a resource name is registered twice.
	ErrDuplicateName = zerr.New("resource name already registered")

	// ErrDuplicatePass is returned by Compile when two passes share a name.
	ErrDuplicatePass = zerr.New("duplicate pass name")

	// ErrEmptyName is returned for a resource or pass without a name.
	ErrEmptyName = zerr.New("empty name")

	// ErrCycleDetected is returned by Compile when pass dependencies form a cycle.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrUnknownResource is returned by Compile when a pass references a
	// handle that is not registered in this graph.
	ErrUnknownResource = zerr.New("unknown resource handle")

	// ErrResourceNotFound is returned when a lookup by name fails.
	ErrResourceNotFound = zerr.New("resource not found")

	// ErrNotCompiled is returned by Execute on a graph that is not compiled.
	ErrNotCompiled = zerr.New("graph not compiled")

	// ErrInvalidSize is returned for a zero or malformed resource size.
	ErrInvalidSize = zerr.New("invalid resource size")

	// ErrNotImported is returned when updating an import on a resource the
	// graph owns.
	ErrNotImported = zerr.New("resource is not imported")

	// ErrNoDevice is returned when the execution environment has no device.
	ErrNoDevice = zerr.New("no device")
)

// withMeta wraps sentinel with msg and attaches key/value pairs. The result
// still matches sentinel with errors.Is.
func withMeta(sentinel error, msg string, kv ...any) error {
	err := zerr.Wrap(sentinel, msg)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		err = zerr.With(err, key, kv[i+1])
	}
	return err
}
