// Package graph implements a render graph: declared resources, passes with
// read/write dependencies, dependency-ordered scheduling and transient
// resource lifetime.
//
// A frame follows a fixed cycle. Resources and passes are declared while the
// graph is Building. Compile validates the declarations and orders passes so
// that every pass writing a resource runs before every pass reading it; passes
// with no ordering constraint keep their insertion order. Execute then
// materializes every declared resource, runs the passes in order, submits the
// recorded commands and destroys transient resources, returning the graph to
// Building for the next frame.
//
// Resource declarations persist for the graph's lifetime; passes are cleared
// after every successful Execute. Persistent (non-transient) resources keep
// their GPU objects across frames and are recreated only when their resolved
// size changes.
//
// Destroying a resource unbinds it at once, but the GPU objects are handed to
// Env.Retire, which frees them once no submission can still use them. A
// failed Execute calls Env.Abort so half-recorded commands never reach the
// queue.
//
// Texture sizes may be absolute or relative to the render target ("full",
// "50%"). Relative sizes are resolved at Execute time, so they follow target
// resizes.
//
// The scheduler only knows what passes declare. A pass that touches a
// resource it did not declare may run in the wrong order; to make such
// mistakes visible, a pass's Resolved set contains only its declared
// resources.
//
// A Graph is NOT thread-safe.
package graph
