/*
Package motionpath implements the time-indexed spatial core of a motion
path editor: it caches the composed parent transforms of an animated
entity over a window of time, aggregates the entity's sparse channel keys
into per-time keyframe records with world-space tangent handles, and
writes interactive edits back through the host's animation curves.

The package deliberately knows nothing about rendering, viewports or
undo stacks. Those are collaborators reached through small interfaces:
Channel for animation curves, TransformSource for hierarchy transforms,
CameraResolver for camera-relative display, and ChangeRecorder for undo
grouping. Sibling packages build on this core: projection maps between
world and screen space, stroke turns freehand gestures into curve edits,
and render produces the drawable state for one frame.

# BSD License

All rights reserved.

Please refer to the license file for more information.
*/
package motionpath

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'motionpath'
func tracer() tracing.Trace {
	return tracing.Select("motionpath")
}
