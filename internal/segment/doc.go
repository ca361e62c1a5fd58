// Package segment contains the numeric core of the pipeline: the
// frame-driven segmentation state machine that turns a classified PCM stream
// into raw speech segments, and the greedy merger that consolidates short
// segments into usable units.
//
// Both operations are pure: they hold no I/O, no shared state, and their
// output is a deterministic function of the input stream and parameters.
package segment
