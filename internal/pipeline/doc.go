// Package pipeline runs the segmentation engine over a corpus: it discovers
// source files, fans them out to a bounded worker pool, and for each file
// resamples, classifies, segments, merges, cuts, and writes the manifest.
// Failures are isolated per file.
package pipeline
