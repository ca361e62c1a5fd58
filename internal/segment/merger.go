package segment

// Merge coalesces consecutive segments so that no segment but possibly the
// last is shorter than minLen seconds. The pass is a greedy forward
// accumulation: while the previous merged segment is still short its end is
// extended to the current segment's end, absorbing the gap between them.
// Segments are never split, only grown, and the count never increases.
//
// A final fold handles a still-short tail: it is popped and merged into the
// new last segment the same way. minLen of zero makes the whole pass a no-op.
func Merge(segments []Segment, minLen float64) []Segment {
	if len(segments) == 0 {
		return nil
	}

	merged := make([]Segment, 0, len(segments))
	merged = append(merged, segments[0])
	for _, current := range segments[1:] {
		previous := merged[len(merged)-1]
		if previous.Duration < minLen {
			merged[len(merged)-1] = Segment{
				Start:    round3(previous.Start),
				End:      round3(current.End),
				Duration: round3(current.End - previous.Start),
			}
		} else {
			merged = append(merged, current)
		}
	}

	if len(merged) > 1 && merged[len(merged)-1].Duration < minLen {
		last := merged[len(merged)-1]
		merged = merged[:len(merged)-1]
		previous := merged[len(merged)-1]
		merged[len(merged)-1] = Segment{
			Start:    round3(previous.Start),
			End:      round3(last.End),
			Duration: round3(last.End - previous.Start),
		}
	}

	return merged
}
