package segment_test

import (
	"testing"

	"segmatic/internal/segment"
)

// scriptedClassifier returns a pre-planned decision per frame, in order.
type scriptedClassifier struct {
	script []bool
	next   int
}

func (s *scriptedClassifier) IsSpeech(frame []byte, sampleRate int) (bool, error) {
	if s.next >= len(s.script) {
		return false, nil
	}
	v := s.script[s.next]
	s.next++
	return v, nil
}

func script(runs ...struct {
	speech bool
	count  int
}) []bool {
	var out []bool
	for _, r := range runs {
		for i := 0; i < r.count; i++ {
			out = append(out, r.speech)
		}
	}
	return out
}

func run(speech bool, count int) struct {
	speech bool
	count  int
} {
	return struct {
		speech bool
		count  int
	}{speech, count}
}

// pcm builds n frames of 30 ms 16 kHz audio (960 bytes per frame), plus
// extra trailing bytes that must be discarded as an incomplete tail frame.
func pcm(frames, tailBytes int) []byte {
	return make([]byte, frames*960+tailBytes)
}

var params = segment.Params{FrameDurationMS: 30, MinSilenceMS: 1000, MinSegmentMS: 200}

func TestSplitSilenceClosureBacksOffTrailingSilence(t *testing.T) {
	// 50 speech frames, 40 silence frames, 10 speech frames. The silence
	// counter reaches 33 (=1000/30) on frame index 82, where the current
	// time is 2.46s, so the first segment ends at 2.46 - 33*0.03 = 1.47.
	// The second segment opens at frame 90 (2.70s) and closes at stream
	// end (3.00s) with no back-off.
	cls := &scriptedClassifier{script: script(run(true, 50), run(false, 40), run(true, 10))}

	segments, err := segment.Split(pcm(100, 0), 16000, cls, params)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(segments), segments)
	}

	first := segments[0]
	if first.Start != 0 || first.End != 1.47 || first.Duration != 1.47 {
		t.Fatalf("unexpected first segment: %+v", first)
	}
	second := segments[1]
	if second.Start != 2.7 || second.End != 3 || second.Duration != 0.3 {
		t.Fatalf("unexpected second segment: %+v", second)
	}
}

func TestSplitEnforcesRawFloorOnSilenceClosure(t *testing.T) {
	// 5 speech frames is 0.15s of speech; after backing off the silence run
	// the closed segment is below the unconditional 0.2s floor and must be
	// dropped regardless of MinSegmentMS.
	cls := &scriptedClassifier{script: script(run(true, 5), run(false, 40))}

	segments, err := segment.Split(pcm(45, 0), 16000, cls, segment.Params{FrameDurationMS: 30, MinSilenceMS: 1000, MinSegmentMS: 0})
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	if len(segments) != 0 {
		t.Fatalf("expected no segments, got %+v", segments)
	}
}

func TestSplitTailSegmentUsesMinSegmentThreshold(t *testing.T) {
	cls := &scriptedClassifier{script: script(run(true, 10))}
	p := segment.Params{FrameDurationMS: 30, MinSilenceMS: 1000, MinSegmentMS: 400}

	segments, err := segment.Split(pcm(10, 0), 16000, cls, p)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	if len(segments) != 0 {
		t.Fatalf("expected tail below min_segment_ms to be dropped, got %+v", segments)
	}

	// The same stream passes once the threshold allows 0.3s.
	cls = &scriptedClassifier{script: script(run(true, 10))}
	p.MinSegmentMS = 200
	segments, err = segment.Split(pcm(10, 0), 16000, cls, p)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	if len(segments) != 1 || segments[0].Duration != 0.3 {
		t.Fatalf("expected one 0.3s tail segment, got %+v", segments)
	}
}

func TestSplitDiscardsIncompleteTailFrame(t *testing.T) {
	cls := &scriptedClassifier{script: script(run(true, 10))}

	// Half a frame of trailing bytes must not be classified or advance time.
	segments, err := segment.Split(pcm(10, 480), 16000, cls, params)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("expected one segment, got %+v", segments)
	}
	if segments[0].End != 0.3 {
		t.Fatalf("expected end at 0.3 (10 complete frames), got %+v", segments[0])
	}
	if cls.next != 10 {
		t.Fatalf("expected exactly 10 classified frames, got %d", cls.next)
	}
}

func TestSplitEmptyStream(t *testing.T) {
	segments, err := segment.Split(nil, 16000, &scriptedClassifier{}, params)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	if len(segments) != 0 {
		t.Fatalf("expected no segments, got %+v", segments)
	}
}
