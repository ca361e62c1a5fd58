package segment

import (
	"fmt"
	"math"

	"segmatic/internal/services"
	"segmatic/internal/vad"
)

// minRawSegmentSec is the unconditional floor on silence-closed segments,
// independent of configuration. It rejects spurious blips the classifier
// briefly mistakes for speech.
const minRawSegmentSec = 0.2

// Segment is a contiguous speech region in seconds, rounded to millisecond
// precision.
type Segment struct {
	Start    float64
	End      float64
	Duration float64
}

// Params controls the segmentation state machine.
type Params struct {
	FrameDurationMS int
	MinSilenceMS    int
	MinSegmentMS    int
}

// Split consumes 16-bit mono PCM and emits raw speech segments in stream
// order. Frames shorter than the fixed window at the stream tail are
// discarded, never classified.
//
// Two closure paths exist and are intentionally distinct: a segment closed by
// a silence run has its end backed off by the full run so trailing silence is
// excluded, while a segment still open at end of stream closes at the final
// timestamp with no back-off and is kept only when it meets MinSegmentMS.
func Split(pcm []byte, sampleRate int, classifier vad.Classifier, p Params) ([]Segment, error) {
	if p.FrameDurationMS <= 0 {
		return nil, services.Wrap(services.ErrValidation, "segmenter", "split", fmt.Sprintf("frame duration %d ms", p.FrameDurationMS), nil)
	}

	frameSize := sampleRate * p.FrameDurationMS / 1000 * 2
	frameDurationSec := float64(p.FrameDurationMS) / 1000
	minSilenceFrames := p.MinSilenceMS / p.FrameDurationMS

	var segments []Segment
	currentTime := 0.0
	silenceFrames := 0
	segmentStart := -1.0

	for offset := 0; offset < len(pcm); offset += frameSize {
		end := offset + frameSize
		if end > len(pcm) {
			break
		}
		speech, err := classifier.IsSpeech(pcm[offset:end], sampleRate)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "segmenter", "classify frame", "", err)
		}

		if speech {
			if segmentStart < 0 {
				segmentStart = currentTime
			}
			silenceFrames = 0
		} else {
			silenceFrames++
			if silenceFrames >= minSilenceFrames && segmentStart >= 0 {
				segmentEnd := currentTime - float64(silenceFrames)*frameDurationSec
				duration := round3(segmentEnd - segmentStart)
				if duration >= minRawSegmentSec {
					segments = append(segments, Segment{
						Start:    round3(segmentStart),
						End:      round3(segmentEnd),
						Duration: duration,
					})
				}
				segmentStart = -1
			}
		}
		currentTime += frameDurationSec
	}

	if segmentStart >= 0 {
		duration := round3(currentTime - segmentStart)
		if duration >= float64(p.MinSegmentMS)/1000 {
			segments = append(segments, Segment{
				Start:    round3(segmentStart),
				End:      round3(currentTime),
				Duration: duration,
			})
		}
	}

	return segments, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
