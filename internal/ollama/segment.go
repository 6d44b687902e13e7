package ollama

import "strings"

const (
	defaultSegmentMinChars = 48
	segmentOverflowFactor  = 2
	segmentWhitespaceScan  = 20
)

// segmenter buffers streamed deltas and emits sentence-bounded speech units.
// The first unit uses a lower threshold so speech starts before the full
// answer is generated; later units can be larger for smoother delivery.
type segmenter struct {
	minChars int
	firstMin int

	pending string
	emitted bool
}

func newSegmenter(minChars int) *segmenter {
	if minChars <= 0 {
		minChars = defaultSegmentMinChars
	}
	firstMin := minChars / 3
	if firstMin < 8 {
		firstMin = 8
	}
	if firstMin > minChars {
		firstMin = minChars
	}
	return &segmenter{minChars: minChars, firstMin: firstMin}
}

// consume appends a delta and returns any speech units now complete.
func (s *segmenter) consume(delta string) []string {
	if delta == "" {
		return nil
	}
	s.pending += delta
	return s.flush(false)
}

// finalize drains the trailing partial sentence as a last speech unit.
func (s *segmenter) finalize() []string {
	return s.flush(true)
}

func (s *segmenter) flush(force bool) []string {
	var out []string
	for {
		threshold := s.minChars
		if !s.emitted {
			threshold = s.firstMin
		}

		unit, rest, ok := nextSpeechUnit(s.pending, threshold, s.minChars*segmentOverflowFactor, force)
		if !ok {
			break
		}
		s.pending = rest
		unit = strings.TrimSpace(unit)
		if unit == "" {
			continue
		}
		out = append(out, unit)
		s.emitted = true
	}
	return out
}

func nextSpeechUnit(input string, minChars, overflowAt int, force bool) (unit, rest string, ok bool) {
	if input == "" {
		return "", "", false
	}
	if force {
		return input, "", true
	}

	if idx := boundaryAfterMin(input, minChars); idx >= 0 {
		return input[:idx+1], input[idx+1:], true
	}

	// Plenty of text with no punctuation in sight: cut at whitespace so the
	// voice does not fall silent waiting for a period that never comes.
	if len(input) >= overflowAt {
		cut := whitespaceCut(input, overflowAt/segmentOverflowFactor)
		return input[:cut], input[cut:], true
	}
	return "", input, false
}

func boundaryAfterMin(input string, minChars int) int {
	if minChars < 1 {
		minChars = 1
	}
	for i := minChars - 1; i < len(input); i++ {
		switch input[i] {
		case '.', '!', '?', '\n':
			return i
		}
	}
	return -1
}

func whitespaceCut(input string, minChars int) int {
	if minChars < 1 {
		minChars = 1
	}
	if len(input) <= minChars {
		return len(input)
	}
	limit := minChars + segmentWhitespaceScan
	if limit > len(input) {
		limit = len(input)
	}
	for i := minChars; i < limit; i++ {
		switch input[i] {
		case ' ', '\t', '\n', '\r':
			return i
		}
	}
	return minChars
}
