package ollama

import (
	"strings"
	"testing"
)

func TestSegmenterEmitsFirstSentenceEarly(t *testing.T) {
	seg := newSegmenter(60)

	// Well under the 60-char threshold, but the first unit uses the lower
	// first-speech threshold so playback starts sooner.
	units := seg.consume("The capital of France is Paris.")
	if len(units) != 1 {
		t.Fatalf("units = %v, want one early first sentence", units)
	}
	if units[0] != "The capital of France is Paris." {
		t.Fatalf("first unit = %q", units[0])
	}

	// The same length no longer qualifies once the first unit is out.
	units = seg.consume("It has been the capital a while.")
	if len(units) != 0 {
		t.Fatalf("units = %v, want none below min chars", units)
	}
}

func TestSegmenterAccumulatesAcrossDeltas(t *testing.T) {
	seg := newSegmenter(24)

	var units []string
	for _, delta := range []string{"The answer ", "is forty-two, ", "give or take a bit. ", "More follows"} {
		units = append(units, seg.consume(delta)...)
	}
	if len(units) != 1 {
		t.Fatalf("units = %v, want exactly one complete sentence", units)
	}
	if !strings.HasSuffix(units[0], "give or take a bit.") {
		t.Fatalf("unit = %q, want full sentence", units[0])
	}
}

func TestSegmenterCutsRunOnTextAtWhitespace(t *testing.T) {
	seg := newSegmenter(20)

	text := strings.Repeat("word ", 20)
	units := seg.consume(text)
	if len(units) == 0 {
		t.Fatalf("no units for run-on text of %d chars", len(text))
	}
	for _, u := range units {
		if strings.Contains(u, "wo rd") {
			t.Fatalf("unit %q split inside a word", u)
		}
	}
}

func TestSegmenterFinalizeFlushesPartial(t *testing.T) {
	seg := newSegmenter(60)

	if units := seg.consume("short tail"); len(units) != 0 {
		t.Fatalf("units = %v, want none before finalize", units)
	}
	units := seg.finalize()
	if len(units) != 1 || units[0] != "short tail" {
		t.Fatalf("finalize() = %v, want trailing partial", units)
	}
	if units = seg.finalize(); len(units) != 0 {
		t.Fatalf("second finalize() = %v, want empty", units)
	}
}

func TestSegmenterOrderPreserved(t *testing.T) {
	seg := newSegmenter(10)

	var units []string
	units = append(units, seg.consume("First sentence here. Second sentence here. Third")...)
	units = append(units, seg.finalize()...)

	joined := strings.Join(units, " ")
	want := "First sentence here. Second sentence here. Third"
	if joined != want {
		t.Fatalf("joined units = %q, want %q", joined, want)
	}
}
