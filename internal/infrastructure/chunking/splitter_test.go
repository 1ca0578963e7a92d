package chunking

import (
	"strings"
	"testing"
)

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(1000, 200)

	spans := s.Split("a short document")
	if len(spans) != 1 {
		t.Fatalf("len(spans) = %d, want 1", len(spans))
	}
	if spans[0].Text != "a short document" {
		t.Errorf("span text = %q", spans[0].Text)
	}
	if spans[0].StartOffset != 0 || spans[0].EndOffset != 16 {
		t.Errorf("span offsets = (%d, %d), want (0, 16)", spans[0].StartOffset, spans[0].EndOffset)
	}
}

func TestSplitEmptyText(t *testing.T) {
	s := NewSplitter(1000, 200)
	if spans := s.Split(""); spans != nil {
		t.Fatalf("expected nil for empty text, got %v", spans)
	}
}

func TestSplitRespectsChunkSizeBound(t *testing.T) {
	s := NewSplitter(100, 20)
	text := strings.Repeat("abcdefghij", 50) // 500 runes

	spans := s.Split(text)
	if len(spans) == 0 {
		t.Fatalf("no spans produced")
	}
	for i, span := range spans {
		if n := len([]rune(span.Text)); n > 100 {
			t.Errorf("span %d has %d runes, exceeds chunk size 100", i, n)
		}
	}
}

func TestSplitConsecutiveChunksOverlap(t *testing.T) {
	s := NewSplitter(100, 20)
	text := strings.Repeat("x", 300)

	spans := s.Split(text)
	if len(spans) < 2 {
		t.Fatalf("len(spans) = %d, want at least 2", len(spans))
	}
	for i := 1; i < len(spans); i++ {
		if spans[i].StartOffset >= spans[i-1].EndOffset {
			t.Errorf("spans %d and %d do not overlap: [%d,%d) then [%d,%d)",
				i-1, i, spans[i-1].StartOffset, spans[i-1].EndOffset, spans[i].StartOffset, spans[i].EndOffset)
		}
	}
}

func TestSplitOffsetsAreRuneBased(t *testing.T) {
	s := NewSplitter(1000, 0)
	text := "  日本語のテキスト  "

	spans := s.Split(text)
	if len(spans) != 1 {
		t.Fatalf("len(spans) = %d, want 1", len(spans))
	}
	runes := []rune(text)
	got := string(runes[spans[0].StartOffset:spans[0].EndOffset])
	if got != spans[0].Text {
		t.Errorf("offsets do not slice back to text: %q vs %q", got, spans[0].Text)
	}
	if spans[0].Text != "日本語のテキスト" {
		t.Errorf("span text = %q, want trimmed text", spans[0].Text)
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	s := NewSplitter(50, 10)
	text := strings.Repeat("determinism matters ", 30)

	first := s.Split(text)
	for i := 0; i < 5; i++ {
		again := s.Split(text)
		if len(again) != len(first) {
			t.Fatalf("run %d produced %d spans, first run %d", i, len(again), len(first))
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("span %d differs between runs: %+v vs %+v", j, first[j], again[j])
			}
		}
	}
}

func TestNewSplitterGuardsOverlap(t *testing.T) {
	s := NewSplitter(100, 150)
	if s.Overlap >= s.ChunkSize {
		t.Fatalf("overlap %d not reduced below chunk size %d", s.Overlap, s.ChunkSize)
	}
}
