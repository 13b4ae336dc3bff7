package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunk_HeadingSections(t *testing.T) {
	content := []byte(`# Quarterly Report

Intro paragraph describing the quarter in enough words to stand alone as a segment.

## Net Interest Margin

Net interest margin was 3.2%, up from 3.0% in the prior quarter due to repricing.

## Deposits

Total deposits grew 4% quarter over quarter, driven by commercial accounts.
`)

	c := New()
	segments := c.Chunk(content, "report.md")
	if len(segments) < 2 {
		t.Fatalf("got %d segments, want at least 2", len(segments))
	}

	for i, s := range segments {
		if s.Source != "report.md" {
			t.Errorf("segment %d source = %q, want report.md", i, s.Source)
		}
		if s.Seq != i {
			t.Errorf("segment %d Seq = %d, want %d", i, s.Seq, i)
		}
	}

	var marginSegment string
	for _, s := range segments {
		if strings.Contains(s.Text, "3.2%") {
			marginSegment = s.Text
		}
	}
	if marginSegment == "" {
		t.Fatal("no segment carries the margin figure")
	}
	if !strings.Contains(marginSegment, "## Net Interest Margin") {
		t.Errorf("margin segment lost its heading path:\n%s", marginSegment)
	}
}

func TestChunk_TableRowsFlattened(t *testing.T) {
	content := []byte(`## Capital Ratios

| Metric | Q1 | Q2 |
| --- | --- | --- |
| CET1 | 12.1% | 12.4% |
`)

	c := New()
	segments := c.Chunk(content, "ratios.md")
	if len(segments) == 0 {
		t.Fatal("no segments produced")
	}

	joined := segments[0].Text
	if !strings.Contains(joined, "CET1 | 12.1% | 12.4%") {
		t.Errorf("table row not flattened with pipes:\n%s", joined)
	}
	if !strings.Contains(joined, "Metric | Q1 | Q2") {
		t.Errorf("header row missing:\n%s", joined)
	}
}

func TestChunk_EmptyDocument(t *testing.T) {
	c := New()
	if segments := c.Chunk([]byte("   \n"), "empty.md"); len(segments) != 0 {
		t.Errorf("got %d segments for empty input, want 0", len(segments))
	}
}

func TestChunk_PlainTextWithoutHeadings(t *testing.T) {
	content := []byte("A single paragraph of plain text with no markdown structure, long enough to survive the minimum size filter applied during merging.")

	c := New()
	segments := c.Chunk(content, "note.txt")
	if len(segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(segments))
	}
	if !strings.Contains(segments[0].Text, "plain text") {
		t.Errorf("content lost: %q", segments[0].Text)
	}
}

func TestChunk_OversizedSectionIsSplit(t *testing.T) {
	var b strings.Builder
	b.WriteString("# Long Section\n\n")
	for i := 0; i < 40; i++ {
		b.WriteString("This sentence pads the section well past the maximum segment size. ")
	}

	c := New()
	segments := c.Chunk([]byte(b.String()), "long.md")
	if len(segments) < 2 {
		t.Fatalf("got %d segments, want a split", len(segments))
	}
	for i, s := range segments {
		if n := utf8.RuneCountInString(s.Text); n > maxSegmentRunes+100 {
			t.Errorf("segment %d has %d runes, exceeds limit by too much", i, n)
		}
	}
}

func TestChunk_TinySectionsMerge(t *testing.T) {
	content := []byte(`## A

Short.

## B

Also short.

## C

A closing section with enough words that the merged result remains meaningful.
`)

	c := New()
	segments := c.Chunk(content, "merge.md")
	if len(segments) >= 3 {
		t.Errorf("got %d segments, want tiny sections merged", len(segments))
	}
}
