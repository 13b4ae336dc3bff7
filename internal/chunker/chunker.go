package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"corpusqa/internal/ingest"
)

const (
	minSegmentRunes = 50
	maxSegmentRunes = 700 // targets ~450 tokens for a 512-token embedding model
)

// Chunker splits markdown or plain text documents into segments along
// heading boundaries, keeping each segment within embedding-friendly
// size limits. Table rows are flattened to pipe-separated lines so
// tabular figures stay queryable.
type Chunker struct {
	parser goldmark.Markdown
}

// New creates a markdown chunker with table support.
func New() *Chunker {
	return &Chunker{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// section is an intermediate unit: content under one heading path.
type section struct {
	heading string
	body    string
}

// Chunk splits a document into ordered segments for ingestion. The
// source identifier is carried onto every segment; sequence indexes
// restart at 0 per document.
func (c *Chunker) Chunk(content []byte, source string) []ingest.Segment {
	if len(strings.TrimSpace(string(content))) == 0 {
		return nil
	}

	doc := c.parser.Parser().Parse(text.NewReader(content))
	sections := c.collectSections(doc, content)
	sections = mergeSmall(sections)

	var segments []ingest.Segment
	for _, s := range sections {
		for _, body := range splitOversized(s.body) {
			segmentText := body
			if s.heading != "" {
				segmentText = s.heading + "\n" + body
			}
			segments = append(segments, ingest.Segment{
				Source: source,
				Seq:    len(segments),
				Text:   segmentText,
			})
		}
	}
	return segments
}

// collectSections walks the AST, starting a new section at each heading
// and accumulating the text under it.
func (c *Chunker) collectSections(doc ast.Node, content []byte) []section {
	var sections []section
	var current *section
	var stack []headingLevel

	flush := func() {
		if current != nil && strings.TrimSpace(current.body) != "" {
			current.body = strings.TrimSpace(current.body)
			sections = append(sections, *current)
		}
		current = nil
	}
	ensure := func() *section {
		if current == nil {
			current = &section{heading: headingPath(stack)}
		}
		return current
	}
	appendLine := func(s string) {
		sec := ensure()
		if sec.body != "" && !strings.HasSuffix(sec.body, "\n") {
			sec.body += "\n"
		}
		sec.body += s
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			flush()
			for len(stack) > 0 && stack[len(stack)-1].level >= node.Level {
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, headingLevel{level: node.Level, text: nodeText(node, content)})
			current = &section{heading: headingPath(stack)}
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph:
			appendLine(nodeText(node, content))
			return ast.WalkSkipChildren, nil

		case *ast.ListItem:
			appendLine("- " + nodeText(node, content))
			return ast.WalkSkipChildren, nil

		case *ast.CodeBlock:
			appendLine(blockLines(node, content))
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			appendLine(blockLines(node, content))
			return ast.WalkSkipChildren, nil

		default:
			kind := n.Kind().String()
			if kind == "TableRow" || kind == "TableHeader" {
				appendLine(tableRowText(n, content))
				return ast.WalkSkipChildren, nil
			}
			return ast.WalkContinue, nil
		}
	})

	flush()

	if len(sections) == 0 {
		// No recognizable structure; keep the raw text as one section.
		sections = append(sections, section{body: strings.TrimSpace(string(content))})
	}
	return sections
}

type headingLevel struct {
	level int
	text  string
}

// headingPath renders the heading stack as "# A > ## B".
func headingPath(stack []headingLevel) string {
	if len(stack) == 0 {
		return ""
	}
	parts := make([]string, len(stack))
	for i, h := range stack {
		parts[i] = strings.Repeat("#", h.level) + " " + h.text
	}
	return strings.Join(parts, " > ")
}

// nodeText collects the plain text under a node.
func nodeText(n ast.Node, content []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func blockLines(n ast.Node, content []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(content))
	}
	return strings.TrimRight(b.String(), "\n")
}

// tableRowText joins a row's cells with pipes.
func tableRowText(row ast.Node, content []byte) string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		cells = append(cells, nodeText(cell, content))
	}
	return strings.Join(cells, " | ")
}

// mergeSmall folds undersized sections into their successor when the
// result still fits; tiny fragments embed poorly on their own.
func mergeSmall(sections []section) []section {
	if len(sections) < 2 {
		return sections
	}

	var result []section
	for i := 0; i < len(sections); i++ {
		current := sections[i]
		for i+1 < len(sections) && utf8.RuneCountInString(current.body) < minSegmentRunes {
			next := sections[i+1]
			merged := current.body + "\n\n" + next.body
			if utf8.RuneCountInString(merged) > maxSegmentRunes {
				break
			}
			if current.heading == "" {
				current.heading = next.heading
			}
			current.body = merged
			i++
		}
		result = append(result, current)
	}
	return result
}

// splitOversized breaks a body into pieces no larger than
// maxSegmentRunes, preferring paragraph, then line, then sentence
// boundaries.
func splitOversized(body string) []string {
	if utf8.RuneCountInString(body) <= maxSegmentRunes {
		return []string{body}
	}

	runes := []rune(body)
	var pieces []string
	start := 0
	for start < len(runes) {
		end := start + maxSegmentRunes
		if end >= len(runes) {
			pieces = append(pieces, strings.TrimSpace(string(runes[start:])))
			break
		}

		window := string(runes[start:end])
		cut := end
		if i := strings.LastIndex(window, "\n\n"); i > 0 {
			cut = start + utf8.RuneCountInString(window[:i+2])
		} else if i := strings.LastIndex(window, "\n"); i > 0 {
			cut = start + utf8.RuneCountInString(window[:i+1])
		} else if i := strings.LastIndex(window, ". "); i > 0 {
			cut = start + utf8.RuneCountInString(window[:i+2])
		}

		pieces = append(pieces, strings.TrimSpace(string(runes[start:cut])))
		start = cut
	}

	out := pieces[:0]
	for _, p := range pieces {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
