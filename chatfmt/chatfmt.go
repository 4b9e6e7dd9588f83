// Package chatfmt splits long chat messages into platform-sized segments.
package chatfmt

import (
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	// SegmentLimit leaves headroom under Discord's 2000 character cap for the marker.
	SegmentLimit = 1900
	Continued    = "\n[continued in next message]"
)

var md = goldmark.New()

// Split returns text unchanged when it fits in limit runes. Otherwise it is cut
// into segments of at most limit runes, preferring Markdown block boundaries,
// then line breaks; every segment but the last carries the Continued marker.
func Split(s string, limit int) []string {
	if limit <= 0 {
		limit = SegmentLimit
	}
	if utf8.RuneCountInString(s) <= limit {
		return []string{s}
	}

	var pieces []string
	for _, block := range blocks(s) {
		if utf8.RuneCountInString(block) <= limit {
			pieces = append(pieces, block)
			continue
		}
		for _, line := range strings.SplitAfter(block, "\n") {
			pieces = append(pieces, hardSplit(line, limit)...)
		}
	}

	var out []string
	var cur strings.Builder
	curLen := 0
	for _, p := range pieces {
		n := utf8.RuneCountInString(p)
		if curLen+n > limit && curLen > 0 {
			out = append(out, cur.String())
			cur.Reset()
			curLen = 0
		}
		cur.WriteString(p)
		curLen += n
	}
	if curLen > 0 {
		out = append(out, cur.String())
	}

	for i := range out {
		out[i] = strings.TrimRight(out[i], "\n")
		if i < len(out)-1 {
			out[i] += Continued
		}
	}
	return out
}

// blocks cuts s at the start of each top-level Markdown block.
func blocks(s string) []string {
	src := []byte(s)
	doc := md.Parser().Parse(text.NewReader(src))

	var starts []int
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		off, ok := firstOffset(n)
		if !ok {
			continue
		}
		start := lineStart(src, off)
		// fenced code lines start after the opening fence
		if _, fenced := n.(*ast.FencedCodeBlock); fenced && start > 0 {
			start = lineStart(src, start-1)
		}
		starts = append(starts, start)
	}
	if len(starts) == 0 || starts[0] != 0 {
		starts = append([]int{0}, starts...)
	}

	var out []string
	for i, start := range starts {
		end := len(src)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		if end > start {
			out = append(out, s[start:end])
		}
	}
	return out
}

func firstOffset(n ast.Node) (int, bool) {
	if n.Type() == ast.TypeBlock {
		if lines := n.Lines(); lines != nil && lines.Len() > 0 {
			return lines.At(0).Start, true
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Type() != ast.TypeBlock {
			continue
		}
		if off, ok := firstOffset(c); ok {
			return off, true
		}
	}
	return 0, false
}

func lineStart(src []byte, off int) int {
	for off > 0 && src[off-1] != '\n' {
		off--
	}
	return off
}

func hardSplit(s string, limit int) []string {
	var out []string
	for utf8.RuneCountInString(s) > limit {
		cut := 0
		for i := 0; i < limit; i++ {
			_, size := utf8.DecodeRuneInString(s[cut:])
			cut += size
		}
		out = append(out, s[:cut])
		s = s[cut:]
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}
