// Grapheme cluster helpers for Unicode-aware text operations.
//
// Triple-unit model: a Go string is stored as bytes, but every cursor
// position, selection bound, and motion result in this package is a
// grapheme index (the logical "character" a user perceives), never a byte
// offset or a display column. Display columns (terminal cells — ASCII is
// one, CJK/emoji are two) are a separate, narrower concern used only by
// vertical-motion target-column math.
//
// Grounded on internal/ui/shared/vimtextarea/grapheme.go from the teacher
// repository, generalized from a single-line cursor helper into the
// multi-line LineBuf's index-table cache (see buffer.go).
package linebuf

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// GraphemeCount returns the number of grapheme clusters in s.
func GraphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// GraphemeAt returns the grapheme cluster at the given grapheme index, or
// "" if out of bounds.
func GraphemeAt(s string, idx int) string {
	if idx < 0 {
		return ""
	}
	i := 0
	state := -1
	for len(s) > 0 {
		cluster, rest, _, newState := uniseg.StepString(s, state)
		if i == idx {
			return cluster
		}
		i++
		s = rest
		state = newState
	}
	return ""
}

// GraphemeToByteOffset converts a grapheme index to a byte offset.
func GraphemeToByteOffset(s string, graphemeIdx int) int {
	if graphemeIdx <= 0 {
		return 0
	}
	idx := 0
	state := -1
	original := s
	for len(s) > 0 {
		_, rest, _, newState := uniseg.StepString(s, state)
		idx++
		if idx == graphemeIdx {
			return len(original) - len(rest)
		}
		s = rest
		state = newState
	}
	return len(original)
}

// ByteToGraphemeOffset converts a byte offset to the grapheme index it
// falls within.
func ByteToGraphemeOffset(s string, byteOffset int) int {
	if byteOffset <= 0 {
		return 0
	}
	if byteOffset >= len(s) {
		return GraphemeCount(s)
	}
	idx := 0
	pos := 0
	state := -1
	for len(s) > 0 {
		cluster, rest, _, newState := uniseg.StepString(s, state)
		next := pos + len(cluster)
		if byteOffset < next {
			return idx
		}
		idx++
		pos = next
		s = rest
		state = newState
	}
	return idx
}

// SliceByGraphemes returns the substring spanning grapheme indices
// [start, end).
func SliceByGraphemes(s string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end < start {
		return ""
	}
	startByte := GraphemeToByteOffset(s, start)
	endByte := GraphemeToByteOffset(s, end)
	if startByte >= len(s) {
		return ""
	}
	if endByte > len(s) {
		endByte = len(s)
	}
	return s[startByte:endByte]
}

// GraphemeDisplayWidth returns the terminal-cell width of one grapheme
// cluster.
func GraphemeDisplayWidth(cluster string) int {
	if cluster == "" {
		return 0
	}
	return runewidth.StringWidth(cluster)
}

// StringDisplayWidth returns the terminal-cell width of s.
func StringDisplayWidth(s string) int {
	return runewidth.StringWidth(s)
}

// CharClass partitions graphemes for word-motion boundary detection.
type CharClass int

const (
	ClassWhitespace CharClass = iota
	ClassAlphanum
	ClassSymbol
	ClassOther
)

// ClassOf classifies a single grapheme cluster.
func ClassOf(cluster string) CharClass {
	if cluster == "" {
		return ClassWhitespace
	}
	for _, r := range cluster {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			return ClassWhitespace
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_':
			return ClassAlphanum
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			return ClassAlphanum
		default:
			return ClassSymbol
		}
		break
	}
	return ClassOther
}

// IsWhitespace reports whether the grapheme cluster is whitespace.
func IsWhitespace(cluster string) bool {
	return ClassOf(cluster) == ClassWhitespace
}

// GraphemeIterator iterates grapheme clusters forward, tracking byte
// position and index.
type GraphemeIterator struct {
	original string
	rest     string
	state    int
	cluster  string
	bytePos  int
	index    int
	started  bool
}

// NewGraphemeIterator creates a forward iterator over s.
func NewGraphemeIterator(s string) *GraphemeIterator {
	return &GraphemeIterator{original: s, rest: s, state: -1, index: -1}
}

// Next advances to the next cluster; returns false at end of string.
func (g *GraphemeIterator) Next() bool {
	if len(g.rest) == 0 {
		return false
	}
	if g.started {
		g.bytePos = len(g.original) - len(g.rest)
		g.index++
	} else {
		g.bytePos = 0
		g.index = 0
		g.started = true
	}
	cluster, rest, _, newState := uniseg.StepString(g.rest, g.state)
	g.cluster = cluster
	g.rest = rest
	g.state = newState
	return true
}

// Cluster returns the current grapheme cluster.
func (g *GraphemeIterator) Cluster() string { return g.cluster }

// BytePos returns the current cluster's byte offset in the original string.
func (g *GraphemeIterator) BytePos() int { return g.bytePos }

// Index returns the current cluster's grapheme index.
func (g *GraphemeIterator) Index() int { return g.index }

// GraphemesInRange returns the grapheme clusters in [start, end).
func GraphemesInRange(s string, start, end int) []string {
	if start < 0 {
		start = 0
	}
	if end < start {
		return nil
	}
	var result []string
	idx := 0
	state := -1
	for len(s) > 0 {
		cluster, rest, _, newState := uniseg.StepString(s, state)
		if idx >= start && idx < end {
			result = append(result, cluster)
		}
		if idx >= end {
			break
		}
		idx++
		s = rest
		state = newState
	}
	return result
}

// InsertAtGrapheme inserts text at the given grapheme index.
func InsertAtGrapheme(s string, idx int, insert string) string {
	byteOffset := GraphemeToByteOffset(s, idx)
	return s[:byteOffset] + insert + s[byteOffset:]
}

// DeleteGraphemeRange deletes grapheme clusters in [start, end).
func DeleteGraphemeRange(s string, start, end int) string {
	startByte := GraphemeToByteOffset(s, start)
	endByte := GraphemeToByteOffset(s, end)
	return s[:startByte] + s[endByte:]
}

// joinNonEmpty joins the non-empty strings of parts with sep.
func joinNonEmpty(parts []string, sep string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
