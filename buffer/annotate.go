package buffer

import (
	"cmp"
	"iter"
	"slices"
	"sort"
)

// Role identifies the author of a span of text.
type Role string

const (
	RoleNone      Role = ""
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Span is a role-tagged half-open range [Begin, End) of character offsets.
type Span struct {
	Role  Role
	Begin int
	End   int
}

// Len returns the number of characters covered by the span.
func (s Span) Len() int {
	return s.End - s.Begin
}

// Segment is a maximal run of text with a single role. Untagged runs carry
// RoleNone.
type Segment struct {
	Role  Role
	Begin int
	Text  string
}

// TagRange attaches role to the characters in [begin, end), replacing any tag
// they carried before. An empty range records a zero-width span at begin,
// which later edits at that position widen.
func (b *Buffer) TagRange(begin, end int, role Role) {
	b.checkRange(begin, end)

	if begin == end {
		for _, s := range b.spans {
			if s.Begin < begin && begin < s.End {
				return
			}
		}
		b.spans = append(b.spans, Span{Role: role, Begin: begin, End: end})
		b.normalize()
		return
	}

	out := make([]Span, 0, len(b.spans)+2)
	for _, s := range b.spans {
		if s.Begin == s.End {
			if s.Begin >= begin && s.Begin <= end {
				continue
			}
			out = append(out, s)
			continue
		}
		if s.End <= begin || s.Begin >= end {
			out = append(out, s)
			continue
		}
		if s.Begin < begin {
			out = append(out, Span{Role: s.Role, Begin: s.Begin, End: begin})
		}
		if s.End > end {
			out = append(out, Span{Role: s.Role, Begin: end, End: s.End})
		}
	}
	b.spans = append(out, Span{Role: role, Begin: begin, End: end})
	b.normalize()
}

// OverlapsRole reports whether any character in [begin, end) is tagged role.
func (b *Buffer) OverlapsRole(begin, end int, role Role) bool {
	b.checkRange(begin, end)
	if begin == end {
		return false
	}
	i := sort.Search(len(b.spans), func(i int) bool {
		return b.spans[i].End > begin
	})
	for ; i < len(b.spans) && b.spans[i].Begin < end; i++ {
		s := b.spans[i]
		if s.Role == role && s.Len() > 0 {
			return true
		}
	}
	return false
}

// RoleAt returns the role of the character at pos.
func (b *Buffer) RoleAt(pos int) (Role, bool) {
	b.checkRange(pos, pos+1)
	i := sort.Search(len(b.spans), func(i int) bool {
		return b.spans[i].End > pos
	})
	if i < len(b.spans) && b.spans[i].Begin <= pos {
		return b.spans[i].Role, true
	}
	return RoleNone, false
}

// Spans returns a copy of the spans in document order.
func (b *Buffer) Spans() []Span {
	return slices.Clone(b.spans)
}

// SpansBackward returns the spans from the end of the document toward the
// beginning. Every iteration is a fresh scan of the current spans.
func (b *Buffer) SpansBackward() iter.Seq[Span] {
	return func(yield func(Span) bool) {
		for i := len(b.spans) - 1; i >= 0; i-- {
			if i >= len(b.spans) {
				continue
			}
			if !yield(b.spans[i]) {
				return
			}
		}
	}
}

// Segments splits the whole document into runs of tagged and untagged text.
// Zero-width spans produce no segment.
func (b *Buffer) Segments() []Segment {
	var out []Segment
	pos := 0
	for _, s := range b.spans {
		if s.Len() == 0 {
			continue
		}
		if s.Begin > pos {
			out = append(out, Segment{Role: RoleNone, Begin: pos, Text: string(b.text[pos:s.Begin])})
		}
		out = append(out, Segment{Role: s.Role, Begin: s.Begin, Text: string(b.text[s.Begin:s.End])})
		pos = s.End
	}
	if pos < len(b.text) {
		out = append(out, Segment{Role: RoleNone, Begin: pos, Text: string(b.text[pos:])})
	}
	return out
}

// normalize sorts the spans and merges neighbours that share a role.
func (b *Buffer) normalize() {
	slices.SortStableFunc(b.spans, func(x, y Span) int {
		if c := cmp.Compare(x.Begin, y.Begin); c != 0 {
			return c
		}
		return cmp.Compare(x.Len(), y.Len())
	})

	merged := b.spans[:0]
	for _, s := range b.spans {
		if n := len(merged); n > 0 {
			prev := &merged[n-1]
			if prev.Role == s.Role && prev.End >= s.Begin {
				prev.End = max(prev.End, s.End)
				continue
			}
		}
		merged = append(merged, s)
	}
	b.spans = merged
}
