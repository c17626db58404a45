// Package buffer implements the conversation surface: a rune-indexed text
// document that carries role annotations over ranges of its characters.
//
// The buffer is the only source of truth for who said what. Text is stored as
// runes so every offset is a character offset, and an ordered list of spans
// records which ranges belong to the user and which to the assistant. Spans
// follow the text as it is edited: insertions shift or split them and deletions
// clip them.
//
// # Edit hooks
//
// Insert and Delete are user edits: after the text changes, every registered
// EditHook is called with the affected range. InsertQuiet and AppendQuiet are
// programmatic writes (markers, model replies) and never fire hooks.
//
// A Buffer is not safe for concurrent use. Callers run all mutations on one
// goroutine (the bubbletea update loop in this program).
package buffer

import "fmt"

// EditHook is called after a user edit changed the characters in [begin, end).
// For deletions begin == end.
type EditHook func(b *Buffer, begin, end int)

// Buffer holds the text of one conversation and its role annotations.
type Buffer struct {
	text  []rune
	spans []Span // sorted by Begin, non-overlapping
	point int
	hooks []EditHook
}

// New creates an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// Len returns the number of characters in the buffer.
func (b *Buffer) Len() int {
	return len(b.text)
}

// Text returns the whole document.
func (b *Buffer) Text() string {
	return string(b.text)
}

// Substring returns the characters in [begin, end).
func (b *Buffer) Substring(begin, end int) string {
	b.checkRange(begin, end)
	return string(b.text[begin:end])
}

// Point returns the insertion point.
func (b *Buffer) Point() int {
	return b.point
}

// SetPoint moves the insertion point.
func (b *Buffer) SetPoint(pos int) {
	b.checkPos(pos)
	b.point = pos
}

// AddEditHook registers h to run after every user edit.
func (b *Buffer) AddEditHook(h EditHook) {
	b.hooks = append(b.hooks, h)
}

// ClearEditHooks removes all edit hooks.
func (b *Buffer) ClearEditHooks() {
	b.hooks = nil
}

// Clear empties the document, drops all spans and hooks, and resets the point.
func (b *Buffer) Clear() {
	b.text = nil
	b.spans = nil
	b.hooks = nil
	b.point = 0
}

// Insert inserts text at pos as a user edit and fires the edit hooks over the
// inserted range. It returns the end offset of the inserted text.
func (b *Buffer) Insert(pos int, text string) int {
	end := b.insert(pos, text)
	b.runHooks(pos, end)
	return end
}

// InsertQuiet inserts text at pos without firing edit hooks.
func (b *Buffer) InsertQuiet(pos int, text string) int {
	return b.insert(pos, text)
}

// Append inserts text at the end of the buffer as a user edit.
func (b *Buffer) Append(text string) int {
	return b.Insert(len(b.text), text)
}

// AppendQuiet inserts text at the end of the buffer without firing edit hooks.
func (b *Buffer) AppendQuiet(text string) int {
	return b.insert(len(b.text), text)
}

// Delete removes the characters in [begin, end) as a user edit. Hooks are
// called with the collapsed range (begin, begin).
func (b *Buffer) Delete(begin, end int) {
	b.checkRange(begin, end)
	if begin == end {
		return
	}
	n := end - begin
	b.text = append(b.text[:begin], b.text[end:]...)

	shift := func(x int) int {
		switch {
		case x <= begin:
			return x
		case x <= end:
			return begin
		default:
			return x - n
		}
	}

	kept := b.spans[:0]
	for _, s := range b.spans {
		width := s.End - s.Begin
		s.Begin, s.End = shift(s.Begin), shift(s.End)
		if width > 0 && s.Begin == s.End {
			continue
		}
		kept = append(kept, s)
	}
	b.spans = kept
	b.point = shift(b.point)
	b.normalize()
	b.runHooks(begin, begin)
}

func (b *Buffer) insert(pos int, text string) int {
	b.checkPos(pos)
	runes := []rune(text) // invalid UTF-8 becomes U+FFFD
	n := len(runes)
	if n == 0 {
		return pos
	}

	grown := make([]rune, 0, len(b.text)+n)
	grown = append(grown, b.text[:pos]...)
	grown = append(grown, runes...)
	grown = append(grown, b.text[pos:]...)
	b.text = grown

	out := make([]Span, 0, len(b.spans)+1)
	for _, s := range b.spans {
		switch {
		case s.Begin >= pos:
			// at or after the insertion: shift
			s.Begin += n
			s.End += n
			out = append(out, s)
		case s.End <= pos:
			out = append(out, s)
		default:
			// inserted text lands inside the span and stays untagged
			out = append(out,
				Span{Role: s.Role, Begin: s.Begin, End: pos},
				Span{Role: s.Role, Begin: pos + n, End: s.End + n})
		}
	}
	b.spans = out

	if b.point >= pos {
		b.point += n
	}
	return pos + n
}

func (b *Buffer) runHooks(begin, end int) {
	for _, h := range b.hooks {
		h(b, begin, end)
	}
}

func (b *Buffer) checkPos(pos int) {
	if pos < 0 || pos > len(b.text) {
		panic(fmt.Sprintf("buffer: position %d out of range [0,%d]", pos, len(b.text)))
	}
}

func (b *Buffer) checkRange(begin, end int) {
	if begin < 0 || end > len(b.text) || begin > end {
		panic(fmt.Sprintf("buffer: range [%d,%d) out of range [0,%d]", begin, end, len(b.text)))
	}
}
