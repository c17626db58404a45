package buffer

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndDeleteText(t *testing.T) {
	b := New()
	end := b.Insert(0, "héllo")
	assert.Equal(t, 5, end)
	assert.Equal(t, 5, b.Len())

	b.Insert(5, " world")
	assert.Equal(t, "héllo world", b.Text())
	assert.Equal(t, "éll", b.Substring(1, 4))

	b.Delete(0, 6)
	assert.Equal(t, "world", b.Text())
	assert.Equal(t, 5, b.Point())
}

func TestPointTracksEdits(t *testing.T) {
	b := New()
	b.AppendQuiet("abcdef")
	b.SetPoint(3)

	b.InsertQuiet(1, "XY")
	assert.Equal(t, 5, b.Point())

	b.InsertQuiet(b.Len(), "zz")
	assert.Equal(t, 5, b.Point(), "insertion after the point leaves it alone")

	b.Delete(0, 4)
	assert.Equal(t, 1, b.Point())
}

func TestTagRangeReplacesAndMerges(t *testing.T) {
	b := New()
	b.AppendQuiet("aaaabbbbcccc")

	b.TagRange(0, 4, RoleUser)
	b.TagRange(4, 8, RoleAssistant)
	b.TagRange(8, 12, RoleUser)
	require.Equal(t, []Span{
		{RoleUser, 0, 4},
		{RoleAssistant, 4, 8},
		{RoleUser, 8, 12},
	}, b.Spans())

	// Retagging the middle as user collapses everything into one span.
	b.TagRange(4, 8, RoleUser)
	assert.Equal(t, []Span{{RoleUser, 0, 12}}, b.Spans())

	// Tagging inside an existing span splits it.
	b.TagRange(2, 6, RoleAssistant)
	assert.Equal(t, []Span{
		{RoleUser, 0, 2},
		{RoleAssistant, 2, 6},
		{RoleUser, 6, 12},
	}, b.Spans())
}

func TestZeroWidthSpanIsWidenedByTagging(t *testing.T) {
	b := New()
	b.AppendQuiet("> User\n")
	b.TagRange(b.Len(), b.Len(), RoleUser)
	require.Equal(t, []Span{{RoleUser, 7, 7}}, b.Spans())

	end := b.AppendQuiet("hi")
	assert.Equal(t, []Span{{RoleUser, 9, 9}}, b.Spans(), "text inserted at a zero-width span pushes it")

	b.TagRange(7, end, RoleUser)
	assert.Equal(t, []Span{{RoleUser, 7, 9}}, b.Spans())
}

func TestInsertInsideSpanLeavesNewTextUntagged(t *testing.T) {
	b := New()
	b.AppendQuiet("assistant")
	b.TagRange(0, 9, RoleAssistant)

	b.InsertQuiet(4, "XX")
	assert.Equal(t, "assiXXstant", b.Text())
	assert.Equal(t, []Span{
		{RoleAssistant, 0, 4},
		{RoleAssistant, 6, 11},
	}, b.Spans())

	_, tagged := b.RoleAt(4)
	assert.False(t, tagged)
}

func TestDeleteClipsSpans(t *testing.T) {
	tests := []struct {
		name       string
		begin, end int
		want       []Span
	}{
		{"inside first span", 1, 3, []Span{{RoleUser, 0, 2}, {RoleAssistant, 2, 6}}},
		{"across boundary", 2, 6, []Span{{RoleUser, 0, 2}, {RoleAssistant, 2, 4}}},
		{"whole second span", 4, 8, []Span{{RoleUser, 0, 4}}},
		{"everything", 0, 8, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			b.AppendQuiet("uuuuaaaa")
			b.TagRange(0, 4, RoleUser)
			b.TagRange(4, 8, RoleAssistant)

			b.Delete(tt.begin, tt.end)
			got := b.Spans()
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeleteMergesNeighbours(t *testing.T) {
	b := New()
	b.AppendQuiet("aa--bb")
	b.TagRange(0, 2, RoleUser)
	b.TagRange(4, 6, RoleUser)

	b.Delete(2, 4)
	assert.Equal(t, []Span{{RoleUser, 0, 4}}, b.Spans())
}

func TestOverlapsRole(t *testing.T) {
	b := New()
	b.AppendQuiet("0123456789")
	b.TagRange(3, 6, RoleAssistant)

	tests := []struct {
		begin, end int
		want       bool
	}{
		{0, 3, false},
		{0, 4, true},
		{5, 10, true},
		{6, 10, false},
		{4, 4, false},
		{0, 10, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.OverlapsRole(tt.begin, tt.end, RoleAssistant), "[%d,%d)", tt.begin, tt.end)
	}
	assert.False(t, b.OverlapsRole(0, 10, RoleUser))
}

func TestRoleAt(t *testing.T) {
	b := New()
	b.AppendQuiet("abcdef")
	b.TagRange(2, 4, RoleUser)

	role, ok := b.RoleAt(2)
	assert.True(t, ok)
	assert.Equal(t, RoleUser, role)

	_, ok = b.RoleAt(4)
	assert.False(t, ok)
}

func TestSpansBackwardIsRestartable(t *testing.T) {
	b := New()
	b.AppendQuiet("aabbcc")
	b.TagRange(0, 2, RoleUser)
	b.TagRange(2, 4, RoleAssistant)
	b.TagRange(4, 6, RoleUser)

	first := slices.Collect(b.SpansBackward())
	second := slices.Collect(b.SpansBackward())

	want := []Span{{RoleUser, 4, 6}, {RoleAssistant, 2, 4}, {RoleUser, 0, 2}}
	assert.Equal(t, want, first)
	assert.Equal(t, want, second)

	// Stopping early and starting again still begins at the end.
	for s := range b.SpansBackward() {
		assert.Equal(t, want[0], s)
		break
	}
}

func TestSegments(t *testing.T) {
	b := New()
	b.AppendQuiet("> User\nHi\n\n> Assistant\nYo")
	b.TagRange(7, 9, RoleUser)
	b.TagRange(23, 25, RoleAssistant)

	segs := b.Segments()
	require.Len(t, segs, 4)
	assert.Equal(t, Segment{RoleNone, 0, "> User\n"}, segs[0])
	assert.Equal(t, Segment{RoleUser, 7, "Hi"}, segs[1])
	assert.Equal(t, Segment{RoleNone, 9, "\n\n> Assistant\n"}, segs[2])
	assert.Equal(t, Segment{RoleAssistant, 23, "Yo"}, segs[3])
}

func TestEditHooks(t *testing.T) {
	b := New()
	var calls [][2]int
	b.AddEditHook(func(_ *Buffer, begin, end int) {
		calls = append(calls, [2]int{begin, end})
	})

	b.Insert(0, "abc")
	b.InsertQuiet(3, "quiet")
	b.Delete(0, 1)

	assert.Equal(t, [][2]int{{0, 3}, {0, 0}}, calls)

	b.Clear()
	b.Insert(0, "x")
	assert.Len(t, calls, 2, "Clear drops hooks")
}

func TestOutOfRangePanics(t *testing.T) {
	b := New()
	b.AppendQuiet("abc")

	assert.Panics(t, func() { b.TagRange(0, 4, RoleUser) })
	assert.Panics(t, func() { b.TagRange(2, 1, RoleUser) })
	assert.Panics(t, func() { b.Insert(5, "x") })
	assert.Panics(t, func() { b.OverlapsRole(-1, 2, RoleAssistant) })
	assert.Panics(t, func() { b.RoleAt(3) })
}
