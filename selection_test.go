package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntry(rel string, size uint64) Entry {
	return Entry{
		Path:     "/work/" + rel,
		RelPath:  rel,
		Target:   "node_modules",
		Category: "node",
		Size:     size,
	}
}

func newTestSelection(t *testing.T, rels ...string) *SelectionModel {
	t.Helper()
	s := NewSelectionModel()
	for i, rel := range rels {
		require.True(t, s.Add(testEntry(rel, uint64(i+1)*10)))
	}
	return s
}

func visiblePaths(s *SelectionModel) []string {
	var out []string
	for _, e := range s.Visible() {
		out = append(out, e.RelPath)
	}
	return out
}

func TestSelectionAddRejectsDuplicates(t *testing.T) {
	s := newTestSelection(t, "a/node_modules")
	assert.False(t, s.Add(testEntry("a/node_modules", 99)))
	assert.False(t, s.Add(Entry{}))
	assert.Equal(t, 1, s.Len())
}

func TestSelectionToggleTwiceIsIdentity(t *testing.T) {
	s := newTestSelection(t, "a/node_modules", "b/node_modules")
	s.Next()

	before := s.IsOn(s.Visible()[0])
	require.True(t, s.Toggle())
	require.True(t, s.Toggle())
	assert.Equal(t, before, s.IsOn(s.Visible()[0]))
}

func TestSelectionToggleIgnoresNonIdle(t *testing.T) {
	s := newTestSelection(t, "a/node_modules")
	s.Next()
	s.update("/work/a/node_modules", func(e *Entry) { e.State = LifecyclePending })

	assert.False(t, s.Toggle())
	assert.False(t, s.SetOnAndNext())
	e, _ := s.Get("/work/a/node_modules")
	assert.False(t, e.On)
}

func TestSelectionToggleWithoutCursor(t *testing.T) {
	s := newTestSelection(t, "a/node_modules")
	assert.False(t, s.Toggle())
}

func TestSelectionGroupCycle(t *testing.T) {
	s := newTestSelection(t, "a/node_modules", "b/node_modules")
	assert.Equal(t, GroupPerItem, s.Group())

	assert.Equal(t, GroupAllOn, s.ToggleGroup())
	assert.Equal(t, GroupAllOff, s.ToggleGroup())
	assert.Equal(t, GroupAllOn, s.ToggleGroup(), "no entry is individually on")
}

func TestSelectionGroupAllOffStaysWhenAnyVisibleOn(t *testing.T) {
	s := newTestSelection(t, "a/node_modules", "b/node_modules")
	s.Next()
	require.True(t, s.Toggle())

	assert.Equal(t, GroupAllOn, s.ToggleGroup())
	assert.Equal(t, GroupAllOff, s.ToggleGroup())
	assert.Equal(t, GroupAllOff, s.ToggleGroup())
}

func TestSelectionIndividualToggleLeavesGroupMode(t *testing.T) {
	s := newTestSelection(t, "a/node_modules", "b/node_modules", "c/node_modules")
	s.ToggleGroup()
	require.Equal(t, GroupAllOn, s.Group())

	s.Next()
	require.True(t, s.Toggle())
	assert.Equal(t, GroupPerItem, s.Group())

	got := s.ItemsToDelete()
	require.Len(t, got, 1, "entries fall back to their own flags")
	assert.Equal(t, "a/node_modules", got[0].RelPath)
}

func TestSelectionGroupModeKeepsOwnFlags(t *testing.T) {
	s := newTestSelection(t, "a/node_modules", "b/node_modules", "c/node_modules")
	s.Next()
	s.Next()
	require.True(t, s.Toggle())

	s.SetFilter("c/")
	s.ToggleGroup()
	s.ToggleGroup()
	require.Equal(t, GroupAllOff, s.Group())

	s.Next()
	require.True(t, s.SetOnAndNext())
	s.ClearFilter()

	var on []string
	for _, e := range s.Visible() {
		if s.IsOn(e) {
			on = append(on, e.RelPath)
		}
	}
	assert.Equal(t, []string{"b/node_modules", "c/node_modules"}, on, "hidden flags survive group mode")
}

func TestSelectionGroupCycleIgnoresFailedEntries(t *testing.T) {
	s := newTestSelection(t, "a/node_modules", "b/node_modules")
	s.Next()
	require.True(t, s.Toggle())
	s.update("/work/a/node_modules", func(e *Entry) { e.State = LifecycleFailed })

	var cycle []GroupSelection
	for range 4 {
		cycle = append(cycle, s.ToggleGroup())
	}
	assert.Equal(t, []GroupSelection{GroupAllOn, GroupAllOff, GroupAllOn, GroupAllOff}, cycle)
}

func TestSelectionNextPreviousRoundTrip(t *testing.T) {
	s := newTestSelection(t, "a/node_modules", "b/node_modules", "c/node_modules")

	s.Next()
	assert.Equal(t, 0, s.CursorIndex())
	for range 5 {
		before := s.CursorIndex()
		s.Next()
		s.Previous()
		assert.Equal(t, before, s.CursorIndex())
		s.Next()
	}

	s.Unselect()
	s.Previous()
	assert.Equal(t, 2, s.CursorIndex(), "unset cursor goes to last")
	s.Next()
	assert.Equal(t, 0, s.CursorIndex(), "wraps to first")
}

func TestSelectionNavigationOnEmptyView(t *testing.T) {
	s := NewSelectionModel()
	s.Next()
	assert.Equal(t, -1, s.CursorIndex())
	s.Previous()
	_, ok := s.Selected()
	assert.False(t, ok)
}

func TestSelectionFilterClearsHiddenCursor(t *testing.T) {
	s := newTestSelection(t, "web/node_modules", "api/node_modules")
	s.Next()
	require.Equal(t, "web/node_modules", mustSelected(t, s).RelPath)

	s.SetFilter("API")
	assert.Equal(t, []string{"api/node_modules"}, visiblePaths(s))
	assert.Equal(t, -1, s.CursorIndex())

	s.Next()
	assert.Equal(t, "api/node_modules", mustSelected(t, s).RelPath)

	s.SetFilter("api/")
	assert.Equal(t, 0, s.CursorIndex(), "still visible, cursor kept")

	s.ClearFilter()
	assert.Len(t, s.Visible(), 2)
	assert.Equal(t, "", s.Filter())
}

func TestSelectionFilterNormalizesUnicode(t *testing.T) {
	s := newTestSelection(t, "café/node_modules", "tea/node_modules")
	s.SetFilter("CAFÉ")
	assert.Equal(t, []string{"café/node_modules"}, visiblePaths(s))
}

func TestSelectionItemsToDelete(t *testing.T) {
	s := newTestSelection(t, "a/node_modules", "b/node_modules", "c/node_modules")
	assert.Empty(t, s.ItemsToDelete())

	s.Next()
	s.SetOnAndNext()
	s.SetOffAndNext()
	s.SetOnAndNext()
	got := s.ItemsToDelete()
	require.Len(t, got, 2)
	assert.Equal(t, "a/node_modules", got[0].RelPath)
	assert.Equal(t, "c/node_modules", got[1].RelPath)

	s.update("/work/c/node_modules", func(e *Entry) { e.State = LifecyclePending })
	assert.Len(t, s.ItemsToDelete(), 1, "non-idle entries are excluded")

	s.ToggleGroup()
	assert.Equal(t, GroupAllOn, s.Group())
	assert.Len(t, s.ItemsToDelete(), 2)

	s.SetFilter("b/")
	got = s.ItemsToDelete()
	require.Len(t, got, 1, "only visible entries")
	assert.Equal(t, "b/node_modules", got[0].RelPath)

	s.ToggleGroup()
	assert.Empty(t, s.ItemsToDelete())
}

func TestSelectionRemoveMovesCursor(t *testing.T) {
	s := newTestSelection(t, "a/node_modules", "b/node_modules", "c/node_modules")
	s.Next()
	s.Next()
	require.Equal(t, "b/node_modules", mustSelected(t, s).RelPath)

	_, ok := s.Remove("/work/b/node_modules")
	require.True(t, ok)
	assert.Equal(t, "c/node_modules", mustSelected(t, s).RelPath)

	s.Remove("/work/c/node_modules")
	assert.Equal(t, "a/node_modules", mustSelected(t, s).RelPath, "clamped to the new last entry")

	s.Remove("/work/a/node_modules")
	assert.Equal(t, -1, s.CursorIndex())
	assert.Equal(t, 0, s.Len())

	_, ok = s.Remove("/work/a/node_modules")
	assert.False(t, ok)
}

func TestSelectionRemoveKeepsOtherCursor(t *testing.T) {
	s := newTestSelection(t, "a/node_modules", "b/node_modules")
	s.Next()
	s.Remove("/work/b/node_modules")
	assert.Equal(t, "a/node_modules", mustSelected(t, s).RelPath)
}

func TestSelectionSortKeepsCursorOnEntry(t *testing.T) {
	s := NewSelectionModel()
	s.Add(testEntry("small/node_modules", 10))
	s.Add(testEntry("big/node_modules", 300))
	s.Add(testEntry("mid/node_modules", 50))
	s.Next()

	assert.Equal(t, sortBySizeDesc, s.CycleSort())
	assert.Equal(t, []string{"big/node_modules", "mid/node_modules", "small/node_modules"}, visiblePaths(s))
	assert.Equal(t, "small/node_modules", mustSelected(t, s).RelPath)

	assert.Equal(t, sortBySizeAsc, s.CycleSort())
	assert.Equal(t, []string{"small/node_modules", "mid/node_modules", "big/node_modules"}, visiblePaths(s))

	assert.Equal(t, sortByNameAsc, s.CycleSort())
	assert.Equal(t, []string{"big/node_modules", "mid/node_modules", "small/node_modules"}, visiblePaths(s))

	assert.Equal(t, sortByFound, s.CycleSort())
	assert.Equal(t, []string{"small/node_modules", "big/node_modules", "mid/node_modules"}, visiblePaths(s))
}

func TestSelectionNestedUnder(t *testing.T) {
	s := newTestSelection(t, "a/node_modules")
	parent, ok := s.NestedUnder("/work/a/node_modules/x/node_modules")
	assert.True(t, ok)
	assert.Equal(t, "/work/a/node_modules", parent)

	_, ok = s.NestedUnder("/work/a/node_modules2")
	assert.False(t, ok)
}

func mustSelected(t *testing.T, s *SelectionModel) Entry {
	t.Helper()
	e, ok := s.Selected()
	require.True(t, ok, "expected a cursor")
	return e
}
