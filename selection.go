package main

import (
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

type GroupSelection int

const (
	GroupPerItem GroupSelection = iota
	GroupAllOn
	GroupAllOff
)

func (g GroupSelection) String() string {
	switch g {
	case GroupAllOn:
		return "all"
	case GroupAllOff:
		return "none"
	default:
		return "per item"
	}
}

type sortMode int

const (
	sortByFound sortMode = iota
	sortBySizeDesc
	sortBySizeAsc
	sortByNameAsc
)

func (m sortMode) String() string {
	switch m {
	case sortBySizeDesc:
		return "size ↓"
	case sortBySizeAsc:
		return "size ↑"
	case sortByNameAsc:
		return "name"
	default:
		return "found"
	}
}

func nextSortMode(current sortMode) sortMode {
	switch current {
	case sortByFound:
		return sortBySizeDesc
	case sortBySizeDesc:
		return sortBySizeAsc
	case sortBySizeAsc:
		return sortByNameAsc
	default:
		return sortByFound
	}
}

// SelectionModel holds the discovered entries and the user's view onto them.
// The visible sequence (filter + sort) is derived on every read; the cursor is
// stored by path and only ever resolves to a visible entry.
type SelectionModel struct {
	entries map[string]*Entry
	order   []string
	cursor  string
	filter  string
	needle  string
	group   GroupSelection
	sort    sortMode
}

func NewSelectionModel() *SelectionModel {
	return &SelectionModel{entries: map[string]*Entry{}}
}

func (s *SelectionModel) Len() int { return len(s.order) }

func (s *SelectionModel) Has(path string) bool {
	_, ok := s.entries[path]
	return ok
}

func (s *SelectionModel) Get(path string) (Entry, bool) {
	e, ok := s.entries[path]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Add appends a new entry. It reports false for a path that is already present.
func (s *SelectionModel) Add(e Entry) bool {
	if e.Path == "" || s.Has(e.Path) {
		return false
	}
	item := e
	s.entries[e.Path] = &item
	s.order = append(s.order, e.Path)
	return true
}

// Remove drops an entry from the live set. When it was under the cursor the
// cursor moves to whichever entry now occupies the same visible position.
func (s *SelectionModel) Remove(path string) (Entry, bool) {
	e, ok := s.entries[path]
	if !ok {
		return Entry{}, false
	}
	pos := -1
	if s.cursor == path {
		pos = s.CursorIndex()
	}
	delete(s.entries, path)
	if idx := slices.Index(s.order, path); idx >= 0 {
		s.order = slices.Delete(s.order, idx, idx+1)
	}
	if pos >= 0 {
		s.cursor = ""
		visible := s.visible()
		if len(visible) > 0 {
			s.cursor = visible[min(pos, len(visible)-1)].Path
		}
	}
	return *e, true
}

func (s *SelectionModel) update(path string, fn func(*Entry)) bool {
	e, ok := s.entries[path]
	if !ok {
		return false
	}
	fn(e)
	return true
}

// NestedUnder returns the live entry that contains path, if any.
func (s *SelectionModel) NestedUnder(path string) (string, bool) {
	for _, p := range s.order {
		if isWithin(p, path) {
			return p, true
		}
	}
	return "", false
}

func (s *SelectionModel) visible() []*Entry {
	out := make([]*Entry, 0, len(s.order))
	for _, p := range s.order {
		e := s.entries[p]
		if e.State == LifecycleDone {
			continue
		}
		if s.needle != "" && !strings.Contains(foldPath(e.RelPath), s.needle) {
			continue
		}
		out = append(out, e)
	}
	if s.sort == sortByFound {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		left, right := out[i], out[j]
		switch s.sort {
		case sortBySizeAsc:
			if left.Size == right.Size {
				return strings.ToLower(left.RelPath) < strings.ToLower(right.RelPath)
			}
			return left.Size < right.Size
		case sortByNameAsc:
			return strings.ToLower(left.RelPath) < strings.ToLower(right.RelPath)
		default:
			if left.Size == right.Size {
				return strings.ToLower(left.RelPath) < strings.ToLower(right.RelPath)
			}
			return left.Size > right.Size
		}
	})
	return out
}

// Visible returns copies of the entries that pass the filter, in display order.
func (s *SelectionModel) Visible() []Entry {
	visible := s.visible()
	out := make([]Entry, len(visible))
	for i, e := range visible {
		out[i] = *e
	}
	return out
}

// CursorIndex is the cursor's position in the visible sequence, or -1.
func (s *SelectionModel) CursorIndex() int {
	if s.cursor == "" {
		return -1
	}
	for i, e := range s.visible() {
		if e.Path == s.cursor {
			return i
		}
	}
	return -1
}

func (s *SelectionModel) Selected() (Entry, bool) {
	if s.CursorIndex() < 0 {
		return Entry{}, false
	}
	return s.Get(s.cursor)
}

func (s *SelectionModel) Unselect() { s.cursor = "" }

func (s *SelectionModel) Next() {
	visible := s.visible()
	if len(visible) == 0 {
		s.cursor = ""
		return
	}
	idx := s.CursorIndex()
	if idx < 0 {
		s.cursor = visible[0].Path
		return
	}
	s.cursor = visible[(idx+1)%len(visible)].Path
}

func (s *SelectionModel) Previous() {
	visible := s.visible()
	if len(visible) == 0 {
		s.cursor = ""
		return
	}
	idx := s.CursorIndex()
	if idx < 0 {
		s.cursor = visible[len(visible)-1].Path
		return
	}
	s.cursor = visible[(idx+len(visible)-1)%len(visible)].Path
}

func (s *SelectionModel) Filter() string { return s.filter }

// SetFilter replaces the filter text. An empty string removes the filter.
// A cursor that falls outside the new visible set is cleared.
func (s *SelectionModel) SetFilter(text string) {
	s.filter = text
	s.needle = foldPath(text)
	if s.cursor != "" && s.CursorIndex() < 0 {
		s.cursor = ""
	}
}

func (s *SelectionModel) ClearFilter() { s.SetFilter("") }

func (s *SelectionModel) Sort() sortMode { return s.sort }

func (s *SelectionModel) CycleSort() sortMode {
	s.sort = nextSortMode(s.sort)
	return s.sort
}

func (s *SelectionModel) Group() GroupSelection { return s.group }

// IsOn reports the effective selection of e under the current group state.
func (s *SelectionModel) IsOn(e Entry) bool {
	switch s.group {
	case GroupAllOn:
		return true
	case GroupAllOff:
		return false
	default:
		return e.On
	}
}

// ToggleGroup cycles the group state: per item -> all on -> all off, and
// all off -> all on only when no visible entry is individually on.
func (s *SelectionModel) ToggleGroup() GroupSelection {
	switch s.group {
	case GroupAllOn:
		s.group = GroupAllOff
	case GroupAllOff:
		if s.anyVisibleOn() {
			s.group = GroupAllOff
		} else {
			s.group = GroupAllOn
		}
	default:
		s.group = GroupAllOn
	}
	return s.group
}

// anyVisibleOn ignores entries that can no longer be toggled, so a failed
// entry left on does not pin the group at all off.
func (s *SelectionModel) anyVisibleOn() bool {
	for _, e := range s.visible() {
		if e.Idle() && e.On {
			return true
		}
	}
	return false
}

// toPerItem leaves group mode. Entries fall back to their own flags.
func (s *SelectionModel) toPerItem() {
	s.group = GroupPerItem
}

// Toggle flips the entry under the cursor. Non-idle entries are left alone.
func (s *SelectionModel) Toggle() bool {
	e, ok := s.cursorEntry()
	if !ok || !e.Idle() {
		return false
	}
	s.toPerItem()
	e.On = !e.On
	return true
}

func (s *SelectionModel) SetOnAndNext() bool  { return s.setAndNext(true) }
func (s *SelectionModel) SetOffAndNext() bool { return s.setAndNext(false) }

func (s *SelectionModel) setAndNext(on bool) bool {
	changed := false
	if e, ok := s.cursorEntry(); ok && e.Idle() {
		s.toPerItem()
		e.On = on
		changed = true
	}
	s.Next()
	return changed
}

func (s *SelectionModel) cursorEntry() (*Entry, bool) {
	if s.CursorIndex() < 0 {
		return nil, false
	}
	e, ok := s.entries[s.cursor]
	return e, ok
}

// ItemsToDelete resolves the group state against the visible entries and
// keeps only those that are idle.
func (s *SelectionModel) ItemsToDelete() []Entry {
	if s.group == GroupAllOff {
		return nil
	}
	var out []Entry
	for _, e := range s.visible() {
		if !e.Idle() {
			continue
		}
		if s.group == GroupAllOn || e.On {
			out = append(out, *e)
		}
	}
	return out
}

func foldPath(text string) string {
	return norm.NFC.String(strings.ToLower(text))
}
