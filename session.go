package main

import (
	"time"

	"github.com/rs/zerolog"
)

// Session is all mutable state of a run. It is owned by the UI loop and only
// changes through Apply and the input operations below.
type Session struct {
	Sel    *SelectionModel
	Ledger *ActionLedger

	Scanning   bool
	ScanDone   bool
	Visited    uint64
	Found      uint64
	Warnings   []string
	ScanErr    error
	ScanTime   time.Duration
	SearchMode bool
	Running    bool
	Ticks      uint64
	LastTick   time.Time

	log zerolog.Logger
}

func NewSession(log zerolog.Logger) *Session {
	return &Session{
		Sel:     NewSelectionModel(),
		Ledger:  NewActionLedger(),
		Running: true,
		log:     log,
	}
}

// Apply folds one producer event into the session. It reports whether the
// event changed anything; inconsistent events are dropped, never fatal.
func (s *Session) Apply(ev Event) bool {
	switch ev := ev.(type) {
	case ScanStarted:
		s.Scanning = true
		s.ScanDone = false
		return true

	case ScanProgress:
		if ev.Visited < s.Visited {
			return false
		}
		s.Visited = ev.Visited
		return true

	case ScanFound:
		if s.Sel.Has(ev.Path) {
			s.log.Debug().Str("path", ev.Path).Msg("duplicate found event dropped")
			return false
		}
		if parent, nested := s.Sel.NestedUnder(ev.Path); nested {
			s.log.Debug().Str("path", ev.Path).Str("parent", parent).Msg("nested found event dropped")
			return false
		}
		s.Sel.Add(Entry{
			Path:     ev.Path,
			RelPath:  ev.RelPath,
			Target:   ev.Target,
			Category: ev.Category,
			Size:     ev.Size,
		})
		return true

	case ScanFinished:
		s.Scanning = false
		s.ScanDone = true
		s.Visited = ev.Visited
		s.Found = ev.Found
		s.Warnings = ev.Warnings
		s.ScanErr = ev.Err
		s.ScanTime = ev.Elapsed
		return true

	case Deleting:
		entry, ok := s.Sel.Get(ev.Path)
		if !ok || !entry.Idle() {
			s.log.Debug().Str("path", ev.Path).Msg("deleting event for unknown or busy entry")
			return false
		}
		if !s.Ledger.Start(ev.Path, ev.Size) {
			return false
		}
		s.Sel.update(ev.Path, func(e *Entry) { e.State = LifecyclePending })
		return true

	case Deleted:
		if !s.Ledger.Finish(ev.Path, ev.Size) {
			s.log.Warn().Str("path", ev.Path).Uint64("size", ev.Size).Msg("deleted event rejected by ledger")
			return false
		}
		s.Sel.update(ev.Path, func(e *Entry) { e.State = LifecycleDone })
		s.Sel.Remove(ev.Path)
		return true

	case DeleteFailed:
		if !s.Ledger.Fail(ev.Path, ev.Size, ev.Reason) {
			s.log.Warn().Str("path", ev.Path).Uint64("size", ev.Size).Msg("failed event rejected by ledger")
			return false
		}
		s.Sel.update(ev.Path, func(e *Entry) {
			e.State = LifecycleFailed
			e.Reason = ev.Reason
		})
		return true

	case Tick:
		s.Ticks++
		s.LastTick = ev.At
		return true
	}
	return false
}

func (s *Session) Quit() { s.Running = false }

func (s *Session) ToggleCurrent() bool { return s.Sel.Toggle() }
func (s *Session) SetOnAndNext() bool  { return s.Sel.SetOnAndNext() }
func (s *Session) SetOffAndNext() bool { return s.Sel.SetOffAndNext() }
func (s *Session) Next()               { s.Sel.Next() }
func (s *Session) Previous()           { s.Sel.Previous() }

func (s *Session) ToggleGroup() GroupSelection { return s.Sel.ToggleGroup() }
func (s *Session) CycleSort() sortMode         { return s.Sel.CycleSort() }

func (s *Session) EnterSearch() { s.SearchMode = true }
func (s *Session) ExitSearch()  { s.SearchMode = false }

func (s *Session) AppendFilter(r rune) {
	s.Sel.SetFilter(s.Sel.Filter() + string(r))
}

// RemoveFilterChar drops the last rune of the filter. Emptying the filter
// removes it and leaves search mode.
func (s *Session) RemoveFilterChar() {
	runes := []rune(s.Sel.Filter())
	if len(runes) == 0 {
		s.SearchMode = false
		return
	}
	s.Sel.SetFilter(string(runes[:len(runes)-1]))
	if s.Sel.Filter() == "" {
		s.SearchMode = false
	}
}

func (s *Session) ClearFilter() {
	s.Sel.ClearFilter()
	s.SearchMode = false
}

// ItemsToDelete is the selection result minus anything the ledger already
// holds as queued or in flight.
func (s *Session) ItemsToDelete() []Entry {
	items := s.Sel.ItemsToDelete()
	out := items[:0]
	for _, e := range items {
		switch s.Ledger.Stage(e.Path) {
		case stageQueued, stageCurrent:
			continue
		}
		out = append(out, e)
	}
	return out
}

// Selected sums the entries the next commit would delete.
func (s *Session) Selected() Counter {
	var c Counter
	for _, e := range s.ItemsToDelete() {
		c.Add(e.Size)
	}
	return c
}

// CommitDelete queues the current selection in the ledger and returns the
// batch for the deletion pipeline.
func (s *Session) CommitDelete() []Entry {
	return s.commit(s.ItemsToDelete())
}

// CommitPaths re-resolves a batch frozen earlier (by a confirmation prompt)
// against the live model and queues what is still deletable.
func (s *Session) CommitPaths(paths []string) []Entry {
	var items []Entry
	for _, p := range paths {
		e, ok := s.Sel.Get(p)
		if !ok || !e.Idle() {
			continue
		}
		switch s.Ledger.Stage(p) {
		case stageQueued, stageCurrent:
			continue
		}
		items = append(items, e)
	}
	return s.commit(items)
}

func (s *Session) commit(items []Entry) []Entry {
	out := items[:0]
	for _, e := range items {
		if s.Ledger.Queue(e.Path, e.Size) {
			out = append(out, e)
		}
	}
	if len(out) > 0 {
		s.log.Info().Int("count", len(out)).Msg("delete batch queued")
	}
	return out
}

// DeleteProgress reports finished and total counts for the current delete run.
func (s *Session) DeleteProgress() (done, total int) {
	done = s.Ledger.History.Count + s.Ledger.Failed.Count
	return done, done + s.Ledger.Outstanding()
}
