package main

import "sort"

type ledgerStage int

const (
	stageNone ledgerStage = iota
	stageQueued
	stageCurrent
	stageHistory
	stageFailed
)

func (s ledgerStage) String() string {
	switch s {
	case stageQueued:
		return "queued"
	case stageCurrent:
		return "current"
	case stageHistory:
		return "history"
	case stageFailed:
		return "failed"
	default:
		return "none"
	}
}

type LedgerRecord struct {
	Path  string
	Size  uint64
	Stage ledgerStage
	Err   string
	seq   int
}

// ActionLedger tracks every path handed to the deletion pipeline. A path is
// in exactly one stage at a time; the buckets are views over that field.
type ActionLedger struct {
	records map[string]*LedgerRecord
	seq     int

	Current Counter
	History Counter
	Failed  Counter
}

func NewActionLedger() *ActionLedger {
	return &ActionLedger{records: map[string]*LedgerRecord{}}
}

func (l *ActionLedger) Stage(path string) ledgerStage {
	if rec, ok := l.records[path]; ok {
		return rec.Stage
	}
	return stageNone
}

func (l *ActionLedger) Record(path string) (LedgerRecord, bool) {
	rec, ok := l.records[path]
	if !ok {
		return LedgerRecord{}, false
	}
	return *rec, true
}

func (l *ActionLedger) put(path string, size uint64, stage ledgerStage, errText string) {
	l.seq++
	l.records[path] = &LedgerRecord{Path: path, Size: size, Stage: stage, Err: errText, seq: l.seq}
}

// Queue records a path as selected for deletion. Paths already queued or in
// flight are refused.
func (l *ActionLedger) Queue(path string, size uint64) bool {
	switch l.Stage(path) {
	case stageQueued, stageCurrent:
		return false
	}
	l.put(path, size, stageQueued, "")
	return true
}

// Start moves a path into the in-flight bucket.
func (l *ActionLedger) Start(path string, size uint64) bool {
	if l.Stage(path) == stageCurrent {
		return false
	}
	l.put(path, size, stageCurrent, "")
	l.Current.Add(size)
	return true
}

// Finish moves an in-flight path to history. Anything not in flight, or a
// size the running counter cannot absorb, is rejected without change.
func (l *ActionLedger) Finish(path string, size uint64) bool {
	if l.Stage(path) != stageCurrent || !l.Current.Remove(size) {
		return false
	}
	l.put(path, size, stageHistory, "")
	l.History.Add(size)
	return true
}

func (l *ActionLedger) Fail(path string, size uint64, reason string) bool {
	if l.Stage(path) != stageCurrent || !l.Current.Remove(size) {
		return false
	}
	l.put(path, size, stageFailed, reason)
	l.Failed.Add(size)
	return true
}

func (l *ActionLedger) bucket(stage ledgerStage) []LedgerRecord {
	var out []LedgerRecord
	for _, rec := range l.records {
		if rec.Stage == stage {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (l *ActionLedger) Queued() []LedgerRecord      { return l.bucket(stageQueued) }
func (l *ActionLedger) InFlight() []LedgerRecord    { return l.bucket(stageCurrent) }
func (l *ActionLedger) Completed() []LedgerRecord   { return l.bucket(stageHistory) }
func (l *ActionLedger) FailedItems() []LedgerRecord { return l.bucket(stageFailed) }

// Outstanding is the number of paths queued or in flight.
func (l *ActionLedger) Outstanding() int {
	n := 0
	for _, rec := range l.records {
		if rec.Stage == stageQueued || rec.Stage == stageCurrent {
			n++
		}
	}
	return n
}
