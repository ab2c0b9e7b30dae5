package core

import (
	"context"
	"errors"
	"sync"
	"time"
)

// memStore is an in-memory Store. Rows are keyed by table and rendered
// conflict key; writes become visible on Commit.
type memStore struct {
	mu      sync.Mutex
	tables  map[string]map[string]map[string]any
	lengths map[string]int // "table.column" -> length

	// failUpsert, when set, is consulted for every row written.
	failUpsert func(plan UpsertPlan, row map[string]any) error

	begins    int
	commits   int
	rollbacks int
	created   []string
	closed    bool
}

func newMemStore(tables ...string) *memStore {
	s := &memStore{
		tables:  make(map[string]map[string]map[string]any),
		lengths: make(map[string]int),
	}
	for _, t := range tables {
		s.tables[t] = make(map[string]map[string]any)
	}
	return s
}

func (s *memStore) Begin(ctx context.Context) (Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.begins++
	return &memTx{store: s}, nil
}

func (s *memStore) TableExists(ctx context.Context, table string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tables[table]
	return ok, nil
}

func (s *memStore) CreateTable(ctx context.Context, profile EntityProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[profile.TargetTable]; !ok {
		s.tables[profile.TargetTable] = make(map[string]map[string]any)
		s.created = append(s.created, profile.TargetTable)
	}
	for _, c := range profile.Columns {
		if c.Length > 0 {
			s.lengths[profile.TargetTable+"."+c.Name] = c.Length
		}
	}
	return nil
}

func (s *memStore) ColumnLength(ctx context.Context, table, column string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lengths[table+"."+column], nil
}

func (s *memStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *memStore) rows(table string) map[string]map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tables[table]
}

type pendingRow struct {
	plan UpsertPlan
	row  map[string]any
}

type memTx struct {
	store   *memStore
	pending []pendingRow
	done    bool
}

func (tx *memTx) Upsert(ctx context.Context, plan UpsertPlan, values []any) error {
	row := make(map[string]any, len(values))
	for i, c := range plan.Columns {
		row[c] = values[i]
	}
	if f := tx.store.failUpsert; f != nil {
		if err := f(plan, row); err != nil {
			return err
		}
	}
	tx.pending = append(tx.pending, pendingRow{plan: plan, row: row})
	return nil
}

func (tx *memTx) Commit(ctx context.Context) error {
	if tx.done {
		return errors.New("tx closed")
	}
	tx.done = true

	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits++
	for _, p := range tx.pending {
		table, ok := s.tables[p.plan.Table]
		if !ok {
			return errors.New("no such table: " + p.plan.Table)
		}
		key := RecordKey(RecordOf(flatten(p.row)...), p.plan.ConflictKey)
		existing, ok := table[key]
		if !ok {
			table[key] = p.row
			continue
		}
		for c, v := range p.row {
			if !containsString(p.plan.Preserve, c) {
				existing[c] = v
			}
		}
	}
	return nil
}

func (tx *memTx) Rollback(ctx context.Context) error {
	if tx.done {
		return nil
	}
	tx.done = true
	tx.store.mu.Lock()
	tx.store.rollbacks++
	tx.store.mu.Unlock()
	return nil
}

func flatten(m map[string]any) []any {
	out := make([]any, 0, len(m)*2)
	for k, v := range m {
		out = append(out, k, v)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// memSources serves record sets by name; absent names are not found.
type memSources struct {
	sets map[string]RecordSet
	errs map[string]error
}

func (m memSources) Read(ctx context.Context, name string) (RecordSet, error) {
	if err, ok := m.errs[name]; ok {
		return RecordSet{}, err
	}
	set, ok := m.sets[name]
	if !ok {
		return RecordSet{}, ErrSourceNotFound
	}
	return set, nil
}

// recordingTimer is a backoff.Timer that fires immediately and records
// the requested delays.
type recordingTimer struct {
	delays []time.Duration
	c      chan time.Time
}

func newRecordingTimer() *recordingTimer {
	return &recordingTimer{c: make(chan time.Time, 1)}
}

func (t *recordingTimer) Start(d time.Duration) {
	t.delays = append(t.delays, d)
	t.c <- time.Now()
}

func (t *recordingTimer) Stop() {}

func (t *recordingTimer) C() <-chan time.Time { return t.c }

// setOf builds a RecordSet whose columns are the first record's fields.
func setOf(records ...Record) RecordSet {
	set := RecordSet{Records: records}
	if len(records) > 0 {
		set.Columns = append([]string(nil), records[0].Fields()...)
	}
	return set
}
