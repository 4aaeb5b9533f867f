// Package memory provides the in-memory implementation of the core
// persistence store. It is the authoritative state holder; the durable
// backends wrap it and snapshot its state after each commit.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"caseflow/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Company aliases domain.Company for in-memory persistence operations.
	Company = domain.Company
	// CompanyPatch aliases domain.CompanyPatch.
	CompanyPatch = domain.CompanyPatch
	// HistoryEntry aliases domain.HistoryEntry.
	HistoryEntry = domain.HistoryEntry
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type memoryState struct {
	companies map[string]Company
	order     []string
	history   []HistoryEntry
	seq       uint64
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Companies map[string]Company `json:"companies"`
	Order     []string           `json:"order"`
	History   []HistoryEntry     `json:"history"`
	Seq       uint64             `json:"seq"`
}

func newMemoryState() memoryState {
	return memoryState{companies: make(map[string]Company)}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.companies {
		cloned.companies[k] = cloneCompany(v)
	}
	cloned.order = append([]string(nil), s.order...)
	cloned.history = append([]HistoryEntry(nil), s.history...)
	cloned.seq = s.seq
	return cloned
}

func cloneCompany(c Company) Company {
	cp := c
	cp.Code = cloneStringPtr(c.Code)
	cp.ContactPerson = cloneStringPtr(c.ContactPerson)
	return cp
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Store provides an in-memory transactional store for the workflow domain.
type Store struct {
	mu      sync.RWMutex
	state   memoryState
	engine  *RulesEngine
	catalog domain.Catalog
	policy  domain.TransitionPolicy
	nowFn   func() time.Time
}

// Option customizes store construction.
type Option func(*Store)

// WithNowFunc overrides the transaction clock. Timestamps are expected in UTC.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// WithTransitionPolicy installs a transition policy on the store.
func WithTransitionPolicy(policy domain.TransitionPolicy) Option {
	return func(s *Store) { s.policy = policy }
}

// NewStore constructs an in-memory store validating against the supplied
// catalog and rules engine.
func NewStore(catalog domain.Catalog, engine *RulesEngine, opts ...Option) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	s := &Store{
		state:   newMemoryState(),
		engine:  engine,
		catalog: catalog,
		nowFn:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the status catalog the store validates against.
func (s *Store) Catalog() domain.Catalog { return s.catalog }

// transaction implements domain.Transaction against a cloned state.
type transaction struct {
	store   *Store
	state   *memoryState
	changes []Change
	now     time.Time
}

// view exposes a read-only snapshot of transactional state.
type view struct {
	state *memoryState
}

func (v view) ListCompanies() []Company {
	out := make([]Company, 0, len(v.state.order))
	for _, id := range v.state.order {
		if c, ok := v.state.companies[id]; ok {
			out = append(out, cloneCompany(c))
		}
	}
	return out
}

func (v view) FindCompany(id string) (Company, bool) {
	c, ok := v.state.companies[id]
	if !ok {
		return Company{}, false
	}
	return cloneCompany(c), true
}

func (v view) HistoryFor(id string) []HistoryEntry {
	return historyFor(v.state.history, id)
}

func (v view) History() []HistoryEntry {
	out := append([]HistoryEntry(nil), v.state.history...)
	sortHistory(out)
	return out
}

func historyFor(entries []HistoryEntry, id string) []HistoryEntry {
	var out []HistoryEntry
	for _, e := range entries {
		if e.CompanyID == id {
			out = append(out, e)
		}
	}
	sortHistory(out)
	return out
}

func sortHistory(entries []HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ChangedAt.Equal(entries[j].ChangedAt) {
			return entries[i].Seq < entries[j].Seq
		}
		return entries[i].ChangedAt.Before(entries[j].ChangedAt)
	})
}

// RunInTransaction executes fn within a transactional copy of the store state.
// Mutations commit only when fn and all registered rules pass.
func (s *Store) RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	tx := &transaction{store: s, state: &next, now: s.nowFn()}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, view{state: &next}, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = next
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(view{state: &snapshot})
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// UpsertCompanies replaces or inserts full company snapshots. Identifier is
// the merge key; first insertion determines the listing position. Phase is
// always recomputed from the incoming status.
func (tx *transaction) UpsertCompanies(companies []Company) ([]Company, error) {
	out := make([]Company, 0, len(companies))
	for _, incoming := range companies {
		if incoming.ID == "" {
			return nil, domain.InvalidEntryError{Reason: "company with empty id"}
		}
		phase, err := tx.store.catalog.PhaseOf(incoming.CurrentStatus)
		if err != nil {
			return nil, err
		}
		incoming.Phase = phase

		current, exists := tx.state.companies[incoming.ID]
		if exists {
			incoming.CreatedAt = current.CreatedAt
			if incoming.StatusChangedAt.IsZero() {
				incoming.StatusChangedAt = current.StatusChangedAt
			}
		} else {
			incoming.CreatedAt = tx.now
			if incoming.StatusChangedAt.IsZero() {
				incoming.StatusChangedAt = tx.now
			}
			tx.state.order = append(tx.state.order, incoming.ID)
		}
		incoming.UpdatedAt = tx.now
		tx.state.companies[incoming.ID] = cloneCompany(incoming)

		if exists {
			tx.recordChange(Change{Entity: domain.EntityCompany, Action: domain.ActionUpdate, Before: cloneCompany(current), After: cloneCompany(incoming)})
		} else {
			tx.recordChange(Change{Entity: domain.EntityCompany, Action: domain.ActionCreate, After: cloneCompany(incoming)})
		}
		out = append(out, cloneCompany(incoming))
	}
	return out, nil
}

// PatchCompany shallow-merges non-status fields into an existing record.
func (tx *transaction) PatchCompany(id string, patch CompanyPatch) (Company, error) {
	current, ok := tx.state.companies[id]
	if !ok {
		return Company{}, domain.NotFoundError{Entity: domain.EntityCompany, ID: id}
	}
	before := cloneCompany(current)
	if patch.Name != nil {
		current.Name = *patch.Name
	}
	if patch.Code != nil {
		current.Code = cloneStringPtr(patch.Code)
	}
	if patch.ContactPerson != nil {
		current.ContactPerson = cloneStringPtr(patch.ContactPerson)
	}
	current.UpdatedAt = tx.now
	tx.state.companies[id] = cloneCompany(current)
	tx.recordChange(Change{Entity: domain.EntityCompany, Action: domain.ActionUpdate, Before: before, After: cloneCompany(current)})
	return cloneCompany(current), nil
}

// TransitionCompany validates and applies a status change, appending exactly
// one history entry. The record update and the append share the transactional
// state, so either both commit or neither does.
func (tx *transaction) TransitionCompany(id string, to domain.Status, actor string, at time.Time) (Company, error) {
	current, ok := tx.state.companies[id]
	if !ok {
		return Company{}, domain.NotFoundError{Entity: domain.EntityCompany, ID: id}
	}
	phase, err := tx.store.catalog.PhaseOf(to)
	if err != nil {
		return Company{}, err
	}
	if tx.store.catalog.IsTerminal(current.CurrentStatus) {
		return Company{}, domain.TerminalStateError{ID: id, Status: current.CurrentStatus}
	}
	if to == current.CurrentStatus && tx.store.policy.RejectNoop {
		return Company{}, domain.NoopTransitionError{ID: id, Status: to}
	}
	if !tx.store.policy.Permits(current.CurrentStatus, to) {
		return Company{}, domain.TransitionDeniedError{ID: id, From: current.CurrentStatus, To: to}
	}
	if at.IsZero() {
		at = tx.now
	}

	before := cloneCompany(current)
	current.CurrentStatus = to
	current.Phase = phase
	current.StatusChangedAt = at
	current.UpdatedAt = tx.now

	entry := HistoryEntry{
		CompanyID:  id,
		FromStatus: before.CurrentStatus,
		ToStatus:   to,
		ChangedAt:  at,
		Actor:      actor,
	}
	if err := tx.appendHistory(entry); err != nil {
		return Company{}, err
	}
	tx.state.companies[id] = cloneCompany(current)
	tx.recordChange(Change{Entity: domain.EntityCompany, Action: domain.ActionTransition, Before: before, After: cloneCompany(current)})
	return cloneCompany(current), nil
}

// appendHistory validates and appends one audit entry. The log is append-only;
// entries are never mutated afterwards.
func (tx *transaction) appendHistory(entry HistoryEntry) error {
	if err := domain.ValidateHistoryEntry(tx.store.catalog, entry); err != nil {
		return err
	}
	tx.state.seq++
	entry.Seq = tx.state.seq
	tx.state.history = append(tx.state.history, entry)
	tx.recordChange(Change{Entity: domain.EntityHistoryEntry, Action: domain.ActionCreate, After: entry})
	return nil
}

// DeleteCompany removes a company record. Its history is retained.
func (tx *transaction) DeleteCompany(id string) error {
	current, ok := tx.state.companies[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityCompany, ID: id}
	}
	delete(tx.state.companies, id)
	for i, oid := range tx.state.order {
		if oid == id {
			tx.state.order = append(tx.state.order[:i], tx.state.order[i+1:]...)
			break
		}
	}
	tx.recordChange(Change{Entity: domain.EntityCompany, Action: domain.ActionDelete, Before: cloneCompany(current)})
	return nil
}

func (tx *transaction) FindCompany(id string) (Company, bool) {
	c, ok := tx.state.companies[id]
	if !ok {
		return Company{}, false
	}
	return cloneCompany(c), true
}

// Read helpers ---------------------------------------------------------------

// GetCompany retrieves a company snapshot by ID from committed state.
func (s *Store) GetCompany(id string) (Company, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.companies[id]
	if !ok {
		return Company{}, false
	}
	return cloneCompany(c), true
}

// ListCompanies returns committed company snapshots in insertion order.
func (s *Store) ListCompanies() []Company {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Company, 0, len(s.state.order))
	for _, id := range s.state.order {
		if c, ok := s.state.companies[id]; ok {
			out = append(out, cloneCompany(c))
		}
	}
	return out
}

// HistoryFor returns the company's audit trail ordered by change time with
// append order as the tie-break.
func (s *Store) HistoryFor(id string) []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return historyFor(s.state.history, id)
}

// LastChangeAt returns the timestamp of the company's latest transition.
func (s *Store) LastChangeAt(id string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var last time.Time
	var found bool
	for _, e := range s.state.history {
		if e.CompanyID != id {
			continue
		}
		if !found || e.ChangedAt.After(last) {
			last = e.ChangedAt
			found = true
		}
	}
	return last, found
}

// ExportState returns a deep-copied snapshot of the committed state.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Companies: make(map[string]Company, len(s.state.companies)),
		Order:     append([]string(nil), s.state.order...),
		History:   append([]HistoryEntry(nil), s.state.history...),
		Seq:       s.state.seq,
	}
	for k, v := range s.state.companies {
		snap.Companies[k] = cloneCompany(v)
	}
	return snap
}

// ImportState replaces the committed state with the snapshot contents.
// Used by durable backends during rehydration.
func (s *Store) ImportState(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := newMemoryState()
	for k, v := range snap.Companies {
		next.companies[k] = cloneCompany(v)
	}
	next.order = append([]string(nil), snap.Order...)
	next.history = append([]HistoryEntry(nil), snap.History...)
	next.seq = snap.Seq
	if next.seq == 0 {
		for _, e := range next.history {
			if e.Seq > next.seq {
				next.seq = e.Seq
			}
		}
	}
	s.state = next
}
