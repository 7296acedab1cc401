// Package memory provides an in-memory repository.Store for development and
// tests. It enforces the same uniqueness and cascade rules as the Postgres
// schema. Transactions are serialized against every other read and write, so
// restoring the start-of-transaction snapshot on failure undoes only the
// transaction's own changes.
package memory

import (
	"cmp"
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/clinic-kit/medapp/internal/domain"
	"github.com/clinic-kit/medapp/internal/repository"
)

var errAccountLinked = errors.New("account already linked to another staff member")

type state struct {
	seq         int64
	accounts    map[int64]domain.Account
	staff       map[int64]domain.StaffMember
	shifts      map[int64]domain.Shift
	patients    map[int64]domain.Patient
	assignments map[int64]map[int64]struct{}
	files       map[int64]domain.PatientFile
}

func newState() *state {
	return &state{
		accounts:    make(map[int64]domain.Account),
		staff:       make(map[int64]domain.StaffMember),
		shifts:      make(map[int64]domain.Shift),
		patients:    make(map[int64]domain.Patient),
		assignments: make(map[int64]map[int64]struct{}),
		files:       make(map[int64]domain.PatientFile),
	}
}

func (s *state) clone() *state {
	out := &state{
		seq:         s.seq,
		accounts:    maps.Clone(s.accounts),
		staff:       maps.Clone(s.staff),
		shifts:      maps.Clone(s.shifts),
		patients:    maps.Clone(s.patients),
		assignments: make(map[int64]map[int64]struct{}, len(s.assignments)),
		files:       maps.Clone(s.files),
	}
	for patientID, set := range s.assignments {
		out.assignments[patientID] = maps.Clone(set)
	}
	return out
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

// Store is a thread-safe in-memory repository.Store.
type Store struct {
	// txMu is held exclusively by a running transaction and shared by
	// statements issued outside one.
	txMu sync.RWMutex
	mu   sync.RWMutex
	data *state
	now  func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{data: newState(), now: func() time.Time { return time.Now().UTC() }}
}

// Repos returns repositories whose statements wait for any running transaction.
func (s *Store) Repos() repository.Repositories {
	return (&handle{s: s}).repos()
}

// WithinTx runs fn with exclusive access to the store and rolls back on error.
// Repositories handed to fn must not be used after it returns.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(ctx, (&handle{s: s, inTx: true}).repos()); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// handle binds repositories to the store, either standalone or inside the
// transaction that currently holds txMu.
type handle struct {
	s    *Store
	inTx bool
}

func (h *handle) repos() repository.Repositories {
	return repository.Repositories{
		Accounts: &accountRepo{h},
		Staff:    &staffRepo{h},
		Shifts:   &shiftRepo{h},
		Patients: &patientRepo{h},
		Files:    &fileRepo{h},
	}
}

func (h *handle) now() time.Time {
	return h.s.now()
}

func (h *handle) read(fn func(d *state) error) error {
	if !h.inTx {
		h.s.txMu.RLock()
		defer h.s.txMu.RUnlock()
	}
	h.s.mu.RLock()
	defer h.s.mu.RUnlock()
	return fn(h.s.data)
}

func (h *handle) write(fn func(d *state) error) error {
	if !h.inTx {
		h.s.txMu.RLock()
		defer h.s.txMu.RUnlock()
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return fn(h.s.data)
}

func sortedValues[T any](m map[int64]T, less func(a, b T) int) []T {
	out := slices.Collect(maps.Values(m))
	slices.SortFunc(out, less)
	return out
}

func byNameThenID(nameA, nameB string, idA, idB int64) int {
	if c := cmp.Compare(nameA, nameB); c != 0 {
		return c
	}
	return cmp.Compare(idA, idB)
}

func newerFirst(a, b time.Time, idA, idB int64) int {
	if c := b.Compare(a); c != 0 {
		return c
	}
	return cmp.Compare(idB, idA)
}
