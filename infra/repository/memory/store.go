// Package memory is an in-process backend for the repository contracts.
//
// Every UnitOfWork.Do opens a scope that buffers its writes and holds a lock on
// each row it modified until it commits or rolls back. A conditional write to a
// row locked by another scope, or whose version moved on, affects zero rows
// without waiting, which is how the SQL backend reports a lost version race.
package memory

import (
	"sort"
	"sync"

	"github.com/amirasaad/transfers/pkg/domain/account"
	"github.com/amirasaad/transfers/pkg/domain/transfer"
	"github.com/google/uuid"
)

type accountRow struct {
	account.Account
	seq int64
}

type transferRow struct {
	transfer.Transfer
	seq int64
}

// Store holds the committed state shared by every UnitOfWork built on it.
type Store struct {
	mu            sync.Mutex
	seq           int64
	accounts      map[uuid.UUID]accountRow
	transfers     map[uuid.UUID]transferRow
	accountLocks  map[uuid.UUID]*scope
	transferLocks map[uuid.UUID]*scope
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		accounts:      make(map[uuid.UUID]accountRow),
		transfers:     make(map[uuid.UUID]transferRow),
		accountLocks:  make(map[uuid.UUID]*scope),
		transferLocks: make(map[uuid.UUID]*scope),
	}
}

// scope buffers the writes of one atomic unit. A nil *scope means autocommit.
type scope struct {
	accounts  map[uuid.UUID]accountRow
	transfers map[uuid.UUID]transferRow
}

func newScope() *scope {
	return &scope{
		accounts:  make(map[uuid.UUID]accountRow),
		transfers: make(map[uuid.UUID]transferRow),
	}
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// The helpers below expect s.mu to be held.

func (s *Store) account(sc *scope, id uuid.UUID) (accountRow, bool) {
	if sc != nil {
		if row, ok := sc.accounts[id]; ok {
			return row, true
		}
	}
	row, ok := s.accounts[id]
	return row, ok
}

func (s *Store) transfer(sc *scope, id uuid.UUID) (transferRow, bool) {
	if sc != nil {
		if row, ok := sc.transfers[id]; ok {
			return row, true
		}
	}
	row, ok := s.transfers[id]
	return row, ok
}

func (s *Store) visibleAccounts(sc *scope) []accountRow {
	rows := make([]accountRow, 0, len(s.accounts))
	for id, row := range s.accounts {
		if sc != nil {
			if pending, ok := sc.accounts[id]; ok {
				row = pending
			}
		}
		rows = append(rows, row)
	}
	if sc != nil {
		for id, row := range sc.accounts {
			if _, ok := s.accounts[id]; !ok {
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func (s *Store) visibleTransfers(sc *scope) []transferRow {
	rows := make([]transferRow, 0, len(s.transfers))
	for id, row := range s.transfers {
		if sc != nil {
			if pending, ok := sc.transfers[id]; ok {
				row = pending
			}
		}
		rows = append(rows, row)
	}
	if sc != nil {
		for id, row := range sc.transfers {
			if _, ok := s.transfers[id]; !ok {
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func (s *Store) putAccount(sc *scope, row accountRow) {
	if sc == nil {
		s.accounts[row.ID] = row
		return
	}
	sc.accounts[row.ID] = row
	s.accountLocks[row.ID] = sc
}

func (s *Store) putTransfer(sc *scope, row transferRow) {
	if sc == nil {
		s.transfers[row.ID] = row
		return
	}
	sc.transfers[row.ID] = row
	s.transferLocks[row.ID] = sc
}

// lockedByOther reports whether a scope other than sc holds the row.
func lockedByOther(locks map[uuid.UUID]*scope, id uuid.UUID, sc *scope) bool {
	holder, ok := locks[id]
	return ok && holder != sc
}

func (s *Store) commit(sc *scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, row := range sc.accounts {
		s.accounts[id] = row
	}
	for id, row := range sc.transfers {
		s.transfers[id] = row
	}
	s.release(sc)
}

func (s *Store) rollback(sc *scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.release(sc)
}

func (s *Store) release(sc *scope) {
	for id := range sc.accounts {
		if s.accountLocks[id] == sc {
			delete(s.accountLocks, id)
		}
	}
	for id := range sc.transfers {
		if s.transferLocks[id] == sc {
			delete(s.transferLocks, id)
		}
	}
}

func sortAccounts(rows []accountRow) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		return rows[i].seq < rows[j].seq
	})
}

// sortNewestFirst orders by creation time descending; insertion order breaks ties.
func sortNewestFirst(rows []transferRow) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
}
