package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/R3E-Network/library_service/internal/app/domain/book"
	"github.com/R3E-Network/library_service/internal/app/domain/issuance"
	"github.com/R3E-Network/library_service/internal/app/domain/member"
	"github.com/R3E-Network/library_service/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local development.
type Store struct {
	mu        sync.RWMutex
	nextBook  int64
	nextMem   int64
	nextIss   int64
	books     map[int64]book.Book
	members   map[int64]member.Member
	issuances map[int64]issuance.Issuance
	now       func() time.Time
}

var _ storage.BookStore = (*Store)(nil)
var _ storage.MemberStore = (*Store)(nil)
var _ storage.IssuanceStore = (*Store)(nil)
var _ storage.Pinger = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextBook:  1,
		nextMem:   1,
		nextIss:   1,
		books:     make(map[int64]book.Book),
		members:   make(map[int64]member.Member),
		issuances: make(map[int64]issuance.Issuance),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// BookStore implementation ----------------------------------------------------

func (s *Store) CreateBook(_ context.Context, b book.Book) (book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = s.nextBook
	s.nextBook++
	s.books[b.ID] = b
	return b, nil
}

func (s *Store) UpdateBook(_ context.Context, b book.Book) (book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[b.ID]; !ok {
		return book.Book{}, storage.ErrNotFound
	}
	s.books[b.ID] = b
	return b, nil
}

func (s *Store) GetBook(_ context.Context, id int64) (book.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.books[id]
	if !ok {
		return book.Book{}, storage.ErrNotFound
	}
	return b, nil
}

func (s *Store) ListBooks(context.Context) ([]book.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]book.Book, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeleteBook(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[id]; !ok {
		return storage.ErrNotFound
	}
	for _, iss := range s.issuances {
		if iss.BookID == id {
			return storage.ErrReferenced
		}
	}
	delete(s.books, id)
	return nil
}

// MemberStore implementation --------------------------------------------------

func (s *Store) CreateMember(_ context.Context, m member.Member) (member.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = s.nextMem
	s.nextMem++
	s.members[m.ID] = m
	return m, nil
}

func (s *Store) UpdateMember(_ context.Context, m member.Member) (member.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[m.ID]; !ok {
		return member.Member{}, storage.ErrNotFound
	}
	s.members[m.ID] = m
	return m, nil
}

func (s *Store) GetMember(_ context.Context, id int64) (member.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[id]
	if !ok {
		return member.Member{}, storage.ErrNotFound
	}
	return m, nil
}

func (s *Store) ListMembers(context.Context) ([]member.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]member.Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeleteMember(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[id]; !ok {
		return storage.ErrNotFound
	}
	for _, iss := range s.issuances {
		if iss.MemberID == id {
			return storage.ErrReferenced
		}
	}
	delete(s.members, id)
	return nil
}

// IssuanceStore implementation ------------------------------------------------

// CreateIssuance checks and inserts under the write lock, so concurrent
// callers for the same book observe each other.
func (s *Store) CreateIssuance(_ context.Context, iss issuance.Issuance) (issuance.Issuance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[iss.BookID]; !ok {
		return issuance.Issuance{}, storage.ErrUnknownReference
	}
	if _, ok := s.members[iss.MemberID]; !ok {
		return issuance.Issuance{}, storage.ErrUnknownReference
	}
	for _, existing := range s.issuances {
		if existing.BookID == iss.BookID && existing.Status == issuance.StatusIssued {
			return issuance.Issuance{}, storage.ErrAlreadyIssued
		}
	}

	iss.ID = s.nextIss
	s.nextIss++
	iss.IssuedAt = s.now()
	s.issuances[iss.ID] = iss
	return iss, nil
}

func (s *Store) ListIssuances(context.Context) ([]issuance.Issuance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]issuance.Issuance, 0, len(s.issuances))
	for _, iss := range s.issuances {
		out = append(out, iss)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListPendingReturns compares YYYY-MM-DD strings, whose lexical order matches
// calendar order.
func (s *Store) ListPendingReturns(_ context.Context, onOrBefore string) ([]issuance.PendingReturn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []issuance.PendingReturn{}
	for _, iss := range s.issuances {
		if iss.Status != issuance.StatusIssued || iss.TargetReturnDate > onOrBefore {
			continue
		}
		out = append(out, issuance.PendingReturn{
			IssuanceID:       iss.ID,
			MemberName:       s.members[iss.MemberID].Name,
			BookName:         s.books[iss.BookID].Name,
			TargetReturnDate: iss.TargetReturnDate,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TargetReturnDate != out[j].TargetReturnDate {
			return out[i].TargetReturnDate < out[j].TargetReturnDate
		}
		return out[i].IssuanceID < out[j].IssuanceID
	})
	return out, nil
}
