package storage

import (
	"context"
	"errors"

	"github.com/R3E-Network/library_service/internal/app/domain/book"
	"github.com/R3E-Network/library_service/internal/app/domain/issuance"
	"github.com/R3E-Network/library_service/internal/app/domain/member"
)

var (
	// ErrNotFound is returned when no row matches the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyIssued is returned when a book already has an Issued row.
	ErrAlreadyIssued = errors.New("book already issued")
	// ErrUnknownReference is returned when an issuance names a missing book or member.
	ErrUnknownReference = errors.New("referenced book or member does not exist")
	// ErrReferenced is returned when deleting a row that issuances still point at.
	ErrReferenced = errors.New("record is referenced by issuances")
)

// BookStore persists books.
type BookStore interface {
	CreateBook(ctx context.Context, b book.Book) (book.Book, error)
	UpdateBook(ctx context.Context, b book.Book) (book.Book, error)
	GetBook(ctx context.Context, id int64) (book.Book, error)
	ListBooks(ctx context.Context) ([]book.Book, error)
	DeleteBook(ctx context.Context, id int64) error
}

// MemberStore persists members.
type MemberStore interface {
	CreateMember(ctx context.Context, m member.Member) (member.Member, error)
	UpdateMember(ctx context.Context, m member.Member) (member.Member, error)
	GetMember(ctx context.Context, id int64) (member.Member, error)
	ListMembers(ctx context.Context) ([]member.Member, error)
	DeleteMember(ctx context.Context, id int64) error
}

// IssuanceStore persists issuances. CreateIssuance must be atomic with respect
// to the one-Issued-row-per-book rule: implementations return
// ErrAlreadyIssued rather than inserting a second Issued row.
type IssuanceStore interface {
	CreateIssuance(ctx context.Context, iss issuance.Issuance) (issuance.Issuance, error)
	ListIssuances(ctx context.Context) ([]issuance.Issuance, error)
	ListPendingReturns(ctx context.Context, onOrBefore string) ([]issuance.PendingReturn, error)
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
