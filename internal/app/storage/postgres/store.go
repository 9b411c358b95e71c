package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/R3E-Network/library_service/internal/app/domain/book"
	"github.com/R3E-Network/library_service/internal/app/domain/issuance"
	"github.com/R3E-Network/library_service/internal/app/domain/member"
	"github.com/R3E-Network/library_service/internal/app/storage"
)

// PostgreSQL SQLSTATE codes the store translates.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sqlx.DB
}

var _ storage.BookStore = (*Store)(nil)
var _ storage.MemberStore = (*Store)(nil)
var _ storage.IssuanceStore = (*Store)(nil)
var _ storage.Pinger = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- BookStore --------------------------------------------------------------

const bookColumns = `book_id, book_name, book_cat_id, book_collection_id,
	to_char(book_launch_date, 'YYYY-MM-DD') AS book_launch_date, book_publisher`

func (s *Store) CreateBook(ctx context.Context, b book.Book) (book.Book, error) {
	var out book.Book
	err := s.db.GetContext(ctx, &out, `
		INSERT INTO book (book_name, book_cat_id, book_collection_id, book_launch_date, book_publisher)
		VALUES ($1, $2, $3, $4::date, $5)
		RETURNING `+bookColumns,
		b.Name, b.CategoryID, b.CollectionID, b.LaunchDate, b.Publisher)
	if err != nil {
		return book.Book{}, err
	}
	return out, nil
}

func (s *Store) UpdateBook(ctx context.Context, b book.Book) (book.Book, error) {
	var out book.Book
	err := s.db.GetContext(ctx, &out, `
		UPDATE book
		SET book_name = $1, book_cat_id = $2, book_collection_id = $3, book_launch_date = $4::date, book_publisher = $5
		WHERE book_id = $6
		RETURNING `+bookColumns,
		b.Name, b.CategoryID, b.CollectionID, b.LaunchDate, b.Publisher, b.ID)
	if err != nil {
		return book.Book{}, translate(err, storage.ErrUnknownReference)
	}
	return out, nil
}

func (s *Store) GetBook(ctx context.Context, id int64) (book.Book, error) {
	var out book.Book
	if err := s.db.GetContext(ctx, &out, `SELECT `+bookColumns+` FROM book WHERE book_id = $1`, id); err != nil {
		return book.Book{}, translate(err, storage.ErrUnknownReference)
	}
	return out, nil
}

func (s *Store) ListBooks(ctx context.Context) ([]book.Book, error) {
	out := []book.Book{}
	if err := s.db.SelectContext(ctx, &out, `SELECT `+bookColumns+` FROM book ORDER BY book_id`); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, `DELETE FROM book WHERE book_id = $1`, id)
}

// --- MemberStore ------------------------------------------------------------

const memberColumns = `mem_id, mem_name, mem_phone, mem_email`

func (s *Store) CreateMember(ctx context.Context, m member.Member) (member.Member, error) {
	var out member.Member
	err := s.db.GetContext(ctx, &out, `
		INSERT INTO member (mem_name, mem_phone, mem_email)
		VALUES ($1, $2, $3)
		RETURNING `+memberColumns,
		m.Name, m.Phone, m.Email)
	if err != nil {
		return member.Member{}, err
	}
	return out, nil
}

func (s *Store) UpdateMember(ctx context.Context, m member.Member) (member.Member, error) {
	var out member.Member
	err := s.db.GetContext(ctx, &out, `
		UPDATE member
		SET mem_name = $1, mem_phone = $2, mem_email = $3
		WHERE mem_id = $4
		RETURNING `+memberColumns,
		m.Name, m.Phone, m.Email, m.ID)
	if err != nil {
		return member.Member{}, translate(err, storage.ErrUnknownReference)
	}
	return out, nil
}

func (s *Store) GetMember(ctx context.Context, id int64) (member.Member, error) {
	var out member.Member
	if err := s.db.GetContext(ctx, &out, `SELECT `+memberColumns+` FROM member WHERE mem_id = $1`, id); err != nil {
		return member.Member{}, translate(err, storage.ErrUnknownReference)
	}
	return out, nil
}

func (s *Store) ListMembers(ctx context.Context) ([]member.Member, error) {
	out := []member.Member{}
	if err := s.db.SelectContext(ctx, &out, `SELECT `+memberColumns+` FROM member ORDER BY mem_id`); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) DeleteMember(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, `DELETE FROM member WHERE mem_id = $1`, id)
}

// --- IssuanceStore ----------------------------------------------------------

const issuanceColumns = `issuance_id, book_id, issuance_member, issued_by, issuance_date,
	to_char(target_return_date, 'YYYY-MM-DD') AS target_return_date, issuance_status`

// CreateIssuance runs check-then-insert inside one transaction holding a
// per-book advisory lock. Concurrent issues of the same book serialise on the
// lock; the partial unique index on Issued rows backs this up.
func (s *Store) CreateIssuance(ctx context.Context, iss issuance.Issuance) (issuance.Issuance, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return issuance.Issuance{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, iss.BookID); err != nil {
		return issuance.Issuance{}, fmt.Errorf("lock book %d: %w", iss.BookID, err)
	}

	var issued bool
	if err := tx.GetContext(ctx, &issued, `
		SELECT EXISTS (SELECT 1 FROM issuance WHERE book_id = $1 AND issuance_status = $2)
	`, iss.BookID, issuance.StatusIssued); err != nil {
		return issuance.Issuance{}, fmt.Errorf("check issued: %w", err)
	}
	if issued {
		return issuance.Issuance{}, storage.ErrAlreadyIssued
	}

	var out issuance.Issuance
	err = tx.GetContext(ctx, &out, `
		INSERT INTO issuance (book_id, issuance_member, issued_by, target_return_date, issuance_status)
		VALUES ($1, $2, $3, $4::date, $5)
		RETURNING `+issuanceColumns,
		iss.BookID, iss.MemberID, iss.IssuedBy, iss.TargetReturnDate, iss.Status)
	if err != nil {
		return issuance.Issuance{}, translate(err, storage.ErrUnknownReference)
	}

	if err := tx.Commit(); err != nil {
		return issuance.Issuance{}, translate(err, storage.ErrUnknownReference)
	}
	return out, nil
}

func (s *Store) ListIssuances(ctx context.Context) ([]issuance.Issuance, error) {
	out := []issuance.Issuance{}
	if err := s.db.SelectContext(ctx, &out, `SELECT `+issuanceColumns+` FROM issuance ORDER BY issuance_id`); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ListPendingReturns(ctx context.Context, onOrBefore string) ([]issuance.PendingReturn, error) {
	out := []issuance.PendingReturn{}
	err := s.db.SelectContext(ctx, &out, `
		SELECT i.issuance_id, m.mem_name, b.book_name,
			to_char(i.target_return_date, 'YYYY-MM-DD') AS target_return_date
		FROM issuance i
		JOIN member m ON i.issuance_member = m.mem_id
		JOIN book b ON i.book_id = b.book_id
		WHERE i.target_return_date <= $1::date AND i.issuance_status = $2
		ORDER BY i.target_return_date, i.issuance_id
	`, onOrBefore, issuance.StatusIssued)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// --- helpers ----------------------------------------------------------------

func (s *Store) deleteByID(ctx context.Context, query string, id int64) error {
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return translate(err, storage.ErrReferenced)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// translate maps driver errors onto storage sentinels. A foreign-key
// violation means a missing parent on insert but a live child on delete, so
// the caller says which sentinel applies. Anything unrecognised is returned
// unchanged.
func translate(err error, onForeignKey error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", storage.ErrAlreadyIssued, pqErr.Constraint)
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: %s", onForeignKey, pqErr.Constraint)
		}
	}
	return err
}
