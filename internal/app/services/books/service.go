package books

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/R3E-Network/library_service/internal/app/domain/book"
	"github.com/R3E-Network/library_service/internal/app/services/validate"
	"github.com/R3E-Network/library_service/internal/app/storage"
	"github.com/R3E-Network/library_service/internal/errors"
	"github.com/R3E-Network/library_service/pkg/logger"
)

// DeletedMessage confirms a successful delete.
const DeletedMessage = "Book deleted successfully"

// Service manages the book catalogue.
type Service struct {
	store storage.BookStore
	log   *logger.Logger
}

// New constructs a book service.
func New(store storage.BookStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("books")
	}
	return &Service{store: store, log: log}
}

// List returns every book ordered by id.
func (s *Service) List(ctx context.Context) ([]book.Book, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, s.storageError("list books", 0, err)
	}
	return books, nil
}

// Get returns the book with the given id.
func (s *Service) Get(ctx context.Context, rawID string) (book.Book, error) {
	id, err := validate.ID("id", rawID)
	if err != nil {
		return book.Book{}, err
	}
	b, err := s.store.GetBook(ctx, id)
	if err != nil {
		return book.Book{}, s.storageError("get book", id, err)
	}
	return b, nil
}

// Create validates and stores a new book.
func (s *Service) Create(ctx context.Context, in book.Book) (book.Book, error) {
	in, err := normalize(in)
	if err != nil {
		return book.Book{}, err
	}
	in.ID = 0
	created, err := s.store.CreateBook(ctx, in)
	if err != nil {
		return book.Book{}, s.storageError("create book", 0, err)
	}
	s.log.WithField("book_id", created.ID).Info("book created")
	return created, nil
}

// Update replaces every field of an existing book.
func (s *Service) Update(ctx context.Context, rawID string, in book.Book) (book.Book, error) {
	id, err := validate.ID("id", rawID)
	if err != nil {
		return book.Book{}, err
	}
	in, err = normalize(in)
	if err != nil {
		return book.Book{}, err
	}
	in.ID = id
	updated, err := s.store.UpdateBook(ctx, in)
	if err != nil {
		return book.Book{}, s.storageError("update book", id, err)
	}
	s.log.WithField("book_id", id).Info("book updated")
	return updated, nil
}

// Delete removes a book that no issuance references.
func (s *Service) Delete(ctx context.Context, rawID string) (string, error) {
	id, err := validate.ID("id", rawID)
	if err != nil {
		return "", err
	}
	if err := s.store.DeleteBook(ctx, id); err != nil {
		return "", s.storageError("delete book", id, err)
	}
	s.log.WithField("book_id", id).Info("book deleted")
	return DeletedMessage, nil
}

func normalize(b book.Book) (book.Book, error) {
	b.Name = strings.TrimSpace(b.Name)
	b.CategoryID = strings.TrimSpace(b.CategoryID)
	b.CollectionID = strings.TrimSpace(b.CollectionID)
	b.Publisher = strings.TrimSpace(b.Publisher)
	if err := validate.Required(
		validate.Field{Name: "book_name", Value: b.Name},
		validate.Field{Name: "book_cat_id", Value: b.CategoryID},
		validate.Field{Name: "book_collection_id", Value: b.CollectionID},
		validate.Field{Name: "book_launch_date", Value: b.LaunchDate},
		validate.Field{Name: "book_publisher", Value: b.Publisher},
	); err != nil {
		return book.Book{}, err
	}
	date, err := validate.Date("book_launch_date", b.LaunchDate)
	if err != nil {
		return book.Book{}, err
	}
	b.LaunchDate = date
	return b, nil
}

func (s *Service) storageError(op string, id int64, err error) error {
	switch {
	case stderrors.Is(err, storage.ErrNotFound):
		return errors.NotFound("book", id)
	case stderrors.Is(err, storage.ErrReferenced):
		return errors.Conflict("book has issuance records and cannot be deleted").WithDetails("id", id)
	}
	s.log.WithError(err).WithField("op", op).Error("book storage failure")
	return errors.Storage(op, err)
}
