package issuance

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"
	"time"

	domain "github.com/R3E-Network/library_service/internal/app/domain/issuance"
	"github.com/R3E-Network/library_service/internal/app/metrics"
	"github.com/R3E-Network/library_service/internal/app/services/validate"
	"github.com/R3E-Network/library_service/internal/app/storage"
	"github.com/R3E-Network/library_service/internal/errors"
	"github.com/R3E-Network/library_service/pkg/logger"
)

// IssueRequest carries the raw issue inputs. Identifiers arrive as text and
// are parsed here.
type IssueRequest struct {
	BookID           string
	MemberID         string
	IssuedBy         string
	TargetReturnDate string
	Status           string
}

// Service runs the issuance workflow.
type Service struct {
	books   storage.BookStore
	members storage.MemberStore
	store   storage.IssuanceStore
	log     *logger.Logger
}

// New constructs an issuance service. books and members may be nil, in which
// case references are only checked by the store.
func New(books storage.BookStore, members storage.MemberStore, store storage.IssuanceStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("issuance")
	}
	return &Service{books: books, members: members, store: store, log: log}
}

// List returns every issuance in storage order.
func (s *Service) List(ctx context.Context) ([]domain.Issuance, error) {
	out, err := s.store.ListIssuances(ctx)
	if err != nil {
		return nil, s.storageError("list issuances", err)
	}
	return out, nil
}

// ListPending returns Issued rows due on or before date.
func (s *Service) ListPending(ctx context.Context, date string) ([]domain.PendingReturn, error) {
	day, err := validate.Date("date", date)
	if err != nil {
		return nil, err
	}
	out, err := s.store.ListPendingReturns(ctx, day)
	if err != nil {
		return nil, s.storageError("list pending returns", err)
	}
	return out, nil
}

// Issue lends a book to a member. It fails with a conflict while another
// issuance for the same book is still Issued.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (domain.Issuance, error) {
	iss, err := s.parse(req)
	if err != nil {
		metrics.RecordIssueAttempt(metrics.OutcomeInvalid, 0)
		return domain.Issuance{}, err
	}

	if err := s.checkReferences(ctx, iss); err != nil {
		metrics.RecordIssueAttempt(outcomeOf(err), 0)
		return domain.Issuance{}, err
	}

	start := time.Now()
	created, err := s.store.CreateIssuance(ctx, iss)
	took := time.Since(start)
	if err != nil {
		err = s.storageError("create issuance", err)
		metrics.RecordIssueAttempt(outcomeOf(err), took)
		if errors.IsConflict(err) {
			s.log.WithField("book_id", iss.BookID).
				WithField("member_id", iss.MemberID).
				Warn("book already issued")
		}
		return domain.Issuance{}, err
	}

	metrics.RecordIssueAttempt(metrics.OutcomeIssued, took)
	s.log.WithField("issuance_id", created.ID).
		WithField("book_id", created.BookID).
		WithField("member_id", created.MemberID).
		WithField("issued_by", created.IssuedBy).
		Info("book issued")
	return created, nil
}

func (s *Service) parse(req IssueRequest) (domain.Issuance, error) {
	if err := validate.Required(
		validate.Field{Name: "book_id", Value: req.BookID},
		validate.Field{Name: "issuance_member", Value: req.MemberID},
		validate.Field{Name: "issued_by", Value: req.IssuedBy},
		validate.Field{Name: "target_return_date", Value: req.TargetReturnDate},
		validate.Field{Name: "issuance_status", Value: req.Status},
	); err != nil {
		return domain.Issuance{}, err
	}

	bookID, err := validate.ID("book_id", req.BookID)
	if err != nil {
		return domain.Issuance{}, err
	}
	memberID, err := validate.ID("issuance_member", req.MemberID)
	if err != nil {
		return domain.Issuance{}, err
	}
	issuer, err := validate.ID("issued_by", req.IssuedBy)
	if err != nil {
		return domain.Issuance{}, err
	}
	date, err := validate.Date("target_return_date", req.TargetReturnDate)
	if err != nil {
		return domain.Issuance{}, err
	}
	status := domain.Status(strings.TrimSpace(req.Status))
	if !status.Valid() {
		return domain.Issuance{}, errors.Validation("issuance_status must be one of %s, %s, %s",
			domain.StatusIssued, domain.StatusReturned, domain.StatusOverdue)
	}

	return domain.Issuance{
		BookID:           bookID,
		MemberID:         memberID,
		IssuedBy:         strconv.FormatInt(issuer, 10),
		TargetReturnDate: date,
		Status:           status,
	}, nil
}

// checkReferences gives a precise not-found error up front. The foreign keys
// still catch a row deleted between this check and the insert.
func (s *Service) checkReferences(ctx context.Context, iss domain.Issuance) error {
	if s.books != nil {
		if _, err := s.books.GetBook(ctx, iss.BookID); err != nil {
			if stderrors.Is(err, storage.ErrNotFound) {
				return errors.NotFound("book", iss.BookID)
			}
			return s.storageError("get book", err)
		}
	}
	if s.members != nil {
		if _, err := s.members.GetMember(ctx, iss.MemberID); err != nil {
			if stderrors.Is(err, storage.ErrNotFound) {
				return errors.NotFound("member", iss.MemberID)
			}
			return s.storageError("get member", err)
		}
	}
	return nil
}

func (s *Service) storageError(op string, err error) error {
	switch {
	case stderrors.Is(err, storage.ErrAlreadyIssued):
		return errors.Conflict("book already issued")
	case stderrors.Is(err, storage.ErrUnknownReference):
		return errors.NotFound("book or member", nil)
	}
	s.log.WithError(err).WithField("op", op).Error("issuance storage failure")
	return errors.Storage(op, err)
}

func outcomeOf(err error) string {
	switch {
	case errors.IsConflict(err):
		return metrics.OutcomeConflict
	case errors.IsValidation(err), errors.IsNotFound(err):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
