package members

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/R3E-Network/library_service/internal/app/domain/member"
	"github.com/R3E-Network/library_service/internal/app/services/validate"
	"github.com/R3E-Network/library_service/internal/app/storage"
	"github.com/R3E-Network/library_service/internal/errors"
	"github.com/R3E-Network/library_service/pkg/logger"
)

// DeletedMessage confirms a successful delete.
const DeletedMessage = "Member deleted successfully"

// Service manages library members. Phone and email formats are checked on
// every write.
type Service struct {
	store storage.MemberStore
	log   *logger.Logger
}

// New constructs a member service.
func New(store storage.MemberStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("members")
	}
	return &Service{store: store, log: log}
}

// List returns every member ordered by id.
func (s *Service) List(ctx context.Context) ([]member.Member, error) {
	members, err := s.store.ListMembers(ctx)
	if err != nil {
		return nil, s.storageError("list members", 0, err)
	}
	return members, nil
}

// Get returns the member with the given id.
func (s *Service) Get(ctx context.Context, rawID string) (member.Member, error) {
	id, err := validate.ID("id", rawID)
	if err != nil {
		return member.Member{}, err
	}
	m, err := s.store.GetMember(ctx, id)
	if err != nil {
		return member.Member{}, s.storageError("get member", id, err)
	}
	return m, nil
}

// Create validates and stores a new member.
func (s *Service) Create(ctx context.Context, in member.Member) (member.Member, error) {
	in, err := normalize(in)
	if err != nil {
		return member.Member{}, err
	}
	in.ID = 0
	created, err := s.store.CreateMember(ctx, in)
	if err != nil {
		return member.Member{}, s.storageError("create member", 0, err)
	}
	s.log.WithField("member_id", created.ID).Info("member created")
	return created, nil
}

// Update replaces every field of an existing member.
func (s *Service) Update(ctx context.Context, rawID string, in member.Member) (member.Member, error) {
	id, err := validate.ID("id", rawID)
	if err != nil {
		return member.Member{}, err
	}
	in, err = normalize(in)
	if err != nil {
		return member.Member{}, err
	}
	in.ID = id
	updated, err := s.store.UpdateMember(ctx, in)
	if err != nil {
		return member.Member{}, s.storageError("update member", id, err)
	}
	s.log.WithField("member_id", id).Info("member updated")
	return updated, nil
}

// Delete removes a member with no issuance history.
func (s *Service) Delete(ctx context.Context, rawID string) (string, error) {
	id, err := validate.ID("id", rawID)
	if err != nil {
		return "", err
	}
	if err := s.store.DeleteMember(ctx, id); err != nil {
		return "", s.storageError("delete member", id, err)
	}
	s.log.WithField("member_id", id).Info("member deleted")
	return DeletedMessage, nil
}

func normalize(m member.Member) (member.Member, error) {
	m.Name = strings.TrimSpace(m.Name)
	m.Phone = strings.TrimSpace(m.Phone)
	m.Email = strings.TrimSpace(m.Email)
	if err := validate.Required(
		validate.Field{Name: "mem_name", Value: m.Name},
		validate.Field{Name: "mem_phone", Value: m.Phone},
		validate.Field{Name: "mem_email", Value: m.Email},
	); err != nil {
		return member.Member{}, err
	}
	if err := validate.Phone(m.Phone); err != nil {
		return member.Member{}, err
	}
	if err := validate.Email(m.Email); err != nil {
		return member.Member{}, err
	}
	return m, nil
}

func (s *Service) storageError(op string, id int64, err error) error {
	switch {
	case stderrors.Is(err, storage.ErrNotFound):
		return errors.NotFound("member", id)
	case stderrors.Is(err, storage.ErrReferenced):
		return errors.Conflict("member has issuance records and cannot be deleted").WithDetails("id", id)
	}
	s.log.WithError(err).WithField("op", op).Error("member storage failure")
	return errors.Storage(op, err)
}
