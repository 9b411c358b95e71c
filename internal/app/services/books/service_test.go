package books

import (
	"context"
	"testing"

	"github.com/R3E-Network/library_service/internal/app/domain/book"
	"github.com/R3E-Network/library_service/internal/app/domain/issuance"
	"github.com/R3E-Network/library_service/internal/app/domain/member"
	"github.com/R3E-Network/library_service/internal/app/storage/memory"
	"github.com/R3E-Network/library_service/internal/errors"
	"github.com/R3E-Network/library_service/pkg/logger"
)

func dune() book.Book {
	return book.Book{Name: "Dune", CategoryID: "3", CollectionID: "12", LaunchDate: "1965-08-01", Publisher: "Chilton"}
}

func TestService(t *testing.T) {
	ctx := context.Background()
	svc := New(memory.New(), logger.NewDiscard())

	created, err := svc.Create(ctx, dune())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected id to be assigned")
	}

	got, err := svc.Get(ctx, "1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := dune()
	want.ID = created.ID
	if got != want {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}

	in := dune()
	in.Publisher = "Ace"
	updated, err := svc.Update(ctx, "1", in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Publisher != "Ace" || updated.ID != created.ID {
		t.Fatalf("update not applied: %+v", updated)
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 book, got %d", len(list))
	}
}

func TestValidation(t *testing.T) {
	ctx := context.Background()
	svc := New(memory.New(), logger.NewDiscard())

	if _, err := svc.Get(ctx, "abc"); !errors.IsValidation(err) {
		t.Fatalf("expected validation error for non-numeric id, got %v", err)
	}

	missing := dune()
	missing.Publisher = "  "
	if _, err := svc.Create(ctx, missing); !errors.IsValidation(err) {
		t.Fatalf("expected validation error for blank publisher, got %v", err)
	}

	badDate := dune()
	badDate.LaunchDate = "August 1965"
	if _, err := svc.Create(ctx, badDate); !errors.IsValidation(err) {
		t.Fatalf("expected validation error for bad date, got %v", err)
	}

	if _, err := svc.Update(ctx, "7", dune()); !errors.IsNotFound(err) {
		t.Fatalf("expected not found on update, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := New(store, logger.NewDiscard())

	if _, err := svc.Delete(ctx, "1"); !errors.IsNotFound(err) {
		t.Fatalf("expected not found for unknown id, got %v", err)
	}

	if _, err := svc.Create(ctx, dune()); err != nil {
		t.Fatalf("create: %v", err)
	}
	msg, err := svc.Delete(ctx, "1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if msg != DeletedMessage {
		t.Fatalf("unexpected confirmation %q", msg)
	}
	if _, err := svc.Delete(ctx, "1"); !errors.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}

	b, _ := svc.Create(ctx, dune())
	m, _ := store.CreateMember(ctx, member.Member{Name: "Ava", Phone: "5551234567", Email: "ava@x.com"})
	if _, err := store.CreateIssuance(ctx, issuance.Issuance{BookID: b.ID, MemberID: m.ID, IssuedBy: "1", TargetReturnDate: "2025-03-01", Status: issuance.StatusIssued}); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Delete(ctx, "2"); !errors.IsConflict(err) {
		t.Fatalf("expected conflict for referenced book, got %v", err)
	}
}
