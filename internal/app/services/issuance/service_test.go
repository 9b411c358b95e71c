package issuance

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/library_service/internal/app/domain/book"
	domain "github.com/R3E-Network/library_service/internal/app/domain/issuance"
	"github.com/R3E-Network/library_service/internal/app/domain/member"
	"github.com/R3E-Network/library_service/internal/app/storage/memory"
	"github.com/R3E-Network/library_service/internal/errors"
	"github.com/R3E-Network/library_service/pkg/logger"
)

type fixture struct {
	store  *memory.Store
	svc    *Service
	bookID string
	memID  string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	b, err := store.CreateBook(ctx, book.Book{Name: "Dune", CategoryID: "1", CollectionID: "1", LaunchDate: "1965-08-01", Publisher: "Chilton"})
	require.NoError(t, err)
	m, err := store.CreateMember(ctx, member.Member{Name: "Ava", Phone: "5551234567", Email: "ava@x.com"})
	require.NoError(t, err)
	return fixture{
		store:  store,
		svc:    New(store, store, store, logger.NewDiscard()),
		bookID: strconv.FormatInt(b.ID, 10),
		memID:  strconv.FormatInt(m.ID, 10),
	}
}

func (f fixture) request(date string) IssueRequest {
	return IssueRequest{BookID: f.bookID, MemberID: f.memID, IssuedBy: "11", TargetReturnDate: date, Status: "Issued"}
}

func countIssued(t *testing.T, store *memory.Store) int {
	t.Helper()
	all, err := store.ListIssuances(context.Background())
	require.NoError(t, err)
	n := 0
	for _, iss := range all {
		if iss.Status == domain.StatusIssued {
			n++
		}
	}
	return n
}

func TestIssueAssignsIDAndTimestamp(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.Issue(context.Background(), f.request("2025-03-01"))
	require.NoError(t, err)
	assert.NotZero(t, got.ID)
	assert.False(t, got.IssuedAt.IsZero())
	assert.Equal(t, "11", got.IssuedBy)
	assert.Equal(t, domain.StatusIssued, got.Status)
}

func TestIssueTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Issue(ctx, f.request("2025-03-01"))
	require.NoError(t, err)

	_, err = f.svc.Issue(ctx, f.request("2025-04-01"))
	require.True(t, errors.IsConflict(err), "got %v", err)
	assert.Equal(t, 1, countIssued(t, f.store))
}

func TestIssueValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]func(r *IssueRequest){
		"missing book":     func(r *IssueRequest) { r.BookID = "" },
		"non-numeric book": func(r *IssueRequest) { r.BookID = "dune" },
		"non-numeric by":   func(r *IssueRequest) { r.IssuedBy = "librarian" },
		"bad member":       func(r *IssueRequest) { r.MemberID = "-1" },
		"missing date":     func(r *IssueRequest) { r.TargetReturnDate = " " },
		"bad date":         func(r *IssueRequest) { r.TargetReturnDate = "01/03/2025" },
		"unknown status":   func(r *IssueRequest) { r.Status = "issued" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := f.request("2025-03-01")
			mutate(&req)
			_, err := f.svc.Issue(ctx, req)
			assert.True(t, errors.IsValidation(err), "got %v", err)
		})
	}
	assert.Equal(t, 0, countIssued(t, f.store))
}

func TestIssueUnknownReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.request("2025-03-01")
	req.BookID = "404"
	_, err := f.svc.Issue(ctx, req)
	assert.True(t, errors.IsNotFound(err), "got %v", err)

	req = f.request("2025-03-01")
	req.MemberID = "404"
	_, err = f.svc.Issue(ctx, req)
	assert.True(t, errors.IsNotFound(err), "got %v", err)

	// Without the pre-checks the store still rejects the reference.
	bare := New(nil, nil, f.store, logger.NewDiscard())
	_, err = bare.Issue(ctx, req)
	assert.True(t, errors.IsNotFound(err), "got %v", err)
}

func TestReturnedRowDoesNotBlockIssue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	returned := f.request("2025-01-01")
	returned.Status = "Returned"
	_, err := f.svc.Issue(ctx, returned)
	require.NoError(t, err)

	_, err = f.svc.Issue(ctx, f.request("2025-03-01"))
	require.NoError(t, err)
}

func TestConcurrentIssueSingleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const callers = 32

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.svc.Issue(ctx, f.request("2025-03-01"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.IsConflict(err):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, conflicts)
	assert.Equal(t, 1, countIssued(t, f.store))
}

func TestListPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	emma, err := f.store.CreateBook(ctx, book.Book{Name: "Emma", CategoryID: "1", CollectionID: "1", LaunchDate: "1815-12-23", Publisher: "Murray"})
	require.NoError(t, err)

	_, err = f.svc.Issue(ctx, f.request("2025-01-10"))
	require.NoError(t, err)
	returned := IssueRequest{BookID: strconv.FormatInt(emma.ID, 10), MemberID: f.memID, IssuedBy: "11", TargetReturnDate: "2024-12-01", Status: "Returned"}
	_, err = f.svc.Issue(ctx, returned)
	require.NoError(t, err)

	pending, err := f.svc.ListPending(ctx, "2025-01-15")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Dune", pending[0].BookName)
	assert.Equal(t, "Ava", pending[0].MemberName)
	assert.Equal(t, "2025-01-10", pending[0].TargetReturnDate)

	_, err = f.svc.ListPending(ctx, "")
	assert.True(t, errors.IsValidation(err))
}
