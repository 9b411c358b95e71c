package issuance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/library_service/pkg/logger"
)

func TestReporterCountsDueRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Issue(ctx, f.request("2025-03-01"))
	require.NoError(t, err)

	r := NewReporter(f.svc, "", logger.NewDiscard())
	r.now = func() time.Time { return time.Date(2025, 2, 28, 9, 0, 0, 0, time.UTC) }
	n, err := r.Report(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	r.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }
	n, err = r.Report(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, countIssued(t, f.store), "reporter must not change rows")
}

func TestReporterLifecycle(t *testing.T) {
	f := newFixture(t)
	r := NewReporter(f.svc, "@every 1h", logger.NewDiscard())

	require.NoError(t, r.Start(context.Background()))
	require.NoError(t, r.Start(context.Background()), "second start is a no-op")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Stop(ctx))
	require.NoError(t, r.Stop(ctx))
}

func TestReporterRejectsBadSchedule(t *testing.T) {
	f := newFixture(t)
	r := NewReporter(f.svc, "every tuesday", logger.NewDiscard())
	assert.Error(t, r.Start(context.Background()))
}
