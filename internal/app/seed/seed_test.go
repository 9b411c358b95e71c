package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/R3E-Network/library_service/internal/app"
	"github.com/R3E-Network/library_service/internal/errors"
	"github.com/R3E-Network/library_service/pkg/logger"
)

const catalogue = `
books:
  - name: Dune
    category_id: "3"
    collection_id: "1"
    launch_date: "1965-08-01"
    publisher: Chilton
members:
  - name: Ava
    phone: "5551234567"
    email: ava@example.com
`

func newApp(t *testing.T) *app.Application {
	t.Helper()
	a, err := app.New(app.Stores{}, logger.NewDiscard(), app.WithoutReporter())
	require.NoError(t, err)
	return a
}

func TestLoadAndApply(t *testing.T) {
	c, err := Load(strings.NewReader(catalogue))
	require.NoError(t, err)
	require.Len(t, c.Books, 1)
	require.Len(t, c.Members, 1)

	a := newApp(t)
	res, err := Apply(context.Background(), a, c)
	require.NoError(t, err)
	require.Len(t, res.Books, 1)
	assert.Positive(t, res.Books[0].ID)
	assert.Equal(t, "Ava", res.Members[0].Name)

	books, err := a.Books.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(strings.NewReader("books:\n  - title: Dune\n"))
	require.Error(t, err)
}

func TestLoadEmptyDocument(t *testing.T) {
	c, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, c.Books)
}

func TestApplyStopsOnInvalidMember(t *testing.T) {
	c, err := Load(strings.NewReader(`
members:
  - name: Ava
    phone: "555"
    email: ava@example.com
`))
	require.NoError(t, err)

	_, err = Apply(context.Background(), newApp(t), c)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}
