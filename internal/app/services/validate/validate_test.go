package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/library_service/internal/errors"
)

func TestID(t *testing.T) {
	id, err := ID("id", " 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "abc", "0", "-3", "1.5", "9999999999999999999999"} {
		_, err := ID("id", bad)
		assert.True(t, errors.IsValidation(err), "input %q", bad)
	}
}

func TestRequiredListsMissing(t *testing.T) {
	err := Required(Field{"book_name", "Dune"}, Field{"book_publisher", "  "}, Field{"book_cat_id", ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "book_publisher, book_cat_id")
	assert.NoError(t, Required(Field{"a", "x"}))
}

func TestDate(t *testing.T) {
	got, err := Date("date", "2025-01-15")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15", got)

	for _, bad := range []string{"", "15/01/2025", "2025-02-30", "2025-1-5"} {
		_, err := Date("date", bad)
		assert.True(t, errors.IsValidation(err), "input %q", bad)
	}
}

func TestPhoneAndEmail(t *testing.T) {
	assert.NoError(t, Phone("1234567890"))
	assert.True(t, errors.IsValidation(Phone("12345")))
	assert.True(t, errors.IsValidation(Phone("12345678901")))
	assert.True(t, errors.IsValidation(Phone("123456789a")))

	assert.NoError(t, Email("a@b.co"))
	assert.True(t, errors.IsValidation(Email("not-an-email")))
	assert.True(t, errors.IsValidation(Email("a b@c.d")))
	assert.True(t, errors.IsValidation(Email("a@b")))
}
