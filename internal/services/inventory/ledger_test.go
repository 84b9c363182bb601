package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/library-management/internal/models"
)

func book(total, available int) models.Book {
	return models.Book{ID: uuid.New(), Title: "Dune", TotalCopies: total, AvailableCopies: available}
}

func assertBounds(t *testing.T, total, available int) {
	t.Helper()
	assert.GreaterOrEqual(t, available, 0)
	assert.LessOrEqual(t, available, total)
}

func TestAdjustOnIssue(t *testing.T) {
	tests := []struct {
		name          string
		book          models.Book
		wantAvailable int
		wantErr       error
	}{
		{name: "several free", book: book(3, 3), wantAvailable: 2},
		{name: "last copy", book: book(3, 1), wantAvailable: 0},
		{name: "no copies", book: book(3, 0), wantErr: models.ErrUnavailable},
		{name: "empty book", book: book(0, 0), wantErr: models.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, err := AdjustOnIssue(tt.book)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, models.LedgerChange{}, change)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.book.ID, change.BookID)
			assert.Equal(t, tt.book.AvailableCopies, change.Observed)
			assert.Equal(t, tt.wantAvailable, change.Available)
			assertBounds(t, tt.book.TotalCopies, change.Available)
		})
	}
}

func TestAdjustOnReturn(t *testing.T) {
	tests := []struct {
		name          string
		book          models.Book
		wantAvailable int
		wantCapped    bool
	}{
		{name: "one on loan", book: book(3, 2), wantAvailable: 3},
		{name: "all on loan", book: book(3, 0), wantAvailable: 1},
		{name: "already full", book: book(3, 3), wantAvailable: 3, wantCapped: true},
		{name: "shrunk below outstanding loans", book: book(0, 0), wantAvailable: 0, wantCapped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, capped := AdjustOnReturn(tt.book)
			assert.Equal(t, tt.wantCapped, capped)
			assert.Equal(t, tt.book.AvailableCopies, change.Observed)
			assert.Equal(t, tt.wantAvailable, change.Available)
			assertBounds(t, tt.book.TotalCopies, change.Available)
		})
	}
}

func TestIssueThenReturnRestoresCount(t *testing.T) {
	b := book(2, 2)

	change, err := AdjustOnIssue(b)
	require.NoError(t, err)
	b.AvailableCopies = change.Available

	change, capped := AdjustOnReturn(b)
	assert.False(t, capped)
	assert.Equal(t, 2, change.Available)
}

func TestResize(t *testing.T) {
	tests := []struct {
		name          string
		book          models.Book
		newTotal      int
		wantAvailable int
		wantErr       error
	}{
		{name: "grow", book: book(3, 1), newTotal: 5, wantAvailable: 3},
		{name: "shrink keeps loans", book: book(5, 3), newTotal: 3, wantAvailable: 1},
		{name: "shrink below outstanding clamps to zero", book: book(5, 1), newTotal: 2, wantAvailable: 0},
		{name: "shrink to zero", book: book(3, 3), newTotal: 0, wantAvailable: 0},
		{name: "same total", book: book(3, 2), newTotal: 3, wantAvailable: 2},
		{name: "negative total rejected", book: book(3, 2), newTotal: -1, wantErr: models.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resize(tt.book, tt.newTotal)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.book, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.newTotal, got.TotalCopies)
			assert.Equal(t, tt.wantAvailable, got.AvailableCopies)
			assertBounds(t, got.TotalCopies, got.AvailableCopies)
		})
	}
}
