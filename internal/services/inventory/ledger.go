// Package inventory ведёт учёт экземпляров книги: сколько всего и сколько на руках.
// Функции пакета ничего не пишут в хранилище, они только вычисляют новое
// значение счётчика и возвращают его в виде models.LedgerChange.
package inventory

import (
	"fmt"

	"github.com/magabrotheeeer/library-management/internal/models"
)

// AdjustOnIssue списывает один экземпляр под выдачу.
// Если свободных экземпляров нет, возвращает models.ErrUnavailable.
func AdjustOnIssue(book models.Book) (models.LedgerChange, error) {
	if book.AvailableCopies < 1 {
		return models.LedgerChange{}, fmt.Errorf("book %s: %w", book.ID, models.ErrUnavailable)
	}
	return models.LedgerChange{
		BookID:    book.ID,
		Observed:  book.AvailableCopies,
		Available: book.AvailableCopies - 1,
	}, nil
}

// AdjustOnReturn возвращает экземпляр в фонд. Счётчик не поднимается выше
// TotalCopies: в этом случае capped равен true, а значение остаётся прежним.
func AdjustOnReturn(book models.Book) (change models.LedgerChange, capped bool) {
	change = models.LedgerChange{
		BookID:    book.ID,
		Observed:  book.AvailableCopies,
		Available: book.AvailableCopies + 1,
	}
	if change.Available > book.TotalCopies {
		change.Available = max(book.TotalCopies, 0)
		capped = true
	}
	return change, capped
}

// Resize меняет общее число экземпляров. Доступные сдвигаются на ту же разницу
// и ограничиваются диапазоном [0, newTotal].
func Resize(book models.Book, newTotal int) (models.Book, error) {
	if newTotal < 0 {
		return book, fmt.Errorf("total copies %d: %w", newTotal, models.ErrInvalidInput)
	}
	delta := newTotal - book.TotalCopies
	book.TotalCopies = newTotal
	book.AvailableCopies = min(max(book.AvailableCopies+delta, 0), newTotal)
	return book, nil
}
